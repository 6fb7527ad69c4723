package report

// Palette holds the colors of one report table.
type Palette struct {
	Head string
	Even string
	Odd  string
}

var (
	paletteApplicants = Palette{Head: "#26326B", Even: "#D8DCF0", Odd: "#F3F4FB"}
	paletteDegrees    = Palette{Head: "#306732", Even: "#DBEEDC", Odd: "#F4FAF4"}
	paletteSubjects   = Palette{Head: "#A71614", Even: "#FCD9D6", Odd: "#FEF4F3"}
	paletteLedger     = Palette{Head: "#985C13", Even: "#FEEACD", Odd: "#FFF9F0"}
	paletteAssignment = Palette{Head: "#5C1B68", Even: "#EECFF3", Odd: "#FAF0FC"}
)

const (
	colorUnavailable  = "#999"
	colorBalanced     = "#000"
	colorShort        = "#a00"
	colorOver         = "#0a0"
	colorCollaborator = "#282"
)
