package formatter

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/nicocardiel/repdoc/internal/domain"
)

// Colors follow the report tables: blue for applicants, green for degrees,
// red for subjects, brown for the ledger.
var (
	ColorApplicant = lipgloss.Color("#26326B")
	ColorDegree    = lipgloss.Color("#306732")
	ColorSubject   = lipgloss.Color("#A71614")
	ColorLedger    = lipgloss.Color("#985C13")

	ColorGreen  = lipgloss.Color("#8ec07c")
	ColorYellow = lipgloss.Color("#fabd2f")
	ColorRed    = lipgloss.Color("#fb4934")
	ColorBlue   = lipgloss.Color("#83a598")
	ColorPurple = lipgloss.Color("#d3869b")
	ColorDim    = lipgloss.Color("#928374")
	ColorFg     = lipgloss.Color("#ebdbb2")
	ColorHeader = lipgloss.Color("#fe8019")
)

var (
	StyleGreen  = lipgloss.NewStyle().Foreground(ColorGreen)
	StyleYellow = lipgloss.NewStyle().Foreground(ColorYellow)
	StyleRed    = lipgloss.NewStyle().Foreground(ColorRed)
	StyleBlue   = lipgloss.NewStyle().Foreground(ColorBlue)
	StylePurple = lipgloss.NewStyle().Foreground(ColorPurple)
	StyleDim    = lipgloss.NewStyle().Foreground(ColorDim)
	StyleFg     = lipgloss.NewStyle().Foreground(ColorFg)
	StyleHeader = lipgloss.NewStyle().Foreground(ColorHeader).Bold(true)
	StyleBold   = lipgloss.NewStyle().Foreground(ColorFg).Bold(true)
)

// DifferenceStyle colors an assigned-minus-quota difference: red while the
// quota is not met, green above it.
func DifferenceStyle(d float64) lipgloss.Style {
	switch {
	case math.Abs(d) <= domain.RoundTolerance:
		return StyleFg
	case d < 0:
		return StyleRed
	default:
		return StyleGreen
	}
}

// Difference renders d with its sign and color.
func Difference(d float64) string {
	if math.Abs(d) <= domain.RoundTolerance {
		d = 0
	}
	return DifferenceStyle(d).Render(fmt.Sprintf("%+.4f", d))
}

// Header renders a section header underlined with a dim rule.
func Header(text string) string {
	upper := strings.ToUpper(text)
	line := strings.Repeat("─", lipgloss.Width(upper))
	return fmt.Sprintf("%s\n%s", StyleHeader.Render(upper), StyleDim.Render(line))
}

func Dim(text string) string {
	return StyleDim.Render(text)
}

func Bold(text string) string {
	return StyleBold.Render(text)
}
