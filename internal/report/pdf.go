package report

import (
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

var resultColumns = []struct {
	title string
	width float64
	align string
}{
	{"Curso", 14, "C"},
	{"Sem.", 12, "C"},
	{"Código", 18, "C"},
	{"Asignatura", 70, "L"},
	{"Comentarios", 40, "L"},
	{"Grupo", 14, "C"},
	{"Profesor", 55, "L"},
	{"Categoría", 34, "L"},
	{"Créditos", 20, "R"},
}

// writeResultPDF renders the final assignment listing, one block per degree.
func writeResultPDF(path, title, course string, result resultBody) error {
	pdf := gofpdf.New("L", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetMargins(10, 15, 10)
	pdf.SetAutoPageBreak(true, 15)
	pdf.SetFooterFunc(func() {
		pdf.SetY(-10)
		pdf.SetFont("Arial", "I", 8)
		pdf.CellFormat(0, 5, fmt.Sprintf("%d", pdf.PageNo()), "", 0, "C", false, 0, "")
	})
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 14)
	pdf.CellFormat(0, 10, tr(fmt.Sprintf("%s, curso %s", title, course)), "", 1, "C", false, 0, "")
	pdf.Ln(3)

	header := func() {
		pdf.SetFont("Arial", "B", 9)
		pdf.SetFillColor(167, 22, 20)
		pdf.SetTextColor(255, 255, 255)
		for _, c := range resultColumns {
			pdf.CellFormat(c.width, 7, tr(c.title), "1", 0, "C", true, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetTextColor(0, 0, 0)
	}

	for _, sec := range result.Sections {
		pdf.SetFont("Arial", "B", 11)
		pdf.CellFormat(0, 8, tr(sec.Name), "", 1, "L", false, 0, "")
		header()

		pdf.SetFont("Arial", "", 8)
		for _, r := range sec.Rows {
			holder, category, credits := "—", "—", "—"
			if r.Holder != "" {
				holder, category, credits = r.Holder, r.Category, fmt.Sprintf("%.4f", r.Credits)
			}
			if r.Color == colorCollaborator {
				pdf.SetTextColor(34, 136, 34)
			}
			cells := []string{r.CourseYear, r.Semester, r.Code, r.Name, r.Comments, r.Group, holder, category, credits}
			for i, c := range resultColumns {
				text := fit(pdf, tr(cells[i]), c.width-2)
				pdf.CellFormat(c.width, 6, text, "1", 0, c.align, false, 0, "")
			}
			pdf.Ln(-1)
			pdf.SetTextColor(0, 0, 0)
		}
		pdf.Ln(4)
	}

	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(0, 8, fmt.Sprintf("SUMA: %.4f", result.Total), "", 1, "R", false, 0, "")

	if err := pdf.OutputFileAndClose(path); err != nil {
		return fmt.Errorf("render pdf %s: %w", path, err)
	}
	return nil
}

// fit shortens s until it fits in width millimetres at the current font.
// s is already translated to the single-byte font encoding.
func fit(pdf *gofpdf.Fpdf, s string, width float64) string {
	if pdf.GetStringWidth(s) <= width {
		return s
	}
	b := strings.TrimSpace(s)
	for len(b) > 0 && pdf.GetStringWidth(b+"...") > width {
		b = b[:len(b)-1]
	}
	return b + "..."
}
