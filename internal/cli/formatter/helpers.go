package formatter

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/nicocardiel/repdoc/internal/domain"
)

// RenderBox wraps content in a rounded-border box with an optional title.
func RenderBox(title string, content string) string {
	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorDim).
		PaddingLeft(2).
		PaddingRight(2)

	if title != "" {
		return boxStyle.Render(StyleHeader.Render(strings.ToUpper(title)) + "\n\n" + content)
	}
	return boxStyle.Render(content)
}

// Credits formats a credit amount with four decimals, as in the reports.
func Credits(v float64) string {
	return fmt.Sprintf("%.4f", v)
}

// Percent formats the share of quota covered, or a dash without quota.
func Percent(a *domain.Applicant) string {
	if a.Quota <= 0 {
		return "—"
	}
	return fmt.Sprintf("%.1f%%", a.AssignedPercent())
}

// RoundLabel renders an applicant's next round: a dash when they never
// take part, parenthesised once they have finished.
func RoundLabel(a *domain.Applicant) string {
	switch {
	case a.Round == domain.RoundNotEligible:
		return StyleDim.Render("—")
	case a.Finished:
		return StyleDim.Render(fmt.Sprintf("(%d)", a.Round))
	default:
		return fmt.Sprintf("%d", a.Round)
	}
}

// TruncID returns the first 8 characters of an ID, dimmed.
func TruncID(id string) string {
	if len(id) > 8 {
		id = id[:8]
	}
	return StyleDim.Render(id)
}

func YesNo(b bool) string {
	if b {
		return StyleGreen.Render("Sí")
	}
	return StyleDim.Render("No")
}
