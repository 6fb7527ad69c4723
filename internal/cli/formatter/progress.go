package formatter

import (
	"fmt"
	"strings"
)

const (
	filledBlock = "█"
	emptyBlock  = "░"
)

// RenderQuotaBar renders how much of a quota is covered, like
// [████░░░░]  45%. The bar is red below a third, yellow below full
// coverage and green once the quota is met. Without quota it renders a dash.
func RenderQuotaBar(assigned, quota float64, width int) string {
	if quota <= 0 {
		return Dim("—")
	}
	width = max(width, 2)

	pct := assigned / quota
	shown := min(max(pct, 0), 1)
	filled := min(int(shown*float64(width)), width)
	bar := strings.Repeat(filledBlock, filled) + strings.Repeat(emptyBlock, width-filled)

	style := StyleGreen
	switch {
	case pct < 0.33:
		style = StyleRed
	case pct < 1-1e-9:
		style = StyleYellow
	}
	return fmt.Sprintf("[%s] %4.0f%%", style.Render(bar), pct*100)
}
