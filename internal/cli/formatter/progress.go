package formatter

import (
	"fmt"

	"github.com/charmbracelet/bubbles/progress"
)

// RenderProgress draws a static bar for pct (0-100) followed by the
// percentage. The fill goes red below a third, yellow below two thirds and
// green above.
func RenderProgress(pct int, width int) string {
	pct = min(max(pct, 0), 100)
	width = max(width, 2)

	fill := string(ColorGreen)
	switch {
	case pct < 33:
		fill = string(ColorRed)
	case pct < 66:
		fill = string(ColorYellow)
	}

	bar := progress.New(
		progress.WithSolidFill(fill),
		progress.WithWidth(width),
		progress.WithoutPercentage(),
	)
	bar.Full = '█'
	bar.Empty = '░'
	bar.EmptyColor = string(ColorDim)
	return fmt.Sprintf("[%s] %3d%%", bar.ViewAs(float64(pct)/100), pct)
}
