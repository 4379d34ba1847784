package formatter

import (
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/ghgantt/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

// RenderBox wraps content in a rounded border with an optional title.
func RenderBox(title string, content string) string {
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorDim).
		Padding(1, 2)

	content = strings.TrimRight(content, "\n")
	if title != "" {
		content = StyleHeader.Render(strings.ToUpper(title)) + "\n\n" + content
	}
	return box.Render(content)
}

// DateOrDash formats a day as YYYY-MM-DD, or a dim "--" when unset.
func DateOrDash(t *time.Time) string {
	if t == nil {
		return Dim("--")
	}
	return domain.FormatDate(t)
}

// Timestamp renders t in local time to the minute.
func Timestamp(t time.Time) string {
	if t.IsZero() {
		return Dim("--")
	}
	return t.Local().Format("2006-01-02 15:04")
}

// TruncID returns the first 8 characters of an id, dimmed.
func TruncID(id string) string {
	if len(id) > 8 {
		id = id[:8]
	}
	return StyleDim.Render(id)
}

// Plural returns "1 task" or "3 tasks".
func Plural(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}

// IssueRef is "#12", or a dim "new" for an item without a number.
func IssueRef(n int) string {
	if n <= 0 {
		return Dim("new")
	}
	return fmt.Sprintf("#%d", n)
}

// Truncate shortens s to n runes with an ellipsis.
func Truncate(s string, n int) string {
	r := []rune(s)
	if n <= 0 || len(r) <= n {
		return s
	}
	if n == 1 {
		return "…"
	}
	return string(r[:n-1]) + "…"
}
