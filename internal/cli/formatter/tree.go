package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/ghgantt/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

const (
	treeBranch = "├─ "
	treeCorner = "└─ "
	treePipe   = "│  "
	treeSpace  = "   "
)

// RenderTree draws the task forest with box-drawing connectors. Closed
// items are dimmed with a check mark and a date badge is right-aligned on
// every line that has one.
func RenderTree(items []*domain.WorkItem) string {
	type line struct {
		content string
		badge   string
	}
	var lines []line
	width := 0

	var walk func(items []*domain.WorkItem, indent string, depth int)
	walk = func(items []*domain.WorkItem, indent string, depth int) {
		for i, item := range items {
			last := i == len(items)-1
			prefix, next := indent, indent
			if depth > 0 {
				if last {
					prefix += treeCorner
					next += treeSpace
				} else {
					prefix += treeBranch
					next += treePipe
				}
			}

			title := item.Title
			if item.Number > 0 {
				title = Dim(fmt.Sprintf("#%d ", item.Number)) + title
			}
			if item.IsClosed() {
				title = StyleGreen.Render("✔ ") + Dim(title)
			}
			content := prefix + title
			width = max(width, lipgloss.Width(content))

			var badge string
			if item.StartDate != nil || item.EndDate != nil {
				badge = StyleBlue.Render(fmt.Sprintf("[ %s → %s ]", DateOrDash(item.StartDate), DateOrDash(item.EndDate)))
			}
			lines = append(lines, line{content: content, badge: badge})

			walk(item.Children, next, depth+1)
		}
	}
	walk(items, "", 0)

	var b strings.Builder
	for _, l := range lines {
		b.WriteString(l.content)
		if l.badge != "" {
			b.WriteString(strings.Repeat(" ", width-lipgloss.Width(l.content)+2) + l.badge)
		}
		b.WriteString("\n")
	}
	return b.String()
}
