package gantt

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/ghgantt/internal/domain"
)

// Table renders the forest as a markdown table, children indented with one
// "└─ " per level.
func Table(c *domain.Container) string {
	var b strings.Builder
	b.WriteString("# Project Tasks\n\n")
	fmt.Fprintf(&b, "**Project:** %s\n", c.Title)
	fmt.Fprintf(&b, "**Progress:** %d%%\n\n", c.OverallProgress())
	b.WriteString("| # | Title | Start | End | Status | Progress | Assignees |\n")
	b.WriteString("|---|-------|-------|-----|--------|----------|-----------|")

	_ = domain.Walk(c.Items, func(item, _ *domain.WorkItem, depth int) error {
		fmt.Fprintf(&b, "\n| %s | %s%s | %s | %s | %s | %d%% | %s |",
			numberCell(item),
			strings.Repeat("└─ ", depth),
			escapeCell(item.Title),
			dashIfEmpty(domain.FormatDate(item.StartDate)),
			dashIfEmpty(domain.FormatDate(item.EndDate)),
			item.Status(),
			item.Progress(),
			dashIfEmpty(strings.Join(item.Assignees, ", ")),
		)
		return nil
	})
	return b.String()
}

func numberCell(item *domain.WorkItem) string {
	if item.Number > 0 {
		return fmt.Sprintf("#%d", item.Number)
	}
	return "new"
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

func dashIfEmpty(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
