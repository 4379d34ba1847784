// Package gantt renders a container as a Mermaid Gantt chart, a markdown
// task table, or a PDF timeline.
package gantt

import (
	"fmt"
	"slices"
	"strings"

	"github.com/alexanderramin/ghgantt/internal/domain"
)

const noMilestone = "No Milestone"

// Options controls chart rendering.
type Options struct {
	// Title overrides the container title.
	Title           string
	ExcludeWeekends bool
}

// DefaultOptions excludes weekends, as the chart does unless asked otherwise.
func DefaultOptions() Options {
	return Options{ExcludeWeekends: true}
}

// Mermaid renders every dated item, grouped into one section per milestone.
// Items without a milestone come first.
func Mermaid(c *domain.Container, opts Options) string {
	var b strings.Builder
	writeHeader(&b, c, opts, true)

	ids := taskIDs(c.Items)
	var dated []*domain.WorkItem
	for _, item := range domain.Flatten(c.Items) {
		if item.StartDate != nil {
			dated = append(dated, item)
		}
	}
	if len(dated) == 0 {
		b.WriteString("    %% No tasks with dates found\n")
		b.WriteString("```")
		return b.String()
	}

	for _, group := range groupByMilestone(dated) {
		fmt.Fprintf(&b, "    section %s\n", group.name)
		for _, item := range sortedByStart(group.items) {
			b.WriteString(taskLine(item, ids[item]))
			b.WriteByte('\n')
		}
		b.WriteByte('\n')
	}
	b.WriteString("```")
	return b.String()
}

// Hierarchy renders one section per root item: the root itself, then its
// direct children sorted by start date.
func Hierarchy(c *domain.Container, opts Options) string {
	var b strings.Builder
	writeHeader(&b, c, opts, false)

	ids := taskIDs(c.Items)
	for _, root := range c.Items {
		if len(root.Children) == 0 && root.StartDate == nil {
			continue
		}
		fmt.Fprintf(&b, "    section %s\n", sanitize(root.Title))
		if root.StartDate != nil {
			b.WriteString(taskLine(root, ids[root]))
			b.WriteByte('\n')
		}
		for _, child := range sortedByStart(root.Children) {
			if child.StartDate == nil {
				continue
			}
			b.WriteString(taskLine(child, ids[child]))
			b.WriteByte('\n')
		}
		b.WriteByte('\n')
	}
	b.WriteString("```")
	return b.String()
}

func writeHeader(b *strings.Builder, c *domain.Container, opts Options, axis bool) {
	title := domain.CoalesceStr(opts.Title, c.Title)
	b.WriteString("```mermaid\n")
	b.WriteString("gantt\n")
	fmt.Fprintf(b, "    title %s\n", title)
	b.WriteString("    dateFormat YYYY-MM-DD\n")
	if axis {
		b.WriteString("    tickInterval 1week\n")
		b.WriteString("    axisFormat %d-%b\n")
	}
	if opts.ExcludeWeekends {
		b.WriteString("    excludes weekends\n")
	}
	b.WriteByte('\n')
}

// taskLine renders "    Title :done, task12, 2026-01-05, 3d".
func taskLine(item *domain.WorkItem, id string) string {
	days, ok := item.DurationDays()
	if !ok {
		days = 1
	}
	return fmt.Sprintf("    %s :%s%s, %s, %dd",
		sanitize(item.Title), statusTag(item.Status()), id, domain.FormatDate(item.StartDate), days)
}

func statusTag(s domain.Status) string {
	switch s {
	case domain.StatusDone:
		return "done, "
	case domain.StatusInProgress:
		return "active, "
	default:
		return ""
	}
}

var titleReplacer = strings.NewReplacer(":", "-", ";", "-", ",", " ")

// sanitize strips the characters Mermaid treats as task syntax.
func sanitize(title string) string {
	return titleReplacer.Replace(title)
}

// taskIDs assigns task<N> to numbered items and draft<K> to local-only ones
// so ids stay unique before the first push.
func taskIDs(items []*domain.WorkItem) map[*domain.WorkItem]string {
	ids := make(map[*domain.WorkItem]string)
	drafts := 0
	_ = domain.Walk(items, func(item, _ *domain.WorkItem, _ int) error {
		if item.Number > 0 {
			ids[item] = fmt.Sprintf("task%d", item.Number)
		} else {
			drafts++
			ids[item] = fmt.Sprintf("draft%d", drafts)
		}
		return nil
	})
	return ids
}

type section struct {
	name  string
	items []*domain.WorkItem
}

func groupByMilestone(items []*domain.WorkItem) []section {
	groups := []section{{name: noMilestone}}
	index := map[string]int{noMilestone: 0}
	for _, item := range items {
		name := domain.CoalesceStr(item.MilestoneTitle(), noMilestone)
		i, ok := index[name]
		if !ok {
			i = len(groups)
			index[name] = i
			groups = append(groups, section{name: name})
		}
		groups[i].items = append(groups[i].items, item)
	}
	if len(groups[0].items) == 0 {
		groups = groups[1:]
	}
	return groups
}

// sortedByStart returns a stable copy ordered by start date; undated items
// sort last.
func sortedByStart(items []*domain.WorkItem) []*domain.WorkItem {
	out := slices.Clone(items)
	slices.SortStableFunc(out, func(a, b *domain.WorkItem) int {
		switch {
		case a.StartDate == nil && b.StartDate == nil:
			return 0
		case a.StartDate == nil:
			return 1
		case b.StartDate == nil:
			return -1
		default:
			return a.StartDate.Compare(*b.StartDate)
		}
	})
	return out
}
