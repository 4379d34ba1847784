package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/ghgantt/internal/app"
	"github.com/alexanderramin/ghgantt/internal/diff"
	"github.com/alexanderramin/ghgantt/internal/domain"
)

const summaryBarWidth = 20

// FormatPull summarises a pull: the board, its size and overall progress,
// then every file written.
func FormatPull(res *app.PullResult) string {
	c := res.Container
	var b strings.Builder

	fmt.Fprintf(&b, "%s\n", Bold(domain.CoalesceStr(c.Title, fmt.Sprintf("Project #%d", c.Number))))
	if url := domain.StrValue(c.URL); url != "" {
		fmt.Fprintf(&b, "%s\n", Dim(url))
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "Tasks     %d\n", c.TotalTasks())
	fmt.Fprintf(&b, "Progress  %s\n", RenderProgress(c.OverallProgress(), summaryBarWidth))
	if res.Descriptions > 0 {
		fmt.Fprintf(&b, "Bodies    %s\n", Plural(res.Descriptions, "description"))
	}

	if len(res.Written) > 0 {
		b.WriteString("\n")
		for _, p := range res.Written {
			b.WriteString(StyleGreen.Render("  ✓ ") + p + "\n")
		}
	}
	return RenderBox("Pulled", b.String())
}

// changeDetail is the Details column for one change.
func changeDetail(ch diff.Change) string {
	switch ch.Kind {
	case domain.ChangeCreate:
		parts := []string{Truncate(ch.Item.Title, 50)}
		if ch.Parent != nil {
			parts = append(parts, Dim("under "+Truncate(ch.Parent.Title, 30)))
		}
		return strings.Join(parts, " ")
	case domain.ChangeUpdate:
		names := make([]string, len(ch.Fields))
		for i, f := range ch.Fields {
			names[i] = f.Field
		}
		return Truncate(ch.Item.Title, 40) + " " + Dim("("+strings.Join(names, ", ")+")")
	default:
		return Truncate(ch.Item.Title, 50) + " " + Dim("(not on the project)")
	}
}

// FormatChanges renders a change set as a Type, Issue, Details table.
func FormatChanges(changes diff.ChangeSet) string {
	rows := make([][]string, 0, len(changes))
	for _, ch := range changes {
		rows = append(rows, []string{ChangeLabel(ch.Kind), IssueRef(ch.Number()), changeDetail(ch)})
	}
	return RenderTable([]string{"TYPE", "ISSUE", "DETAILS"}, rows)
}

func changeCounts(changes diff.ChangeSet) string {
	return fmt.Sprintf("%s, %s, %s",
		ChangeStyle(domain.ChangeCreate).Render(fmt.Sprintf("%d new", changes.Count(domain.ChangeCreate))),
		ChangeStyle(domain.ChangeUpdate).Render(fmt.Sprintf("%d modified", changes.Count(domain.ChangeUpdate))),
		ChangeStyle(domain.ChangeOrphaned).Render(fmt.Sprintf("%d orphaned", changes.Count(domain.ChangeOrphaned))),
	)
}

// FormatStatus renders pending changes between the local file and GitHub.
func FormatStatus(res *app.StatusResult) string {
	if res.LocalMissing {
		return StyleYellow.Render("No local file found. Run 'ghgantt pull' first.") + "\n"
	}
	if res.Changes.IsEmpty() {
		return StyleGreen.Render("✓ Local file is in sync with GitHub.") + "\n"
	}

	var b strings.Builder
	b.WriteString(FormatChanges(res.Changes))
	b.WriteString("\n" + changeCounts(res.Changes) + "\n")
	writeWarnings(&b, res.Warnings)
	return RenderBox("Status", b.String())
}

// FormatPush renders the result of a push or a dry run.
func FormatPush(res *app.PushResult) string {
	if res.Changes.IsEmpty() {
		return StyleGreen.Render("✓ Nothing to push.") + "\n"
	}

	var b strings.Builder
	if res.DryRun {
		b.WriteString(FormatChanges(res.Changes))
		b.WriteString("\n" + changeCounts(res.Changes) + "\n")
		b.WriteString("\n" + Dim("Dry run: nothing was sent to GitHub.") + "\n")
		return RenderBox("Push (dry run)", b.String())
	}

	fmt.Fprintf(&b, "%s  %s  %s  %s\n",
		StyleGreen.Render(fmt.Sprintf("%d new", res.Created)),
		StyleYellow.Render(fmt.Sprintf("%d modified", res.Updated)),
		StyleRed.Render(fmt.Sprintf("%d failed", res.Failed)),
		Dim(fmt.Sprintf("%d skipped", res.Skipped)),
	)
	if res.Linked > 0 {
		fmt.Fprintf(&b, "%s\n", Dim(Plural(res.Linked, "sub-issue link")+" created"))
	}
	for _, e := range res.Events {
		if e.Level == app.EventInfo {
			continue
		}
		writeEvent(&b, e)
	}
	if res.Aborted {
		b.WriteString("\n" + StyleRed.Render("Push stopped early. Pending changes are kept for the next push.") + "\n")
	}
	if res.RunID != "" {
		b.WriteString("\n" + Dim("run "+res.RunID) + "\n")
	}
	return RenderBox("Push", b.String())
}

func writeEvent(b *strings.Builder, e app.SyncEvent) {
	msg := e.Message
	if e.Number > 0 {
		msg = fmt.Sprintf("#%d: %s", e.Number, msg)
	}
	switch e.Level {
	case app.EventError:
		b.WriteString(StyleRed.Render("  ERROR: "+msg) + "\n")
	default:
		b.WriteString(StyleYellow.Render("  WARNING: "+msg) + "\n")
	}
}

func writeWarnings(b *strings.Builder, warnings []string) {
	if len(warnings) == 0 {
		return
	}
	b.WriteString("\n")
	for _, w := range warnings {
		b.WriteString(StyleYellow.Render("  WARNING: "+w) + "\n")
	}
}

// FormatView is the terminal rendering of the hierarchy command output.
func FormatView(c *domain.Container) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s  %s\n\n", Bold(domain.CoalesceStr(c.Title, "Project Tasks")), RenderProgress(c.OverallProgress(), summaryBarWidth))
	if len(c.Items) == 0 {
		b.WriteString(Dim("No tasks.") + "\n")
		return b.String()
	}
	b.WriteString(RenderTree(c.Items))
	return b.String()
}
