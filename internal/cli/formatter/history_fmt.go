package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/ghgantt/internal/domain"
)

func FormatRuns(runs []*domain.SyncRun) string {
	if len(runs) == 0 {
		return Dim("No pushes recorded yet.") + "\n"
	}
	rows := make([][]string, 0, len(runs))
	for _, r := range runs {
		state := StyleGreen.Render("ok")
		if r.Aborted {
			state = StyleRed.Render("aborted")
		} else if r.Failed > 0 {
			state = StyleYellow.Render("partial")
		}
		rows = append(rows, []string{
			TruncID(r.ID),
			Timestamp(r.StartedAt),
			fmt.Sprintf("#%d", r.ContainerNumber),
			fmt.Sprint(r.Created),
			fmt.Sprint(r.Updated),
			fmt.Sprint(r.Failed),
			state,
		})
	}
	return RenderTable([]string{"RUN", "STARTED", "PROJECT", "NEW", "MODIFIED", "FAILED", "RESULT"}, rows)
}

func FormatRun(run *domain.SyncRun, outcomes []*domain.SyncItemOutcome) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n", Dim("run"), run.ID)
	fmt.Fprintf(&b, "%s %s → %s\n", Dim("time"), Timestamp(run.StartedAt), Timestamp(run.FinishedAt))
	fmt.Fprintf(&b, "%s %s\n", Dim("file"), run.LocalPath)
	if run.Error != "" {
		b.WriteString(StyleRed.Render("error "+run.Error) + "\n")
	}
	b.WriteString("\n")

	rows := make([][]string, 0, len(outcomes))
	for _, o := range outcomes {
		rows = append(rows, []string{ChangeLabel(o.Kind), IssueRef(o.Number), OutcomePill(o.Outcome), o.Message})
	}
	b.WriteString(RenderTable([]string{"TYPE", "ISSUE", "OUTCOME", "MESSAGE"}, rows))
	return RenderBox("Push run", b.String())
}
