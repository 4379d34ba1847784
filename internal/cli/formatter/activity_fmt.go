package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/ghgantt/internal/app"
)

func FormatThreadSaved(res *app.FetchThreadResult) string {
	return fmt.Sprintf("%s Saved #%d %q with %s to %s\n",
		StyleGreen.Render("✓"), res.Thread.Number, res.Thread.Title,
		Plural(len(res.Thread.Comments), "comment"), res.Path)
}

// FormatUserIssues summarises a fetch-user-issues run.
func FormatUserIssues(user string, res *app.UserIssuesResult) string {
	var b strings.Builder
	rows := [][]string{
		{"Found", fmt.Sprint(res.Found)},
		{"Saved", StyleGreen.Render(fmt.Sprint(res.Saved))},
		{"Excluded by status", fmt.Sprint(res.Excluded)},
		{"No activity in range", fmt.Sprint(res.NoActivity)},
	}
	if res.Failed > 0 {
		rows = append(rows, []string{"Failed", StyleRed.Render(fmt.Sprint(res.Failed))})
	}
	b.WriteString(RenderTable([]string{"ISSUES", "COUNT"}, rows))
	if len(res.Paths) > 0 {
		b.WriteString("\n")
		for _, p := range res.Paths {
			b.WriteString(Dim("  "+p) + "\n")
		}
	}
	return RenderBox("Issues involving @"+user, b.String())
}
