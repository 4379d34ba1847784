package activity

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/alexanderramin/ghgantt/internal/domain"
)

const timestampLayout = "2006-01-02 15:04"

// FormatThread renders an issue and its comments as a markdown document.
func FormatThread(t *domain.Thread) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Issue #%d: %s\n\n", t.Number, t.Title)

	labels := "none"
	if len(t.Labels) > 0 {
		labels = strings.Join(t.Labels, ", ")
	}
	assignees := "unassigned"
	if len(t.Assignees) > 0 {
		handles := make([]string, len(t.Assignees))
		for i, a := range t.Assignees {
			handles[i] = "@" + a
		}
		assignees = strings.Join(handles, ", ")
	}

	fmt.Fprintf(&b, "**Opened by @%s** on %s\n", domain.CoalesceStr(t.Author, "unknown"), t.CreatedAt.Format(timestampLayout))
	fmt.Fprintf(&b, "**Status:** %s | **Labels:** %s | **Assignees:** %s\n",
		strings.ToUpper(string(t.State)), labels, assignees)
	fmt.Fprintf(&b, "**URL:** %s\n\n", t.URL)
	b.WriteString("---\n\n")

	b.WriteString(domain.CoalesceStr(strings.TrimSpace(t.Body), "*No description provided.*"))
	b.WriteString("\n\n---\n\n")

	if len(t.Comments) == 0 {
		b.WriteString("## Comments\n\n*No comments yet.*\n")
		return b.String()
	}

	fmt.Fprintf(&b, "## Comments (%d)\n\n", len(t.Comments))
	for _, c := range t.Comments {
		fmt.Fprintf(&b, "### @%s - %s\n\n", domain.CoalesceStr(c.Author, "unknown"), c.CreatedAt.Format(timestampLayout))
		b.WriteString(domain.CoalesceStr(strings.TrimSpace(c.Body), "*Empty comment*"))
		b.WriteString("\n\n---\n\n")
	}
	return b.String()
}

// ThreadPath is where SaveThread writes the thread for issue n.
func ThreadPath(dir string, n int) string {
	return filepath.Join(dir, fmt.Sprintf("%d_thread.md", n))
}

// SaveThread writes the formatted thread to <dir>/<n>_thread.md behind an
// identifying header comment and returns the path.
func SaveThread(dir string, t *domain.Thread) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating thread dir: %w", err)
	}
	path := ThreadPath(dir, t.Number)
	content := fmt.Sprintf("<!-- Issue #%d Thread: %s -->\n\n%s", t.Number, t.Title, FormatThread(t))
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("writing thread #%d: %w", t.Number, err)
	}
	return path, nil
}
