package gantt

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/alexanderramin/ghgantt/internal/domain"
)

type Format string

const (
	FormatMermaid   Format = "mermaid"
	FormatHierarchy Format = "hierarchy"
	FormatTable     Format = "table"
	FormatPDF       Format = "pdf"
)

// ParseFormat accepts the names used by the view command.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "", FormatMermaid:
		return FormatMermaid, nil
	case FormatHierarchy, FormatTable, FormatPDF:
		return f, nil
	default:
		return "", domain.Errorf(domain.KindValidation, "parse format",
			"unknown format %q (expected mermaid, hierarchy, table or pdf)", s)
	}
}

// Render produces the bytes for format. Text formats are returned bare;
// WrapDocument adds the file preamble.
func Render(c *domain.Container, format Format, opts Options) ([]byte, error) {
	switch format {
	case FormatMermaid:
		return []byte(Mermaid(c, opts)), nil
	case FormatHierarchy:
		return []byte(Hierarchy(c, opts)), nil
	case FormatTable:
		return []byte(Table(c)), nil
	case FormatPDF:
		return PDF(c, opts)
	default:
		return nil, domain.Errorf(domain.KindValidation, "render", "unknown format %q", format)
	}
}

// WrapDocument adds the heading, generation date and scroll wrapper used
// when a chart is saved as markdown.
func WrapDocument(content string, generated time.Time) string {
	var b strings.Builder
	b.WriteString("# Gantt Chart\n\n")
	fmt.Fprintf(&b, "_Generated on %s_\n\n", generated.Format(domain.DateLayout))
	b.WriteString("<div style=\"width: 100%; overflow-x: auto;\">\n\n")
	b.WriteString(content)
	b.WriteString("\n\n</div>")
	return b.String()
}

// WriteFile renders c and saves it to path. Markdown output is wrapped with
// WrapDocument; PDF is written as produced.
func WriteFile(c *domain.Container, format Format, opts Options, path string, now time.Time) error {
	data, err := Render(c, format, opts)
	if err != nil {
		return err
	}
	if format != FormatPDF {
		data = []byte(WrapDocument(string(data), now))
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating output dir: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
