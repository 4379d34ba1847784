package gantt

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/ghgantt/internal/domain"
	"github.com/jung-kurt/gofpdf"
)

// A4 landscape, millimetres.
const (
	pageW      = 297.0
	pageH      = 210.0
	margin     = 10.0
	labelW     = 75.0
	rowH       = 6.0
	headerH    = 22.0
	axisH      = 6.0
	barPadding = 1.2
)

type rgb struct{ r, g, b int }

var (
	colorDone    = rgb{152, 151, 26}
	colorActive  = rgb{215, 153, 33}
	colorPending = rgb{69, 133, 136}
	colorGrid    = rgb{213, 196, 161}
	colorText    = rgb{40, 40, 40}
)

// PDF draws a timeline with one row per dated item in traversal order,
// indented by depth, and a weekly grid.
func PDF(c *domain.Container, opts Options) ([]byte, error) {
	rows := pdfRows(c.Items)

	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(margin, margin, margin)
	pdf.SetAutoPageBreak(false, 0)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	title := domain.CoalesceStr(opts.Title, c.Title)
	if len(rows) == 0 {
		pdf.AddPage()
		drawTitle(pdf, tr, title, c)
		pdf.SetFont("Arial", "I", 10)
		pdf.CellFormat(0, 8, "No tasks with dates found", "", 1, "L", false, 0, "")
		return output(pdf)
	}

	first, last := span(rows)
	days := int(last.Sub(first).Hours()/24) + 1
	chartX := margin + labelW
	chartW := pageW - margin - chartX
	dayW := chartW / float64(days)

	perPage := int((pageH - margin - headerH - axisH - margin) / rowH)
	for i, row := range rows {
		if i%perPage == 0 {
			pdf.AddPage()
			drawTitle(pdf, tr, title, c)
			drawAxis(pdf, first, days, chartX, dayW)
		}
		y := margin + headerH + axisH + float64(i%perPage)*rowH
		drawRow(pdf, tr, row, first, chartX, dayW, y, opts.ExcludeWeekends)
	}
	return output(pdf)
}

type pdfRow struct {
	item  *domain.WorkItem
	depth int
}

func pdfRows(items []*domain.WorkItem) []pdfRow {
	var rows []pdfRow
	_ = domain.Walk(items, func(item, _ *domain.WorkItem, depth int) error {
		if item.StartDate != nil {
			rows = append(rows, pdfRow{item: item, depth: depth})
		}
		return nil
	})
	return rows
}

func span(rows []pdfRow) (time.Time, time.Time) {
	first := *rows[0].item.StartDate
	last := first
	for _, r := range rows {
		start, end := barDates(r.item)
		if start.Before(first) {
			first = start
		}
		if end.After(last) {
			last = end
		}
	}
	return first, last
}

func barDates(item *domain.WorkItem) (time.Time, time.Time) {
	start := *item.StartDate
	end := start
	if item.EndDate != nil && !item.EndDate.Before(start) {
		end = *item.EndDate
	}
	return start, end
}

func drawTitle(pdf *gofpdf.Fpdf, tr func(string) string, title string, c *domain.Container) {
	pdf.SetXY(margin, margin)
	pdf.SetTextColor(colorText.r, colorText.g, colorText.b)
	pdf.SetFont("Arial", "B", 14)
	pdf.CellFormat(0, 8, tr(title), "", 1, "L", false, 0, "")
	pdf.SetFont("Arial", "", 9)
	pdf.CellFormat(0, 5, fmt.Sprintf("%d tasks, %d%% complete", c.TotalTasks(), c.OverallProgress()), "", 1, "L", false, 0, "")
}

// drawAxis labels each Monday and draws its grid line down the page.
func drawAxis(pdf *gofpdf.Fpdf, first time.Time, days int, chartX, dayW float64) {
	top := margin + headerH
	pdf.SetFont("Arial", "", 7)
	pdf.SetDrawColor(colorGrid.r, colorGrid.g, colorGrid.b)
	pdf.SetLineWidth(0.1)

	offset := (8 - int(first.Weekday())) % 7
	for d := offset; d < days; d += 7 {
		x := chartX + float64(d)*dayW
		pdf.Line(x, top, x, pageH-margin)
		pdf.SetXY(x, top)
		pdf.CellFormat(14, axisH-1, first.AddDate(0, 0, d).Format("02-Jan"), "", 0, "L", false, 0, "")
	}
	pdf.Line(chartX, top+axisH, pageW-margin, top+axisH)
}

func drawRow(pdf *gofpdf.Fpdf, tr func(string) string, row pdfRow, first time.Time, chartX, dayW, y float64, excludeWeekends bool) {
	item := row.item

	pdf.SetFont("Arial", "", 8)
	pdf.SetTextColor(colorText.r, colorText.g, colorText.b)
	pdf.SetXY(margin+float64(row.depth)*3, y)
	label := truncate(tr(item.Label()), 48-row.depth*2)
	pdf.CellFormat(labelW-float64(row.depth)*3, rowH, label, "", 0, "L", false, 0, "")

	col := colorPending
	switch item.Status() {
	case domain.StatusDone:
		col = colorDone
	case domain.StatusInProgress:
		col = colorActive
	}
	pdf.SetFillColor(col.r, col.g, col.b)

	start, end := barDates(item)
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if excludeWeekends && isWeekend(d) {
			continue
		}
		x := chartX + d.Sub(first).Hours()/24*dayW
		pdf.Rect(x, y+barPadding, dayW, rowH-2*barPadding, "F")
	}
}

func isWeekend(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

func truncate(s string, n int) string {
	if n < 4 || len(s) <= n {
		return s
	}
	return strings.TrimSpace(s[:n-3]) + "..."
}

func output(pdf *gofpdf.Fpdf) ([]byte, error) {
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("rendering pdf: %w", err)
	}
	return buf.Bytes(), nil
}
