package localstore

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/alexanderramin/ghgantt/internal/domain"
	"github.com/xuri/excelize/v2"
)

const (
	tasksSheet   = "Tasks"
	projectSheet = "Project Info"
)

// Column headers of the Tasks sheet. Columns are looked up by header on
// load so files written before the id, body and level columns still open.
const (
	colIssue       = "Issue #"
	colTitle       = "Title"
	colStart       = "Start Date"
	colEnd         = "End Date"
	colAssignees   = "Assignees"
	colLabels      = "Labels"
	colStatus      = "Status"
	colProgress    = "Progress %"
	colParent      = "Parent #"
	colMilestone   = "Milestone"
	colIssueID     = "Issue ID"
	colProjectItem = "Project Item ID"
	colURL         = "URL"
	colBody        = "Body"
	colLevel       = "Level"
)

var taskHeaders = []string{
	colIssue, colTitle, colStart, colEnd, colAssignees, colLabels, colStatus,
	colProgress, colParent, colMilestone, colIssueID, colProjectItem, colURL,
	colBody, colLevel,
}

var taskColumnWidths = map[string]float64{
	colIssue: 10, colTitle: 50, colStart: 12, colEnd: 12, colAssignees: 20,
	colLabels: 20, colStatus: 10, colProgress: 12, colParent: 10, colMilestone: 15,
	colIssueID: 22, colProjectItem: 26, colURL: 40, colBody: 60, colLevel: 6,
}

// SaveExcel writes c as a workbook with a Tasks sheet, one row per item in
// pre-order, and a Project Info sheet.
func SaveExcel(c *domain.Container, path string) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", tasksSheet); err != nil {
		return fmt.Errorf("creating tasks sheet: %w", err)
	}
	if err := writeTasksSheet(f, c); err != nil {
		return err
	}
	if err := writeProjectSheet(f, c); err != nil {
		return err
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}

func writeTasksSheet(f *excelize.File, c *domain.Container) error {
	header := make([]any, len(taskHeaders))
	for i, h := range taskHeaders {
		header[i] = h
	}
	if err := f.SetSheetRow(tasksSheet, "A1", &header); err != nil {
		return fmt.Errorf("writing header row: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return fmt.Errorf("creating header style: %w", err)
	}
	lastHeader, _ := excelize.CoordinatesToCellName(len(taskHeaders), 1)
	if err := f.SetCellStyle(tasksSheet, "A1", lastHeader, headerStyle); err != nil {
		return fmt.Errorf("styling header row: %w", err)
	}

	for i, h := range taskHeaders {
		col, _ := excelize.ColumnNumberToName(i + 1)
		if err := f.SetColWidth(tasksSheet, col, col, taskColumnWidths[h]); err != nil {
			return fmt.Errorf("sizing column %s: %w", h, err)
		}
	}

	indentStyles := make(map[int]int)
	titleCol, _ := excelize.ColumnNumberToName(2)
	row := 2
	err = domain.Walk(c.Items, func(item, parent *domain.WorkItem, depth int) error {
		values := taskRow(item, parent, depth)
		cell, _ := excelize.CoordinatesToCellName(1, row)
		if err := f.SetSheetRow(tasksSheet, cell, &values); err != nil {
			return fmt.Errorf("writing row %d: %w", row, err)
		}
		if depth > 0 {
			style, ok := indentStyles[depth]
			if !ok {
				style, err = f.NewStyle(&excelize.Style{Alignment: &excelize.Alignment{Indent: depth * 2}})
				if err != nil {
					return fmt.Errorf("creating indent style: %w", err)
				}
				indentStyles[depth] = style
			}
			titleCell := titleCol + strconv.Itoa(row)
			if err := f.SetCellStyle(tasksSheet, titleCell, titleCell, style); err != nil {
				return fmt.Errorf("styling row %d: %w", row, err)
			}
		}
		row++
		return nil
	})
	if err != nil {
		return err
	}

	return f.SetPanes(tasksSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

func taskRow(item, parent *domain.WorkItem, depth int) []any {
	var number, parentNumber any = "", ""
	if item.Number > 0 {
		number = item.Number
	}
	if parent != nil && parent.Number > 0 {
		parentNumber = parent.Number
	} else if parent == nil && item.ParentNumber != nil {
		parentNumber = *item.ParentNumber
	}
	return []any{
		number,
		item.Title,
		domain.FormatDate(item.StartDate),
		domain.FormatDate(item.EndDate),
		strings.Join(item.Assignees, ", "),
		strings.Join(item.Labels, ", "),
		string(stateOrOpen(item.State)),
		item.Progress(),
		parentNumber,
		item.MilestoneTitle(),
		item.ExternalID,
		domain.StrValue(item.ContainerItemID),
		domain.StrValue(item.URL),
		item.DescriptionText(),
		depth,
	}
}

func writeProjectSheet(f *excelize.File, c *domain.Container) error {
	if _, err := f.NewSheet(projectSheet); err != nil {
		return fmt.Errorf("creating project sheet: %w", err)
	}
	rows := [][]any{
		{"Project ID", c.ID},
		{"Project Number", c.Number},
		{"Project Title", c.Title},
		{"Project URL", domain.StrValue(c.URL)},
		{"Overall Progress", fmt.Sprintf("%d%%", c.OverallProgress())},
		{"Total Tasks", c.TotalTasks()},
	}
	for i, r := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(projectSheet, cell, &r); err != nil {
			return fmt.Errorf("writing project info: %w", err)
		}
	}
	if err := f.SetColWidth(projectSheet, "A", "A", 20); err != nil {
		return err
	}
	return f.SetColWidth(projectSheet, "B", "B", 50)
}

// LoadExcel reads a workbook written by SaveExcel.
func LoadExcel(path string) (*domain.Container, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening workbook: %w", err)
	}
	defer f.Close()

	c := &domain.Container{}
	if idx, _ := f.GetSheetIndex(projectSheet); idx >= 0 {
		if err := readProjectSheet(f, c); err != nil {
			return nil, err
		}
	}

	// Raw values keep real date cells as serials instead of their
	// locale-formatted display text.
	rows, err := f.GetRows(tasksSheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, domain.WrapError(domain.KindValidation, "parse "+path, fmt.Errorf("reading %s sheet: %w", tasksSheet, err))
	}
	items, err := readTaskRows(rows)
	if err != nil {
		return nil, domain.WrapError(domain.KindValidation, "parse "+path, err)
	}
	c.Items = items
	return c, nil
}

func readProjectSheet(f *excelize.File, c *domain.Container) error {
	rows, err := f.GetRows(projectSheet)
	if err != nil {
		return fmt.Errorf("reading %s sheet: %w", projectSheet, err)
	}
	for _, r := range rows {
		if len(r) < 2 {
			continue
		}
		key, val := strings.TrimSpace(r[0]), strings.TrimSpace(r[1])
		switch key {
		case "Project ID":
			c.ID = val
		case "Project Number":
			n, _ := strconv.Atoi(val)
			c.Number = n
		case "Project Title":
			c.Title = val
		case "Project URL":
			c.URL = domain.StrPtr(val)
		}
	}
	return nil
}

type rowReader struct {
	index map[string]int
	cells []string
}

func (r rowReader) get(header string) string {
	return strings.TrimSpace(r.raw(header))
}

func (r rowReader) raw(header string) string {
	i, ok := r.index[header]
	if !ok || i >= len(r.cells) {
		return ""
	}
	return r.cells[i]
}

func (r rowReader) number(header string) (int, error) {
	s := r.get(header)
	if s == "" {
		return 0, nil
	}
	// Spreadsheet apps sometimes store whole numbers as "12.0".
	s = strings.TrimSuffix(s, ".0")
	return strconv.Atoi(s)
}

func readTaskRows(rows [][]string) ([]*domain.WorkItem, error) {
	if len(rows) == 0 {
		return nil, nil
	}
	index := make(map[string]int, len(rows[0]))
	for i, h := range rows[0] {
		index[strings.TrimSpace(h)] = i
	}
	if _, ok := index[colTitle]; !ok {
		return nil, fmt.Errorf("%s sheet has no %q column", tasksSheet, colTitle)
	}
	_, hasLevel := index[colLevel]

	var flat []*domain.WorkItem
	var levels []int
	for n, cells := range rows[1:] {
		r := rowReader{index: index, cells: cells}
		line := n + 2
		if r.get(colTitle) == "" && r.get(colIssue) == "" {
			continue
		}

		item, err := itemFromRow(r)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", line, err)
		}
		level := 0
		if hasLevel {
			if level, err = r.number(colLevel); err != nil || level < 0 {
				return nil, fmt.Errorf("row %d: invalid level %q", line, r.get(colLevel))
			}
		}
		flat = append(flat, item)
		levels = append(levels, level)
	}

	if hasLevel {
		return nestByLevel(flat, levels)
	}
	return domain.BuildForest(flat)
}

func itemFromRow(r rowReader) (*domain.WorkItem, error) {
	number, err := r.number(colIssue)
	if err != nil {
		return nil, fmt.Errorf("invalid issue number %q", r.get(colIssue))
	}
	parent, err := r.number(colParent)
	if err != nil {
		return nil, fmt.Errorf("invalid parent number %q", r.get(colParent))
	}
	start, err := cellDate(r.get(colStart))
	if err != nil {
		return nil, fmt.Errorf("start date: %w", err)
	}
	end, err := cellDate(r.get(colEnd))
	if err != nil {
		return nil, fmt.Errorf("end date: %w", err)
	}

	return &domain.WorkItem{
		Number:          number,
		ExternalID:      r.get(colIssueID),
		ContainerItemID: domain.StrPtr(r.get(colProjectItem)),
		Title:           r.get(colTitle),
		Description:     domain.StrPtr(r.raw(colBody)),
		State:           domain.ParseState(strings.ToLower(r.get(colStatus))),
		URL:             domain.StrPtr(r.get(colURL)),
		StartDate:       start,
		EndDate:         end,
		Assignees:       splitList(r.get(colAssignees)),
		Labels:          splitList(r.get(colLabels)),
		Milestone:       domain.StrPtr(r.get(colMilestone)),
		ParentNumber:    domain.IntPtr(parent),
	}, nil
}

// cellDate accepts a YYYY-MM-DD string or a spreadsheet date serial. Any
// time of day in the serial is dropped.
func cellDate(s string) (*time.Time, error) {
	d, err := domain.ParseDate(s)
	if err == nil {
		return d, nil
	}
	serial, perr := strconv.ParseFloat(s, 64)
	if perr != nil || serial <= 0 {
		return nil, err
	}
	t, perr := excelize.ExcelDateToTime(serial, false)
	if perr != nil {
		return nil, err
	}
	y, m, dd := t.Date()
	v := time.Date(y, m, dd, 0, 0, 0, 0, time.UTC)
	return &v, nil
}

// nestByLevel rebuilds the tree from pre-order rows and their depths.
func nestByLevel(flat []*domain.WorkItem, levels []int) ([]*domain.WorkItem, error) {
	var roots []*domain.WorkItem
	var stack []*domain.WorkItem
	for i, item := range flat {
		level := levels[i]
		if level > len(stack) {
			return nil, fmt.Errorf("%q is at level %d without a parent at level %d", item.Title, level, level-1)
		}
		stack = stack[:level]
		if level == 0 {
			roots = append(roots, item)
		} else if err := stack[level-1].AttachChild(item); err != nil {
			return nil, err
		}
		stack = append(stack, item)
	}
	return roots, nil
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func stateOrOpen(s domain.State) domain.State {
	if s == "" {
		return domain.StateOpen
	}
	return s
}
