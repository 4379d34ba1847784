package domain

import (
	"fmt"
	"slices"
	"time"
)

// DateLayout is the calendar-date format used by every local and remote encoding.
const DateLayout = "2006-01-02"

// WorkItem is one issue in the hierarchy. Number 0 marks an item that has not
// been created remotely yet.
type WorkItem struct {
	Number          int
	ExternalID      string
	ContainerItemID *string

	Title       string
	Description *string
	State       State
	URL         *string

	StartDate *time.Time
	EndDate   *time.Time

	Assignees []string
	Labels    []string
	Milestone *string

	ParentNumber *int
	Children     []*WorkItem
}

func (w *WorkItem) IsLocalOnly() bool { return w.Number == 0 }

func (w *WorkItem) IsClosed() bool { return w.State == StateClosed }

// Progress is 0/100 for leaves and the truncated share of closed direct
// children otherwise.
func (w *WorkItem) Progress() int {
	if len(w.Children) == 0 {
		if w.IsClosed() {
			return 100
		}
		return 0
	}
	closed := 0
	for _, c := range w.Children {
		if c.IsClosed() {
			closed++
		}
	}
	return closed * 100 / len(w.Children)
}

func (w *WorkItem) Status() Status {
	if w.IsClosed() {
		return StatusDone
	}
	if w.Progress() > 0 {
		return StatusInProgress
	}
	return StatusNotStarted
}

// DurationDays returns the inclusive day span when both dates are set.
func (w *WorkItem) DurationDays() (int, bool) {
	if w.StartDate == nil || w.EndDate == nil {
		return 0, false
	}
	days := int(w.EndDate.Sub(*w.StartDate).Hours() / 24)
	return days + 1, true
}

// Label renders "#12 Title" for numbered items and "Title" for local-only ones.
func (w *WorkItem) Label() string {
	if w.Number > 0 {
		return fmt.Sprintf("#%d %s", w.Number, w.Title)
	}
	return w.Title
}

// Contains reports whether target is w or one of its descendants.
func (w *WorkItem) Contains(target *WorkItem) bool {
	found := false
	_ = Walk([]*WorkItem{w}, func(item, _ *WorkItem, _ int) error {
		if item == target {
			found = true
			return ErrStopWalk
		}
		return nil
	})
	return found
}

// AttachChild appends child to w's children and records the parent number.
// A child may be attached once, and never beneath its own subtree.
func (w *WorkItem) AttachChild(child *WorkItem) error {
	if child == nil {
		return NewError(KindValidation, "attach child", "child is nil")
	}
	if slices.Contains(w.Children, child) {
		return Errorf(KindValidation, "attach child", "%q is already a child of %q", child.Title, w.Title)
	}
	if child.Contains(w) {
		return Errorf(KindValidation, "attach child", "attaching %q under %q would create a cycle", child.Title, w.Title)
	}
	w.Children = append(w.Children, child)
	if w.Number > 0 {
		n := w.Number
		child.ParentNumber = &n
	}
	return nil
}

// DescriptionText returns the description or "".
func (w *WorkItem) DescriptionText() string {
	if w.Description == nil {
		return ""
	}
	return *w.Description
}

// MilestoneTitle returns the milestone or "".
func (w *WorkItem) MilestoneTitle() string {
	if w.Milestone == nil {
		return ""
	}
	return *w.Milestone
}

// ParseDate parses a YYYY-MM-DD calendar date into UTC midnight.
func ParseDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q (expected YYYY-MM-DD): %w", s, err)
	}
	return &t, nil
}

// FormatDate renders a calendar date or "" for nil.
func FormatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(DateLayout)
}

// SameDate compares two optional calendar dates.
func SameDate(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
