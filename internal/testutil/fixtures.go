package testutil

import (
	"time"

	"github.com/alexanderramin/ghgantt/internal/domain"
)

// WorkItem options
type ItemOption func(*domain.WorkItem)

func WithNumber(n int) ItemOption {
	return func(w *domain.WorkItem) {
		w.Number = n
	}
}

func WithExternalID(id string) ItemOption {
	return func(w *domain.WorkItem) {
		w.ExternalID = id
	}
}

func WithContainerItemID(id string) ItemOption {
	return func(w *domain.WorkItem) {
		w.ContainerItemID = &id
	}
}

// WithDates takes YYYY-MM-DD strings; "" leaves the date unset.
func WithDates(start, end string) ItemOption {
	return func(w *domain.WorkItem) {
		w.StartDate = MustDate(start)
		w.EndDate = MustDate(end)
	}
}

func WithLabels(labels ...string) ItemOption {
	return func(w *domain.WorkItem) {
		w.Labels = labels
	}
}

func WithAssignees(logins ...string) ItemOption {
	return func(w *domain.WorkItem) {
		w.Assignees = logins
	}
}

func WithBody(body string) ItemOption {
	return func(w *domain.WorkItem) {
		w.Description = &body
	}
}

func WithMilestone(m string) ItemOption {
	return func(w *domain.WorkItem) {
		w.Milestone = &m
	}
}

func Closed() ItemOption {
	return func(w *domain.WorkItem) {
		w.State = domain.StateClosed
	}
}

// WithChildren nests kids under the item, recording the parent number on
// each when the item has one.
func WithChildren(kids ...*domain.WorkItem) ItemOption {
	return func(w *domain.WorkItem) {
		for _, k := range kids {
			if w.Number > 0 {
				n := w.Number
				k.ParentNumber = &n
			}
			w.Children = append(w.Children, k)
		}
	}
}

func NewTestItem(title string, opts ...ItemOption) *domain.WorkItem {
	w := &domain.WorkItem{
		Title: title,
		State: domain.StateOpen,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

func NewTestContainer(items ...*domain.WorkItem) *domain.Container {
	return &domain.Container{
		ID:     "PVT_test",
		Number: 1,
		Title:  "Test Project",
		Items:  items,
	}
}

// MustDate parses a YYYY-MM-DD date and panics on malformed input. "" is nil.
func MustDate(s string) *time.Time {
	t, err := domain.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return t
}
