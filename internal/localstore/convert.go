package localstore

import (
	"fmt"

	"github.com/alexanderramin/ghgantt/internal/domain"
)

// FromDocument converts a decoded YAML document into a container.
func FromDocument(doc *Document) (*domain.Container, error) {
	c := &domain.Container{
		ID:     doc.Project.ID,
		Number: doc.Project.Number,
		Title:  doc.Project.Title,
		URL:    doc.Project.URL,
	}

	roots := make([]*domain.WorkItem, 0, len(doc.Tasks))
	for i := range doc.Tasks {
		item, err := fromTaskDoc(&doc.Tasks[i], fmt.Sprintf("tasks[%d]", i))
		if err != nil {
			return nil, err
		}
		roots = append(roots, item)
	}

	// Flat documents reference parents by number instead of nesting.
	items, err := domain.BuildForest(roots)
	if err != nil {
		return nil, fmt.Errorf("building hierarchy: %w", err)
	}
	c.Items = items
	return c, nil
}

func fromTaskDoc(t *TaskDoc, path string) (*domain.WorkItem, error) {
	start, err := domain.ParseDate(t.Start.calendarDate())
	if err != nil {
		return nil, fmt.Errorf("%s.start: %w", path, err)
	}
	end, err := domain.ParseDate(t.End.calendarDate())
	if err != nil {
		return nil, fmt.Errorf("%s.end: %w", path, err)
	}

	state := domain.StateOpen
	if t.Closed {
		state = domain.StateClosed
	}

	item := &domain.WorkItem{
		Number:          t.Issue,
		ExternalID:      t.IssueID,
		ContainerItemID: domain.StrPtr(t.ProjectItemID),
		Title:           t.Title,
		Description:     domain.StrPtr(t.Body),
		State:           state,
		URL:             domain.StrPtr(t.URL),
		StartDate:       start,
		EndDate:         end,
		Assignees:       t.Assignees,
		Labels:          t.Labels,
		Milestone:       domain.StrPtr(t.Milestone),
		ParentNumber:    t.Parent,
	}

	for i := range t.Subtasks {
		child, err := fromTaskDoc(&t.Subtasks[i], fmt.Sprintf("%s.subtasks[%d]", path, i))
		if err != nil {
			return nil, err
		}
		if err := item.AttachChild(child); err != nil {
			return nil, err
		}
	}
	return item, nil
}

// ToDocument converts a container into its YAML document form.
func ToDocument(c *domain.Container) *Document {
	doc := &Document{
		Project: ProjectDoc{
			ID:       c.ID,
			Number:   c.Number,
			Title:    c.Title,
			URL:      c.URL,
			Progress: c.OverallProgress(),
		},
		Tasks: make([]TaskDoc, 0, len(c.Items)),
	}
	for _, item := range c.Items {
		doc.Tasks = append(doc.Tasks, toTaskDoc(item))
	}
	return doc
}

func toTaskDoc(w *domain.WorkItem) TaskDoc {
	t := TaskDoc{
		Issue:         w.Number,
		Title:         w.Title,
		Start:         dateValue(domain.FormatDate(w.StartDate)),
		End:           dateValue(domain.FormatDate(w.EndDate)),
		Assignees:     w.Assignees,
		Labels:        w.Labels,
		Milestone:     w.MilestoneTitle(),
		Closed:        w.IsClosed(),
		ProjectItemID: domain.StrValue(w.ContainerItemID),
		IssueID:       w.ExternalID,
		URL:           domain.StrValue(w.URL),
		Body:          w.DescriptionText(),
		Progress:      w.Progress(),
	}
	for _, child := range w.Children {
		t.Subtasks = append(t.Subtasks, toTaskDoc(child))
	}
	return t
}
