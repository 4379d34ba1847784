package github

import (
	"github.com/alexanderramin/ghgantt/internal/domain"
)

// DateFields names the board's custom date fields.
type DateFields struct {
	Start string
	End   string
}

// ToContainer merges board metadata and members into a domain snapshot.
// Drafts and pull requests are skipped. Items are nested by their remote
// parent when both ends are on the board; otherwise they stay roots.
func ToContainer(meta *ContainerMeta, members []MemberRecord, fields DateFields) (*domain.Container, error) {
	c := &domain.Container{
		ID:               meta.ID,
		Number:           meta.Number,
		Title:            meta.Title,
		URL:              domain.StrPtr(meta.URL),
		StartDateFieldID: domain.StrPtr(meta.FieldID(fields.Start)),
		EndDateFieldID:   domain.StrPtr(meta.FieldID(fields.End)),
	}

	seen := make(map[int]bool, len(members))
	flat := make([]*domain.WorkItem, 0, len(members))
	for _, m := range members {
		if m.Content == nil || seen[m.Content.Number] {
			continue
		}
		seen[m.Content.Number] = true
		flat = append(flat, workItem(m, fields))
	}

	for _, w := range flat {
		if w.ParentNumber != nil && !seen[*w.ParentNumber] {
			w.ParentNumber = nil
		}
	}

	items, err := domain.BuildForest(flat)
	if err != nil {
		return nil, domain.WrapError(domain.KindValidation, "build remote hierarchy", err)
	}
	c.Items = items
	return c, nil
}

func workItem(m MemberRecord, fields DateFields) *domain.WorkItem {
	rec := m.Content
	w := &domain.WorkItem{
		Number:          rec.Number,
		ExternalID:      rec.ID,
		ContainerItemID: domain.StrPtr(m.ID),
		Title:           rec.Title,
		Description:     domain.StrPtr(rec.Body),
		State:           rec.State,
		URL:             domain.StrPtr(rec.URL),
		Assignees:       rec.Assignees,
		Labels:          rec.Labels,
		Milestone:       domain.StrPtr(rec.Milestone),
		ParentNumber:    domain.IntPtr(rec.ParentNumber),
	}
	if v, ok := m.Value(fields.Start); ok {
		w.StartDate, _ = domain.ParseDate(v)
	}
	if v, ok := m.Value(fields.End); ok {
		w.EndDate, _ = domain.ParseDate(v)
	}
	return w
}

// StatusByNumber maps issue numbers to the value of a single-select field
// such as "Status".
func StatusByNumber(members []MemberRecord, fieldName string) map[int]string {
	out := make(map[int]string)
	for _, m := range members {
		if m.Content == nil {
			continue
		}
		if v, ok := m.Value(fieldName); ok {
			out[m.Content.Number] = v
		}
	}
	return out
}
