package github

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexanderramin/ghgantt/internal/domain"
)

func str(s string) *string { return &s }

func TestToContainer(t *testing.T) {
	meta := &ContainerMeta{
		ID: "PVT_1", Number: 3, Title: "Roadmap", URL: "https://github.com/orgs/acme/projects/3",
		Fields: []domain.Field{{ID: "F_s", Name: "Start"}, {ID: "F_e", Name: "Due"}},
	}
	members := []MemberRecord{
		{ID: "PVTI_2", Content: &ItemRecord{ID: "I_2", Number: 2, Title: "Child", State: domain.StateClosed, ParentNumber: 1},
			FieldValues: []FieldValue{{FieldName: "Start", Date: str("2025-01-07")}, {FieldName: "Due", Date: str("2025-01-08")}}},
		{ID: "PVTI_1", Content: &ItemRecord{ID: "I_1", Number: 1, Title: "Parent", State: domain.StateOpen, Milestone: "v1", Body: "hello"}},
		{ID: "PVTI_draft"},
		{ID: "PVTI_3", Content: &ItemRecord{ID: "I_3", Number: 3, Title: "Orphan child", ParentNumber: 99}},
		{ID: "PVTI_dup", Content: &ItemRecord{ID: "I_1", Number: 1, Title: "Parent"}},
	}

	c, err := ToContainer(meta, members, DateFields{Start: "Start", End: "Due"})
	require.NoError(t, err)

	assert.Equal(t, "F_s", domain.StrValue(c.StartDateFieldID))
	assert.Equal(t, "F_e", domain.StrValue(c.EndDateFieldID))
	require.Len(t, c.Items, 2)

	parent := c.Items[0]
	assert.Equal(t, 1, parent.Number)
	assert.Equal(t, "I_1", parent.ExternalID)
	assert.Equal(t, "PVTI_1", domain.StrValue(parent.ContainerItemID))
	assert.Equal(t, "v1", parent.MilestoneTitle())
	assert.Equal(t, "hello", parent.DescriptionText())
	require.Len(t, parent.Children, 1)

	child := parent.Children[0]
	assert.Equal(t, "2025-01-07", domain.FormatDate(child.StartDate))
	assert.Equal(t, "2025-01-08", domain.FormatDate(child.EndDate))
	assert.Equal(t, 1, *child.ParentNumber)

	orphan := c.Items[1]
	assert.Equal(t, 3, orphan.Number)
	assert.Nil(t, orphan.ParentNumber)
	assert.Nil(t, orphan.Milestone)
	assert.Nil(t, orphan.Description)
	assert.Equal(t, 100, parent.Progress())
}

func TestStatusByNumber(t *testing.T) {
	members := []MemberRecord{
		{Content: &ItemRecord{Number: 1}, FieldValues: []FieldValue{{FieldName: "Status", Name: str("Done")}}},
		{Content: &ItemRecord{Number: 2}},
		{FieldValues: []FieldValue{{FieldName: "Status", Name: str("Todo")}}},
	}
	assert.Equal(t, map[int]string{1: "Done"}, StatusByNumber(members, "Status"))
}
