package localstore

import (
	"testing"

	"github.com/alexanderramin/ghgantt/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_Valid(t *testing.T) {
	assert.Empty(t, Validate(sampleContainer(t)))
}

func TestValidate_Problems(t *testing.T) {
	parent := &domain.WorkItem{Number: 1, Title: "P"}
	wrongParent := &domain.WorkItem{Number: 2, Title: "C", ParentNumber: domain.IntPtr(9)}
	parent.Children = []*domain.WorkItem{wrongParent}

	c := &domain.Container{Items: []*domain.WorkItem{
		parent,
		{Number: 1, Title: "dup"},
		{Title: "  "},
		{Title: "dates", StartDate: day(t, "2026-02-10"), EndDate: day(t, "2026-02-01")},
	}}

	errs := Validate(c)
	require.Len(t, errs, 4)
	assert.EqualError(t, errs[0], "tasks[0].subtasks[0].parent: #9 does not match enclosing issue #1")
	assert.EqualError(t, errs[1], "tasks[1].issue: #1 already used by tasks[0]")
	assert.EqualError(t, errs[2], "tasks[2].title is required")
	assert.EqualError(t, errs[3], "tasks[3].end 2026-02-01 is before start 2026-02-10")
}

func TestValidationError(t *testing.T) {
	assert.NoError(t, ValidationError("push", nil))

	err := ValidationError("push", Validate(&domain.Container{Items: []*domain.WorkItem{{}, {}}}))
	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.KindValidation))
	assert.Contains(t, err.Error(), "2 problem(s)")
	assert.Contains(t, err.Error(), "tasks[1].title is required")
}
