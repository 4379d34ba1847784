package diff

import (
	"testing"
	"time"

	"github.com/alexanderramin/ghgantt/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(s string) *time.Time {
	d, err := domain.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func body(s string) *string { return &s }

func TestComputeChanges_TitleUpdate(t *testing.T) {
	local := []*domain.WorkItem{{Number: 5, Title: "A"}}
	remote := []*domain.WorkItem{{Number: 5, Title: "B"}}

	cs, err := ComputeChanges(local, remote)
	require.NoError(t, err)
	require.Len(t, cs, 1)

	c := cs[0]
	assert.Equal(t, domain.ChangeUpdate, c.Kind)
	assert.Equal(t, "5", c.Key)
	assert.Equal(t, 5, c.Number())
	require.Len(t, c.Fields, 1)
	assert.Equal(t, FieldChange{Field: FieldTitle, Old: "B", New: "A"}, c.Fields[0])
	assert.Same(t, local[0], c.Item)
	assert.Same(t, remote[0], c.Remote)
}

func TestComputeChanges_SetFieldsIgnoreOrder(t *testing.T) {
	local := []*domain.WorkItem{{Number: 5, Title: "A", Assignees: []string{"x", "y"}, Labels: []string{"bug", "ui"}}}
	remote := []*domain.WorkItem{{Number: 5, Title: "A", Assignees: []string{"y", "x"}, Labels: []string{"ui", "bug"}}}

	cs, err := ComputeChanges(local, remote)
	require.NoError(t, err)
	assert.True(t, cs.IsEmpty())
}

func TestComputeChanges_AllFields(t *testing.T) {
	local := []*domain.WorkItem{{
		Number:      9,
		Title:       "Same",
		StartDate:   day("2026-01-02"),
		EndDate:     day("2026-01-09"),
		Assignees:   []string{"ana"},
		Labels:      []string{"bug"},
		State:       domain.StateClosed,
		Description: body("new body"),
	}}
	remote := []*domain.WorkItem{{
		Number:      9,
		Title:       "Same",
		StartDate:   day("2026-01-01"),
		Assignees:   []string{"bo"},
		State:       domain.StateOpen,
		Description: body("old body"),
	}}

	cs, err := ComputeChanges(local, remote)
	require.NoError(t, err)
	require.Len(t, cs, 1)
	c := cs[0]

	assert.False(t, c.HasField(FieldTitle))
	for _, name := range []string{FieldStartDate, FieldEndDate, FieldAssignees, FieldLabels, FieldState, FieldBody} {
		assert.True(t, c.HasField(name), name)
	}
	end, _ := c.Field(FieldEndDate)
	assert.Equal(t, "", end.Old)
	assert.Equal(t, "2026-01-09", end.New)
	state, _ := c.Field(FieldState)
	assert.Equal(t, "open", state.Old)
	assert.Equal(t, "closed", state.New)
}

func TestComputeChanges_BodyComparedTrimmed(t *testing.T) {
	local := []*domain.WorkItem{{Number: 1, Title: "t", Description: body("text\n\n")}}
	remote := []*domain.WorkItem{{Number: 1, Title: "t", Description: body("  text")}}
	cs, err := ComputeChanges(local, remote)
	require.NoError(t, err)
	assert.Empty(t, cs)

	// nil and empty bodies are equivalent
	local[0].Description = nil
	remote[0].Description = body("   ")
	cs, err = ComputeChanges(local, remote)
	require.NoError(t, err)
	assert.Empty(t, cs)
}

func TestComputeChanges_BodyIgnoresLineEndings(t *testing.T) {
	local := []*domain.WorkItem{{Number: 1, Title: "t", Description: body("line one\nline two")}}
	remote := []*domain.WorkItem{{Number: 1, Title: "t", Description: body("line one\r\nline two\r\n")}}
	cs, err := ComputeChanges(local, remote)
	require.NoError(t, err)
	assert.Empty(t, cs)

	remote[0].Description = body("line one\r\nline 2")
	cs, err = ComputeChanges(local, remote)
	require.NoError(t, err)
	require.Len(t, cs, 1)
	assert.Equal(t, FieldChange{Field: FieldBody, Old: "line one\nline 2", New: "line one\nline two"}, cs[0].Fields[0])
}

func TestComputeChanges_CreateAndOrphan(t *testing.T) {
	local := []*domain.WorkItem{
		{Number: 0, Title: "brand new"},
		{Number: 42, Title: "deleted remotely"},
	}
	cs, err := ComputeChanges(local, nil)
	require.NoError(t, err)
	require.Len(t, cs, 2)

	assert.Equal(t, domain.ChangeCreate, cs[0].Kind)
	assert.NotEmpty(t, cs[0].Key)
	assert.Equal(t, 0, cs[0].Number())
	assert.Equal(t, domain.ChangeOrphaned, cs[1].Kind)
	assert.Equal(t, "42", cs[1].Key)
	assert.Equal(t, 1, cs.Count(domain.ChangeCreate))
	assert.Equal(t, 1, cs.Count(domain.ChangeOrphaned))
}

func TestComputeChanges_SurrogateKeysAreUnique(t *testing.T) {
	local := []*domain.WorkItem{{Title: "a"}, {Title: "b"}}
	cs, err := ComputeChanges(local, nil)
	require.NoError(t, err)
	require.Len(t, cs, 2)
	assert.NotEqual(t, cs[0].Key, cs[1].Key)
	got, ok := cs.ByKey(cs[1].Key)
	require.True(t, ok)
	assert.Equal(t, "b", got.Item.Title)
}

func TestComputeChanges_ParentCreateBeforeChild(t *testing.T) {
	child := &domain.WorkItem{Title: "child"}
	parent := &domain.WorkItem{Title: "parent", Children: []*domain.WorkItem{child}}

	cs, err := ComputeChanges([]*domain.WorkItem{parent}, nil)
	require.NoError(t, err)
	require.Len(t, cs, 2)
	assert.Same(t, parent, cs[0].Item)
	assert.Nil(t, cs[0].Parent)
	assert.Same(t, child, cs[1].Item)
	assert.Same(t, parent, cs[1].Parent)
}

func TestComputeChanges_NestedRemoteMatch(t *testing.T) {
	local := []*domain.WorkItem{{Number: 1, Title: "root", Children: []*domain.WorkItem{
		{Number: 2, Title: "renamed child"},
	}}}
	remote := []*domain.WorkItem{
		{Number: 1, Title: "root"},
		{Number: 2, Title: "child"},
	}
	cs, err := ComputeChanges(local, remote)
	require.NoError(t, err)
	require.Len(t, cs, 1)
	assert.Equal(t, "2", cs[0].Key)
	assert.Equal(t, 1, cs[0].Parent.Number)
}

func TestComputeChanges_MissingTitle(t *testing.T) {
	local := []*domain.WorkItem{
		{Title: "ok", Children: []*domain.WorkItem{{Title: "fine"}, {Title: " "}}},
	}
	_, err := ComputeChanges(local, nil)
	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.KindValidation))
	assert.Contains(t, err.Error(), "tasks[0].subtasks[1].title is required")
}

func TestComputeChanges_DoesNotMutateInputs(t *testing.T) {
	local := []*domain.WorkItem{{Number: 3, Title: "x", Labels: []string{"b", "a"}}}
	remote := []*domain.WorkItem{{Number: 3, Title: "x", Labels: []string{"c"}}}
	_, err := ComputeChanges(local, remote)
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a"}, local[0].Labels)
	assert.Equal(t, []string{"c"}, remote[0].Labels)
}
