package diff

import (
	"strconv"

	"github.com/alexanderramin/ghgantt/internal/domain"
)

// Names of the fields compared between a local and a remote item.
const (
	FieldTitle     = "title"
	FieldStartDate = "start_date"
	FieldEndDate   = "end_date"
	FieldAssignees = "assignees"
	FieldLabels    = "labels"
	FieldState     = "state"
	FieldBody      = "body"
)

// FieldChange names one differing field. Old is the remote value, New the local one.
type FieldChange struct {
	Field string
	Old   string
	New   string
}

// Change is a single entry of a change set. Item points into the local forest
// so the orchestrator can stamp identifiers in place.
type Change struct {
	// Key is the item number, or a generated surrogate for local-only items.
	// Surrogates are only meaningful inside one push.
	Key    string
	Kind   domain.ChangeKind
	Item   *domain.WorkItem
	Parent *domain.WorkItem
	Remote *domain.WorkItem
	Fields []FieldChange
}

// Number is the item's number at the time the change was computed.
func (c Change) Number() int {
	n, err := strconv.Atoi(c.Key)
	if err != nil {
		return 0
	}
	return n
}

// HasField reports whether the change touches the named field.
func (c Change) HasField(name string) bool {
	for _, f := range c.Fields {
		if f.Field == name {
			return true
		}
	}
	return false
}

// Field returns the descriptor for name.
func (c Change) Field(name string) (FieldChange, bool) {
	for _, f := range c.Fields {
		if f.Field == name {
			return f, true
		}
	}
	return FieldChange{}, false
}

// ChangeSet is ordered parent-before-children.
type ChangeSet []Change

func (cs ChangeSet) IsEmpty() bool { return len(cs) == 0 }

// Count returns how many changes have the given kind.
func (cs ChangeSet) Count(kind domain.ChangeKind) int {
	n := 0
	for _, c := range cs {
		if c.Kind == kind {
			n++
		}
	}
	return n
}

// ByKey finds a change by key.
func (cs ChangeSet) ByKey(key string) (Change, bool) {
	for _, c := range cs {
		if c.Key == key {
			return c, true
		}
	}
	return Change{}, false
}
