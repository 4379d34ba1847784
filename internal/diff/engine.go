// Package diff computes the change set between a local and a remote forest.
package diff

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/alexanderramin/ghgantt/internal/domain"
	"github.com/google/uuid"
)

// ComputeChanges compares a local forest against a remote one. Local-only
// items become creates, numbered items absent remotely become orphans, and
// numbered items present on both sides become updates when any compared
// field differs. The result follows local traversal order.
func ComputeChanges(local, remote []*domain.WorkItem) (ChangeSet, error) {
	if errs := validateTitles(local); len(errs) > 0 {
		return nil, &domain.Error{
			Kind:    domain.KindValidation,
			Op:      "compute changes",
			Message: formatErrors(errs),
		}
	}

	remoteByNumber := domain.IndexByNumber(remote)

	var changes ChangeSet
	err := domain.Walk(local, func(item, parent *domain.WorkItem, _ int) error {
		if item.Number == 0 {
			changes = append(changes, Change{
				Key:    uuid.NewString(),
				Kind:   domain.ChangeCreate,
				Item:   item,
				Parent: parent,
			})
			return nil
		}

		key := strconv.Itoa(item.Number)
		rem, ok := remoteByNumber[item.Number]
		if !ok {
			changes = append(changes, Change{
				Key:    key,
				Kind:   domain.ChangeOrphaned,
				Item:   item,
				Parent: parent,
			})
			return nil
		}

		if fields := CompareItems(item, rem); len(fields) > 0 {
			changes = append(changes, Change{
				Key:    key,
				Kind:   domain.ChangeUpdate,
				Item:   item,
				Parent: parent,
				Remote: rem,
				Fields: fields,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return changes, nil
}

// CompareItems lists the fields where local differs from remote. Assignees
// and labels compare as sets; bodies compare after trimming whitespace.
func CompareItems(local, remote *domain.WorkItem) []FieldChange {
	var fields []FieldChange

	if local.Title != remote.Title {
		fields = append(fields, FieldChange{Field: FieldTitle, Old: remote.Title, New: local.Title})
	}
	if !domain.SameDate(local.StartDate, remote.StartDate) {
		fields = append(fields, FieldChange{Field: FieldStartDate, Old: domain.FormatDate(remote.StartDate), New: domain.FormatDate(local.StartDate)})
	}
	if !domain.SameDate(local.EndDate, remote.EndDate) {
		fields = append(fields, FieldChange{Field: FieldEndDate, Old: domain.FormatDate(remote.EndDate), New: domain.FormatDate(local.EndDate)})
	}
	if !sameSet(local.Assignees, remote.Assignees) {
		fields = append(fields, FieldChange{Field: FieldAssignees, Old: joinSorted(remote.Assignees), New: joinSorted(local.Assignees)})
	}
	if !sameSet(local.Labels, remote.Labels) {
		fields = append(fields, FieldChange{Field: FieldLabels, Old: joinSorted(remote.Labels), New: joinSorted(local.Labels)})
	}
	if stateOf(local) != stateOf(remote) {
		fields = append(fields, FieldChange{Field: FieldState, Old: string(stateOf(remote)), New: string(stateOf(local))})
	}

	localBody := normalizeBody(local.DescriptionText())
	remoteBody := normalizeBody(remote.DescriptionText())
	if localBody != remoteBody {
		fields = append(fields, FieldChange{Field: FieldBody, Old: remoteBody, New: localBody})
	}

	return fields
}

// normalizeBody folds CRLF and lone CR to LF and trims. The web editor
// stores CRLF while sidecars are read back with LF.
func normalizeBody(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	return strings.TrimSpace(s)
}

func stateOf(w *domain.WorkItem) domain.State {
	if w.State == "" {
		return domain.StateOpen
	}
	return w.State
}

func sameSet(a, b []string) bool {
	as, bs := toSet(a), toSet(b)
	if len(as) != len(bs) {
		return false
	}
	for k := range as {
		if _, ok := bs[k]; !ok {
			return false
		}
	}
	return true
}

func toSet(vals []string) map[string]struct{} {
	set := make(map[string]struct{}, len(vals))
	for _, v := range vals {
		set[v] = struct{}{}
	}
	return set
}

func joinSorted(vals []string) string {
	sorted := slices.Clone(vals)
	slices.Sort(sorted)
	sorted = slices.Compact(sorted)
	return strings.Join(sorted, ", ")
}

// validateTitles reports every item with an empty title, addressed by its
// position in the forest (tasks[0].subtasks[2]).
func validateTitles(items []*domain.WorkItem) []error {
	var errs []error
	var path []int
	_ = domain.Walk(items, func(item, _ *domain.WorkItem, depth int) error {
		if len(path) > depth+1 {
			path = path[:depth+1]
		}
		if len(path) == depth+1 {
			path[depth]++
		} else {
			path = append(path, 0)
		}
		if strings.TrimSpace(item.Title) == "" {
			errs = append(errs, fmt.Errorf("%s.title is required", positionPath(path)))
		}
		return nil
	})
	return errs
}

func positionPath(path []int) string {
	var b strings.Builder
	for i, p := range path {
		if i == 0 {
			fmt.Fprintf(&b, "tasks[%d]", p)
			continue
		}
		fmt.Fprintf(&b, ".subtasks[%d]", p)
	}
	return b.String()
}

func formatErrors(errs []error) string {
	msgs := make([]string, len(errs))
	for i, e := range errs {
		msgs[i] = e.Error()
	}
	return strings.Join(msgs, "; ")
}
