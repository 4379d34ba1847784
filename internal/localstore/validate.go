package localstore

import (
	"errors"
	"fmt"
	"strings"

	"github.com/alexanderramin/ghgantt/internal/domain"
)

// Validate checks a loaded container before it is diffed or pushed.
// Returns a slice of all validation errors found.
func Validate(c *domain.Container) []error {
	var errs []error
	seen := make(map[int]string)

	var visit func(items []*domain.WorkItem, parent *domain.WorkItem, prefix string)
	visit = func(items []*domain.WorkItem, parent *domain.WorkItem, prefix string) {
		for i, item := range items {
			path := fmt.Sprintf("%s[%d]", prefix, i)

			if strings.TrimSpace(item.Title) == "" {
				errs = append(errs, fmt.Errorf("%s.title is required", path))
			}
			if item.StartDate != nil && item.EndDate != nil && item.EndDate.Before(*item.StartDate) {
				errs = append(errs, fmt.Errorf("%s.end %s is before start %s",
					path, domain.FormatDate(item.EndDate), domain.FormatDate(item.StartDate)))
			}
			if item.Number < 0 {
				errs = append(errs, fmt.Errorf("%s.issue: invalid number %d", path, item.Number))
			} else if item.Number > 0 {
				if first, dup := seen[item.Number]; dup {
					errs = append(errs, fmt.Errorf("%s.issue: #%d already used by %s", path, item.Number, first))
				} else {
					seen[item.Number] = path
				}
			}
			if parent != nil && parent.Number > 0 && item.ParentNumber != nil && *item.ParentNumber != parent.Number {
				errs = append(errs, fmt.Errorf("%s.parent: #%d does not match enclosing issue #%d",
					path, *item.ParentNumber, parent.Number))
			}

			visit(item.Children, item, path+".subtasks")
		}
	}
	visit(c.Items, nil, "tasks")

	return errs
}

// ValidationError aggregates the result of Validate into one typed error, or
// nil when errs is empty.
func ValidationError(op string, errs []error) error {
	if len(errs) == 0 {
		return nil
	}
	return &domain.Error{
		Kind:    domain.KindValidation,
		Op:      op,
		Message: fmt.Sprintf("%d problem(s) in local file", len(errs)),
		Err:     errors.Join(errs...),
	}
}
