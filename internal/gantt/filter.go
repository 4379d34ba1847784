package gantt

import (
	"slices"

	"github.com/alexanderramin/ghgantt/internal/domain"
)

// Filter narrows what the view renders.
type Filter struct {
	// Labels keeps items carrying at least one of them. Empty keeps all.
	Labels        []string
	IncludeClosed bool
}

// Apply returns a copy of c holding only matching items. A parent that does
// not match stays when one of its descendants does, so the tree keeps its
// shape. c is not modified.
func (f Filter) Apply(c *domain.Container) *domain.Container {
	out := *c
	out.Items = f.prune(c.Items)
	return &out
}

func (f Filter) prune(items []*domain.WorkItem) []*domain.WorkItem {
	var kept []*domain.WorkItem
	for _, item := range items {
		children := f.prune(item.Children)
		if !f.matches(item) && len(children) == 0 {
			continue
		}
		cp := *item
		cp.Children = children
		kept = append(kept, &cp)
	}
	return kept
}

func (f Filter) matches(item *domain.WorkItem) bool {
	if !f.IncludeClosed && item.IsClosed() {
		return false
	}
	if len(f.Labels) == 0 {
		return true
	}
	for _, l := range item.Labels {
		if slices.Contains(f.Labels, l) {
			return true
		}
	}
	return false
}
