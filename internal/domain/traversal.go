package domain

import "errors"

// Visitor is called once per item in depth-first, parent-first order.
// parent is nil for roots.
type Visitor func(item, parent *WorkItem, depth int) error

var (
	// ErrSkipChildren returned from a Visitor skips the item's subtree.
	ErrSkipChildren = errors.New("skip children")

	// ErrStopWalk returned from a Visitor ends the walk without error.
	ErrStopWalk = errors.New("stop walk")
)

// Walk visits every item of the forest, parents before children, in list order.
func Walk(items []*WorkItem, visit Visitor) error {
	err := walk(items, nil, 0, visit)
	if errors.Is(err, ErrStopWalk) {
		return nil
	}
	return err
}

func walk(items []*WorkItem, parent *WorkItem, depth int, visit Visitor) error {
	for _, item := range items {
		err := visit(item, parent, depth)
		if errors.Is(err, ErrSkipChildren) {
			continue
		}
		if err != nil {
			return err
		}
		if err := walk(item.Children, item, depth+1, visit); err != nil {
			return err
		}
	}
	return nil
}

// Flatten lists every item in traversal order.
func Flatten(items []*WorkItem) []*WorkItem {
	var out []*WorkItem
	_ = Walk(items, func(item, _ *WorkItem, _ int) error {
		out = append(out, item)
		return nil
	})
	return out
}

// CountTasks counts every item including descendants.
func CountTasks(items []*WorkItem) int {
	n := 0
	_ = Walk(items, func(*WorkItem, *WorkItem, int) error {
		n++
		return nil
	})
	return n
}

// Leaves lists items without children.
func Leaves(items []*WorkItem) []*WorkItem {
	var out []*WorkItem
	_ = Walk(items, func(item, _ *WorkItem, _ int) error {
		if len(item.Children) == 0 {
			out = append(out, item)
		}
		return nil
	})
	return out
}

// IndexByNumber maps every numbered item (Number > 0) to itself.
func IndexByNumber(items []*WorkItem) map[int]*WorkItem {
	idx := make(map[int]*WorkItem)
	_ = Walk(items, func(item, _ *WorkItem, _ int) error {
		if item.Number > 0 {
			idx[item.Number] = item
		}
		return nil
	})
	return idx
}

// ParentIndex maps each non-root item to its parent.
func ParentIndex(items []*WorkItem) map[*WorkItem]*WorkItem {
	idx := make(map[*WorkItem]*WorkItem)
	_ = Walk(items, func(item, parent *WorkItem, _ int) error {
		if parent != nil {
			idx[item] = parent
		}
		return nil
	})
	return idx
}

// BuildForest nests a flat list by ParentNumber. Items whose parent is not in
// the list stay at the root. Input order is preserved within each level.
func BuildForest(flat []*WorkItem) ([]*WorkItem, error) {
	byNumber := make(map[int]*WorkItem, len(flat))
	for _, item := range flat {
		if item.Number > 0 {
			byNumber[item.Number] = item
		}
	}
	var roots []*WorkItem
	for _, item := range flat {
		if item.ParentNumber != nil {
			if parent, ok := byNumber[*item.ParentNumber]; ok && parent != item {
				if err := parent.AttachChild(item); err != nil {
					return nil, err
				}
				continue
			}
		}
		roots = append(roots, item)
	}
	return roots, nil
}
