package domain

// Container is a project board holding the forest of work items plus the
// ids of the custom fields bound to start and end dates.
type Container struct {
	ID     string
	Number int
	Title  string
	URL    *string

	StartDateFieldID *string
	EndDateFieldID   *string

	Items []*WorkItem
}

func (c *Container) TotalTasks() int {
	return CountTasks(c.Items)
}

// OverallProgress is the truncated share of closed leaf items. Parents are
// excluded so their derived progress is not counted twice.
func (c *Container) OverallProgress() int {
	leaves := Leaves(c.Items)
	if len(leaves) == 0 {
		return 0
	}
	closed := 0
	for _, l := range leaves {
		if l.IsClosed() {
			closed++
		}
	}
	return closed * 100 / len(leaves)
}

// Field is one entry in a project's custom field schema.
type Field struct {
	ID       string
	Name     string
	DataType string
}

// FieldNames lists the names of the given fields in order.
func FieldNames(fields []Field) []string {
	names := make([]string, 0, len(fields))
	for _, f := range fields {
		names = append(names, f.Name)
	}
	return names
}
