// Package localstore reads and writes the local representations of a
// project: the YAML or Excel task file and the per-issue description files.
package localstore

import (
	"strings"

	"gopkg.in/yaml.v3"
)

// Document is the top-level YAML structure of a task file.
type Document struct {
	Project ProjectDoc `yaml:"project"`
	Tasks   []TaskDoc  `yaml:"tasks"`
}

// ProjectDoc holds the container metadata. Progress is informational and
// recomputed on every save.
type ProjectDoc struct {
	ID       string  `yaml:"id"`
	Number   int     `yaml:"number"`
	Title    string  `yaml:"title"`
	URL      *string `yaml:"url"`
	Progress int     `yaml:"progress"`
}

// TaskDoc is one work item. Nesting under subtasks encodes the hierarchy;
// Parent is only read, for flat documents written by hand.
type TaskDoc struct {
	Issue         int       `yaml:"issue"`
	Title         string    `yaml:"title"`
	Start         dateValue `yaml:"start,omitempty"`
	End           dateValue `yaml:"end,omitempty"`
	Assignees     []string  `yaml:"assignees,omitempty"`
	Labels        []string  `yaml:"labels,omitempty"`
	Milestone     string    `yaml:"milestone,omitempty"`
	Closed        bool      `yaml:"closed,omitempty"`
	ProjectItemID string    `yaml:"project_item_id,omitempty"`
	IssueID       string    `yaml:"issue_id,omitempty"`
	URL           string    `yaml:"url,omitempty"`
	Body          string    `yaml:"body,omitempty"`
	Parent        *int      `yaml:"parent,omitempty"`
	Progress      int       `yaml:"progress"`
	Subtasks      []TaskDoc `yaml:"subtasks,omitempty"`
}

// dateValue keeps the raw calendar date text and is emitted as a plain
// YAML timestamp rather than a quoted string.
type dateValue string

func (d dateValue) MarshalYAML() (any, error) {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!timestamp", Value: string(d)}, nil
}

// calendarDate drops a time part some editors append ("2026-01-20T00:00:00Z").
func (d dateValue) calendarDate() string {
	s := strings.TrimSpace(string(d))
	if len(s) > 10 && (s[10] == 'T' || s[10] == ' ') {
		return s[:10]
	}
	return s
}
