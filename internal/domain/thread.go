package domain

import "time"

// Thread is an issue together with its comment history.
type Thread struct {
	Repo      string
	Number    int
	Title     string
	Body      string
	State     State
	Author    string
	URL       string
	Labels    []string
	Assignees []string
	CreatedAt time.Time
	UpdatedAt time.Time
	Comments  []Comment
}

type Comment struct {
	Author    string
	Body      string
	CreatedAt time.Time
	UpdatedAt time.Time
}
