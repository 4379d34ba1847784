package github

import (
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/ghgantt/internal/domain"
)

// Repo identifies a repository as owner/name.
type Repo struct {
	Owner string
	Name  string
}

func (r Repo) String() string { return r.Owner + "/" + r.Name }

func (r Repo) IsZero() bool { return r.Owner == "" && r.Name == "" }

// ParseRepo splits "owner/name".
func ParseRepo(s string) (Repo, error) {
	owner, name, ok := strings.Cut(strings.TrimSpace(s), "/")
	if !ok || owner == "" || name == "" || strings.Contains(name, "/") {
		return Repo{}, fmt.Errorf("invalid repository %q, expected owner/name", s)
	}
	return Repo{Owner: owner, Name: name}, nil
}

// ContainerMeta describes a Projects V2 board without its items.
type ContainerMeta struct {
	ID     string
	Number int
	Title  string
	URL    string
	Fields []domain.Field
}

// FieldID returns the id of the field with the given name, or "".
func (m *ContainerMeta) FieldID(name string) string {
	for _, f := range m.Fields {
		if f.Name == name {
			return f.ID
		}
	}
	return ""
}

// ItemRecord is an issue as returned by either API.
type ItemRecord struct {
	ID           string
	Number       int
	Title        string
	Body         string
	State        domain.State
	URL          string
	Assignees    []string
	Labels       []string
	Milestone    string
	ParentNumber int
	Author       string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	Repo         Repo
}

// FieldValue is one custom-field value on a board item. Exactly one of the
// value members is set.
type FieldValue struct {
	FieldName string
	Text      *string
	Date      *string
	Name      *string
	Number    *float64
}

// MemberRecord is a board item. Content is nil for drafts and pull
// requests.
type MemberRecord struct {
	ID          string
	Content     *ItemRecord
	FieldValues []FieldValue
}

// Value returns the field value by name as a string, for any value type.
func (m MemberRecord) Value(fieldName string) (string, bool) {
	for _, fv := range m.FieldValues {
		if fv.FieldName != fieldName {
			continue
		}
		switch {
		case fv.Date != nil:
			return *fv.Date, true
		case fv.Text != nil:
			return *fv.Text, true
		case fv.Name != nil:
			return *fv.Name, true
		case fv.Number != nil:
			return fmt.Sprintf("%g", *fv.Number), true
		}
	}
	return "", false
}

// CreateItemInput is the payload for a new issue.
type CreateItemInput struct {
	Title     string
	Body      string
	Labels    []string
	Assignees []string
	Milestone string
}

// ItemUpdate patches an issue. Nil members are left unchanged.
type ItemUpdate struct {
	Title     *string
	Body      *string
	State     *domain.State
	Labels    *[]string
	Assignees *[]string
}

func (u ItemUpdate) IsEmpty() bool {
	return u.Title == nil && u.Body == nil && u.State == nil && u.Labels == nil && u.Assignees == nil
}

func (u ItemUpdate) payload() map[string]any {
	p := map[string]any{}
	if u.Title != nil {
		p["title"] = *u.Title
	}
	if u.Body != nil {
		p["body"] = *u.Body
	}
	if u.State != nil {
		p["state"] = strings.ToLower(string(*u.State))
	}
	if u.Labels != nil {
		p["labels"] = nonNil(*u.Labels)
	}
	if u.Assignees != nil {
		p["assignees"] = nonNil(*u.Assignees)
	}
	return p
}

// nonNil keeps empty lists encoding as [] so GitHub clears them.
func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
