package testutil

import (
	"context"
	"fmt"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/alexanderramin/ghgantt/internal/domain"
	"github.com/alexanderramin/ghgantt/internal/github"
)

// Field names the fake project exposes.
const (
	FakeStartField  = "Start Date"
	FakeEndField    = "Due Date"
	FakeStatusField = "Status"
)

// FakeGateway is an in-memory github.Gateway. Mutations are applied to its
// state so later fetches echo them back. Every call is recorded by name.
type FakeGateway struct {
	mu sync.Mutex

	Meta       github.ContainerMeta
	Repo       github.Repo
	Milestones []string

	// SearchResults, when set, replaces the default search over all issues.
	SearchResults []int

	Calls         []string
	SearchQueries []string

	issues   []*fakeIssue
	failures map[string]map[int]error
	counts   map[string]int
	next     int
}

type fakeIssue struct {
	rec      github.ItemRecord
	memberID string
	dates    map[string]string
	status   string
	parentID string
	comments []domain.Comment
}

func NewFakeGateway() *FakeGateway {
	return &FakeGateway{
		Meta: github.ContainerMeta{
			ID:     "PVT_test",
			Number: 1,
			Title:  "Test Project",
			URL:    "https://github.com/orgs/acme/projects/1",
			Fields: []domain.Field{
				{ID: "F_start", Name: FakeStartField, DataType: "DATE"},
				{ID: "F_end", Name: FakeEndField, DataType: "DATE"},
				{ID: "F_status", Name: FakeStatusField, DataType: "SINGLE_SELECT"},
			},
		},
		Repo:       github.Repo{Owner: "acme", Name: "widgets"},
		Milestones: []string{"v1"},
		failures:   map[string]map[int]error{},
		counts:     map[string]int{},
		next:       1,
	}
}

// FailOn makes the n-th call (1-based) to op return err.
func (f *FakeGateway) FailOn(op string, n int, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failures[op] == nil {
		f.failures[op] = map[int]error{}
	}
	f.failures[op][n] = err
}

// CallCount reports how many times op was called.
func (f *FakeGateway) CallCount(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.counts[op]
}

// ResetCalls clears the call log and counters, keeping state and failures.
func (f *FakeGateway) ResetCalls() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls = nil
	f.counts = map[string]int{}
}

func (f *FakeGateway) call(op string) error {
	f.Calls = append(f.Calls, op)
	f.counts[op]++
	if byCall, ok := f.failures[op]; ok {
		if err, ok := byCall[f.counts[op]]; ok {
			return err
		}
	}
	return nil
}

// RateLimited returns the error GitHub's quota exhaustion maps to.
func RateLimited() error {
	return &github.RateLimitError{Message: "API rate limit exceeded", RetryAfter: time.Minute}
}

// Rejected returns an ordinary validation rejection.
func Rejected() error {
	return &github.StatusError{Method: http.MethodPost, Path: "/repos/acme/widgets", StatusCode: http.StatusUnprocessableEntity, Message: "Validation Failed"}
}

// IssueOption configures a seeded issue.
type IssueOption func(*fakeIssue)

func IssueDates(start, end string) IssueOption {
	return func(i *fakeIssue) {
		if start != "" {
			i.dates["F_start"] = start
		}
		if end != "" {
			i.dates["F_end"] = end
		}
	}
}

func IssueStatus(s string) IssueOption {
	return func(i *fakeIssue) { i.status = s }
}

func IssueClosed() IssueOption {
	return func(i *fakeIssue) { i.rec.State = domain.StateClosed }
}

func IssueLabels(labels ...string) IssueOption {
	return func(i *fakeIssue) { i.rec.Labels = labels }
}

func IssueAssignees(logins ...string) IssueOption {
	return func(i *fakeIssue) { i.rec.Assignees = logins }
}

func IssueBody(body string) IssueOption {
	return func(i *fakeIssue) { i.rec.Body = body }
}

func IssueAuthor(login string, at time.Time) IssueOption {
	return func(i *fakeIssue) {
		i.rec.Author = login
		i.rec.CreatedAt = at
		i.rec.UpdatedAt = at
	}
}

func IssueComment(author, body string, at time.Time) IssueOption {
	return func(i *fakeIssue) {
		i.comments = append(i.comments, domain.Comment{Author: author, Body: body, CreatedAt: at, UpdatedAt: at})
	}
}

// OffBoard keeps the seeded issue off the project.
func OffBoard() IssueOption {
	return func(i *fakeIssue) { i.memberID = "" }
}

// Seed adds an existing issue on the project and returns its number.
// A parent > 0 links it under that issue.
func (f *FakeGateway) Seed(title string, parent int, opts ...IssueOption) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	issue := f.newIssue(title)
	issue.memberID = fmt.Sprintf("PVTI_%d", issue.rec.Number)
	for _, opt := range opts {
		opt(issue)
	}
	if p := f.byNumber(parent); p != nil {
		issue.parentID = p.rec.ID
	}
	return issue.rec.Number
}

func (f *FakeGateway) newIssue(title string) *fakeIssue {
	n := f.next
	f.next++
	issue := &fakeIssue{
		rec: github.ItemRecord{
			ID:     fmt.Sprintf("I_%d", n),
			Number: n,
			Title:  title,
			State:  domain.StateOpen,
			URL:    fmt.Sprintf("https://github.com/%s/issues/%d", f.Repo, n),
			Repo:   f.Repo,
		},
		dates: map[string]string{},
	}
	f.issues = append(f.issues, issue)
	return issue
}

// Issue returns a copy of the stored issue.
func (f *FakeGateway) Issue(number int) (github.ItemRecord, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.byNumber(number)
	if i == nil {
		return github.ItemRecord{}, false
	}
	return i.rec, true
}

// Dates returns the board start and end values for an issue.
func (f *FakeGateway) Dates(number int) (string, string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.byNumber(number)
	if i == nil {
		return "", ""
	}
	return i.dates["F_start"], i.dates["F_end"]
}

// ParentOf returns the number of the issue's parent, or 0.
func (f *FakeGateway) ParentOf(number int) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.byNumber(number)
	if i == nil {
		return 0
	}
	if p := f.byID(i.parentID); p != nil {
		return p.rec.Number
	}
	return 0
}

// IssueCount returns how many issues exist.
func (f *FakeGateway) IssueCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.issues)
}

func (f *FakeGateway) byNumber(n int) *fakeIssue {
	for _, i := range f.issues {
		if i.rec.Number == n {
			return i
		}
	}
	return nil
}

func (f *FakeGateway) byID(id string) *fakeIssue {
	if id == "" {
		return nil
	}
	for _, i := range f.issues {
		if i.rec.ID == id {
			return i
		}
	}
	return nil
}

func (f *FakeGateway) byMember(id string) *fakeIssue {
	for _, i := range f.issues {
		if i.memberID == id {
			return i
		}
	}
	return nil
}

func (f *FakeGateway) fieldName(id string) string {
	for _, fd := range f.Meta.Fields {
		if fd.ID == id {
			return fd.Name
		}
	}
	return id
}

func (f *FakeGateway) record(i *fakeIssue) *github.ItemRecord {
	rec := i.rec
	rec.Labels = slices.Clone(i.rec.Labels)
	rec.Assignees = slices.Clone(i.rec.Assignees)
	if p := f.byID(i.parentID); p != nil {
		rec.ParentNumber = p.rec.Number
	}
	return &rec
}

func notFound(path string) error {
	return &github.StatusError{Method: http.MethodGet, Path: path, StatusCode: http.StatusNotFound, Message: "Not Found"}
}

func (f *FakeGateway) FetchContainer(_ context.Context, owner string, number int) (*github.ContainerMeta, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.call("FetchContainer"); err != nil {
		return nil, err
	}
	if number != f.Meta.Number {
		return nil, fmt.Errorf("%w: %s #%d", github.ErrProjectNotFound, owner, number)
	}
	meta := f.Meta
	meta.Fields = slices.Clone(f.Meta.Fields)
	return &meta, nil
}

func (f *FakeGateway) FetchAllMembers(_ context.Context, containerID string) ([]github.MemberRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.call("FetchAllMembers"); err != nil {
		return nil, err
	}
	var out []github.MemberRecord
	for _, i := range f.issues {
		if i.memberID == "" {
			continue
		}
		m := github.MemberRecord{ID: i.memberID, Content: f.record(i)}
		for _, fd := range f.Meta.Fields {
			if d, ok := i.dates[fd.ID]; ok {
				m.FieldValues = append(m.FieldValues, github.FieldValue{FieldName: fd.Name, Date: &d})
			}
		}
		if i.status != "" {
			s := i.status
			m.FieldValues = append(m.FieldValues, github.FieldValue{FieldName: FakeStatusField, Name: &s})
		}
		out = append(out, m)
	}
	return out, nil
}

func (f *FakeGateway) FetchChildLinks(_ context.Context, itemID string) ([]github.ItemRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.call("FetchChildLinks"); err != nil {
		return nil, err
	}
	var out []github.ItemRecord
	for _, i := range f.issues {
		if i.parentID == itemID {
			out = append(out, *f.record(i))
		}
	}
	return out, nil
}

func (f *FakeGateway) GetItem(_ context.Context, _ github.Repo, number int) (*github.ItemRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.call("GetItem"); err != nil {
		return nil, err
	}
	i := f.byNumber(number)
	if i == nil {
		return nil, notFound(fmt.Sprintf("/issues/%d", number))
	}
	return f.record(i), nil
}

func (f *FakeGateway) CreateItem(_ context.Context, _ github.Repo, in github.CreateItemInput) (*github.ItemRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.call("CreateItem"); err != nil {
		return nil, err
	}
	i := f.newIssue(in.Title)
	i.rec.Body = in.Body
	i.rec.Labels = slices.Clone(in.Labels)
	i.rec.Assignees = slices.Clone(in.Assignees)
	if slices.Contains(f.Milestones, in.Milestone) {
		i.rec.Milestone = in.Milestone
	}
	return f.record(i), nil
}

func (f *FakeGateway) UpdateItem(_ context.Context, _ github.Repo, number int, upd github.ItemUpdate) (*github.ItemRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.call("UpdateItem"); err != nil {
		return nil, err
	}
	i := f.byNumber(number)
	if i == nil {
		return nil, notFound(fmt.Sprintf("/issues/%d", number))
	}
	if upd.Title != nil {
		i.rec.Title = *upd.Title
	}
	if upd.Body != nil {
		i.rec.Body = *upd.Body
	}
	if upd.State != nil {
		i.rec.State = *upd.State
	}
	if upd.Labels != nil {
		i.rec.Labels = slices.Clone(*upd.Labels)
	}
	if upd.Assignees != nil {
		i.rec.Assignees = slices.Clone(*upd.Assignees)
	}
	return f.record(i), nil
}

func (f *FakeGateway) SetDateField(_ context.Context, containerID, memberID, fieldID string, date *time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.call("SetDateField"); err != nil {
		return err
	}
	i := f.byMember(memberID)
	if containerID != f.Meta.ID || i == nil {
		return fmt.Errorf("set %s: item %s not on project %s", f.fieldName(fieldID), memberID, containerID)
	}
	if date == nil {
		delete(i.dates, fieldID)
		return nil
	}
	i.dates[fieldID] = date.Format(domain.DateLayout)
	return nil
}

func (f *FakeGateway) AddItemToContainer(_ context.Context, containerID, itemID string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.call("AddItemToContainer"); err != nil {
		return "", err
	}
	i := f.byID(itemID)
	if containerID != f.Meta.ID || i == nil {
		return "", fmt.Errorf("add %s to %s: not found", itemID, containerID)
	}
	if i.memberID == "" {
		i.memberID = fmt.Sprintf("PVTI_%d", i.rec.Number)
	}
	return i.memberID, nil
}

func (f *FakeGateway) LinkSubItem(_ context.Context, parentID, childID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.call("LinkSubItem"); err != nil {
		return err
	}
	child := f.byID(childID)
	if f.byID(parentID) == nil || child == nil {
		return fmt.Errorf("link %s under %s: not found", childID, parentID)
	}
	child.parentID = parentID
	return nil
}

func (f *FakeGateway) GetThread(_ context.Context, repo github.Repo, number int) (*domain.Thread, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.call("GetThread"); err != nil {
		return nil, err
	}
	i := f.byNumber(number)
	if i == nil {
		return nil, notFound(fmt.Sprintf("/repos/%s/issues/%d", repo, number))
	}
	return &domain.Thread{
		Repo:      repo.String(),
		Number:    i.rec.Number,
		Title:     i.rec.Title,
		Body:      i.rec.Body,
		State:     i.rec.State,
		Author:    i.rec.Author,
		URL:       i.rec.URL,
		Labels:    slices.Clone(i.rec.Labels),
		Assignees: slices.Clone(i.rec.Assignees),
		CreatedAt: i.rec.CreatedAt,
		UpdatedAt: i.rec.UpdatedAt,
		Comments:  slices.Clone(i.comments),
	}, nil
}

func (f *FakeGateway) SearchIssues(_ context.Context, query string) ([]github.ItemRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.call("SearchIssues"); err != nil {
		return nil, err
	}
	f.SearchQueries = append(f.SearchQueries, query)
	var out []github.ItemRecord
	if f.SearchResults != nil {
		for _, n := range f.SearchResults {
			if i := f.byNumber(n); i != nil {
				out = append(out, *f.record(i))
			}
		}
		return out, nil
	}
	for _, i := range f.issues {
		out = append(out, *f.record(i))
	}
	return out, nil
}

var _ github.Gateway = (*FakeGateway)(nil)
