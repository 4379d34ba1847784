package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/alexanderramin/ghgantt/internal/domain"
)

// Gateway exposes the GitHub operations the sync and activity services
// need. Implementations must be safe for sequential use by one service;
// callers pace requests themselves.
type Gateway interface {
	// FetchContainer resolves a project by owner and number, trying the
	// organization namespace first and then the user namespace.
	FetchContainer(ctx context.Context, owner string, number int) (*ContainerMeta, error)

	// FetchAllMembers returns every item on the board, following pagination.
	FetchAllMembers(ctx context.Context, containerID string) ([]MemberRecord, error)

	// FetchChildLinks returns the sub-issues already linked under an issue.
	FetchChildLinks(ctx context.Context, itemID string) ([]ItemRecord, error)

	GetItem(ctx context.Context, repo Repo, number int) (*ItemRecord, error)

	// CreateItem opens an issue. A milestone title that matches no open
	// milestone is dropped and the returned record's Milestone is empty.
	CreateItem(ctx context.Context, repo Repo, in CreateItemInput) (*ItemRecord, error)

	UpdateItem(ctx context.Context, repo Repo, number int, upd ItemUpdate) (*ItemRecord, error)

	// SetDateField writes a date custom field. A nil date clears it.
	SetDateField(ctx context.Context, containerID, memberID, fieldID string, date *time.Time) error

	// AddItemToContainer puts an issue on the board and returns the new
	// board item id.
	AddItemToContainer(ctx context.Context, containerID, itemID string) (string, error)

	// LinkSubItem makes childID a sub-issue of parentID.
	LinkSubItem(ctx context.Context, parentID, childID string) error

	// GetThread returns an issue with all of its comments.
	GetThread(ctx context.Context, repo Repo, number int) (*domain.Thread, error)

	// SearchIssues runs an issue search, most recently updated first.
	SearchIssues(ctx context.Context, query string) ([]ItemRecord, error)
}

type gateway struct {
	client   Client
	pageSize int
}

// NewGateway wraps a Client. pageSize bounds GraphQL page requests (GitHub
// caps them at 100).
func NewGateway(client Client, pageSize int) Gateway {
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 100
	}
	return &gateway{client: client, pageSize: pageSize}
}

type projectNode struct {
	ID     string `json:"id"`
	Number int    `json:"number"`
	Title  string `json:"title"`
	URL    string `json:"url"`
	Fields struct {
		Nodes []struct {
			ID       string `json:"id"`
			Name     string `json:"name"`
			DataType string `json:"dataType"`
		} `json:"nodes"`
	} `json:"fields"`
}

func (p *projectNode) meta() *ContainerMeta {
	m := &ContainerMeta{ID: p.ID, Number: p.Number, Title: p.Title, URL: p.URL}
	for _, f := range p.Fields.Nodes {
		if f.ID == "" {
			continue
		}
		m.Fields = append(m.Fields, domain.Field{ID: f.ID, Name: f.Name, DataType: f.DataType})
	}
	return m
}

func (g *gateway) FetchContainer(ctx context.Context, owner string, number int) (*ContainerMeta, error) {
	vars := map[string]any{"owner": owner, "number": number}

	var org struct {
		Organization *struct {
			ProjectV2 *projectNode `json:"projectV2"`
		} `json:"organization"`
	}
	err := g.client.GraphQL(ctx, "fetch_container_org", orgProjectQuery, vars, &org)
	if err == nil && org.Organization != nil && org.Organization.ProjectV2 != nil {
		return org.Organization.ProjectV2.meta(), nil
	}
	var gqlErr *GraphQLError
	if err != nil && !errors.As(err, &gqlErr) {
		return nil, err
	}

	var user struct {
		User *struct {
			ProjectV2 *projectNode `json:"projectV2"`
		} `json:"user"`
	}
	err = g.client.GraphQL(ctx, "fetch_container_user", userProjectQuery, vars, &user)
	if err == nil && user.User != nil && user.User.ProjectV2 != nil {
		return user.User.ProjectV2.meta(), nil
	}
	if err != nil && !errors.As(err, &gqlErr) {
		return nil, err
	}
	return nil, fmt.Errorf("%w: %s #%d", ErrProjectNotFound, owner, number)
}

type pageInfo struct {
	HasNextPage bool   `json:"hasNextPage"`
	EndCursor   string `json:"endCursor"`
}

type issueNode struct {
	Typename  string     `json:"__typename"`
	ID        string     `json:"id"`
	Number    int        `json:"number"`
	Title     string     `json:"title"`
	Body      string     `json:"body"`
	State     string     `json:"state"`
	URL       string     `json:"url"`
	Assignees loginNodes `json:"assignees"`
	Labels    struct {
		Nodes []struct {
			Name string `json:"name"`
		} `json:"nodes"`
	} `json:"labels"`
	Milestone *struct {
		Title string `json:"title"`
	} `json:"milestone"`
	Parent *struct {
		Number int `json:"number"`
	} `json:"parent"`
}

type loginNodes struct {
	Nodes []struct {
		Login string `json:"login"`
	} `json:"nodes"`
}

func (n *issueNode) record() *ItemRecord {
	r := &ItemRecord{
		ID:     n.ID,
		Number: n.Number,
		Title:  n.Title,
		Body:   n.Body,
		State:  domain.ParseState(n.State),
		URL:    n.URL,
	}
	for _, a := range n.Assignees.Nodes {
		r.Assignees = append(r.Assignees, a.Login)
	}
	for _, l := range n.Labels.Nodes {
		r.Labels = append(r.Labels, l.Name)
	}
	if n.Milestone != nil {
		r.Milestone = n.Milestone.Title
	}
	if n.Parent != nil {
		r.ParentNumber = n.Parent.Number
	}
	return r
}

type fieldValueNode struct {
	Text   *string  `json:"text"`
	Date   *string  `json:"date"`
	Name   *string  `json:"name"`
	Number *float64 `json:"number"`
	Field  struct {
		Name string `json:"name"`
	} `json:"field"`
}

type itemNode struct {
	ID          string `json:"id"`
	FieldValues struct {
		Nodes []fieldValueNode `json:"nodes"`
	} `json:"fieldValues"`
	Content *issueNode `json:"content"`
}

func (g *gateway) FetchAllMembers(ctx context.Context, containerID string) ([]MemberRecord, error) {
	var (
		members []MemberRecord
		cursor  *string
	)
	for {
		var resp struct {
			Node *struct {
				Items *struct {
					PageInfo pageInfo   `json:"pageInfo"`
					Nodes    []itemNode `json:"nodes"`
				} `json:"items"`
			} `json:"node"`
		}
		vars := map[string]any{"projectId": containerID, "first": g.pageSize, "cursor": cursor}
		if err := g.client.GraphQL(ctx, "fetch_members", projectItemsQuery, vars, &resp); err != nil {
			return nil, err
		}
		if resp.Node == nil || resp.Node.Items == nil {
			return nil, fmt.Errorf("%w: project %s", ErrProjectNotFound, containerID)
		}

		for _, n := range resp.Node.Items.Nodes {
			members = append(members, n.member())
		}

		page := resp.Node.Items.PageInfo
		if !page.HasNextPage || page.EndCursor == "" {
			return members, nil
		}
		next := page.EndCursor
		cursor = &next
	}
}

func (n *itemNode) member() MemberRecord {
	m := MemberRecord{ID: n.ID}
	if n.Content != nil && n.Content.Number > 0 &&
		(n.Content.Typename == "" || n.Content.Typename == "Issue") {
		m.Content = n.Content.record()
	}
	for _, fv := range n.FieldValues.Nodes {
		if fv.Field.Name == "" {
			continue
		}
		m.FieldValues = append(m.FieldValues, FieldValue{
			FieldName: fv.Field.Name,
			Text:      fv.Text,
			Date:      fv.Date,
			Name:      fv.Name,
			Number:    fv.Number,
		})
	}
	return m
}

func (g *gateway) FetchChildLinks(ctx context.Context, itemID string) ([]ItemRecord, error) {
	var (
		children []ItemRecord
		cursor   *string
	)
	for {
		var resp struct {
			Node *struct {
				SubIssues *struct {
					PageInfo pageInfo    `json:"pageInfo"`
					Nodes    []issueNode `json:"nodes"`
				} `json:"subIssues"`
			} `json:"node"`
		}
		vars := map[string]any{"issueId": itemID, "first": g.pageSize, "cursor": cursor}
		if err := g.client.GraphQL(ctx, "fetch_child_links", subIssuesQuery, vars, &resp); err != nil {
			return nil, err
		}
		if resp.Node == nil || resp.Node.SubIssues == nil {
			return children, nil
		}
		for i := range resp.Node.SubIssues.Nodes {
			children = append(children, *resp.Node.SubIssues.Nodes[i].record())
		}
		page := resp.Node.SubIssues.PageInfo
		if !page.HasNextPage || page.EndCursor == "" {
			return children, nil
		}
		next := page.EndCursor
		cursor = &next
	}
}

type restUser struct {
	Login string `json:"login"`
}

type restIssue struct {
	NodeID    string     `json:"node_id"`
	Number    int        `json:"number"`
	Title     string     `json:"title"`
	Body      *string    `json:"body"`
	State     string     `json:"state"`
	HTMLURL   string     `json:"html_url"`
	User      *restUser  `json:"user"`
	Assignees []restUser `json:"assignees"`
	Labels    []struct {
		Name string `json:"name"`
	} `json:"labels"`
	Milestone *struct {
		Number int    `json:"number"`
		Title  string `json:"title"`
	} `json:"milestone"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
	RepositoryURL string          `json:"repository_url"`
	PullRequest   *map[string]any `json:"pull_request"`
}

func (i *restIssue) record() *ItemRecord {
	r := &ItemRecord{
		ID:        i.NodeID,
		Number:    i.Number,
		Title:     i.Title,
		Body:      domain.StrValue(i.Body),
		State:     domain.ParseState(i.State),
		URL:       i.HTMLURL,
		CreatedAt: i.CreatedAt,
		UpdatedAt: i.UpdatedAt,
		Repo:      repoFromURL(i.RepositoryURL),
	}
	if i.User != nil {
		r.Author = i.User.Login
	}
	for _, a := range i.Assignees {
		r.Assignees = append(r.Assignees, a.Login)
	}
	for _, l := range i.Labels {
		r.Labels = append(r.Labels, l.Name)
	}
	if i.Milestone != nil {
		r.Milestone = i.Milestone.Title
	}
	return r
}

// repoFromURL reads owner/name from an API repository URL such as
// https://api.github.com/repos/acme/app.
func repoFromURL(u string) Repo {
	_, rest, ok := strings.Cut(u, "/repos/")
	if !ok {
		return Repo{}
	}
	parts := strings.Split(rest, "/")
	if len(parts) < 2 {
		return Repo{}
	}
	return Repo{Owner: parts[0], Name: parts[1]}
}

func issuePath(repo Repo, number int) string {
	return fmt.Sprintf("/repos/%s/%s/issues/%d", url.PathEscape(repo.Owner), url.PathEscape(repo.Name), number)
}

func (g *gateway) GetItem(ctx context.Context, repo Repo, number int) (*ItemRecord, error) {
	var issue restIssue
	if _, err := g.client.REST(ctx, "get_item", http.MethodGet, issuePath(repo, number), nil, &issue); err != nil {
		return nil, err
	}
	r := issue.record()
	if r.Repo.IsZero() {
		r.Repo = repo
	}
	return r, nil
}

func (g *gateway) CreateItem(ctx context.Context, repo Repo, in CreateItemInput) (*ItemRecord, error) {
	payload := map[string]any{"title": in.Title}
	if in.Body != "" {
		payload["body"] = in.Body
	}
	if len(in.Labels) > 0 {
		payload["labels"] = in.Labels
	}
	if len(in.Assignees) > 0 {
		payload["assignees"] = in.Assignees
	}
	if in.Milestone != "" {
		n, err := g.milestoneNumber(ctx, repo, in.Milestone)
		if err != nil {
			return nil, err
		}
		if n > 0 {
			payload["milestone"] = n
		}
	}

	path := fmt.Sprintf("/repos/%s/%s/issues", url.PathEscape(repo.Owner), url.PathEscape(repo.Name))
	var issue restIssue
	if _, err := g.client.REST(ctx, "create_item", http.MethodPost, path, payload, &issue); err != nil {
		return nil, err
	}
	r := issue.record()
	r.Repo = repo
	return r, nil
}

// milestoneNumber resolves an open milestone by title. Zero means no match.
func (g *gateway) milestoneNumber(ctx context.Context, repo Repo, title string) (int, error) {
	next := fmt.Sprintf("/repos/%s/%s/milestones?state=open&per_page=100", url.PathEscape(repo.Owner), url.PathEscape(repo.Name))
	for next != "" {
		var page []struct {
			Number int    `json:"number"`
			Title  string `json:"title"`
		}
		var err error
		next, err = g.client.REST(ctx, "list_milestones", http.MethodGet, next, nil, &page)
		if err != nil {
			return 0, err
		}
		for _, m := range page {
			if m.Title == title {
				return m.Number, nil
			}
		}
	}
	return 0, nil
}

func (g *gateway) UpdateItem(ctx context.Context, repo Repo, number int, upd ItemUpdate) (*ItemRecord, error) {
	if upd.IsEmpty() {
		return g.GetItem(ctx, repo, number)
	}
	var issue restIssue
	if _, err := g.client.REST(ctx, "update_item", http.MethodPatch, issuePath(repo, number), upd.payload(), &issue); err != nil {
		return nil, err
	}
	r := issue.record()
	r.Repo = repo
	return r, nil
}

func (g *gateway) SetDateField(ctx context.Context, containerID, memberID, fieldID string, date *time.Time) error {
	if date == nil {
		return g.client.GraphQL(ctx, "clear_date_field", clearFieldMutation,
			map[string]any{"projectId": containerID, "itemId": memberID, "fieldId": fieldID}, nil)
	}
	vars := map[string]any{
		"projectId": containerID,
		"itemId":    memberID,
		"fieldId":   fieldID,
		"date":      date.Format(domain.DateLayout),
	}
	return g.client.GraphQL(ctx, "set_date_field", setDateFieldMutation, vars, nil)
}

func (g *gateway) AddItemToContainer(ctx context.Context, containerID, itemID string) (string, error) {
	var resp struct {
		AddProjectV2ItemByID *struct {
			Item *struct {
				ID string `json:"id"`
			} `json:"item"`
		} `json:"addProjectV2ItemById"`
	}
	vars := map[string]any{"projectId": containerID, "contentId": itemID}
	if err := g.client.GraphQL(ctx, "add_item_to_container", addItemMutation, vars, &resp); err != nil {
		return "", err
	}
	if resp.AddProjectV2ItemByID == nil || resp.AddProjectV2ItemByID.Item == nil {
		return "", fmt.Errorf("add_item_to_container: no item id returned for %s", itemID)
	}
	return resp.AddProjectV2ItemByID.Item.ID, nil
}

func (g *gateway) LinkSubItem(ctx context.Context, parentID, childID string) error {
	vars := map[string]any{"issueId": parentID, "subIssueId": childID}
	return g.client.GraphQL(ctx, "link_sub_item", addSubIssueMutation, vars, nil)
}

type restComment struct {
	User      *restUser `json:"user"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (g *gateway) GetThread(ctx context.Context, repo Repo, number int) (*domain.Thread, error) {
	issue, err := g.GetItem(ctx, repo, number)
	if err != nil {
		return nil, err
	}

	t := &domain.Thread{
		Repo:      repo.String(),
		Number:    issue.Number,
		Title:     issue.Title,
		Body:      issue.Body,
		State:     issue.State,
		Author:    issue.Author,
		URL:       issue.URL,
		Labels:    issue.Labels,
		Assignees: issue.Assignees,
		CreatedAt: issue.CreatedAt,
		UpdatedAt: issue.UpdatedAt,
	}

	next := issuePath(repo, number) + "/comments?per_page=100"
	for next != "" {
		var page []restComment
		if next, err = g.client.REST(ctx, "list_comments", http.MethodGet, next, nil, &page); err != nil {
			return nil, err
		}
		for _, c := range page {
			comment := domain.Comment{Body: c.Body, CreatedAt: c.CreatedAt, UpdatedAt: c.UpdatedAt}
			if c.User != nil {
				comment.Author = c.User.Login
			}
			t.Comments = append(t.Comments, comment)
		}
	}
	return t, nil
}

func (g *gateway) SearchIssues(ctx context.Context, query string) ([]ItemRecord, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("sort", "updated")
	params.Set("order", "desc")
	params.Set("per_page", "100")

	var (
		out  []ItemRecord
		err  error
		next = "/search/issues?" + params.Encode()
	)
	for next != "" {
		var page struct {
			Items []restIssue `json:"items"`
		}
		if next, err = g.client.REST(ctx, "search_issues", http.MethodGet, next, nil, &page); err != nil {
			return nil, err
		}
		for i := range page.Items {
			if page.Items[i].PullRequest != nil {
				continue
			}
			out = append(out, *page.Items[i].record())
		}
	}
	return out, nil
}
