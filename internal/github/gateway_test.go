package github

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexanderramin/ghgantt/internal/domain"
)

// graphqlHandler answers GraphQL posts by matching a substring of the query.
type graphqlHandler struct {
	t       *testing.T
	answers []graphqlAnswer
	seen    []graphqlRequest
}

type graphqlAnswer struct {
	match string
	reply func(vars map[string]any) string
}

func (h *graphqlHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req graphqlRequest
	require.NoError(h.t, json.NewDecoder(r.Body).Decode(&req))
	h.seen = append(h.seen, req)
	for _, a := range h.answers {
		if strings.Contains(req.Query, a.match) {
			fmt.Fprint(w, a.reply(req.Variables))
			return
		}
	}
	h.t.Errorf("unexpected query: %s", req.Query)
	w.WriteHeader(http.StatusBadRequest)
}

func fixed(body string) func(map[string]any) string {
	return func(map[string]any) string { return body }
}

func newTestGateway(t *testing.T, handler http.Handler) Gateway {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewGateway(NewClient(testConfig(srv.URL), "tok", nil), 2)
}

const projectJSON = `{"id":"PVT_1","number":3,"title":"Roadmap","url":"https://github.com/orgs/acme/projects/3",
 "fields":{"nodes":[{"id":"F_title","name":"Title","dataType":"TITLE"},{"id":"F_start","name":"Start Date","dataType":"DATE"},{},{"id":"F_end","name":"End Date","dataType":"DATE"}]}}`

func TestFetchContainer_Organization(t *testing.T) {
	h := &graphqlHandler{t: t, answers: []graphqlAnswer{
		{match: "organization(", reply: fixed(`{"data":{"organization":{"projectV2":` + projectJSON + `}}}`)},
	}}
	gw := newTestGateway(t, h)

	meta, err := gw.FetchContainer(context.Background(), "acme", 3)
	require.NoError(t, err)
	assert.Equal(t, "PVT_1", meta.ID)
	assert.Equal(t, "Roadmap", meta.Title)
	assert.Len(t, meta.Fields, 3)
	assert.Equal(t, "F_start", meta.FieldID("Start Date"))
	assert.Equal(t, "", meta.FieldID("Missing"))
	assert.Len(t, h.seen, 1)
}

func TestFetchContainer_FallsBackToUser(t *testing.T) {
	h := &graphqlHandler{t: t, answers: []graphqlAnswer{
		{match: "organization(", reply: fixed(`{"data":{"organization":null},"errors":[{"type":"NOT_FOUND","message":"Could not resolve to an Organization"}]}`)},
		{match: "user(", reply: fixed(`{"data":{"user":{"projectV2":` + projectJSON + `}}}`)},
	}}
	gw := newTestGateway(t, h)

	meta, err := gw.FetchContainer(context.Background(), "ana", 3)
	require.NoError(t, err)
	assert.Equal(t, "PVT_1", meta.ID)
	assert.Len(t, h.seen, 2)
}

func TestFetchContainer_NotFound(t *testing.T) {
	h := &graphqlHandler{t: t, answers: []graphqlAnswer{
		{match: "organization(", reply: fixed(`{"data":{"organization":{"projectV2":null}}}`)},
		{match: "user(", reply: fixed(`{"data":{"user":null},"errors":[{"type":"NOT_FOUND","message":"nope"}]}`)},
	}}
	_, err := newTestGateway(t, h).FetchContainer(context.Background(), "ghost", 9)
	assert.ErrorIs(t, err, ErrProjectNotFound)
	assert.Contains(t, err.Error(), "ghost #9")
}

func TestFetchContainer_RateLimitDoesNotFallBack(t *testing.T) {
	h := &graphqlHandler{t: t, answers: []graphqlAnswer{
		{match: "organization(", reply: fixed(`{"errors":[{"type":"RATE_LIMITED","message":"limit"}]}`)},
	}}
	_, err := newTestGateway(t, h).FetchContainer(context.Background(), "acme", 3)
	assert.True(t, IsRateLimit(err))
	assert.Len(t, h.seen, 1)
}

func TestFetchAllMembers_Paginates(t *testing.T) {
	page1 := `{"data":{"node":{"items":{"pageInfo":{"hasNextPage":true,"endCursor":"c1"},"nodes":[
	 {"id":"PVTI_1","fieldValues":{"nodes":[{"date":"2025-01-06","field":{"name":"Start Date"}},{"date":"2025-01-10","field":{"name":"End Date"}},{"name":"In Progress","field":{"name":"Status"}},{}]},
	  "content":{"__typename":"Issue","id":"I_1","number":1,"title":"Epic","body":"b","state":"OPEN","url":"u1",
	   "assignees":{"nodes":[{"login":"ana"}]},"labels":{"nodes":[{"name":"epic"}]},"milestone":{"title":"v1"},"parent":null}},
	 {"id":"PVTI_draft","fieldValues":{"nodes":[]},"content":{"__typename":"DraftIssue"}}]}}}}`
	page2 := `{"data":{"node":{"items":{"pageInfo":{"hasNextPage":false,"endCursor":null},"nodes":[
	 {"id":"PVTI_2","fieldValues":{"nodes":[{"number":3,"field":{"name":"Points"}}]},
	  "content":{"__typename":"Issue","id":"I_2","number":2,"title":"Task","body":"","state":"CLOSED","url":"u2",
	   "assignees":{"nodes":[]},"labels":{"nodes":[]},"milestone":null,"parent":{"number":1}}}]}}}}`

	h := &graphqlHandler{t: t, answers: []graphqlAnswer{
		{match: "items(first:", reply: func(vars map[string]any) string {
			assert.Equal(t, float64(2), vars["first"])
			if vars["cursor"] == "c1" {
				return page2
			}
			assert.Nil(t, vars["cursor"])
			return page1
		}},
	}}

	members, err := newTestGateway(t, h).FetchAllMembers(context.Background(), "PVT_1")
	require.NoError(t, err)
	require.Len(t, members, 3)

	first := members[0]
	require.NotNil(t, first.Content)
	assert.Equal(t, "I_1", first.Content.ID)
	assert.Equal(t, []string{"ana"}, first.Content.Assignees)
	assert.Equal(t, "v1", first.Content.Milestone)
	start, ok := first.Value("Start Date")
	assert.True(t, ok)
	assert.Equal(t, "2025-01-06", start)
	status, _ := first.Value("Status")
	assert.Equal(t, "In Progress", status)

	assert.Nil(t, members[1].Content)

	second := members[2]
	require.NotNil(t, second.Content)
	assert.Equal(t, domain.StateClosed, second.Content.State)
	assert.Equal(t, 1, second.Content.ParentNumber)
	points, _ := second.Value("Points")
	assert.Equal(t, "3", points)
}

func TestFetchChildLinks(t *testing.T) {
	h := &graphqlHandler{t: t, answers: []graphqlAnswer{
		{match: "subIssues(", reply: fixed(`{"data":{"node":{"subIssues":{"pageInfo":{"hasNextPage":false},"nodes":[
		 {"id":"I_2","number":2,"title":"Task","state":"OPEN","assignees":{"nodes":[]},"labels":{"nodes":[]}}]}}}}`)},
	}}
	children, err := newTestGateway(t, h).FetchChildLinks(context.Background(), "I_1")
	require.NoError(t, err)
	require.Len(t, children, 1)
	assert.Equal(t, 2, children[0].Number)
}

func TestMutations(t *testing.T) {
	h := &graphqlHandler{t: t, answers: []graphqlAnswer{
		{match: "updateProjectV2ItemFieldValue", reply: func(vars map[string]any) string {
			assert.Equal(t, "2025-03-01", vars["date"])
			return `{"data":{"updateProjectV2ItemFieldValue":{"projectV2Item":{"id":"PVTI_1"}}}}`
		}},
		{match: "clearProjectV2ItemFieldValue", reply: fixed(`{"data":{"clearProjectV2ItemFieldValue":{"projectV2Item":{"id":"PVTI_1"}}}}`)},
		{match: "addProjectV2ItemById", reply: fixed(`{"data":{"addProjectV2ItemById":{"item":{"id":"PVTI_9"}}}}`)},
		{match: "addSubIssue", reply: fixed(`{"data":null,"errors":[{"type":"UNPROCESSABLE","message":"already a sub-issue"}]}`)},
	}}
	gw := newTestGateway(t, h)
	ctx := context.Background()

	d := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, gw.SetDateField(ctx, "PVT_1", "PVTI_1", "F_start", &d))
	require.NoError(t, gw.SetDateField(ctx, "PVT_1", "PVTI_1", "F_start", nil))

	id, err := gw.AddItemToContainer(ctx, "PVT_1", "I_9")
	require.NoError(t, err)
	assert.Equal(t, "PVTI_9", id)

	err = gw.LinkSubItem(ctx, "I_1", "I_9")
	var gqlErr *GraphQLError
	assert.ErrorAs(t, err, &gqlErr)
	assert.False(t, IsFatal(err))
}

func TestCreateItem_ResolvesMilestone(t *testing.T) {
	mux := http.NewServeMux()
	var created map[string]any
	mux.HandleFunc("GET /repos/acme/app/milestones", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "open", r.URL.Query().Get("state"))
		if r.URL.Query().Get("page") == "" {
			w.Header().Set("Link", fmt.Sprintf(`<http://%s/repos/acme/app/milestones?state=open&page=2>; rel="next"`, r.Host))
			fmt.Fprint(w, `[{"number":1,"title":"v0"}]`)
			return
		}
		fmt.Fprint(w, `[{"number":4,"title":"v1"}]`)
	})
	mux.HandleFunc("POST /repos/acme/app/issues", func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &created))
		w.WriteHeader(http.StatusCreated)
		fmt.Fprint(w, `{"node_id":"I_10","number":10,"title":"New","state":"open","html_url":"https://github.com/acme/app/issues/10",
		 "milestone":{"number":4,"title":"v1"},"labels":[{"name":"bug"}],"assignees":[{"login":"ana"}]}`)
	})
	gw := newTestGateway(t, mux)

	rec, err := gw.CreateItem(context.Background(), Repo{Owner: "acme", Name: "app"}, CreateItemInput{
		Title:     "New",
		Labels:    []string{"bug"},
		Assignees: []string{"ana"},
		Milestone: "v1",
	})
	require.NoError(t, err)
	assert.Equal(t, 10, rec.Number)
	assert.Equal(t, "I_10", rec.ID)
	assert.Equal(t, "v1", rec.Milestone)
	assert.Equal(t, float64(4), created["milestone"])
	assert.NotContains(t, created, "body")
}

func TestCreateItem_UnknownMilestoneDropped(t *testing.T) {
	mux := http.NewServeMux()
	var created map[string]any
	mux.HandleFunc("GET /repos/acme/app/milestones", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[]`)
	})
	mux.HandleFunc("POST /repos/acme/app/issues", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&created))
		fmt.Fprint(w, `{"node_id":"I_11","number":11,"title":"New","state":"open"}`)
	})
	rec, err := newTestGateway(t, mux).CreateItem(context.Background(), Repo{Owner: "acme", Name: "app"}, CreateItemInput{Title: "New", Milestone: "v9"})
	require.NoError(t, err)
	assert.Equal(t, "", rec.Milestone)
	assert.NotContains(t, created, "milestone")
}

func TestUpdateItem_SendsOnlySetFields(t *testing.T) {
	mux := http.NewServeMux()
	var patch map[string]any
	mux.HandleFunc("PATCH /repos/acme/app/issues/5", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&patch))
		fmt.Fprint(w, `{"node_id":"I_5","number":5,"title":"T","state":"closed"}`)
	})
	closed := domain.StateClosed
	var noLabels []string
	rec, err := newTestGateway(t, mux).UpdateItem(context.Background(), Repo{Owner: "acme", Name: "app"}, 5, ItemUpdate{
		State:  &closed,
		Labels: &noLabels,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StateClosed, rec.State)
	assert.Equal(t, map[string]any{"state": "closed", "labels": []any{}}, patch)
}

func TestGetThread(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /repos/acme/app/issues/42", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"node_id":"I_42","number":42,"title":"Crash","body":null,"state":"open","user":{"login":"ana"},
		 "html_url":"https://github.com/acme/app/issues/42","created_at":"2025-05-15T09:30:00Z","updated_at":"2025-06-15T18:45:00Z",
		 "repository_url":"https://api.github.com/repos/acme/app"}`)
	})
	mux.HandleFunc("GET /repos/acme/app/issues/42/comments", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[{"user":{"login":"carl"},"body":"Seen it","created_at":"2025-05-20T10:00:00Z","updated_at":"2025-05-20T10:00:00Z"}]`)
	})

	thread, err := newTestGateway(t, mux).GetThread(context.Background(), Repo{Owner: "acme", Name: "app"}, 42)
	require.NoError(t, err)
	assert.Equal(t, "acme/app", thread.Repo)
	assert.Equal(t, "ana", thread.Author)
	assert.Equal(t, "", thread.Body)
	require.Len(t, thread.Comments, 1)
	assert.Equal(t, "carl", thread.Comments[0].Author)
}

func TestSearchIssues_SkipsPullRequests(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /search/issues", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "involves:ana is:issue", q.Get("q"))
		assert.Equal(t, "updated", q.Get("sort"))
		assert.Equal(t, "desc", q.Get("order"))
		fmt.Fprint(w, `{"items":[
		 {"number":1,"title":"Issue","state":"open","repository_url":"https://api.github.com/repos/acme/app"},
		 {"number":2,"title":"PR","state":"open","repository_url":"https://api.github.com/repos/acme/app","pull_request":{"url":"x"}}]}`)
	})

	items, err := newTestGateway(t, mux).SearchIssues(context.Background(), "involves:ana is:issue")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, Repo{Owner: "acme", Name: "app"}, items[0].Repo)
}

func TestParseRepo(t *testing.T) {
	r, err := ParseRepo("acme/app")
	require.NoError(t, err)
	assert.Equal(t, "acme/app", r.String())

	for _, bad := range []string{"", "acme", "/app", "acme/", "a/b/c"} {
		_, err := ParseRepo(bad)
		assert.Error(t, err, bad)
	}
}
