package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexanderramin/ghgantt/internal/app"
	"github.com/alexanderramin/ghgantt/internal/domain"
	"github.com/alexanderramin/ghgantt/internal/github"
	"github.com/alexanderramin/ghgantt/internal/localstore"
	"github.com/alexanderramin/ghgantt/internal/repository"
	"github.com/alexanderramin/ghgantt/internal/testutil"
)

func testTarget() app.Target {
	return app.Target{
		Owner:         "acme",
		Repo:          "widgets",
		ProjectNumber: 1,
		StartField:    testutil.FakeStartField,
		EndField:      testutil.FakeEndField,
	}
}

type recordingObserver struct {
	events []UseCaseEvent
}

func (o *recordingObserver) ObserveUseCase(_ context.Context, e UseCaseEvent) {
	o.events = append(o.events, e)
}

func newSyncFixture(t *testing.T) (*testutil.FakeGateway, SyncService, string) {
	t.Helper()
	gw := testutil.NewFakeGateway()
	svc := NewSyncService(gw, localstore.FileStore{}, nil, nil)
	return gw, svc, filepath.Join(t.TempDir(), "gaant.yaml")
}

func writeLocal(t *testing.T, path string, items ...*domain.WorkItem) {
	t.Helper()
	require.NoError(t, localstore.Save(testutil.NewTestContainer(items...), path))
}

func readLocal(t *testing.T, path string) *domain.Container {
	t.Helper()
	c, err := localstore.Load(path)
	require.NoError(t, err)
	return c
}

func push(t *testing.T, svc SyncService, path string, mutate ...func(*app.PushRequest)) (*app.PushResult, error) {
	t.Helper()
	req := app.NewPushRequest(testTarget(), path)
	for _, m := range mutate {
		m(&req)
	}
	return svc.Push(context.Background(), req)
}

func TestPush_CreatesParentThenLinksChild(t *testing.T) {
	gw, svc, path := newSyncFixture(t)
	writeLocal(t, path,
		testutil.NewTestItem("A", testutil.WithChildren(testutil.NewTestItem("B"))),
	)

	result, err := push(t, svc, path)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Created)
	assert.Equal(t, 1, result.Linked)
	assert.Equal(t, 1, gw.CallCount("LinkSubItem"))

	local := readLocal(t, path)
	require.Len(t, local.Items, 1)
	a := local.Items[0]
	require.Len(t, a.Children, 1)
	b := a.Children[0]

	assert.NotZero(t, a.Number)
	assert.NotZero(t, b.Number)
	require.NotNil(t, b.ParentNumber)
	assert.Equal(t, a.Number, *b.ParentNumber)
	assert.Equal(t, a.Number, gw.ParentOf(b.Number))
	assert.NotEmpty(t, a.ExternalID)
	assert.NotNil(t, b.ContainerItemID)
}

func TestPush_SecondPushIsIdempotent(t *testing.T) {
	gw, svc, path := newSyncFixture(t)
	writeLocal(t, path,
		testutil.NewTestItem("Design",
			testutil.WithDates("2026-01-05", "2026-01-09"),
			testutil.WithLabels("backend", "p1"),
			testutil.WithAssignees("alice"),
			testutil.WithBody("Sketch the schema."),
			testutil.WithMilestone("v1"),
			testutil.WithChildren(
				testutil.NewTestItem("Review", testutil.WithDates("2026-01-08", "2026-01-09"), testutil.Closed()),
			),
		),
		testutil.NewTestItem("Ship", testutil.WithDates("2026-01-12", "")),
	)

	first, err := push(t, svc, path)
	require.NoError(t, err)
	assert.Equal(t, 3, first.Created)

	local := readLocal(t, path)
	review := local.Items[0].Children[0]
	rec, ok := gw.Issue(review.Number)
	require.True(t, ok)
	assert.Equal(t, domain.StateClosed, rec.State)
	start, end := gw.Dates(local.Items[0].Number)
	assert.Equal(t, "2026-01-05", start)
	assert.Equal(t, "2026-01-09", end)

	gw.ResetCalls()
	second, err := push(t, svc, path)
	require.NoError(t, err)
	assert.True(t, second.Changes.IsEmpty(), "unexpected changes: %+v", second.Changes)
	assert.Zero(t, gw.CallCount("CreateItem"))
	assert.Zero(t, gw.CallCount("UpdateItem"))
	assert.Zero(t, gw.CallCount("LinkSubItem"))
	assert.Equal(t, 3, gw.IssueCount())
}

func TestPush_UpdateSendsOnlyChangedFields(t *testing.T) {
	gw := testutil.NewFakeGateway()
	n := gw.Seed("Old title", 0, testutil.IssueDates("2026-02-02", "2026-02-06"), testutil.IssueLabels("api"))
	svc := NewSyncService(gw, localstore.FileStore{}, nil, nil)
	path := filepath.Join(t.TempDir(), "gaant.yaml")

	_, err := svc.Pull(context.Background(), app.PullRequest{Target: testTarget(), LocalPath: path})
	require.NoError(t, err)

	local := readLocal(t, path)
	local.Items[0].Title = "New title"
	local.Items[0].EndDate = testutil.MustDate("2026-02-10")
	require.NoError(t, localstore.Save(local, path))

	gw.ResetCalls()
	result, err := push(t, svc, path)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Updated)
	require.Len(t, result.Outcomes, 1)
	assert.Equal(t, domain.OutcomeUpdated, result.Outcomes[0].Outcome)

	rec, _ := gw.Issue(n)
	assert.Equal(t, "New title", rec.Title)
	assert.Equal(t, []string{"api"}, rec.Labels)
	start, end := gw.Dates(n)
	assert.Equal(t, "2026-02-02", start)
	assert.Equal(t, "2026-02-10", end)
	assert.Equal(t, 1, gw.CallCount("UpdateItem"))
	assert.Equal(t, 1, gw.CallCount("SetDateField"))
}

func TestPush_ClearedDateClearsField(t *testing.T) {
	gw := testutil.NewFakeGateway()
	n := gw.Seed("Task", 0, testutil.IssueDates("2026-02-02", "2026-02-06"))
	svc := NewSyncService(gw, localstore.FileStore{}, nil, nil)
	path := filepath.Join(t.TempDir(), "gaant.yaml")
	_, err := svc.Pull(context.Background(), app.PullRequest{Target: testTarget(), LocalPath: path})
	require.NoError(t, err)

	local := readLocal(t, path)
	local.Items[0].EndDate = nil
	require.NoError(t, localstore.Save(local, path))

	_, err = push(t, svc, path)
	require.NoError(t, err)
	_, end := gw.Dates(n)
	assert.Empty(t, end)
	assert.Zero(t, gw.CallCount("UpdateItem"))
}

func TestPush_DryRunMutatesNothing(t *testing.T) {
	gw, svc, path := newSyncFixture(t)
	writeLocal(t, path, testutil.NewTestItem("New"))

	result, err := push(t, svc, path, func(r *app.PushRequest) { r.DryRun = true })
	require.NoError(t, err)
	assert.True(t, result.DryRun)
	assert.Len(t, result.Changes, 1)
	assert.Empty(t, result.RunID)
	assert.Zero(t, gw.CallCount("CreateItem"))
	assert.Zero(t, readLocal(t, path).Items[0].Number)
}

func TestPush_RateLimitAbortsAndKeepsProgress(t *testing.T) {
	gw, svc, path := newSyncFixture(t)
	gw.FailOn("CreateItem", 2, testutil.RateLimited())
	writeLocal(t, path,
		testutil.NewTestItem("one"),
		testutil.NewTestItem("two"),
		testutil.NewTestItem("three"),
	)

	result, err := push(t, svc, path)
	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.KindRemoteTransient))
	require.NotNil(t, result)
	assert.True(t, result.Aborted)
	assert.Equal(t, 1, result.Created)
	assert.Equal(t, 1, result.Failed)
	require.Len(t, result.Outcomes, 3)
	assert.Equal(t, domain.OutcomeCreated, result.Outcomes[0].Outcome)
	assert.Equal(t, domain.OutcomeFailed, result.Outcomes[1].Outcome)
	assert.Equal(t, domain.OutcomePending, result.Outcomes[2].Outcome)
	assert.Equal(t, 2, gw.CallCount("CreateItem"))

	local := readLocal(t, path)
	assert.NotZero(t, local.Items[0].Number, "created number must be persisted")
	assert.Zero(t, local.Items[1].Number)
	assert.Zero(t, local.Items[2].Number)
}

func TestPush_AuthErrorIsConfiguration(t *testing.T) {
	gw, svc, path := newSyncFixture(t)
	gw.FailOn("FetchContainer", 1, &github.AuthError{StatusCode: 401, Message: "Bad credentials"})
	writeLocal(t, path, testutil.NewTestItem("one"))

	_, err := push(t, svc, path)
	assert.True(t, domain.IsKind(err, domain.KindConfiguration))
}

func TestPush_RejectedCreateIsRecordedAndLoopContinues(t *testing.T) {
	gw, svc, path := newSyncFixture(t)
	gw.FailOn("CreateItem", 1, testutil.Rejected())
	writeLocal(t, path, testutil.NewTestItem("bad"), testutil.NewTestItem("good"))

	result, err := push(t, svc, path)
	require.NoError(t, err)
	assert.False(t, result.Aborted)
	assert.Equal(t, 1, result.Failed)
	assert.Equal(t, 1, result.Created)
	assert.NotEmpty(t, result.Warnings())
	assert.Equal(t, domain.OutcomeFailed, result.Outcomes[0].Outcome)
}

func TestPush_FailedLinkIsWarning(t *testing.T) {
	gw, svc, path := newSyncFixture(t)
	gw.FailOn("LinkSubItem", 1, errors.New("sub-issue limit reached"))
	writeLocal(t, path, testutil.NewTestItem("A", testutil.WithChildren(testutil.NewTestItem("B"))))

	result, err := push(t, svc, path)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Created)
	assert.Zero(t, result.Linked)
	require.Len(t, result.Warnings(), 1)
	assert.Contains(t, result.Warnings()[0], "sub-issue limit reached")
}

func TestPush_AddToProjectFailureWarnsAndStillLinks(t *testing.T) {
	gw, svc, path := newSyncFixture(t)
	gw.FailOn("AddItemToContainer", 2, errors.New("project is full"))
	writeLocal(t, path, testutil.NewTestItem("A",
		testutil.WithChildren(testutil.NewTestItem("B", testutil.WithDates("2026-01-05", "2026-01-06")))))

	result, err := push(t, svc, path)
	require.NoError(t, err)
	assert.False(t, result.Aborted)
	assert.Equal(t, 2, result.Created)
	assert.Equal(t, 1, result.Linked)
	require.Len(t, result.Warnings(), 1)
	assert.Contains(t, result.Warnings()[0], "adding #2 to the project")
	assert.Contains(t, result.Warnings()[0], "project is full")
	assert.Zero(t, gw.CallCount("SetDateField"))

	local := readLocal(t, path)
	a, b := local.Items[0], local.Items[0].Children[0]
	assert.NotNil(t, a.ContainerItemID)
	assert.Nil(t, b.ContainerItemID)
	assert.Equal(t, a.Number, gw.ParentOf(b.Number))
}

// pullAndRetitle pulls the seeded issues and renames each local copy so
// the next push carries one title update per issue.
func pullAndRetitle(t *testing.T, gw *testutil.FakeGateway, svc SyncService, path string) {
	t.Helper()
	_, err := svc.Pull(context.Background(), app.PullRequest{Target: testTarget(), LocalPath: path})
	require.NoError(t, err)
	local := readLocal(t, path)
	for _, item := range local.Items {
		item.Title += " (edited)"
	}
	require.NoError(t, localstore.Save(local, path))
	gw.ResetCalls()
}

func TestPush_RejectedUpdateIsRecordedAndLoopContinues(t *testing.T) {
	tests := []struct {
		op          string
		updateCalls int
	}{
		{op: "GetItem", updateCalls: 1},
		{op: "UpdateItem", updateCalls: 2},
	}
	for _, tt := range tests {
		t.Run(tt.op, func(t *testing.T) {
			gw := testutil.NewFakeGateway()
			gw.Seed("one", 0)
			gw.Seed("two", 0)
			svc := NewSyncService(gw, localstore.FileStore{}, nil, nil)
			path := filepath.Join(t.TempDir(), "gaant.yaml")
			pullAndRetitle(t, gw, svc, path)
			gw.FailOn(tt.op, 1, testutil.Rejected())

			result, err := push(t, svc, path)
			require.NoError(t, err)
			assert.False(t, result.Aborted)
			assert.Equal(t, 1, result.Failed)
			assert.Equal(t, 1, result.Updated)
			require.Len(t, result.Outcomes, 2)
			assert.Equal(t, domain.OutcomeFailed, result.Outcomes[0].Outcome)
			assert.Contains(t, result.Outcomes[0].Message, "Validation Failed")
			assert.Equal(t, domain.OutcomeUpdated, result.Outcomes[1].Outcome)
			assert.Equal(t, tt.updateCalls, gw.CallCount("UpdateItem"))

			failed, _ := gw.Issue(result.Outcomes[0].Number)
			assert.NotContains(t, failed.Title, "(edited)")
			updated, _ := gw.Issue(result.Outcomes[1].Number)
			assert.Contains(t, updated.Title, "(edited)")
		})
	}
}

func TestPush_RateLimitedUpdateLeavesRestPending(t *testing.T) {
	gw := testutil.NewFakeGateway()
	gw.Seed("one", 0)
	gw.Seed("two", 0)
	gw.Seed("three", 0)
	svc := NewSyncService(gw, localstore.FileStore{}, nil, nil)
	path := filepath.Join(t.TempDir(), "gaant.yaml")
	pullAndRetitle(t, gw, svc, path)
	gw.FailOn("UpdateItem", 2, testutil.RateLimited())

	result, err := push(t, svc, path)
	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.KindRemoteTransient))
	assert.True(t, result.Aborted)
	require.Len(t, result.Outcomes, 3)
	assert.Equal(t, domain.OutcomeUpdated, result.Outcomes[0].Outcome)
	assert.Equal(t, domain.OutcomeFailed, result.Outcomes[1].Outcome)
	assert.Equal(t, domain.OutcomePending, result.Outcomes[2].Outcome)
	assert.Equal(t, 2, gw.CallCount("UpdateItem"))
	assert.Equal(t, 2, gw.CallCount("GetItem"))
}

// seedUnlinkedPairs seeds two parent/child pairs whose sub-issue links
// exist only in the local file.
func seedUnlinkedPairs(t *testing.T, gw *testutil.FakeGateway, path string) {
	t.Helper()
	var items []*domain.WorkItem
	for _, name := range []string{"First", "Second"} {
		parent := gw.Seed(name, 0)
		child := gw.Seed(name+" child", 0)
		items = append(items, testutil.NewTestItem(name, testutil.WithNumber(parent),
			testutil.WithChildren(testutil.NewTestItem(name+" child", testutil.WithNumber(child)))))
	}
	writeLocal(t, path, items...)
}

func TestPush_EnforceSubLinksFailuresAreWarnings(t *testing.T) {
	for _, op := range []string{"FetchChildLinks", "LinkSubItem"} {
		t.Run(op, func(t *testing.T) {
			gw := testutil.NewFakeGateway()
			svc := NewSyncService(gw, localstore.FileStore{}, nil, nil)
			path := filepath.Join(t.TempDir(), "gaant.yaml")
			seedUnlinkedPairs(t, gw, path)
			gw.FailOn(op, 1, errors.New("sub-issues unavailable"))

			result, err := push(t, svc, path, func(r *app.PushRequest) { r.EnforceSubLinks = true })
			require.NoError(t, err)
			assert.False(t, result.Aborted)
			require.Len(t, result.Warnings(), 1)
			assert.Contains(t, result.Warnings()[0], "sub-issues unavailable")
			assert.Equal(t, 1, result.Linked, "the second pair is still linked")
			assert.Equal(t, 2, gw.CallCount("FetchChildLinks"))
			assert.Zero(t, gw.ParentOf(2))
			assert.Equal(t, 3, gw.ParentOf(4))
		})
	}
}

func TestPush_EnforceSubLinksRateLimitAborts(t *testing.T) {
	for _, op := range []string{"FetchChildLinks", "LinkSubItem"} {
		t.Run(op, func(t *testing.T) {
			gw := testutil.NewFakeGateway()
			svc := NewSyncService(gw, localstore.FileStore{}, nil, nil)
			path := filepath.Join(t.TempDir(), "gaant.yaml")
			seedUnlinkedPairs(t, gw, path)
			gw.FailOn(op, 1, testutil.RateLimited())

			result, err := push(t, svc, path, func(r *app.PushRequest) { r.EnforceSubLinks = true })
			require.Error(t, err)
			assert.True(t, domain.IsKind(err, domain.KindRemoteTransient))
			assert.True(t, result.Aborted)
			assert.Zero(t, result.Linked)
			assert.Equal(t, 1, gw.CallCount("FetchChildLinks"))
			assert.Zero(t, gw.ParentOf(4))
		})
	}
}

func TestPush_OrphanPolicies(t *testing.T) {
	tests := []struct {
		name        string
		policy      domain.OrphanPolicy
		wantCreated int
		wantSkipped int
		wantWarns   int
	}{
		{name: "recreate", policy: domain.OrphanRecreate, wantCreated: 1},
		{name: "skip", policy: domain.OrphanSkip, wantSkipped: 1},
		{name: "warn", policy: domain.OrphanWarn, wantSkipped: 1, wantWarns: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gw, svc, path := newSyncFixture(t)
			writeLocal(t, path, testutil.NewTestItem("Gone", testutil.WithNumber(99), testutil.WithContainerItemID("PVTI_old")))

			result, err := push(t, svc, path, func(r *app.PushRequest) { r.OrphanPolicy = tt.policy })
			require.NoError(t, err)
			assert.Equal(t, tt.wantCreated, result.Created)
			assert.Equal(t, tt.wantSkipped, result.Skipped)
			assert.Len(t, result.Warnings(), tt.wantWarns)
			assert.Equal(t, tt.wantCreated, gw.CallCount("CreateItem"))

			item := readLocal(t, path).Items[0]
			if tt.wantCreated > 0 {
				assert.NotEqual(t, 99, item.Number)
				assert.NotEqual(t, "PVTI_old", domain.StrValue(item.ContainerItemID))
			} else {
				assert.Equal(t, 99, item.Number)
			}
		})
	}
}

func TestPush_EnforceSubLinksLinksMissingEdges(t *testing.T) {
	gw := testutil.NewFakeGateway()
	parent := gw.Seed("Parent", 0)
	child := gw.Seed("Child", 0)
	svc := NewSyncService(gw, localstore.FileStore{}, nil, nil)
	path := filepath.Join(t.TempDir(), "gaant.yaml")
	writeLocal(t, path,
		testutil.NewTestItem("Parent", testutil.WithNumber(parent),
			testutil.WithChildren(testutil.NewTestItem("Child", testutil.WithNumber(child)))),
	)

	enforce := func(r *app.PushRequest) { r.EnforceSubLinks = true }
	result, err := push(t, svc, path, enforce)
	require.NoError(t, err)
	assert.True(t, result.Changes.IsEmpty())
	assert.Equal(t, 1, result.Linked)
	assert.Equal(t, parent, gw.ParentOf(child))
	assert.Equal(t, 1, gw.CallCount("FetchChildLinks"))

	gw.ResetCalls()
	again, err := push(t, svc, path, enforce)
	require.NoError(t, err)
	assert.Zero(t, again.Linked)
	assert.Zero(t, gw.CallCount("LinkSubItem"))
}

func TestPush_InvalidLocalFileFailsBeforeRemoteCalls(t *testing.T) {
	gw, svc, path := newSyncFixture(t)
	writeLocal(t, path,
		testutil.NewTestItem("Backwards", testutil.WithDates("2026-03-10", "2026-03-01")),
		testutil.NewTestItem(" "),
	)

	_, err := push(t, svc, path)
	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.KindValidation))
	assert.Contains(t, err.Error(), "2 problem(s)")
	assert.Zero(t, gw.CallCount("FetchContainer"))
}

func TestPush_MissingLocalFileIsNotFound(t *testing.T) {
	_, svc, path := newSyncFixture(t)
	_, err := push(t, svc, path)
	assert.True(t, domain.IsKind(err, domain.KindNotFound))
	assert.Contains(t, err.Error(), "run pull first")
}

func TestPush_UnknownProjectIsNotFound(t *testing.T) {
	_, svc, path := newSyncFixture(t)
	writeLocal(t, path, testutil.NewTestItem("x"))
	target := testTarget()
	target.ProjectNumber = 42

	_, err := svc.Push(context.Background(), app.NewPushRequest(target, path))
	assert.True(t, domain.IsKind(err, domain.KindNotFound))
}

func TestPush_JournalsRun(t *testing.T) {
	database := testutil.NewTestDB(t)
	gw := testutil.NewFakeGateway()
	obs := &recordingObserver{}
	svc := NewSyncService(gw, localstore.FileStore{}, testutil.NewTestUoW(database), nil, obs)
	path := filepath.Join(t.TempDir(), "gaant.yaml")
	writeLocal(t, path, testutil.NewTestItem("A"), testutil.NewTestItem("B"))

	result, err := svc.Push(context.Background(), app.NewPushRequest(testTarget(), path))
	require.NoError(t, err)
	require.NotEmpty(t, result.RunID)

	runs := repository.NewSQLiteSyncRunRepo(database)
	run, err := runs.GetByID(context.Background(), result.RunID)
	require.NoError(t, err)
	assert.Equal(t, 2, run.Created)
	assert.Equal(t, path, run.LocalPath)
	assert.False(t, run.Aborted)

	outcomes, err := runs.ListOutcomes(context.Background(), result.RunID)
	require.NoError(t, err)
	assert.Len(t, outcomes, 2)

	require.Len(t, obs.events, 1)
	assert.Equal(t, "push", obs.events[0].Name)
	assert.True(t, obs.events[0].Success)
	assert.Equal(t, 2, obs.events[0].Fields["created"])
}

func TestPush_DryRunIsNotJournaled(t *testing.T) {
	database := testutil.NewTestDB(t)
	svc := NewSyncService(testutil.NewFakeGateway(), localstore.FileStore{}, testutil.NewTestUoW(database), nil)
	path := filepath.Join(t.TempDir(), "gaant.yaml")
	writeLocal(t, path, testutil.NewTestItem("A"))

	_, err := svc.Push(context.Background(), app.PushRequest{Target: testTarget(), LocalPath: path, DryRun: true})
	require.NoError(t, err)

	runs, err := repository.NewSQLiteSyncRunRepo(database).ListRecent(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestPush_JournalFailureDoesNotFailPush(t *testing.T) {
	database := testutil.NewTestDB(t)
	uow := &testutil.FailOnNthExecUoW{DB: database, FailOn: 1, Err: errors.New("disk full")}
	svc := NewSyncService(testutil.NewFakeGateway(), localstore.FileStore{}, uow, nil)
	path := filepath.Join(t.TempDir(), "gaant.yaml")
	writeLocal(t, path, testutil.NewTestItem("A"))

	result, err := svc.Push(context.Background(), app.NewPushRequest(testTarget(), path))
	require.NoError(t, err)
	assert.Equal(t, 1, result.Created)
}

func TestPush_CancelledContextLeavesChangesPending(t *testing.T) {
	gw, svc, path := newSyncFixture(t)
	writeLocal(t, path, testutil.NewTestItem("A"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	// The remote fetch ignores ctx in the fake, so the pacer is the first
	// thing to observe the cancellation.
	result, err := svc.Push(ctx, app.NewPushRequest(testTarget(), path))
	require.ErrorIs(t, err, context.Canceled)
	require.Len(t, result.Outcomes, 1)
	assert.Equal(t, domain.OutcomePending, result.Outcomes[0].Outcome)
	assert.Zero(t, gw.CallCount("CreateItem"))
}

func TestPull_WritesEveryRepresentation(t *testing.T) {
	gw := testutil.NewFakeGateway()
	parent := gw.Seed("Epic", 0, testutil.IssueBody("Epic body"), testutil.IssueDates("2026-01-05", "2026-01-20"))
	gw.Seed("Story", parent, testutil.IssueDates("2026-01-06", "2026-01-08"), testutil.IssueClosed())
	gw.Seed("Off board", 0, testutil.OffBoard())
	svc := NewSyncService(gw, localstore.FileStore{}, nil, nil)
	dir := t.TempDir()
	path := filepath.Join(dir, "gaant.yaml")

	result, err := svc.Pull(context.Background(), app.PullRequest{Target: testTarget(), LocalPath: path})
	require.NoError(t, err)
	assert.Equal(t, 2, result.Container.TotalTasks())
	assert.Equal(t, 1, result.Descriptions)
	assert.ElementsMatch(t, []string{
		path,
		filepath.Join(dir, "gaant.xlsx"),
		filepath.Join(dir, "gaant_gantt.md"),
	}, result.Written)

	for _, p := range result.Written {
		assert.FileExists(t, p)
	}
	assert.FileExists(t, filepath.Join(dir, "issues", "1.md"))

	chart, err := os.ReadFile(filepath.Join(dir, "gaant_gantt.md"))
	require.NoError(t, err)
	assert.Contains(t, string(chart), "gantt")
	assert.Contains(t, string(chart), "Epic")

	local := readLocal(t, path)
	require.Len(t, local.Items, 1)
	require.Len(t, local.Items[0].Children, 1)
	assert.Equal(t, "Story", local.Items[0].Children[0].Title)

	fromExcel, err := localstore.Load(filepath.Join(dir, "gaant.xlsx"))
	require.NoError(t, err)
	assert.Equal(t, 2, fromExcel.TotalTasks())
}

func TestStatus_LocalMissing(t *testing.T) {
	gw, svc, path := newSyncFixture(t)
	result, err := svc.Status(context.Background(), app.NewStatusRequest(testTarget(), path))
	require.NoError(t, err)
	assert.True(t, result.LocalMissing)
	assert.True(t, result.Changes.IsEmpty())
	assert.Zero(t, gw.CallCount("FetchContainer"))
}

func TestStatus_ReportsChangesWithoutMutating(t *testing.T) {
	gw := testutil.NewFakeGateway()
	n := gw.Seed("Remote title", 0)
	svc := NewSyncService(gw, localstore.FileStore{}, nil, nil)
	path := filepath.Join(t.TempDir(), "gaant.yaml")
	writeLocal(t, path,
		testutil.NewTestItem("Local title", testutil.WithNumber(n)),
		testutil.NewTestItem("Brand new"),
		testutil.NewTestItem("Vanished", testutil.WithNumber(77)),
	)

	req := app.NewStatusRequest(testTarget(), path)
	req.OrphanPolicy = domain.OrphanSkip
	result, err := svc.Status(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Changes.Count(domain.ChangeUpdate))
	assert.Equal(t, 1, result.Changes.Count(domain.ChangeCreate))
	assert.Equal(t, 1, result.Changes.Count(domain.ChangeOrphaned))
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "will be skipped")

	rec, _ := gw.Issue(n)
	assert.Equal(t, "Remote title", rec.Title)
	assert.Zero(t, gw.CallCount("CreateItem"))
}

func TestStatus_SidecarOverridesInlineBody(t *testing.T) {
	gw := testutil.NewFakeGateway()
	n := gw.Seed("Task", 0, testutil.IssueBody("from sidecar"))
	svc := NewSyncService(gw, localstore.FileStore{}, nil, nil)
	path := filepath.Join(t.TempDir(), "gaant.yaml")
	writeLocal(t, path, testutil.NewTestItem("Task", testutil.WithNumber(n), testutil.WithBody("stale inline")))

	sidecar := testutil.NewTestItem("Task", testutil.WithNumber(n), testutil.WithBody("from sidecar"))
	_, err := localstore.SaveDescription(localstore.DescriptionsDir(path), sidecar)
	require.NoError(t, err)

	result, err := svc.Status(context.Background(), app.NewStatusRequest(testTarget(), path))
	require.NoError(t, err)
	assert.True(t, result.Changes.IsEmpty())
}

func TestStatus_LineEndingsInRemoteBodyAreNotAChange(t *testing.T) {
	gw := testutil.NewFakeGateway()
	gw.Seed("Web edited", 0, testutil.IssueBody("line one\r\nline two"))
	svc := NewSyncService(gw, localstore.FileStore{}, nil, nil)
	path := filepath.Join(t.TempDir(), "gaant.yaml")

	_, err := svc.Pull(context.Background(), app.PullRequest{Target: testTarget(), LocalPath: path})
	require.NoError(t, err)

	result, err := svc.Status(context.Background(), app.NewStatusRequest(testTarget(), path))
	require.NoError(t, err)
	assert.True(t, result.Changes.IsEmpty())
}
