package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexanderramin/ghgantt/internal/db"
	"github.com/alexanderramin/ghgantt/internal/domain"
	"github.com/alexanderramin/ghgantt/internal/testutil"
)

func newRun(id string, started time.Time) *domain.SyncRun {
	return &domain.SyncRun{
		ID:              id,
		StartedAt:       started,
		FinishedAt:      started.Add(3 * time.Second),
		ContainerNumber: 3,
		LocalPath:       "gaant.yaml",
		Created:         1,
		Updated:         2,
		Failed:          1,
		Linked:          1,
	}
}

func TestSyncRunRepo_CreateAndGet(t *testing.T) {
	database := testutil.NewTestDB(t)
	repo := NewSQLiteSyncRunRepo(database)
	ctx := context.Background()

	started := time.Date(2026, 10, 14, 9, 0, 0, 0, time.UTC)
	run := newRun("run-1", started)
	run.Aborted = true
	run.Error = "github rate limit exceeded"
	outcomes := []*domain.SyncItemOutcome{
		{Key: "tmp-a", Number: 12, Kind: domain.ChangeCreate, Outcome: domain.OutcomeCreated},
		{Key: "4", Number: 4, Kind: domain.ChangeUpdate, Outcome: domain.OutcomeFailed, Message: "422 Validation Failed"},
		{Key: "5", Number: 5, Kind: domain.ChangeUpdate, Outcome: domain.OutcomePending},
	}
	require.NoError(t, repo.Create(ctx, run, outcomes))

	got, err := repo.GetByID(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, started, got.StartedAt)
	assert.Equal(t, started.Add(3*time.Second), got.FinishedAt)
	assert.True(t, got.Aborted)
	assert.Equal(t, "github rate limit exceeded", got.Error)
	assert.Equal(t, 2, got.Updated)

	listed, err := repo.ListOutcomes(ctx, "run-1")
	require.NoError(t, err)
	require.Len(t, listed, 3)
	assert.Equal(t, 0, listed[0].Seq)
	assert.Equal(t, domain.ChangeCreate, listed[0].Kind)
	assert.Equal(t, "422 Validation Failed", listed[1].Message)
	assert.Equal(t, domain.OutcomePending, listed[2].Outcome)
}

func TestSyncRunRepo_GetByID_NotFound(t *testing.T) {
	repo := NewSQLiteSyncRunRepo(testutil.NewTestDB(t))
	_, err := repo.GetByID(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSyncRunRepo_GetByPrefix(t *testing.T) {
	repo := NewSQLiteSyncRunRepo(testutil.NewTestDB(t))
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	require.NoError(t, repo.Create(ctx, newRun("abc123", now), nil))
	require.NoError(t, repo.Create(ctx, newRun("abd456", now), nil))

	got, err := repo.GetByPrefix(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, "abc123", got.ID)

	_, err = repo.GetByPrefix(ctx, "ab")
	assert.ErrorIs(t, err, ErrAmbiguous)

	_, err = repo.GetByPrefix(ctx, "zz")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSyncRunRepo_ListRecent(t *testing.T) {
	repo := NewSQLiteSyncRunRepo(testutil.NewTestDB(t))
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	for i, id := range []string{"r1", "r2", "r3"} {
		require.NoError(t, repo.Create(ctx, newRun(id, base.Add(time.Duration(i)*time.Hour)), nil))
	}

	runs, err := repo.ListRecent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "r3", runs[0].ID)
	assert.Equal(t, "r2", runs[1].ID)
}

func TestSyncRunRepo_CreateInTransaction_RollsBack(t *testing.T) {
	database := testutil.NewTestDB(t)
	uow := testutil.NewTestUoW(database)
	ctx := context.Background()

	// The second outcome reuses a kind the schema rejects, which must undo
	// the run row as well.
	err := uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		return NewSQLiteSyncRunRepo(tx).Create(ctx, newRun("tx-run", time.Now()), []*domain.SyncItemOutcome{
			{Key: "1", Kind: domain.ChangeUpdate, Outcome: domain.OutcomeUpdated},
			{Key: "2", Kind: "rename", Outcome: domain.OutcomeUpdated},
		})
	})
	require.Error(t, err)

	_, err = NewSQLiteSyncRunRepo(database).GetByID(ctx, "tx-run")
	assert.ErrorIs(t, err, ErrNotFound)
}
