package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/alexanderramin/ghgantt/internal/db"
	"github.com/alexanderramin/ghgantt/internal/domain"
)

// SQLiteSyncRunRepo implements SyncRunRepo using a SQLite database.
type SQLiteSyncRunRepo struct {
	db db.DBTX
}

// NewSQLiteSyncRunRepo creates a new SQLiteSyncRunRepo. conn may be a
// transaction handed out by a UnitOfWork.
func NewSQLiteSyncRunRepo(conn db.DBTX) *SQLiteSyncRunRepo {
	return &SQLiteSyncRunRepo{db: conn}
}

const syncRunColumns = `id, started_at, finished_at, container_number, local_path,
	created, updated, failed, skipped, linked, aborted, error`

type syncRunRow struct {
	ID              string `db:"id"`
	StartedAt       string `db:"started_at"`
	FinishedAt      string `db:"finished_at"`
	ContainerNumber int    `db:"container_number"`
	LocalPath       string `db:"local_path"`
	Created         int    `db:"created"`
	Updated         int    `db:"updated"`
	Failed          int    `db:"failed"`
	Skipped         int    `db:"skipped"`
	Linked          int    `db:"linked"`
	Aborted         int    `db:"aborted"`
	Error           string `db:"error"`
}

func (r syncRunRow) toDomain() *domain.SyncRun {
	return &domain.SyncRun{
		ID:              r.ID,
		StartedAt:       parseTime(r.StartedAt),
		FinishedAt:      parseTime(r.FinishedAt),
		ContainerNumber: r.ContainerNumber,
		LocalPath:       r.LocalPath,
		Created:         r.Created,
		Updated:         r.Updated,
		Failed:          r.Failed,
		Skipped:         r.Skipped,
		Linked:          r.Linked,
		Aborted:         r.Aborted != 0,
		Error:           r.Error,
	}
}

type outcomeRow struct {
	RunID   string `db:"run_id"`
	Seq     int    `db:"seq"`
	Key     string `db:"key"`
	Number  int    `db:"number"`
	Kind    string `db:"kind"`
	Outcome string `db:"outcome"`
	Message string `db:"message"`
}

func (r *SQLiteSyncRunRepo) Create(ctx context.Context, run *domain.SyncRun, outcomes []*domain.SyncItemOutcome) error {
	query := `INSERT INTO sync_runs (` + syncRunColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		run.ID,
		formatTime(run.StartedAt),
		formatTime(run.FinishedAt),
		run.ContainerNumber,
		run.LocalPath,
		run.Created,
		run.Updated,
		run.Failed,
		run.Skipped,
		run.Linked,
		boolToInt(run.Aborted),
		run.Error,
	)
	if err != nil {
		return fmt.Errorf("inserting sync run: %w", err)
	}

	for i, o := range outcomes {
		_, err := r.db.ExecContext(ctx,
			`INSERT INTO sync_item_outcomes (run_id, seq, key, number, kind, outcome, message)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			run.ID, i, o.Key, o.Number, string(o.Kind), string(o.Outcome), o.Message,
		)
		if err != nil {
			return fmt.Errorf("inserting outcome %s: %w", o.Key, err)
		}
	}
	return nil
}

func (r *SQLiteSyncRunRepo) GetByID(ctx context.Context, id string) (*domain.SyncRun, error) {
	runs, err := r.queryRuns(ctx, `SELECT `+syncRunColumns+` FROM sync_runs WHERE id = ?`, id)
	if err != nil {
		return nil, err
	}
	if len(runs) == 0 {
		return nil, fmt.Errorf("sync run %s: %w", id, ErrNotFound)
	}
	return runs[0], nil
}

func (r *SQLiteSyncRunRepo) GetByPrefix(ctx context.Context, prefix string) (*domain.SyncRun, error) {
	runs, err := r.queryRuns(ctx,
		`SELECT `+syncRunColumns+` FROM sync_runs WHERE substr(id, 1, length(?)) = ? LIMIT 2`, prefix, prefix)
	if err != nil {
		return nil, err
	}
	switch len(runs) {
	case 0:
		return nil, fmt.Errorf("sync run %s: %w", prefix, ErrNotFound)
	case 1:
		return runs[0], nil
	default:
		return nil, fmt.Errorf("sync run %s: %w", prefix, ErrAmbiguous)
	}
}

func (r *SQLiteSyncRunRepo) ListRecent(ctx context.Context, limit int) ([]*domain.SyncRun, error) {
	if limit <= 0 {
		limit = 20
	}
	return r.queryRuns(ctx,
		`SELECT `+syncRunColumns+` FROM sync_runs ORDER BY started_at DESC, id LIMIT ?`, limit)
}

func (r *SQLiteSyncRunRepo) ListOutcomes(ctx context.Context, runID string) ([]*domain.SyncItemOutcome, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT run_id, seq, key, number, kind, outcome, message
		FROM sync_item_outcomes WHERE run_id = ? ORDER BY seq`, runID)
	if err != nil {
		return nil, fmt.Errorf("listing outcomes: %w", err)
	}
	defer rows.Close()

	var scanned []outcomeRow
	if err := sqlx.StructScan(rows, &scanned); err != nil {
		return nil, fmt.Errorf("scanning outcomes: %w", err)
	}

	out := make([]*domain.SyncItemOutcome, 0, len(scanned))
	for _, o := range scanned {
		out = append(out, &domain.SyncItemOutcome{
			RunID:   o.RunID,
			Seq:     o.Seq,
			Key:     o.Key,
			Number:  o.Number,
			Kind:    domain.ChangeKind(o.Kind),
			Outcome: domain.Outcome(o.Outcome),
			Message: o.Message,
		})
	}
	return out, nil
}

func (r *SQLiteSyncRunRepo) queryRuns(ctx context.Context, query string, args ...any) ([]*domain.SyncRun, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying sync runs: %w", err)
	}
	defer rows.Close()

	var scanned []syncRunRow
	if err := sqlx.StructScan(rows, &scanned); err != nil {
		return nil, fmt.Errorf("scanning sync runs: %w", err)
	}

	runs := make([]*domain.SyncRun, 0, len(scanned))
	for _, row := range scanned {
		runs = append(runs, row.toDomain())
	}
	return runs, nil
}
