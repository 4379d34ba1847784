package db

import (
	"database/sql"
	"fmt"
	"strings"
)

// Migrate runs all schema migrations. Statements are idempotent so the full
// list is replayed on every open.
func Migrate(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			// ALTER TABLE ADD COLUMN has no IF NOT EXISTS form in SQLite.
			if strings.Contains(err.Error(), "duplicate column name") {
				continue
			}
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS sync_runs (
		id               TEXT PRIMARY KEY,
		started_at       TEXT NOT NULL,
		finished_at      TEXT NOT NULL,
		container_number INTEGER NOT NULL,
		local_path       TEXT NOT NULL,
		created          INTEGER NOT NULL DEFAULT 0,
		updated          INTEGER NOT NULL DEFAULT 0,
		failed           INTEGER NOT NULL DEFAULT 0,
		skipped          INTEGER NOT NULL DEFAULT 0,
		linked           INTEGER NOT NULL DEFAULT 0,
		aborted          INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE INDEX IF NOT EXISTS idx_sync_runs_started ON sync_runs(started_at)`,

	`CREATE TABLE IF NOT EXISTS sync_item_outcomes (
		run_id  TEXT NOT NULL REFERENCES sync_runs(id) ON DELETE CASCADE,
		seq     INTEGER NOT NULL,
		key     TEXT NOT NULL,
		number  INTEGER NOT NULL DEFAULT 0,
		kind    TEXT NOT NULL CHECK(kind IN ('create','update','orphaned')),
		outcome TEXT NOT NULL CHECK(outcome IN ('created','updated','failed','skipped','pending')),
		message TEXT NOT NULL DEFAULT '',
		PRIMARY KEY (run_id, seq)
	)`,

	// v2: abort reason.
	`ALTER TABLE sync_runs ADD COLUMN error TEXT NOT NULL DEFAULT ''`,
}
