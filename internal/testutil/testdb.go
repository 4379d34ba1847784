package testutil

import (
	"database/sql"
	"testing"

	"github.com/alexanderramin/ghgantt/internal/db"
	"github.com/stretchr/testify/require"
)

// NewTestDB opens a migrated in-memory journal that closes with the test.
func NewTestDB(t *testing.T) *sql.DB {
	t.Helper()
	journal, err := db.OpenDB(db.MemoryPath)
	require.NoError(t, err, "opening test journal")
	t.Cleanup(func() { _ = journal.Close() })
	return journal
}

func NewTestUoW(journal *sql.DB) db.UnitOfWork {
	return db.NewSQLiteUnitOfWork(journal)
}
