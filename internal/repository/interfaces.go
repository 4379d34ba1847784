package repository

import (
	"context"

	"github.com/alexanderramin/ghgantt/internal/domain"
)

// SyncRunRepo persists the push journal.
type SyncRunRepo interface {
	// Create stores a run together with its ordered outcomes.
	Create(ctx context.Context, run *domain.SyncRun, outcomes []*domain.SyncItemOutcome) error
	GetByID(ctx context.Context, id string) (*domain.SyncRun, error)
	// GetByPrefix resolves a run from a unique id prefix, as printed by
	// the history listing.
	GetByPrefix(ctx context.Context, prefix string) (*domain.SyncRun, error)
	ListRecent(ctx context.Context, limit int) ([]*domain.SyncRun, error)
	ListOutcomes(ctx context.Context, runID string) ([]*domain.SyncItemOutcome, error)
}
