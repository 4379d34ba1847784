package service

import (
	"context"
	"errors"

	"github.com/alexanderramin/ghgantt/internal/domain"
	"github.com/alexanderramin/ghgantt/internal/repository"
)

type historyService struct {
	runs repository.SyncRunRepo
}

func NewHistoryService(runs repository.SyncRunRepo) HistoryService {
	return &historyService{runs: runs}
}

func (s *historyService) ListRuns(ctx context.Context, limit int) ([]*domain.SyncRun, error) {
	return s.runs.ListRecent(ctx, limit)
}

// GetRun resolves id as an exact run id or a unique prefix of one.
func (s *historyService) GetRun(ctx context.Context, id string) (*domain.SyncRun, []*domain.SyncItemOutcome, error) {
	run, err := s.runs.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		run, err = s.runs.GetByPrefix(ctx, id)
	}
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return nil, nil, domain.Errorf(domain.KindNotFound, "get run", "no sync run matches %q", id)
	case errors.Is(err, repository.ErrAmbiguous):
		return nil, nil, domain.Errorf(domain.KindValidation, "get run", "run id %q is ambiguous, use more characters", id)
	case err != nil:
		return nil, nil, err
	}

	outcomes, err := s.runs.ListOutcomes(ctx, run.ID)
	if err != nil {
		return nil, nil, err
	}
	return run, outcomes, nil
}
