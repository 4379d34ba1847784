package app

import (
	"context"

	"github.com/alexanderramin/ghgantt/internal/domain"
)

type PullUseCase interface {
	Pull(ctx context.Context, req PullRequest) (*PullResult, error)
}

type SyncStatusUseCase interface {
	Status(ctx context.Context, req StatusRequest) (*StatusResult, error)
}

type PushUseCase interface {
	Push(ctx context.Context, req PushRequest) (*PushResult, error)
}

type FetchThreadUseCase interface {
	FetchThread(ctx context.Context, req FetchThreadRequest) (*FetchThreadResult, error)
}

type FetchUserIssuesUseCase interface {
	FetchUserIssues(ctx context.Context, req UserIssuesRequest) (*UserIssuesResult, error)
}

type HistoryUseCase interface {
	ListRuns(ctx context.Context, limit int) ([]*domain.SyncRun, error)
	GetRun(ctx context.Context, id string) (*domain.SyncRun, []*domain.SyncItemOutcome, error)
}
