package service

import (
	"context"

	"github.com/alexanderramin/ghgantt/internal/app"
	"github.com/alexanderramin/ghgantt/internal/domain"
)

type SyncService interface {
	Pull(ctx context.Context, req app.PullRequest) (*app.PullResult, error)
	Status(ctx context.Context, req app.StatusRequest) (*app.StatusResult, error)
	Push(ctx context.Context, req app.PushRequest) (*app.PushResult, error)
}

type ActivityService interface {
	FetchThread(ctx context.Context, req app.FetchThreadRequest) (*app.FetchThreadResult, error)
	FetchUserIssues(ctx context.Context, req app.UserIssuesRequest) (*app.UserIssuesResult, error)
}

type HistoryService interface {
	ListRuns(ctx context.Context, limit int) ([]*domain.SyncRun, error)
	GetRun(ctx context.Context, id string) (*domain.SyncRun, []*domain.SyncItemOutcome, error)
}

// LocalStore reads and writes the task file and its description sidecars.
// localstore.FileStore is the production implementation.
type LocalStore interface {
	Load(path string) (*domain.Container, error)
	Save(c *domain.Container, path string) error
	Exists(path string) bool
	Validate(c *domain.Container) []error
	DescriptionsDir(localPath string) string
	LoadDescriptions(dir string, items []*domain.WorkItem) (int, error)
	SaveDescriptions(dir string, items []*domain.WorkItem) (int, error)
}

var (
	_ app.PullUseCase            = SyncService(nil)
	_ app.SyncStatusUseCase      = SyncService(nil)
	_ app.PushUseCase            = SyncService(nil)
	_ app.FetchThreadUseCase     = ActivityService(nil)
	_ app.FetchUserIssuesUseCase = ActivityService(nil)
	_ app.HistoryUseCase         = HistoryService(nil)
)
