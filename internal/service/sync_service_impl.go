package service

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/alexanderramin/ghgantt/internal/app"
	"github.com/alexanderramin/ghgantt/internal/db"
	"github.com/alexanderramin/ghgantt/internal/diff"
	"github.com/alexanderramin/ghgantt/internal/domain"
	"github.com/alexanderramin/ghgantt/internal/gantt"
	"github.com/alexanderramin/ghgantt/internal/github"
	"github.com/alexanderramin/ghgantt/internal/localstore"
	"github.com/alexanderramin/ghgantt/internal/repository"
	"github.com/google/uuid"
)

type syncService struct {
	gateway  github.Gateway
	store    LocalStore
	uow      db.UnitOfWork
	logger   *slog.Logger
	observer UseCaseObserver
}

// NewSyncService wires the pull, status and push use cases. A nil uow
// disables the sync journal.
func NewSyncService(
	gateway github.Gateway,
	store LocalStore,
	uow db.UnitOfWork,
	logger *slog.Logger,
	observers ...UseCaseObserver,
) SyncService {
	return &syncService{
		gateway:  gateway,
		store:    store,
		uow:      uow,
		logger:   loggerOrDiscard(logger),
		observer: useCaseObserverOrNoop(observers),
	}
}

func (s *syncService) observe(ctx context.Context, name string, startedAt time.Time, fields map[string]any, err error) {
	s.observer.ObserveUseCase(ctx, UseCaseEvent{
		Name:      name,
		StartedAt: startedAt,
		Duration:  time.Since(startedAt),
		Success:   err == nil,
		Err:       err,
		Fields:    fields,
	})
}

// fetchRemote loads the board and converts it into a forest.
func (s *syncService) fetchRemote(ctx context.Context, target app.Target) (*domain.Container, error) {
	if target.ProjectNumber <= 0 {
		return nil, domain.NewError(domain.KindConfiguration, "fetch project", "project number must be greater than 0")
	}
	meta, err := s.gateway.FetchContainer(ctx, target.Owner, target.ProjectNumber)
	if err != nil {
		return nil, remoteError("fetch project", err)
	}
	members, err := s.gateway.FetchAllMembers(ctx, meta.ID)
	if err != nil {
		return nil, remoteError("fetch project items", err)
	}
	return github.ToContainer(meta, members, dateFieldsOf(target))
}

// loadLocal reads and validates the task file, then lets sidecar bodies
// override inline ones.
func (s *syncService) loadLocal(path string) (*domain.Container, error) {
	c, err := s.store.Load(path)
	if err != nil {
		return nil, err
	}
	if errs := s.store.Validate(c); len(errs) > 0 {
		return nil, localstore.ValidationError("validate "+path, errs)
	}
	if _, err := s.store.LoadDescriptions(s.store.DescriptionsDir(path), c.Items); err != nil {
		return nil, fmt.Errorf("loading descriptions: %w", err)
	}
	return c, nil
}

func (s *syncService) Pull(ctx context.Context, req app.PullRequest) (result *app.PullResult, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{"project": req.Target.ProjectNumber}
	defer func() { s.observe(ctx, "pull", startedAt, fields, err) }()

	now := startedAt
	if req.Now != nil {
		now = *req.Now
	}

	var c *domain.Container
	c, err = s.fetchRemote(ctx, req.Target)
	if err != nil {
		return nil, err
	}
	fields["items"] = c.TotalTasks()

	result = &app.PullResult{Container: c}
	for _, path := range pullPaths(req.LocalPath) {
		if err = s.store.Save(c, path); err != nil {
			return nil, fmt.Errorf("writing %s: %w", path, err)
		}
		result.Written = append(result.Written, path)
	}

	chart := baseName(req.LocalPath) + "_gantt.md"
	if err = gantt.WriteFile(c, gantt.FormatMermaid, gantt.DefaultOptions(), chart, now); err != nil {
		return nil, fmt.Errorf("writing %s: %w", chart, err)
	}
	result.Written = append(result.Written, chart)

	result.Descriptions, err = s.store.SaveDescriptions(s.store.DescriptionsDir(req.LocalPath), c.Items)
	if err != nil {
		return nil, fmt.Errorf("writing descriptions: %w", err)
	}
	fields["descriptions"] = result.Descriptions
	return result, nil
}

// pullPaths lists the task file itself and its sibling in the other format.
func pullPaths(localPath string) []string {
	base := baseName(localPath)
	if strings.EqualFold(filepath.Ext(localPath), ".xlsx") {
		return []string{localPath, base + ".yaml"}
	}
	return []string{localPath, base + ".xlsx"}
}

func baseName(path string) string {
	return strings.TrimSuffix(path, filepath.Ext(path))
}

func (s *syncService) Status(ctx context.Context, req app.StatusRequest) (result *app.StatusResult, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{"project": req.Target.ProjectNumber}
	defer func() { s.observe(ctx, "status", startedAt, fields, err) }()

	if !s.store.Exists(req.LocalPath) {
		fields["local_missing"] = true
		return &app.StatusResult{LocalMissing: true}, nil
	}

	var local, remote *domain.Container
	if local, err = s.loadLocal(req.LocalPath); err != nil {
		return nil, err
	}
	if remote, err = s.fetchRemote(ctx, req.Target); err != nil {
		return nil, err
	}

	var changes diff.ChangeSet
	if changes, err = diff.ComputeChanges(local.Items, remote.Items); err != nil {
		return nil, err
	}
	fields["changes"] = len(changes)

	result = &app.StatusResult{Changes: changes}
	for _, ch := range changes {
		if ch.Kind == domain.ChangeOrphaned {
			result.Warnings = append(result.Warnings, orphanNotice(ch, req.OrphanPolicy))
		}
	}
	return result, nil
}

func orphanNotice(ch diff.Change, policy domain.OrphanPolicy) string {
	switch policy {
	case domain.OrphanSkip, domain.OrphanWarn:
		return fmt.Sprintf("#%d %q is not on the project and will be skipped", ch.Number(), ch.Item.Title)
	default:
		return fmt.Sprintf("#%d %q is not on the project and will be recreated", ch.Number(), ch.Item.Title)
	}
}

func (s *syncService) Push(ctx context.Context, req app.PushRequest) (result *app.PushResult, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{
		"project": req.Target.ProjectNumber,
		"dry_run": req.DryRun,
	}
	defer func() { s.observe(ctx, "push", startedAt, fields, err) }()

	var local, remote *domain.Container
	if local, err = s.loadLocal(req.LocalPath); err != nil {
		return nil, err
	}
	if remote, err = s.fetchRemote(ctx, req.Target); err != nil {
		return nil, err
	}

	var changes diff.ChangeSet
	if changes, err = diff.ComputeChanges(local.Items, remote.Items); err != nil {
		return nil, err
	}
	fields["changes"] = len(changes)

	result = &app.PushResult{DryRun: req.DryRun, Changes: changes}
	if req.DryRun {
		return result, nil
	}
	result.RunID = uuid.NewString()

	adoptRemoteMeta(local, remote)
	run := newPushRun(s.gateway, req, local, remote, result)
	run.applyAll(ctx, changes)
	if req.EnforceSubLinks && run.abortErr == nil {
		run.enforceSubLinks(ctx)
	}
	fields["created"] = result.Created
	fields["updated"] = result.Updated
	fields["failed"] = result.Failed
	fields["aborted"] = result.Aborted

	if saveErr := s.store.Save(local, req.LocalPath); saveErr != nil {
		err = fmt.Errorf("saving %s: %w", req.LocalPath, saveErr)
		s.journal(ctx, result, req, startedAt, err)
		return result, err
	}
	if _, descErr := s.store.SaveDescriptions(s.store.DescriptionsDir(req.LocalPath), local.Items); descErr != nil {
		run.event(app.EventWarn, "", 0, "descriptions not saved: "+descErr.Error())
	}

	err = run.abortErr
	s.journal(ctx, result, req, startedAt, err)
	return result, err
}

// adoptRemoteMeta refreshes the board identity so the saved file carries
// the current project and field ids.
func adoptRemoteMeta(local, remote *domain.Container) {
	local.ID = remote.ID
	local.Number = remote.Number
	if local.Title == "" {
		local.Title = remote.Title
	}
	if remote.URL != nil {
		local.URL = remote.URL
	}
	local.StartDateFieldID = remote.StartDateFieldID
	local.EndDateFieldID = remote.EndDateFieldID
}

// journal records a finished push. Failures are logged and never surface.
func (s *syncService) journal(ctx context.Context, result *app.PushResult, req app.PushRequest, startedAt time.Time, runErr error) {
	if s.uow == nil {
		return
	}
	run := &domain.SyncRun{
		ID:              result.RunID,
		StartedAt:       startedAt,
		FinishedAt:      time.Now().UTC(),
		ContainerNumber: req.Target.ProjectNumber,
		LocalPath:       req.LocalPath,
		Created:         result.Created,
		Updated:         result.Updated,
		Failed:          result.Failed,
		Skipped:         result.Skipped,
		Linked:          result.Linked,
		Aborted:         result.Aborted,
	}
	if runErr != nil {
		run.Error = runErr.Error()
	}
	outcomes := make([]*domain.SyncItemOutcome, 0, len(result.Outcomes))
	for i, o := range result.Outcomes {
		outcomes = append(outcomes, &domain.SyncItemOutcome{
			RunID:   run.ID,
			Seq:     i,
			Key:     o.Key,
			Number:  o.Number,
			Kind:    o.Kind,
			Outcome: o.Outcome,
			Message: o.Message,
		})
	}

	ctx = context.WithoutCancel(ctx)
	err := s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		return repository.NewSQLiteSyncRunRepo(tx).Create(ctx, run, outcomes)
	})
	if err != nil {
		s.logger.WarnContext(ctx, "sync journal write failed", "run_id", run.ID, "error", err)
	}
}
