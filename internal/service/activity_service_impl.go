package service

import (
	"context"
	"log/slog"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/alexanderramin/ghgantt/internal/activity"
	"github.com/alexanderramin/ghgantt/internal/app"
	"github.com/alexanderramin/ghgantt/internal/domain"
	"github.com/alexanderramin/ghgantt/internal/github"
)

type activityService struct {
	gateway  github.Gateway
	logger   *slog.Logger
	observer UseCaseObserver
}

func NewActivityService(gateway github.Gateway, logger *slog.Logger, observers ...UseCaseObserver) ActivityService {
	return &activityService{
		gateway:  gateway,
		logger:   loggerOrDiscard(logger),
		observer: useCaseObserverOrNoop(observers),
	}
}

func (s *activityService) FetchThread(ctx context.Context, req app.FetchThreadRequest) (result *app.FetchThreadResult, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{"repo": req.Owner + "/" + req.Repo, "issue": req.Number}
	defer func() {
		s.observer.ObserveUseCase(ctx, UseCaseEvent{
			Name:      "fetch-thread",
			StartedAt: startedAt,
			Duration:  time.Since(startedAt),
			Success:   err == nil,
			Err:       err,
			Fields:    fields,
		})
	}()

	if req.Number <= 0 {
		return nil, domain.Errorf(domain.KindValidation, "fetch thread", "issue number must be positive, got %d", req.Number)
	}

	repo := github.Repo{Owner: req.Owner, Name: req.Repo}
	var thread *domain.Thread
	thread, err = s.gateway.GetThread(ctx, repo, req.Number)
	if err != nil {
		if github.IsNotFound(err) {
			return nil, domain.Errorf(domain.KindNotFound, "fetch thread", "issue #%d not found in %s", req.Number, repo)
		}
		return nil, remoteError("fetch thread", err)
	}
	fields["comments"] = len(thread.Comments)

	var path string
	path, err = activity.SaveThread(filepath.Join(req.OutputDir, "issues"), thread)
	if err != nil {
		return nil, err
	}
	return &app.FetchThreadResult{Thread: thread, Path: path}, nil
}

// userIssuesQuery builds the search for issues in org that involve user.
func userIssuesQuery(req app.UserIssuesRequest) string {
	parts := []string{
		"org:" + req.Org,
		"involves:" + req.User,
		"is:issue",
	}
	if state := strings.ToLower(req.State); state == "open" || state == "closed" {
		parts = append(parts, "is:"+state)
	}
	if req.Since != nil {
		parts = append(parts, "updated:>="+req.Since.Format(domain.DateLayout))
	}
	return strings.Join(parts, " ")
}

func validateUserIssues(req app.UserIssuesRequest) error {
	const op = "fetch user issues"
	if req.User == "" {
		return domain.NewError(domain.KindValidation, op, "user is required")
	}
	if req.Org == "" {
		return domain.NewError(domain.KindValidation, op, "organization is required")
	}
	switch strings.ToLower(req.State) {
	case "", "all", "open", "closed":
	default:
		return domain.Errorf(domain.KindValidation, op, "unknown state %q (expected open, closed or all)", req.State)
	}
	if len(req.ExcludeStatus) > 0 && req.ProjectNumber <= 0 {
		return domain.NewError(domain.KindValidation, op, "excluding by status needs an organization and a project number")
	}
	return nil
}

func (s *activityService) FetchUserIssues(ctx context.Context, req app.UserIssuesRequest) (result *app.UserIssuesResult, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{"user": req.User, "org": req.Org}
	defer func() {
		s.observer.ObserveUseCase(ctx, UseCaseEvent{
			Name:      "fetch-user-issues",
			StartedAt: startedAt,
			Duration:  time.Since(startedAt),
			Success:   err == nil,
			Err:       err,
			Fields:    fields,
		})
	}()

	if err = validateUserIssues(req); err != nil {
		return nil, err
	}

	var statuses map[int]string
	if len(req.ExcludeStatus) > 0 {
		if statuses, err = s.projectStatuses(ctx, req); err != nil {
			return nil, err
		}
	}

	var hits []github.ItemRecord
	hits, err = s.gateway.SearchIssues(ctx, userIssuesQuery(req))
	if err != nil {
		return nil, remoteError("search issues", err)
	}

	result = &app.UserIssuesResult{Found: len(hits)}
	defer func() {
		fields["found"] = result.Found
		fields["saved"] = result.Saved
		fields["failed"] = result.Failed
	}()

	window := activity.Range{Since: req.Since, Until: req.Until}
	dir := filepath.Join(req.OutputDir, req.User)
	p := newPacer(req.Delay)

	for _, hit := range hits {
		if err = p.Wait(ctx); err != nil {
			return result, err
		}

		repo := hit.Repo
		if repo.IsZero() {
			repo = github.Repo{Owner: req.Org}
		}
		thread, getErr := s.gateway.GetThread(ctx, repo, hit.Number)
		if getErr != nil {
			if github.IsFatal(getErr) {
				err = remoteError("fetch thread", getErr)
				return result, err
			}
			s.logger.WarnContext(ctx, "fetching thread failed", "repo", repo.String(), "issue", hit.Number, "error", getErr)
			result.Failed++
			continue
		}

		if status, ok := statuses[hit.Number]; ok && excluded(status, req.ExcludeStatus) {
			result.Excluded++
			continue
		}
		if !activity.UserInteractedInRange(thread, req.User, window) {
			result.NoActivity++
			continue
		}

		path, saveErr := activity.SaveThread(dir, thread)
		if saveErr != nil {
			s.logger.WarnContext(ctx, "saving thread failed", "issue", hit.Number, "error", saveErr)
			result.Failed++
			continue
		}
		result.Saved++
		result.Paths = append(result.Paths, path)
	}
	return result, nil
}

// projectStatuses maps issue numbers on the org project to their status.
func (s *activityService) projectStatuses(ctx context.Context, req app.UserIssuesRequest) (map[int]string, error) {
	meta, err := s.gateway.FetchContainer(ctx, req.Org, req.ProjectNumber)
	if err != nil {
		return nil, remoteError("fetch project", err)
	}
	members, err := s.gateway.FetchAllMembers(ctx, meta.ID)
	if err != nil {
		return nil, remoteError("fetch project items", err)
	}
	field := req.StatusField
	if field == "" {
		field = "Status"
	}
	return github.StatusByNumber(members, field), nil
}

func excluded(status string, exclude []string) bool {
	return slices.ContainsFunc(exclude, func(e string) bool {
		return strings.EqualFold(strings.TrimSpace(e), status)
	})
}
