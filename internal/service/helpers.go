package service

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/alexanderramin/ghgantt/internal/app"
	"github.com/alexanderramin/ghgantt/internal/domain"
	"github.com/alexanderramin/ghgantt/internal/github"
)

// remoteError attaches a domain kind to a gateway failure. Auth problems are
// configuration errors; rate limits and outages are transient.
func remoteError(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case github.IsAuthError(err):
		return domain.WrapError(domain.KindConfiguration, op, err)
	case github.IsFatal(err),
		errors.Is(err, github.ErrTimeout),
		errors.Is(err, github.ErrRetryExhausted):
		return domain.WrapError(domain.KindRemoteTransient, op, err)
	case errors.Is(err, github.ErrProjectNotFound), github.IsNotFound(err):
		return domain.WrapError(domain.KindNotFound, op, err)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}

func repoOf(t app.Target) github.Repo {
	return github.Repo{Owner: t.Owner, Name: t.Repo}
}

func dateFieldsOf(t app.Target) github.DateFields {
	return github.DateFields{Start: t.StartField, End: t.EndField}
}

func loggerOrDiscard(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return logger
}
