package cli

import (
	"github.com/alexanderramin/ghgantt/internal/domain"
	"github.com/alexanderramin/ghgantt/internal/github"
)

// Process exit codes.
const (
	ExitOK            = 0
	ExitFailure       = 1
	ExitConfiguration = 2
	ExitNotFound      = 3
	ExitValidation    = 4
	ExitRateLimit     = 5
)

// ExitCode maps an error returned by a command to the process exit code.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case github.IsRateLimit(err), domain.IsKind(err, domain.KindRemoteTransient):
		return ExitRateLimit
	case github.IsAuthError(err), domain.IsKind(err, domain.KindConfiguration):
		return ExitConfiguration
	case domain.IsKind(err, domain.KindNotFound):
		return ExitNotFound
	case domain.IsKind(err, domain.KindValidation):
		return ExitValidation
	default:
		return ExitFailure
	}
}
