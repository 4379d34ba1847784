package cli

import (
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/alexanderramin/ghgantt/internal/config"
	"github.com/alexanderramin/ghgantt/internal/github"
	"github.com/alexanderramin/ghgantt/internal/logging"
	"github.com/alexanderramin/ghgantt/internal/service"
	"github.com/spf13/cobra"
)

// Services are the use cases a command runs against one configuration.
type Services struct {
	Sync     service.SyncService
	Activity service.ActivityService
	History  service.HistoryService
	// Gateway is used directly by validate to read the field schema.
	Gateway github.Gateway
}

// Connector builds services for a loaded config. token is empty for
// commands that never reach GitHub.
type Connector func(cfg *config.Config, token string, logger *slog.Logger) (*Services, io.Closer, error)

// App holds what the command tree needs from main.
type App struct {
	Connect       Connector
	Tokens        config.TokenStore
	IsInteractive func() bool
	Now           func() time.Time

	flags   globalFlags
	logger  *slog.Logger
	closers []io.Closer
}

type globalFlags struct {
	configPath string
	verbose    bool
	quiet      bool
	logFile    string
}

func (a *App) interactive() bool {
	return a.IsInteractive != nil && a.IsInteractive()
}

func (a *App) now() time.Time {
	if a.Now != nil {
		return a.Now()
	}
	return time.Now()
}

// Close releases log files and journal connections opened by commands.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i].Close())
	}
	a.closers = nil
	return errors.Join(errs...)
}

func (a *App) setLogger(cmd *cobra.Command, file string) error {
	logger, closer, err := logging.New(logging.Options{
		Verbose: a.flags.verbose,
		Quiet:   a.flags.quiet,
		File:    file,
		Stderr:  cmd.ErrOrStderr(),
	})
	if err != nil {
		return err
	}
	a.logger = logger
	a.closers = append(a.closers, closer)
	return nil
}

// NewRootCmd creates the "ghgantt" command and registers every subcommand
// against app.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "ghgantt",
		Short:         "Sync GitHub Projects with a local Gantt plan",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return app.setLogger(cmd, app.flags.logFile)
		},
	}

	root.SetFlagErrorFunc(flagError)

	pf := root.PersistentFlags()
	pf.StringVarP(&app.flags.configPath, "config", "c", "", "Path to config.yaml (default: search upwards from the working directory)")
	pf.BoolVarP(&app.flags.verbose, "verbose", "v", false, "Log debug output to stderr")
	pf.BoolVarP(&app.flags.quiet, "quiet", "q", false, "Only log errors")
	pf.StringVar(&app.flags.logFile, "log-file", "", "Also write JSON logs to this file")

	root.AddCommand(
		newInitCmd(app),
		newPullCmd(app),
		newPushCmd(app),
		newStatusCmd(app),
		newViewCmd(app),
		newValidateCmd(app),
		newFetchThreadCmd(app),
		newFetchUserIssuesCmd(app),
		newTokenCmd(app),
		newHistoryCmd(app),
	)
	return root
}
