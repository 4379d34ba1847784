package cli

import (
	"fmt"
	"time"

	"github.com/alexanderramin/ghgantt/internal/app"
	"github.com/alexanderramin/ghgantt/internal/cli/formatter"
	"github.com/spf13/cobra"
)

func newPullCmd(a *App) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "pull",
		Short: "Fetch the project from GitHub and overwrite the local files",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.open(cmd, true)
			if err != nil {
				return err
			}
			req := pullRequestFor(s, output, a.now())

			stop := formatter.StartSpinner(cmd.ErrOrStderr(), a.interactive(), "Fetching project…")
			res, err := s.svc.Sync.Pull(cmd.Context(), req)
			stop()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatPull(res))
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Local task file (.yaml or .xlsx, default: output_file from config)")
	return cmd
}

func pullRequestFor(s *session, output string, now time.Time) app.PullRequest {
	path := s.cfg.LocalPath()
	if output != "" {
		path = output
	}
	return app.PullRequest{Target: s.target(), LocalPath: path, Now: &now}
}

func newStatusCmd(a *App) *cobra.Command {
	var source string
	var orphans orphanFlag

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show what push would change on GitHub",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.open(cmd, true)
			if err != nil {
				return err
			}
			req := statusRequestFor(s, source)
			req.OrphanPolicy = orphans.resolve(s)

			stop := formatter.StartSpinner(cmd.ErrOrStderr(), a.interactive(), "Comparing with GitHub…")
			res, err := s.svc.Sync.Status(cmd.Context(), req)
			stop()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatStatus(res))
			return nil
		},
	}

	cmd.Flags().StringVarP(&source, "source", "s", "", "Local task file (default: output_file from config)")
	addOrphanFlag(cmd.Flags(), &orphans)
	return cmd
}

func statusRequestFor(s *session, source string) app.StatusRequest {
	path := s.cfg.LocalPath()
	if source != "" {
		path = source
	}
	return app.NewStatusRequest(s.target(), path)
}

func newPushCmd(a *App) *cobra.Command {
	var source string
	var orphans orphanFlag
	var dryRun, enforce bool
	var delay time.Duration

	cmd := &cobra.Command{
		Use:   "push",
		Short: "Apply local changes to GitHub",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.open(cmd, true)
			if err != nil {
				return err
			}
			path := s.cfg.LocalPath()
			if source != "" {
				path = source
			}
			req := app.NewPushRequest(s.target(), path)
			req.DryRun = dryRun
			req.EnforceSubLinks = enforce
			req.OrphanPolicy = orphans.resolve(s)
			req.Delay = s.cfg.RequestDelay
			if cmd.Flags().Changed("delay") {
				req.Delay = delay
			}

			stop := formatter.StartSpinner(cmd.ErrOrStderr(), a.interactive(), "Pushing changes…")
			res, err := s.svc.Sync.Push(cmd.Context(), req)
			stop()
			if res != nil {
				for _, e := range res.Events {
					logEvent(s, e)
				}
				fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatPush(res))
			}
			return err
		},
	}

	f := cmd.Flags()
	f.StringVarP(&source, "source", "s", "", "Local task file (default: output_file from config)")
	f.BoolVarP(&dryRun, "dry-run", "n", false, "Show what would be done without changing GitHub")
	f.BoolVar(&enforce, "enforce-subissues", false, "Link every subtask to its parent, not only new ones")
	addOrphanFlag(f, &orphans)
	f.DurationVarP(&delay, "delay", "d", 0, "Pause between item requests (default: request_delay from config)")
	return cmd
}

// logEvent copies a push event into the log. The console already shows it
// through FormatPush, so everything goes out at debug level.
func logEvent(s *session, e app.SyncEvent) {
	s.logger.Debug("push event", "level", string(e.Level), "key", e.Key, "issue", e.Number, "message", e.Message)
}
