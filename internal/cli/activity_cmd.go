package cli

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/alexanderramin/ghgantt/internal/activity"
	"github.com/alexanderramin/ghgantt/internal/app"
	"github.com/alexanderramin/ghgantt/internal/cli/formatter"
	"github.com/alexanderramin/ghgantt/internal/domain"
	"github.com/spf13/cobra"
)

func newFetchThreadCmd(a *App) *cobra.Command {
	var outputDir string

	cmd := &cobra.Command{
		Use:   "fetch-thread ISSUE",
		Short: "Save an issue and all of its comments as markdown",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := strconv.Atoi(strings.TrimPrefix(args[0], "#"))
			if err != nil {
				return domain.Errorf(domain.KindValidation, "fetch thread", "invalid issue number %q", args[0])
			}
			s, err := a.open(cmd, true)
			if err != nil {
				return err
			}
			if outputDir == "" {
				outputDir = filepath.Dir(s.cfg.LocalPath())
			}

			stop := formatter.StartSpinner(cmd.ErrOrStderr(), a.interactive(), fmt.Sprintf("Fetching #%d…", n))
			res, err := s.svc.Activity.FetchThread(cmd.Context(), app.FetchThreadRequest{
				Owner:     s.cfg.Owner(),
				Repo:      s.cfg.RepoName(),
				Number:    n,
				OutputDir: outputDir,
			})
			stop()
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatThreadSaved(res))
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputDir, "output-dir", "o", "", "Directory to write issues/<n>_thread.md under (default: next to the task file)")
	return cmd
}

// splitList parses a comma-separated flag value, dropping blanks.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func newFetchUserIssuesCmd(a *App) *cobra.Command {
	var org, outputDir, state, since, until, excludeStatus, statusField string
	var projectNumber int
	var delay time.Duration

	cmd := &cobra.Command{
		Use:   "fetch-user-issues USER",
		Short: "Save every issue a user took part in as markdown",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			user := strings.TrimPrefix(strings.TrimSpace(args[0]), "@")

			window, err := activity.ParseRange(since, until, a.now())
			if err != nil {
				return err
			}

			s, err := a.openOptional(cmd, true)
			if err != nil {
				return err
			}

			req := app.NewUserIssuesRequest(user, org)
			if req.Org == "" {
				req.Org = s.cfg.Owner()
			}
			req.State = state
			req.Since, req.Until = window.Since, window.Until
			req.Delay = delay
			req.ExcludeStatus = splitList(excludeStatus)
			req.ProjectNumber = projectNumber
			if req.ProjectNumber == 0 {
				req.ProjectNumber = s.cfg.ProjectNumber
			}
			req.StatusField = statusField
			req.OutputDir = outputDir
			if req.OutputDir == "" {
				req.OutputDir = filepath.Dir(s.cfg.LocalPath())
			}

			stop := formatter.StartSpinner(cmd.ErrOrStderr(), a.interactive(), "Searching issues involving @"+user+"…")
			res, err := s.svc.Activity.FetchUserIssues(cmd.Context(), req)
			stop()
			if res != nil {
				fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatUserIssues(user, res))
			}
			return err
		},
	}

	f := cmd.Flags()
	f.StringVarP(&org, "org", "O", "", "Organization to search (default: owner from config)")
	f.StringVarP(&outputDir, "output-dir", "o", "", "Directory for the <user>/ folder (default: next to the task file)")
	f.StringVarP(&state, "state", "s", "all", "Issue state: open, closed or all")
	f.StringVar(&since, "since", "", "Only keep issues the user touched on or after this day (YYYY-MM-DD or e.g. \"last monday\")")
	f.StringVar(&until, "until", "", "Only keep issues the user touched on or before this day")
	f.DurationVarP(&delay, "delay", "d", 0, "Pause between issues")
	f.StringVar(&excludeStatus, "exclude-status", "", "Comma-separated project status values to skip, e.g. Todo,Backlog")
	f.IntVarP(&projectNumber, "project-number", "p", 0, "Project whose status field is checked (default: project_number from config)")
	f.StringVar(&statusField, "status-field", "Status", "Name of the single-select status field")
	return cmd
}
