package cli

import (
	"fmt"

	"github.com/alexanderramin/ghgantt/internal/cli/formatter"
	"github.com/alexanderramin/ghgantt/internal/domain"
	"github.com/spf13/cobra"
)

func newHistoryCmd(app *App) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent pushes from the sync journal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.openOptional(cmd, false)
			if err != nil {
				return err
			}
			if s.svc.History == nil {
				return domain.NewError(domain.KindConfiguration, "history", "the sync journal is disabled")
			}
			runs, err := s.svc.History.ListRuns(cmd.Context(), limit)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatRuns(runs))
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of runs to show")

	cmd.AddCommand(&cobra.Command{
		Use:   "show RUN_ID",
		Short: "Show what one push did to every change",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.openOptional(cmd, false)
			if err != nil {
				return err
			}
			if s.svc.History == nil {
				return domain.NewError(domain.KindConfiguration, "history", "the sync journal is disabled")
			}
			run, outcomes, err := s.svc.History.GetRun(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatRun(run, outcomes))
			return nil
		},
	})
	return cmd
}
