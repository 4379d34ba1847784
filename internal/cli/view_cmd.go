package cli

import (
	"fmt"
	"os"
	"os/signal"

	"github.com/alexanderramin/ghgantt/internal/cli/formatter"
	"github.com/alexanderramin/ghgantt/internal/domain"
	"github.com/alexanderramin/ghgantt/internal/gantt"
	"github.com/alexanderramin/ghgantt/internal/localstore"
	"github.com/spf13/cobra"
)

// formatTree prints the forest to the terminal instead of a chart.
const formatTree = "tree"

func newViewCmd(app *App) *cobra.Command {
	var source, format, output string
	var weekends, watch bool

	cmd := &cobra.Command{
		Use:   "view",
		Short: "Render the local task file as a Gantt chart, table or PDF",
		RunE: func(cmd *cobra.Command, args []string) error {
			const op = "view"
			cfg, err := app.loadConfig(source != "")
			if err != nil {
				return err
			}
			if source == "" {
				source = cfg.LocalPath()
			}
			if !localstore.Exists(source) {
				return domain.Errorf(domain.KindNotFound, op, "%s not found, run 'ghgantt pull' first", source)
			}

			filter := gantt.Filter{Labels: cfg.LabelsFilter, IncludeClosed: cfg.IncludeClosed}
			load := func() (*domain.Container, error) {
				c, err := localstore.Load(source)
				if err != nil {
					return nil, err
				}
				return filter.Apply(c), nil
			}

			if format == formatTree {
				if output != "" || watch {
					return domain.NewError(domain.KindValidation, op, "the tree format only prints to the terminal")
				}
				c, err := load()
				if err != nil {
					return err
				}
				fmt.Fprint(cmd.OutOrStdout(), formatter.FormatView(c))
				return nil
			}

			f, err := gantt.ParseFormat(format)
			if err != nil {
				return err
			}
			if f == gantt.FormatPDF && output == "" {
				return domain.NewError(domain.KindValidation, op, "the pdf format needs --output")
			}
			if watch && output == "" {
				return domain.NewError(domain.KindValidation, op, "--watch needs --output")
			}
			opts := gantt.Options{ExcludeWeekends: !weekends}

			render := func() error {
				c, err := load()
				if err != nil {
					return err
				}
				if output == "" {
					data, err := gantt.Render(c, f, opts)
					if err != nil {
						return err
					}
					fmt.Fprintln(cmd.OutOrStdout(), string(data))
					return nil
				}
				if err := gantt.WriteFile(c, f, opts, output, app.now()); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), formatter.Check("Saved to "+output))
				return nil
			}

			if err := render(); err != nil {
				return err
			}
			if !watch {
				return nil
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			fmt.Fprintln(cmd.ErrOrStderr(), formatter.Dim("Watching "+source+", press Ctrl+C to stop"))
			return gantt.Watch(ctx, source, render, app.logger)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&source, "source", "s", "", "Local task file (default: output_file from config)")
	f.StringVarP(&format, "format", "f", "mermaid", "Output format: mermaid, hierarchy, table, pdf or tree")
	f.StringVarP(&output, "output", "o", "", "Save to this file instead of printing")
	f.BoolVar(&weekends, "weekends", false, "Keep weekends in the chart")
	f.BoolVarP(&watch, "watch", "w", false, "Re-render whenever the source file changes")
	return cmd
}
