package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/alexanderramin/ghgantt/internal/cli/formatter"
	"github.com/alexanderramin/ghgantt/internal/config"
	"github.com/alexanderramin/ghgantt/internal/domain"
	"github.com/alexanderramin/ghgantt/internal/github"
	"github.com/spf13/cobra"
)

func newValidateCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check the config, the token and access to the project",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			step := func(s string) { fmt.Fprintln(out, formatter.StyleBlue.Render(s)) }

			step("Checking configuration…")
			cfg, err := app.loadConfig(false)
			if err != nil {
				fmt.Fprintln(out, "  "+formatter.Bang(err.Error()))
				return err
			}
			fmt.Fprintln(out, "  "+formatter.Check("Config loaded: "+cfg.Repo+" "+formatter.Dim(cfg.Path)))

			step("Checking GitHub token…")
			_, source, err := config.ResolveToken(app.Tokens)
			if err != nil {
				fmt.Fprintln(out, "  "+formatter.Bang(err.Error()))
				return err
			}
			fmt.Fprintln(out, "  "+formatter.Check(fmt.Sprintf("Token found (%s)", source)))

			step("Testing GitHub connection…")
			s, err := app.connect(cmd, cfg, true)
			if err != nil {
				return err
			}
			meta, err := s.svc.Gateway.FetchContainer(cmd.Context(), cfg.Owner(), cfg.ProjectNumber)
			if err != nil {
				fmt.Fprintln(out, "  "+formatter.Bang(err.Error()))
				if errors.Is(err, github.ErrProjectNotFound) {
					return domain.Errorf(domain.KindNotFound, "validate",
						"project %d not found for %s", cfg.ProjectNumber, cfg.Owner())
				}
				return fmt.Errorf("fetching project: %w", err)
			}
			fmt.Fprintln(out, "  "+formatter.Check("Project found: "+meta.Title))

			missing := 0
			for _, f := range []struct{ label, name string }{
				{"Start date", cfg.DateFields.Start},
				{"End date", cfg.DateFields.End},
			} {
				if meta.FieldID(f.name) != "" {
					fmt.Fprintln(out, "  "+formatter.Check(f.label+" field found: "+f.name))
					continue
				}
				missing++
				fmt.Fprintln(out, "  "+formatter.Bang(f.label+" field not found: "+f.name))
				fmt.Fprintln(out, "      "+formatter.Dim("Available fields: "+strings.Join(domain.FieldNames(meta.Fields), ", ")))
			}

			fmt.Fprintln(out)
			if missing > 0 {
				fmt.Fprintln(out, formatter.StyleYellow.Render("Validation complete with warnings: dates will not sync until the fields exist"))
				return nil
			}
			fmt.Fprintln(out, formatter.StyleGreen.Render("✓ Validation complete"))
			return nil
		},
	}
}
