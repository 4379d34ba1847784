package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/alexanderramin/ghgantt/internal/cli/formatter"
	"github.com/alexanderramin/ghgantt/internal/config"
	"github.com/alexanderramin/ghgantt/internal/domain"
	"github.com/alexanderramin/ghgantt/internal/github"
	"github.com/spf13/cobra"
)

// localFileName forces a supported extension, appending .yaml otherwise.
func localFileName(name string, warn io.Writer) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml", ".xlsx":
		return name
	}
	fmt.Fprintln(warn, formatter.StyleYellow.Render("Warning: unsupported extension, using .yaml (supported: .yaml, .yml, .xlsx)"))
	return name + ".yaml"
}

func newInitCmd(app *App) *cobra.Command {
	var repo, startField, endField, output string
	var project int

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create config.yaml and .env in the current directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			const op = "init"
			out := cmd.OutOrStdout()

			projectStr := ""
			if project > 0 {
				projectStr = strconv.Itoa(project)
			}
			if (repo == "" || projectStr == "") && app.interactive() {
				if err := initForm(&repo, &projectStr).Run(); err != nil {
					return fmt.Errorf("init prompt: %w", err)
				}
			}

			if repo == "" {
				return domain.NewError(domain.KindValidation, op, "--repo is required")
			}
			if _, err := github.ParseRepo(repo); err != nil {
				return domain.WrapError(domain.KindValidation, op, err)
			}
			if projectStr == "" {
				return domain.NewError(domain.KindValidation, op, "--project is required")
			}
			if err := validateProjectNumber(projectStr); err != nil {
				return domain.Errorf(domain.KindValidation, op, "--project: %v", err)
			}
			project, _ = strconv.Atoi(strings.TrimSpace(projectStr))

			cfg := config.Default()
			cfg.Repo = strings.TrimSpace(repo)
			cfg.ProjectNumber = project
			cfg.DateFields = config.DateFields{Start: startField, End: endField}
			cfg.OutputFile = localFileName(output, cmd.ErrOrStderr())

			path := app.flags.configPath
			if path == "" {
				path = config.FileName
			}
			if err := config.Save(cfg, path); err != nil {
				return err
			}
			fmt.Fprintln(out, formatter.Check("Created "+path))

			envPath := filepath.Join(filepath.Dir(path), ".env")
			created, err := writeEnvTemplate(envPath)
			if err != nil {
				return err
			}
			if created {
				fmt.Fprintln(out, formatter.Check("Created "+envPath+" (add your token)"))
			}

			fmt.Fprintln(out)
			fmt.Fprintln(out, formatter.StyleYellow.Render("Next steps:"))
			fmt.Fprintln(out, "  1. Put your GITHUB_TOKEN in .env, or run 'ghgantt token set'")
			fmt.Fprintln(out, "  2. Run 'ghgantt validate' to check access")
			fmt.Fprintln(out, "  3. Run 'ghgantt pull' to fetch the project")
			return nil
		},
	}

	cmd.Flags().StringVarP(&repo, "repo", "r", "", "Repository as owner/repo")
	cmd.Flags().IntVarP(&project, "project", "p", 0, "GitHub Project number")
	cmd.Flags().StringVar(&startField, "start-field", "Start Date", "Name of the start date field in the project")
	cmd.Flags().StringVar(&endField, "end-field", "Due Date", "Name of the end date field in the project")
	cmd.Flags().StringVarP(&output, "output", "o", "gaant.yaml", "Local task file (.yaml or .xlsx)")

	return cmd
}

// writeEnvTemplate creates a .env holding the token placeholder unless one
// already exists.
func writeEnvTemplate(path string) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return false, fmt.Errorf("checking %s: %w", path, err)
	}
	if err := os.WriteFile(path, []byte(config.TokenEnv+"="+config.PlaceholderToken+"\n"), 0o600); err != nil {
		return false, fmt.Errorf("writing %s: %w", path, err)
	}
	return true, nil
}
