package cli

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/alexanderramin/ghgantt/internal/cli/formatter"
	"github.com/alexanderramin/ghgantt/internal/domain"
	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
)

func newTokenCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Store or remove the GitHub token in the OS keyring",
	}
	cmd.AddCommand(newTokenSetCmd(app), newTokenClearCmd(app))
	return cmd
}

func newTokenSetCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "set",
		Short: "Save a token to the keyring (reads stdin when not a terminal)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var token string
			if app.interactive() {
				form := huh.NewForm(huh.NewGroup(
					huh.NewInput().
						Title("GitHub token").
						Description("Needs repo and project scopes").
						EchoMode(huh.EchoModePassword).
						Value(&token),
				)).WithTheme(huhTheme()).WithShowHelp(false)
				if err := form.Run(); err != nil {
					return fmt.Errorf("token prompt: %w", err)
				}
			} else {
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && line == "" {
					return domain.NewError(domain.KindValidation, "token set", "no token on stdin")
				}
				token = line
			}

			token = strings.TrimSpace(token)
			if token == "" {
				return domain.NewError(domain.KindValidation, "token set", "token must not be empty")
			}
			if err := app.Tokens.Set(token); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.Check("Token saved to the keyring"))
			return nil
		},
	}
}

func newTokenClearCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove the token from the keyring",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.Tokens.Clear(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.Check("Token removed from the keyring"))
			return nil
		},
	}
}
