package cli

import (
	"log/slog"

	"github.com/alexanderramin/ghgantt/internal/app"
	"github.com/alexanderramin/ghgantt/internal/config"
	"github.com/spf13/cobra"
)

// session is a loaded config with its wired services.
type session struct {
	cfg    *config.Config
	svc    *Services
	logger *slog.Logger
}

func (s *session) target() app.Target {
	return app.Target{
		Owner:         s.cfg.Owner(),
		Repo:          s.cfg.RepoName(),
		ProjectNumber: s.cfg.ProjectNumber,
		StartField:    s.cfg.DateFields.Start,
		EndField:      s.cfg.DateFields.End,
	}
}

// open loads the config, resolves the token when needToken is set and
// connects the services.
func (a *App) open(cmd *cobra.Command, needToken bool) (*session, error) {
	cfg, err := a.loadConfig(false)
	if err != nil {
		return nil, err
	}
	return a.connect(cmd, cfg, needToken)
}

// loadConfig reads the config without connecting. With optional set, a
// missing config yields defaults.
func (a *App) loadConfig(optional bool) (*config.Config, error) {
	if optional && a.flags.configPath == "" {
		if _, err := config.Find("."); err != nil {
			return config.Default(), nil
		}
	}
	return config.Load(a.flags.configPath)
}

// openOptional is open for commands that can run without a config file.
// When none is found upwards from the working directory, defaults are used.
func (a *App) openOptional(cmd *cobra.Command, needToken bool) (*session, error) {
	cfg, err := a.loadConfig(true)
	if err != nil {
		return nil, err
	}
	return a.connect(cmd, cfg, needToken)
}

func (a *App) connect(cmd *cobra.Command, cfg *config.Config, needToken bool) (*session, error) {
	if a.flags.logFile == "" && cfg.LogFile != "" {
		if err := a.setLogger(cmd, cfg.Resolve(cfg.LogFile)); err != nil {
			return nil, err
		}
	}

	var token string
	if needToken {
		var err error
		if token, _, err = config.ResolveToken(a.Tokens); err != nil {
			return nil, err
		}
	}

	svc, closer, err := a.Connect(cfg, token, a.logger)
	if err != nil {
		return nil, err
	}
	if closer != nil {
		a.closers = append(a.closers, closer)
	}
	a.logger.Debug("config loaded", "path", cfg.Path, "repo", cfg.Repo, "project", cfg.ProjectNumber)
	return &session{cfg: cfg, svc: svc, logger: a.logger}, nil
}
