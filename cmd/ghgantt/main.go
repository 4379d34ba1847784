package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/alexanderramin/ghgantt/internal/cli"
	"github.com/alexanderramin/ghgantt/internal/config"
	"github.com/alexanderramin/ghgantt/internal/db"
	"github.com/alexanderramin/ghgantt/internal/github"
	"github.com/alexanderramin/ghgantt/internal/localstore"
	"github.com/alexanderramin/ghgantt/internal/repository"
	"github.com/alexanderramin/ghgantt/internal/service"
	"github.com/mattn/go-isatty"
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	app := &cli.App{
		Connect: connect,
		Tokens:  config.KeyringStore(),
		IsInteractive: func() bool {
			return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
		},
	}
	defer app.Close()

	if err := cli.NewRootCmd(app).ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return cli.ExitCode(err)
	}
	return cli.ExitOK
}

// connect wires the GitHub gateway and, unless disabled, the push journal.
func connect(cfg *config.Config, token string, logger *slog.Logger) (*cli.Services, io.Closer, error) {
	gcfg := github.LoadConfig().WithBaseURL(cfg.APIURL)
	var observer github.Observer = github.NoopObserver{}
	if gcfg.LogCalls {
		observer = github.NewLogObserver(logger)
	}
	gateway := github.NewGateway(github.NewClient(gcfg, token, observer), gcfg.PageSize)
	useCases := service.NewLogUseCaseObserver(logger)

	svc := &cli.Services{
		Activity: service.NewActivityService(gateway, logger, useCases),
		Gateway:  gateway,
	}

	if os.Getenv("GHGANTT_NO_JOURNAL") == "1" {
		svc.Sync = service.NewSyncService(gateway, localstore.FileStore{}, nil, logger, useCases)
		return svc, nil, nil
	}

	path, err := journalPath(cfg)
	if err != nil {
		return nil, nil, err
	}
	database, err := db.OpenDB(path)
	if err != nil {
		return nil, nil, fmt.Errorf("opening sync journal: %w", err)
	}
	svc.Sync = service.NewSyncService(gateway, localstore.FileStore{}, db.NewSQLiteUnitOfWork(database), logger, useCases)
	svc.History = service.NewHistoryService(repository.NewSQLiteSyncRunRepo(database))
	return svc, database, nil
}

// journalPath is journal_path from the config, or ~/.ghgantt/journal.db.
func journalPath(cfg *config.Config) (string, error) {
	if cfg.JournalPath != "" {
		return cfg.Resolve(cfg.JournalPath), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("finding home directory: %w", err)
	}
	return filepath.Join(home, ".ghgantt", "journal.db"), nil
}
