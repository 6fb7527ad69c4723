package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/nicocardiel/repdoc/internal/cli"
	"github.com/nicocardiel/repdoc/internal/config"
	"github.com/nicocardiel/repdoc/internal/db"
	"github.com/nicocardiel/repdoc/internal/publish"
	"github.com/nicocardiel/repdoc/internal/report"
	"github.com/nicocardiel/repdoc/internal/repository"
	"github.com/nicocardiel/repdoc/internal/service"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	app := &cli.App{
		Version: version,
		Wire:    wire,
	}

	// Detect interactive terminal for the session and board commands.
	app.IsInteractive = func() bool {
		return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
	}
	defer app.Close()

	return cli.NewRootCmd(app).Execute()
}

func wire(cfg *config.Config, logger *slog.Logger) (*cli.Services, error) {
	database, err := db.OpenDB(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Wire repositories
	ledgerRepo := repository.NewSQLiteLedgerRepo(database)
	executionRepo := repository.NewSQLiteExecutionRepo(database)
	uow := db.NewSQLiteUnitOfWork(database)

	reports, err := report.NewGenerator(report.Options{
		OutputDir: cfg.OutputDir,
		Title:     cfg.Report.Title,
		NotesFile: cfg.Report.NotesFile,
		PDF:       cfg.Report.PDF,
		Version:   version,
	})
	if err != nil {
		database.Close()
		return nil, err
	}

	// syncer stays a nil interface when sync is disabled.
	var syncer service.Syncer
	if cfg.Sync.Enabled {
		syncer = publish.NewSyncer(publish.SyncOptions{
			Command: cfg.Sync.Command,
			Args:    cfg.Sync.Args,
			Target:  cfg.Sync.Target,
		}, logger)
	}

	sessions := service.NewSessionService(
		ledgerRepo,
		executionRepo,
		uow,
		service.NewPublisher(reports, executionRepo, syncer, logger),
		service.SessionOptions{
			OutputDir:            cfg.OutputDir,
			BlockedCourses:       cfg.Courses.Blocked,
			WarningCollaborators: cfg.WarningCollaborators,
			Version:              version,
		},
		service.NewLogUseCaseObserver(logger),
	)

	return &cli.Services{
		Sessions: sessions,
		Close:    database.Close,
	}, nil
}
