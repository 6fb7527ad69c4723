package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/nicocardiel/repdoc/internal/config"
	"github.com/nicocardiel/repdoc/internal/service"
	"github.com/spf13/cobra"
)

// Services are the use cases wired for one command run. Close releases the
// database behind them.
type Services struct {
	Sessions service.SessionService
	Close    func() error
}

// WireFunc builds the services once the configuration is known.
type WireFunc func(cfg *config.Config, logger *slog.Logger) (*Services, error)

// App holds the wiring shared by every command.
type App struct {
	Version string
	Wire    WireFunc

	// IsInteractive reports whether stdin is a terminal. Nil means no.
	IsInteractive func() bool
	// Hostname defaults to os.Hostname.
	Hostname func() (string, error)
	// Args is the command line recorded with every execution; defaults to os.Args.
	Args []string
	// Stdin feeds the plain yes/no prompts; defaults to os.Stdin.
	Stdin io.Reader
	// NewPrompter overrides the huh forms of the interactive session.
	NewPrompter func(theme string) sessionPrompter

	cfgPath  string
	debug    bool
	echo     bool
	cfg      *config.Config
	logger   *slog.Logger
	services *Services
}

// NewRootCmd creates the top-level "repdoc" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "repdoc",
		Short:         "Teaching load assignment in rounds",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return app.setup(cmd)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&app.cfgPath, "config", config.DefaultFile, "configuration file")
	pf.BoolVar(&app.debug, "debug", false, "debug logging and table dumps")
	pf.BoolVar(&app.echo, "echo", false, "print the command line")
	pf.String("output", "", "output directory for reports and ledger workbook")
	pf.String("db", "", "SQLite database path")

	root.AddCommand(
		newSessionCmd(app),
		newExportCmd(app),
		newSelectCmd(app),
		newRemoveCmd(app),
		newFinishCmd(app),
		newBoardCmd(app),
		newHistoryCmd(app),
		newServeCmd(app),
		newCoursesCmd(app),
		newConfigCmd(app),
		newVersionCmd(app),
	)

	return root
}

func (app *App) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(app.cfgPath, cmd.Flags())
	if err != nil {
		return err
	}
	if app.debug {
		cfg.Log.Level = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	app.cfg = cfg
	app.logger = newLogger(cmd.ErrOrStderr(), cfg.Log)

	if app.echo {
		fmt.Fprintf(cmd.OutOrStdout(), "%s\n", app.commandLine())
	}
	app.logger.Debug("config_loaded",
		"file", app.cfgPath,
		"output_dir", cfg.OutputDir,
		"db_path", cfg.DBPath,
		"blocked", cfg.Courses.Blocked,
	)
	return nil
}

// sessions wires the services on first use.
func (app *App) sessions() (service.SessionService, error) {
	if app.services == nil {
		if app.Wire == nil {
			return nil, fmt.Errorf("services are not configured")
		}
		svc, err := app.Wire(app.cfg, app.logger)
		if err != nil {
			return nil, err
		}
		app.services = svc
	}
	return app.services.Sessions, nil
}

// Close releases whatever Wire opened.
func (app *App) Close() error {
	if app.services == nil || app.services.Close == nil {
		return nil
	}
	return app.services.Close()
}

func (app *App) commandLine() string {
	args := app.Args
	if args == nil {
		args = os.Args
	}
	return strings.Join(args, " ")
}

func (app *App) hostname() string {
	lookup := app.Hostname
	if lookup == nil {
		lookup = os.Hostname
	}
	host, err := lookup()
	if err != nil {
		return "unknown"
	}
	return host
}

func (app *App) stdin() io.Reader {
	if app.Stdin == nil {
		return os.Stdin
	}
	return app.Stdin
}

func (app *App) interactive() bool {
	return app.IsInteractive != nil && app.IsInteractive()
}
