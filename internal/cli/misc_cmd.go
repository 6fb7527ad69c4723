package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/nicocardiel/repdoc/internal/catalog"
	"github.com/nicocardiel/repdoc/internal/cli/formatter"
	"github.com/nicocardiel/repdoc/internal/config"
	"github.com/nicocardiel/repdoc/internal/publish"
	"github.com/spf13/cobra"
)

func newServeCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Preview the generated reports over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			srv := publish.NewServer(publish.ServerConfig{
				Addr: app.cfg.Serve.Addr,
				Dir:  app.cfg.OutputDir,
			}, app.logger)
			fmt.Fprintf(cmd.OutOrStdout(), "Sirviendo %s en http://%s/\n", app.cfg.OutputDir, app.cfg.Serve.Addr)
			return srv.Start(ctx)
		},
	}
	cmd.Flags().String("addr", "", "listen address (default from serve.addr)")
	return cmd
}

func newCoursesCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "courses",
		Short: "List the known courses and whether they are blocked",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatCourses(catalog.Courses(), app.cfg.IsBlocked))
			return nil
		},
	}
}

func newVersionCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "repdoc %s\n", app.Version)
			return nil
		},
	}
}

func newConfigCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the configuration file",
	}
	cmd.AddCommand(newConfigInitCmd(app), newConfigShowCmd(app))
	return cmd
}

func newConfigInitCmd(app *App) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init [FILE]",
		Short: "Write the default configuration",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := app.cfgPath
			if len(args) == 1 {
				path = args[0]
			}
			if _, err := os.Stat(path); err == nil && !force {
				msg := fmt.Sprintf("%s already exists. Overwrite? (y/n) [n] ", path)
				if !promptYesNoIO(app.stdin(), cmd.OutOrStdout(), msg, false) {
					fmt.Fprintln(cmd.OutOrStdout(), "Cancelado.")
					return nil
				}
			}
			if err := config.DefaultConfig().Save(path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", formatter.StyleGreen.Render("✔"), path)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite without asking")
	return cmd
}

func newConfigShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rows := [][]string{
				{"output_dir", app.cfg.OutputDir},
				{"db_path", app.cfg.DBPath},
				{"log.level", app.cfg.Log.Level},
				{"warning_collaborators", formatter.Credits(app.cfg.WarningCollaborators)},
				{"report.title", app.cfg.Report.Title},
				{"report.notes_file", app.cfg.Report.NotesFile},
				{"report.pdf", fmt.Sprint(app.cfg.Report.PDF)},
				{"sync.enabled", fmt.Sprint(app.cfg.Sync.Enabled)},
				{"sync.target", app.cfg.Sync.Target},
				{"serve.addr", app.cfg.Serve.Addr},
				{"ui.theme", app.cfg.UI.Theme},
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.RenderTable([]string{"Clave", "Valor"}, rows))
			return nil
		},
	}
}
