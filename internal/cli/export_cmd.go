package cli

import (
	"fmt"

	"github.com/nicocardiel/repdoc/internal/cli/formatter"
	"github.com/spf13/cobra"
)

func newExportCmd(app *App) *cobra.Command {
	var flags sessionFlags
	var round int

	cmd := &cobra.Command{
		Use:   "export WORKBOOK",
		Short: "Replay the ledger and regenerate every report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			// Blocked courses can still be exported; nothing is recorded.
			readOnly := app.cfg.IsBlocked(flags.course)
			svc, err := app.openSession(cmd.Context(), args[0], flags, readOnly, false)
			if err != nil {
				return err
			}
			if err := svc.Publish(cmd.Context(), round); err != nil {
				return fmt.Errorf("publishing reports: %w", err)
			}

			sum := svc.Summary()
			out := cmd.OutOrStdout()
			if app.debug {
				printTables(out, svc)
			}
			fmt.Fprintf(out, "%s %d entradas (%d vigentes), %s créditos elegidos de %s\n",
				formatter.StyleGreen.Render("✔"),
				sum.Entries, sum.ActiveEntries,
				formatter.Credits(sum.Totals.Chosen), formatter.Credits(sum.Totals.Initial))
			fmt.Fprintf(out, "Informes en %s\n", app.cfg.OutputDir)
			return nil
		},
	}

	flags.register(cmd)
	registerPublishFlags(cmd)
	cmd.Flags().IntVar(&round, "round", 0, "round used to shade the applicant roster")
	return cmd
}

func newHistoryCmd(app *App) *cobra.Command {
	var course string

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List the recorded executions of a course",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sessions, err := app.sessions()
			if err != nil {
				return err
			}
			runs, err := sessions.History(cmd.Context(), course)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), formatter.Dim("No hay ejecuciones registradas."))
				return nil
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatHistory(runs))
			return nil
		},
	}

	cmd.Flags().StringVar(&course, "course", "", "academic year, e.g. 2025-2026")
	_ = cmd.MarkFlagRequired("course")
	return cmd
}
