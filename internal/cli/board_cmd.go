package cli

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

func newBoardCmd(app *App) *cobra.Command {
	var flags sessionFlags
	var round int

	cmd := &cobra.Command{
		Use:   "board WORKBOOK",
		Short: "Show the assignment board (read-only)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := app.openSession(cmd.Context(), args[0], flags, true, false)
			if err != nil {
				return err
			}
			model := newBoardModel(svc, round)

			if !app.interactive() {
				printTables(cmd.OutOrStdout(), svc)
				return nil
			}

			p := tea.NewProgram(model,
				tea.WithContext(cmd.Context()),
				tea.WithInput(app.stdin()),
				tea.WithOutput(cmd.OutOrStdout()),
				tea.WithAltScreen(),
			)
			if _, err := p.Run(); err != nil {
				return fmt.Errorf("board: %w", err)
			}
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().IntVar(&round, "round", 1, "round used to shade the roster")
	return cmd
}
