package cli

import (
	"fmt"
	"io"

	"github.com/nicocardiel/repdoc/internal/cli/formatter"
	"github.com/nicocardiel/repdoc/internal/service"
	"github.com/spf13/cobra"
)

func newSelectCmd(app *App) *cobra.Command {
	var flags sessionFlags
	var applicantID, subjectID, credits, explanation string
	var whole bool
	var round int

	cmd := &cobra.Command{
		Use:   "select WORKBOOK",
		Short: "Record one subject selection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := service.SelectRequest{
				ApplicantID: applicantID,
				SubjectID:   subjectID,
				Whole:       whole,
				Explanation: explanation,
				Round:       round,
			}
			switch {
			case whole && credits != "":
				return fmt.Errorf("--whole and --credits are mutually exclusive")
			case !whole:
				if credits == "" {
					return fmt.Errorf("either --whole or --credits is required")
				}
				v, err := parseCredits(credits)
				if err != nil {
					return fmt.Errorf("--credits: %w", err)
				}
				req.Credits = v
			}

			svc, err := app.openSession(cmd.Context(), args[0], flags, false, false)
			if err != nil {
				return err
			}
			res, err := svc.Select(cmd.Context(), req)
			if err != nil {
				return err
			}
			return printResult(cmd.OutOrStdout(), res)
		},
	}

	flags.register(cmd)
	registerPublishFlags(cmd)
	cmd.Flags().StringVar(&applicantID, "applicant", "", "applicant ID")
	cmd.Flags().StringVar(&subjectID, "subject", "", "subject ID")
	cmd.Flags().StringVar(&credits, "credits", "", "partial credits, e.g. 1,5")
	cmd.Flags().BoolVar(&whole, "whole", false, "take every credit still available")
	cmd.Flags().StringVar(&explanation, "explanation", "", "free-text explanation")
	cmd.Flags().IntVar(&round, "round", 0, "current round (0 = everybody)")
	_ = cmd.MarkFlagRequired("applicant")
	_ = cmd.MarkFlagRequired("subject")
	return cmd
}

func newRemoveCmd(app *App) *cobra.Command {
	var flags sessionFlags
	var entryID string
	var round int
	var yes bool

	cmd := &cobra.Command{
		Use:   "remove WORKBOOK",
		Short: "Undo one selection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := app.openSession(cmd.Context(), args[0], flags, false, false)
			if err != nil {
				return err
			}
			if !yes && !promptYesNoIO(app.stdin(), cmd.OutOrStdout(), "¿Seguro que quiere eliminar esta selección? (y/n) [n] ", false) {
				fmt.Fprintln(cmd.OutOrStdout(), "Cancelado.")
				return nil
			}
			res, err := svc.Remove(cmd.Context(), entryID, round)
			if err != nil {
				return err
			}
			return printResult(cmd.OutOrStdout(), res)
		},
	}

	flags.register(cmd)
	registerPublishFlags(cmd)
	cmd.Flags().StringVar(&entryID, "entry", "", "ledger entry ID")
	cmd.Flags().IntVar(&round, "round", 0, "current round (0 = everybody)")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip confirmation")
	_ = cmd.MarkFlagRequired("entry")
	return cmd
}

func newFinishCmd(app *App) *cobra.Command {
	var flags sessionFlags
	var applicantID string
	var round int

	cmd := &cobra.Command{
		Use:   "finish WORKBOOK",
		Short: "Close or reopen an applicant's participation in the rounds",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := app.openSession(cmd.Context(), args[0], flags, false, false)
			if err != nil {
				return err
			}
			res, err := svc.ToggleFinished(cmd.Context(), applicantID, round)
			if err != nil {
				return err
			}
			return printResult(cmd.OutOrStdout(), res)
		},
	}

	flags.register(cmd)
	registerPublishFlags(cmd)
	cmd.Flags().StringVar(&applicantID, "applicant", "", "applicant ID")
	cmd.Flags().IntVar(&round, "round", 0, "current round (0 = everybody)")
	_ = cmd.MarkFlagRequired("applicant")
	return cmd
}

// printResult reports a committed change. A publishing failure makes the
// command fail even though the ledger already holds the change.
func printResult(w io.Writer, res *service.Result) error {
	fmt.Fprintln(w, formatter.FormatEntry(&res.Entry))
	fmt.Fprintf(w, "%s %s\n", formatter.Dim("id"), res.Entry.ID)
	fmt.Fprint(w, formatter.FormatWarnings(warningMessages(res.Warnings)))
	if res.PublishErr != nil {
		return fmt.Errorf("change recorded, publishing failed: %w", res.PublishErr)
	}
	return nil
}
