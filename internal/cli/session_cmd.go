package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/nicocardiel/repdoc/internal/cli/formatter"
	"github.com/nicocardiel/repdoc/internal/domain"
	"github.com/nicocardiel/repdoc/internal/service"
	"github.com/spf13/cobra"
)

// sessionFlags are shared by every command that opens a course workbook.
type sessionFlags struct {
	course string
	ledger string
}

func (f *sessionFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.course, "course", "", "academic year, e.g. 2025-2026")
	cmd.Flags().StringVar(&f.ledger, "bitacora", "", "ledger workbook to resume from (replaces the stored ledger)")
	_ = cmd.MarkFlagRequired("course")
}

func registerPublishFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("web", false, "upload the reports after every change")
	cmd.Flags().Float64("warning-collaborators", 0, "warn once when reserved credits drop to this amount")
}

// openSession opens the workbook through the session service. Read-only
// sessions are not recorded in the execution history.
func (app *App) openSession(ctx context.Context, workbook string, f sessionFlags, readOnly, publish bool) (service.AssignmentService, error) {
	sessions, err := app.sessions()
	if err != nil {
		return nil, err
	}
	if publish && app.interactive() {
		stop := formatter.StartSpinner(os.Stderr, "Generando informes")
		defer stop()
	}

	return sessions.Open(ctx, service.OpenRequest{
		WorkbookPath: workbook,
		Course:       f.course,
		LedgerPath:   f.ledger,
		Command:      app.commandLine(),
		Host:         app.hostname(),
		ReadOnly:     readOnly,
		Publish:      publish,
	})
}

func newSessionCmd(app *App) *cobra.Command {
	var flags sessionFlags

	cmd := &cobra.Command{
		Use:   "session WORKBOOK",
		Short: "Assign subjects interactively",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !app.interactive() {
				return fmt.Errorf("session needs an interactive terminal; use select, remove or finish instead")
			}
			svc, err := app.openSession(cmd.Context(), args[0], flags, false, true)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if app.debug {
				printTables(out, svc)
			}

			newPrompter := app.NewPrompter
			if newPrompter == nil {
				newPrompter = newHuhPrompter
			}
			loop := &sessionLoop{
				svc:      svc,
				prompter: newPrompter(app.cfg.UI.Theme),
				out:      out,
			}
			return loop.run(cmd.Context())
		},
	}

	flags.register(cmd)
	registerPublishFlags(cmd)
	cmd.Flags().String("theme", "", "form theme: repdoc, base, charm, dracula, catppuccin, base16")
	return cmd
}

// sessionLoop drives the interactive assignment: choose an applicant, then
// select, remove or toggle until the user leaves.
type sessionLoop struct {
	svc      service.AssignmentService
	prompter sessionPrompter
	out      io.Writer
	settings sessionSettings
}

func (l *sessionLoop) run(ctx context.Context) error {
	sum := l.svc.Summary()
	fmt.Fprintln(l.out, formatter.Header("Curso "+sum.Course))
	fmt.Fprint(l.out, formatter.FormatDegrees(sum.Degrees, sum.Totals))

	l.settings.Round = 1
	if err := l.prompter.Settings(&l.settings); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return nil
		}
		return err
	}

	for {
		applicants, err := l.svc.EligibleApplicants(l.settings.Round)
		if err != nil {
			return err
		}
		applicants = l.filter(applicants)

		choice, err := l.prompter.Applicant(applicants, l.settings.Round)
		if err != nil && !errors.Is(err, huh.ErrUserAborted) {
			return err
		}
		if err != nil || choice == menuExit {
			leave, err := l.prompter.Confirm("¿Realmente quiere salir?", nil, true)
			if err != nil && !errors.Is(err, huh.ErrUserAborted) {
				return err
			}
			if leave || err != nil {
				fmt.Fprintln(l.out, formatter.Dim("Fin de la sesión"))
				return nil
			}
			continue
		}
		if choice == menuSettings {
			if err := l.prompter.Settings(&l.settings); err != nil && !errors.Is(err, huh.ErrUserAborted) {
				return err
			}
			continue
		}

		if err := l.applicantMenu(ctx, choice); err != nil {
			return err
		}
	}
}

func (l *sessionLoop) filter(applicants []domain.Applicant) []domain.Applicant {
	out := applicants[:0]
	for _, a := range applicants {
		if l.settings.ExcludeProtected && a.IsProtected() {
			continue
		}
		if l.settings.ExcludeCollaborators && a.IsCollaborator() {
			continue
		}
		out = append(out, a)
	}
	return out
}

// applicantMenu shows the applicant card and runs actions until the user
// goes back. Only prompter failures end the session.
func (l *sessionLoop) applicantMenu(ctx context.Context, applicantID string) error {
	for {
		detail, err := l.svc.ApplicantDetail(applicantID)
		if err != nil {
			return err
		}
		fmt.Fprintln(l.out, formatter.FormatApplicant(&detail.Applicant, detail.Selections))

		action, err := l.prompter.Action(&detail.Applicant, len(detail.Selections) > 0)
		if errors.Is(err, huh.ErrUserAborted) {
			return nil
		}
		if err != nil {
			return err
		}

		switch action {
		case actionSelect:
			err = l.selectSubject(ctx, &detail.Applicant)
		case actionRemove:
			err = l.removeSelection(ctx, detail.Selections)
		case actionToggle:
			l.report(l.svc.ToggleFinished(ctx, applicantID, l.settings.Round))
		default:
			return nil
		}
		if errors.Is(err, huh.ErrUserAborted) {
			continue
		}
		if err != nil {
			return err
		}
	}
}

func (l *sessionLoop) selectSubject(ctx context.Context, a *domain.Applicant) error {
	degrees := l.svc.AvailableDegrees()
	if len(degrees) == 0 {
		fmt.Fprintln(l.out, formatter.StyleYellow.Render("No quedan créditos disponibles"))
		return nil
	}
	degreeID, err := l.prompter.Degree(degrees)
	if err != nil || degreeID == "" {
		return err
	}

	subjects := l.svc.AvailableSubjects(degreeID, l.settings.ExcludeReserved)
	if len(subjects) == 0 {
		fmt.Fprintln(l.out, formatter.StyleYellow.Render("No quedan asignaturas disponibles en esta titulación"))
		return nil
	}
	subjectID, err := l.prompter.Subject(subjects)
	if err != nil || subjectID == "" {
		return err
	}
	var sub *domain.Subject
	for i := range subjects {
		if subjects[i].ID == subjectID {
			sub = &subjects[i]
		}
	}
	if sub == nil {
		return fmt.Errorf("subject %s: %w", subjectID, domain.ErrNotFound)
	}

	choice, err := l.prompter.Credits(sub)
	if err != nil {
		return err
	}
	explanation, err := l.prompter.Explanation()
	if err != nil {
		return err
	}

	warnings, err := l.svc.Check(a.ID, sub.ID, l.settings.Round)
	if err != nil {
		return err
	}
	credits := sub.AvailableCredits
	if !choice.Whole {
		credits = choice.Credits
	}
	title := fmt.Sprintf("¿%s elige %s créditos de %s?", a.FullName(), formatter.Credits(credits), sub.Name)
	ok, err := l.prompter.Confirm(title, warningMessages(warnings), true)
	if err != nil || !ok {
		return err
	}

	res, err := l.svc.Select(ctx, service.SelectRequest{
		ApplicantID: a.ID,
		SubjectID:   sub.ID,
		Whole:       choice.Whole,
		Credits:     choice.Credits,
		Explanation: explanation,
		Round:       l.settings.Round,
	})
	if res != nil {
		// Round and seniority warnings were shown before confirming.
		res.Warnings = onlyKind(res.Warnings, service.WarningReservedLimit)
	}
	l.report(res, err)
	return nil
}

func (l *sessionLoop) removeSelection(ctx context.Context, selections []domain.LedgerEntry) error {
	entryID, err := l.prompter.Selection(selections)
	if err != nil || entryID == "" {
		return err
	}
	ok, err := l.prompter.Confirm("¿Seguro que quiere eliminar esta selección?", nil, false)
	if err != nil || !ok {
		return err
	}
	l.report(l.svc.Remove(ctx, entryID, l.settings.Round))
	return nil
}

// report prints the outcome of a mutation. Rejected changes are shown and
// the loop goes on.
func (l *sessionLoop) report(res *service.Result, err error) {
	if err != nil {
		fmt.Fprintln(l.out, formatter.StyleRed.Render("✖ "+err.Error()))
		return
	}
	fmt.Fprintln(l.out, formatter.FormatEntry(&res.Entry))
	fmt.Fprint(l.out, formatter.FormatWarnings(warningMessages(res.Warnings)))
	if res.PublishErr != nil {
		fmt.Fprintln(l.out, formatter.StyleRed.Render("No se han podido publicar los informes: "+res.PublishErr.Error()))
	}
}

func warningMessages(warnings []service.Warning) []string {
	out := make([]string, 0, len(warnings))
	for _, w := range warnings {
		out = append(out, w.Message)
	}
	return out
}

func onlyKind(warnings []service.Warning, kind service.WarningKind) []service.Warning {
	var out []service.Warning
	for _, w := range warnings {
		if w.Kind == kind {
			out = append(out, w)
		}
	}
	return out
}

// printTables dumps what the workbook loaded, for --debug.
func printTables(w io.Writer, svc service.AssignmentService) {
	sum := svc.Summary()
	fmt.Fprintln(w, formatter.Header("Titulaciones"))
	fmt.Fprint(w, formatter.FormatDegrees(sum.Degrees, sum.Totals))
	for _, d := range sum.Degrees {
		fmt.Fprintln(w, formatter.Header(d.Name))
		fmt.Fprint(w, formatter.FormatSubjects(svc.AvailableSubjects(d.ID, false)))
	}
	if all, err := svc.EligibleApplicants(0); err == nil {
		fmt.Fprintln(w, formatter.Header("Profesores"))
		fmt.Fprint(w, formatter.FormatApplicants(all, 0))
	}
}
