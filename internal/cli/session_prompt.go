package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/nicocardiel/repdoc/internal/cli/formatter"
	"github.com/nicocardiel/repdoc/internal/domain"
)

// Menu entries that are not applicant IDs.
const (
	menuExit     = ":exit"
	menuSettings = ":settings"
)

type sessionAction string

const (
	actionSelect sessionAction = "select"
	actionRemove sessionAction = "remove"
	actionToggle sessionAction = "toggle"
	actionBack   sessionAction = "back"
)

// sessionSettings are the filters of the interactive loop.
type sessionSettings struct {
	Round                int
	ExcludeReserved      bool
	ExcludeProtected     bool
	ExcludeCollaborators bool
}

type creditChoice struct {
	Whole   bool
	Credits float64
}

// sessionPrompter asks the questions of the interactive loop. Degree,
// Subject and Selection return "" to go back.
type sessionPrompter interface {
	Settings(s *sessionSettings) error
	Applicant(applicants []domain.Applicant, round int) (string, error)
	Action(a *domain.Applicant, hasSelections bool) (sessionAction, error)
	Degree(degrees []domain.Degree) (string, error)
	Subject(subjects []domain.Subject) (string, error)
	Credits(sub *domain.Subject) (creditChoice, error)
	Explanation() (string, error)
	Confirm(title string, warnings []string, defaultYes bool) (bool, error)
	Selection(entries []domain.LedgerEntry) (string, error)
}

type huhPrompter struct {
	theme *huh.Theme
}

func newHuhPrompter(theme string) sessionPrompter {
	return &huhPrompter{theme: huhTheme(theme)}
}

func (p *huhPrompter) Settings(s *sessionSettings) error {
	round := strconv.Itoa(s.Round)
	form := huh.NewForm(
		huh.NewGroup(
			roundInput(&round),
			huh.NewConfirm().
				Title("¿Excluir asignaturas prereservadas para becarios/colaboradores?").
				Affirmative("Sí").Negative("No").
				Value(&s.ExcludeReserved),
			huh.NewConfirm().
				Title("¿Excluir profesores RyC/JdC?").
				Affirmative("Sí").Negative("No").
				Value(&s.ExcludeProtected),
			huh.NewConfirm().
				Title("¿Excluir colaboradores?").
				Affirmative("Sí").Negative("No").
				Value(&s.ExcludeCollaborators),
		),
	).WithTheme(p.theme).WithShowHelp(false)
	if err := form.Run(); err != nil {
		return err
	}
	r, err := strconv.Atoi(strings.TrimSpace(round))
	if err != nil {
		return err
	}
	s.Round = r
	return nil
}

func (p *huhPrompter) Applicant(applicants []domain.Applicant, round int) (string, error) {
	options := make([]huh.Option[string], 0, len(applicants)+2)
	for i := range applicants {
		a := &applicants[i]
		label := fmt.Sprintf("%3d. %-36s %-14s asignados %s / %s",
			a.Num, a.FullName(), a.Category, formatter.Credits(a.Assigned), formatter.Credits(a.Quota))
		options = append(options, huh.NewOption(label, a.ID))
	}
	options = append(options,
		huh.NewOption("Cambiar ronda y filtros", menuSettings),
		huh.NewOption("Salir", menuExit),
	)

	var choice string
	title := fmt.Sprintf("Profesor/a (ronda %d)", round)
	if err := selectForm(p.theme, title, options, &choice).Run(); err != nil {
		return "", err
	}
	return choice, nil
}

func (p *huhPrompter) Action(a *domain.Applicant, hasSelections bool) (sessionAction, error) {
	options := []huh.Option[string]{}
	if !a.Finished {
		options = append(options, huh.NewOption("Elegir asignatura", string(actionSelect)))
	}
	if hasSelections {
		options = append(options, huh.NewOption("Eliminar una selección", string(actionRemove)))
	}
	toggle := "Finalizar elección en rondas"
	if a.Finished {
		toggle = "Activar elección en rondas"
	}
	options = append(options,
		huh.NewOption(toggle, string(actionToggle)),
		huh.NewOption("Volver", string(actionBack)),
	)

	var choice string
	if err := selectForm(p.theme, a.FullName(), options, &choice).Run(); err != nil {
		return "", err
	}
	return sessionAction(choice), nil
}

func (p *huhPrompter) Degree(degrees []domain.Degree) (string, error) {
	options := make([]huh.Option[string], 0, len(degrees)+1)
	for _, d := range degrees {
		label := fmt.Sprintf("%-50s disponibles %s", d.Name, formatter.Credits(d.AvailableCredits))
		options = append(options, huh.NewOption(label, d.ID))
	}
	options = append(options, huh.NewOption("Volver", ""))

	var choice string
	if err := selectForm(p.theme, "Titulación", options, &choice).Run(); err != nil {
		return "", err
	}
	return choice, nil
}

func (p *huhPrompter) Subject(subjects []domain.Subject) (string, error) {
	options := make([]huh.Option[string], 0, len(subjects)+1)
	for _, s := range subjects {
		label := fmt.Sprintf("%s-%s %-8s %-40s %-4s %s",
			s.CourseYear, s.Semester, s.Code, s.Name, s.Group, formatter.Credits(s.AvailableCredits))
		if s.Reserved {
			label += " (bec./col.)"
		}
		options = append(options, huh.NewOption(label, s.ID))
	}
	options = append(options, huh.NewOption("Volver", ""))

	var choice string
	if err := selectForm(p.theme, "Asignatura", options, &choice).Run(); err != nil {
		return "", err
	}
	return choice, nil
}

func (p *huhPrompter) Credits(sub *domain.Subject) (creditChoice, error) {
	whole := true
	amount := ""
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("¿Elegir los %s créditos disponibles?", formatter.Credits(sub.AvailableCredits))).
				Affirmative("Todos").
				Negative("Parte").
				Value(&whole),
		),
		huh.NewGroup(
			creditsInput(sub.AvailableCredits, &amount),
		).WithHideFunc(func() bool { return whole }),
	).WithTheme(p.theme).WithShowHelp(false)
	if err := form.Run(); err != nil {
		return creditChoice{}, err
	}
	if whole {
		return creditChoice{Whole: true}, nil
	}
	v, err := parseCredits(amount)
	if err != nil {
		return creditChoice{}, err
	}
	return creditChoice{Credits: v}, nil
}

func (p *huhPrompter) Explanation() (string, error) {
	var text string
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Explicación (opcional)").
				CharLimit(200).
				Value(&text),
		),
	).WithTheme(p.theme).WithShowHelp(false)
	if err := form.Run(); err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

func (p *huhPrompter) Confirm(title string, warnings []string, defaultYes bool) (bool, error) {
	ok := defaultYes
	if err := confirmForm(p.theme, title, strings.Join(warnings, "\n"), &ok).Run(); err != nil {
		return false, err
	}
	return ok, nil
}

func (p *huhPrompter) Selection(entries []domain.LedgerEntry) (string, error) {
	options := make([]huh.Option[string], 0, len(entries)+1)
	for _, e := range entries {
		label := fmt.Sprintf("ronda %d  %s  %-40s %-4s %s",
			e.RoundAdded, e.Code, e.SubjectName, e.Group, formatter.Credits(e.Credits))
		options = append(options, huh.NewOption(label, e.ID))
	}
	options = append(options, huh.NewOption("Volver", ""))

	var choice string
	if err := selectForm(p.theme, "Selección a eliminar", options, &choice).Run(); err != nil {
		return "", err
	}
	return choice, nil
}
