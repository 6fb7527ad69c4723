package formatter

import (
	"fmt"
	"strings"
	"time"

	"github.com/nicocardiel/repdoc/internal/domain"
	"github.com/nicocardiel/repdoc/internal/ledger"
)

// FormatApplicant renders the card shown before acting on an applicant:
// quota, assigned credits, difference, next round and current selections.
func FormatApplicant(a *domain.Applicant, selections []domain.LedgerEntry) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s  %s\n\n", Bold(a.FullName()), Dim(a.Category))
	fmt.Fprintf(&b, "Encargo docente    %s\n", Credits(a.Quota))
	fmt.Fprintf(&b, "Créditos asignados %s  %s\n", Credits(a.Assigned), RenderQuotaBar(a.Assigned, a.Quota, 20))
	fmt.Fprintf(&b, "Diferencia         %s\n", Difference(a.Difference()))
	fmt.Fprintf(&b, "Siguiente ronda    %s\n", RoundLabel(a))
	fmt.Fprintf(&b, "Fin de elección    %s\n", YesNo(a.Finished))

	b.WriteString("\n")
	if len(selections) == 0 {
		b.WriteString(Dim("No tiene docencia asignada"))
	} else {
		b.WriteString(strings.TrimRight(FormatSelections(selections), "\n"))
	}
	return RenderBox(fmt.Sprintf("%d. %s", a.Num, a.FullName()), b.String())
}

// FormatSelections lists ledger entries held by one applicant.
func FormatSelections(entries []domain.LedgerEntry) string {
	headers := []string{"ID", "Ronda", "Curso", "Sem.", "Código", "Asignatura", "Grupo", "Créditos"}
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{
			TruncID(e.ID),
			fmt.Sprintf("%d", e.RoundAdded),
			e.CourseYear,
			e.Semester,
			e.Code,
			e.SubjectName,
			e.Group,
			Credits(e.Credits),
		})
	}
	return RenderTable(headers, rows, 1, 7)
}

// FormatDegrees renders the degree summary with a totals row.
func FormatDegrees(degrees []domain.Degree, totals ledger.Totals) string {
	headers := []string{"Titulación", "Iniciales", "Elegidos", "Disponibles", "Bec./Col."}
	rows := make([][]string, 0, len(degrees)+1)
	for _, d := range degrees {
		name := d.Name
		if !d.HasAvailable() {
			name = Dim(name)
		}
		rows = append(rows, []string{
			name,
			Credits(d.InitialCredits),
			Credits(d.ChosenCredits),
			Credits(d.AvailableCredits),
			Credits(d.ReservedCredits),
		})
	}
	rows = append(rows, []string{
		Bold("TOTAL"),
		Bold(Credits(totals.Initial)),
		Bold(Credits(totals.Chosen)),
		Bold(Credits(totals.Available)),
		Bold(Credits(totals.Reserved)),
	})
	return RenderTable(headers, rows, 1, 2, 3, 4)
}

// FormatApplicants renders the roster as seen in round current.
func FormatApplicants(applicants []domain.Applicant, current int) string {
	headers := []string{"#", "Profesor/a", "Categoría", "Encargo", "Asignados", "Diferencia", "%", "Ronda", "Fin"}
	rows := make([][]string, 0, len(applicants))
	for i := range applicants {
		a := &applicants[i]
		name := a.FullName()
		if current != 0 && !a.EligibleIn(current) {
			name = Dim(name)
		}
		rows = append(rows, []string{
			fmt.Sprintf("%d", a.Num),
			name,
			a.Category,
			Credits(a.Quota),
			Credits(a.Assigned),
			Difference(a.Difference()),
			Percent(a),
			RoundLabel(a),
			YesNo(a.Finished),
		})
	}
	return RenderTable(headers, rows, 0, 3, 4, 5, 6, 7)
}

// FormatSubjects renders the subjects of one degree.
func FormatSubjects(subjects []domain.Subject) string {
	headers := []string{"#", "Curso", "Sem.", "Código", "Asignatura", "Grupo", "Bec./Col.", "Disponibles", "Antigüedad"}
	rows := make([][]string, 0, len(subjects))
	for _, s := range subjects {
		reserved := ""
		if s.Reserved {
			reserved = StylePurple.Render("●")
		}
		rows = append(rows, []string{
			fmt.Sprintf("%d", s.Num),
			s.CourseYear,
			s.Semester,
			s.Code,
			s.Name,
			s.Group,
			reserved,
			Credits(s.AvailableCredits),
			s.Seniority,
		})
	}
	return RenderTable(headers, rows, 0, 7)
}

// FormatWarnings renders one line per warning message.
func FormatWarnings(messages []string) string {
	var b strings.Builder
	for _, m := range messages {
		fmt.Fprintf(&b, "%s %s\n", StyleYellow.Render("▲"), m)
	}
	return b.String()
}

// FormatEntry renders the outcome of a ledger change on one line.
func FormatEntry(e *domain.LedgerEntry) string {
	who := strings.TrimSpace(e.GivenName + " " + e.Surname)
	switch {
	case e.IsAdministrative():
		return fmt.Sprintf("%s %s: %s", StyleGreen.Render("✔"), who, e.Explanation)
	case e.IsRemoved():
		return fmt.Sprintf("%s %s devuelve %s créditos de %s %s",
			StyleYellow.Render("✖"), who, Credits(e.Credits), e.SubjectName, groupSuffix(e.Group))
	default:
		return fmt.Sprintf("%s %s elige %s créditos de %s %s",
			StyleGreen.Render("✔"), who, Credits(e.Credits), e.SubjectName, groupSuffix(e.Group))
	}
}

func groupSuffix(group string) string {
	group = strings.TrimSpace(group)
	if group == "" || group == "-" {
		return ""
	}
	return Dim("(grupo " + group + ")")
}

// FormatCourses lists the known academic years and whether they are closed.
func FormatCourses(courses []string, blocked func(string) bool) string {
	rows := make([][]string, 0, len(courses))
	for _, c := range courses {
		status := StyleGreen.Render("abierto")
		if blocked(c) {
			status = StyleRed.Render("bloqueado")
		}
		rows = append(rows, []string{c, status})
	}
	return RenderTable([]string{"Curso", "Estado"}, rows)
}

// FormatHistory lists the recorded executions of a course.
func FormatHistory(runs []*domain.Execution) string {
	rows := make([][]string, 0, len(runs))
	for _, x := range runs {
		rows = append(rows, []string{
			x.StartedAt.Format(time.DateTime),
			x.Host,
			x.Version,
			x.Command,
		})
	}
	return RenderTable([]string{"Fecha", "Máquina", "Versión", "Orden"}, rows)
}
