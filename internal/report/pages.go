package report

import (
	"fmt"
	"html/template"
	"math"
	"strings"

	"github.com/nicocardiel/repdoc/internal/catalog"
	"github.com/nicocardiel/repdoc/internal/domain"
	"github.com/nicocardiel/repdoc/internal/ledger"
)

// page is what the layout template receives. Body holds the page-specific
// view model.
type page struct {
	Title     string
	Heading   string
	Course    string
	UpdatedAt string
	Version   string
	Palette   Palette
	Body      any
}

type degreeRow struct {
	Name        string
	Link        string
	Initial     float64
	Chosen      float64
	Available   float64
	Reserved    float64
	Unavailable bool
}

type degreesBody struct {
	Notes   template.HTML
	Degrees []degreeRow
	Totals  ledger.Totals
	PDF     bool
}

type subjectRow struct {
	Num             int
	SeparatorBefore bool
	Unavailable     bool

	CourseYear     string
	Semester       string
	Code           string
	Name           string
	Area           string
	Comments       string
	Group          string
	Reserved       bool
	PreviousHolder string
	Seniority      string
	NewHolders     string
	Initial        float64
	Available      float64
}

type subjectSection struct {
	Name      string
	Subjects  []subjectRow
	Initial   float64
	Available float64
}

type subjectsBody struct {
	OnlyAvailable bool
	Sections      []subjectSection
}

type applicantRow struct {
	Num             int
	ID              string
	SeparatorBefore bool
	Greyed          bool

	Surname    string
	GivenName  string
	FullName   string
	Category   string
	Quota      float64
	Assigned   float64
	Difference float64
	DiffColor  string
	Percent    string
	Round      string
	Finished   bool
	Selections []*domain.LedgerEntry
}

type applicantsBody struct {
	Round      int
	Applicants []applicantRow
	Quota      float64
	Assigned   float64
	Difference float64
}

type resultRow struct {
	SeparatorBefore bool

	CourseYear string
	Semester   string
	Code       string
	Name       string
	Comments   string
	Group      string
	Holder     string
	Category   string
	Credits    float64
	Color      string
}

type resultSection struct {
	Name string
	Rows []resultRow
}

type resultBody struct {
	Sections []resultSection
	Total    float64
}

type ledgerRow struct {
	Num     int
	Removed bool
	Cells   []string
}

type ledgerBody struct {
	Columns []string
	Rows    []ledgerRow
}

func degreeLink(d *domain.Degree) string {
	return fmt.Sprintf("repdoc_titulacion_%02d.html", d.Num)
}

func buildDegrees(b *ledger.Board) []degreeRow {
	rows := make([]degreeRow, 0, len(b.Degrees()))
	for _, d := range b.Degrees() {
		rows = append(rows, degreeRow{
			Name:        d.Name,
			Link:        degreeLink(d),
			Initial:     d.InitialCredits,
			Chosen:      d.ChosenCredits,
			Available:   d.AvailableCredits,
			Reserved:    d.ReservedCredits,
			Unavailable: !d.HasAvailable(),
		})
	}
	return rows
}

// buildSubjects lists the subjects of d. With onlyAvailable the exhausted
// ones are skipped.
func buildSubjects(b *ledger.Board, d *domain.Degree, onlyAvailable bool) subjectSection {
	sec := subjectSection{Name: d.Name}
	prev := ""
	for _, s := range b.Subjects(d.ID) {
		if onlyAvailable && !s.HasAvailable() {
			continue
		}
		sec.Subjects = append(sec.Subjects, subjectRow{
			Num:             s.Num,
			SeparatorBefore: prev != "" && s.Name != prev,
			Unavailable:     !s.HasAvailable(),
			CourseYear:      s.CourseYear,
			Semester:        s.Semester,
			Code:            s.Code,
			Name:            s.Name,
			Area:            s.Area,
			Comments:        s.Comments,
			Group:           s.Group,
			Reserved:        s.Reserved,
			PreviousHolder:  s.PreviousHolder,
			Seniority:       s.Seniority,
			NewHolders:      s.NewHolders,
			Initial:         s.InitialCredits,
			Available:       s.AvailableCredits,
		})
		sec.Initial += s.InitialCredits
		sec.Available += s.AvailableCredits
		prev = s.Name
	}
	return sec
}

func diffColor(d float64) string {
	switch {
	case math.Abs(d) <= domain.RoundTolerance:
		return colorBalanced
	case d < 0:
		return colorShort
	default:
		return colorOver
	}
}

func roundLabel(a *domain.Applicant) string {
	switch {
	case a.Round == domain.RoundNotEligible:
		return "—"
	case a.Finished:
		return fmt.Sprintf("(%d)", a.Round)
	default:
		return fmt.Sprintf("%d", a.Round)
	}
}

// greyed reports whether the applicant row is shaded out for the current
// round: never eligible, finished, a collaborator, or waiting for a later
// round.
func greyed(a *domain.Applicant, current int) bool {
	if a.Round == domain.RoundNotEligible {
		return true
	}
	if current == 0 {
		return false
	}
	return a.Finished || a.IsCollaborator() || a.Round > current
}

func sameCategoryGroup(prev, next string) bool {
	if prev == next {
		return true
	}
	return strings.Contains(prev, "RyC") && strings.Contains(next, "RyC")
}

func buildApplicants(b *ledger.Board, current int) applicantsBody {
	body := applicantsBody{Round: current}
	var prevCategory string
	for i, a := range b.Applicants() {
		percent := "—"
		if a.Quota > 0 {
			percent = fmt.Sprintf("%.1f", a.AssignedPercent())
		}
		body.Applicants = append(body.Applicants, applicantRow{
			Num:             i + 1,
			ID:              a.ID,
			SeparatorBefore: i > 0 && !sameCategoryGroup(prevCategory, a.Category),
			Greyed:          greyed(a, current),
			Surname:         a.Surname,
			GivenName:       a.GivenName,
			FullName:        a.FullName(),
			Category:        a.Category,
			Quota:           a.Quota,
			Assigned:        a.Assigned,
			Difference:      a.Difference(),
			DiffColor:       diffColor(a.Difference()),
			Percent:         percent,
			Round:           roundLabel(a),
			Finished:        a.Finished,
			Selections:      b.ActiveEntriesFor(a.ID),
		})
		body.Quota += a.Quota
		body.Assigned += a.Assigned
		prevCategory = a.Category
	}
	body.Difference = body.Assigned - body.Quota
	return body
}

func buildResult(b *ledger.Board) resultBody {
	var body resultBody
	for _, d := range b.Degrees() {
		sec := resultSection{Name: d.Name}
		prev := ""
		for _, s := range b.Subjects(d.ID) {
			base := resultRow{
				SeparatorBefore: prev != "" && s.Name != prev,
				CourseYear:      s.CourseYear,
				Semester:        s.Semester,
				Code:            s.Code,
				Name:            s.Name,
				Comments:        s.Comments,
				Group:           s.Group,
			}
			prev = s.Name

			entries := b.ActiveEntriesForSubject(s.ID)
			if len(entries) == 0 {
				sec.Rows = append(sec.Rows, base)
				continue
			}
			for i, e := range entries {
				row := base
				if i > 0 {
					row.SeparatorBefore = false
				}
				if row.Comments == "" {
					row.Comments = e.Explanation
				}
				row.Holder = strings.TrimSpace(e.GivenName + " " + e.Surname)
				row.Category = e.Category
				row.Credits = e.Credits
				row.Color = colorBalanced
				if a, err := b.Applicant(e.ApplicantID); err == nil && a.IsCollaborator() {
					row.Color = colorCollaborator
				}
				sec.Rows = append(sec.Rows, row)
				body.Total += e.Credits
			}
		}
		body.Sections = append(body.Sections, sec)
	}
	return body
}

// buildLedger lists the ledger newest first, numbered downwards.
func buildLedger(b *ledger.Board) ledgerBody {
	entries := b.Entries()
	body := ledgerBody{Columns: catalog.LedgerColumns}
	for i := len(entries) - 1; i >= 0; i-- {
		e := entries[i]
		raw := catalog.LedgerRow(e)
		cells := make([]string, len(raw))
		for j, v := range raw {
			cells[j] = fmt.Sprint(v)
		}
		body.Rows = append(body.Rows, ledgerRow{
			Num:     i + 1,
			Removed: e.IsRemoved(),
			Cells:   cells,
		})
	}
	return body
}
