package ledger

import (
	"fmt"

	"github.com/nicocardiel/repdoc/internal/domain"
)

// Totals aggregates credits over all degrees.
type Totals struct {
	Initial   float64
	Chosen    float64
	Available float64
	Reserved  float64

	Quota    float64
	Assigned float64
}

func (b *Board) Degrees() []*domain.Degree {
	return b.degrees
}

func (b *Board) Degree(id string) (*domain.Degree, error) {
	d, ok := b.degreeByID[id]
	if !ok {
		return nil, fmt.Errorf("degree %s: %w", id, domain.ErrNotFound)
	}
	return d, nil
}

// Subjects returns the subjects of a degree in workbook order.
func (b *Board) Subjects(degreeID string) []*domain.Subject {
	return b.subjects[degreeID]
}

func (b *Board) Subject(id string) (*domain.Subject, error) {
	s, ok := b.subjectByID[id]
	if !ok {
		return nil, fmt.Errorf("subject %s: %w", id, domain.ErrNotFound)
	}
	return s, nil
}

func (b *Board) Applicants() []*domain.Applicant {
	return b.applicants
}

func (b *Board) Applicant(id string) (*domain.Applicant, error) {
	a, ok := b.applicantByID[id]
	if !ok {
		return nil, fmt.Errorf("applicant %s: %w", id, domain.ErrNotFound)
	}
	return a, nil
}

// Entries returns every ledger entry in the order it was recorded.
func (b *Board) Entries() []*domain.LedgerEntry {
	return b.entries
}

func (b *Board) Entry(id string) (*domain.LedgerEntry, error) {
	e, ok := b.entryByID[id]
	if !ok {
		return nil, fmt.Errorf("ledger entry %s: %w", id, domain.ErrNotFound)
	}
	return e, nil
}

// ActiveEntriesFor returns the selections currently held by an applicant.
func (b *Board) ActiveEntriesFor(applicantID string) []*domain.LedgerEntry {
	var out []*domain.LedgerEntry
	for _, e := range b.entries {
		if e.ApplicantID == applicantID && e.Active() {
			out = append(out, e)
		}
	}
	return out
}

// ActiveEntriesForSubject returns the selections currently drawing on a subject.
func (b *Board) ActiveEntriesForSubject(subjectID string) []*domain.LedgerEntry {
	var out []*domain.LedgerEntry
	for _, e := range b.entries {
		if e.SubjectID == subjectID && e.Active() {
			out = append(out, e)
		}
	}
	return out
}

// AvailableDegrees returns the degrees with credits left.
func (b *Board) AvailableDegrees() []*domain.Degree {
	var out []*domain.Degree
	for _, d := range b.degrees {
		if d.HasAvailable() {
			out = append(out, d)
		}
	}
	return out
}

// AvailableSubjects returns the subjects of a degree with credits left.
// With excludeReserved, subjects kept for becario/colaborador applicants are
// left out.
func (b *Board) AvailableSubjects(degreeID string, excludeReserved bool) []*domain.Subject {
	var out []*domain.Subject
	for _, s := range b.subjects[degreeID] {
		if !s.HasAvailable() {
			continue
		}
		if excludeReserved && s.Reserved {
			continue
		}
		out = append(out, s)
	}
	return out
}

// EligibleApplicants lists who may select during round r, in roster order.
func (b *Board) EligibleApplicants(r int) []*domain.Applicant {
	var out []*domain.Applicant
	for _, a := range b.applicants {
		if a.EligibleIn(r) {
			out = append(out, a)
		}
	}
	return out
}

func (b *Board) Totals() Totals {
	var t Totals
	for _, d := range b.degrees {
		t.Initial += d.InitialCredits
		t.Chosen += d.ChosenCredits
		t.Available += d.AvailableCredits
		t.Reserved += d.ReservedCredits
	}
	for _, a := range b.applicants {
		t.Quota += a.Quota
		t.Assigned += a.Assigned
	}
	return t
}
