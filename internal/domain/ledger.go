package domain

import (
	"fmt"
	"time"
)

// LedgerTimeLayout is the timestamp layout written to the ledger workbook.
const LedgerTimeLayout = "2006-01-02 15:04:05"

// LedgerEntry is one row of the bitácora. Entries are never deleted:
// a removal sets RemovedAt and RoundRemoved.
type LedgerEntry struct {
	ID          string
	ApplicantID string
	DegreeID    string
	SubjectID   string

	AddedAt      time.Time
	RoundAdded   int
	RemovedAt    *time.Time
	RoundRemoved *int

	Credits     float64
	Explanation string

	// Snapshot of the applicant at the time of the transaction.
	Surname   string
	GivenName string
	Category  string

	// Snapshot of the subject at the time of the transaction.
	CourseYear     string
	Semester       string
	Code           string
	SubjectName    string
	Area           string
	InitialCredits float64
	Comments       string
	Group          string
}

func (e *LedgerEntry) IsRemoved() bool {
	return e.RemovedAt != nil
}

func (e *LedgerEntry) IsAdministrative() bool {
	return e.SubjectID == NullID
}

// Active reports whether the entry currently moves credits.
func (e *LedgerEntry) Active() bool {
	return !e.IsRemoved() && !e.IsAdministrative()
}

// MarkRemoved records the logical removal of the entry.
func (e *LedgerEntry) MarkRemoved(at time.Time, round int) error {
	if e.IsRemoved() {
		return fmt.Errorf("ledger entry %s: %w", e.ID, ErrAlreadyRemoved)
	}
	if e.IsAdministrative() {
		return fmt.Errorf("ledger entry %s: %w", e.ID, ErrAdministrativeEntry)
	}
	e.RemovedAt = &at
	e.RoundRemoved = &round
	return nil
}

// FinishedState returns the finished flag an administrative entry sets.
func (e *LedgerEntry) FinishedState() (bool, error) {
	switch Explanation(e.Explanation) {
	case ExplanationFinished:
		return true, nil
	case ExplanationReactivated:
		return false, nil
	default:
		return false, fmt.Errorf("unexpected explanation %q in administrative entry %s", e.Explanation, e.ID)
	}
}

// NewSelectionEntry builds the ledger row for a subject selection.
func NewSelectionEntry(id string, a *Applicant, s *Subject, credits float64, explanation string, at time.Time, round int) *LedgerEntry {
	return &LedgerEntry{
		ID:             id,
		ApplicantID:    a.ID,
		DegreeID:       s.DegreeID,
		SubjectID:      s.ID,
		AddedAt:        at,
		RoundAdded:     round,
		Credits:        credits,
		Explanation:    explanation,
		Surname:        a.Surname,
		GivenName:      a.GivenName,
		Category:       a.Category,
		CourseYear:     s.CourseYear,
		Semester:       s.Semester,
		Code:           s.Code,
		SubjectName:    s.Name,
		Area:           s.Area,
		InitialCredits: s.InitialCredits,
		Comments:       s.Comments,
		Group:          s.Group,
	}
}

// NewFinishedEntry builds the administrative row that closes or reopens the
// applicant's participation.
func NewFinishedEntry(id string, a *Applicant, finished bool, at time.Time, round int) *LedgerEntry {
	explanation := ExplanationReactivated
	if finished {
		explanation = ExplanationFinished
	}
	return &LedgerEntry{
		ID:          id,
		ApplicantID: a.ID,
		DegreeID:    NullID,
		SubjectID:   NullID,
		AddedAt:     at,
		RoundAdded:  round,
		Explanation: string(explanation),
		Surname:     a.Surname,
		GivenName:   a.GivenName,
		Category:    a.Category,
		CourseYear:  "-",
		Semester:    "0",
		Code:        "0",
		SubjectName: "-",
		Area:        "-",
		Comments:    "-",
		Group:       "-",
	}
}
