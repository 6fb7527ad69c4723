package testutil

import (
	"time"

	"github.com/google/uuid"
	"github.com/nicocardiel/repdoc/internal/domain"
)

// FixedTime is the clock used by fixtures and service tests.
var FixedTime = time.Date(2025, 6, 2, 9, 30, 0, 0, time.UTC)

type EntryOption func(*domain.LedgerEntry)

func WithEntryID(id string) EntryOption {
	return func(e *domain.LedgerEntry) {
		e.ID = id
	}
}

func WithRoundAdded(r int) EntryOption {
	return func(e *domain.LedgerEntry) {
		e.RoundAdded = r
	}
}

func WithRemoved(at time.Time, round int) EntryOption {
	return func(e *domain.LedgerEntry) {
		e.RemovedAt = &at
		e.RoundRemoved = &round
	}
}

func WithExplanation(s string) EntryOption {
	return func(e *domain.LedgerEntry) {
		e.Explanation = s
	}
}

func WithAddedAt(at time.Time) EntryOption {
	return func(e *domain.LedgerEntry) {
		e.AddedAt = at
	}
}

// NewTestEntry builds a selection entry against the default workbook:
// applicant prof-ana taking credits from asig-mec in titu-fis.
func NewTestEntry(credits float64, opts ...EntryOption) *domain.LedgerEntry {
	e := &domain.LedgerEntry{
		ID:             uuid.New().String(),
		ApplicantID:    "prof-ana",
		DegreeID:       "titu-fis",
		SubjectID:      "asig-mec",
		AddedAt:        FixedTime,
		RoundAdded:     1,
		Credits:        credits,
		Surname:        "Ruiz",
		GivenName:      "Ana",
		Category:       "CU",
		CourseYear:     "1",
		Semester:       "1",
		Code:           "800490",
		SubjectName:    "Mecánica",
		Area:           "FTA",
		InitialCredits: 6,
		Group:          "A",
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// NewTestFinishedEntry builds the administrative entry closing (or, with
// finished false, reopening) prof-ana's participation.
func NewTestFinishedEntry(finished bool, opts ...EntryOption) *domain.LedgerEntry {
	a := &domain.Applicant{ID: "prof-ana", Surname: "Ruiz", GivenName: "Ana", Category: "CU"}
	e := domain.NewFinishedEntry(uuid.New().String(), a, finished, FixedTime, 1)
	for _, opt := range opts {
		opt(e)
	}
	return e
}
