package service

import (
	"fmt"

	"github.com/nicocardiel/repdoc/internal/domain"
	"github.com/nicocardiel/repdoc/internal/ledger"
)

type OpenRequest struct {
	WorkbookPath string
	Course       string
	// LedgerPath, when set, replaces the stored ledger with the workbook's.
	LedgerPath string
	// Command is the full command line, kept in the execution history.
	Command string
	Host    string
	// ReadOnly sessions can be opened on blocked courses and record nothing.
	ReadOnly bool
	Publish  bool
}

type SelectRequest struct {
	ApplicantID string
	SubjectID   string
	// Whole takes every credit still available; Credits is ignored.
	Whole       bool
	Credits     float64
	Explanation string
	Round       int
}

type WarningKind string

const (
	WarningReservedLimit WarningKind = "reserved_limit"
	WarningRoundExceeded WarningKind = "round_exceeded"
	WarningSeniority     WarningKind = "seniority"
)

type Warning struct {
	Kind    WarningKind
	Message string
}

func roundWarning(a *domain.Applicant, current int) Warning {
	return Warning{
		Kind:    WarningRoundExceeded,
		Message: fmt.Sprintf("Se ha superado la ronda actual (%s: ronda %d, actual %d)", a.FullName(), a.Round, current),
	}
}

func seniorityWarning(s *domain.Subject) Warning {
	return Warning{
		Kind:    WarningSeniority,
		Message: fmt.Sprintf("Antigüedad: %s cursos. Profesor/a anterior: %s", s.Seniority, s.PreviousHolder),
	}
}

func reservedLimitWarning(available float64) Warning {
	return Warning{
		Kind:    WarningReservedLimit,
		Message: fmt.Sprintf("Se ha alcanzado el límite de créditos prereservados para PIF (%.2f disponibles)", available),
	}
}

// Result is returned by every mutation. PublishErr reports a failure to
// regenerate or upload the reports after the change was committed.
type Result struct {
	Entry      domain.LedgerEntry
	Applicant  domain.Applicant
	Warnings   []Warning
	PublishErr error
}

type Summary struct {
	Course        string
	Blocked       bool
	Degrees       []domain.Degree
	Totals        ledger.Totals
	Applicants    int
	Entries       int
	ActiveEntries int
}

type ApplicantDetail struct {
	Applicant  domain.Applicant
	Selections []domain.LedgerEntry
}
