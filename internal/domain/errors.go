package domain

import "errors"

var (
	ErrNotFound            = errors.New("not found")
	ErrDuplicateID         = errors.New("duplicate identifier")
	ErrInsufficientCredits = errors.New("insufficient available credits")
	ErrCreditOverflow      = errors.New("available credits would exceed initial credits")
	ErrAlreadyRemoved      = errors.New("ledger entry already removed")
	ErrApplicantFinished   = errors.New("applicant has finished selecting")
	ErrInvalidRound        = errors.New("invalid round")
	ErrInvalidCredits      = errors.New("invalid credit amount")

	// ErrAdministrativeEntry is returned when a finish/reactivate entry is
	// used where a subject selection is expected.
	ErrAdministrativeEntry = errors.New("administrative ledger entry")

	// ErrCourseBlocked is returned for mutations on a closed academic year.
	ErrCourseBlocked = errors.New("course is blocked, no changes allowed")
	ErrUnknownCourse = errors.New("unknown course")

	// ErrReplay wraps any failure while rebuilding balances from the ledger.
	ErrReplay = errors.New("ledger replay failed")
)
