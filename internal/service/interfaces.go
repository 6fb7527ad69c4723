package service

import (
	"context"

	"github.com/nicocardiel/repdoc/internal/domain"
	"github.com/nicocardiel/repdoc/internal/ledger"
)

type SessionService interface {
	Open(ctx context.Context, req OpenRequest) (AssignmentService, error)
	History(ctx context.Context, course string) ([]*domain.Execution, error)
}

type AssignmentService interface {
	Course() string
	Writable() error

	Select(ctx context.Context, req SelectRequest) (*Result, error)
	Remove(ctx context.Context, entryID string, round int) (*Result, error)
	ToggleFinished(ctx context.Context, applicantID string, round int) (*Result, error)
	Publish(ctx context.Context, round int) error

	Check(applicantID, subjectID string, round int) ([]Warning, error)
	Summary() Summary
	EligibleApplicants(round int) ([]domain.Applicant, error)
	ApplicantDetail(id string) (*ApplicantDetail, error)
	AvailableDegrees() []domain.Degree
	AvailableSubjects(degreeID string, excludeReserved bool) []domain.Subject
	Entries() []domain.LedgerEntry
}

type Publisher interface {
	Publish(ctx context.Context, req PublishRequest) error
}

// Syncer uploads generated files for a course.
type Syncer interface {
	Sync(ctx context.Context, course string, files []string) error
}

type PublishRequest struct {
	Board    *ledger.Board
	Round    int
	Workbook string
}
