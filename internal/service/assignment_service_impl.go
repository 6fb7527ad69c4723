package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/nicocardiel/repdoc/internal/db"
	"github.com/nicocardiel/repdoc/internal/domain"
	"github.com/nicocardiel/repdoc/internal/ledger"
	"github.com/nicocardiel/repdoc/internal/repository"
)

// assignmentService owns the board of one open session. Every mutation is
// applied to the board, persisted in a transaction (undone on the board if
// the transaction fails) and then published.
type assignmentService struct {
	mu sync.Mutex

	board    *ledger.Board
	workbook string
	blocked  bool
	readOnly bool

	// reservedLimit is cleared once the reserved-credit warning has fired.
	reservedLimit float64

	uow       db.UnitOfWork
	publisher Publisher
	observer  UseCaseObserver
	now       func() time.Time
}

func (s *assignmentService) Course() string {
	return s.board.Course()
}

// Writable reports why the session refuses changes, if it does.
func (s *assignmentService) Writable() error {
	if s.blocked {
		return fmt.Errorf("course %s: %w", s.board.Course(), domain.ErrCourseBlocked)
	}
	if s.readOnly {
		return ErrReadOnly
	}
	return nil
}

func (s *assignmentService) Select(ctx context.Context, req SelectRequest) (res *Result, err error) {
	startedAt := time.Now()
	fields := map[string]any{
		"applicant": req.ApplicantID,
		"subject":   req.SubjectID,
		"round":     req.Round,
	}
	defer observe(ctx, s.observer, "select", s.board.Course(), startedAt, fields, &err)

	if err = s.Writable(); err != nil {
		return nil, err
	}
	if err = domain.ValidateRound(req.Round); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	a, err := s.board.Applicant(req.ApplicantID)
	if err != nil {
		return nil, err
	}
	if a.Finished {
		return nil, fmt.Errorf("%s: %w", a.FullName(), domain.ErrApplicantFinished)
	}
	sub, err := s.board.Subject(req.SubjectID)
	if err != nil {
		return nil, err
	}
	if !sub.HasAvailable() {
		return nil, fmt.Errorf("subject %s: %w", sub.ID, domain.ErrInsufficientCredits)
	}

	credits := sub.AvailableCredits
	if !req.Whole {
		if !(req.Credits > 0 && req.Credits < sub.AvailableCredits) {
			return nil, fmt.Errorf("%.4f must be greater than 0 and less than %.4f: %w",
				req.Credits, sub.AvailableCredits, domain.ErrInvalidCredits)
		}
		credits = req.Credits
	}
	fields["credits"] = credits

	warnings := s.checkLocked(a, sub, req.Round)

	entry := domain.NewSelectionEntry(s.board.NewID(), a, sub, credits, req.Explanation, s.now(), req.Round)
	if err = s.board.Apply(entry); err != nil {
		return nil, err
	}
	if err = s.persist(ctx, func(ctx context.Context, ledgers repository.LedgerRepo) error {
		return ledgers.Append(ctx, s.board.Course(), entry)
	}); err != nil {
		if dErr := s.board.Discard(entry.ID); dErr != nil {
			err = fmt.Errorf("%w (board not restored: %v)", err, dErr)
		}
		return nil, err
	}
	fields["entry"] = entry.ID

	if w, ok := s.reservedLimitReached(); ok {
		warnings = append(warnings, w)
	}
	return s.resultLocked(ctx, entry, a, warnings, req.Round), nil
}

func (s *assignmentService) Remove(ctx context.Context, entryID string, round int) (res *Result, err error) {
	startedAt := time.Now()
	fields := map[string]any{"entry": entryID, "round": round}
	defer observe(ctx, s.observer, "remove", s.board.Course(), startedAt, fields, &err)

	if err = s.Writable(); err != nil {
		return nil, err
	}
	if err = domain.ValidateRound(round); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entry, err := s.board.Revert(entryID, s.now(), round)
	if err != nil {
		return nil, err
	}
	if err = s.persist(ctx, func(ctx context.Context, ledgers repository.LedgerRepo) error {
		return ledgers.MarkRemoved(ctx, entry.ID, *entry.RemovedAt, *entry.RoundRemoved)
	}); err != nil {
		if rErr := s.board.Restore(entry.ID); rErr != nil {
			err = fmt.Errorf("%w (board not restored: %v)", err, rErr)
		}
		return nil, err
	}
	fields["credits"] = entry.Credits

	a, err := s.board.Applicant(entry.ApplicantID)
	if err != nil {
		return nil, err
	}
	return s.resultLocked(ctx, entry, a, nil, round), nil
}

func (s *assignmentService) ToggleFinished(ctx context.Context, applicantID string, round int) (res *Result, err error) {
	startedAt := time.Now()
	fields := map[string]any{"applicant": applicantID, "round": round}
	defer observe(ctx, s.observer, "toggle-finished", s.board.Course(), startedAt, fields, &err)

	if err = s.Writable(); err != nil {
		return nil, err
	}
	if err = domain.ValidateRound(round); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	a, err := s.board.Applicant(applicantID)
	if err != nil {
		return nil, err
	}
	entry := domain.NewFinishedEntry(s.board.NewID(), a, !a.Finished, s.now(), round)
	if err = s.board.Apply(entry); err != nil {
		return nil, err
	}
	if err = s.persist(ctx, func(ctx context.Context, ledgers repository.LedgerRepo) error {
		return ledgers.Append(ctx, s.board.Course(), entry)
	}); err != nil {
		if dErr := s.board.Discard(entry.ID); dErr != nil {
			err = fmt.Errorf("%w (board not restored: %v)", err, dErr)
		}
		return nil, err
	}
	fields["finished"] = a.Finished
	return s.resultLocked(ctx, entry, a, nil, round), nil
}

// Publish regenerates the reports for round without changing anything.
func (s *assignmentService) Publish(ctx context.Context, round int) (err error) {
	startedAt := time.Now()
	fields := map[string]any{"round": round}
	defer observe(ctx, s.observer, "publish", s.board.Course(), startedAt, fields, &err)

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.publishLocked(ctx, round)
}

// Check returns the warnings a selection of subjectID by applicantID would
// raise in round, before anything is recorded.
func (s *assignmentService) Check(applicantID, subjectID string, round int) ([]Warning, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, err := s.board.Applicant(applicantID)
	if err != nil {
		return nil, err
	}
	sub, err := s.board.Subject(subjectID)
	if err != nil {
		return nil, err
	}
	return s.checkLocked(a, sub, round), nil
}

func (s *assignmentService) checkLocked(a *domain.Applicant, sub *domain.Subject, round int) []Warning {
	var warnings []Warning
	if a.BeyondRound(round) {
		warnings = append(warnings, roundWarning(a, round))
	}
	if sub.SeniorityWarning() {
		warnings = append(warnings, seniorityWarning(sub))
	}
	return warnings
}

func (s *assignmentService) reservedLimitReached() (Warning, bool) {
	if s.reservedLimit <= 0 {
		return Warning{}, false
	}
	reserved := s.board.Totals().Reserved
	if reserved > s.reservedLimit {
		return Warning{}, false
	}
	s.reservedLimit = 0
	return reservedLimitWarning(reserved), true
}

func (s *assignmentService) persist(ctx context.Context, fn func(ctx context.Context, ledgers repository.LedgerRepo) error) error {
	return s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		return fn(ctx, repository.NewSQLiteLedgerRepo(tx))
	})
}

func (s *assignmentService) resultLocked(ctx context.Context, entry *domain.LedgerEntry, a *domain.Applicant, warnings []Warning, round int) *Result {
	return &Result{
		Entry:      *entry,
		Applicant:  *a,
		Warnings:   warnings,
		PublishErr: s.publishLocked(ctx, round),
	}
}

func (s *assignmentService) publishLocked(ctx context.Context, round int) error {
	if s.publisher == nil {
		return nil
	}
	return s.publisher.Publish(ctx, PublishRequest{
		Board:    s.board,
		Round:    round,
		Workbook: s.workbook,
	})
}
