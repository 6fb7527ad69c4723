package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/nicocardiel/repdoc/internal/catalog"
	"github.com/nicocardiel/repdoc/internal/db"
	"github.com/nicocardiel/repdoc/internal/domain"
	"github.com/nicocardiel/repdoc/internal/ledger"
	"github.com/nicocardiel/repdoc/internal/repository"
)

type SessionOptions struct {
	OutputDir            string
	BlockedCourses       []string
	WarningCollaborators float64
	Version              string
	// Now defaults to time.Now.
	Now func() time.Time
}

type sessionService struct {
	ledgers    repository.LedgerRepo
	executions repository.ExecutionRepo
	uow        db.UnitOfWork
	publisher  Publisher
	opts       SessionOptions
	observer   UseCaseObserver
}

func NewSessionService(
	ledgers repository.LedgerRepo,
	executions repository.ExecutionRepo,
	uow db.UnitOfWork,
	publisher Publisher,
	opts SessionOptions,
	observers ...UseCaseObserver,
) SessionService {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &sessionService{
		ledgers:    ledgers,
		executions: executions,
		uow:        uow,
		publisher:  publisher,
		opts:       opts,
		observer:   useCaseObserverOrNoop(observers),
	}
}

// Open reads the workbook, rebuilds the balances from the ledger and returns
// the session's assignment service. Any inconsistency aborts the open.
func (s *sessionService) Open(ctx context.Context, req OpenRequest) (svc AssignmentService, err error) {
	startedAt := time.Now()
	fields := map[string]any{
		"workbook":  req.WorkbookPath,
		"read_only": req.ReadOnly,
	}
	defer observe(ctx, s.observer, "open-session", req.Course, startedAt, fields, &err)

	blocked := slices.Contains(s.opts.BlockedCourses, req.Course)
	if blocked && !req.ReadOnly {
		return nil, fmt.Errorf("the course %s is blocked, no changes allowed: %w", req.Course, domain.ErrCourseBlocked)
	}

	schema, err := catalog.SchemaFor(req.Course)
	if err != nil {
		return nil, err
	}
	cat, err := catalog.Load(req.WorkbookPath, schema)
	if err != nil {
		return nil, err
	}
	board, err := ledger.NewBoard(cat)
	if err != nil {
		return nil, err
	}
	fields["degrees"] = len(cat.Degrees)
	fields["applicants"] = len(cat.Applicants)

	entries, err := s.loadLedger(ctx, req)
	if err != nil {
		return nil, err
	}
	if err = board.Replay(entries); err != nil {
		return nil, err
	}
	if err = board.Verify(); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrReplay, err)
	}
	fields["entries"] = len(entries)

	if !req.ReadOnly {
		x := &domain.Execution{
			Course:    req.Course,
			StartedAt: s.opts.Now(),
			Host:      req.Host,
			Command:   req.Command,
			Version:   s.opts.Version,
		}
		if err = s.executions.Record(ctx, x); err != nil {
			return nil, err
		}
	}

	a := &assignmentService{
		board:         board,
		workbook:      req.WorkbookPath,
		blocked:       blocked,
		readOnly:      req.ReadOnly,
		reservedLimit: s.opts.WarningCollaborators,
		uow:           s.uow,
		publisher:     s.publisher,
		observer:      s.observer,
		now:           s.opts.Now,
	}
	if req.Publish {
		if err = a.Publish(ctx, 0); err != nil {
			return nil, err
		}
	}
	return a, nil
}

// loadLedger returns the entries to replay. An explicit ledger workbook
// replaces the stored ledger; otherwise the stored one is used.
func (s *sessionService) loadLedger(ctx context.Context, req OpenRequest) ([]*domain.LedgerEntry, error) {
	if req.LedgerPath != "" {
		entries, err := catalog.ReadLedger(req.LedgerPath)
		if err != nil {
			return nil, err
		}
		if req.ReadOnly {
			return entries, nil
		}
		// Validate before touching the stored ledger.
		if err := replayCheck(req, entries); err != nil {
			return nil, err
		}
		err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
			return repository.NewSQLiteLedgerRepo(tx).ReplaceAll(ctx, req.Course, entries)
		})
		if err != nil {
			return nil, fmt.Errorf("importing ledger %s: %w", req.LedgerPath, err)
		}
		return entries, nil
	}

	entries, err := s.ledgers.List(ctx, req.Course)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 && !req.ReadOnly {
		// Reports rewrite the ledger workbook even when nothing was chosen,
		// so only a workbook holding entries means the database was lost.
		existing := filepath.Join(s.opts.OutputDir, catalog.DefaultLedgerFile)
		if _, statErr := os.Stat(existing); statErr == nil {
			previous, err := catalog.ReadLedger(existing)
			if err != nil {
				return nil, fmt.Errorf("checking %s: %w", existing, err)
			}
			if len(previous) > 0 {
				return nil, fmt.Errorf("%s holds %d entries: %w; resume it with --bitacora",
					existing, len(previous), ErrLedgerWorkbookExists)
			}
		} else if !errors.Is(statErr, os.ErrNotExist) {
			return nil, fmt.Errorf("checking %s: %w", existing, statErr)
		}
	}
	return entries, nil
}

// replayCheck replays entries on a scratch board built from the same
// workbook so that a bad import never replaces a good stored ledger.
func replayCheck(req OpenRequest, entries []*domain.LedgerEntry) error {
	schema, err := catalog.SchemaFor(req.Course)
	if err != nil {
		return err
	}
	cat, err := catalog.Load(req.WorkbookPath, schema)
	if err != nil {
		return err
	}
	scratch, err := ledger.NewBoard(cat)
	if err != nil {
		return err
	}
	clones := make([]*domain.LedgerEntry, len(entries))
	for i, e := range entries {
		c := *e
		clones[i] = &c
	}
	return scratch.Replay(clones)
}

func (s *sessionService) History(ctx context.Context, course string) ([]*domain.Execution, error) {
	return s.executions.List(ctx, course)
}
