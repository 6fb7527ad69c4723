package service

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/nicocardiel/repdoc/internal/db"
	"github.com/nicocardiel/repdoc/internal/repository"
	"github.com/nicocardiel/repdoc/internal/testutil"
	"github.com/stretchr/testify/require"
)

const course = testutil.TestCourse

type recordingPublisher struct {
	mu    sync.Mutex
	calls []PublishRequest
	err   error
}

func (p *recordingPublisher) Publish(_ context.Context, req PublishRequest) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, req)
	return p.err
}

func (p *recordingPublisher) rounds() []int {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]int, len(p.calls))
	for i, c := range p.calls {
		out[i] = c.Round
	}
	return out
}

type recordingObserver struct {
	mu     sync.Mutex
	events []UseCaseEvent
}

func (o *recordingObserver) ObserveUseCase(_ context.Context, e UseCaseEvent) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.events = append(o.events, e)
}

func (o *recordingObserver) last() UseCaseEvent {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.events[len(o.events)-1]
}

// harness wires a session service to an in-memory database and a fresh
// copy of the default workbook.
type harness struct {
	database  *sql.DB
	ledgers   repository.LedgerRepo
	execs     repository.ExecutionRepo
	uow       db.UnitOfWork
	publisher *recordingPublisher
	observer  *recordingObserver
	workbook  string
	opts      SessionOptions
}

type harnessOption func(*harness)

func withUoW(uow db.UnitOfWork) harnessOption {
	return func(h *harness) { h.uow = uow }
}

func withReservedWarning(limit float64) harnessOption {
	return func(h *harness) { h.opts.WarningCollaborators = limit }
}

func withBlocked(courses ...string) harnessOption {
	return func(h *harness) { h.opts.BlockedCourses = courses }
}

func newHarness(t *testing.T, opts ...harnessOption) *harness {
	t.Helper()
	database := testutil.NewTestDB(t)
	h := &harness{
		database:  database,
		ledgers:   repository.NewSQLiteLedgerRepo(database),
		execs:     repository.NewSQLiteExecutionRepo(database),
		uow:       testutil.NewTestUoW(database),
		publisher: &recordingPublisher{},
		observer:  &recordingObserver{},
		workbook:  testutil.WriteWorkbook(t, testutil.DefaultWorkbookSpec()),
		opts: SessionOptions{
			OutputDir: t.TempDir(),
			Version:   "test",
			Now:       func() time.Time { return testutil.FixedTime },
		},
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *harness) sessions() SessionService {
	return NewSessionService(h.ledgers, h.execs, h.uow, h.publisher, h.opts, h.observer)
}

func (h *harness) open(t *testing.T) AssignmentService {
	t.Helper()
	svc, err := h.sessions().Open(context.Background(), OpenRequest{
		WorkbookPath: h.workbook,
		Course:       course,
		Command:      "repdoc session libro.xlsx --course " + course,
		Host:         "guaix",
	})
	require.NoError(t, err)
	return svc
}
