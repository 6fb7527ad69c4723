package service

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/nicocardiel/repdoc/internal/catalog"
	"github.com/nicocardiel/repdoc/internal/report"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSyncer struct {
	course string
	files  []string
	err    error
}

func (f *fakeSyncer) Sync(_ context.Context, course string, files []string) error {
	f.course = course
	f.files = files
	return f.err
}

func newReportPublisher(t *testing.T, h *harness, syncer Syncer) Publisher {
	t.Helper()
	gen, err := report.NewGenerator(report.Options{OutputDir: h.opts.OutputDir, Version: "test"})
	require.NoError(t, err)
	return NewPublisher(gen, h.execs, syncer, nil)
}

func TestPublisher_WritesReportsAndSyncs(t *testing.T) {
	h := newHarness(t)
	syncer := &fakeSyncer{}
	pub := newReportPublisher(t, h, syncer)

	svc, err := NewSessionService(h.ledgers, h.execs, h.uow, pub, h.opts).Open(context.Background(), OpenRequest{
		WorkbookPath: h.workbook,
		Course:       course,
		Command:      "repdoc session",
		Host:         "guaix",
		Publish:      true,
	})
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join(h.opts.OutputDir, report.FileDegrees))
	assert.FileExists(t, filepath.Join(h.opts.OutputDir, report.FileExecutions))
	assert.Equal(t, course, syncer.course)
	assert.Contains(t, syncer.files, h.workbook)
	assert.Contains(t, syncer.files, filepath.Join(h.opts.OutputDir, report.FileLedger))

	res, err := svc.Select(context.Background(), SelectRequest{ApplicantID: "prof-ana", SubjectID: "asig-opt", Whole: true, Round: 1})
	require.NoError(t, err)
	assert.NoError(t, res.PublishErr)
}

func TestPublisher_ReopenAfterSessionWithoutChanges(t *testing.T) {
	h := newHarness(t)
	sessions := NewSessionService(h.ledgers, h.execs, h.uow, newReportPublisher(t, h, nil), h.opts)
	req := OpenRequest{WorkbookPath: h.workbook, Course: course, Publish: true}

	_, err := sessions.Open(context.Background(), req)
	require.NoError(t, err)
	require.FileExists(t, filepath.Join(h.opts.OutputDir, catalog.DefaultLedgerFile))

	svc, err := sessions.Open(context.Background(), req)
	require.NoError(t, err)

	res, err := svc.Select(context.Background(), SelectRequest{ApplicantID: "prof-ana", SubjectID: "asig-opt", Whole: true, Round: 1})
	require.NoError(t, err)
	require.NoError(t, res.PublishErr)

	again, err := sessions.Open(context.Background(), req)
	require.NoError(t, err)
	assert.Len(t, again.Entries(), 1)
}

func TestPublisher_SyncFailureReturned(t *testing.T) {
	h := newHarness(t)
	syncer := &fakeSyncer{err: errors.New("host unreachable")}
	pub := newReportPublisher(t, h, syncer)

	svc := h.open(t)
	a := svc.(*assignmentService)
	err := pub.Publish(context.Background(), PublishRequest{Board: a.board, Round: 1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "host unreachable")
	assert.FileExists(t, filepath.Join(h.opts.OutputDir, report.FileApplicants), "reports are written before syncing")
}

func TestPublisher_WithoutSyncer(t *testing.T) {
	h := newHarness(t)
	pub := newReportPublisher(t, h, nil)

	svc := h.open(t)
	a := svc.(*assignmentService)
	require.NoError(t, pub.Publish(context.Background(), PublishRequest{Board: a.board, Workbook: h.workbook}))
	assert.FileExists(t, filepath.Join(h.opts.OutputDir, report.FileResult))
}
