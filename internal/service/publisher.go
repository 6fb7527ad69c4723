package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/nicocardiel/repdoc/internal/report"
	"github.com/nicocardiel/repdoc/internal/repository"
)

type reportPublisher struct {
	reports    *report.Generator
	executions repository.ExecutionRepo
	syncer     Syncer
	logger     *slog.Logger
}

// NewPublisher regenerates every report after a change and, when syncer is
// not nil, uploads the result. Failures are returned and logged, never
// retried.
func NewPublisher(reports *report.Generator, executions repository.ExecutionRepo, syncer Syncer, logger *slog.Logger) Publisher {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &reportPublisher{
		reports:    reports,
		executions: executions,
		syncer:     syncer,
		logger:     logger,
	}
}

func (p *reportPublisher) Publish(ctx context.Context, req PublishRequest) error {
	course := req.Board.Course()
	history, err := p.executions.List(ctx, course)
	if err != nil {
		p.logger.ErrorContext(ctx, "publish_failed", "course", course, "stage", "history", "error", err)
		return err
	}

	files, err := p.reports.Generate(report.Input{
		Board:       req.Board,
		Round:       req.Round,
		Executions:  history,
		GeneratedAt: time.Now(),
	})
	if err != nil {
		p.logger.ErrorContext(ctx, "publish_failed", "course", course, "stage", "reports", "error", err)
		return err
	}
	p.logger.DebugContext(ctx, "reports_written", "course", course, "files", len(files))

	if p.syncer == nil {
		return nil
	}
	if req.Workbook != "" {
		files = append(files, req.Workbook)
	}
	if err := p.syncer.Sync(ctx, course, files); err != nil {
		p.logger.ErrorContext(ctx, "publish_failed", "course", course, "stage", "sync", "error", err)
		return err
	}
	return nil
}
