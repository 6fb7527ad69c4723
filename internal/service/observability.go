package service

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"time"

	"github.com/nicocardiel/repdoc/internal/domain"
)

// UseCaseEvent describes one finished call into the assignment or session
// service. Rejected is set when a bookkeeping rule refused the change, as
// opposed to a storage or publishing failure.
type UseCaseEvent struct {
	Name      string
	Course    string
	StartedAt time.Time
	Duration  time.Duration
	Success   bool
	Rejected  bool
	Err       error
	Fields    map[string]any
}

type UseCaseObserver interface {
	ObserveUseCase(ctx context.Context, event UseCaseEvent)
}

type NoopUseCaseObserver struct{}

func (NoopUseCaseObserver) ObserveUseCase(context.Context, UseCaseEvent) {}

type logUseCaseObserver struct {
	logger *slog.Logger
}

// NewLogUseCaseObserver reports use-case events through logger: successes
// at info, rejected changes at warn, failures at error.
func NewLogUseCaseObserver(logger *slog.Logger) UseCaseObserver {
	if logger == nil {
		return NoopUseCaseObserver{}
	}
	return &logUseCaseObserver{logger: logger.With("component", "service")}
}

func (o *logUseCaseObserver) ObserveUseCase(ctx context.Context, event UseCaseEvent) {
	keys := make([]string, 0, len(event.Fields))
	for k := range event.Fields {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	attrs := make([]slog.Attr, 0, 4+len(keys))
	attrs = append(attrs,
		slog.String("use_case", event.Name),
		slog.String("course", event.Course),
		slog.Int64("duration_ms", event.Duration.Milliseconds()),
	)
	for _, k := range keys {
		attrs = append(attrs, slog.Any(k, event.Fields[k]))
	}

	switch {
	case event.Success:
		o.logger.LogAttrs(ctx, slog.LevelInfo, "use_case_done", attrs...)
	case event.Rejected:
		attrs = append(attrs, slog.String("reason", event.Err.Error()))
		o.logger.LogAttrs(ctx, slog.LevelWarn, "use_case_rejected", attrs...)
	default:
		attrs = append(attrs, slog.String("error", event.Err.Error()))
		o.logger.LogAttrs(ctx, slog.LevelError, "use_case_failed", attrs...)
	}
}

func useCaseObserverOrNoop(observers []UseCaseObserver) UseCaseObserver {
	for _, obs := range observers {
		if obs != nil {
			return obs
		}
	}
	return NoopUseCaseObserver{}
}

// ruleErrors are the refusals a user can trigger from the forms.
var ruleErrors = []error{
	domain.ErrNotFound,
	domain.ErrInsufficientCredits,
	domain.ErrAlreadyRemoved,
	domain.ErrApplicantFinished,
	domain.ErrInvalidRound,
	domain.ErrInvalidCredits,
	domain.ErrAdministrativeEntry,
	domain.ErrCourseBlocked,
	domain.ErrUnknownCourse,
	ErrReadOnly,
	ErrLedgerWorkbookExists,
}

func isRejection(err error) bool {
	for _, target := range ruleErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// observe reports a finished use case. Call it deferred with a pointer to
// the named error result.
func observe(ctx context.Context, obs UseCaseObserver, name, course string, startedAt time.Time, fields map[string]any, err *error) {
	obs.ObserveUseCase(ctx, UseCaseEvent{
		Name:      name,
		Course:    course,
		StartedAt: startedAt,
		Duration:  time.Since(startedAt),
		Success:   *err == nil,
		Rejected:  *err != nil && isRejection(*err),
		Err:       *err,
		Fields:    fields,
	})
}
