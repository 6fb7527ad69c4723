package repository

import (
	"context"
	"time"

	"github.com/nicocardiel/repdoc/internal/domain"
)

type LedgerRepo interface {
	Append(ctx context.Context, course string, e *domain.LedgerEntry) error
	MarkRemoved(ctx context.Context, id string, at time.Time, round int) error
	GetByID(ctx context.Context, id string) (*domain.LedgerEntry, error)
	List(ctx context.Context, course string) ([]*domain.LedgerEntry, error)
	Count(ctx context.Context, course string) (int, error)
	ReplaceAll(ctx context.Context, course string, entries []*domain.LedgerEntry) error
}

type ExecutionRepo interface {
	Record(ctx context.Context, x *domain.Execution) error
	List(ctx context.Context, course string) ([]*domain.Execution, error)
}
