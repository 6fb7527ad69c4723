package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/nicocardiel/repdoc/internal/db"
	"github.com/nicocardiel/repdoc/internal/domain"
)

type SQLiteExecutionRepo struct {
	db db.DBTX
}

func NewSQLiteExecutionRepo(conn db.DBTX) *SQLiteExecutionRepo {
	return &SQLiteExecutionRepo{db: conn}
}

func (r *SQLiteExecutionRepo) Record(ctx context.Context, x *domain.Execution) error {
	query := `INSERT INTO executions (course, started_at, host, command, version) VALUES (?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, query,
		x.Course, x.StartedAt.Format(time.RFC3339), x.Host, x.Command, x.Version)
	if err != nil {
		return fmt.Errorf("inserting execution: %w", err)
	}
	if id, err := res.LastInsertId(); err == nil {
		x.ID = id
	}
	return nil
}

// List returns the executions of a course, oldest first.
func (r *SQLiteExecutionRepo) List(ctx context.Context, course string) ([]*domain.Execution, error) {
	query := `SELECT id, course, started_at, host, command, version
		FROM executions WHERE course = ? ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query, course)
	if err != nil {
		return nil, fmt.Errorf("listing executions: %w", err)
	}
	defer rows.Close()

	var out []*domain.Execution
	for rows.Next() {
		var x domain.Execution
		var startedAt string
		if err := rows.Scan(&x.ID, &x.Course, &startedAt, &x.Host, &x.Command, &x.Version); err != nil {
			return nil, fmt.Errorf("scanning execution row: %w", err)
		}
		x.StartedAt, err = time.Parse(time.RFC3339, startedAt)
		if err != nil {
			return nil, fmt.Errorf("parsing started_at: %w", err)
		}
		out = append(out, &x)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating executions: %w", err)
	}
	return out, nil
}
