package testutil

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"

	"github.com/nicocardiel/repdoc/internal/db"
)

// FailingUoW runs transactions against DB but makes every write whose SQL
// starts with Statement (e.g. "UPDATE ledger_entries") return Err. With an
// empty Statement it behaves like the real unit of work. Fields may be
// changed between transactions to arm it after setup.
type FailingUoW struct {
	DB        *sql.DB
	Statement string
	Err       error

	mu       sync.Mutex
	failures int
}

// FailOn returns a FailingUoW armed for statement.
func FailOn(database *sql.DB, statement string, err error) *FailingUoW {
	return &FailingUoW{DB: database, Statement: statement, Err: err}
}

// Failures reports how many writes were refused so far.
func (u *FailingUoW) Failures() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.failures
}

func (u *FailingUoW) WithinTx(ctx context.Context, fn func(ctx context.Context, tx db.DBTX) error) error {
	tx, err := u.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	if err := fn(ctx, &failingTx{DBTX: tx, uow: u}); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

type failingTx struct {
	db.DBTX
	uow *FailingUoW
}

func (f *failingTx) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	u := f.uow
	if u.Statement != "" && strings.HasPrefix(strings.TrimSpace(query), u.Statement) {
		u.mu.Lock()
		u.failures++
		u.mu.Unlock()
		return nil, u.Err
	}
	return f.DBTX.ExecContext(ctx, query, args...)
}
