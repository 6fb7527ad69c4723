package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/nicocardiel/repdoc/internal/db"
	"github.com/nicocardiel/repdoc/internal/domain"
)

const ledgerColumns = `id, applicant_id, degree_id, subject_id, added_at, round_added,
	removed_at, round_removed, credits, explanation,
	surname, given_name, category,
	course_year, semester, code, subject_name, area, initial_credits, comments, group_name`

// SQLiteLedgerRepo stores ledger entries append-only. The only permitted
// update is setting the removal fields of an entry that has none.
type SQLiteLedgerRepo struct {
	db db.DBTX
}

func NewSQLiteLedgerRepo(conn db.DBTX) *SQLiteLedgerRepo {
	return &SQLiteLedgerRepo{db: conn}
}

func (r *SQLiteLedgerRepo) Append(ctx context.Context, course string, e *domain.LedgerEntry) error {
	query := `INSERT INTO ledger_entries (course, ` + ledgerColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		course,
		e.ID,
		e.ApplicantID,
		e.DegreeID,
		e.SubjectID,
		e.AddedAt.Format(time.RFC3339),
		e.RoundAdded,
		nullableTimeToString(e.RemovedAt),
		nullableIntToValue(e.RoundRemoved),
		e.Credits,
		e.Explanation,
		e.Surname,
		e.GivenName,
		e.Category,
		e.CourseYear,
		e.Semester,
		e.Code,
		e.SubjectName,
		e.Area,
		e.InitialCredits,
		e.Comments,
		e.Group,
	)
	if err != nil {
		return fmt.Errorf("inserting ledger entry %s: %w", e.ID, err)
	}
	return nil
}

func (r *SQLiteLedgerRepo) MarkRemoved(ctx context.Context, id string, at time.Time, round int) error {
	query := `UPDATE ledger_entries SET removed_at = ?, round_removed = ?
		WHERE id = ? AND removed_at IS NULL`
	res, err := r.db.ExecContext(ctx, query, at.Format(time.RFC3339), round, id)
	if err != nil {
		return fmt.Errorf("marking ledger entry %s removed: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("marking ledger entry %s removed: %w", id, err)
	}
	if n == 1 {
		return nil
	}

	existing, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if existing.IsRemoved() {
		return fmt.Errorf("ledger entry %s: %w", id, domain.ErrAlreadyRemoved)
	}
	return fmt.Errorf("marking ledger entry %s removed: no rows updated", id)
}

func (r *SQLiteLedgerRepo) GetByID(ctx context.Context, id string) (*domain.LedgerEntry, error) {
	query := `SELECT ` + ledgerColumns + ` FROM ledger_entries WHERE id = ?`
	row := r.db.QueryRowContext(ctx, query, id)
	e, err := scanLedgerEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("ledger entry %s: %w", id, domain.ErrNotFound)
	}
	return e, err
}

// List returns the entries of a course in append order.
func (r *SQLiteLedgerRepo) List(ctx context.Context, course string) ([]*domain.LedgerEntry, error) {
	query := `SELECT ` + ledgerColumns + ` FROM ledger_entries WHERE course = ? ORDER BY seq`
	rows, err := r.db.QueryContext(ctx, query, course)
	if err != nil {
		return nil, fmt.Errorf("listing ledger entries: %w", err)
	}
	defer rows.Close()

	var entries []*domain.LedgerEntry
	for rows.Next() {
		e, err := scanLedgerEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating ledger entries: %w", err)
	}
	return entries, nil
}

func (r *SQLiteLedgerRepo) Count(ctx context.Context, course string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM ledger_entries WHERE course = ?`, course).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting ledger entries: %w", err)
	}
	return n, nil
}

// ReplaceAll discards the stored ledger of a course and appends entries in
// order. It is used when importing a ledger workbook; run it inside a
// transaction.
func (r *SQLiteLedgerRepo) ReplaceAll(ctx context.Context, course string, entries []*domain.LedgerEntry) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM ledger_entries WHERE course = ?`, course); err != nil {
		return fmt.Errorf("clearing ledger of %s: %w", course, err)
	}
	for _, e := range entries {
		if err := r.Append(ctx, course, e); err != nil {
			return err
		}
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLedgerEntry(row rowScanner) (*domain.LedgerEntry, error) {
	var e domain.LedgerEntry
	var addedAt string
	var removedAt sql.NullString
	var roundRemoved sql.NullInt64

	err := row.Scan(
		&e.ID, &e.ApplicantID, &e.DegreeID, &e.SubjectID, &addedAt, &e.RoundAdded,
		&removedAt, &roundRemoved, &e.Credits, &e.Explanation,
		&e.Surname, &e.GivenName, &e.Category,
		&e.CourseYear, &e.Semester, &e.Code, &e.SubjectName, &e.Area, &e.InitialCredits, &e.Comments, &e.Group,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning ledger entry: %w", err)
	}

	e.AddedAt, err = time.Parse(time.RFC3339, addedAt)
	if err != nil {
		return nil, fmt.Errorf("parsing added_at of %s: %w", e.ID, err)
	}
	e.RemovedAt = parseNullableTime(removedAt)
	e.RoundRemoved = nullIntToPtr(roundRemoved)
	return &e, nil
}
