package db

import (
	"database/sql"
	"fmt"
	"strings"
)

// Migrate runs all schema migrations. Statements are re-run on every open,
// so each must be idempotent.
func Migrate(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			// ALTER TABLE ... ADD COLUMN fails once the column exists.
			if strings.Contains(err.Error(), "duplicate column name") {
				continue
			}
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}

var migrations = []string{
	// seq gives the append order; id is the entry's uuid_bita.
	`CREATE TABLE IF NOT EXISTS ledger_entries (
		seq             INTEGER PRIMARY KEY AUTOINCREMENT,
		id              TEXT NOT NULL UNIQUE,
		course          TEXT NOT NULL,
		applicant_id    TEXT NOT NULL,
		degree_id       TEXT NOT NULL,
		subject_id      TEXT NOT NULL,
		added_at        TEXT NOT NULL,
		round_added     INTEGER NOT NULL DEFAULT 0,
		removed_at      TEXT,
		round_removed   INTEGER,
		credits         REAL NOT NULL DEFAULT 0 CHECK(credits >= 0),
		explanation     TEXT NOT NULL DEFAULT '',
		surname         TEXT NOT NULL DEFAULT '',
		given_name      TEXT NOT NULL DEFAULT '',
		category        TEXT NOT NULL DEFAULT '',
		course_year     TEXT NOT NULL DEFAULT '',
		semester        TEXT NOT NULL DEFAULT '',
		code            TEXT NOT NULL DEFAULT '',
		subject_name    TEXT NOT NULL DEFAULT '',
		area            TEXT NOT NULL DEFAULT '',
		initial_credits REAL NOT NULL DEFAULT 0,
		comments        TEXT NOT NULL DEFAULT '',
		group_name      TEXT NOT NULL DEFAULT '',
		CHECK((removed_at IS NULL) = (round_removed IS NULL))
	)`,

	`CREATE INDEX IF NOT EXISTS idx_ledger_entries_course ON ledger_entries(course, seq)`,
	`CREATE INDEX IF NOT EXISTS idx_ledger_entries_applicant ON ledger_entries(course, applicant_id)`,

	`CREATE TABLE IF NOT EXISTS executions (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		course     TEXT NOT NULL,
		started_at TEXT NOT NULL,
		host       TEXT NOT NULL DEFAULT '',
		command    TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_executions_course ON executions(course, id)`,

	`ALTER TABLE executions ADD COLUMN version TEXT NOT NULL DEFAULT ''`,
}
