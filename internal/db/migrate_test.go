package db

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openRawDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := OpenDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func columnNames(t *testing.T, db *sql.DB, table string) []string {
	t.Helper()
	rows, err := db.Query(`PRAGMA table_info(` + table + `)`)
	require.NoError(t, err)
	defer rows.Close()

	var names []string
	for rows.Next() {
		var cid int
		var name, typ string
		var notNull, pk int
		var dflt sql.NullString
		require.NoError(t, rows.Scan(&cid, &name, &typ, &notNull, &dflt, &pk))
		names = append(names, name)
	}
	require.NoError(t, rows.Err())
	return names
}

func TestMigrate_Idempotent(t *testing.T) {
	db := openRawDB(t)

	require.NoError(t, Migrate(db))
	require.NoError(t, Migrate(db))
}

func TestMigrate_CreatesTablesAndIndexes(t *testing.T) {
	db := openRawDB(t)

	for _, table := range []string{"ledger_entries", "executions"} {
		var name string
		err := db.QueryRow(`SELECT name FROM sqlite_master WHERE type='table' AND name=?`, table).Scan(&name)
		require.NoError(t, err, "table %s should exist", table)
	}
	for _, idx := range []string{"idx_ledger_entries_course", "idx_ledger_entries_applicant", "idx_executions_course"} {
		var name string
		err := db.QueryRow(`SELECT name FROM sqlite_master WHERE type='index' AND name=?`, idx).Scan(&name)
		require.NoError(t, err, "index %s should exist", idx)
	}
}

func TestMigrate_ExecutionsVersionColumn(t *testing.T) {
	db := openRawDB(t)
	assert.Contains(t, columnNames(t, db, "executions"), "version")
}

func TestMigrate_ForeignKeysEnabled(t *testing.T) {
	db := openRawDB(t)

	var fk int
	require.NoError(t, db.QueryRow(`PRAGMA foreign_keys`).Scan(&fk))
	assert.Equal(t, 1, fk)
}

func TestMigrate_LedgerConstraints(t *testing.T) {
	db := openRawDB(t)

	insert := `INSERT INTO ledger_entries (id, course, applicant_id, degree_id, subject_id, added_at, credits, removed_at, round_removed)
		VALUES (?, '2025-2026', 'p', 'd', 's', '2025-06-02 09:00:00', ?, ?, ?)`

	_, err := db.Exec(insert, "ok", 4.5, nil, nil)
	require.NoError(t, err)

	_, err = db.Exec(insert, "ok", 1.0, nil, nil)
	assert.Error(t, err, "duplicate id should be rejected")

	_, err = db.Exec(insert, "neg", -1.0, nil, nil)
	assert.Error(t, err, "negative credits should be rejected")

	_, err = db.Exec(insert, "half", 1.0, "2025-06-02 10:00:00", nil)
	assert.Error(t, err, "removed_at without round_removed should be rejected")
}
