package service

import "errors"

var (
	// ErrReadOnly is returned for mutations on a session opened for viewing.
	ErrReadOnly = errors.New("session is read-only")

	// ErrLedgerWorkbookExists guards against silently starting an empty
	// ledger next to an earlier session's ledger workbook.
	ErrLedgerWorkbookExists = errors.New("ledger workbook already exists")
)
