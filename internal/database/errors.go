package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// Store error kinds. Adapters wrap driver errors so errors.Is matches one of
// these while the message keeps the driver detail.
var (
	ErrNotFound    = errors.New("record not found")
	ErrConflict    = errors.New("record conflicts with existing data")
	ErrUnavailable = errors.New("store unavailable")
)

// IsStoreError reports whether err carries one of the store error kinds.
func IsStoreError(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, ErrConflict) || errors.Is(err, ErrUnavailable)
}

// classify maps a SQLite driver error onto a store error kind. refErr is the
// kind reported for a foreign key violation: NotFound when a write points at
// a missing row, Conflict when a delete is blocked by dependent rows.
func classify(op string, err error, refErr error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w: %w", op, ErrUnavailable, err)
	}

	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return fmt.Errorf("%s: %w: %v", op, ErrConflict, err)
		case sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY:
			return fmt.Errorf("%s: %w: %v", op, refErr, err)
		case sqlite3.SQLITE_CONSTRAINT_CHECK, sqlite3.SQLITE_CONSTRAINT_NOTNULL:
			return fmt.Errorf("%s: %w: %v", op, ErrConflict, err)
		}
	}
	return fmt.Errorf("%s: %w: %v", op, ErrUnavailable, err)
}

// requireAffected turns a zero-row write into ErrNotFound.
func requireAffected(op string, res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return classify(op, err, ErrNotFound)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return nil
}
