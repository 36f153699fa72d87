package store

import (
	"errors"
	"strings"
)

// ErrNotFound is returned when an operation targets an id that does not
// exist. It is surfaced to the caller and never retried.
var ErrNotFound = errors.New("crash report not found")

// ErrConflict is returned when an upsert still conflicts after the retry
// budget is exhausted.
var ErrConflict = errors.New("store conflict")

// retryable reports whether an error is a transient SQLite contention that
// a bounded retry can resolve: a busy/locked database, or a unique-constraint
// race where a concurrent upsert inserted the row first (the retry will take
// the update path).
func retryable(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") ||
		strings.Contains(msg, "database is locked") ||
		strings.Contains(msg, "UNIQUE constraint failed")
}
