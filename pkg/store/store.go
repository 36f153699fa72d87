// Package store persists crash records in an embedded SQLite database with
// idempotent upsert, annotation, and filtered queries. The store is the only
// stateful component of the pipeline; everything upstream is pure.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/bandicoot-project/bandicoot/pkg/report"
)

const schema = `
CREATE TABLE IF NOT EXISTS crash_reports (
    id                 INTEGER PRIMARY KEY AUTOINCREMENT,
    fingerprint        TEXT NOT NULL UNIQUE,
    process_name       TEXT NOT NULL,
    exception_type     TEXT NOT NULL,
    termination_reason TEXT NOT NULL,
    crash_time         TEXT NOT NULL,
    time_missing       INTEGER NOT NULL DEFAULT 0,
    dialect            TEXT NOT NULL,
    raw_text           TEXT NOT NULL,
    notation           TEXT NOT NULL DEFAULT '',
    first_seen_at      TEXT NOT NULL,
    last_seen_at       TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_crash_reports_last_seen ON crash_reports (last_seen_at DESC, id ASC);
`

// timeFormat is how timestamps are stored: RFC 3339 UTC with fixed-width
// fractional seconds, so the stored strings sort lexicographically and the
// ordering index works on them directly.
const timeFormat = "2006-01-02T15:04:05.000000000Z07:00"

const (
	upsertRetries      = 5
	upsertRetryBackoff = 25 * time.Millisecond
)

// Store is a handle to one crash-report database.
// Lifecycle: Open, operations, Close. Each test gets its own instance.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open creates (if needed) and opens the database at path, creating parent
// directories along the way.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database %s: %w", path, err)
	}

	// SQLite allows one writer; funnel all statements through a single
	// connection so concurrent upserts serialize in the driver instead of
	// failing with SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("configuring database: %w", err)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &Store{db: db, now: time.Now}, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Upsert inserts the record if its fingerprint is unseen, otherwise bumps
// last_seen_at only, leaving every other column (including notation)
// untouched. Returns the row id and whether a new row was created.
//
// Conflicting concurrent upserts of the same fingerprint are retried a
// bounded number of times; ErrConflict wraps the final failure.
func (s *Store) Upsert(ctx context.Context, rec report.CrashRecord) (id int64, isNew bool, err error) {
	backoff := upsertRetryBackoff
	for attempt := 0; attempt < upsertRetries; attempt++ {
		id, isNew, err = s.tryUpsert(ctx, rec)
		if err == nil || !retryable(err) {
			return id, isNew, err
		}
		select {
		case <-ctx.Done():
			return 0, false, ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
	}
	return 0, false, fmt.Errorf("upsert fingerprint %s: %w: %v", rec.Fingerprint, ErrConflict, err)
}

func (s *Store) tryUpsert(ctx context.Context, rec report.CrashRecord) (int64, bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, false, fmt.Errorf("beginning upsert: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	now := s.now().UTC().Format(timeFormat)

	var id int64
	err = tx.QueryRowContext(ctx,
		`SELECT id FROM crash_reports WHERE fingerprint = ?`, rec.Fingerprint).Scan(&id)
	switch err {
	case nil:
		if _, err := tx.ExecContext(ctx,
			`UPDATE crash_reports SET last_seen_at = ? WHERE id = ?`, now, id); err != nil {
			return 0, false, fmt.Errorf("updating last_seen_at: %w", err)
		}
		if err := tx.Commit(); err != nil {
			return 0, false, fmt.Errorf("committing upsert: %w", err)
		}
		return id, false, nil

	case sql.ErrNoRows:
		res, err := tx.ExecContext(ctx, `
			INSERT INTO crash_reports
				(fingerprint, process_name, exception_type, termination_reason,
				 crash_time, time_missing, dialect, raw_text, notation,
				 first_seen_at, last_seen_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, '', ?, ?)`,
			rec.Fingerprint, rec.ProcessName, rec.ExceptionType, rec.TerminationReason,
			rec.CrashTime.UTC().Format(timeFormat), boolToInt(rec.TimeMissing),
			string(rec.Dialect), rec.RawText, now, now)
		if err != nil {
			return 0, false, fmt.Errorf("inserting crash report: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return 0, false, fmt.Errorf("reading insert id: %w", err)
		}
		if err := tx.Commit(); err != nil {
			return 0, false, fmt.Errorf("committing insert: %w", err)
		}
		return id, true, nil

	default:
		return 0, false, fmt.Errorf("looking up fingerprint: %w", err)
	}
}

// Annotate sets the notation for an existing row.
// Returns ErrNotFound when the id is unknown; the store is left unchanged.
func (s *Store) Annotate(ctx context.Context, id int64, text string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE crash_reports SET notation = ? WHERE id = ?`, text, id)
	if err != nil {
		return fmt.Errorf("annotating id %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("annotating id %d: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("annotating id %d: %w", id, ErrNotFound)
	}
	return nil
}

// Filter narrows a Query. Zero values mean "no constraint".
type Filter struct {
	// Dialect restricts results to one dialect.
	Dialect report.Dialect

	// Process matches records whose process name contains this substring.
	Process string

	// Since and Until bound last_seen_at.
	Since time.Time
	Until time.Time

	// Limit caps the number of rows returned. Zero means unlimited.
	Limit int
}

// Query returns records matching the filter, ordered by last_seen_at
// descending with ties broken by ascending id. The ordering is stable
// across repeated calls with no intervening writes.
func (s *Store) Query(ctx context.Context, f Filter) ([]report.CrashRecord, error) {
	q := `SELECT id, fingerprint, process_name, exception_type, termination_reason,
	             crash_time, time_missing, dialect, raw_text, notation,
	             first_seen_at, last_seen_at
	      FROM crash_reports WHERE 1=1`
	var args []any

	if f.Dialect != "" {
		q += ` AND dialect = ?`
		args = append(args, string(f.Dialect))
	}
	if f.Process != "" {
		q += ` AND process_name LIKE ?`
		args = append(args, "%"+f.Process+"%")
	}
	if !f.Since.IsZero() {
		q += ` AND last_seen_at >= ?`
		args = append(args, f.Since.UTC().Format(timeFormat))
	}
	if !f.Until.IsZero() {
		q += ` AND last_seen_at <= ?`
		args = append(args, f.Until.UTC().Format(timeFormat))
	}

	q += ` ORDER BY last_seen_at DESC, id ASC`
	if f.Limit > 0 {
		q += ` LIMIT ?`
		args = append(args, f.Limit)
	}

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("querying crash reports: %w", err)
	}
	defer rows.Close()

	var records []report.CrashRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading crash reports: %w", err)
	}
	return records, nil
}

// Get returns a single record by id, or ErrNotFound.
func (s *Store) Get(ctx context.Context, id int64) (*report.CrashRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, fingerprint, process_name, exception_type, termination_reason,
		        crash_time, time_missing, dialect, raw_text, notation,
		        first_seen_at, last_seen_at
		 FROM crash_reports WHERE id = ?`, id)
	rec, err := scanRecord(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("id %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// Count returns the total number of stored records.
func (s *Store) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM crash_reports`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting crash reports: %w", err)
	}
	return n, nil
}

// Wipe clears all rows. It is the only deletion path and must be invoked
// explicitly; nothing in the pipeline calls it.
func (s *Store) Wipe(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM crash_reports`); err != nil {
		return fmt.Errorf("wiping crash reports: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (report.CrashRecord, error) {
	var rec report.CrashRecord
	var dialect string
	var timeMissing int
	var crashTime, firstSeen, lastSeen string

	err := row.Scan(&rec.ID, &rec.Fingerprint, &rec.ProcessName, &rec.ExceptionType,
		&rec.TerminationReason, &crashTime, &timeMissing, &dialect, &rec.RawText,
		&rec.Notation, &firstSeen, &lastSeen)
	if err != nil {
		if err == sql.ErrNoRows {
			return rec, err
		}
		return rec, fmt.Errorf("scanning crash report: %w", err)
	}

	rec.Dialect = report.Dialect(dialect)
	rec.TimeMissing = timeMissing != 0
	if rec.CrashTime, err = time.Parse(timeFormat, crashTime); err != nil {
		return rec, fmt.Errorf("parsing crash_time: %w", err)
	}
	if rec.FirstSeenAt, err = time.Parse(timeFormat, firstSeen); err != nil {
		return rec, fmt.Errorf("parsing first_seen_at: %w", err)
	}
	if rec.LastSeenAt, err = time.Parse(timeFormat, lastSeen); err != nil {
		return rec, fmt.Errorf("parsing last_seen_at: %w", err)
	}
	return rec, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
