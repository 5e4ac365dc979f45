package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// seenTimeLayout is sortable as text, so range deletes compare correctly.
const seenTimeLayout = "2006-01-02 15:04:05"

// SQLiteStore records ingested job_uids in a local SQLite ledger.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLiteStore opens (or creates) the ledger at dbPath and ensures the
// seen_postings table exists.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}
	// A single writer avoids SQLITE_BUSY when providers finish together.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging sqlite db: %w", err)
	}

	createTable := `CREATE TABLE IF NOT EXISTS seen_postings (
		job_uid    TEXT PRIMARY KEY,
		source     TEXT NOT NULL,
		first_seen TEXT NOT NULL
	)`
	if _, err := db.Exec(createTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating seen_postings table: %w", err)
	}
	createIndex := `CREATE INDEX IF NOT EXISTS seen_postings_first_seen ON seen_postings (first_seen)`
	if _, err := db.Exec(createIndex); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating seen_postings index: %w", err)
	}

	return &SQLiteStore{db: db, now: time.Now}, nil
}

func (s *SQLiteStore) HasSeen(ctx context.Context, jobUID string) (bool, error) {
	var exists int
	err := s.db.QueryRowContext(ctx, "SELECT 1 FROM seen_postings WHERE job_uid = ?", jobUID).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking seen status for %s: %w", jobUID, err)
	}
	return true, nil
}

// MarkSeen records a job_uid. Marking an existing uid keeps its first_seen.
func (s *SQLiteStore) MarkSeen(ctx context.Context, jobUID, source string) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT OR IGNORE INTO seen_postings (job_uid, source, first_seen) VALUES (?, ?, ?)",
		jobUID, source, s.now().UTC().Format(seenTimeLayout),
	)
	if err != nil {
		return fmt.Errorf("marking %s as seen: %w", jobUID, err)
	}
	return nil
}

// Cleanup deletes ledger entries first seen longer ago than olderThan.
func (s *SQLiteStore) Cleanup(ctx context.Context, olderThan time.Duration) error {
	cutoff := s.now().Add(-olderThan).UTC().Format(seenTimeLayout)
	_, err := s.db.ExecContext(ctx, "DELETE FROM seen_postings WHERE first_seen < ?", cutoff)
	if err != nil {
		return fmt.Errorf("cleaning up seen postings older than %v: %w", olderThan, err)
	}
	return nil
}

// Count returns the number of ledger entries, optionally for one source.
func (s *SQLiteStore) Count(ctx context.Context, source string) (int, error) {
	query := "SELECT COUNT(*) FROM seen_postings"
	var args []any
	if source != "" {
		query += " WHERE source = ?"
		args = append(args, source)
	}
	var count int
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("counting seen postings: %w", err)
	}
	return count, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
