package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

const (
	defaultQueryLimit = 50
	maxQueryLimit     = 200
)

// ArchivedEntry is one persisted write with its row identity.
type ArchivedEntry struct {
	ID     int64     `json:"id"`
	Device string    `json:"device"`
	Text   string    `json:"text"`
	At     time.Time `json:"at"`
}

// Store implements Archiver using SQLite.
//
// Records land in the write_log table. Queries return newest-first,
// matching the ring log and the original device log file ordering.
type Store struct {
	db *sql.DB
}

// NewStore creates a SQLite write-log store.
//
// Parameters:
//   - db: Open SQLite connection used for queries
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Init creates the write_log table if it does not exist.
func (s *Store) Init(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS write_log (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			device     TEXT NOT NULL,
			text       TEXT NOT NULL,
			created_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ','now'))
		);
		CREATE INDEX IF NOT EXISTS idx_write_log_device ON write_log(device, created_at);
	`)
	if err != nil {
		return fmt.Errorf("creating write_log table: %w", err)
	}
	return nil
}

// Record inserts one accepted write.
//
// Parameters:
//   - ctx: Context for cancellation and timeout
//   - device: Device instance name (e.g. "ohubx24-0")
//   - text: Recorded payload
//
// Returns:
//   - error: nil on success, otherwise the underlying database error
func (s *Store) Record(ctx context.Context, device, text string) error {
	if device == "" {
		return fmt.Errorf("device name is required")
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO write_log (device, text) VALUES (?, ?)",
		device,
		text,
	)
	if err != nil {
		return fmt.Errorf("inserting write log: %w", err)
	}

	return nil
}

// Recent returns persisted writes for a device, newest first.
//
// Parameters:
//   - ctx: Context for cancellation and timeout
//   - device: Device instance name
//   - limit: Maximum entries to return (default 50, max 200)
//
// Returns:
//   - []ArchivedEntry: Entries ordered by created_at DESC
//   - error: nil on success, otherwise the underlying query error
func (s *Store) Recent(ctx context.Context, device string, limit int) ([]ArchivedEntry, error) {
	if device == "" {
		return nil, fmt.Errorf("device name is required")
	}
	if limit <= 0 {
		limit = defaultQueryLimit
	}
	if limit > maxQueryLimit {
		limit = maxQueryLimit
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, device, text, created_at
		 FROM write_log
		 WHERE device = ?
		 ORDER BY created_at DESC, id DESC
		 LIMIT ?`,
		device,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying write log: %w", err)
	}
	defer rows.Close()

	entries := make([]ArchivedEntry, 0, limit)
	for rows.Next() {
		var entry ArchivedEntry
		var createdAt string

		if err := rows.Scan(&entry.ID, &entry.Device, &entry.Text, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning write log: %w", err)
		}

		at, err := parseTimestamp(createdAt)
		if err != nil {
			return nil, err
		}
		entry.At = at

		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating write log: %w", err)
	}

	return entries, nil
}

// Prune deletes entries older than the given duration.
//
// Parameters:
//   - ctx: Context for cancellation and timeout
//   - olderThan: Retention window; entries older than now-olderThan go
//
// Returns:
//   - int64: Number of rows deleted
//   - error: nil on success, otherwise the underlying database error
func (s *Store) Prune(ctx context.Context, olderThan time.Duration) (int64, error) {
	if olderThan <= 0 {
		return 0, fmt.Errorf("olderThan must be positive")
	}

	cutoff := time.Now().UTC().Add(-olderThan).Format(time.RFC3339)
	result, err := s.db.ExecContext(ctx,
		"DELETE FROM write_log WHERE created_at < ?",
		cutoff,
	)
	if err != nil {
		return 0, fmt.Errorf("deleting write log: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("checking rows affected: %w", err)
	}

	return rowsAffected, nil
}

// parseTimestamp parses a timestamp stored in SQLite.
func parseTimestamp(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, fmt.Errorf("created_at is empty")
	}

	timestamp, err := time.Parse(time.RFC3339, value)
	if err == nil {
		return timestamp, nil
	}

	fallback, fallbackErr := time.Parse("2006-01-02T15:04:05Z", value)
	if fallbackErr == nil {
		return fallback, nil
	}

	return time.Time{}, fmt.Errorf("parsing created_at: %w", err)
}
