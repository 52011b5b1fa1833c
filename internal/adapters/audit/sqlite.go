// Package audit provides append-only stores for pipeline stage events.
package audit

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/guardrail-labs/sentinel/internal/core"
)

//go:embed migrations/001_initial_schema.sql
var migrationV1 string

// SQLiteStore implements core.AuditStore on SQLite. Appends are plain
// inserts; the store exposes no update or delete path.
type SQLiteStore struct {
	dbPath string
	db     *sql.DB
}

// NewSQLiteStore opens (or creates) the audit database.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating audit directory: %w", err)
	}

	// WAL keeps concurrent appends from blocking each other.
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("opening audit database: %w", err)
	}

	s := &SQLiteStore{dbPath: dbPath, db: db}
	if err := s.migrate(); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			return nil, fmt.Errorf("running migrations: %w (close error: %v)", err, closeErr)
		}
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *SQLiteStore) migrate() error {
	var version int
	err := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&version)
	if err != nil {
		// Table doesn't exist yet, run initial migration.
		version = 0
	}
	if version < 1 {
		if _, err := s.db.Exec(migrationV1); err != nil {
			return fmt.Errorf("applying migration v1: %w", err)
		}
	}
	return nil
}

// Append inserts one stage event.
func (s *SQLiteStore) Append(ctx context.Context, ev core.StageEvent) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO stage_events (request_id, subject_id, stage, timestamp, outcome, outcome_summary)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		string(ev.RequestID),
		string(ev.Subject),
		ev.Stage,
		ev.Timestamp.UTC().Format(time.RFC3339Nano),
		string(ev.Outcome),
		ev.Summary,
	)
	if err != nil {
		return fmt.Errorf("appending stage event: %w", err)
	}
	return nil
}

// ByRequest returns all events for one request in append order. Used by
// operators for replay and diagnostics.
func (s *SQLiteStore) ByRequest(ctx context.Context, requestID core.RequestID) ([]core.StageEvent, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT request_id, subject_id, stage, timestamp, outcome, outcome_summary
		 FROM stage_events WHERE request_id = ? ORDER BY id`,
		string(requestID),
	)
	if err != nil {
		return nil, fmt.Errorf("querying stage events: %w", err)
	}
	defer rows.Close()

	var events []core.StageEvent
	for rows.Next() {
		var ev core.StageEvent
		var reqID, subject, outcome, ts string
		if err := rows.Scan(&reqID, &subject, &ev.Stage, &ts, &outcome, &ev.Summary); err != nil {
			return nil, fmt.Errorf("scanning stage event: %w", err)
		}
		ev.RequestID = core.RequestID(reqID)
		ev.Subject = core.SubjectID(subject)
		ev.Outcome = core.StageOutcome(outcome)
		if parsed, perr := time.Parse(time.RFC3339Nano, ts); perr == nil {
			ev.Timestamp = parsed
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}
