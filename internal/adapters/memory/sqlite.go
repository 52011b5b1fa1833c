// Package memory provides the memory/personalization collaborator.
package memory

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/guardrail-labs/sentinel/internal/core"
)

const recentInteractionLimit = 10

const schema = `
CREATE TABLE IF NOT EXISTS subject_prefs (
    subject_id TEXT PRIMARY KEY,
    preferences TEXT NOT NULL DEFAULT '{}'
);

CREATE TABLE IF NOT EXISTS interactions (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    subject_id TEXT NOT NULL,
    request_id TEXT NOT NULL,
    summary TEXT NOT NULL,
    severity TEXT NOT NULL,
    escalated INTEGER NOT NULL,
    created_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_interactions_subject ON interactions(subject_id, id DESC);
`

// SQLiteStore implements core.MemoryStore on SQLite. Writes for the same
// subject are serialized by a per-subject lock, which gives the pipeline
// its read-then-write consistency guarantee.
type SQLiteStore struct {
	db *sql.DB

	mu    sync.Mutex
	locks map[core.SubjectID]*sync.Mutex
}

// NewSQLiteStore opens (or creates) the memory database.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o750); err != nil {
		return nil, fmt.Errorf("creating memory directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("opening memory database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating memory schema: %w", err)
	}

	return &SQLiteStore{
		db:    db,
		locks: make(map[core.SubjectID]*sync.Mutex),
	}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) subjectLock(subject core.SubjectID) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[subject]
	if !ok {
		l = &sync.Mutex{}
		s.locks[subject] = l
	}
	return l
}

// FetchContext loads preferences and recent interaction summaries.
func (s *SQLiteStore) FetchContext(ctx context.Context, subject core.SubjectID) (core.SubjectContext, error) {
	out := core.SubjectContext{Subject: subject}

	var prefsJSON string
	err := s.db.QueryRowContext(ctx,
		"SELECT preferences FROM subject_prefs WHERE subject_id = ?", string(subject),
	).Scan(&prefsJSON)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		// Unknown subject: empty context, not an error.
	case err != nil:
		return out, core.ErrMemory("FETCH_FAILED", "loading preferences").WithCause(err)
	default:
		if err := json.Unmarshal([]byte(prefsJSON), &out.Preferences); err != nil {
			return out, core.ErrMemory("FETCH_FAILED", "decoding preferences").WithCause(err)
		}
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT summary FROM interactions WHERE subject_id = ? ORDER BY id DESC LIMIT ?",
		string(subject), recentInteractionLimit,
	)
	if err != nil {
		return out, core.ErrMemory("FETCH_FAILED", "loading interactions").WithCause(err)
	}
	defer rows.Close()

	for rows.Next() {
		var summary string
		if err := rows.Scan(&summary); err != nil {
			return out, core.ErrMemory("FETCH_FAILED", "scanning interaction").WithCause(err)
		}
		out.RecentInteractions = append(out.RecentInteractions, summary)
	}
	return out, rows.Err()
}

// Store appends an interaction record for the subject.
func (s *SQLiteStore) Store(ctx context.Context, subject core.SubjectID, rec core.InteractionRecord) error {
	l := s.subjectLock(subject)
	l.Lock()
	defer l.Unlock()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO interactions (subject_id, request_id, summary, severity, escalated, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		string(subject),
		string(rec.RequestID),
		rec.Summary,
		string(rec.Severity),
		boolToInt(rec.Escalated),
		rec.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return core.ErrMemory("STORE_FAILED", "inserting interaction").WithCause(err)
	}
	return nil
}

// SetPreferences replaces a subject's personalization preferences.
func (s *SQLiteStore) SetPreferences(ctx context.Context, subject core.SubjectID, prefs map[string]string) error {
	l := s.subjectLock(subject)
	l.Lock()
	defer l.Unlock()

	data, err := json.Marshal(prefs)
	if err != nil {
		return core.ErrMemory("STORE_FAILED", "encoding preferences").WithCause(err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO subject_prefs (subject_id, preferences) VALUES (?, ?)
		 ON CONFLICT(subject_id) DO UPDATE SET preferences = excluded.preferences`,
		string(subject), string(data),
	)
	if err != nil {
		return core.ErrMemory("STORE_FAILED", "saving preferences").WithCause(err)
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
