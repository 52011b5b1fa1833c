package audit

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/renameio/v2"

	"github.com/guardrail-labs/sentinel/internal/core"
)

// JSONLStore implements core.AuditStore as an append-only JSON-lines
// file. Zero-dependency fallback for deployments without SQLite access
// to local disk semantics.
type JSONLStore struct {
	path string
	mu   sync.Mutex
	f    *os.File
}

// NewJSONLStore opens (or creates) the audit log file.
func NewJSONLStore(path string) (*JSONLStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("creating audit directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o640)
	if err != nil {
		return nil, fmt.Errorf("opening audit log: %w", err)
	}
	return &JSONLStore{path: path, f: f}, nil
}

// Append writes one event as a JSON line.
func (s *JSONLStore) Append(ctx context.Context, ev core.StageEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	line, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encoding stage event: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.f.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("appending stage event: %w", err)
	}
	return nil
}

// Close syncs and closes the log file.
func (s *JSONLStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.f.Sync(); err != nil {
		_ = s.f.Close()
		return err
	}
	return s.f.Close()
}

// Rotate atomically moves the current log aside and starts a fresh one.
// The rotated file keeps every line it had; nothing is rewritten.
func (s *JSONLStore) Rotate(archivePath string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.f.Sync(); err != nil {
		return fmt.Errorf("syncing before rotate: %w", err)
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		return fmt.Errorf("reading audit log: %w", err)
	}
	// Archive lands fully written or not at all.
	if err := renameio.WriteFile(archivePath, data, 0o640); err != nil {
		return fmt.Errorf("writing archive: %w", err)
	}

	if err := s.f.Close(); err != nil {
		return fmt.Errorf("closing audit log: %w", err)
	}
	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o640)
	if err != nil {
		return fmt.Errorf("reopening audit log: %w", err)
	}
	s.f = f
	return nil
}

// ReadAll returns every event in the log in append order.
func (s *JSONLStore) ReadAll() ([]core.StageEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("opening audit log: %w", err)
	}
	defer f.Close()

	var events []core.StageEvent
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var ev core.StageEvent
		if err := json.Unmarshal(scanner.Bytes(), &ev); err != nil {
			return nil, fmt.Errorf("decoding stage event: %w", err)
		}
		events = append(events, ev)
	}
	return events, scanner.Err()
}
