package memory

import (
	"context"
	"sync"

	"github.com/guardrail-labs/sentinel/internal/core"
)

// InMemoryStore is a map-backed core.MemoryStore for tests and ephemeral runs.
type InMemoryStore struct {
	mu      sync.RWMutex
	prefs   map[core.SubjectID]map[string]string
	history map[core.SubjectID][]core.InteractionRecord
}

// NewInMemoryStore returns an empty store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		prefs:   make(map[core.SubjectID]map[string]string),
		history: make(map[core.SubjectID][]core.InteractionRecord),
	}
}

// FetchContext returns the subject's preferences and most recent summaries.
func (s *InMemoryStore) FetchContext(_ context.Context, subject core.SubjectID) (core.SubjectContext, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := core.SubjectContext{Subject: subject}
	if prefs, ok := s.prefs[subject]; ok {
		out.Preferences = make(map[string]string, len(prefs))
		for k, v := range prefs {
			out.Preferences[k] = v
		}
	}
	recs := s.history[subject]
	for i := len(recs) - 1; i >= 0 && len(out.RecentInteractions) < recentInteractionLimit; i-- {
		out.RecentInteractions = append(out.RecentInteractions, recs[i].Summary)
	}
	return out, nil
}

// Store appends an interaction record.
func (s *InMemoryStore) Store(_ context.Context, subject core.SubjectID, rec core.InteractionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.history[subject] = append(s.history[subject], rec)
	return nil
}

// SetPreferences replaces the subject's preferences.
func (s *InMemoryStore) SetPreferences(_ context.Context, subject core.SubjectID, prefs map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := make(map[string]string, len(prefs))
	for k, v := range prefs {
		cp[k] = v
	}
	s.prefs[subject] = cp
	return nil
}

// History returns a copy of the subject's stored records.
func (s *InMemoryStore) History(subject core.SubjectID) []core.InteractionRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]core.InteractionRecord, len(s.history[subject]))
	copy(out, s.history[subject])
	return out
}
