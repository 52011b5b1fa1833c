package service

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/guardrail-labs/sentinel/internal/core"
)

// stubAnalyzer is a scriptable analyzer for pipeline tests.
type stubAnalyzer struct {
	name    string
	cost    core.CostClass
	weight  float64
	budget  time.Duration
	fn      func(ctx context.Context, view core.RequestView) (core.Finding, error)
	invoked atomic.Int32
}

func (s *stubAnalyzer) Name() string               { return s.name }
func (s *stubAnalyzer) CostClass() core.CostClass  { return s.cost }
func (s *stubAnalyzer) ReliabilityWeight() float64 { return s.weight }

func (s *stubAnalyzer) Budget() time.Duration {
	if s.budget > 0 {
		return s.budget
	}
	return time.Second
}

func (s *stubAnalyzer) Analyze(ctx context.Context, view core.RequestView) (core.Finding, error) {
	s.invoked.Add(1)
	if s.fn != nil {
		return s.fn(ctx, view)
	}
	return core.Finding{Severity: core.SeverityNone, Confidence: 0.5}, nil
}

func (s *stubAnalyzer) invocations() int {
	return int(s.invoked.Load())
}

// scoring returns a stub that always reports the given score.
func scoring(name string, cost core.CostClass, weight float64, severity core.Severity, confidence float64) *stubAnalyzer {
	return &stubAnalyzer{
		name:   name,
		cost:   cost,
		weight: weight,
		fn: func(context.Context, core.RequestView) (core.Finding, error) {
			return core.Finding{
				Severity:   severity,
				Confidence: confidence,
				Evidence:   []string{name + " signal"},
			}, nil
		},
	}
}

// failing returns a stub that always errors.
func failing(name string, cost core.CostClass, err error) *stubAnalyzer {
	return &stubAnalyzer{
		name:   name,
		cost:   cost,
		weight: 1.0,
		fn: func(context.Context, core.RequestView) (core.Finding, error) {
			return core.Finding{}, err
		},
	}
}

// hanging returns a stub that blocks until its context is cancelled.
func panicking(name string, cost core.CostClass) *stubAnalyzer {
	return &stubAnalyzer{
		name:   name,
		cost:   cost,
		weight: 1.0,
		fn: func(context.Context, core.RequestView) (core.Finding, error) {
			panic("analyzer blew up")
		},
	}
}

func hanging(name string, cost core.CostClass, budget time.Duration) *stubAnalyzer {
	return &stubAnalyzer{
		name:   name,
		cost:   cost,
		weight: 1.0,
		budget: budget,
		fn: func(ctx context.Context, _ core.RequestView) (core.Finding, error) {
			<-ctx.Done()
			return core.Finding{}, ctx.Err()
		},
	}
}

// stubAuth authenticates any token it knows about.
type stubAuth struct {
	subjects map[string]core.SubjectID
}

func (a *stubAuth) Authenticate(_ context.Context, creds core.Credentials) (core.SubjectID, error) {
	if s, ok := a.subjects[creds.Token]; ok {
		return s, nil
	}
	return "", core.ErrAuth("UNKNOWN_TOKEN", "token not recognized")
}

// stubMemory is an in-memory MemoryStore with scriptable failures.
type stubMemory struct {
	mu       sync.Mutex
	contexts map[core.SubjectID]core.SubjectContext
	stored   []core.InteractionRecord
	fetchErr error
	storeErr error
}

func newStubMemory() *stubMemory {
	return &stubMemory{contexts: map[core.SubjectID]core.SubjectContext{}}
}

func (m *stubMemory) FetchContext(_ context.Context, subject core.SubjectID) (core.SubjectContext, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fetchErr != nil {
		return core.SubjectContext{}, m.fetchErr
	}
	return m.contexts[subject], nil
}

func (m *stubMemory) Store(_ context.Context, _ core.SubjectID, rec core.InteractionRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.storeErr != nil {
		return m.storeErr
	}
	m.stored = append(m.stored, rec)
	return nil
}

// stubAudit collects appended events; optionally fails.
type stubAudit struct {
	mu        sync.Mutex
	events    []core.StageEvent
	appendErr error
}

func (a *stubAudit) Append(_ context.Context, ev core.StageEvent) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.appendErr != nil {
		return a.appendErr
	}
	a.events = append(a.events, ev)
	return nil
}

func (a *stubAudit) event(stage string) (core.StageEvent, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, ev := range a.events {
		if ev.Stage == stage {
			return ev, true
		}
	}
	return core.StageEvent{}, false
}

func (a *stubAudit) stages() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]string, len(a.events))
	for i, ev := range a.events {
		out[i] = ev.Stage
	}
	return out
}
