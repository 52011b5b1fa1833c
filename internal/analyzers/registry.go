package analyzers

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/guardrail-labs/sentinel/internal/core"
)

// Registry maps analyzer names to instances. Rosters in the pipeline
// config are resolved against it at startup.
type Registry struct {
	mu        sync.RWMutex
	analyzers map[string]core.Analyzer
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		analyzers: make(map[string]core.Analyzer),
	}
}

// NewBuiltinRegistry creates a registry with all built-in analyzers,
// using the given rule set (nil means defaults).
func NewBuiltinRegistry(rules *RuleSet) *Registry {
	if rules == nil {
		rules = DefaultRules()
	}
	r := NewRegistry()
	for _, a := range []core.Analyzer{
		NewThreat(rules),
		NewCrisis(rules),
		NewBehavioral(rules),
		NewForensic(rules),
		NewReasoning(rules),
	} {
		r.Register(a)
	}
	return r
}

// Register adds or replaces an analyzer.
func (r *Registry) Register(a core.Analyzer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.analyzers[a.Name()] = a
}

// Get returns an analyzer by name.
func (r *Registry) Get(name string) (core.Analyzer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.analyzers[name]
	if !ok {
		return nil, fmt.Errorf("unknown analyzer: %s", name)
	}
	return a, nil
}

// Resolve maps an ordered name list to analyzers, preserving order and
// rejecting analyzers of the wrong cost class.
func (r *Registry) Resolve(names []string, cost core.CostClass) ([]core.Analyzer, error) {
	out := make([]core.Analyzer, 0, len(names))
	for _, name := range names {
		a, err := r.Get(name)
		if err != nil {
			return nil, err
		}
		if a.CostClass() != cost {
			return nil, fmt.Errorf("analyzer %s is %s, roster expects %s", name, a.CostClass(), cost)
		}
		out = append(out, a)
	}
	return out, nil
}

// List returns registered analyzer names, sorted.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.analyzers))
	for name := range r.analyzers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ApplyBudgets overrides per-analyzer budgets by name. Unknown names are
// ignored so a config can carry overrides for analyzers that are not
// registered in this deployment.
func (r *Registry) ApplyBudgets(budgets map[string]time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for name, budget := range budgets {
		if ka, ok := r.analyzers[name].(*keywordAnalyzer); ok && budget > 0 {
			ka.budget = budget
		}
	}
}
