package cmd

import (
	"fmt"
	"os"

	"github.com/guardrail-labs/sentinel/internal/adapters/audit"
	"github.com/guardrail-labs/sentinel/internal/adapters/auth"
	"github.com/guardrail-labs/sentinel/internal/adapters/memory"
	"github.com/guardrail-labs/sentinel/internal/analyzers"
	"github.com/guardrail-labs/sentinel/internal/config"
	"github.com/guardrail-labs/sentinel/internal/core"
	"github.com/guardrail-labs/sentinel/internal/events"
	"github.com/guardrail-labs/sentinel/internal/logging"
	"github.com/guardrail-labs/sentinel/internal/service"
)

// app bundles the wired pipeline with the resources it owns.
type app struct {
	pipeline *service.Pipeline
	bus      *events.Bus
	logger   *logging.Logger
	policy   *service.Policy

	auditStore audit.Store
	memStore   *memory.SQLiteStore
	watcher    *config.Watcher
}

// buildApp wires the full pipeline from configuration.
func buildApp(cfg *config.Config) (*app, error) {
	logger := logging.New(logging.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: os.Stderr,
	})

	rules := analyzers.DefaultRules()
	if cfg.Analyzers.RulesPath != "" {
		loaded, err := analyzers.LoadRules(cfg.Analyzers.RulesPath)
		if err != nil {
			return nil, fmt.Errorf("loading analyzer rules: %w", err)
		}
		rules = loaded
	}

	registry := analyzers.NewBuiltinRegistry(rules)
	registry.ApplyBudgets(cfg.Analyzers.Budgets)

	fast, err := registry.Resolve(cfg.Pipeline.FastAnalyzers, core.CostFast)
	if err != nil {
		return nil, fmt.Errorf("resolving fast analyzers: %w", err)
	}
	expensive, err := registry.Resolve(cfg.Pipeline.ExpensiveAnalyzers, core.CostExpensive)
	if err != nil {
		return nil, fmt.Errorf("resolving expensive analyzers: %w", err)
	}

	auditStore, err := audit.New(cfg.Audit.Backend, cfg.Audit.Path)
	if err != nil {
		return nil, fmt.Errorf("opening audit store: %w", err)
	}

	memStore, err := memory.NewSQLiteStore(cfg.Memory.Path)
	if err != nil {
		_ = auditStore.Close()
		return nil, fmt.Errorf("opening memory store: %w", err)
	}

	tokens := make(map[string]core.SubjectID, len(cfg.Auth.Tokens))
	for token, subject := range cfg.Auth.Tokens {
		tokens[token] = core.SubjectID(subject)
	}
	authenticator := auth.NewStaticAuthenticator(tokens)

	bus := events.NewBus(0)
	recorder := service.NewRecorder(auditStore, bus, logger)

	policy := service.NewPolicy(cfg.Escalation.HighConfidenceFloor)
	pool := service.NewWorkerPool(cfg.Pipeline.MaxConcurrentAnalyzers)
	gate := service.NewRiskGate(policy, cfg.Pipeline.GateBudget, logger)
	fanout := service.NewFanOut(pool, cfg.Pipeline.FanOutBudget, logger)

	all := make([]core.Analyzer, 0, len(fast)+len(expensive))
	all = append(all, fast...)
	all = append(all, expensive...)
	aggregator := service.NewAggregator(
		service.WeightsFromAnalyzers(all...), cfg.Pipeline.MinSuccessfulAnalyzers)

	pipeline := service.NewPipeline(
		service.PipelineConfig{Deadline: cfg.Pipeline.Deadline},
		authenticator,
		memStore,
		recorder,
		gate,
		fanout,
		aggregator,
		policy,
		service.NewSynthesizer(),
		fast,
		expensive,
		logger,
	)

	a := &app{
		pipeline:   pipeline,
		bus:        bus,
		logger:     logger,
		policy:     policy,
		auditStore: auditStore,
		memStore:   memStore,
	}

	// Hot-swap escalation thresholds when an explicit config file changes.
	if cfgFile != "" {
		a.watcher = config.NewWatcher(cfgFile, func(ec config.EscalationConfig) {
			policy.SetThresholds(ec.HighConfidenceFloor)
			logger.Info("escalation thresholds reloaded",
				"high_confidence_floor", ec.HighConfidenceFloor)
		})
		if err := a.watcher.Start(); err != nil {
			logger.Warn("config watcher unavailable", "error", err)
			a.watcher = nil
		}
	}

	return a, nil
}

// Close releases stores and background watchers.
func (a *app) Close() {
	if a.watcher != nil {
		_ = a.watcher.Stop()
	}
	a.bus.Close()
	if err := a.memStore.Close(); err != nil {
		a.logger.Warn("closing memory store", "error", err)
	}
	if err := a.auditStore.Close(); err != nil {
		a.logger.Warn("closing audit store", "error", err)
	}
}
