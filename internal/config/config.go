package config

import "time"

// Config holds all application configuration.
type Config struct {
	Log        LogConfig        `mapstructure:"log"`
	Pipeline   PipelineConfig   `mapstructure:"pipeline"`
	Escalation EscalationConfig `mapstructure:"escalation"`
	Audit      AuditConfig      `mapstructure:"audit"`
	Memory     MemoryConfig     `mapstructure:"memory"`
	Auth       AuthConfig       `mapstructure:"auth"`
	Analyzers  AnalyzersConfig  `mapstructure:"analyzers"`
}

// LogConfig configures logging behavior.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// PipelineConfig configures the orchestrator and its stages.
type PipelineConfig struct {
	// Deadline is the single per-request budget set at ingress.
	Deadline time.Duration `mapstructure:"deadline"`
	// GateBudget is the risk-gate sub-budget of the deadline.
	GateBudget time.Duration `mapstructure:"gate_budget"`
	// FanOutBudget is the fan-out sub-budget of the deadline.
	FanOutBudget time.Duration `mapstructure:"fanout_budget"`

	// FastAnalyzers run sequentially in the risk gate, in this order.
	FastAnalyzers []string `mapstructure:"fast_analyzers"`
	// ExpensiveAnalyzers run concurrently in the fan-out stage.
	ExpensiveAnalyzers []string `mapstructure:"expensive_analyzers"`

	// MaxConcurrentAnalyzers bounds in-flight expensive analyzers across
	// all concurrent requests.
	MaxConcurrentAnalyzers int `mapstructure:"max_concurrent_analyzers"`
	// MinSuccessfulAnalyzers forces a degraded result when fewer fan-out
	// analyzers succeed.
	MinSuccessfulAnalyzers int `mapstructure:"min_successful_analyzers"`
}

// EscalationConfig configures the escalation policy thresholds.
type EscalationConfig struct {
	// HighConfidenceFloor is the overall-confidence floor at which high
	// severity escalates to intervene rather than monitor.
	HighConfidenceFloor float64 `mapstructure:"high_confidence_floor"`
}

// AuditConfig configures the audit store.
type AuditConfig struct {
	Backend string `mapstructure:"backend"` // sqlite | jsonl
	Path    string `mapstructure:"path"`
}

// MemoryConfig configures the memory/personalization store.
type MemoryConfig struct {
	Path string `mapstructure:"path"`
}

// AuthConfig configures the static token authenticator.
type AuthConfig struct {
	// Tokens maps ingress tokens to subject IDs.
	Tokens map[string]string `mapstructure:"tokens"`
}

// AnalyzersConfig configures the built-in analyzers.
type AnalyzersConfig struct {
	// RulesPath points to the YAML rule tables for keyword analyzers.
	RulesPath string `mapstructure:"rules_path"`
	// Budgets overrides per-analyzer time budgets by name.
	Budgets map[string]time.Duration `mapstructure:"budgets"`
}
