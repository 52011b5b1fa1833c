package config

import "time"

// Default stage budgets. The gate and fan-out sub-budgets must fit inside
// the per-request deadline with room for synthesis and audit.
const (
	DefaultDeadline     = 10 * time.Second
	DefaultGateBudget   = 2 * time.Second
	DefaultFanOutBudget = 6 * time.Second

	DefaultMaxConcurrentAnalyzers = 8
	DefaultMinSuccessfulAnalyzers = 1

	DefaultHighConfidenceFloor = 0.6
)

// Default analyzer rosters, in declared run order for the fast list.
var (
	DefaultFastAnalyzers      = []string{"threat", "crisis"}
	DefaultExpensiveAnalyzers = []string{"behavioral", "forensic", "reasoning"}
)

// Default returns a fully populated default configuration.
func Default() *Config {
	return &Config{
		Log: LogConfig{
			Level:  "info",
			Format: "auto",
		},
		Pipeline: PipelineConfig{
			Deadline:               DefaultDeadline,
			GateBudget:             DefaultGateBudget,
			FanOutBudget:           DefaultFanOutBudget,
			FastAnalyzers:          append([]string(nil), DefaultFastAnalyzers...),
			ExpensiveAnalyzers:     append([]string(nil), DefaultExpensiveAnalyzers...),
			MaxConcurrentAnalyzers: DefaultMaxConcurrentAnalyzers,
			MinSuccessfulAnalyzers: DefaultMinSuccessfulAnalyzers,
		},
		Escalation: EscalationConfig{
			HighConfidenceFloor: DefaultHighConfidenceFloor,
		},
		Audit: AuditConfig{
			Backend: "sqlite",
			Path:    ".sentinel/audit.db",
		},
		Memory: MemoryConfig{
			Path: ".sentinel/memory.db",
		},
		Auth: AuthConfig{
			Tokens: map[string]string{},
		},
	}
}
