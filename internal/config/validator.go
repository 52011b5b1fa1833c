package config

import (
	"fmt"
	"strings"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("config validation: %s: %s (got: %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors collects multiple validation errors.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// HasErrors returns true if there are any validation errors.
func (e ValidationErrors) HasErrors() bool {
	return len(e) > 0
}

// Validator validates configuration.
type Validator struct {
	errors ValidationErrors
}

// NewValidator creates a new validator.
func NewValidator() *Validator {
	return &Validator{
		errors: make(ValidationErrors, 0),
	}
}

// Validate validates the entire configuration.
func (v *Validator) Validate(cfg *Config) error {
	v.validateLog(&cfg.Log)
	v.validatePipeline(&cfg.Pipeline)
	v.validateEscalation(&cfg.Escalation)
	v.validateAudit(&cfg.Audit)

	if len(v.errors) > 0 {
		return v.errors
	}
	return nil
}

// Errors returns the collected validation errors.
func (v *Validator) Errors() ValidationErrors {
	return v.errors
}

func (v *Validator) addError(field string, value interface{}, message string) {
	v.errors = append(v.errors, ValidationError{Field: field, Value: value, Message: message})
}

func (v *Validator) validateLog(cfg *LogConfig) {
	switch cfg.Level {
	case "debug", "info", "warn", "error":
	default:
		v.addError("log.level", cfg.Level, "must be one of debug, info, warn, error")
	}
	switch cfg.Format {
	case "auto", "text", "json":
	default:
		v.addError("log.format", cfg.Format, "must be one of auto, text, json")
	}
}

func (v *Validator) validatePipeline(cfg *PipelineConfig) {
	if cfg.Deadline <= 0 {
		v.addError("pipeline.deadline", cfg.Deadline, "must be positive")
	}
	if cfg.GateBudget <= 0 {
		v.addError("pipeline.gate_budget", cfg.GateBudget, "must be positive")
	}
	if cfg.FanOutBudget <= 0 {
		v.addError("pipeline.fanout_budget", cfg.FanOutBudget, "must be positive")
	}
	if cfg.Deadline > 0 && cfg.GateBudget+cfg.FanOutBudget > cfg.Deadline {
		v.addError("pipeline.deadline", cfg.Deadline,
			"gate and fan-out budgets must fit inside the request deadline")
	}
	if len(cfg.FastAnalyzers) == 0 {
		v.addError("pipeline.fast_analyzers", cfg.FastAnalyzers, "at least one fast analyzer is required")
	}
	if cfg.MaxConcurrentAnalyzers < 1 {
		v.addError("pipeline.max_concurrent_analyzers", cfg.MaxConcurrentAnalyzers, "must be at least 1")
	}
	if cfg.MinSuccessfulAnalyzers < 0 {
		v.addError("pipeline.min_successful_analyzers", cfg.MinSuccessfulAnalyzers, "must not be negative")
	}
	if cfg.MinSuccessfulAnalyzers > len(cfg.ExpensiveAnalyzers) && len(cfg.ExpensiveAnalyzers) > 0 {
		v.addError("pipeline.min_successful_analyzers", cfg.MinSuccessfulAnalyzers,
			"cannot exceed the number of expensive analyzers")
	}
	seen := map[string]bool{}
	for _, name := range append(append([]string{}, cfg.FastAnalyzers...), cfg.ExpensiveAnalyzers...) {
		if seen[name] {
			v.addError("pipeline", name, "analyzer listed more than once")
		}
		seen[name] = true
	}
}

func (v *Validator) validateEscalation(cfg *EscalationConfig) {
	if cfg.HighConfidenceFloor < 0 || cfg.HighConfidenceFloor > 1 {
		v.addError("escalation.high_confidence_floor", cfg.HighConfidenceFloor, "must be within [0,1]")
	}
}

func (v *Validator) validateAudit(cfg *AuditConfig) {
	switch cfg.Backend {
	case "sqlite", "jsonl":
	default:
		v.addError("audit.backend", cfg.Backend, "must be sqlite or jsonl")
	}
	if cfg.Path == "" {
		v.addError("audit.path", cfg.Path, "must not be empty")
	}
}
