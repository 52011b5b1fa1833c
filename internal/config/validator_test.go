package config

import (
	"strings"
	"testing"
	"time"
)

func validConfig() *Config {
	return Default()
}

func TestValidate_Defaults(t *testing.T) {
	if err := NewValidator().Validate(validConfig()); err != nil {
		t.Errorf("default config should validate, got: %v", err)
	}
}

func TestValidate_BudgetsExceedDeadline(t *testing.T) {
	cfg := validConfig()
	cfg.Pipeline.Deadline = 5 * time.Second
	cfg.Pipeline.GateBudget = 3 * time.Second
	cfg.Pipeline.FanOutBudget = 4 * time.Second

	err := NewValidator().Validate(cfg)
	if err == nil {
		t.Fatal("expected validation error for budgets exceeding deadline")
	}
	if !strings.Contains(err.Error(), "pipeline.deadline") {
		t.Errorf("error should name pipeline.deadline: %v", err)
	}
}

func TestValidate_NoFastAnalyzers(t *testing.T) {
	cfg := validConfig()
	cfg.Pipeline.FastAnalyzers = nil
	if err := NewValidator().Validate(cfg); err == nil {
		t.Error("expected error for empty fast analyzer list")
	}
}

func TestValidate_DuplicateAnalyzer(t *testing.T) {
	cfg := validConfig()
	cfg.Pipeline.ExpensiveAnalyzers = append(cfg.Pipeline.ExpensiveAnalyzers, "threat")
	if err := NewValidator().Validate(cfg); err == nil {
		t.Error("expected error for analyzer in both rosters")
	}
}

func TestValidate_MinSuccessfulTooHigh(t *testing.T) {
	cfg := validConfig()
	cfg.Pipeline.MinSuccessfulAnalyzers = len(cfg.Pipeline.ExpensiveAnalyzers) + 1
	if err := NewValidator().Validate(cfg); err == nil {
		t.Error("expected error for min_successful above roster size")
	}
}

func TestValidate_ConfidenceFloorRange(t *testing.T) {
	cfg := validConfig()
	cfg.Escalation.HighConfidenceFloor = 1.5
	if err := NewValidator().Validate(cfg); err == nil {
		t.Error("expected error for confidence floor above 1")
	}
}

func TestValidate_BadAuditBackend(t *testing.T) {
	cfg := validConfig()
	cfg.Audit.Backend = "kafka"
	if err := NewValidator().Validate(cfg); err == nil {
		t.Error("expected error for unsupported audit backend")
	}
}

func TestValidate_CollectsMultiple(t *testing.T) {
	cfg := validConfig()
	cfg.Log.Level = "verbose"
	cfg.Audit.Backend = "kafka"

	v := NewValidator()
	if err := v.Validate(cfg); err == nil {
		t.Fatal("expected validation errors")
	}
	if len(v.Errors()) < 2 {
		t.Errorf("expected both errors collected, got %d", len(v.Errors()))
	}
}
