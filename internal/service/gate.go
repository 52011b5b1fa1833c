package service

import (
	"context"
	"fmt"
	"time"

	"github.com/guardrail-labs/sentinel/internal/core"
	"github.com/guardrail-labs/sentinel/internal/logging"
)

// RiskGate runs the ordered fast analyzers strictly sequentially. Fast
// checks are cheap enough that sequential execution costs negligible
// latency, and it is what allows true early exit: after each finding the
// partial result goes to the escalation policy, and a blocking decision
// returns immediately without running the remaining analyzers.
type RiskGate struct {
	policy *Policy
	budget time.Duration
	logger *logging.Logger
}

// GateResult is the outcome of one risk-gate pass.
type GateResult struct {
	// Findings holds one finding per fast analyzer that ran, in declared
	// order.
	Findings []core.Finding
	// Decision is the blocking decision that stopped the gate, or the
	// last non-blocking decision evaluated.
	Decision core.EscalationDecision
	// Blocked reports whether the gate short-circuited.
	Blocked  bool
	Duration time.Duration
}

// NewRiskGate creates a risk gate with the given sub-budget.
func NewRiskGate(policy *Policy, budget time.Duration, logger *logging.Logger) *RiskGate {
	return &RiskGate{
		policy: policy,
		budget: budget,
		logger: logger,
	}
}

// Run executes the fast analyzers against the request. The first
// blocking decision, in declared order, wins; remaining analyzers do not
// run.
func (g *RiskGate) Run(ctx context.Context, view core.RequestView, fast []core.Analyzer) GateResult {
	gctx, cancel := context.WithTimeout(ctx, g.budget)
	defer cancel()

	start := time.Now()
	log := g.logger.WithRequest(string(view.ID)).WithStage(core.StageRiskGate)

	result := GateResult{Findings: make([]core.Finding, 0, len(fast))}
	for _, a := range fast {
		finding := runAnalyzer(gctx, a, view)
		result.Findings = append(result.Findings, finding)

		if finding.Failed() {
			log.Warn("fast analyzer failed", "analyzer", a.Name(), "error", finding.ErrMessage)
			continue
		}

		// Each partial result is checked on its own: fast findings are
		// not yet blended, so one critical signal short-circuits no
		// matter what ran before it. Degraded is false here; gate
		// failures count toward the final aggregate instead.
		decision := g.policy.Decide(finding.Severity, finding.Confidence, false)
		result.Decision = decision
		if decision.Blocking() {
			result.Blocked = true
			result.Duration = time.Since(start)
			log.Info("risk gate short-circuit",
				"analyzer", a.Name(),
				"severity", string(finding.Severity),
				"level", string(decision.Level),
			)
			return result
		}
	}

	result.Duration = time.Since(start)
	log.Debug("risk gate passed", "analyzers", len(result.Findings),
		"duration", result.Duration.String())
	return result
}

// Summary renders a redacted one-line description for audit.
func (r GateResult) Summary() string {
	if r.Blocked {
		return fmt.Sprintf("blocked after %d fast analyzers: %s", len(r.Findings), r.Decision.Reason)
	}
	return fmt.Sprintf("passed %d fast analyzers", len(r.Findings))
}
