package service

import (
	"fmt"
	"sync"

	"github.com/guardrail-labs/sentinel/internal/core"
)

// Emergency requires near-certain critical findings; plain critical stays
// at intervene so false positives cost a blocked response, not an
// emergency dispatch.
const emergencyConfidenceFloor = 0.95

// Policy maps an aggregate risk picture to an escalation decision. Decide
// is pure; the thresholds are the only state and may be hot-swapped by
// the config watcher.
type Policy struct {
	mu sync.RWMutex
	// highConfidenceFloor gates high severity between monitor and
	// intervene.
	highConfidenceFloor float64
}

// NewPolicy creates a policy with the given high-severity confidence
// floor.
func NewPolicy(highConfidenceFloor float64) *Policy {
	return &Policy{highConfidenceFloor: highConfidenceFloor}
}

// SetThresholds swaps the tunable thresholds. Called by the config
// watcher on file change.
func (p *Policy) SetThresholds(highConfidenceFloor float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.highConfidenceFloor = highConfidenceFloor
}

// HighConfidenceFloor returns the current floor.
func (p *Policy) HighConfidenceFloor() float64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.highConfidenceFloor
}

// Decide maps (severity, confidence, degraded) to a decision.
//
// Critical severity always escalates to at least intervene regardless of
// confidence: a false positive is preferred over a missed critical
// signal. Degraded results at medium or above are never downgraded below
// monitor.
func (p *Policy) Decide(severity core.Severity, confidence float64, degraded bool) core.EscalationDecision {
	floor := p.HighConfidenceFloor()

	var level core.EscalationLevel
	var reason string

	switch {
	case severity == core.SeverityCritical && confidence >= emergencyConfidenceFloor && !degraded:
		level = core.EscalationEmergency
		reason = "critical severity with near-certain confidence"
	case severity == core.SeverityCritical:
		level = core.EscalationIntervene
		reason = "critical severity escalates regardless of confidence"
	case severity == core.SeverityHigh && confidence >= floor:
		level = core.EscalationIntervene
		reason = fmt.Sprintf("high severity at confidence %.2f (floor %.2f)", confidence, floor)
	case severity == core.SeverityHigh:
		level = core.EscalationMonitor
		reason = fmt.Sprintf("high severity below confidence floor %.2f", floor)
	case severity == core.SeverityMedium:
		level = core.EscalationMonitor
		reason = "medium severity warrants monitoring"
	default:
		level = core.EscalationNone
		reason = "no significant risk signal"
	}

	// Incomplete analyzer data at medium or above never drops below
	// monitor; an unknown result is by definition degraded.
	if degraded && !level.AtLeast(core.EscalationMonitor) {
		if severity.AtLeast(core.SeverityMedium) || severity == core.SeverityUnknown {
			level = core.EscalationMonitor
			reason = "degraded result held at monitor"
		}
	}

	return core.EscalationDecision{
		Level:                level,
		RequiredActions:      requiredActions(level),
		BlocksNormalResponse: level.AtLeast(core.EscalationIntervene),
		Reason:               reason,
	}
}

func requiredActions(level core.EscalationLevel) []string {
	switch level {
	case core.EscalationMonitor:
		return []string{"flag_for_review"}
	case core.EscalationIntervene:
		return []string{"notify_escalation_team", "provide_crisis_resources"}
	case core.EscalationEmergency:
		return []string{"notify_escalation_team", "contact_emergency_services", "provide_crisis_resources"}
	default:
		return nil
	}
}
