package core

import "time"

// Stage names recorded on the audit trail, in pipeline order.
const (
	StageIngress     = "ingress"
	StageAuth        = "auth"
	StageRiskGate    = "risk_gate"
	StageMemoryFetch = "memory_fetch"
	StageFanOut      = "fan_out"
	StageAggregate   = "aggregate"
	StageEscalation  = "escalation"
	StageSynthesize  = "synthesize"
	StageComplete    = "complete"
)

// StageOutcome summarizes how a stage ended.
type StageOutcome string

const (
	OutcomeOK        StageOutcome = "ok"
	OutcomeBlocked   StageOutcome = "blocked"
	OutcomeRejected  StageOutcome = "rejected"
	OutcomeDegraded  StageOutcome = "degraded"
	OutcomeTimedOut  StageOutcome = "timed_out"
	OutcomeAuditWarn StageOutcome = "audit_warn"
)

// StageEvent is one immutable audit record of a stage transition.
// Summary must already be redacted; it is persisted verbatim.
type StageEvent struct {
	RequestID RequestID    `json:"request_id"`
	Subject   SubjectID    `json:"subject_id"`
	Stage     string       `json:"stage"`
	Timestamp time.Time    `json:"timestamp"`
	Outcome   StageOutcome `json:"outcome"`
	Summary   string       `json:"outcome_summary"`
}

// NewStageEvent builds a stage event for a request.
func NewStageEvent(r *RequestContext, stage string, outcome StageOutcome, summary string) StageEvent {
	return StageEvent{
		RequestID: r.ID,
		Subject:   r.Subject,
		Stage:     stage,
		Timestamp: time.Now(),
		Outcome:   outcome,
		Summary:   summary,
	}
}
