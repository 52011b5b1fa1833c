package core

import "time"

// AssessmentResult is the aggregate of all findings for one request.
type AssessmentResult struct {
	RequestID RequestID `json:"request_id"`

	// OverallSeverity is the maximum severity across non-failed findings,
	// or SeverityUnknown when none succeeded. Max, not average: a single
	// critical finding dominates.
	OverallSeverity Severity `json:"overall_severity"`

	// OverallConfidence is the reliability-weighted mean of confidences
	// over non-failed findings.
	OverallConfidence float64 `json:"overall_confidence"`

	// Findings holds the full ordered list, failures included, for
	// traceability.
	Findings []Finding `json:"findings"`

	// LeadEvidence collects evidence from successful findings ordered by
	// severity, then confidence, so the strongest signal explains the
	// assessment first.
	LeadEvidence []string `json:"lead_evidence,omitempty"`

	// Degraded marks a result computed from incomplete analyzer data.
	// Consumers must treat it as lower-trust even when OverallConfidence
	// is numerically high.
	Degraded bool `json:"degraded"`

	Metrics RunMetrics `json:"metrics"`
}

// RunMetrics carries per-run pipeline counters.
type RunMetrics struct {
	AnalyzersRun      int           `json:"analyzers_run"`
	AnalyzersFailed   int           `json:"analyzers_failed"`
	AnalyzersTimedOut int           `json:"analyzers_timed_out"`
	GateDuration      time.Duration `json:"gate_duration"`
	FanOutDuration    time.Duration `json:"fan_out_duration"`
	GateShortCircuit  bool          `json:"gate_short_circuit"`
}

// Succeeded returns the non-failed findings in order.
func (a *AssessmentResult) Succeeded() []Finding {
	out := make([]Finding, 0, len(a.Findings))
	for _, f := range a.Findings {
		if !f.Failed() {
			out = append(out, f)
		}
	}
	return out
}

// EscalationLevel orders the escalation outcomes.
type EscalationLevel string

const (
	EscalationNone      EscalationLevel = "none"
	EscalationMonitor   EscalationLevel = "monitor"
	EscalationIntervene EscalationLevel = "intervene"
	EscalationEmergency EscalationLevel = "emergency"
)

var escalationRank = map[EscalationLevel]int{
	EscalationNone:      0,
	EscalationMonitor:   1,
	EscalationIntervene: 2,
	EscalationEmergency: 3,
}

// AtLeast reports whether l is equal to or above other.
func (l EscalationLevel) AtLeast(other EscalationLevel) bool {
	return escalationRank[l] >= escalationRank[other]
}

// EscalationDecision is the outcome of the escalation policy.
type EscalationDecision struct {
	Level EscalationLevel `json:"level"`

	// RequiredActions lists operator-facing actions the decision demands.
	RequiredActions []string `json:"required_actions,omitempty"`

	// BlocksNormalResponse is true only for intervene and emergency; a
	// blocking decision routes the request to the intervention response.
	BlocksNormalResponse bool `json:"blocks_normal_response"`

	// Reason is a short redacted explanation for audit.
	Reason string `json:"reason"`
}

// Blocking reports whether the decision short-circuits normal synthesis.
func (d EscalationDecision) Blocking() bool {
	return d.BlocksNormalResponse
}

// Response is the outbound payload handed to the transport layer.
type Response struct {
	RequestID RequestID `json:"request_id"`
	Subject   SubjectID `json:"subject_id"`

	// Text is the synthesized reply body.
	Text string `json:"text"`

	// Intervention is true when the reply is the fixed intervention
	// payload rather than a normal synthesized response.
	Intervention bool `json:"intervention"`

	// Disclosures carries the fixed required disclosures for blocking
	// decisions. Never personalized away.
	Disclosures []string `json:"disclosures,omitempty"`

	Assessment *AssessmentResult  `json:"assessment,omitempty"`
	Decision   EscalationDecision `json:"decision"`

	// Degraded mirrors the assessment flag so transports that drop the
	// assessment body still see the trust downgrade.
	Degraded bool `json:"degraded"`
}
