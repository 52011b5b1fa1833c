package core

import "time"

// CostClass determines which pipeline stage runs an analyzer.
type CostClass string

const (
	// CostFast analyzers run sequentially in the risk gate.
	CostFast CostClass = "fast"
	// CostExpensive analyzers run concurrently in the fan-out stage.
	CostExpensive CostClass = "expensive"
)

// Finding is one analyzer's scored output for one request.
//
// A Finding is either successful (Severity and Confidence populated) or
// failed (Err populated) — never both, never neither.
type Finding struct {
	// Source identifies the analyzer that produced the finding.
	Source string `json:"source"`

	Severity   Severity `json:"severity,omitempty"`
	Confidence float64  `json:"confidence"`

	// Evidence holds short, redaction-safe strings explaining the score,
	// ordered most relevant first.
	Evidence []string `json:"evidence,omitempty"`

	// Err records an analyzer failure. Timeouts are recorded with a
	// timeout-category DomainError so audit can distinguish them.
	Err error `json:"-"`

	// ErrMessage mirrors Err for serialization.
	ErrMessage string `json:"error,omitempty"`

	Duration time.Duration `json:"duration"`
}

// FailedFinding builds a Finding recording an analyzer failure.
func FailedFinding(source string, err error) Finding {
	f := Finding{Source: source, Err: err}
	if err != nil {
		f.ErrMessage = err.Error()
	}
	return f
}

// TimedOutFinding builds a Finding recording an analyzer timeout.
func TimedOutFinding(source string, budget time.Duration) Finding {
	err := ErrAnalyzerTimeout(source, budget)
	return Finding{Source: source, Err: err, ErrMessage: err.Error(), Duration: budget}
}

// Failed reports whether the finding records a failure rather than a score.
func (f Finding) Failed() bool {
	return f.Err != nil || f.ErrMessage != ""
}

// TimedOut reports whether the recorded failure was a timeout.
func (f Finding) TimedOut() bool {
	de, ok := f.Err.(*DomainError)
	return ok && de.Category == ErrCatTimeout
}

// Validate enforces the success-xor-failure invariant.
func (f Finding) Validate() error {
	if f.Source == "" {
		return ErrValidation("FINDING_NO_SOURCE", "finding has no source analyzer")
	}
	if f.Failed() {
		if f.Severity != "" {
			return ErrValidation("FINDING_AMBIGUOUS", "failed finding must not carry a severity")
		}
		return nil
	}
	if !f.Severity.IsValid() || f.Severity == SeverityUnknown {
		return ErrValidation("FINDING_BAD_SEVERITY", "successful finding needs a concrete severity")
	}
	if f.Confidence < 0 || f.Confidence > 1 {
		return ErrValidation("FINDING_BAD_CONFIDENCE", "confidence must be within [0,1]")
	}
	return nil
}
