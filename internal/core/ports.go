package core

import (
	"context"
	"time"
)

// Analyzer is the single capability contract every concrete analyzer
// implements. Analyzers are selected at configuration time by name.
//
// Analyze must respect ctx cancellation, return within Budget, and must
// not mutate anything reachable from the view. A non-nil error is
// absorbed into a failed Finding by the caller, never propagated.
type Analyzer interface {
	// Name returns the analyzer identity recorded on findings.
	Name() string

	// CostClass determines whether the analyzer runs in the risk gate
	// (fast) or the fan-out stage (expensive).
	CostClass() CostClass

	// ReliabilityWeight is the static weight used in confidence
	// aggregation. Must be positive.
	ReliabilityWeight() float64

	// Budget is the per-call time budget. Exceeding it is treated as a
	// timeout failure.
	Budget() time.Duration

	// Analyze scores one request.
	Analyze(ctx context.Context, view RequestView) (Finding, error)
}

// Credentials is the opaque authentication material presented at ingress.
type Credentials struct {
	Token string
}

// Authenticator resolves credentials to a subject, consulted once at
// ingress. A rejection aborts the pipeline before any analysis.
type Authenticator interface {
	Authenticate(ctx context.Context, creds Credentials) (SubjectID, error)
}

// SubjectContext is the personalization/memory context for one subject.
type SubjectContext struct {
	Subject SubjectID `json:"subject_id"`
	// Preferences holds personalization hints (tone, verbosity).
	Preferences map[string]string `json:"preferences,omitempty"`
	// RecentInteractions holds short summaries of prior interactions,
	// most recent first.
	RecentInteractions []string `json:"recent_interactions,omitempty"`
}

// InteractionRecord is the per-interaction record written back to memory.
type InteractionRecord struct {
	RequestID RequestID `json:"request_id"`
	Summary   string    `json:"summary"`
	Severity  Severity  `json:"severity"`
	Escalated bool      `json:"escalated"`
	CreatedAt time.Time `json:"created_at"`
}

// MemoryStore is the memory/personalization collaborator. The pipeline
// reads then writes per subject; the store must serialize conflicting
// writes for the same subject.
type MemoryStore interface {
	FetchContext(ctx context.Context, subject SubjectID) (SubjectContext, error)
	Store(ctx context.Context, subject SubjectID, rec InteractionRecord) error
}

// AuditStore durably appends stage events. Append-only: implementations
// must never rewrite or delete prior entries. Appends are best-effort
// from the pipeline's point of view; failures are logged, not fatal.
type AuditStore interface {
	Append(ctx context.Context, ev StageEvent) error
}
