package core

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// RequestID uniquely identifies one incoming interaction request.
type RequestID string

// SubjectID identifies the human or account a request concerns.
type SubjectID string

// NewRequestID generates a request identifier at ingress.
func NewRequestID() RequestID {
	return RequestID(uuid.NewString())
}

// Payload is the opaque input bundle for one request. Immutable after
// creation.
type Payload struct {
	Text string `json:"text"`
	// Signals carries optional structured inputs (sensor readings,
	// upstream classifier hints). Opaque to the pipeline.
	Signals map[string]interface{} `json:"signals,omitempty"`
}

// RequestContext is the per-request state threaded through every stage.
//
// It is exclusively owned by the orchestrator for the lifetime of one
// request. Analyzers receive it through the read-only View and must not
// mutate it; the audit trail is the only mutable part and is guarded.
type RequestContext struct {
	ID        RequestID
	Subject   SubjectID
	Payload   Payload
	CreatedAt time.Time

	mu    sync.Mutex
	trail []StageEvent
}

// NewRequestContext creates a request context at ingress.
func NewRequestContext(subject SubjectID, payload Payload) *RequestContext {
	return &RequestContext{
		ID:        NewRequestID(),
		Subject:   subject,
		Payload:   payload,
		CreatedAt: time.Now(),
	}
}

// Deadline computes the pipeline deadline from the ingress timestamp.
func (r *RequestContext) Deadline(budget time.Duration) time.Time {
	return r.CreatedAt.Add(budget)
}

// AppendEvent records a stage event on the in-process audit trail.
// Append-only; events are never rewritten.
func (r *RequestContext) AppendEvent(ev StageEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.trail = append(r.trail, ev)
}

// Trail returns a copy of the audit trail in append order.
func (r *RequestContext) Trail() []StageEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]StageEvent, len(r.trail))
	copy(out, r.trail)
	return out
}

// View returns the read-only projection handed to analyzers.
func (r *RequestContext) View() RequestView {
	return RequestView{
		ID:        r.ID,
		Subject:   r.Subject,
		Payload:   r.Payload,
		CreatedAt: r.CreatedAt,
	}
}

// RequestView is the immutable analyzer-facing projection of a request.
type RequestView struct {
	ID        RequestID
	Subject   SubjectID
	Payload   Payload
	CreatedAt time.Time
}
