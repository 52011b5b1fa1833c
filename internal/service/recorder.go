package service

import (
	"context"
	"time"

	"github.com/guardrail-labs/sentinel/internal/core"
	"github.com/guardrail-labs/sentinel/internal/events"
	"github.com/guardrail-labs/sentinel/internal/logging"
)

// Recorder writes stage events to the audit store, the in-process trail,
// and the event bus. Store appends are best-effort: blocking a crisis
// escalation on audit I/O is worse than a missed log line, so failures
// are logged and swallowed.
type Recorder struct {
	store  core.AuditStore
	bus    *events.Bus
	logger *logging.Logger

	// appendTimeout bounds one store append so a stuck audit backend
	// cannot consume the request deadline.
	appendTimeout time.Duration
}

// NewRecorder creates a recorder. The bus may be nil.
func NewRecorder(store core.AuditStore, bus *events.Bus, logger *logging.Logger) *Recorder {
	return &Recorder{
		store:         store,
		bus:           bus,
		logger:        logger,
		appendTimeout: 500 * time.Millisecond,
	}
}

// Record captures one stage transition. The summary is redacted before it
// leaves the process. Never returns an error: audit is not a correctness
// gate.
func (r *Recorder) Record(ctx context.Context, req *core.RequestContext, stage string, outcome core.StageOutcome, summary string) {
	ev := core.NewStageEvent(req, stage, outcome, r.logger.Sanitize(summary))

	// The in-process trail always gets the event, store failures
	// included, so replay within the process stays possible.
	req.AppendEvent(ev)

	if r.bus != nil {
		r.bus.Publish(ev)
	}

	actx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.appendTimeout)
	defer cancel()
	if err := r.store.Append(actx, ev); err != nil {
		r.logger.Warn("audit append failed",
			"request_id", string(req.ID),
			"stage", stage,
			"error", core.ErrAuditWrite(stage, err).Error(),
		)
		req.AppendEvent(core.NewStageEvent(req, stage, core.OutcomeAuditWarn, "audit store unavailable"))
	}
}
