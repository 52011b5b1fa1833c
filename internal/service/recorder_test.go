package service

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guardrail-labs/sentinel/internal/core"
	"github.com/guardrail-labs/sentinel/internal/events"
	"github.com/guardrail-labs/sentinel/internal/logging"
)

func TestRecorder_AppendsToStoreTrailAndBus(t *testing.T) {
	store := &stubAudit{}
	bus := events.NewBus(10)
	defer bus.Close()
	ch := bus.Subscribe()

	rec := NewRecorder(store, bus, logging.NewNop())
	req := core.NewRequestContext("subject", core.Payload{})

	rec.Record(t.Context(), req, core.StageRiskGate, core.OutcomeOK, "passed 2 fast analyzers")

	require.Len(t, store.events, 1)
	assert.Equal(t, core.StageRiskGate, store.events[0].Stage)
	assert.Equal(t, req.ID, store.events[0].RequestID)

	trail := req.Trail()
	require.Len(t, trail, 1)
	assert.Equal(t, core.OutcomeOK, trail[0].Outcome)

	select {
	case ev := <-ch:
		assert.Equal(t, core.StageRiskGate, ev.Stage)
	case <-time.After(time.Second):
		t.Fatal("bus did not receive the event")
	}
}

func TestRecorder_StoreFailureIsSwallowed(t *testing.T) {
	store := &stubAudit{appendErr: errors.New("disk full")}
	rec := NewRecorder(store, nil, logging.NewNop())
	req := core.NewRequestContext("subject", core.Payload{})

	// Must not panic or surface the error.
	rec.Record(t.Context(), req, core.StageAggregate, core.OutcomeOK, "done")

	trail := req.Trail()
	require.Len(t, trail, 2, "original event plus audit warning")
	assert.Equal(t, core.OutcomeAuditWarn, trail[1].Outcome)
}

func TestRecorder_SanitizesSummary(t *testing.T) {
	store := &stubAudit{}
	rec := NewRecorder(store, nil, logging.NewNop())
	req := core.NewRequestContext("subject", core.Payload{})

	rec.Record(t.Context(), req, core.StageIngress, core.OutcomeOK,
		"subject wrote to bob@example.com")

	require.Len(t, store.events, 1)
	assert.NotContains(t, store.events[0].Summary, "bob@example.com")
	assert.Contains(t, store.events[0].Summary, "[REDACTED]")
}

func TestRecorder_NilBus(t *testing.T) {
	rec := NewRecorder(&stubAudit{}, nil, logging.NewNop())
	req := core.NewRequestContext("subject", core.Payload{})
	rec.Record(t.Context(), req, core.StageComplete, core.OutcomeOK, "done") // must not panic
}
