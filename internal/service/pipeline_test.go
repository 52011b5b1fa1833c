package service

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guardrail-labs/sentinel/internal/core"
	"github.com/guardrail-labs/sentinel/internal/logging"
)

type pipelineFixture struct {
	pipeline *Pipeline
	auth     *stubAuth
	memory   *stubMemory
	audit    *stubAudit
}

func newPipelineFixture(fast, expensive []core.Analyzer) *pipelineFixture {
	logger := logging.NewNop()
	auth := &stubAuth{subjects: map[string]core.SubjectID{"good-token": "subject-1"}}
	memory := newStubMemory()
	audit := &stubAudit{}
	policy := NewPolicy(0.6)

	weights := WeightsFromAnalyzers(append(append([]core.Analyzer(nil), fast...), expensive...)...)

	p := NewPipeline(
		PipelineConfig{Deadline: 5 * time.Second},
		auth,
		memory,
		NewRecorder(audit, nil, logger),
		NewRiskGate(policy, time.Second, logger),
		NewFanOut(NewWorkerPool(4), time.Second, logger),
		NewAggregator(weights, 1),
		policy,
		NewSynthesizer(),
		fast,
		expensive,
		logger,
	)
	return &pipelineFixture{pipeline: p, auth: auth, memory: memory, audit: audit}
}

func goodCreds() core.Credentials { return core.Credentials{Token: "good-token"} }

func TestProcess_ScenarioA_GateShortCircuit(t *testing.T) {
	fastCritical := scoring("crisis", core.CostFast, 1.2, core.SeverityCritical, 0.9)
	spyExpensive := scoring("behavioral", core.CostExpensive, 1.0, core.SeverityNone, 0.5)

	fx := newPipelineFixture(
		[]core.Analyzer{fastCritical},
		[]core.Analyzer{spyExpensive},
	)

	resp, err := fx.pipeline.Process(t.Context(), goodCreds(), core.Payload{Text: "x"})
	require.NoError(t, err)

	assert.Equal(t, core.EscalationIntervene, resp.Decision.Level)
	assert.True(t, resp.Intervention)
	assert.True(t, resp.Assessment.Metrics.GateShortCircuit)
	assert.Equal(t, 0, spyExpensive.invocations(), "fan-out must never run after a gate block")
	assert.Contains(t, fx.audit.stages(), core.StageRiskGate)
	assert.NotContains(t, fx.audit.stages(), core.StageFanOut)
}

func TestProcess_ScenarioB_HighSeverityLowConfidence(t *testing.T) {
	fx := newPipelineFixture(
		[]core.Analyzer{scoring("threat", core.CostFast, 1.0, core.SeverityNone, 0.5)},
		[]core.Analyzer{
			scoring("behavioral", core.CostExpensive, 1.0, core.SeverityHigh, 0.5),
			scoring("forensic", core.CostExpensive, 1.0, core.SeverityMedium, 0.7),
			failing("reasoning", core.CostExpensive, errors.New("backend down")),
		},
	)

	resp, err := fx.pipeline.Process(t.Context(), goodCreds(), core.Payload{Text: "x"})
	require.NoError(t, err)

	assert.Equal(t, core.SeverityHigh, resp.Assessment.OverallSeverity)
	assert.True(t, resp.Assessment.Degraded)
	assert.Equal(t, core.EscalationMonitor, resp.Decision.Level)
	assert.False(t, resp.Intervention)
	assert.True(t, resp.Degraded)
}

func TestProcess_ScenarioC_AllExpensiveTimeOut(t *testing.T) {
	fx := newPipelineFixture(
		[]core.Analyzer{scoring("threat", core.CostFast, 1.0, core.SeverityNone, 0.5)},
		[]core.Analyzer{
			hanging("behavioral", core.CostExpensive, 50*time.Millisecond),
			hanging("forensic", core.CostExpensive, 50*time.Millisecond),
		},
	)

	resp, err := fx.pipeline.Process(t.Context(), goodCreds(), core.Payload{Text: "x"})
	require.NoError(t, err)

	// The fast analyzer succeeded, so severity comes from it; the
	// expensive timeouts force degraded.
	assert.True(t, resp.Assessment.Degraded)
	assert.Equal(t, 2, resp.Assessment.Metrics.AnalyzersTimedOut)
}

func TestProcess_TimedOutAnalyzersRecordedDistinctly(t *testing.T) {
	fx := newPipelineFixture(
		[]core.Analyzer{scoring("threat", core.CostFast, 1.0, core.SeverityNone, 0.5)},
		[]core.Analyzer{
			scoring("behavioral", core.CostExpensive, 1.0, core.SeverityNone, 0.8),
			hanging("forensic", core.CostExpensive, 50*time.Millisecond),
		},
	)

	_, err := fx.pipeline.Process(t.Context(), goodCreds(), core.Payload{Text: "x"})
	require.NoError(t, err)

	ev, ok := fx.audit.event(core.StageFanOut)
	require.True(t, ok, "fan-out transition must reach the audit store")
	assert.Equal(t, core.OutcomeTimedOut, ev.Outcome)
	assert.Contains(t, ev.Summary, "forensic")
	assert.NotContains(t, ev.Summary, "behavioral")
}

func TestProcess_AllAnalyzersFailYieldsUnknownMonitor(t *testing.T) {
	fx := newPipelineFixture(
		[]core.Analyzer{failing("threat", core.CostFast, errors.New("down"))},
		[]core.Analyzer{failing("behavioral", core.CostExpensive, errors.New("down"))},
	)

	resp, err := fx.pipeline.Process(t.Context(), goodCreds(), core.Payload{Text: "x"})
	require.NoError(t, err, "the pipeline must always produce a decision, never crash on partial data")

	assert.Equal(t, core.SeverityUnknown, resp.Assessment.OverallSeverity)
	assert.True(t, resp.Assessment.Degraded)
	assert.True(t, resp.Decision.Level.AtLeast(core.EscalationMonitor))

	ev, ok := fx.audit.event(core.StageAggregate)
	require.True(t, ok)
	assert.Equal(t, core.OutcomeDegraded, ev.Outcome)
	assert.Contains(t, ev.Summary, "INSUFFICIENT_DATA")
}

func TestProcess_ScenarioD_AuthRejection(t *testing.T) {
	fast := scoring("threat", core.CostFast, 1.0, core.SeverityNone, 0.5)
	expensive := scoring("behavioral", core.CostExpensive, 1.0, core.SeverityNone, 0.5)
	fx := newPipelineFixture([]core.Analyzer{fast}, []core.Analyzer{expensive})

	resp, err := fx.pipeline.Process(t.Context(), core.Credentials{Token: "bad"}, core.Payload{Text: "x"})
	require.Error(t, err)
	assert.Nil(t, resp)
	assert.Equal(t, core.ErrCatAuth, core.CategoryOf(err))

	assert.Equal(t, 0, fast.invocations(), "no analysis on auth rejection")
	assert.Equal(t, 0, expensive.invocations())

	stages := fx.audit.stages()
	require.Len(t, stages, 1, "no audit stage beyond the authentication attempt")
	assert.Equal(t, core.StageAuth, stages[0])
}

func TestProcess_CleanRequestFullFlow(t *testing.T) {
	fx := newPipelineFixture(
		[]core.Analyzer{scoring("threat", core.CostFast, 1.0, core.SeverityNone, 0.9)},
		[]core.Analyzer{scoring("behavioral", core.CostExpensive, 1.0, core.SeverityNone, 0.8)},
	)
	fx.memory.contexts["subject-1"] = core.SubjectContext{
		Subject:     "subject-1",
		Preferences: map[string]string{"tone": "casual"},
	}

	resp, err := fx.pipeline.Process(t.Context(), goodCreds(), core.Payload{Text: "hello"})
	require.NoError(t, err)

	assert.Equal(t, core.EscalationNone, resp.Decision.Level)
	assert.False(t, resp.Intervention)
	assert.False(t, resp.Degraded)

	// Stage transitions recorded in pipeline order.
	assert.Equal(t, []string{
		core.StageIngress,
		core.StageAuth,
		core.StageRiskGate,
		core.StageMemoryFetch,
		core.StageFanOut,
		core.StageAggregate,
		core.StageEscalation,
		core.StageSynthesize,
		core.StageComplete,
	}, fx.audit.stages())

	// read-then-write: the interaction record lands in memory.
	require.Len(t, fx.memory.stored, 1)
	assert.Equal(t, resp.RequestID, fx.memory.stored[0].RequestID)
	assert.False(t, fx.memory.stored[0].Escalated)
}

func TestProcess_MemoryFetchFailureIsNonFatal(t *testing.T) {
	fx := newPipelineFixture(
		[]core.Analyzer{scoring("threat", core.CostFast, 1.0, core.SeverityNone, 0.9)},
		[]core.Analyzer{scoring("behavioral", core.CostExpensive, 1.0, core.SeverityNone, 0.8)},
	)
	fx.memory.fetchErr = errors.New("store offline")

	resp, err := fx.pipeline.Process(t.Context(), goodCreds(), core.Payload{Text: "hello"})
	require.NoError(t, err)
	assert.False(t, resp.Degraded, "degraded tracks analyzer data, not memory availability")
}

func TestProcess_AuditFailureIsNonFatal(t *testing.T) {
	fx := newPipelineFixture(
		[]core.Analyzer{scoring("threat", core.CostFast, 1.0, core.SeverityNone, 0.9)},
		[]core.Analyzer{scoring("behavioral", core.CostExpensive, 1.0, core.SeverityNone, 0.8)},
	)
	fx.audit.appendErr = errors.New("audit store down")

	resp, err := fx.pipeline.Process(t.Context(), goodCreds(), core.Payload{Text: "hello"})
	require.NoError(t, err)
	require.NotNil(t, resp)
}

func TestProcess_SecondCheckCatchesExpensiveCritical(t *testing.T) {
	// The gate passes, but an expensive analyzer finds a critical
	// signal; the post-aggregation check must block.
	fx := newPipelineFixture(
		[]core.Analyzer{scoring("threat", core.CostFast, 1.0, core.SeverityNone, 0.9)},
		[]core.Analyzer{scoring("forensic", core.CostExpensive, 1.0, core.SeverityCritical, 0.7)},
	)

	resp, err := fx.pipeline.Process(t.Context(), goodCreds(), core.Payload{Text: "x"})
	require.NoError(t, err)

	assert.True(t, resp.Intervention)
	assert.True(t, resp.Decision.Level.AtLeast(core.EscalationIntervene))
	require.Len(t, fx.memory.stored, 1)
	assert.True(t, fx.memory.stored[0].Escalated)
}
