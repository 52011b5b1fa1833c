package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/guardrail-labs/sentinel/internal/core"
	"github.com/guardrail-labs/sentinel/internal/logging"
)

// PipelineConfig holds the orchestrator's stage budgets.
type PipelineConfig struct {
	// Deadline is the single per-request budget set at ingress; the gate
	// and fan-out sub-budgets are consumed from it.
	Deadline time.Duration
}

// Pipeline composes the end-to-end request flow: authenticate, risk
// gate, fan-out, aggregate, escalate, synthesize. It owns the request
// context lifecycle, cancellation, and timeouts.
//
// The two-phase gating is the central design decision: a cheap
// sequential check bounds worst-case latency for the common low-risk
// case, and the second check after fan-out ensures a dangerous signal
// found only by an expensive analyzer is never ignored.
type Pipeline struct {
	cfg        PipelineConfig
	auth       core.Authenticator
	memory     core.MemoryStore
	recorder   *Recorder
	gate       *RiskGate
	fanout     *FanOut
	aggregator *Aggregator
	policy     *Policy
	synth      *Synthesizer
	fast       []core.Analyzer
	expensive  []core.Analyzer
	logger     *logging.Logger
}

// NewPipeline wires the pipeline stages together.
func NewPipeline(
	cfg PipelineConfig,
	auth core.Authenticator,
	memory core.MemoryStore,
	recorder *Recorder,
	gate *RiskGate,
	fanout *FanOut,
	aggregator *Aggregator,
	policy *Policy,
	synth *Synthesizer,
	fast []core.Analyzer,
	expensive []core.Analyzer,
	logger *logging.Logger,
) *Pipeline {
	return &Pipeline{
		cfg:        cfg,
		auth:       auth,
		memory:     memory,
		recorder:   recorder,
		gate:       gate,
		fanout:     fanout,
		aggregator: aggregator,
		policy:     policy,
		synth:      synth,
		fast:       fast,
		expensive:  expensive,
		logger:     logger,
	}
}

// Process runs one interaction request through the full pipeline.
//
// Only an authentication rejection surfaces as an error; every other
// failure is absorbed into the assessment (failed findings, degraded
// flag) so the caller always receives a response.
func (p *Pipeline) Process(ctx context.Context, creds core.Credentials, payload core.Payload) (*core.Response, error) {
	subject, err := p.auth.Authenticate(ctx, creds)
	if err != nil {
		// Record the attempt; scenario: no analysis stage may run after
		// a rejection.
		rejected := core.NewRequestContext("", payload)
		p.recorder.Record(ctx, rejected, core.StageAuth, core.OutcomeRejected, "authentication rejected")
		p.logger.Warn("authentication rejected", "request_id", string(rejected.ID))
		return nil, core.ErrAuth("AUTH_REJECTED", "authentication rejected").WithCause(err)
	}

	req := core.NewRequestContext(subject, payload)
	ctx, cancel := context.WithDeadline(ctx, req.Deadline(p.cfg.Deadline))
	defer cancel()

	log := p.logger.WithRequest(string(req.ID))
	log.Info("processing request", "subject", string(subject), "payload_length", len(payload.Text))

	p.recorder.Record(ctx, req, core.StageIngress, core.OutcomeOK, "request accepted")
	p.recorder.Record(ctx, req, core.StageAuth, core.OutcomeOK, "subject authenticated")

	// Phase one: cheap sequential checks with early exit.
	gateResult := p.gate.Run(ctx, req.View(), p.fast)
	if gateResult.Blocked {
		p.recorder.Record(ctx, req, core.StageRiskGate, core.OutcomeBlocked, gateResult.Summary())
		return p.finishBlocked(ctx, req, gateResult, log), nil
	}
	p.recorder.Record(ctx, req, core.StageRiskGate, core.OutcomeOK, gateResult.Summary())

	// Personalization context is fetched before fan-out so synthesis
	// does not pay for it later. Failure is non-fatal.
	subjectCtx := p.fetchMemory(ctx, req)

	// Phase two: expensive analyzers in parallel, partial results kept.
	fanStart := time.Now()
	fanFindings := p.fanout.Run(ctx, req.View(), p.expensive)
	fanDuration := time.Since(fanStart)
	p.recorder.Record(ctx, req, core.StageFanOut, fanOutOutcome(fanFindings), fanOutSummary(fanFindings))

	findings := append(append([]core.Finding(nil), gateResult.Findings...), fanFindings...)
	assessment := p.aggregator.Aggregate(req.ID, findings)
	assessment.Metrics.GateDuration = gateResult.Duration
	assessment.Metrics.FanOutDuration = fanDuration

	aggOutcome := core.OutcomeOK
	if assessment.Degraded {
		aggOutcome = core.OutcomeDegraded
	}
	p.recorder.Record(ctx, req, core.StageAggregate, aggOutcome, aggregateSummary(req.ID, &assessment))

	// Second escalation check against the full aggregate.
	decision := p.policy.Decide(assessment.OverallSeverity, assessment.OverallConfidence, assessment.Degraded)
	escOutcome := core.OutcomeOK
	if decision.Blocking() {
		escOutcome = core.OutcomeBlocked
	}
	p.recorder.Record(ctx, req, core.StageEscalation, escOutcome, decision.Reason)

	resp := p.synth.Synthesize(req, &assessment, decision, subjectCtx)
	p.recorder.Record(ctx, req, core.StageSynthesize, core.OutcomeOK, synthSummary(resp))

	p.storeMemory(ctx, req, assessment.OverallSeverity, decision)
	p.recorder.Record(ctx, req, core.StageComplete, core.OutcomeOK, "pipeline complete")

	log.Info("request complete",
		"severity", string(assessment.OverallSeverity),
		"level", string(decision.Level),
		"degraded", assessment.Degraded,
	)
	return resp, nil
}

// finishBlocked handles the gate short-circuit path: straight to the
// intervention response, fan-out never runs.
func (p *Pipeline) finishBlocked(ctx context.Context, req *core.RequestContext, gateResult GateResult, log *logging.Logger) *core.Response {
	assessment := p.aggregator.Aggregate(req.ID, gateResult.Findings)
	assessment.Metrics.GateDuration = gateResult.Duration
	assessment.Metrics.GateShortCircuit = true

	p.recorder.Record(ctx, req, core.StageEscalation, core.OutcomeBlocked, gateResult.Decision.Reason)

	// Intervention payloads are fixed; no personalization is fetched on
	// this path.
	resp := p.synth.Synthesize(req, &assessment, gateResult.Decision, core.SubjectContext{})
	p.recorder.Record(ctx, req, core.StageSynthesize, core.OutcomeOK, synthSummary(resp))

	p.storeMemory(ctx, req, assessment.OverallSeverity, gateResult.Decision)
	p.recorder.Record(ctx, req, core.StageComplete, core.OutcomeOK, "pipeline complete (gate short-circuit)")

	log.Info("request blocked at risk gate", "level", string(gateResult.Decision.Level))
	return resp
}

func (p *Pipeline) fetchMemory(ctx context.Context, req *core.RequestContext) core.SubjectContext {
	subjectCtx, err := p.memory.FetchContext(ctx, req.Subject)
	if err != nil {
		p.recorder.Record(ctx, req, core.StageMemoryFetch, core.OutcomeDegraded,
			"memory unavailable, proceeding without personalization")
		return core.SubjectContext{Subject: req.Subject}
	}
	p.recorder.Record(ctx, req, core.StageMemoryFetch, core.OutcomeOK, "personalization context loaded")
	return subjectCtx
}

// storeMemory writes the interaction record back. Best-effort: memory is
// eventually durable and a write failure must not block the response.
func (p *Pipeline) storeMemory(ctx context.Context, req *core.RequestContext, severity core.Severity, decision core.EscalationDecision) {
	rec := core.InteractionRecord{
		RequestID: req.ID,
		Summary:   fmt.Sprintf("severity=%s level=%s", severity, decision.Level),
		Severity:  severity,
		Escalated: decision.Blocking(),
		CreatedAt: time.Now(),
	}
	if err := p.memory.Store(context.WithoutCancel(ctx), req.Subject, rec); err != nil {
		p.logger.Warn("memory store failed",
			"request_id", string(req.ID),
			"error", err,
		)
	}
}

// fanOutOutcome distinguishes timeouts from every other fan-out result
// so the durable trail records which analyzers were abandoned at the
// deadline.
func fanOutOutcome(findings []core.Finding) core.StageOutcome {
	for _, f := range findings {
		if f.TimedOut() {
			return core.OutcomeTimedOut
		}
	}
	return core.OutcomeOK
}

func fanOutSummary(findings []core.Finding) string {
	var timedOut, failed []string
	for _, f := range findings {
		switch {
		case f.TimedOut():
			timedOut = append(timedOut, f.Source)
		case f.Failed():
			failed = append(failed, f.Source)
		}
	}
	if len(timedOut) > 0 {
		return fmt.Sprintf("%d analyzers ran, timed out: %s", len(findings), strings.Join(timedOut, ", "))
	}
	if len(failed) > 0 {
		return fmt.Sprintf("%d analyzers ran, failed: %s", len(findings), strings.Join(failed, ", "))
	}
	return fmt.Sprintf("%d analyzers completed", len(findings))
}

func aggregateSummary(id core.RequestID, assessment *core.AssessmentResult) string {
	if len(assessment.Succeeded()) == 0 {
		return core.ErrInsufficientData(string(id)).Error()
	}
	return fmt.Sprintf("severity=%s confidence=%.2f degraded=%t",
		assessment.OverallSeverity, assessment.OverallConfidence, assessment.Degraded)
}

func synthSummary(resp *core.Response) string {
	if resp.Intervention {
		return "intervention response synthesized"
	}
	return "normal response synthesized"
}
