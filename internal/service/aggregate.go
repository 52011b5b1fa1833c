package service

import (
	"sort"

	"github.com/guardrail-labs/sentinel/internal/core"
)

// Aggregator combines findings into one assessment. Aggregation is
// deterministic: the same findings always produce the same result.
type Aggregator struct {
	// weights maps analyzer name to its declared reliability weight.
	weights map[string]float64
	// minSuccessful forces a degraded result when fewer findings
	// succeed.
	minSuccessful int
}

// NewAggregator creates an aggregator with the given reliability weights
// and minimum-successful-findings policy.
func NewAggregator(weights map[string]float64, minSuccessful int) *Aggregator {
	if weights == nil {
		weights = map[string]float64{}
	}
	return &Aggregator{
		weights:       weights,
		minSuccessful: minSuccessful,
	}
}

// WeightsFromAnalyzers builds the weight table from analyzer instances.
func WeightsFromAnalyzers(analyzers ...core.Analyzer) map[string]float64 {
	weights := make(map[string]float64, len(analyzers))
	for _, a := range analyzers {
		weights[a.Name()] = a.ReliabilityWeight()
	}
	return weights
}

// Aggregate combines the full ordered finding list into an assessment.
//
// Overall severity is the maximum across non-failed findings — a single
// critical finding dominates. Overall confidence is the reliability-
// weighted mean over non-failed findings. Zero successful findings yield
// an unknown-severity degraded result, never a silent downgrade to none.
func (ag *Aggregator) Aggregate(requestID core.RequestID, findings []core.Finding) core.AssessmentResult {
	result := core.AssessmentResult{
		RequestID: requestID,
		Findings:  findings,
	}

	succeeded := make([]core.Finding, 0, len(findings))
	failed := 0
	timedOut := 0
	for _, f := range findings {
		if f.Failed() {
			failed++
			if f.TimedOut() {
				timedOut++
			}
			continue
		}
		succeeded = append(succeeded, f)
	}

	result.Metrics.AnalyzersRun = len(findings)
	result.Metrics.AnalyzersFailed = failed
	result.Metrics.AnalyzersTimedOut = timedOut
	result.Degraded = failed > 0 || len(succeeded) < ag.minSuccessful

	if len(succeeded) == 0 {
		result.OverallSeverity = core.SeverityUnknown
		result.OverallConfidence = 0
		result.Degraded = true
		return result
	}

	severity := core.SeverityNone
	var weightedSum, weightTotal float64
	for _, f := range succeeded {
		severity = core.MaxSeverity(severity, f.Severity)
		w := ag.weightFor(f.Source)
		weightedSum += f.Confidence * w
		weightTotal += w
	}

	result.OverallSeverity = severity
	if weightTotal > 0 {
		result.OverallConfidence = weightedSum / weightTotal
	}
	result.LeadEvidence = orderEvidence(succeeded)

	return result
}

func (ag *Aggregator) weightFor(source string) float64 {
	if w, ok := ag.weights[source]; ok && w > 0 {
		return w
	}
	return 1.0
}

// orderEvidence concatenates evidence ordered by severity, breaking ties
// by confidence, so the strongest finding explains the assessment first.
// The sort is stable: equal findings keep submission order, which keeps
// aggregation replay-identical.
func orderEvidence(succeeded []core.Finding) []string {
	ordered := make([]core.Finding, len(succeeded))
	copy(ordered, succeeded)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Severity.Rank() != ordered[j].Severity.Rank() {
			return ordered[i].Severity.Rank() > ordered[j].Severity.Rank()
		}
		return ordered[i].Confidence > ordered[j].Confidence
	})

	var evidence []string
	for _, f := range ordered {
		evidence = append(evidence, f.Evidence...)
	}
	return evidence
}
