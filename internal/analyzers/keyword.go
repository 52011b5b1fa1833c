package analyzers

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/guardrail-labs/sentinel/internal/core"
)

// keywordAnalyzer scores a request by scanning the payload text against a
// rule table. All built-in analyzers share this scoring core and differ in
// name, cost class, weight, budget, and rules.
type keywordAnalyzer struct {
	name   string
	cost   core.CostClass
	weight float64
	budget time.Duration
	rules  []Rule
}

func (k *keywordAnalyzer) Name() string               { return k.name }
func (k *keywordAnalyzer) CostClass() core.CostClass  { return k.cost }
func (k *keywordAnalyzer) ReliabilityWeight() float64 { return k.weight }
func (k *keywordAnalyzer) Budget() time.Duration      { return k.budget }

// Analyze scans the payload. The rule with the highest matching severity
// wins; additional matches raise confidence slightly and extend evidence.
func (k *keywordAnalyzer) Analyze(ctx context.Context, view core.RequestView) (core.Finding, error) {
	if err := ctx.Err(); err != nil {
		return core.Finding{}, err
	}

	text := strings.ToLower(view.Payload.Text)

	best := core.Finding{
		Source:     k.name,
		Severity:   core.SeverityNone,
		Confidence: 0.5,
	}
	matches := 0

	for _, rule := range k.rules {
		for _, term := range rule.Terms {
			if !strings.Contains(text, term) {
				continue
			}
			matches++
			if rule.Severity.Rank() > best.Severity.Rank() {
				best.Severity = rule.Severity
				best.Confidence = rule.Confidence
			}
			best.Evidence = append(best.Evidence, fmt.Sprintf("%s (%s)", rule.Label, rule.Severity))
			break // one match per rule is enough
		}
		// Long rule tables still honor cancellation.
		if err := ctx.Err(); err != nil {
			return core.Finding{}, err
		}
	}

	// Corroborating matches raise confidence, capped below certainty.
	if matches > 1 {
		best.Confidence = min(best.Confidence+0.05*float64(matches-1), 0.99)
	}

	return best, nil
}
