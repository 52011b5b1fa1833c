package analyzers

import (
	"time"

	"github.com/guardrail-labs/sentinel/internal/core"
)

// Built-in analyzer names. The fast/expensive split matches the default
// pipeline rosters.
const (
	NameThreat     = "threat"
	NameCrisis     = "crisis"
	NameBehavioral = "behavioral"
	NameForensic   = "forensic"
	NameReasoning  = "reasoning"
)

// Default per-analyzer budgets. Fast analyzers must stay well under the
// gate sub-budget since the gate runs them back to back.
const (
	defaultFastBudget      = 250 * time.Millisecond
	defaultExpensiveBudget = 2 * time.Second
)

// NewThreat detects explicit threat language. Fast: first line of the
// risk gate.
func NewThreat(rules *RuleSet) core.Analyzer {
	return &keywordAnalyzer{
		name:   NameThreat,
		cost:   core.CostFast,
		weight: 1.0,
		budget: defaultFastBudget,
		rules:  rules.For(NameThreat),
	}
}

// NewCrisis detects acute self-harm risk. Fast: runs in the gate right
// after threat.
func NewCrisis(rules *RuleSet) core.Analyzer {
	return &keywordAnalyzer{
		name:   NameCrisis,
		cost:   core.CostFast,
		weight: 1.2,
		budget: defaultFastBudget,
		rules:  rules.For(NameCrisis),
	}
}

// NewBehavioral scores longer-horizon behavioral patterns.
func NewBehavioral(rules *RuleSet) core.Analyzer {
	return &keywordAnalyzer{
		name:   NameBehavioral,
		cost:   core.CostExpensive,
		weight: 0.8,
		budget: defaultExpensiveBudget,
		rules:  rules.For(NameBehavioral),
	}
}

// NewForensic scores deception and concealment indicators.
func NewForensic(rules *RuleSet) core.Analyzer {
	return &keywordAnalyzer{
		name:   NameForensic,
		cost:   core.CostExpensive,
		weight: 0.9,
		budget: defaultExpensiveBudget,
		rules:  rules.For(NameForensic),
	}
}

// NewReasoning scores harm-adjacent reasoning chains.
func NewReasoning(rules *RuleSet) core.Analyzer {
	return &keywordAnalyzer{
		name:   NameReasoning,
		cost:   core.CostExpensive,
		weight: 0.7,
		budget: defaultExpensiveBudget,
		rules:  rules.For(NameReasoning),
	}
}
