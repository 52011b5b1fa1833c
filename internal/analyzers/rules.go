package analyzers

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/guardrail-labs/sentinel/internal/core"
)

// RuleSet holds the keyword tables driving the built-in analyzers. The
// scoring internals are deliberately simple heuristics; the pipeline only
// depends on the Analyzer output contract, so a rule table can be swapped
// for a model-backed scorer without touching any stage.
type RuleSet struct {
	// Rules maps analyzer name to its severity-ordered keyword rules.
	Rules map[string][]Rule `yaml:"rules"`
}

// Rule maps a set of trigger terms to a severity and base confidence.
type Rule struct {
	Severity   core.Severity `yaml:"severity"`
	Confidence float64       `yaml:"confidence"`
	Terms      []string      `yaml:"terms"`
	// Label is the redaction-safe evidence string recorded on a match.
	Label string `yaml:"label"`
}

// LoadRules reads a rule set from a YAML file.
func LoadRules(path string) (*RuleSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading rules: %w", err)
	}
	var rs RuleSet
	if err := yaml.Unmarshal(data, &rs); err != nil {
		return nil, fmt.Errorf("parsing rules: %w", err)
	}
	if err := rs.Validate(); err != nil {
		return nil, err
	}
	return &rs, nil
}

// Validate checks severity values and confidence ranges.
func (rs *RuleSet) Validate() error {
	for name, rules := range rs.Rules {
		for i, r := range rules {
			if !r.Severity.IsValid() || r.Severity == core.SeverityUnknown {
				return fmt.Errorf("rules[%s][%d]: invalid severity %q", name, i, r.Severity)
			}
			if r.Confidence < 0 || r.Confidence > 1 {
				return fmt.Errorf("rules[%s][%d]: confidence %v outside [0,1]", name, i, r.Confidence)
			}
		}
	}
	return nil
}

// For returns the rules for one analyzer, or nil.
func (rs *RuleSet) For(name string) []Rule {
	if rs == nil {
		return nil
	}
	return rs.Rules[name]
}

// DefaultRules returns the built-in rule tables used when no rules file
// is configured.
func DefaultRules() *RuleSet {
	return &RuleSet{
		Rules: map[string][]Rule{
			NameThreat: {
				{Severity: core.SeverityCritical, Confidence: 0.9, Label: "explicit threat language",
					Terms: []string{"kill", "weapon", "bomb", "attack you"}},
				{Severity: core.SeverityHigh, Confidence: 0.7, Label: "hostile intent language",
					Terms: []string{"hurt", "destroy", "revenge", "make them pay"}},
				{Severity: core.SeverityLow, Confidence: 0.6, Label: "aggressive tone",
					Terms: []string{"hate", "furious", "rage"}},
			},
			NameCrisis: {
				{Severity: core.SeverityCritical, Confidence: 0.9, Label: "self-harm crisis language",
					Terms: []string{"end my life", "suicide", "kill myself", "no reason to live"}},
				{Severity: core.SeverityHigh, Confidence: 0.7, Label: "acute distress language",
					Terms: []string{"hopeless", "can't go on", "give up"}},
				{Severity: core.SeverityMedium, Confidence: 0.6, Label: "distress language",
					Terms: []string{"worthless", "alone", "desperate"}},
			},
			NameBehavioral: {
				{Severity: core.SeverityMedium, Confidence: 0.6, Label: "escalating behavioral pattern",
					Terms: []string{"always", "never listen", "every time", "again and again"}},
				{Severity: core.SeverityLow, Confidence: 0.55, Label: "repetitive phrasing",
					Terms: []string{"told you", "keep saying"}},
			},
			NameForensic: {
				{Severity: core.SeverityHigh, Confidence: 0.65, Label: "deception indicators",
					Terms: []string{"don't tell anyone", "delete this", "cover it up"}},
				{Severity: core.SeverityMedium, Confidence: 0.6, Label: "evasive phrasing",
					Terms: []string{"hypothetically", "asking for a friend"}},
			},
			NameReasoning: {
				{Severity: core.SeverityMedium, Confidence: 0.55, Label: "harm-adjacent reasoning",
					Terms: []string{"how would someone", "without getting caught", "untraceable"}},
			},
		},
	}
}
