package service

import (
	"strings"
	"testing"

	"github.com/guardrail-labs/sentinel/internal/core"
)

func TestSynthesize_BlockingCarriesFixedDisclosures(t *testing.T) {
	s := NewSynthesizer()
	req := core.NewRequestContext("subject", core.Payload{Text: "x"})
	assessment := &core.AssessmentResult{OverallSeverity: core.SeverityCritical}
	decision := NewPolicy(0.6).Decide(core.SeverityCritical, 0.9, false)

	// Personalization that would, if honored, strip safety content.
	subject := core.SubjectContext{Preferences: map[string]string{"tone": "casual", "verbosity": "minimal"}}

	resp := s.Synthesize(req, assessment, decision, subject)
	if !resp.Intervention {
		t.Fatal("blocking decision must produce an intervention response")
	}
	if len(resp.Disclosures) != len(InterventionDisclosures()) {
		t.Errorf("disclosures = %d, want the full fixed set", len(resp.Disclosures))
	}
	for i, d := range InterventionDisclosures() {
		if resp.Disclosures[i] != d {
			t.Errorf("disclosure %d personalized away: %q", i, resp.Disclosures[i])
		}
	}
}

func TestSynthesize_NormalResponse(t *testing.T) {
	s := NewSynthesizer()
	req := core.NewRequestContext("subject", core.Payload{Text: "x"})
	assessment := &core.AssessmentResult{OverallSeverity: core.SeverityNone, OverallConfidence: 0.8}
	decision := NewPolicy(0.6).Decide(core.SeverityNone, 0.8, false)

	resp := s.Synthesize(req, assessment, decision, core.SubjectContext{})
	if resp.Intervention {
		t.Error("non-blocking decision must not produce an intervention")
	}
	if len(resp.Disclosures) != 0 {
		t.Error("normal responses carry no mandated disclosures")
	}
	if resp.Text == "" {
		t.Error("response text must not be empty")
	}
}

func TestSynthesize_PersonalizationShapesNormalText(t *testing.T) {
	s := NewSynthesizer()
	req := core.NewRequestContext("subject", core.Payload{Text: "x"})
	assessment := &core.AssessmentResult{OverallSeverity: core.SeverityNone}
	decision := NewPolicy(0.6).Decide(core.SeverityNone, 0.8, false)

	plain := s.Synthesize(req, assessment, decision, core.SubjectContext{})
	casual := s.Synthesize(req, assessment, decision, core.SubjectContext{
		Preferences:        map[string]string{"tone": "casual"},
		RecentInteractions: []string{"prior chat"},
	})

	if plain.Text == casual.Text {
		t.Error("personalization context should shape the normal response")
	}
	if !strings.Contains(casual.Text, "Following up") {
		t.Error("recent interactions should be acknowledged")
	}
}

func TestSynthesize_DegradedReflectedInResponse(t *testing.T) {
	s := NewSynthesizer()
	req := core.NewRequestContext("subject", core.Payload{Text: "x"})
	assessment := &core.AssessmentResult{OverallSeverity: core.SeverityLow, Degraded: true}
	decision := NewPolicy(0.6).Decide(core.SeverityLow, 0.4, true)

	resp := s.Synthesize(req, assessment, decision, core.SubjectContext{})
	if !resp.Degraded {
		t.Error("degraded assessment must be reflected on the response")
	}
}

func TestSynthesize_EmergencyMentionsEscalation(t *testing.T) {
	s := NewSynthesizer()
	req := core.NewRequestContext("subject", core.Payload{Text: "x"})
	assessment := &core.AssessmentResult{OverallSeverity: core.SeverityCritical}
	decision := NewPolicy(0.6).Decide(core.SeverityCritical, 0.97, false)

	resp := s.Synthesize(req, assessment, decision, core.SubjectContext{})
	if !strings.Contains(resp.Text, "immediate attention") {
		t.Errorf("emergency response should note the escalation, got: %q", resp.Text)
	}
}
