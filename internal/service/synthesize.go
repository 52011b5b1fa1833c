package service

import (
	"fmt"
	"strings"

	"github.com/guardrail-labs/sentinel/internal/core"
)

// Required disclosures for blocking decisions. Fixed: personalization
// never removes or rewords them.
var interventionDisclosures = []string{
	"This conversation has been flagged for review by a human escalation team.",
	"If you are in immediate danger, contact your local emergency number.",
	"Crisis support is available 24/7 via the 988 Suicide & Crisis Lifeline (call or text 988).",
}

// Synthesizer turns an assessment plus personalization context into the
// outbound response.
type Synthesizer struct{}

// NewSynthesizer creates a synthesizer.
func NewSynthesizer() *Synthesizer {
	return &Synthesizer{}
}

// Synthesize produces the final response. Blocking decisions get the
// fixed intervention payload; everything else gets a normal reply shaped
// by the subject's preferences.
func (s *Synthesizer) Synthesize(
	req *core.RequestContext,
	assessment *core.AssessmentResult,
	decision core.EscalationDecision,
	subject core.SubjectContext,
) *core.Response {
	resp := &core.Response{
		RequestID:  req.ID,
		Subject:    req.Subject,
		Assessment: assessment,
		Decision:   decision,
		Degraded:   assessment != nil && assessment.Degraded,
	}

	if decision.Blocking() {
		resp.Intervention = true
		resp.Disclosures = append([]string(nil), interventionDisclosures...)
		resp.Text = s.interventionText(decision)
		return resp
	}

	resp.Text = s.normalText(assessment, decision, subject)
	return resp
}

func (s *Synthesizer) interventionText(decision core.EscalationDecision) string {
	var b strings.Builder
	b.WriteString("We want to make sure you get the right support before continuing.\n")
	if decision.Level == core.EscalationEmergency {
		b.WriteString("This interaction has been escalated for immediate attention.\n")
	}
	for _, action := range decision.RequiredActions {
		b.WriteString(fmt.Sprintf("- action: %s\n", action))
	}
	return b.String()
}

func (s *Synthesizer) normalText(assessment *core.AssessmentResult, decision core.EscalationDecision, subject core.SubjectContext) string {
	var b strings.Builder

	greeting := "Thanks for reaching out."
	if tone, ok := subject.Preferences["tone"]; ok && tone == "casual" {
		greeting = "Hey, thanks for the message."
	}
	b.WriteString(greeting)

	if len(subject.RecentInteractions) > 0 {
		b.WriteString(" Following up on our last conversation.")
	}

	if decision.Level == core.EscalationMonitor {
		b.WriteString(" We noticed some signals worth keeping an eye on.")
	}
	if assessment != nil && assessment.Degraded {
		b.WriteString(" (Some analysis was incomplete for this interaction.)")
	}

	return b.String()
}

// InterventionDisclosures exposes the fixed disclosure set for tests and
// transports that render disclosures separately.
func InterventionDisclosures() []string {
	return append([]string(nil), interventionDisclosures...)
}
