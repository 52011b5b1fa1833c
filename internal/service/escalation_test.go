package service

import (
	"testing"

	"github.com/guardrail-labs/sentinel/internal/core"
)

func TestDecide_CriticalAlwaysEscalates(t *testing.T) {
	p := NewPolicy(0.6)

	// Bias property: critical severity never lands below intervene,
	// including at confidence zero and when degraded.
	confidences := []float64{0, 0.1, 0.5, 0.59, 0.6, 0.9, 1.0}
	for _, conf := range confidences {
		for _, degraded := range []bool{false, true} {
			d := p.Decide(core.SeverityCritical, conf, degraded)
			if !d.Level.AtLeast(core.EscalationIntervene) {
				t.Errorf("Decide(critical, %v, %t) = %s, want at least intervene",
					conf, degraded, d.Level)
			}
			if !d.BlocksNormalResponse {
				t.Errorf("Decide(critical, %v, %t) should block the normal response", conf, degraded)
			}
		}
	}
}

func TestDecide_CriticalNearCertainIsEmergency(t *testing.T) {
	p := NewPolicy(0.6)

	if d := p.Decide(core.SeverityCritical, 0.97, false); d.Level != core.EscalationEmergency {
		t.Errorf("near-certain critical = %s, want emergency", d.Level)
	}
	// At 0.9 critical stays at intervene.
	if d := p.Decide(core.SeverityCritical, 0.9, false); d.Level != core.EscalationIntervene {
		t.Errorf("critical at 0.9 = %s, want intervene", d.Level)
	}
	// A degraded result never reaches emergency.
	if d := p.Decide(core.SeverityCritical, 0.99, true); d.Level != core.EscalationIntervene {
		t.Errorf("degraded critical = %s, want intervene", d.Level)
	}
}

func TestDecide_HighConfidenceFloor(t *testing.T) {
	p := NewPolicy(0.6)

	if d := p.Decide(core.SeverityHigh, 0.6, false); d.Level != core.EscalationIntervene {
		t.Errorf("high at floor = %s, want intervene", d.Level)
	}
	if d := p.Decide(core.SeverityHigh, 0.59, false); d.Level != core.EscalationMonitor {
		t.Errorf("high below floor = %s, want monitor", d.Level)
	}
}

func TestDecide_DegradedNeverBelowMonitor(t *testing.T) {
	p := NewPolicy(0.6)

	for _, sev := range []core.Severity{core.SeverityMedium, core.SeverityHigh, core.SeverityUnknown} {
		d := p.Decide(sev, 0, true)
		if !d.Level.AtLeast(core.EscalationMonitor) {
			t.Errorf("Decide(%s, 0, degraded) = %s, want at least monitor", sev, d.Level)
		}
	}
}

func TestDecide_LowRisk(t *testing.T) {
	p := NewPolicy(0.6)

	for _, sev := range []core.Severity{core.SeverityNone, core.SeverityLow} {
		d := p.Decide(sev, 0.9, false)
		if d.Level != core.EscalationNone {
			t.Errorf("Decide(%s) = %s, want none", sev, d.Level)
		}
		if d.BlocksNormalResponse {
			t.Errorf("Decide(%s) should not block", sev)
		}
	}
}

func TestDecide_MediumMonitors(t *testing.T) {
	p := NewPolicy(0.6)
	if d := p.Decide(core.SeverityMedium, 0.5, false); d.Level != core.EscalationMonitor {
		t.Errorf("medium = %s, want monitor", d.Level)
	}
}

func TestDecide_RequiredActions(t *testing.T) {
	p := NewPolicy(0.6)

	if d := p.Decide(core.SeverityNone, 0.5, false); len(d.RequiredActions) != 0 {
		t.Errorf("none should carry no actions, got %v", d.RequiredActions)
	}
	d := p.Decide(core.SeverityCritical, 0.97, false)
	found := false
	for _, a := range d.RequiredActions {
		if a == "contact_emergency_services" {
			found = true
		}
	}
	if !found {
		t.Errorf("emergency actions missing emergency contact: %v", d.RequiredActions)
	}
}

func TestSetThresholds_HotSwap(t *testing.T) {
	p := NewPolicy(0.6)

	if d := p.Decide(core.SeverityHigh, 0.7, false); d.Level != core.EscalationIntervene {
		t.Fatalf("precondition: high at 0.7 should intervene, got %s", d.Level)
	}

	p.SetThresholds(0.8)
	if d := p.Decide(core.SeverityHigh, 0.7, false); d.Level != core.EscalationMonitor {
		t.Errorf("after raising floor to 0.8, high at 0.7 = %s, want monitor", d.Level)
	}
}

func TestDecide_IsPure(t *testing.T) {
	p := NewPolicy(0.6)
	a := p.Decide(core.SeverityHigh, 0.7, true)
	b := p.Decide(core.SeverityHigh, 0.7, true)
	if a.Level != b.Level || a.Reason != b.Reason || len(a.RequiredActions) != len(b.RequiredActions) {
		t.Error("identical inputs must produce identical decisions")
	}
}
