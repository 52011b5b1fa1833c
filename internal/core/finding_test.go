package core

import (
	"errors"
	"testing"
	"time"
)

func TestFindingValidate_Success(t *testing.T) {
	f := Finding{
		Source:     "threat",
		Severity:   SeverityLow,
		Confidence: 0.8,
		Evidence:   []string{"pattern match"},
	}
	if err := f.Validate(); err != nil {
		t.Errorf("Validate() = %v, want nil", err)
	}
}

func TestFindingValidate_Failed(t *testing.T) {
	f := FailedFinding("forensic", errors.New("backend unavailable"))
	if err := f.Validate(); err != nil {
		t.Errorf("Validate() on failed finding = %v, want nil", err)
	}
	if !f.Failed() {
		t.Error("FailedFinding() should report Failed()")
	}
	if f.ErrMessage == "" {
		t.Error("FailedFinding() should mirror the error message")
	}
}

func TestFindingValidate_BothSet(t *testing.T) {
	f := Finding{
		Source:   "threat",
		Severity: SeverityHigh,
		Err:      errors.New("boom"),
	}
	if err := f.Validate(); err == nil {
		t.Error("Validate() should reject finding with both severity and error")
	}
}

func TestFindingValidate_NeitherSet(t *testing.T) {
	f := Finding{Source: "threat"}
	if err := f.Validate(); err == nil {
		t.Error("Validate() should reject finding with neither severity nor error")
	}
}

func TestFindingValidate_ConfidenceRange(t *testing.T) {
	f := Finding{Source: "crisis", Severity: SeverityMedium, Confidence: 1.3}
	if err := f.Validate(); err == nil {
		t.Error("Validate() should reject confidence above 1")
	}
	f.Confidence = -0.1
	if err := f.Validate(); err == nil {
		t.Error("Validate() should reject negative confidence")
	}
}

func TestFindingValidate_UnknownSeverity(t *testing.T) {
	f := Finding{Source: "crisis", Severity: SeverityUnknown, Confidence: 0.5}
	if err := f.Validate(); err == nil {
		t.Error("Validate() should reject unknown severity on a successful finding")
	}
}

func TestTimedOutFinding(t *testing.T) {
	f := TimedOutFinding("behavioral", 2*time.Second)
	if !f.Failed() {
		t.Error("timed-out finding should report Failed()")
	}
	if !f.TimedOut() {
		t.Error("timed-out finding should report TimedOut()")
	}
	if CategoryOf(f.Err) != ErrCatTimeout {
		t.Errorf("timeout category = %s, want %s", CategoryOf(f.Err), ErrCatTimeout)
	}
}

func TestTimedOut_FalseForPlainFailure(t *testing.T) {
	f := FailedFinding("behavioral", errors.New("boom"))
	if f.TimedOut() {
		t.Error("plain failure should not report TimedOut()")
	}
}
