package core

import "fmt"

// Severity classifies the risk level of a finding or assessment.
type Severity string

const (
	// SeverityUnknown marks an assessment computed from zero successful
	// findings. It never appears on an individual Finding.
	SeverityUnknown  Severity = "unknown"
	SeverityNone     Severity = "none"
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// severityRank orders severities for comparison. Unknown ranks below none
// so it can never win a max() over real findings.
var severityRank = map[Severity]int{
	SeverityUnknown:  -1,
	SeverityNone:     0,
	SeverityLow:      1,
	SeverityMedium:   2,
	SeverityHigh:     3,
	SeverityCritical: 4,
}

// Rank returns the comparison rank of the severity.
func (s Severity) Rank() int {
	return severityRank[s]
}

// AtLeast reports whether s is equal to or more severe than other.
func (s Severity) AtLeast(other Severity) bool {
	return s.Rank() >= other.Rank()
}

// MaxSeverity returns the more severe of a and b.
func MaxSeverity(a, b Severity) Severity {
	if b.Rank() > a.Rank() {
		return b
	}
	return a
}

// ParseSeverity converts a string to a Severity.
func ParseSeverity(s string) (Severity, error) {
	sev := Severity(s)
	if _, ok := severityRank[sev]; !ok {
		return SeverityUnknown, fmt.Errorf("unknown severity: %q", s)
	}
	return sev, nil
}

// IsValid reports whether the severity is a recognized value.
func (s Severity) IsValid() bool {
	_, ok := severityRank[s]
	return ok
}
