package logging

import "regexp"

// Sanitizer redacts sensitive information before it reaches a log line or
// an audit summary. The pipeline handles raw user payloads and subject
// credentials; neither may appear verbatim in any log output.
type Sanitizer struct {
	patterns []*regexp.Regexp
	redacted string
}

// NewSanitizer creates a sanitizer with default patterns.
func NewSanitizer() *Sanitizer {
	return &Sanitizer{
		patterns: defaultPatterns(),
		redacted: "[REDACTED]",
	}
}

func defaultPatterns() []*regexp.Regexp {
	patterns := []string{
		// Bearer tokens presented at ingress
		`(?i)bearer\s+[a-zA-Z0-9._-]{20,}`,
		// Generic API keys and tokens
		`(?i)api[_-]?key["'\s:=]+[a-zA-Z0-9_-]{20,}`,
		`(?i)token["'\s:=]+[a-zA-Z0-9_-]{20,}`,
		// Generic secrets and passwords
		`(?i)secret["'\s:=]+[a-zA-Z0-9_-]{20,}`,
		`(?i)password["'\s:=]+[^\s"']{8,}`,
		// Email addresses in payload excerpts
		`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`,
		// US-style phone numbers
		`\+?1?[-.\s]?\(?\d{3}\)?[-.\s]?\d{3}[-.\s]?\d{4}\b`,
	}

	compiled := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		compiled = append(compiled, regexp.MustCompile(p))
	}
	return compiled
}

// Sanitize redacts sensitive information from a string.
func (s *Sanitizer) Sanitize(input string) string {
	result := input
	for _, pattern := range s.patterns {
		result = pattern.ReplaceAllString(result, s.redacted)
	}
	return result
}

// AddPattern adds a custom pattern.
func (s *Sanitizer) AddPattern(pattern string) error {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return err
	}
	s.patterns = append(s.patterns, re)
	return nil
}
