// Package auth provides the ingress authenticator.
package auth

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"sync"

	"github.com/guardrail-labs/sentinel/internal/core"
)

// StaticAuthenticator resolves bearer tokens to subjects from a fixed
// table. Every entry is compared on every lookup with constant-time
// digest comparison, so lookup cost does not depend on whether, or
// where in the table, the presented token matches.
type StaticAuthenticator struct {
	mu      sync.RWMutex
	entries []entry
}

type entry struct {
	digest  [sha256.Size]byte
	subject core.SubjectID
}

// NewStaticAuthenticator builds an authenticator from a token -> subject map.
func NewStaticAuthenticator(tokens map[string]core.SubjectID) *StaticAuthenticator {
	a := &StaticAuthenticator{}
	for token, subject := range tokens {
		a.entries = append(a.entries, entry{
			digest:  sha256.Sum256([]byte(token)),
			subject: subject,
		})
	}
	return a
}

// Authenticate resolves credentials to a subject. Unknown or empty
// tokens are rejected with an auth error.
func (a *StaticAuthenticator) Authenticate(ctx context.Context, creds core.Credentials) (core.SubjectID, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if creds.Token == "" {
		return "", core.ErrAuth("MISSING_TOKEN", "no credentials presented")
	}

	digest := sha256.Sum256([]byte(creds.Token))

	a.mu.RLock()
	defer a.mu.RUnlock()

	// Scan the whole table even after a match; the first matching entry
	// wins.
	var subject core.SubjectID
	found := false
	for _, e := range a.entries {
		if subtle.ConstantTimeCompare(digest[:], e.digest[:]) == 1 && !found {
			subject = e.subject
			found = true
		}
	}
	if !found {
		return "", core.ErrAuth("UNKNOWN_TOKEN", "credentials not recognized")
	}
	return subject, nil
}

// AddToken registers a token at runtime.
func (a *StaticAuthenticator) AddToken(token string, subject core.SubjectID) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.entries = append(a.entries, entry{
		digest:  sha256.Sum256([]byte(token)),
		subject: subject,
	})
}
