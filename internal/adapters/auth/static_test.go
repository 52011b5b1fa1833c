package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guardrail-labs/sentinel/internal/core"
)

func TestStaticAuthenticator_KnownToken(t *testing.T) {
	a := NewStaticAuthenticator(map[string]core.SubjectID{
		"tok-alice": "alice",
		"tok-bob":   "bob",
	})

	subject, err := a.Authenticate(t.Context(), core.Credentials{Token: "tok-bob"})
	require.NoError(t, err)
	assert.Equal(t, core.SubjectID("bob"), subject)
}

func TestStaticAuthenticator_UnknownToken(t *testing.T) {
	a := NewStaticAuthenticator(map[string]core.SubjectID{"tok-alice": "alice"})

	_, err := a.Authenticate(t.Context(), core.Credentials{Token: "tok-mallory"})
	require.Error(t, err)
	assert.Equal(t, core.ErrCatAuth, core.CategoryOf(err))
}

func TestStaticAuthenticator_EmptyToken(t *testing.T) {
	a := NewStaticAuthenticator(nil)

	_, err := a.Authenticate(t.Context(), core.Credentials{})
	require.Error(t, err)
	assert.Equal(t, core.ErrCatAuth, core.CategoryOf(err))
}

func TestStaticAuthenticator_FullScanKeepsFirstMatch(t *testing.T) {
	// The lookup scans every entry; a later duplicate must not shadow
	// the original mapping.
	a := NewStaticAuthenticator(map[string]core.SubjectID{"tok-shared": "original"})
	a.AddToken("tok-shared", "impostor")

	subject, err := a.Authenticate(t.Context(), core.Credentials{Token: "tok-shared"})
	require.NoError(t, err)
	assert.Equal(t, core.SubjectID("original"), subject)
}

func TestStaticAuthenticator_AddToken(t *testing.T) {
	a := NewStaticAuthenticator(nil)
	a.AddToken("tok-new", "newcomer")

	subject, err := a.Authenticate(t.Context(), core.Credentials{Token: "tok-new"})
	require.NoError(t, err)
	assert.Equal(t, core.SubjectID("newcomer"), subject)
}
