package cryptox

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestNewToken(t *testing.T) {
	token, err := NewToken()
	require.NoError(t, err)
	require.Len(t, token, TokenLength)

	// Tokens are canonical UUIDv4 strings.
	parsed, err := uuid.Parse(token)
	require.NoError(t, err)
	require.Equal(t, uuid.Version(4), parsed.Version())
}

func TestNewToken_Unique(t *testing.T) {
	seen := make(map[string]struct{}, 1000)
	for i := 0; i < 1000; i++ {
		token, err := NewToken()
		require.NoError(t, err)

		_, dup := seen[token]
		require.False(t, dup, "token %q minted twice", token)
		seen[token] = struct{}{}
	}
}

func TestFingerprintToken(t *testing.T) {
	fp := FingerprintToken("some-token")

	require.Len(t, fp, 43, "base64url SHA-256 is 43 chars")
	require.Equal(t, fp, FingerprintToken("some-token"), "fingerprints are deterministic")
	require.NotEqual(t, fp, FingerprintToken("other-token"))
	require.NotContains(t, fp, "some-token", "fingerprint must not leak the token")
}
