package cryptox

import (
	"crypto/sha256"
	"encoding/base64"
	"fmt"

	"github.com/google/uuid"
)

// TokenLength is the length of every token returned by NewToken.
const TokenLength = 36

// NewToken mints a fresh opaque token from a cryptographically secure random
// source. Tokens are UUIDv4 strings: fixed length, 122 bits of entropy and no
// decodable structure. Collisions are negligible over any realistic
// population, which lets stores index tokens as unique keys.
func NewToken() (string, error) {
	u, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return u.String(), nil
}

// FingerprintToken returns a deterministic SHA-256 fingerprint of a token,
// base64url encoded (43 chars). Stores hold fingerprints instead of raw
// tokens so a leaked database does not leak live sessions.
func FingerprintToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}
