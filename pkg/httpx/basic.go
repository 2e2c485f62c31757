package httpx

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
)

// ErrMalformedAuthorization reports an Authorization header value that does
// not carry decodable Basic credentials.
var ErrMalformedAuthorization = errors.New("httpx: malformed authorization header")

// ParseBasicCredentials extracts the email and password from a Basic
// Authorization header value (`Basic base64(email:password)`). The decoded
// payload is split on the FIRST colon only, so passwords may themselves
// contain colons.
func ParseBasicCredentials(authorization string) (email, password string, err error) {
	const prefix = "Basic "
	if !strings.HasPrefix(authorization, prefix) {
		return "", "", fmt.Errorf("%w: missing Basic scheme", ErrMalformedAuthorization)
	}

	raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(authorization[len(prefix):]))
	if err != nil {
		return "", "", fmt.Errorf("%w: %v", ErrMalformedAuthorization, err)
	}

	email, password, ok := strings.Cut(string(raw), ":")
	if !ok || email == "" {
		return "", "", fmt.Errorf("%w: expected email:password payload", ErrMalformedAuthorization)
	}
	return email, password, nil
}
