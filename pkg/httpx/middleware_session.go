package httpx

import (
	"context"
	"net/http"
	"strings"

	"github.com/harborgate/accountd/pkg/slogx"
)

// DefaultSessionCookie is the cookie consulted for the session token when
// no explicit name is configured.
const DefaultSessionCookie = "_session_id"

// Middleware is a standard net/http middleware.
type Middleware func(http.Handler) http.Handler

// SessionResolver resolves an opaque session token to the ID of the user
// who owns it. Implementations must reject empty, unknown and expired
// tokens with an error.
type SessionResolver interface {
	ResolveSession(ctx context.Context, token string) (userID string, err error)
}

// SessionMiddleware authenticates requests by opaque session token, taken
// from the session cookie or an Authorization Bearer header. On success the
// user ID is injected into the request context under CtxKeyUserID; on
// failure the request is rejected with 401 before reaching the handler.
func SessionMiddleware(resolver SessionResolver, cookieName string) Middleware {
	if cookieName == "" {
		cookieName = DefaultSessionCookie
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			log := slogx.FromContext(ctx)

			token := sessionToken(r, cookieName)
			if token == "" {
				writeUnauthorized(w, "missing session token")
				return
			}

			userID, err := resolver.ResolveSession(ctx, token)
			if err != nil {
				log.Warn("session resolution failed", "err", err)
				writeUnauthorized(w, "invalid session token")
				return
			}

			ctx = context.WithValue(ctx, CtxKeyUserID, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func sessionToken(r *http.Request, cookieName string) string {
	if c, err := r.Cookie(cookieName); err == nil && c.Value != "" {
		return c.Value
	}
	if authz := r.Header.Get("Authorization"); strings.HasPrefix(authz, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(authz, "Bearer"))
	}
	return ""
}

func writeUnauthorized(w http.ResponseWriter, desc string) {
	WriteJSON(w, http.StatusUnauthorized, map[string]string{
		"error":             "unauthorized",
		"error_description": desc,
	})
}
