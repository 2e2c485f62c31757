package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/harborgate/accountd/internal/accounts/domain"
	"github.com/harborgate/accountd/internal/accounts/store"
	"github.com/harborgate/accountd/pkg/cryptox"
	"github.com/harborgate/accountd/pkg/slogx"
)

var (
	// ErrInvalidCredentials deliberately covers both "no such user" and
	// "wrong password" so callers cannot probe which emails exist.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrNoSession reports an absent, unknown, expired or already
	// logged-out session token.
	ErrNoSession = errors.New("no valid session")

	ErrTooManyAttempts = errors.New("too many login attempts")
)

// SessionService orchestrates login, session resolution and logout.
//
// TTL bounds the session lifetime; zero means sessions never expire.
// Throttle, when set, limits login attempts per email.
type SessionService struct {
	Store    store.Store
	TTL      time.Duration
	Throttle *LoginThrottle
}

// Login verifies the credentials and mints a fresh session token, replacing
// any previous session for the user. The raw token goes only to the caller;
// the store sees its fingerprint. A failed login never touches an existing
// session.
func (s *SessionService) Login(ctx context.Context, email, password string) (string, error) {
	log := slogx.FromContext(ctx)
	email = normalizeEmail(email)

	// 1. Throttle before any store or hashing work.
	if s.Throttle != nil && !s.Throttle.Allow(email) {
		log.Warn("login throttled")
		return "", ErrTooManyAttempts
	}

	// 2. Unknown email and wrong password produce the same failure.
	user, err := s.Store.Users().GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", ErrInvalidCredentials
		}
		log.Error("failed to look up user", "err", err)
		return "", fmt.Errorf("looking up user: %w", err)
	}

	ok, err := cryptox.VerifyPassword(password, user.PasswordHash)
	if err != nil {
		// The stored hash is unreadable. That is data corruption, not a bad
		// login, and it must not be masked as one.
		log.Error("stored password hash is malformed", "user_id", user.ID, "err", err)
		return "", fmt.Errorf("verifying password for user %s: %w", user.ID, err)
	}
	if !ok {
		return "", ErrInvalidCredentials
	}

	// 3. Mint the token and persist its fingerprint.
	token, err := cryptox.NewToken()
	if err != nil {
		log.Error("failed to generate session token", "err", err)
		return "", err
	}
	issuedAt := time.Now().UTC()
	if err := s.Store.Users().SetSessionToken(ctx, user.ID, cryptox.FingerprintToken(token), issuedAt); err != nil {
		log.Error("failed to persist session", "user_id", user.ID, "err", err)
		return "", fmt.Errorf("persisting session: %w", err)
	}

	log.Info("session opened", "user_id", user.ID)
	return token, nil
}

// Resolve maps a session token to its user. It is a pure read: no state
// transition ever happens here, even for expired sessions. An empty token
// short-circuits without touching the store.
func (s *SessionService) Resolve(ctx context.Context, token string) (domain.User, error) {
	if token == "" {
		return domain.User{}, ErrNoSession
	}

	user, err := s.Store.Users().GetUserBySessionToken(ctx, cryptox.FingerprintToken(token))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.User{}, ErrNoSession
		}
		return domain.User{}, fmt.Errorf("resolving session: %w", err)
	}

	if s.expired(user) {
		return domain.User{}, ErrNoSession
	}
	return user, nil
}

// Logout ends the session held by token. Logging out an unknown or already
// logged-out token is reported as ErrNoSession, never silently ignored, so
// callers can tell "logged out" from "was not logged in".
func (s *SessionService) Logout(ctx context.Context, token string) error {
	log := slogx.FromContext(ctx)

	// Resolve first so an expired session cannot be logged out either.
	user, err := s.Resolve(ctx, token)
	if err != nil {
		return err
	}

	if err := s.Store.Users().ClearSessionToken(ctx, cryptox.FingerprintToken(token)); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// Lost a race against another logout for the same token.
			return ErrNoSession
		}
		log.Error("failed to clear session", "user_id", user.ID, "err", err)
		return fmt.Errorf("clearing session: %w", err)
	}

	log.Info("session closed", "user_id", user.ID)
	return nil
}

// ResolveSession implements httpx.SessionResolver for the caller-side
// session middleware.
func (s *SessionService) ResolveSession(ctx context.Context, token string) (string, error) {
	user, err := s.Resolve(ctx, token)
	if err != nil {
		return "", err
	}
	return user.ID, nil
}

func (s *SessionService) expired(user domain.User) bool {
	if s.TTL <= 0 || user.SessionIssuedAt == nil {
		return false
	}
	return time.Since(*user.SessionIssuedAt) > s.TTL
}
