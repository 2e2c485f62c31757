package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/harborgate/accountd/internal/accounts/store"
	"github.com/harborgate/accountd/pkg/cryptox"
	"github.com/harborgate/accountd/pkg/slogx"
)

var (
	// ErrUserNotFound reports a reset request for an unknown email. Whether
	// that is distinguishable from success at the outer boundary is the
	// caller's disclosure policy; the core surfaces the precise outcome.
	ErrUserNotFound = errors.New("no account for that email")

	ErrInvalidResetToken = errors.New("invalid or consumed reset token")
	ErrPasswordRequired  = errors.New("a new password is required")
)

// ResetService issues and consumes single-use password-reset tokens.
type ResetService struct {
	Store store.Store
}

// RequestReset mints a reset token for the account behind email, replacing
// any outstanding one. The raw token goes only to the caller; the store
// sees its fingerprint.
func (s *ResetService) RequestReset(ctx context.Context, email string) (string, error) {
	log := slogx.FromContext(ctx)
	email = normalizeEmail(email)

	user, err := s.Store.Users().GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", ErrUserNotFound
		}
		log.Error("failed to look up user", "err", err)
		return "", fmt.Errorf("looking up user: %w", err)
	}

	token, err := cryptox.NewToken()
	if err != nil {
		log.Error("failed to generate reset token", "err", err)
		return "", err
	}
	if err := s.Store.Users().SetResetToken(ctx, user.ID, cryptox.FingerprintToken(token)); err != nil {
		log.Error("failed to persist reset token", "user_id", user.ID, "err", err)
		return "", fmt.Errorf("persisting reset token: %w", err)
	}

	log.Info("password reset requested", "user_id", user.ID)
	return token, nil
}

// UpdatePassword consumes a reset token: the new password hash lands and
// the token is cleared in one atomic step, both or neither. Reusing a
// consumed token fails with ErrInvalidResetToken.
func (s *ResetService) UpdatePassword(ctx context.Context, token, newPassword string) error {
	log := slogx.FromContext(ctx)

	if token == "" {
		return ErrInvalidResetToken
	}
	if newPassword == "" {
		return ErrPasswordRequired
	}
	fingerprint := cryptox.FingerprintToken(token)

	// 1. Fail fast before burning Argon2 work on a bogus token.
	user, err := s.Store.Users().GetUserByResetToken(ctx, fingerprint)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrInvalidResetToken
		}
		log.Error("failed to look up reset token", "err", err)
		return fmt.Errorf("looking up reset token: %w", err)
	}

	// 2. Hash the new password.
	hash, err := cryptox.HashPassword(newPassword)
	if err != nil {
		log.Error("failed to hash new password", "user_id", user.ID, "err", err)
		return fmt.Errorf("hashing new password: %w", err)
	}

	// 3. Swap the password and consume the token atomically. A concurrent
	// consume of the same token loses the race here and is reported as an
	// invalid token, not as a second success.
	if err := s.Store.Users().ConsumeResetToken(ctx, fingerprint, hash); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrInvalidResetToken
		}
		log.Error("failed to consume reset token", "user_id", user.ID, "err", err)
		return fmt.Errorf("consuming reset token: %w", err)
	}

	log.Info("password updated", "user_id", user.ID)
	return nil
}
