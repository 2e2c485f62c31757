package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/harborgate/accountd/internal/accounts/domain"
	"github.com/harborgate/accountd/internal/accounts/store"
	"github.com/harborgate/accountd/pkg/cryptox"
	"github.com/harborgate/accountd/pkg/idx"
	"github.com/harborgate/accountd/pkg/slogx"
)

var (
	ErrEmailTaken          = errors.New("email already registered")
	ErrInvalidRegistration = errors.New("email and password are required")
)

// RegistrationService creates new user accounts.
type RegistrationService struct {
	Store store.Store
}

// Register creates a user for the given email and password. The email is
// normalized once here, fixing the case policy at creation time. A taken
// email fails with ErrEmailTaken before any hashing work is done.
func (s *RegistrationService) Register(
	ctx context.Context,
	email string,
	password string,
) (domain.User, error) {
	log := slogx.FromContext(ctx)

	email = normalizeEmail(email)
	if email == "" || password == "" {
		return domain.User{}, ErrInvalidRegistration
	}

	// 1. Reject duplicates before burning Argon2 work (and before leaking a
	// timing difference between "taken" and "hash failed").
	// The address itself stays out of the log line: redaction only covers
	// handlers built through slogx, and the conflict is personal data.
	_, err := s.Store.Users().GetUserByEmail(ctx, email)
	if err == nil {
		log.Warn("registration attempted with taken email")
		return domain.User{}, ErrEmailTaken
	}
	if !errors.Is(err, store.ErrNotFound) {
		log.Error("failed to check email availability", "err", err)
		return domain.User{}, fmt.Errorf("checking email availability: %w", err)
	}

	// 2. Hash the password.
	hash, err := cryptox.HashPassword(password)
	if err != nil {
		log.Error("failed to hash password", "err", err)
		return domain.User{}, fmt.Errorf("hashing password: %w", err)
	}

	// 3. Create the user with no tokens. A concurrent registration can
	// still win the race; the unique email constraint reports it.
	now := time.Now().UTC()
	user := domain.User{
		ID:           idx.New().String(),
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.Store.Users().CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.User{}, ErrEmailTaken
		}
		log.Error("failed to create user", "err", err)
		return domain.User{}, fmt.Errorf("creating user: %w", err)
	}

	log.Info("user registered", "user_id", user.ID)
	return user, nil
}

// normalizeEmail fixes the email comparison policy: addresses are trimmed
// and lower-cased both at creation and at every lookup.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
