package service

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/harborgate/accountd/pkg/cryptox"
	"github.com/harborgate/accountd/pkg/idx"
	"github.com/harborgate/accountd/pkg/slogx"
	"github.com/stretchr/testify/require"
)

func TestRegister(t *testing.T) {
	registration, _, _ := newServices(t)
	ctx := context.Background()

	user, err := registration.Register(ctx, "a@x.com", "secret1")
	require.NoError(t, err)

	_, err = idx.Parse(user.ID)
	require.NoError(t, err, "IDs are store-assigned ULIDs")
	require.Equal(t, "a@x.com", user.Email)
	require.Nil(t, user.SessionToken, "fresh users hold no session")
	require.Nil(t, user.ResetToken, "fresh users hold no reset token")

	require.NotEmpty(t, user.PasswordHash)
	require.NotContains(t, user.PasswordHash, "secret1", "plaintext must never be stored")
	ok, err := cryptox.VerifyPassword("secret1", user.PasswordHash)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestRegister_EmailTaken(t *testing.T) {
	registration, _, _ := newServices(t)
	ctx := context.Background()

	_, err := registration.Register(ctx, "a@x.com", "secret1")
	require.NoError(t, err)

	_, err = registration.Register(ctx, "a@x.com", "completely-different")
	require.ErrorIs(t, err, ErrEmailTaken)
}

func TestRegister_EmailNormalization(t *testing.T) {
	registration, sessions, _ := newServices(t)
	ctx := context.Background()

	user, err := registration.Register(ctx, "  A@X.com ", "secret1")
	require.NoError(t, err)
	require.Equal(t, "a@x.com", user.Email, "case policy is fixed at creation")

	_, err = registration.Register(ctx, "a@X.COM", "secret2")
	require.ErrorIs(t, err, ErrEmailTaken)

	// Lookups normalize the same way.
	_, err = sessions.Login(ctx, "A@x.COM", "secret1")
	require.NoError(t, err)
}

func TestRegister_TakenEmailStaysOutOfLogs(t *testing.T) {
	registration, sessions, _ := newServices(t)

	// A bare handler with no redaction: anything the services put into an
	// attr lands in the output verbatim.
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	ctx := slogx.WithContext(context.Background(), logger)

	_, err := registration.Register(ctx, "a@x.com", "secret1")
	require.NoError(t, err)
	_, err = registration.Register(ctx, "a@x.com", "secret2")
	require.ErrorIs(t, err, ErrEmailTaken)

	sessions.Throttle = NewLoginThrottle(1, time.Minute)
	_, err = sessions.Login(ctx, "a@x.com", "wrong")
	require.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = sessions.Login(ctx, "a@x.com", "wrong")
	require.ErrorIs(t, err, ErrTooManyAttempts)

	require.NotContains(t, buf.String(), "a@x.com",
		"warn paths must not hand the address to an unredacted handler")
}

func TestRegister_Validation(t *testing.T) {
	registration, _, _ := newServices(t)
	ctx := context.Background()

	_, err := registration.Register(ctx, "", "secret1")
	require.ErrorIs(t, err, ErrInvalidRegistration)

	_, err = registration.Register(ctx, "a@x.com", "")
	require.ErrorIs(t, err, ErrInvalidRegistration)
}
