package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/harborgate/accountd/internal/accounts/domain"
	"github.com/harborgate/accountd/internal/accounts/store"
	"github.com/harborgate/accountd/pkg/idx"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	require.NoError(t, s.ApplyMigrations())
	return s
}

func seedUser(t *testing.T, s *Store, email string) domain.User {
	t.Helper()

	now := time.Now().UTC()
	u := domain.User{
		ID:           idx.New().String(),
		Email:        email,
		PasswordHash: "$argon2id$v=19$m=19456,t=2,p=1$c2FsdA$aGFzaA",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	require.NoError(t, s.Users().CreateUser(context.Background(), u))
	return u
}

func TestCreateUser(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	seeded := seedUser(t, s, "a@x.com")

	got, err := s.Users().GetUserByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	require.Equal(t, seeded.ID, got.ID)
	require.Equal(t, seeded.PasswordHash, got.PasswordHash)
	require.Nil(t, got.SessionToken, "fresh users hold no session")
	require.Nil(t, got.ResetToken, "fresh users hold no reset token")
	require.False(t, got.CreatedAt.IsZero())

	t.Run("duplicate email", func(t *testing.T) {
		dup := seeded
		dup.ID = idx.New().String()
		require.ErrorIs(t, s.Users().CreateUser(ctx, dup), store.ErrAlreadyExists)
	})

	t.Run("unknown lookups", func(t *testing.T) {
		_, err := s.Users().GetUserByEmail(ctx, "missing@x.com")
		require.ErrorIs(t, err, store.ErrNotFound)
		_, err = s.Users().GetUserByID(ctx, idx.New().String())
		require.ErrorIs(t, err, store.ErrNotFound)
	})
}

func TestSessionTokenLifecycle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	u := seedUser(t, s, "a@x.com")

	issuedAt := time.Now().UTC().Truncate(time.Second)
	require.NoError(t, s.Users().SetSessionToken(ctx, u.ID, "fp-1", issuedAt))

	got, err := s.Users().GetUserBySessionToken(ctx, "fp-1")
	require.NoError(t, err)
	require.Equal(t, u.ID, got.ID)
	require.NotNil(t, got.SessionIssuedAt)
	require.WithinDuration(t, issuedAt, *got.SessionIssuedAt, time.Second)

	t.Run("login replaces the previous session", func(t *testing.T) {
		require.NoError(t, s.Users().SetSessionToken(ctx, u.ID, "fp-2", time.Now().UTC()))

		_, err := s.Users().GetUserBySessionToken(ctx, "fp-1")
		require.ErrorIs(t, err, store.ErrNotFound)

		got, err := s.Users().GetUserBySessionToken(ctx, "fp-2")
		require.NoError(t, err)
		require.Equal(t, u.ID, got.ID)
	})

	t.Run("clear is keyed by token and detects double logout", func(t *testing.T) {
		require.NoError(t, s.Users().ClearSessionToken(ctx, "fp-2"))

		got, err := s.Users().GetUserByID(ctx, u.ID)
		require.NoError(t, err)
		require.Nil(t, got.SessionToken)
		require.Nil(t, got.SessionIssuedAt)

		require.ErrorIs(t, s.Users().ClearSessionToken(ctx, "fp-2"), store.ErrNotFound)
	})

	t.Run("set for unknown user", func(t *testing.T) {
		err := s.Users().SetSessionToken(ctx, idx.New().String(), "fp-3", time.Now().UTC())
		require.ErrorIs(t, err, store.ErrNotFound)
	})
}

func TestResetTokenLifecycle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	u := seedUser(t, s, "a@x.com")

	require.NoError(t, s.Users().SetResetToken(ctx, u.ID, "reset-fp"))

	got, err := s.Users().GetUserByResetToken(ctx, "reset-fp")
	require.NoError(t, err)
	require.Equal(t, u.ID, got.ID)

	t.Run("consume swaps password and clears token atomically", func(t *testing.T) {
		newHash := "$argon2id$v=19$m=19456,t=2,p=1$bmV3c2FsdA$bmV3aGFzaA"
		require.NoError(t, s.Users().ConsumeResetToken(ctx, "reset-fp", newHash))

		got, err := s.Users().GetUserByID(ctx, u.ID)
		require.NoError(t, err)
		require.Equal(t, newHash, got.PasswordHash)
		require.Nil(t, got.ResetToken)
	})

	t.Run("consumed token cannot be consumed again", func(t *testing.T) {
		err := s.Users().ConsumeResetToken(ctx, "reset-fp", "another-hash")
		require.ErrorIs(t, err, store.ErrNotFound)

		// The failed consume must not have touched the password.
		got, err := s.Users().GetUserByID(ctx, u.ID)
		require.NoError(t, err)
		require.NotEqual(t, "another-hash", got.PasswordHash)
	})
}

func TestUniqueTokenIndexes(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	a := seedUser(t, s, "a@x.com")
	b := seedUser(t, s, "b@x.com")

	require.NoError(t, s.Users().SetSessionToken(ctx, a.ID, "shared-fp", time.Now().UTC()))
	require.Error(t, s.Users().SetSessionToken(ctx, b.ID, "shared-fp", time.Now().UTC()),
		"a live token value must be unambiguous across the population")

	require.NoError(t, s.Users().SetResetToken(ctx, a.ID, "shared-reset"))
	require.Error(t, s.Users().SetResetToken(ctx, b.ID, "shared-reset"))
}

func TestUpdateProfileAndIsEmpty(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	empty, err := s.Users().IsEmpty(ctx)
	require.NoError(t, err)
	require.True(t, empty)

	u := seedUser(t, s, "a@x.com")

	empty, err = s.Users().IsEmpty(ctx)
	require.NoError(t, err)
	require.False(t, empty)

	require.NoError(t, s.Users().UpdateProfile(ctx, u.ID, "Ada", "Lovelace"))
	got, err := s.Users().GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, "Ada Lovelace", got.DisplayName())

	require.ErrorIs(t,
		s.Users().UpdateProfile(ctx, idx.New().String(), "x", "y"),
		store.ErrNotFound)
}

func TestWithTx(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	u := seedUser(t, s, "a@x.com")

	t.Run("rollback on error", func(t *testing.T) {
		sentinel := errors.New("abort")
		err := s.WithTx(ctx, func(tx store.Tx) error {
			if err := tx.Users().SetResetToken(ctx, u.ID, "tx-fp"); err != nil {
				return err
			}
			return sentinel
		})
		require.ErrorIs(t, err, sentinel)

		_, err = s.Users().GetUserByResetToken(ctx, "tx-fp")
		require.ErrorIs(t, err, store.ErrNotFound, "rolled-back writes must not be visible")
	})

	t.Run("commit on success", func(t *testing.T) {
		err := s.WithTx(ctx, func(tx store.Tx) error {
			return tx.Users().SetResetToken(ctx, u.ID, "tx-fp")
		})
		require.NoError(t, err)

		got, err := s.Users().GetUserByResetToken(ctx, "tx-fp")
		require.NoError(t, err)
		require.Equal(t, u.ID, got.ID)
	})
}
