package service

import (
	"testing"

	"github.com/harborgate/accountd/internal/accounts/store"
	"github.com/harborgate/accountd/internal/accounts/store/drivers/sqlite"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) store.Store {
	t.Helper()

	s, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	require.NoError(t, s.ApplyMigrations())
	return s
}

func newServices(t *testing.T) (*RegistrationService, *SessionService, *ResetService) {
	t.Helper()

	db := newTestStore(t)
	return &RegistrationService{Store: db},
		&SessionService{Store: db},
		&ResetService{Store: db}
}
