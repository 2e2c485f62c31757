package store

import (
	"context"
	"errors"
	"time"

	"github.com/harborgate/accountd/internal/accounts/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite for
// now) implement this. It exposes sub-repositories to keep concerns tidy
// and testable.
type Store interface {
	Users() Users

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes fn within a transaction. If fn returns an error the
	// transaction is rolled back, otherwise it is committed. Repositories
	// used inside fn must come from the Tx, not the outer Store.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds
// Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

// Users is the per-record contract the accounts core builds on. Every
// mutation is atomic per user record: the token-keyed operations update and
// test in a single statement, so two concurrent requests against the same
// record can never interleave into an unreadable state.
type Users interface {
	// CreateUser inserts a new user (id is provided by the app via ULID).
	// Returns ErrAlreadyExists when the email is taken.
	CreateUser(ctx context.Context, u domain.User) error

	// GetUserByID returns a user by id.
	GetUserByID(ctx context.Context, id string) (domain.User, error)

	// GetUserByEmail returns a user by normalized email.
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)

	// GetUserBySessionToken returns the user holding the live session with
	// this token fingerprint.
	GetUserBySessionToken(ctx context.Context, fingerprint string) (domain.User, error)

	// GetUserByResetToken returns the user with this outstanding reset
	// token fingerprint.
	GetUserByResetToken(ctx context.Context, fingerprint string) (domain.User, error)

	// SetSessionToken records a fresh session for the user, replacing any
	// previous one.
	SetSessionToken(ctx context.Context, userID, fingerprint string, issuedAt time.Time) error

	// ClearSessionToken ends the live session identified by the token
	// fingerprint. Returns ErrNotFound when no such session is live, so a
	// double logout is detectable.
	ClearSessionToken(ctx context.Context, fingerprint string) error

	// SetResetToken records an outstanding password reset for the user,
	// replacing any previous one.
	SetResetToken(ctx context.Context, userID, fingerprint string) error

	// ConsumeResetToken swaps in the new password hash and clears the
	// reset token in one atomic update, keyed by the token fingerprint.
	// Both changes land or neither does. Returns ErrNotFound when the
	// token is not outstanding (unknown, or already consumed).
	ConsumeResetToken(ctx context.Context, fingerprint, newPasswordHash string) error

	// UpdateProfile mutates the user's first and last name.
	UpdateProfile(ctx context.Context, userID, firstName, lastName string) error

	// IsEmpty returns true if there are no users.
	IsEmpty(ctx context.Context) (bool, error)
}
