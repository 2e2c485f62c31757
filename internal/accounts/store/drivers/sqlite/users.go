package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/harborgate/accountd/internal/accounts/domain"
	"github.com/harborgate/accountd/internal/accounts/store"
)

type usersRepo struct {
	q querier
}

const userColumns = `id, email, first_name, last_name, password_hash,
	session_token, session_issued_at, reset_token, created_at, updated_at`

func (r *usersRepo) scanUser(row *sql.Row) (domain.User, error) {
	var (
		u             domain.User
		sessionToken  sql.NullString
		sessionIssued sql.NullTime
		resetToken    sql.NullString
	)
	err := row.Scan(
		&u.ID,
		&u.Email,
		&u.FirstName,
		&u.LastName,
		&u.PasswordHash,
		&sessionToken,
		&sessionIssued,
		&resetToken,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}

	u.SessionToken = mapNullStringPtr(sessionToken)
	u.SessionIssuedAt = mapNullTimePtr(sessionIssued)
	u.ResetToken = mapNullStringPtr(resetToken)
	return u, nil
}

func (r *usersRepo) CreateUser(ctx context.Context, u domain.User) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO users (id, email, first_name, last_name, password_hash, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.Email, u.FirstName, u.LastName, u.PasswordHash, u.CreatedAt, u.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrAlreadyExists
		}
		return err
	}
	return nil
}

func (r *usersRepo) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	return r.scanUser(r.q.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id))
}

func (r *usersRepo) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	return r.scanUser(r.q.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = ?`, email))
}

func (r *usersRepo) GetUserBySessionToken(ctx context.Context, fingerprint string) (domain.User, error) {
	return r.scanUser(r.q.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE session_token = ?`, fingerprint))
}

func (r *usersRepo) GetUserByResetToken(ctx context.Context, fingerprint string) (domain.User, error) {
	return r.scanUser(r.q.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE reset_token = ?`, fingerprint))
}

func (r *usersRepo) SetSessionToken(ctx context.Context, userID, fingerprint string, issuedAt time.Time) error {
	return r.exec(ctx, `
		UPDATE users
		SET session_token = ?, session_issued_at = ?, updated_at = ?
		WHERE id = ?`,
		fingerprint, issuedAt, time.Now().UTC(), userID,
	)
}

func (r *usersRepo) ClearSessionToken(ctx context.Context, fingerprint string) error {
	// Keyed by the token value so two racing logouts cannot both succeed.
	return r.exec(ctx, `
		UPDATE users
		SET session_token = NULL, session_issued_at = NULL, updated_at = ?
		WHERE session_token = ?`,
		time.Now().UTC(), fingerprint,
	)
}

func (r *usersRepo) SetResetToken(ctx context.Context, userID, fingerprint string) error {
	return r.exec(ctx, `
		UPDATE users
		SET reset_token = ?, updated_at = ?
		WHERE id = ?`,
		fingerprint, time.Now().UTC(), userID,
	)
}

func (r *usersRepo) ConsumeResetToken(ctx context.Context, fingerprint, newPasswordHash string) error {
	// Password swap and token clear land in one statement: both or neither.
	return r.exec(ctx, `
		UPDATE users
		SET password_hash = ?, reset_token = NULL, updated_at = ?
		WHERE reset_token = ?`,
		newPasswordHash, time.Now().UTC(), fingerprint,
	)
}

func (r *usersRepo) UpdateProfile(ctx context.Context, userID, firstName, lastName string) error {
	return r.exec(ctx, `
		UPDATE users
		SET first_name = ?, last_name = ?, updated_at = ?
		WHERE id = ?`,
		firstName, lastName, time.Now().UTC(), userID,
	)
}

func (r *usersRepo) IsEmpty(ctx context.Context) (bool, error) {
	var count int64
	if err := r.q.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
		return false, err
	}
	return count == 0, nil
}

// exec runs an UPDATE and maps "no rows touched" to store.ErrNotFound.
func (r *usersRepo) exec(ctx context.Context, query string, args ...any) error {
	res, err := r.q.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return store.ErrNotFound
	}
	return nil
}
