package domain

import "time"

// User is the single identity-bearing record of the accounts core.
//
// The two token facets are independent: a user may hold a live session, an
// outstanding password reset, both, or neither. Tokens are stored as
// SHA-256 fingerprints, never raw.
type User struct {
	ID              string
	Email           string // unique, normalized at creation, immutable afterwards
	FirstName       string
	LastName        string
	PasswordHash    string     // argon2id PHC string, never empty
	SessionToken    *string    // fingerprint of the live session token, nil when logged out
	SessionIssuedAt *time.Time // when the live session was minted
	ResetToken      *string    // fingerprint of the outstanding reset token
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// DisplayName returns the friendliest name we can build from the record,
// falling back to the email address when no names are set.
func (u User) DisplayName() string {
	switch {
	case u.FirstName != "" && u.LastName != "":
		return u.FirstName + " " + u.LastName
	case u.FirstName != "":
		return u.FirstName
	case u.LastName != "":
		return u.LastName
	default:
		return u.Email
	}
}

// LoggedIn reports whether the user holds a live session token.
func (u User) LoggedIn() bool { return u.SessionToken != nil }

// ResetPending reports whether a password reset is outstanding.
func (u User) ResetPending() bool { return u.ResetToken != nil }
