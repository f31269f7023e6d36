// Package account models the logins that gate the editing surfaces.
// Members never log in; the kiosk is anonymous and keyed by member
// address. Accounts exist only for stewards and admins.
package account

import (
	"errors"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Roles. Admins additionally manage accounts and ledger configuration;
// editors run the day-to-day attendance commands.
const (
	RoleAdmin  = "admin"
	RoleEditor = "editor"
)

const (
	maxEmailLen    = 254
	minPasswordLen = 12
	bcryptCost     = 12

	maxFailedLogins = 5
	lockoutWindow   = 15 * time.Minute
)

var (
	ErrEmptyEmail       = errors.New("email is required")
	ErrEmailTooLong     = errors.New("email cannot exceed 254 characters")
	ErrInvalidEmail     = errors.New("email must include '@'")
	ErrInvalidRole      = errors.New("role must be one of: admin, editor")
	ErrEmptyPassword    = errors.New("password is required")
	ErrPasswordTooShort = errors.New("password must be 12 characters or longer")
	ErrWrongPassword    = errors.New("wrong password")
)

// Account is one login on the editor allowlist.
type Account struct {
	ID           string
	Email        string
	PasswordHash string
	Role         string
	CreatedAt    time.Time
	FailedLogins int
	LockedUntil  time.Time
}

// Validate checks the email shape and the role. Password state is
// handled separately by SetPassword.
func (a *Account) Validate() error {
	switch {
	case strings.TrimSpace(a.Email) == "":
		return ErrEmptyEmail
	case len(a.Email) > maxEmailLen:
		return ErrEmailTooLong
	case !strings.Contains(a.Email, "@"):
		return ErrInvalidEmail
	}
	if a.Role != RoleAdmin && a.Role != RoleEditor {
		return ErrInvalidRole
	}
	return nil
}

// SetPassword hashes plaintext into PasswordHash. Short passwords are
// refused outright; length is the only complexity rule.
func (a *Account) SetPassword(plaintext string) error {
	if plaintext == "" {
		return ErrEmptyPassword
	}
	if len(plaintext) < minPasswordLen {
		return ErrPasswordTooShort
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), bcryptCost)
	if err != nil {
		return err
	}
	a.PasswordHash = string(hash)
	return nil
}

// CheckPassword compares plaintext against the stored hash.
func (a *Account) CheckPassword(plaintext string) error {
	if a.PasswordHash == "" {
		return ErrWrongPassword
	}
	if bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(plaintext)) != nil {
		return ErrWrongPassword
	}
	return nil
}

// IsLocked reports whether a lockout window is still open.
func (a *Account) IsLocked() bool {
	return !a.LockedUntil.IsZero() && time.Now().Before(a.LockedUntil)
}

// RecordFailedLogin counts a wrong password and opens the lockout
// window once enough pile up in a row.
func (a *Account) RecordFailedLogin() {
	a.FailedLogins++
	if a.FailedLogins >= maxFailedLogins {
		a.LockedUntil = time.Now().Add(lockoutWindow)
	}
}

// ResetFailedLogins clears the failure count and any lockout.
func (a *Account) ResetFailedLogins() {
	a.FailedLogins = 0
	a.LockedUntil = time.Time{}
}
