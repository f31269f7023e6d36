package orchestrators

import (
	"context"
	"errors"
	"log/slog"

	"shoptrack/internal/domain/account"
)

var (
	// ErrInvalidCredentials covers unknown addresses and wrong passwords
	// alike, so the login form cannot be used to probe which emails have
	// accounts.
	ErrInvalidCredentials = errors.New("incorrect email or password")

	// ErrAccountLocked is returned while a lockout window is open.
	ErrAccountLocked = errors.New("account is locked due to too many failed attempts")
)

// AccountStoreForLogin is the slice of the account store login needs.
type AccountStoreForLogin interface {
	GetByEmail(ctx context.Context, email string) (account.Account, error)
	Save(ctx context.Context, a account.Account) error
}

// LoginInput carries the submitted credentials.
type LoginInput struct {
	Email    string
	Password string
}

// LoginResult identifies the authenticated account for session creation.
type LoginResult struct {
	AccountID string
	Email     string
	Role      string
}

type LoginDeps struct {
	AccountStore AccountStoreForLogin
}

// ExecuteLogin checks the credentials against the stored hash. Each wrong
// password is recorded against the account; enough of them in a row opens
// a lockout window during which even the right password is refused. A
// successful login clears the failure count.
func ExecuteLogin(ctx context.Context, input LoginInput, deps LoginDeps) (LoginResult, error) {
	if input.Email == "" || input.Password == "" {
		return LoginResult{}, ErrInvalidCredentials
	}

	a, err := deps.AccountStore.GetByEmail(ctx, input.Email)
	if err != nil {
		slog.Info("auth_event", "event", "login_failed", "email", input.Email, "reason", "unknown_email")
		return LoginResult{}, ErrInvalidCredentials
	}
	if a.IsLocked() {
		slog.Info("auth_event", "event", "login_blocked", "email", input.Email)
		return LoginResult{}, ErrAccountLocked
	}

	if a.CheckPassword(input.Password) != nil {
		a.RecordFailedLogin()
		_ = deps.AccountStore.Save(ctx, a)
		slog.Info("auth_event", "event", "login_failed",
			"email", input.Email, "reason", "wrong_password", "failed_logins", a.FailedLogins)
		return LoginResult{}, ErrInvalidCredentials
	}

	a.ResetFailedLogins()
	_ = deps.AccountStore.Save(ctx, a)
	slog.Info("auth_event", "event", "login_success", "email", input.Email, "role", a.Role)

	return LoginResult{AccountID: a.ID, Email: a.Email, Role: a.Role}, nil
}
