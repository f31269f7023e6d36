package orchestrators

import (
	"context"
	"errors"
	"log/slog"

	"shoptrack/internal/domain/account"
)

var (
	ErrCurrentPasswordWrong = errors.New("current password does not match")
	ErrNewPasswordSame      = errors.New("new password matches the current one")
)

// AccountStoreForChangePassword is the slice of the account store the
// password change needs.
type AccountStoreForChangePassword interface {
	GetByID(ctx context.Context, id string) (account.Account, error)
	Save(ctx context.Context, a account.Account) error
}

// ChangePasswordInput carries the password change request.
type ChangePasswordInput struct {
	AccountID       string
	CurrentPassword string
	NewPassword     string
}

type ChangePasswordDeps struct {
	AccountStore AccountStoreForChangePassword
}

// ExecuteChangePassword replaces the account's password after proving the
// caller knows the current one. The new password goes through the same
// length check and hashing as account creation; nothing is written when
// any step fails.
func ExecuteChangePassword(ctx context.Context, input ChangePasswordInput, deps ChangePasswordDeps) error {
	switch "" {
	case input.AccountID, input.CurrentPassword, input.NewPassword:
		return errors.New("missing required fields")
	}

	a, err := deps.AccountStore.GetByID(ctx, input.AccountID)
	if err != nil {
		return errors.New("no such account")
	}
	switch {
	case a.CheckPassword(input.CurrentPassword) != nil:
		return ErrCurrentPasswordWrong
	case input.NewPassword == input.CurrentPassword:
		return ErrNewPasswordSame
	}

	if err := a.SetPassword(input.NewPassword); err != nil {
		return err
	}
	if err := deps.AccountStore.Save(ctx, a); err != nil {
		return err
	}

	slog.Info("auth_event", "event", "password_changed", "account_id", input.AccountID)
	return nil
}
