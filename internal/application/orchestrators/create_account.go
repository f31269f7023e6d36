package orchestrators

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"shoptrack/internal/domain/account"

	"github.com/google/uuid"
)

var ErrEmailAlreadyExists = errors.New("an account already exists for this email")

// AccountStoreForCreate is the slice of the account store creation needs.
type AccountStoreForCreate interface {
	GetByEmail(ctx context.Context, email string) (account.Account, error)
	Save(ctx context.Context, a account.Account) error
	Count(ctx context.Context) (int, error)
}

// CreateAccountInput carries the new account's details.
type CreateAccountInput struct {
	Email    string
	Password string
	Role     string
}

type CreateAccountDeps struct {
	AccountStore AccountStoreForCreate
}

// ExecuteCreateAccount creates a steward or admin login. The email must
// not already have an account; role and email format are checked by the
// domain, and the password is hashed before anything is stored. Returns
// the new account's ID.
func ExecuteCreateAccount(ctx context.Context, input CreateAccountInput, deps CreateAccountDeps) (string, error) {
	a := account.Account{
		ID:        uuid.New().String(),
		Email:     input.Email,
		Role:      input.Role,
		CreatedAt: time.Now(),
	}
	if err := a.Validate(); err != nil {
		return "", err
	}
	if err := a.SetPassword(input.Password); err != nil {
		return "", err
	}

	if _, err := deps.AccountStore.GetByEmail(ctx, input.Email); err == nil {
		return "", ErrEmailAlreadyExists
	}
	if err := deps.AccountStore.Save(ctx, a); err != nil {
		return "", err
	}

	slog.Info("auth_event", "event", "account_created", "email", input.Email, "role", input.Role)
	return a.ID, nil
}

// ExecuteSeedAdmin creates the configured admin account on first boot.
// It is a no-op once any account exists, so a changed admin password in
// the environment never overwrites a live credential.
func ExecuteSeedAdmin(ctx context.Context, deps CreateAccountDeps, email, password string) error {
	count, err := deps.AccountStore.Count(ctx)
	switch {
	case err != nil:
		return err
	case count > 0:
		return nil
	}

	if _, err := ExecuteCreateAccount(ctx, CreateAccountInput{
		Email:    email,
		Password: password,
		Role:     account.RoleAdmin,
	}, deps); err != nil {
		return err
	}

	slog.Info("auth_event", "event", "admin_seeded", "email", email)
	return nil
}
