package orchestrators

import (
	"context"
	"errors"
	"testing"

	"shoptrack/internal/domain/account"
)

func TestCreateAccount_Success(t *testing.T) {
	store := newMockAccountStore()

	id, err := ExecuteCreateAccount(context.Background(), CreateAccountInput{
		Email:    "new@example.com",
		Password: testPassword,
		Role:     account.RoleEditor,
	}, CreateAccountDeps{AccountStore: store})
	if err != nil {
		t.Fatalf("ExecuteCreateAccount failed: %v", err)
	}

	acct, ok := store.accounts[id]
	if !ok {
		t.Fatal("account not saved")
	}
	if acct.Email != "new@example.com" || acct.Role != account.RoleEditor {
		t.Errorf("account = %+v", acct)
	}
	if acct.PasswordHash == "" || acct.PasswordHash == testPassword {
		t.Error("password not hashed")
	}
	if err := acct.CheckPassword(testPassword); err != nil {
		t.Errorf("stored hash does not verify: %v", err)
	}
}

func TestCreateAccount_DuplicateEmail(t *testing.T) {
	store := newMockAccountStore()
	seedAccount(t, store, "a1", "taken@example.com", account.RoleEditor)

	_, err := ExecuteCreateAccount(context.Background(), CreateAccountInput{
		Email:    "taken@example.com",
		Password: testPassword,
		Role:     account.RoleEditor,
	}, CreateAccountDeps{AccountStore: store})
	if !errors.Is(err, ErrEmailAlreadyExists) {
		t.Errorf("err = %v, want ErrEmailAlreadyExists", err)
	}
}

func TestCreateAccount_Rejections(t *testing.T) {
	deps := CreateAccountDeps{AccountStore: newMockAccountStore()}

	tests := []struct {
		name  string
		input CreateAccountInput
	}{
		{"short password", CreateAccountInput{Email: "a@example.com", Password: "short", Role: account.RoleEditor}},
		{"bad role", CreateAccountInput{Email: "a@example.com", Password: testPassword, Role: "owner"}},
		{"no at sign", CreateAccountInput{Email: "not-an-email", Password: testPassword, Role: account.RoleEditor}},
		{"empty email", CreateAccountInput{Password: testPassword, Role: account.RoleEditor}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ExecuteCreateAccount(context.Background(), tt.input, deps); err == nil {
				t.Error("invalid input accepted")
			}
		})
	}
}

func TestSeedAdmin_CreatesWhenEmpty(t *testing.T) {
	store := newMockAccountStore()

	err := ExecuteSeedAdmin(context.Background(), CreateAccountDeps{AccountStore: store},
		"admin@example.com", testPassword)
	if err != nil {
		t.Fatalf("ExecuteSeedAdmin failed: %v", err)
	}
	if len(store.accounts) != 1 {
		t.Fatalf("got %d accounts, want 1", len(store.accounts))
	}
	for _, acct := range store.accounts {
		if acct.Role != account.RoleAdmin {
			t.Errorf("seeded role = %q, want admin", acct.Role)
		}
	}
}

func TestSeedAdmin_SkipsWhenAccountsExist(t *testing.T) {
	store := newMockAccountStore()
	seedAccount(t, store, "a1", "existing@example.com", account.RoleEditor)

	err := ExecuteSeedAdmin(context.Background(), CreateAccountDeps{AccountStore: store},
		"admin@example.com", testPassword)
	if err != nil {
		t.Fatalf("ExecuteSeedAdmin failed: %v", err)
	}
	if len(store.accounts) != 1 {
		t.Errorf("got %d accounts, want the pre-existing 1", len(store.accounts))
	}
}
