package orchestrators

import (
	"context"
	"errors"
	"testing"

	"shoptrack/internal/domain/account"
)

type mockAccountStore struct {
	accounts map[string]account.Account // keyed by ID
}

func newMockAccountStore() *mockAccountStore {
	return &mockAccountStore{accounts: map[string]account.Account{}}
}

func (m *mockAccountStore) GetByID(_ context.Context, id string) (account.Account, error) {
	acct, ok := m.accounts[id]
	if !ok {
		return account.Account{}, errors.New("account not found")
	}
	return acct, nil
}

func (m *mockAccountStore) GetByEmail(_ context.Context, email string) (account.Account, error) {
	for _, acct := range m.accounts {
		if acct.Email == email {
			return acct, nil
		}
	}
	return account.Account{}, errors.New("account not found")
}

func (m *mockAccountStore) Save(_ context.Context, acct account.Account) error {
	m.accounts[acct.ID] = acct
	return nil
}

func (m *mockAccountStore) Count(_ context.Context) (int, error) {
	return len(m.accounts), nil
}

const testPassword = "correct horse battery"

func seedAccount(t *testing.T, store *mockAccountStore, id, email, role string) account.Account {
	t.Helper()
	acct := account.Account{ID: id, Email: email, Role: role, CreatedAt: fixedTime}
	if err := acct.SetPassword(testPassword); err != nil {
		t.Fatalf("SetPassword failed: %v", err)
	}
	store.accounts[id] = acct
	return acct
}

func TestLogin_Success(t *testing.T) {
	store := newMockAccountStore()
	seedAccount(t, store, "a1", "steward@example.com", account.RoleEditor)

	result, err := ExecuteLogin(context.Background(), LoginInput{
		Email:    "steward@example.com",
		Password: testPassword,
	}, LoginDeps{AccountStore: store})
	if err != nil {
		t.Fatalf("ExecuteLogin failed: %v", err)
	}
	if result.AccountID != "a1" || result.Role != account.RoleEditor {
		t.Errorf("result = %+v, want a1/editor", result)
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	store := newMockAccountStore()
	seedAccount(t, store, "a1", "steward@example.com", account.RoleEditor)

	_, err := ExecuteLogin(context.Background(), LoginInput{
		Email:    "steward@example.com",
		Password: "not the password",
	}, LoginDeps{AccountStore: store})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("err = %v, want ErrInvalidCredentials", err)
	}
	if store.accounts["a1"].FailedLogins != 1 {
		t.Errorf("FailedLogins = %d, want 1", store.accounts["a1"].FailedLogins)
	}
}

func TestLogin_LocksAfterRepeatedFailures(t *testing.T) {
	store := newMockAccountStore()
	seedAccount(t, store, "a1", "steward@example.com", account.RoleEditor)
	deps := LoginDeps{AccountStore: store}

	for i := 0; i < 5; i++ {
		_, err := ExecuteLogin(context.Background(), LoginInput{
			Email:    "steward@example.com",
			Password: "not the password",
		}, deps)
		if !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("attempt %d: err = %v, want ErrInvalidCredentials", i+1, err)
		}
	}

	// Even the right password is refused while locked.
	_, err := ExecuteLogin(context.Background(), LoginInput{
		Email:    "steward@example.com",
		Password: testPassword,
	}, deps)
	if !errors.Is(err, ErrAccountLocked) {
		t.Errorf("err = %v, want ErrAccountLocked", err)
	}
}

func TestLogin_SuccessResetsFailures(t *testing.T) {
	store := newMockAccountStore()
	seedAccount(t, store, "a1", "steward@example.com", account.RoleEditor)
	deps := LoginDeps{AccountStore: store}

	for i := 0; i < 3; i++ {
		_, _ = ExecuteLogin(context.Background(), LoginInput{
			Email:    "steward@example.com",
			Password: "not the password",
		}, deps)
	}
	if _, err := ExecuteLogin(context.Background(), LoginInput{
		Email:    "steward@example.com",
		Password: testPassword,
	}, deps); err != nil {
		t.Fatalf("login before lockout failed: %v", err)
	}
	if store.accounts["a1"].FailedLogins != 0 {
		t.Errorf("FailedLogins = %d, want 0 after success", store.accounts["a1"].FailedLogins)
	}
}

func TestLogin_UnknownEmail(t *testing.T) {
	_, err := ExecuteLogin(context.Background(), LoginInput{
		Email:    "nobody@example.com",
		Password: testPassword,
	}, LoginDeps{AccountStore: newMockAccountStore()})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("err = %v, want ErrInvalidCredentials", err)
	}
}

func TestLogin_EmptyInput(t *testing.T) {
	deps := LoginDeps{AccountStore: newMockAccountStore()}
	for _, input := range []LoginInput{
		{},
		{Email: "steward@example.com"},
		{Password: testPassword},
	} {
		if _, err := ExecuteLogin(context.Background(), input, deps); !errors.Is(err, ErrInvalidCredentials) {
			t.Errorf("input %+v: err = %v, want ErrInvalidCredentials", input, err)
		}
	}
}
