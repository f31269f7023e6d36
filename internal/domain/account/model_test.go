package account_test

import (
	"errors"
	"strings"
	"testing"
	"time"

	"shoptrack/internal/domain/account"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		account account.Account
		wantErr error
	}{
		{"admin", account.Account{Email: "admin@shoptrack.test", Role: account.RoleAdmin}, nil},
		{"editor", account.Account{Email: "steward@shoptrack.test", Role: account.RoleEditor}, nil},
		{"empty email", account.Account{Role: account.RoleAdmin}, account.ErrEmptyEmail},
		{"whitespace email", account.Account{Email: "   ", Role: account.RoleAdmin}, account.ErrEmptyEmail},
		{"no at sign", account.Account{Email: "not-an-email", Role: account.RoleAdmin}, account.ErrInvalidEmail},
		{
			"over length limit",
			account.Account{Email: strings.Repeat("x", 250) + "@z.io", Role: account.RoleAdmin},
			account.ErrEmailTooLong,
		},
		{"made-up role", account.Account{Email: "a@b.c", Role: "superadmin"}, account.ErrInvalidRole},
		{"empty role", account.Account{Email: "a@b.c"}, account.ErrInvalidRole},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.account.Validate()
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestSetPassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantErr  error
	}{
		{"long enough", "a sound passphrase", nil},
		{"exactly twelve", "123456789012", nil},
		{"eleven", "12345678901", account.ErrPasswordTooShort},
		{"empty", "", account.ErrEmptyPassword},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var a account.Account
			err := a.SetPassword(tt.password)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("SetPassword() = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr != nil {
				return
			}
			if a.PasswordHash == "" || a.PasswordHash == tt.password {
				t.Errorf("PasswordHash = %q, want a hash", a.PasswordHash)
			}
			if err := a.CheckPassword(tt.password); err != nil {
				t.Errorf("fresh hash does not verify: %v", err)
			}
		})
	}
}

func TestCheckPassword(t *testing.T) {
	var a account.Account
	if err := a.SetPassword("a sound passphrase"); err != nil {
		t.Fatalf("SetPassword failed: %v", err)
	}

	if err := a.CheckPassword("a sound passphrase"); err != nil {
		t.Errorf("correct password refused: %v", err)
	}
	for _, wrong := range []string{"another passphrase", ""} {
		if err := a.CheckPassword(wrong); !errors.Is(err, account.ErrWrongPassword) {
			t.Errorf("CheckPassword(%q) = %v, want ErrWrongPassword", wrong, err)
		}
	}
}

func TestCheckPassword_NoHashSet(t *testing.T) {
	var a account.Account
	if err := a.CheckPassword("a sound passphrase"); !errors.Is(err, account.ErrWrongPassword) {
		t.Errorf("CheckPassword on empty hash = %v, want ErrWrongPassword", err)
	}
}

func TestLockout(t *testing.T) {
	var a account.Account

	for i := 0; i < 4; i++ {
		a.RecordFailedLogin()
		if a.IsLocked() {
			t.Fatalf("locked after %d failures", i+1)
		}
	}
	a.RecordFailedLogin()
	if !a.IsLocked() {
		t.Error("not locked after 5 failures")
	}
	if a.FailedLogins != 5 {
		t.Errorf("FailedLogins = %d, want 5", a.FailedLogins)
	}

	a.ResetFailedLogins()
	if a.IsLocked() || a.FailedLogins != 0 {
		t.Errorf("after reset: locked=%v failures=%d", a.IsLocked(), a.FailedLogins)
	}
}

func TestIsLocked_ExpiredWindow(t *testing.T) {
	a := account.Account{
		FailedLogins: 5,
		LockedUntil:  time.Now().Add(-time.Minute),
	}
	if a.IsLocked() {
		t.Error("lock did not expire with LockedUntil in the past")
	}
}
