package account

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"shoptrack/internal/adapters/storage"
	domain "shoptrack/internal/domain/account"
)

const accountColumns = "id, email, password_hash, role, created_at, failed_logins, locked_until"

// SQLiteStore is the SQLite-backed account store.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore wraps db as an account store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// GetByID retrieves an account by its opaque ID.
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Account, error) {
	return s.getBy(ctx, "id", id)
}

// GetByEmail retrieves an account by its login email.
func (s *SQLiteStore) GetByEmail(ctx context.Context, email string) (domain.Account, error) {
	return s.getBy(ctx, "email", email)
}

func (s *SQLiteStore) getBy(ctx context.Context, column, arg string) (domain.Account, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+accountColumns+" FROM account WHERE "+column+" = ?", arg)
	a, err := scanRow(row.Scan)
	if err == sql.ErrNoRows {
		return domain.Account{}, fmt.Errorf("account not found: %w", err)
	}
	return a, err
}

// Save upserts by ID. A zero LockedUntil is stored as NULL so an
// unlocked account never carries a stale timestamp.
func (s *SQLiteStore) Save(ctx context.Context, a domain.Account) error {
	var locked interface{}
	if !a.LockedUntil.IsZero() {
		locked = a.LockedUntil.Format(time.RFC3339Nano)
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO account (id, email, password_hash, role, created_at, failed_logins, locked_until)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   email=excluded.email,
		   password_hash=excluded.password_hash,
		   role=excluded.role,
		   failed_logins=excluded.failed_logins,
		   locked_until=excluded.locked_until`,
		a.ID,
		a.Email,
		a.PasswordHash,
		a.Role,
		a.CreatedAt.Format(time.RFC3339Nano),
		a.FailedLogins,
		locked,
	)
	return err
}

// Delete removes the account with the given ID.
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM account WHERE id = ?", id)
	return err
}

// List retrieves accounts, newest first, optionally narrowed by role.
func (s *SQLiteStore) List(ctx context.Context, filter ListFilter) ([]domain.Account, error) {
	query := "SELECT " + accountColumns + " FROM account"
	var args []interface{}
	if filter.Role != "" {
		query += " WHERE role = ?"
		args = append(args, filter.Role)
	}
	query += " ORDER BY created_at DESC"
	if filter.Limit > 0 {
		query += " LIMIT ? OFFSET ?"
		args = append(args, filter.Limit, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Account
	for rows.Next() {
		a, err := scanRow(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// Count returns the total number of accounts.
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM account").Scan(&n)
	return n, err
}

func scanRow(scan func(dest ...interface{}) error) (domain.Account, error) {
	var a domain.Account
	var createdAt string
	var lockedUntil sql.NullString
	err := scan(
		&a.ID,
		&a.Email,
		&a.PasswordHash,
		&a.Role,
		&createdAt,
		&a.FailedLogins,
		&lockedUntil,
	)
	if err != nil {
		return domain.Account{}, err
	}

	if a.CreatedAt, err = parseStamp(createdAt); err != nil {
		return domain.Account{}, fmt.Errorf("account created_at: %w", err)
	}
	if lockedUntil.String != "" {
		if a.LockedUntil, err = parseStamp(lockedUntil.String); err != nil {
			return domain.Account{}, fmt.Errorf("account locked_until: %w", err)
		}
	}
	return a, nil
}

func parseStamp(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		t, err = time.Parse(time.RFC3339, s)
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("cannot parse %q", s)
	}
	return t, nil
}
