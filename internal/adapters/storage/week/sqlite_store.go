package week

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"shoptrack/internal/adapters/storage"
	domain "shoptrack/internal/domain/ledger"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new week store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Latest retrieves the newest week marker. Labels are YYYY-MM-DD, so
// lexicographic order is chronological order.
// POST: Returns domain.ErrNoWeeks when no period has been opened
func (s *SQLiteStore) Latest(ctx context.Context) (domain.Week, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT week_start, created_at FROM week ORDER BY week_start DESC LIMIT 1")

	entity, err := scanWeek(row.Scan)
	if err == sql.ErrNoRows {
		return domain.Week{}, domain.ErrNoWeeks
	}
	return entity, err
}

// Create inserts a week marker. Concurrent rollovers racing to open the
// same period collapse into one row; the first insert wins.
// PRE: value.Start is a YYYY-MM-DD label
func (s *SQLiteStore) Create(ctx context.Context, value domain.Week) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO week (week_start, created_at) VALUES (?, ?) ON CONFLICT(week_start) DO NOTHING",
		value.Start,
		value.CreatedAt.Format(time.RFC3339Nano),
	)
	return err
}

// List retrieves all week markers, oldest first.
func (s *SQLiteStore) List(ctx context.Context) ([]domain.Week, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT week_start, created_at FROM week ORDER BY week_start")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.Week
	for rows.Next() {
		entity, err := scanWeek(rows.Scan)
		if err != nil {
			return nil, err
		}
		results = append(results, entity)
	}
	return results, rows.Err()
}

// scanWeek extracts a Week from a row scanner function.
func scanWeek(scan func(dest ...interface{}) error) (domain.Week, error) {
	var entity domain.Week
	var createdAt string
	if err := scan(&entity.Start, &createdAt); err != nil {
		return domain.Week{}, err
	}
	parsed, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		parsed, err = time.Parse(time.RFC3339, createdAt)
	}
	if err != nil {
		return domain.Week{}, fmt.Errorf("cannot parse created_at: %q", createdAt)
	}
	entity.CreatedAt = parsed
	return entity, nil
}
