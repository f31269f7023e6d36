package roster

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"shoptrack/internal/adapters/storage"
	domain "shoptrack/internal/domain/ledger"
)

const rowColumns = "id, address, hour_requirement, check_in_time, timeout_count, created_at"

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new roster store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// GetByID retrieves a ledger row by its opaque ID.
// PRE: id is non-empty
// POST: Returns the row or domain.ErrMemberNotFound
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Row, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+rowColumns+" FROM member WHERE id = ?", id)
	return scanRow(row, id)
}

// GetByAddress retrieves a ledger row by its member address.
// PRE: address is non-empty
// POST: Returns the row or domain.ErrMemberNotFound
func (s *SQLiteStore) GetByAddress(ctx context.Context, address string) (domain.Row, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+rowColumns+" FROM member WHERE address = ?", address)
	return scanRow(row, address)
}

// FindBySelector resolves an admin-supplied selector to a row: exact
// address match first, then the first substring match in address order.
// POST: Returns domain.ErrMemberNotFound when nothing matches
func (s *SQLiteStore) FindBySelector(ctx context.Context, selector string) (domain.Row, error) {
	entity, err := s.GetByAddress(ctx, selector)
	if err == nil {
		return entity, nil
	}
	if !errors.Is(err, domain.ErrMemberNotFound) {
		return domain.Row{}, err
	}
	pattern := "%" + escapeLike(selector) + "%"
	row := s.db.QueryRowContext(ctx,
		"SELECT "+rowColumns+" FROM member WHERE address LIKE ? ESCAPE '\\' ORDER BY address LIMIT 1",
		pattern)
	return scanRow(row, selector)
}

// Create inserts a new ledger row.
// PRE: row has been validated; the address is not yet tracked
// POST: Row is persisted; a duplicate address fails on the UNIQUE index
func (s *SQLiteStore) Create(ctx context.Context, entity domain.Row) error {
	var checkIn interface{}
	if !entity.CheckInTime.IsZero() {
		checkIn = entity.CheckInTime.Format(time.RFC3339Nano)
	}
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO member (id, address, hour_requirement, check_in_time, timeout_count, created_at) VALUES (?, ?, ?, ?, ?, ?)",
		entity.ID,
		entity.Address,
		entity.HourRequirement,
		checkIn,
		entity.TimeoutCount,
		entity.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil && strings.Contains(err.Error(), "UNIQUE") {
		return fmt.Errorf("%w: %s", domain.ErrAlreadyExists, entity.Address)
	}
	return err
}

// List retrieves all ledger rows in address order.
func (s *SQLiteStore) List(ctx context.Context) ([]domain.Row, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+rowColumns+" FROM member ORDER BY address")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRows(rows)
}

// ListCheckedIn retrieves the rows currently in the CHECKED_IN state,
// oldest check-in first. The timeout sweep walks this list.
func (s *SQLiteStore) ListCheckedIn(ctx context.Context) ([]domain.Row, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+rowColumns+" FROM member WHERE check_in_time IS NOT NULL ORDER BY check_in_time")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRows(rows)
}

// SetCheckIn marks a row CHECKED_IN at the given instant.
// POST: Returns domain.ErrMemberNotFound when the row does not exist
func (s *SQLiteStore) SetCheckIn(ctx context.Context, id string, at time.Time) error {
	return s.updateRow(ctx, id,
		"UPDATE member SET check_in_time = ? WHERE id = ?",
		at.Format(time.RFC3339Nano), id)
}

// ClearCheckIn returns a row to the CHECKED_OUT state. Past weekly log
// entries are untouched.
func (s *SQLiteStore) ClearCheckIn(ctx context.Context, id string) error {
	return s.updateRow(ctx, id, "UPDATE member SET check_in_time = NULL WHERE id = ?", id)
}

// SetHourRequirement updates a row's weekly target.
// PRE: requirement is canonical duration text
func (s *SQLiteStore) SetHourRequirement(ctx context.Context, id string, requirement string) error {
	return s.updateRow(ctx, id,
		"UPDATE member SET hour_requirement = ? WHERE id = ?", requirement, id)
}

// IncrementTimeoutCount bumps the row's timeout counter by one.
// INVARIANT: the counter never decreases except via ResetTimeoutCount
func (s *SQLiteStore) IncrementTimeoutCount(ctx context.Context, id string) error {
	return s.updateRow(ctx, id,
		"UPDATE member SET timeout_count = timeout_count + 1 WHERE id = ?", id)
}

// ResetTimeoutCount zeroes the row's timeout counter.
func (s *SQLiteStore) ResetTimeoutCount(ctx context.Context, id string) error {
	return s.updateRow(ctx, id, "UPDATE member SET timeout_count = 0 WHERE id = ?", id)
}

func (s *SQLiteStore) updateRow(ctx context.Context, id, query string, args ...any) error {
	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", domain.ErrMemberNotFound, id)
	}
	return nil
}

// GetCell retrieves one member-week log cell.
// POST: A missing cell is domain.ErrCellNotFound so callers can lazily create
func (s *SQLiteStore) GetCell(ctx context.Context, memberID, weekStart string) (domain.WeekCell, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT id, member_id, week_start, logged, note FROM week_cell WHERE member_id = ? AND week_start = ?",
		memberID, weekStart)

	var cell domain.WeekCell
	err := row.Scan(&cell.ID, &cell.MemberID, &cell.WeekStart, &cell.Logged, &cell.Note)
	if err == sql.ErrNoRows {
		return domain.WeekCell{}, fmt.Errorf("%w: member %s week %s", domain.ErrCellNotFound, memberID, weekStart)
	}
	return cell, err
}

// CreateCell inserts a zero-initialized cell for a member-week. Safe to
// call again for the same member-week; the existing cell is kept.
func (s *SQLiteStore) CreateCell(ctx context.Context, cell domain.WeekCell) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO week_cell (id, member_id, week_start, logged, note) VALUES (?, ?, ?, ?, ?) ON CONFLICT(member_id, week_start) DO NOTHING",
		cell.ID, cell.MemberID, cell.WeekStart, cell.Logged, cell.Note)
	return err
}

// SetCellLogged overwrites a cell's logged duration text.
// PRE: logged is canonical duration text, already range-checked
func (s *SQLiteStore) SetCellLogged(ctx context.Context, cellID, logged string) error {
	result, err := s.db.ExecContext(ctx,
		"UPDATE week_cell SET logged = ? WHERE id = ?", logged, cellID)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", domain.ErrCellNotFound, cellID)
	}
	return nil
}

// AppendCellNote appends one trail entry to a cell's annotation, newest
// last. The append happens in SQL so concurrent appends never drop an
// entry.
func (s *SQLiteStore) AppendCellNote(ctx context.Context, cellID, entry string) error {
	result, err := s.db.ExecContext(ctx,
		"UPDATE week_cell SET note = CASE WHEN note = '' THEN ? ELSE note || char(10) || ? END WHERE id = ?",
		entry, entry, cellID)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", domain.ErrCellNotFound, cellID)
	}
	return nil
}

// ListCellsByMemberID retrieves a member's weekly log, oldest week
// first. The missed-hours walk depends on this order.
func (s *SQLiteStore) ListCellsByMemberID(ctx context.Context, memberID string) ([]domain.WeekCell, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, member_id, week_start, logged, note FROM week_cell WHERE member_id = ? ORDER BY week_start",
		memberID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.WeekCell
	for rows.Next() {
		var cell domain.WeekCell
		if err := rows.Scan(&cell.ID, &cell.MemberID, &cell.WeekStart, &cell.Logged, &cell.Note); err != nil {
			return nil, err
		}
		results = append(results, cell)
	}
	return results, rows.Err()
}

func scanRow(row *sql.Row, key string) (domain.Row, error) {
	var entity domain.Row
	var checkIn sql.NullString
	var createdAt string
	err := row.Scan(
		&entity.ID,
		&entity.Address,
		&entity.HourRequirement,
		&checkIn,
		&entity.TimeoutCount,
		&createdAt,
	)
	if err == sql.ErrNoRows {
		return domain.Row{}, fmt.Errorf("%w: %s", domain.ErrMemberNotFound, key)
	}
	if err != nil {
		return domain.Row{}, err
	}
	return finishRow(entity, checkIn, createdAt)
}

func scanRows(rows *sql.Rows) ([]domain.Row, error) {
	var results []domain.Row
	for rows.Next() {
		var entity domain.Row
		var checkIn sql.NullString
		var createdAt string
		if err := rows.Scan(
			&entity.ID,
			&entity.Address,
			&entity.HourRequirement,
			&checkIn,
			&entity.TimeoutCount,
			&createdAt,
		); err != nil {
			return nil, err
		}
		entity, err := finishRow(entity, checkIn, createdAt)
		if err != nil {
			return nil, err
		}
		results = append(results, entity)
	}
	return results, rows.Err()
}

func finishRow(entity domain.Row, checkIn sql.NullString, createdAt string) (domain.Row, error) {
	var err error
	if checkIn.Valid && checkIn.String != "" {
		entity.CheckInTime, err = parseStoredTime(checkIn.String)
		if err != nil {
			return domain.Row{}, fmt.Errorf("failed to parse check_in_time: %w", err)
		}
	}
	entity.CreatedAt, err = parseStoredTime(createdAt)
	if err != nil {
		return domain.Row{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	return entity, nil
}

// escapeLike neutralizes LIKE wildcards in a user-supplied selector.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "%", `\%`)
	s = strings.ReplaceAll(s, "_", `\_`)
	return s
}

func parseStoredTime(value string) (time.Time, error) {
	if idx := strings.Index(value, " m="); idx != -1 {
		value = value[:idx]
	}
	layouts := []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02 15:04:05.999999999 -0700 MST",
		"2006-01-02 15:04:05",
		"2006-01-02T15:04:05",
	}
	for _, layout := range layouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, fmt.Errorf("unsupported time format: %q", value)
}
