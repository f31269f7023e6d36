package roster

import (
	"context"
	"time"

	domain "shoptrack/internal/domain/ledger"
)

// Store persists ledger rows and their weekly log cells. Mutations are
// deliberately cell-granular: transitions re-read the authoritative
// value and write back only the cells they own, so concurrent edits to
// other columns are never clobbered.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Row, error)
	GetByAddress(ctx context.Context, address string) (domain.Row, error)
	// FindBySelector resolves an admin-supplied selector: an exact
	// address match wins, otherwise the first substring match in
	// address order. No match is domain.ErrMemberNotFound.
	FindBySelector(ctx context.Context, selector string) (domain.Row, error)
	Create(ctx context.Context, row domain.Row) error
	List(ctx context.Context) ([]domain.Row, error)
	ListCheckedIn(ctx context.Context) ([]domain.Row, error)

	SetCheckIn(ctx context.Context, id string, at time.Time) error
	ClearCheckIn(ctx context.Context, id string) error
	SetHourRequirement(ctx context.Context, id string, requirement string) error
	IncrementTimeoutCount(ctx context.Context, id string) error
	ResetTimeoutCount(ctx context.Context, id string) error

	GetCell(ctx context.Context, memberID, weekStart string) (domain.WeekCell, error)
	CreateCell(ctx context.Context, cell domain.WeekCell) error
	SetCellLogged(ctx context.Context, cellID, logged string) error
	AppendCellNote(ctx context.Context, cellID, entry string) error
	ListCellsByMemberID(ctx context.Context, memberID string) ([]domain.WeekCell, error)
}
