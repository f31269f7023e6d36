package projections

import (
	"context"
	"errors"
	"fmt"

	accountStore "shoptrack/internal/adapters/storage/account"
	domainAccount "shoptrack/internal/domain/account"
	"shoptrack/internal/domain/hms"
	"shoptrack/internal/domain/ledger"
)

// RosterReader is the row and weekly-cell read surface shared by the
// ledger projections.
type RosterReader interface {
	GetByAddress(ctx context.Context, address string) (ledger.Row, error)
	List(ctx context.Context) ([]ledger.Row, error)
	ListCellsByMemberID(ctx context.Context, memberID string) ([]ledger.WeekCell, error)
}

// WeekReader resolves the current week marker.
type WeekReader interface {
	Latest(ctx context.Context) (ledger.Week, error)
}

// AccountReader lists allowlist accounts for the accounts admin page.
type AccountReader interface {
	List(ctx context.Context, filter accountStore.ListFilter) ([]domainAccount.Account, error)
	Count(ctx context.Context) (int, error)
}

// currentWeekLabel resolves the open week's label, or "" before the
// first week period exists.
func currentWeekLabel(ctx context.Context, weeks WeekReader) (string, error) {
	latest, err := weeks.Latest(ctx)
	if errors.Is(err, ledger.ErrNoWeeks) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return latest.Start, nil
}

// cellTotals folds a member's weekly log into the lifetime total and the
// accrual-walk inputs. cells must be ordered oldest week first; the cell
// matching currentWeek (if any) becomes current, all others history.
func cellTotals(cells []ledger.WeekCell, currentWeek string) (total hms.Duration, history []hms.Duration, current hms.Duration, err error) {
	for _, cell := range cells {
		logged, perr := cell.LoggedDuration()
		if perr != nil {
			return 0, nil, 0, fmt.Errorf("cell %s: %w", cell.ID, perr)
		}
		total += logged
		if cell.WeekStart == currentWeek {
			current = logged
		} else {
			history = append(history, logged)
		}
	}
	return total, history, current, nil
}
