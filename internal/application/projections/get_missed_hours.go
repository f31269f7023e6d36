package projections

import (
	"context"

	"shoptrack/internal/domain/hms"
	"shoptrack/internal/domain/ledger"
)

// GetMissedHoursQuery carries query parameters.
type GetMissedHoursQuery struct {
	Address string
}

// GetMissedHoursDeps holds dependencies for GetMissedHours.
type GetMissedHoursDeps struct {
	RosterStore RosterReader
	WeekStore   WeekReader
}

// GetMissedHoursResult carries the query result.
type GetMissedHoursResult struct {
	Address    string
	Missed     hms.Duration
	MissedText string // zero-padded display form, e.g. "05:00:00"
}

// QueryGetMissedHours recomputes a member's make-up debt from their
// weekly log. Nothing is stored; the walk runs fresh on every call.
// PRE: Address identifies an existing row, else ledger.ErrMemberNotFound
// POST: Missed >= 0; MissedText is the padded rendering of Missed
func QueryGetMissedHours(ctx context.Context, query GetMissedHoursQuery, deps GetMissedHoursDeps) (GetMissedHoursResult, error) {
	row, err := deps.RosterStore.GetByAddress(ctx, query.Address)
	if err != nil {
		return GetMissedHoursResult{}, err
	}

	requirement, err := row.Requirement()
	if err != nil {
		return GetMissedHoursResult{}, err
	}

	currentWeek, err := currentWeekLabel(ctx, deps.WeekStore)
	if err != nil {
		return GetMissedHoursResult{}, err
	}

	cells, err := deps.RosterStore.ListCellsByMemberID(ctx, row.ID)
	if err != nil {
		return GetMissedHoursResult{}, err
	}

	_, history, current, err := cellTotals(cells, currentWeek)
	if err != nil {
		return GetMissedHoursResult{}, err
	}

	missed := ledger.MissedHours(history, current, requirement)
	return GetMissedHoursResult{
		Address:    row.Address,
		Missed:     missed,
		MissedText: missed.FormatPadded(),
	}, nil
}
