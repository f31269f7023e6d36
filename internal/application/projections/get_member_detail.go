package projections

import (
	"context"
	"strings"
	"time"

	"shoptrack/internal/domain/hms"
	"shoptrack/internal/domain/ledger"
)

// GetMemberDetailQuery carries query parameters.
type GetMemberDetailQuery struct {
	Address string
}

// WeekLog is one week of a member's log with its annotation trail.
type WeekLog struct {
	WeekStart  string
	Logged     hms.Duration
	LoggedText string
	Trail      []string // oldest entry first
	Current    bool
}

// GetMemberDetailResult carries the query result.
type GetMemberDetailResult struct {
	ID              string
	Address         string
	RequirementText string
	TotalText       string
	MissedText      string
	CheckedIn       bool
	CheckInTime     time.Time
	TimeoutCount    int
	CreatedAt       time.Time
	Weeks           []WeekLog // newest week first
}

// GetMemberDetailDeps holds dependencies for GetMemberDetail.
type GetMemberDetailDeps struct {
	RosterStore RosterReader
	WeekStore   WeekReader
}

// QueryGetMemberDetail assembles one member's full ledger view: the row,
// every weekly log cell with its trail, and the derived totals.
// PRE: Address identifies an existing row, else ledger.ErrMemberNotFound
// POST: Weeks are ordered newest first for display
func QueryGetMemberDetail(ctx context.Context, query GetMemberDetailQuery, deps GetMemberDetailDeps) (GetMemberDetailResult, error) {
	row, err := deps.RosterStore.GetByAddress(ctx, query.Address)
	if err != nil {
		return GetMemberDetailResult{}, err
	}

	requirement, err := row.Requirement()
	if err != nil {
		return GetMemberDetailResult{}, err
	}

	currentWeek, err := currentWeekLabel(ctx, deps.WeekStore)
	if err != nil {
		return GetMemberDetailResult{}, err
	}

	cells, err := deps.RosterStore.ListCellsByMemberID(ctx, row.ID)
	if err != nil {
		return GetMemberDetailResult{}, err
	}

	var total hms.Duration
	var history []hms.Duration
	var current hms.Duration
	weeks := make([]WeekLog, 0, len(cells))
	for _, cell := range cells {
		logged, err := cell.LoggedDuration()
		if err != nil {
			return GetMemberDetailResult{}, err
		}
		total += logged
		if cell.WeekStart == currentWeek {
			current = logged
		} else {
			history = append(history, logged)
		}
		weeks = append(weeks, WeekLog{
			WeekStart:  cell.WeekStart,
			Logged:     logged,
			LoggedText: logged.Format(),
			Trail:      splitTrail(cell.Note),
			Current:    cell.WeekStart == currentWeek,
		})
	}

	// Most recent week first for display
	for i, j := 0, len(weeks)-1; i < j; i, j = i+1, j-1 {
		weeks[i], weeks[j] = weeks[j], weeks[i]
	}

	missed := ledger.MissedHours(history, current, requirement)
	return GetMemberDetailResult{
		ID:              row.ID,
		Address:         row.Address,
		RequirementText: requirement.Format(),
		TotalText:       total.Format(),
		MissedText:      missed.FormatPadded(),
		CheckedIn:       row.CheckedIn(),
		CheckInTime:     row.CheckInTime,
		TimeoutCount:    row.TimeoutCount,
		CreatedAt:       row.CreatedAt,
		Weeks:           weeks,
	}, nil
}

// splitTrail breaks a cell's note into trail entries, dropping blanks.
func splitTrail(note string) []string {
	if note == "" {
		return nil
	}
	var trail []string
	for _, line := range strings.Split(note, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			trail = append(trail, line)
		}
	}
	return trail
}
