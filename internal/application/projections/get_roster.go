package projections

import (
	"context"
	"sort"
	"strings"
	"time"

	"shoptrack/internal/application/listutil"
	"shoptrack/internal/domain/hms"
	"shoptrack/internal/domain/ledger"
)

// RosterSortColumns are the columns the roster view may be sorted by.
var RosterSortColumns = []string{"address", "total", "missed", "timeouts"}

// GetRosterQuery carries query parameters.
type GetRosterQuery struct {
	Params listutil.ListParams
}

// RosterEntry is one row of the roster view with its derived values.
type RosterEntry struct {
	ID              string
	Address         string
	RequirementText string
	Total           hms.Duration
	TotalText       string
	Missed          hms.Duration
	MissedText      string
	CheckedIn       bool
	CheckInTime     time.Time
	TimeoutCount    int
}

// GetRosterResult carries the query result.
type GetRosterResult struct {
	Entries        []RosterEntry
	CheckedInCount int
	Page           listutil.PageInfo
	Sort           listutil.SortParams
	Search         string
}

// GetRosterDeps holds dependencies for GetRoster.
type GetRosterDeps struct {
	RosterStore RosterReader
	WeekStore   WeekReader
}

// QueryGetRoster builds the roster view: every member with their
// lifetime total, outstanding make-up debt and check-in state. Totals
// and debt are derived per call, never stored.
// POST: Entries are sorted by the requested column, address ascending
// by default, and paged per query.Params
func QueryGetRoster(ctx context.Context, query GetRosterQuery, deps GetRosterDeps) (GetRosterResult, error) {
	rows, err := deps.RosterStore.List(ctx)
	if err != nil {
		return GetRosterResult{}, err
	}

	currentWeek, err := currentWeekLabel(ctx, deps.WeekStore)
	if err != nil {
		return GetRosterResult{}, err
	}

	search := strings.ToLower(strings.TrimSpace(query.Params.Search))

	entries := make([]RosterEntry, 0, len(rows))
	checkedIn := 0
	for _, row := range rows {
		if search != "" && !strings.Contains(strings.ToLower(row.Address), search) {
			continue
		}

		requirement, err := row.Requirement()
		if err != nil {
			return GetRosterResult{}, err
		}

		cells, err := deps.RosterStore.ListCellsByMemberID(ctx, row.ID)
		if err != nil {
			return GetRosterResult{}, err
		}
		total, history, current, err := cellTotals(cells, currentWeek)
		if err != nil {
			return GetRosterResult{}, err
		}
		missed := ledger.MissedHours(history, current, requirement)

		if row.CheckedIn() {
			checkedIn++
		}
		entries = append(entries, RosterEntry{
			ID:              row.ID,
			Address:         row.Address,
			RequirementText: requirement.Format(),
			Total:           total,
			TotalText:       total.Format(),
			Missed:          missed,
			MissedText:      missed.FormatPadded(),
			CheckedIn:       row.CheckedIn(),
			CheckInTime:     row.CheckInTime,
			TimeoutCount:    row.TimeoutCount,
		})
	}

	sortRosterEntries(entries, query.Params.SortParams)

	page := listutil.NewPageInfo(query.Params.Page, query.Params.PerPage, len(entries))
	start := page.Offset()
	if start > len(entries) {
		start = len(entries)
	}
	end := start + page.PerPage
	if end > len(entries) {
		end = len(entries)
	}

	return GetRosterResult{
		Entries:        entries[start:end],
		CheckedInCount: checkedIn,
		Page:           page,
		Sort:           query.Params.SortParams,
		Search:         query.Params.Search,
	}, nil
}

// sortRosterEntries orders entries by the requested column. The store
// already returns rows in address order, so that is the default.
func sortRosterEntries(entries []RosterEntry, params listutil.SortParams) {
	var less func(a, b RosterEntry) bool
	switch params.Sort {
	case "total":
		less = func(a, b RosterEntry) bool { return a.Total < b.Total }
	case "missed":
		less = func(a, b RosterEntry) bool { return a.Missed < b.Missed }
	case "timeouts":
		less = func(a, b RosterEntry) bool { return a.TimeoutCount < b.TimeoutCount }
	case "address":
		less = func(a, b RosterEntry) bool { return a.Address < b.Address }
	default:
		return
	}
	sort.SliceStable(entries, func(i, j int) bool {
		if params.Dir == "desc" {
			return less(entries[j], entries[i])
		}
		return less(entries[i], entries[j])
	})
}
