package projections

import (
	"context"
	"time"

	"shoptrack/internal/domain/hms"
	"shoptrack/internal/domain/ledger"
)

// CheckedInRosterStore defines the roster surface for the checked-in view.
type CheckedInRosterStore interface {
	ListCheckedIn(ctx context.Context) ([]ledger.Row, error)
}

// GetCheckedInQuery carries query parameters.
type GetCheckedInQuery struct {
	Now time.Time // zero defaults to time.Now()
}

// CheckedInEntry is one open visit on the floor view.
type CheckedInEntry struct {
	ID          string
	Address     string
	CheckInTime time.Time
	Elapsed     hms.Duration
	ElapsedText string
	Overdue     bool // open longer than the sweep threshold
}

// GetCheckedInResult carries the query result.
type GetCheckedInResult struct {
	Entries []CheckedInEntry
}

// GetCheckedInDeps holds dependencies for GetCheckedIn.
type GetCheckedInDeps struct {
	RosterStore CheckedInRosterStore
	Threshold   hms.Duration // zero defaults to ledger.DefaultTimeoutThreshold
}

// QueryGetCheckedIn lists everyone currently in the shop, oldest
// check-in first, flagging visits the next sweep would close.
func QueryGetCheckedIn(ctx context.Context, query GetCheckedInQuery, deps GetCheckedInDeps) (GetCheckedInResult, error) {
	now := query.Now
	if now.IsZero() {
		now = time.Now()
	}
	threshold := deps.Threshold
	if threshold <= 0 {
		threshold = ledger.DefaultTimeoutThreshold
	}

	rows, err := deps.RosterStore.ListCheckedIn(ctx)
	if err != nil {
		return GetCheckedInResult{}, err
	}

	entries := make([]CheckedInEntry, 0, len(rows))
	for _, row := range rows {
		elapsed := hms.FromStd(now.Sub(row.CheckInTime))
		entries = append(entries, CheckedInEntry{
			ID:          row.ID,
			Address:     row.Address,
			CheckInTime: row.CheckInTime,
			Elapsed:     elapsed,
			ElapsedText: elapsed.Format(),
			Overdue:     elapsed > threshold,
		})
	}
	return GetCheckedInResult{Entries: entries}, nil
}
