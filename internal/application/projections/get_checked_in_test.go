package projections

import (
	"context"
	"testing"
	"time"

	"shoptrack/internal/domain/hms"
	"shoptrack/internal/domain/ledger"
)

func TestQueryGetCheckedIn_FlagsOverdueVisits(t *testing.T) {
	now := time.Date(2026, 1, 14, 18, 0, 0, 0, time.UTC)
	roster := &mockRosterReader{rows: []ledger.Row{
		{ID: "m1", Address: "early@example.com", CheckInTime: now.Add(-4 * time.Hour)},
		{ID: "m2", Address: "late@example.com", CheckInTime: now.Add(-time.Hour)},
		{ID: "m3", Address: "out@example.com"},
	}}

	res, err := QueryGetCheckedIn(context.Background(), GetCheckedInQuery{Now: now},
		GetCheckedInDeps{RosterStore: roster})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Entries) != 2 {
		t.Fatalf("entries=%d want 2", len(res.Entries))
	}

	// Oldest check-in first.
	if res.Entries[0].Address != "early@example.com" || res.Entries[1].Address != "late@example.com" {
		t.Errorf("order = %q, %q", res.Entries[0].Address, res.Entries[1].Address)
	}
	if res.Entries[0].ElapsedText != "4:00:00" || !res.Entries[0].Overdue {
		t.Errorf("entry[0] = %+v, want 4:00:00 overdue", res.Entries[0])
	}
	if res.Entries[1].Overdue {
		t.Error("a one-hour visit is not overdue at the default threshold")
	}
}

func TestQueryGetCheckedIn_CustomThreshold(t *testing.T) {
	now := time.Date(2026, 1, 14, 18, 0, 0, 0, time.UTC)
	roster := &mockRosterReader{rows: []ledger.Row{
		{ID: "m1", Address: "kim@example.com", CheckInTime: now.Add(-90 * time.Minute)},
	}}

	res, err := QueryGetCheckedIn(context.Background(), GetCheckedInQuery{Now: now},
		GetCheckedInDeps{RosterStore: roster, Threshold: hms.Hour})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Entries[0].Overdue {
		t.Error("visit past the custom threshold should be overdue")
	}
}
