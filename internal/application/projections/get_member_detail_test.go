package projections

import (
	"context"
	"testing"
	"time"

	"shoptrack/internal/domain/ledger"
)

func TestQueryGetMemberDetail_AssemblesWeeklyLog(t *testing.T) {
	weeks := []string{"2026-01-05", "2026-01-12"}
	checkIn := time.Date(2026, 1, 14, 15, 0, 0, 0, time.UTC)
	roster := &mockRosterReader{rows: []ledger.Row{
		{ID: "m1", Address: "kim@example.com", HourRequirement: "6:00:00",
			CheckInTime: checkIn, TimeoutCount: 1},
	}}
	seedWeeklyLog(roster, "m1", weeks, []string{"4:00:00", "1:30:00"})
	roster.cells["m1"][0].Note = "Logged 4:00:00 from checkin 2026-01-07 11:00:00 for: N/A"
	roster.cells["m1"][1].Note = "Logged 1:00:00 from checkin 2026-01-13 09:00:00 for: sanding\n" +
		"Logged 0:30:00 from admin for: forgot badge"

	res, err := QueryGetMemberDetail(context.Background(), GetMemberDetailQuery{Address: "kim@example.com"},
		GetMemberDetailDeps{RosterStore: roster, WeekStore: &mockWeekReader{weeks: weeks}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if res.ID != "m1" || !res.CheckedIn || !res.CheckInTime.Equal(checkIn) || res.TimeoutCount != 1 {
		t.Errorf("row fields = %+v", res)
	}
	if res.TotalText != "5:30:00" {
		t.Errorf("TotalText = %q, want 5:30:00", res.TotalText)
	}
	// 2h short in the closed week, doubled; the open week is uncharged.
	if res.MissedText != "04:00:00" {
		t.Errorf("MissedText = %q, want 04:00:00", res.MissedText)
	}

	if len(res.Weeks) != 2 {
		t.Fatalf("weeks=%d want 2", len(res.Weeks))
	}
	newest := res.Weeks[0]
	if newest.WeekStart != "2026-01-12" || !newest.Current {
		t.Errorf("weeks[0] = %+v, want the current week first", newest)
	}
	if len(newest.Trail) != 2 || newest.Trail[1] != "Logged 0:30:00 from admin for: forgot badge" {
		t.Errorf("trail = %q", newest.Trail)
	}
	oldest := res.Weeks[1]
	if oldest.WeekStart != "2026-01-05" || oldest.Current || oldest.LoggedText != "4:00:00" {
		t.Errorf("weeks[1] = %+v", oldest)
	}
}

func TestQueryGetMemberDetail_EmptyTrailStaysEmpty(t *testing.T) {
	weeks := []string{"2026-01-05"}
	roster := &mockRosterReader{rows: []ledger.Row{
		{ID: "m1", Address: "kim@example.com", HourRequirement: "6:00:00"},
	}}
	seedWeeklyLog(roster, "m1", weeks, []string{"0:00:00"})

	res, err := QueryGetMemberDetail(context.Background(), GetMemberDetailQuery{Address: "kim@example.com"},
		GetMemberDetailDeps{RosterStore: roster, WeekStore: &mockWeekReader{weeks: weeks}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Weeks) != 1 || len(res.Weeks[0].Trail) != 0 {
		t.Errorf("weeks = %+v, want one week with an empty trail", res.Weeks)
	}
}
