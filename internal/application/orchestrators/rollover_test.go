package orchestrators

import (
	"context"
	"testing"
	"time"

	"shoptrack/internal/domain/ledger"
)

func rolloverDeps(roster *mockRosterStore, weeks *mockWeekStore, now func() time.Time) EnsureCurrentWeekDeps {
	return EnsureCurrentWeekDeps{
		WeekStore:   weeks,
		RosterStore: roster,
		GenerateID:  seqID(),
		Now:         now,
	}
}

func TestEnsureCurrentWeek_BootstrapsFirstWeek(t *testing.T) {
	roster := newMockRosterStore()
	roster.addRow(ledger.Row{ID: "m1", Address: "kim@example.com", CreatedAt: fixedTime})
	weeks := newMockWeekStore()

	label, err := ExecuteEnsureCurrentWeek(context.Background(), rolloverDeps(roster, weeks, fixedNow))
	if err != nil {
		t.Fatalf("ExecuteEnsureCurrentWeek failed: %v", err)
	}
	if label != "2026-01-05" {
		t.Errorf("label = %q, want 2026-01-05", label)
	}
	if len(weeks.weeks) != 1 {
		t.Fatalf("got %d weeks, want 1", len(weeks.weeks))
	}
	if _, ok := roster.cellFor("m1", "2026-01-05"); !ok {
		t.Error("no zero cell created for existing member")
	}
}

func TestEnsureCurrentWeek_NoopWithinWeek(t *testing.T) {
	roster := newMockRosterStore()
	weeks := newMockWeekStore()
	monday := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	weeks.weeks = []ledger.Week{{Start: "2026-01-05", CreatedAt: monday}}

	label, err := ExecuteEnsureCurrentWeek(context.Background(), rolloverDeps(roster, weeks, fixedNow))
	if err != nil {
		t.Fatalf("ExecuteEnsureCurrentWeek failed: %v", err)
	}
	if label != "2026-01-05" {
		t.Errorf("label = %q, want existing 2026-01-05", label)
	}
	if len(weeks.weeks) != 1 {
		t.Errorf("got %d weeks, want 1", len(weeks.weeks))
	}
}

// The rollover trigger is strictly more than seven days, so the instant
// exactly one week after the marker still belongs to the old period.
func TestEnsureCurrentWeek_ExactlySevenDaysStays(t *testing.T) {
	roster := newMockRosterStore()
	weeks := newMockWeekStore()
	weeks.weeks = []ledger.Week{{Start: "2026-01-05", CreatedAt: fixedTime}}

	nextMonday := time.Date(2026, 1, 12, 0, 0, 0, 0, time.UTC)
	label, err := ExecuteEnsureCurrentWeek(context.Background(),
		rolloverDeps(roster, weeks, func() time.Time { return nextMonday }))
	if err != nil {
		t.Fatalf("ExecuteEnsureCurrentWeek failed: %v", err)
	}
	if label != "2026-01-05" {
		t.Errorf("label = %q, want old period 2026-01-05", label)
	}

	justPast := nextMonday.Add(time.Second)
	label, err = ExecuteEnsureCurrentWeek(context.Background(),
		rolloverDeps(roster, weeks, func() time.Time { return justPast }))
	if err != nil {
		t.Fatalf("ExecuteEnsureCurrentWeek failed: %v", err)
	}
	if label != "2026-01-12" {
		t.Errorf("label = %q, want new period 2026-01-12", label)
	}
}

// However long the system sits idle, exactly one new period opens and
// the skipped calendar weeks are never backfilled.
func TestEnsureCurrentWeek_LongIdleOpensSingleWeek(t *testing.T) {
	roster := newMockRosterStore()
	roster.addRow(ledger.Row{ID: "m1", Address: "kim@example.com", CreatedAt: fixedTime})
	weeks := newMockWeekStore()
	weeks.weeks = []ledger.Week{{Start: "2026-01-05", CreatedAt: fixedTime}}

	// Four calendar weeks later, a Wednesday.
	later := time.Date(2026, 2, 4, 12, 0, 0, 0, time.UTC)
	label, err := ExecuteEnsureCurrentWeek(context.Background(),
		rolloverDeps(roster, weeks, func() time.Time { return later }))
	if err != nil {
		t.Fatalf("ExecuteEnsureCurrentWeek failed: %v", err)
	}
	if label != "2026-02-02" {
		t.Errorf("label = %q, want 2026-02-02", label)
	}
	if len(weeks.weeks) != 2 {
		t.Fatalf("got %d weeks, want 2 (no backfill)", len(weeks.weeks))
	}
	for _, w := range weeks.weeks {
		if w.Start == "2026-01-12" || w.Start == "2026-01-19" || w.Start == "2026-01-26" {
			t.Errorf("intermediate week %s was backfilled", w.Start)
		}
	}
}

func TestEnsureCurrentWeek_OpensCellsForAllMembers(t *testing.T) {
	roster := newMockRosterStore()
	roster.addRow(ledger.Row{ID: "m1", Address: "a@example.com", CreatedAt: fixedTime})
	roster.addRow(ledger.Row{ID: "m2", Address: "b@example.com", CreatedAt: fixedTime})
	weeks := newMockWeekStore()

	if _, err := ExecuteEnsureCurrentWeek(context.Background(), rolloverDeps(roster, weeks, fixedNow)); err != nil {
		t.Fatalf("ExecuteEnsureCurrentWeek failed: %v", err)
	}

	for _, id := range []string{"m1", "m2"} {
		cell, ok := roster.cellFor(id, "2026-01-05")
		if !ok {
			t.Errorf("no cell for %s", id)
			continue
		}
		if cell.Logged != "0:00:00" || cell.Note != "" {
			t.Errorf("cell for %s not zeroed: %+v", id, cell)
		}
	}
}

// A Sunday belongs to the week that started the previous Monday.
func TestEnsureCurrentWeek_SundayAnchorsToPreviousMonday(t *testing.T) {
	weeks := newMockWeekStore()
	sunday := time.Date(2026, 1, 11, 23, 0, 0, 0, time.UTC)

	label, err := ExecuteEnsureCurrentWeek(context.Background(),
		rolloverDeps(newMockRosterStore(), weeks, func() time.Time { return sunday }))
	if err != nil {
		t.Fatalf("ExecuteEnsureCurrentWeek failed: %v", err)
	}
	if label != "2026-01-05" {
		t.Errorf("label = %q, want 2026-01-05", label)
	}
}
