package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"shoptrack/internal/domain/ledger"
)

// RolloverWeekStore defines the week store interface needed for rollover.
type RolloverWeekStore interface {
	Latest(ctx context.Context) (ledger.Week, error)
	Create(ctx context.Context, value ledger.Week) error
}

// RolloverRosterStore defines the roster store interface needed for rollover.
type RolloverRosterStore interface {
	List(ctx context.Context) ([]ledger.Row, error)
	CreateCell(ctx context.Context, cell ledger.WeekCell) error
}

// EnsureCurrentWeekDeps holds dependencies for EnsureCurrentWeek.
type EnsureCurrentWeekDeps struct {
	WeekStore   RolloverWeekStore
	RosterStore RolloverRosterStore
	GenerateID  func() string
	Now         func() time.Time
}

// ExecuteEnsureCurrentWeek makes sure an accounting period covering now
// is open, and returns its week label. A new period opens when no period
// exists yet, or when strictly more than seven days have passed since
// the newest marker. However long the system sat idle, exactly one new
// period opens; the skipped weeks are not backfilled.
// POST: returned label identifies the week every accrual lands in
// INVARIANT: week markers only ever grow; past periods are never touched
func ExecuteEnsureCurrentWeek(ctx context.Context, deps EnsureCurrentWeekDeps) (string, error) {
	now := deps.Now()

	latest, err := deps.WeekStore.Latest(ctx)
	if errors.Is(err, ledger.ErrNoWeeks) {
		return openWeek(ctx, deps, now)
	}
	if err != nil {
		return "", err
	}

	marker, err := latest.StartTime(now.Location())
	if err != nil {
		return "", fmt.Errorf("corrupted week marker %q: %w", latest.Start, err)
	}
	if !ledger.RolloverDue(marker, now) {
		return latest.Start, nil
	}
	return openWeek(ctx, deps, now)
}

// openWeek creates the marker for now's calendar week plus a zeroed log
// cell for every tracked member.
func openWeek(ctx context.Context, deps EnsureCurrentWeekDeps, now time.Time) (string, error) {
	label := ledger.WeekLabel(ledger.WeekStartOf(now))
	if err := deps.WeekStore.Create(ctx, ledger.Week{Start: label, CreatedAt: now}); err != nil {
		return "", err
	}

	rows, err := deps.RosterStore.List(ctx)
	if err != nil {
		return "", err
	}
	for _, row := range rows {
		cell := ledger.WeekCell{
			ID:        deps.GenerateID(),
			MemberID:  row.ID,
			WeekStart: label,
			Logged:    "0:00:00",
		}
		if err := deps.RosterStore.CreateCell(ctx, cell); err != nil {
			return "", err
		}
	}

	slog.Info("ledger_event", "event", "week_opened", "week", label, "cells", len(rows))
	return label, nil
}
