package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"shoptrack/internal/domain/hms"
	"shoptrack/internal/domain/ledger"
)

// AddHoursRosterStore defines the roster store interface needed to
// accrue time. It is a superset of RolloverRosterStore because every
// accrual checks the week first.
type AddHoursRosterStore interface {
	List(ctx context.Context) ([]ledger.Row, error)
	GetCell(ctx context.Context, memberID, weekStart string) (ledger.WeekCell, error)
	CreateCell(ctx context.Context, cell ledger.WeekCell) error
	SetCellLogged(ctx context.Context, cellID, logged string) error
	AppendCellNote(ctx context.Context, cellID, entry string) error
}

// AddHoursInput carries input for the add-hours orchestrator.
type AddHoursInput struct {
	MemberID string
	Elapsed  hms.Duration // signed; negative values subtract
	Source   string       // trail tag: ledger.SourceAdmin or a checkin tag
	Metadata string       // free text, normalized into the trail
}

// AddHoursDeps holds dependencies for AddHours.
type AddHoursDeps struct {
	RosterStore AddHoursRosterStore
	WeekStore   RolloverWeekStore
	GenerateID  func() string
	Now         func() time.Time
}

// ExecuteAddHours is the single write path for logged time. It settles
// the current week first, re-reads the authoritative cell value, applies
// the signed adjustment, and appends one audit trail entry.
// PRE: MemberID identifies an existing row; Source is non-empty
// POST: cell logged time increased/decreased by Elapsed, one trail entry
// appended; nothing is written when the result would be negative
// INVARIANT: a cell's logged time never goes below zero
func ExecuteAddHours(ctx context.Context, input AddHoursInput, deps AddHoursDeps) error {
	if input.MemberID == "" {
		return errors.New("member ID is required")
	}
	if input.Source == "" {
		return errors.New("trail source is required")
	}

	week, err := ExecuteEnsureCurrentWeek(ctx, EnsureCurrentWeekDeps{
		WeekStore:   deps.WeekStore,
		RosterStore: deps.RosterStore,
		GenerateID:  deps.GenerateID,
		Now:         deps.Now,
	})
	if err != nil {
		return err
	}

	cell, err := ensureCell(ctx, deps, input.MemberID, week)
	if err != nil {
		return err
	}

	current, err := cell.LoggedDuration()
	if err != nil {
		return fmt.Errorf("cell %s: %w", cell.ID, err)
	}

	next := current + input.Elapsed
	if next.IsNegative() {
		return fmt.Errorf("%w: %s %s would leave %s",
			ledger.ErrInvalidAccrual, cell.Logged, input.Elapsed.Format(), next.Format())
	}

	if err := deps.RosterStore.SetCellLogged(ctx, cell.ID, next.Format()); err != nil {
		return err
	}
	if err := deps.RosterStore.AppendCellNote(ctx, cell.ID, ledger.TrailEntry(input.Elapsed, input.Source, input.Metadata)); err != nil {
		return err
	}

	slog.Info("ledger_event", "event", "hours_logged",
		"member_id", input.MemberID, "week", week,
		"elapsed", input.Elapsed.Format(), "total", next.Format(), "source", input.Source)
	return nil
}

// ensureCell returns the member's cell for the week, creating a zeroed
// one when the member has no entry yet (members created before tracking
// of this week began, or rows racing the rollover).
func ensureCell(ctx context.Context, deps AddHoursDeps, memberID, week string) (ledger.WeekCell, error) {
	cell, err := deps.RosterStore.GetCell(ctx, memberID, week)
	if err == nil {
		return cell, nil
	}
	if !errors.Is(err, ledger.ErrCellNotFound) {
		return ledger.WeekCell{}, err
	}
	fresh := ledger.WeekCell{
		ID:        deps.GenerateID(),
		MemberID:  memberID,
		WeekStart: week,
		Logged:    "0:00:00",
	}
	if err := deps.RosterStore.CreateCell(ctx, fresh); err != nil {
		return ledger.WeekCell{}, err
	}
	// Re-read: a concurrent creator may have won the insert.
	return deps.RosterStore.GetCell(ctx, memberID, week)
}
