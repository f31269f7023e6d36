package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"shoptrack/internal/domain/hms"
	"shoptrack/internal/domain/ledger"
)

// AttendanceRosterStore defines the roster store interface needed by
// the attendance transitions. Every transition funnels its time write
// through ExecuteAddHours, so this is a superset of AddHoursRosterStore.
type AttendanceRosterStore interface {
	AddHoursRosterStore
	GetByAddress(ctx context.Context, address string) (ledger.Row, error)
	FindBySelector(ctx context.Context, selector string) (ledger.Row, error)
	Create(ctx context.Context, row ledger.Row) error
	ListCheckedIn(ctx context.Context) ([]ledger.Row, error)
	SetCheckIn(ctx context.Context, id string, at time.Time) error
	ClearCheckIn(ctx context.Context, id string) error
	IncrementTimeoutCount(ctx context.Context, id string) error
}

// AttendanceDeps holds dependencies shared by the attendance transitions.
type AttendanceDeps struct {
	RosterStore AttendanceRosterStore
	WeekStore   RolloverWeekStore
	// DefaultRequirement is the weekly target stamped onto lazily
	// created rows; zero falls back to ledger.DefaultHourRequirement.
	DefaultRequirement hms.Duration
	GenerateID         func() string
	Now                func() time.Time
}

func hoursDeps(deps AttendanceDeps) AddHoursDeps {
	return AddHoursDeps{
		RosterStore: deps.RosterStore,
		WeekStore:   deps.WeekStore,
		GenerateID:  deps.GenerateID,
		Now:         deps.Now,
	}
}

func defaultRequirement(deps AttendanceDeps) hms.Duration {
	if deps.DefaultRequirement > 0 {
		return deps.DefaultRequirement
	}
	return ledger.DefaultHourRequirement
}

// ensureRow returns the ledger row for an address, creating one with
// the default weekly requirement when the address is not yet tracked.
// POST: returned row exists and has a log cell for the current week
func ensureRow(ctx context.Context, deps AttendanceDeps, address string) (ledger.Row, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return ledger.Row{}, ledger.ErrEmptyAddress
	}

	row, err := deps.RosterStore.GetByAddress(ctx, address)
	if err == nil {
		return row, nil
	}
	if !errors.Is(err, ledger.ErrMemberNotFound) {
		return ledger.Row{}, err
	}

	row = ledger.Row{
		ID:              deps.GenerateID(),
		Address:         address,
		HourRequirement: defaultRequirement(deps).Format(),
		CreatedAt:       deps.Now(),
	}
	if err := row.Validate(); err != nil {
		return ledger.Row{}, err
	}
	if err := deps.RosterStore.Create(ctx, row); err != nil {
		// A concurrent submission for the same address may have won.
		if errors.Is(err, ledger.ErrAlreadyExists) {
			return deps.RosterStore.GetByAddress(ctx, address)
		}
		return ledger.Row{}, err
	}

	week, err := ExecuteEnsureCurrentWeek(ctx, EnsureCurrentWeekDeps{
		WeekStore:   deps.WeekStore,
		RosterStore: deps.RosterStore,
		GenerateID:  deps.GenerateID,
		Now:         deps.Now,
	})
	if err != nil {
		return ledger.Row{}, err
	}
	if _, err := ensureCell(ctx, hoursDeps(deps), row.ID, week); err != nil {
		return ledger.Row{}, err
	}

	slog.Info("ledger_event", "event", "member_created", "address", address)
	return row, nil
}

// checkInRow moves the row into the CHECKED_IN state at the given
// instant. A row already checked in is settled first, so a forgotten
// checkout can never swallow the earlier visit.
func checkInRow(ctx context.Context, deps AttendanceDeps, row ledger.Row, at time.Time, metadata string) error {
	if row.CheckedIn() {
		if err := checkOutRow(ctx, deps, row, at, metadata); err != nil {
			return err
		}
	}
	if err := deps.RosterStore.SetCheckIn(ctx, row.ID, at); err != nil {
		return err
	}
	slog.Info("attendance_event", "event", "member_checked_in", "address", row.Address, "at", at.Format(time.RFC3339))
	return nil
}

// checkOutRow settles the row's open visit: elapsed time accrues to the
// current week tagged with the check-in it settles, then the state
// marker clears. A row that is not checked in is left untouched.
func checkOutRow(ctx context.Context, deps AttendanceDeps, row ledger.Row, at time.Time, metadata string) error {
	if !row.CheckedIn() {
		slog.Debug("attendance_event", "event", "checkout_ignored", "address", row.Address)
		return nil
	}

	elapsed := hms.FromStd(at.Sub(row.CheckInTime))
	err := ExecuteAddHours(ctx, AddHoursInput{
		MemberID: row.ID,
		Elapsed:  elapsed,
		Source:   ledger.CheckinSource(row.CheckInTime),
		Metadata: metadata,
	}, hoursDeps(deps))
	if err != nil {
		return err
	}
	if err := deps.RosterStore.ClearCheckIn(ctx, row.ID); err != nil {
		return err
	}

	slog.Info("attendance_event", "event", "member_checked_out",
		"address", row.Address, "elapsed", elapsed.Format())
	return nil
}

// timeoutRow force-closes a stale visit: the row is credited the fixed
// timeout allowance instead of the actual elapsed time, checked out, and
// its timeout counter bumped.
// PRE: row is in the CHECKED_IN state
func timeoutRow(ctx context.Context, deps AttendanceDeps, row ledger.Row) error {
	if !row.CheckedIn() {
		return fmt.Errorf("%w: %s", ledger.ErrNotCheckedIn, row.Address)
	}

	err := ExecuteAddHours(ctx, AddHoursInput{
		MemberID: row.ID,
		Elapsed:  ledger.TimeoutCredit,
		Source:   ledger.CheckinSource(row.CheckInTime),
		Metadata: ledger.TimeoutMetadata,
	}, hoursDeps(deps))
	if err != nil {
		return err
	}
	if err := deps.RosterStore.ClearCheckIn(ctx, row.ID); err != nil {
		return err
	}
	if err := deps.RosterStore.IncrementTimeoutCount(ctx, row.ID); err != nil {
		return err
	}

	slog.Info("attendance_event", "event", "member_timed_out", "address", row.Address)
	return nil
}
