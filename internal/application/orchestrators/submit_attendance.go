package orchestrators

import (
	"context"
	"log/slog"
	"time"

	"shoptrack/internal/domain/ledger"
)

// SubmitAttendanceInput carries one kiosk form submission.
type SubmitAttendanceInput struct {
	At        time.Time // submission instant; zero means now
	Address   string
	Direction string // "In" or "Out"
	Metadata  string // free text shown in the audit trail
}

// ExecuteSubmitAttendance processes a kiosk check-in/check-out form
// event. Unknown addresses are enrolled on the spot, an "In" on a row
// already checked in settles the open visit first, and an "Out" on a
// checked-out row is accepted and ignored.
// PRE: Direction is one of the two accepted forms
// POST: row state matches the declared direction
func ExecuteSubmitAttendance(ctx context.Context, input SubmitAttendanceInput, deps AttendanceDeps) error {
	direction, err := ledger.ParseDirection(input.Direction)
	if err != nil {
		return err
	}

	at := input.At
	if at.IsZero() {
		at = deps.Now()
	}

	row, err := ensureRow(ctx, deps, input.Address)
	if err != nil {
		return err
	}

	switch direction {
	case ledger.DirectionIn:
		err = checkInRow(ctx, deps, row, at, input.Metadata)
	case ledger.DirectionOut:
		err = checkOutRow(ctx, deps, row, at, input.Metadata)
	}
	if err != nil {
		return err
	}

	slog.Info("attendance_event", "event", "form_submitted",
		"address", row.Address, "direction", string(direction))
	return nil
}
