package orchestrators

import (
	"context"

	"shoptrack/internal/domain/hms"
	"shoptrack/internal/domain/ledger"
)

// ModifyHoursInput carries input for the admin hours correction.
type ModifyHoursInput struct {
	Selector string
	Delta    string // signed duration text, e.g. "1:30:00" or "-0:45:00"
	Metadata string
}

// ExecuteModifyHours applies a signed correction to the resolved
// member's current week, tagged "admin" in the audit trail.
// POST: current week adjusted by Delta, or ledger.ErrInvalidAccrual if
// the result would be negative
func ExecuteModifyHours(ctx context.Context, input ModifyHoursInput, deps AttendanceDeps) error {
	delta, err := hms.Parse(input.Delta)
	if err != nil {
		return err
	}
	row, err := deps.RosterStore.FindBySelector(ctx, input.Selector)
	if err != nil {
		return err
	}
	return ExecuteAddHours(ctx, AddHoursInput{
		MemberID: row.ID,
		Elapsed:  delta,
		Source:   ledger.SourceAdmin,
		Metadata: input.Metadata,
	}, hoursDeps(deps))
}
