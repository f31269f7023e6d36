package orchestrators

import (
	"context"
)

// TimeoutMemberInput carries input for the manual timeout command.
type TimeoutMemberInput struct {
	Selector string
}

// ExecuteTimeoutMember force-closes the resolved member's open visit
// with the fixed timeout credit, exactly as the periodic sweep would.
// POST: row is CHECKED_OUT with the credit accrued and counter bumped,
// or ledger.ErrNotCheckedIn when there is no open visit
func ExecuteTimeoutMember(ctx context.Context, input TimeoutMemberInput, deps AttendanceDeps) error {
	row, err := deps.RosterStore.FindBySelector(ctx, input.Selector)
	if err != nil {
		return err
	}
	return timeoutRow(ctx, deps, row)
}
