package orchestrators

import (
	"context"
)

// CheckOutMemberInput carries input for the admin checkout command.
type CheckOutMemberInput struct {
	Selector string
	Metadata string
}

// ExecuteCheckOutMember settles a member's open visit on an admin's
// behalf. Checking out a member who is not checked in is a no-op, same
// as the kiosk form.
// POST: resolved row is CHECKED_OUT
func ExecuteCheckOutMember(ctx context.Context, input CheckOutMemberInput, deps AttendanceDeps) error {
	row, err := deps.RosterStore.FindBySelector(ctx, input.Selector)
	if err != nil {
		return err
	}
	return checkOutRow(ctx, deps, row, deps.Now(), input.Metadata)
}
