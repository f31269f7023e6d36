package orchestrators

import (
	"context"
	"errors"
	"strings"

	"shoptrack/internal/domain/ledger"
)

// CheckInMemberInput carries input for the admin check-in command.
type CheckInMemberInput struct {
	// Selector is an exact address or an address fragment. A fragment
	// resolves to the first match in address order; a selector matching
	// nothing enrolls a new member under that address.
	Selector string
	Metadata string // trail text for the implicit checkout, if any
}

// ExecuteCheckInMember checks a member in on an admin's behalf. The
// check-in instant is now, not a form timestamp.
// POST: resolved row is CHECKED_IN; an already-open visit was settled first
func ExecuteCheckInMember(ctx context.Context, input CheckInMemberInput, deps AttendanceDeps) error {
	row, err := resolveOrCreateRow(ctx, deps, input.Selector)
	if err != nil {
		return err
	}
	return checkInRow(ctx, deps, row, deps.Now(), input.Metadata)
}

// resolveOrCreateRow resolves a selector to a row, enrolling the
// selector as a new address when nothing matches. Only check-in has
// this enrolling behavior; corrections on unknown members are errors.
func resolveOrCreateRow(ctx context.Context, deps AttendanceDeps, selector string) (ledger.Row, error) {
	selector = strings.TrimSpace(selector)
	if selector == "" {
		return ledger.Row{}, ledger.ErrEmptyAddress
	}
	row, err := deps.RosterStore.FindBySelector(ctx, selector)
	if err == nil {
		return row, nil
	}
	if !errors.Is(err, ledger.ErrMemberNotFound) {
		return ledger.Row{}, err
	}
	return ensureRow(ctx, deps, selector)
}
