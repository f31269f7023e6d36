package orchestrators

import (
	"context"
	"fmt"
	"log/slog"

	"shoptrack/internal/domain/hms"
	"shoptrack/internal/domain/ledger"
)

// RequirementStore defines the roster store interface needed to change
// a weekly requirement.
type RequirementStore interface {
	FindBySelector(ctx context.Context, selector string) (ledger.Row, error)
	SetHourRequirement(ctx context.Context, id string, requirement string) error
}

// SetRequirementInput carries input for the requirement command.
type SetRequirementInput struct {
	Selector    string
	Requirement string // duration text "H:M:S"
}

// SetRequirementDeps holds dependencies for SetRequirement.
type SetRequirementDeps struct {
	RosterStore RequirementStore
}

// ExecuteSetRequirement changes the resolved member's weekly target.
// The new value applies from the current week onward; past weeks keep
// the debt they already produced.
// PRE: Requirement parses as a non-negative duration
func ExecuteSetRequirement(ctx context.Context, input SetRequirementInput, deps SetRequirementDeps) error {
	requirement, err := hms.Parse(input.Requirement)
	if err != nil {
		return err
	}
	if requirement.IsNegative() {
		return fmt.Errorf("%w: hour requirement cannot be negative", hms.ErrInvalidDuration)
	}

	row, err := deps.RosterStore.FindBySelector(ctx, input.Selector)
	if err != nil {
		return err
	}
	if err := deps.RosterStore.SetHourRequirement(ctx, row.ID, requirement.Format()); err != nil {
		return err
	}

	slog.Info("ledger_event", "event", "requirement_changed",
		"address", row.Address, "from", row.HourRequirement, "to", requirement.Format())
	return nil
}
