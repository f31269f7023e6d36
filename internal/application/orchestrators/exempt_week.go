package orchestrators

import (
	"context"

	"shoptrack/internal/domain/hms"
	"shoptrack/internal/domain/ledger"
)

// ExemptWeekInput carries input for the week exemption command.
type ExemptWeekInput struct {
	Selector string
	// Amount is the duration to credit; empty credits the member's own
	// weekly requirement.
	Amount   string
	Metadata string // reason, e.g. "medical"; shown after the Exempt tag
}

// ExecuteExemptWeek credits the resolved member's current week so an
// excused absence never turns into missed-hours debt. The trail entry
// is tagged "admin" and its metadata prefixed "Exempt".
// POST: current week increased by Amount (or the member's requirement)
func ExecuteExemptWeek(ctx context.Context, input ExemptWeekInput, deps AttendanceDeps) error {
	row, err := deps.RosterStore.FindBySelector(ctx, input.Selector)
	if err != nil {
		return err
	}

	amount, err := exemptAmount(row, input.Amount)
	if err != nil {
		return err
	}

	metadata := "Exempt"
	if m := ledger.NormalizeMetadata(input.Metadata); m != "N/A" {
		metadata = "Exempt: " + m
	}

	return ExecuteAddHours(ctx, AddHoursInput{
		MemberID: row.ID,
		Elapsed:  amount,
		Source:   ledger.SourceAdmin,
		Metadata: metadata,
	}, hoursDeps(deps))
}

func exemptAmount(row ledger.Row, amount string) (hms.Duration, error) {
	if amount == "" {
		return row.Requirement()
	}
	return hms.Parse(amount)
}
