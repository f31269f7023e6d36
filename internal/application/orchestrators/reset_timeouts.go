package orchestrators

import (
	"context"
	"log/slog"

	"shoptrack/internal/domain/ledger"
)

// TimeoutCounterStore defines the roster store interface needed to
// reset a timeout counter.
type TimeoutCounterStore interface {
	FindBySelector(ctx context.Context, selector string) (ledger.Row, error)
	ResetTimeoutCount(ctx context.Context, id string) error
}

// ResetTimeoutsInput carries input for the counter reset command.
type ResetTimeoutsInput struct {
	Selector string
}

// ResetTimeoutsDeps holds dependencies for ResetTimeouts.
type ResetTimeoutsDeps struct {
	RosterStore TimeoutCounterStore
}

// ExecuteResetTimeouts zeroes the resolved member's timeout counter.
// Logged time and trail entries from past timeouts are untouched.
func ExecuteResetTimeouts(ctx context.Context, input ResetTimeoutsInput, deps ResetTimeoutsDeps) error {
	row, err := deps.RosterStore.FindBySelector(ctx, input.Selector)
	if err != nil {
		return err
	}
	if err := deps.RosterStore.ResetTimeoutCount(ctx, row.ID); err != nil {
		return err
	}
	slog.Info("ledger_event", "event", "timeouts_reset", "address", row.Address, "previous", row.TimeoutCount)
	return nil
}
