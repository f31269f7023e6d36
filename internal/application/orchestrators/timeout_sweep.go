package orchestrators

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	emailAdapter "shoptrack/internal/adapters/email"
	"shoptrack/internal/domain/hms"
	"shoptrack/internal/domain/ledger"
)

// TimeoutSweepDeps holds dependencies for the periodic timeout sweep.
type TimeoutSweepDeps struct {
	RosterStore AttendanceRosterStore
	WeekStore   RolloverWeekStore
	// Threshold is how long a visit may stay open; zero falls back to
	// ledger.DefaultTimeoutThreshold.
	Threshold hms.Duration
	// EmailSender is optional; nil skips the courtesy notices.
	EmailSender emailAdapter.Sender
	EmailFrom   string
	EmailReply  string
	GenerateID  func() string
	Now         func() time.Time
}

// TimeoutSweepResult reports what one sweep pass did.
type TimeoutSweepResult struct {
	CheckedIn int      // open visits inspected
	TimedOut  []string // addresses force-closed, oldest check-in first
}

// ExecuteTimeoutSweep walks the open visits and force-closes every one
// older than the threshold. Each member keeps the fixed timeout credit
// and gets a counter bump; a failure on one row is logged and the sweep
// moves on. Members with a mailable address get a courtesy notice,
// best effort.
// POST: no visit older than the threshold remains open, barring per-row
// store failures
func ExecuteTimeoutSweep(ctx context.Context, deps TimeoutSweepDeps) (TimeoutSweepResult, error) {
	now := deps.Now()
	threshold := deps.Threshold
	if threshold <= 0 {
		threshold = ledger.DefaultTimeoutThreshold
	}

	rows, err := deps.RosterStore.ListCheckedIn(ctx)
	if err != nil {
		return TimeoutSweepResult{}, err
	}

	attendance := AttendanceDeps{
		RosterStore: deps.RosterStore,
		WeekStore:   deps.WeekStore,
		GenerateID:  deps.GenerateID,
		Now:         deps.Now,
	}

	result := TimeoutSweepResult{CheckedIn: len(rows)}
	var notices []emailAdapter.SendRequest
	for _, row := range rows {
		if hms.FromStd(now.Sub(row.CheckInTime)) <= threshold {
			continue
		}
		if err := timeoutRow(ctx, attendance, row); err != nil {
			slog.Error("sweep_event", "event", "timeout_failed", "address", row.Address, "error", err)
			continue
		}
		result.TimedOut = append(result.TimedOut, row.Address)
		if deps.EmailSender != nil && strings.Contains(row.Address, "@") {
			notices = append(notices, timeoutNotice(deps, row))
		}
	}

	if len(notices) > 0 {
		if _, err := deps.EmailSender.SendBatch(ctx, notices); err != nil {
			slog.Error("sweep_event", "event", "notices_failed", "count", len(notices), "error", err)
		}
	}

	slog.Info("sweep_event", "event", "sweep_completed",
		"checked_in", result.CheckedIn, "timed_out", len(result.TimedOut))
	return result, nil
}

// timeoutNotice builds the courtesy email for a force-closed visit.
func timeoutNotice(deps TimeoutSweepDeps, row ledger.Row) emailAdapter.SendRequest {
	body := fmt.Sprintf(
		"<p>Hi,</p>"+
			"<p>You checked in at %s and never checked out, so the shop closed your visit "+
			"automatically and credited %s toward this week.</p>"+
			"<p>If you worked longer, ask a steward to correct your hours.</p>",
		row.CheckInTime.Format("15:04 on Monday 2 January"),
		ledger.TimeoutCredit.Format(),
	)
	return emailAdapter.SendRequest{
		To:      []string{row.Address},
		From:    deps.EmailFrom,
		Subject: "Your shop visit was closed automatically",
		HTML:    body,
		ReplyTo: deps.EmailReply,
	}
}
