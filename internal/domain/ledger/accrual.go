package ledger

import "shoptrack/internal/domain/hms"

// MissedHours computes the outstanding make-up debt for a row.
// history holds the logged durations of closed weeks, oldest first;
// current is the open week's logged duration. Weekly shortfalls cost
// double; surplus weeks pay existing debt down, never below zero, and
// the open week's surplus counts toward that pay-down too.
// PRE: history excludes the current week
// POST: result >= 0; no stored state is read or written
func MissedHours(history []hms.Duration, current, requirement hms.Duration) hms.Duration {
	var debt hms.Duration
	for _, logged := range history {
		delta := logged - requirement
		if delta < 0 {
			debt += -delta * MissedTimeMultiplier
			continue
		}
		if debt > 0 {
			if delta < debt {
				debt -= delta
			} else {
				debt = 0
			}
		}
	}
	if surplus := current - requirement; surplus > 0 && debt > 0 {
		if surplus < debt {
			debt -= surplus
		} else {
			debt = 0
		}
	}
	return debt
}
