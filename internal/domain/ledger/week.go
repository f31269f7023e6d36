package ledger

import "time"

// WeekLabelLayout is the date form used for week markers.
const WeekLabelLayout = "2006-01-02"

// Week marks one tracked accounting period. Start is the Monday label
// in WeekLabelLayout form; periods sort chronologically by label.
type Week struct {
	Start     string
	CreatedAt time.Time
}

// StartTime parses the week marker label in loc.
func (w *Week) StartTime(loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(WeekLabelLayout, w.Start, loc)
}

// WeekStartOf returns Monday 00:00 of t's calendar week in t's location.
// Days count Monday=1 through Sunday=7, so a Sunday belongs to the week
// that started six days earlier.
func WeekStartOf(t time.Time) time.Time {
	wd := int(t.Weekday()) // Sunday=0 in time.Weekday
	if wd == 0 {
		wd = 7
	}
	monday := t.AddDate(0, 0, 1-wd)
	return time.Date(monday.Year(), monday.Month(), monday.Day(), 0, 0, 0, 0, t.Location())
}

// WeekLabel formats a week-start instant as its marker label.
func WeekLabel(t time.Time) string {
	return t.Format(WeekLabelLayout)
}

// RolloverDue reports whether a new week period must be opened: strictly
// more than seven days have passed since the current week marker. When a
// system sits idle across several weeks this still opens only one new
// period; intermediate weeks are not backfilled.
func RolloverDue(marker, now time.Time) bool {
	return now.Sub(marker) > 7*24*time.Hour
}
