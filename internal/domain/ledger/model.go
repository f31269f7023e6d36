package ledger

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"shoptrack/internal/domain/hms"
)

// Audit trail source tags. Check-in settlements carry a timestamped tag
// built by CheckinSource; direct admin adjustments carry SourceAdmin.
const (
	SourceAdmin = "admin"
)

// Timeout policy constants.
const (
	TimeoutCredit   = 30 * hms.Minute // credited instead of actual elapsed time
	TimeoutMetadata = "Timeout"

	// DefaultTimeoutThreshold is how long a visit may stay open before
	// the sweep force-closes it. Deployments tune it between two and
	// three and a quarter hours.
	DefaultTimeoutThreshold = 3*hms.Hour + 15*hms.Minute
)

// DefaultHourRequirement is the weekly target assigned to new rows.
const DefaultHourRequirement = 6 * hms.Hour

// MissedTimeMultiplier doubles the cost of weekly shortfalls.
const MissedTimeMultiplier = 2

// Domain errors
var (
	ErrMemberNotFound   = errors.New("member not found")
	ErrInvalidAccrual   = errors.New("adjustment would make logged time negative")
	ErrNotCheckedIn     = errors.New("member is not checked in")
	ErrAlreadyExists    = errors.New("member already exists")
	ErrEmptyAddress     = errors.New("address cannot be empty")
	ErrNegativeTimeout  = errors.New("timeout count cannot be negative")
	ErrInvalidDirection = errors.New("direction must be In or Out")
	ErrNoWeeks          = errors.New("no week periods exist")
	ErrCellNotFound     = errors.New("week cell not found")
)

// Direction is the declared movement on an attendance submission.
type Direction string

// The two accepted directions. Anything else is rejected before any
// state is touched.
const (
	DirectionIn  Direction = "In"
	DirectionOut Direction = "Out"
)

// ParseDirection validates submitted direction text.
// POST: returns a wrapped ErrInvalidDirection for any value other than
// the two accepted forms; matching is exact, not case-folded
func ParseDirection(text string) (Direction, error) {
	switch d := Direction(strings.TrimSpace(text)); d {
	case DirectionIn, DirectionOut:
		return d, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidDirection, text)
	}
}

// Row is the per-member ledger record. CheckInTime is the state marker:
// zero means CHECKED_OUT, non-zero means CHECKED_IN since that instant.
type Row struct {
	ID              string
	Address         string
	HourRequirement string    // weekly target, duration text "H:M:S"
	CheckInTime     time.Time // zero when checked out
	TimeoutCount    int
	CreatedAt       time.Time
}

// Validate checks if the Row has valid data.
// PRE: Row struct is initialized
// POST: Returns error if validation fails, nil otherwise
// INVARIANT: Address is non-empty, HourRequirement parses as a duration
func (r *Row) Validate() error {
	if strings.TrimSpace(r.Address) == "" {
		return ErrEmptyAddress
	}
	req, err := hms.Parse(r.HourRequirement)
	if err != nil {
		return err
	}
	if req.IsNegative() {
		return errors.New("hour requirement cannot be negative")
	}
	if r.TimeoutCount < 0 {
		return ErrNegativeTimeout
	}
	return nil
}

// CheckedIn returns true if the row is in the CHECKED_IN state.
// INVARIANT: CheckInTime is not mutated
func (r *Row) CheckedIn() bool {
	return !r.CheckInTime.IsZero()
}

// Requirement parses the weekly hour requirement.
// POST: Returns a wrapped hms.ErrInvalidDuration on corrupted text
func (r *Row) Requirement() (hms.Duration, error) {
	return hms.Parse(r.HourRequirement)
}

// WeekCell is one member-week entry of the weekly log: the logged
// duration plus its append-only annotation trail.
type WeekCell struct {
	ID        string
	MemberID  string
	WeekStart string // Monday of the week, YYYY-MM-DD
	Logged    string // duration text "H:M:S"
	Note      string // trail entries, newline separated, newest last
}

// Validate checks if the WeekCell has valid data.
// PRE: WeekCell struct is initialized
// POST: Returns error if validation fails, nil otherwise
func (c *WeekCell) Validate() error {
	if c.MemberID == "" {
		return errors.New("week cell must be associated with a member")
	}
	if _, err := time.Parse(WeekLabelLayout, c.WeekStart); err != nil {
		return errors.New("week start must be a YYYY-MM-DD date")
	}
	if _, err := hms.Parse(c.Logged); err != nil {
		return err
	}
	return nil
}

// LoggedDuration parses the cell's logged duration text.
// POST: Returns a wrapped hms.ErrInvalidDuration on corrupted text
func (c *WeekCell) LoggedDuration() (hms.Duration, error) {
	return hms.Parse(c.Logged)
}

// NormalizeMetadata canonicalizes free-text metadata for the trail.
// POST: result is trimmed, "N/A" when empty or any casing of "n/a",
// and single-line (line breaks collapse to "; ")
func NormalizeMetadata(s string) string {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "n/a") {
		return "N/A"
	}
	s = strings.ReplaceAll(s, "\r\n", "; ")
	s = strings.ReplaceAll(s, "\r", "; ")
	s = strings.ReplaceAll(s, "\n", "; ")
	return s
}

// TrailEntry renders one audit line for a logged amount.
// POST: metadata appears normalized; elapsed in canonical "H:MM:SS" form
func TrailEntry(elapsed hms.Duration, source, metadata string) string {
	return fmt.Sprintf("Logged %s from %s for: %s", elapsed.Format(), source, NormalizeMetadata(metadata))
}

// CheckinSource tags a trail entry with the check-in it settles.
func CheckinSource(checkIn time.Time) string {
	return "checkin " + checkIn.Format("2006-01-02 15:04:05")
}
