package hms

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Duration is a signed elapsed-time amount in whole milliseconds.
// All ledger arithmetic happens on this type; no floating point.
type Duration int64

// Unit constants in milliseconds.
const (
	Second Duration = 1000
	Minute          = 60 * Second
	Hour            = 60 * Minute
)

// ErrInvalidDuration reports text that does not parse as "H:M:S".
var ErrInvalidDuration = errors.New("invalid duration")

// Parse converts "H:M:S" text into a Duration. Hours are unbounded,
// minutes and seconds are plain numeric components, and an optional
// leading "-" negates the whole value.
// POST: returns a wrapped ErrInvalidDuration if the text does not have
// exactly three components or any component is non-numeric.
func Parse(text string) (Duration, error) {
	s := strings.TrimSpace(text)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidDuration, text)
	}
	var units [3]int64
	for i, p := range parts {
		v, err := strconv.ParseUint(p, 10, 32)
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrInvalidDuration, text)
		}
		units[i] = int64(v)
	}
	d := Duration(units[0])*Hour + Duration(units[1])*Minute + Duration(units[2])*Second
	if neg {
		d = -d
	}
	return d, nil
}

// Format renders the duration as "H:MM:SS": unpadded hours, zero-padded
// minutes and seconds, leading "-" when negative. Sub-second remainders
// are truncated.
// POST: Parse(d.Format()) == d for whole-second durations.
func (d Duration) Format() string {
	sign, h, m, s := d.split()
	return fmt.Sprintf("%s%d:%02d:%02d", sign, h, m, s)
}

// FormatPadded renders the duration as "HH:MM:SS" with hours padded to
// two digits. Report surfaces (missed hours) use this form; Parse
// accepts both.
func (d Duration) FormatPadded() string {
	sign, h, m, s := d.split()
	return fmt.Sprintf("%s%02d:%02d:%02d", sign, h, m, s)
}

func (d Duration) split() (sign string, h, m, s int64) {
	v := int64(d)
	if v < 0 {
		sign = "-"
		v = -v
	}
	total := v / int64(Second)
	return sign, total / 3600, (total % 3600) / 60, total % 60
}

// FromStd converts a time.Duration, truncating to whole milliseconds.
func FromStd(d time.Duration) Duration {
	return Duration(d.Milliseconds())
}

// Std converts the duration to a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d) * time.Millisecond
}

// IsNegative reports whether the duration is below zero.
func (d Duration) IsNegative() bool {
	return d < 0
}
