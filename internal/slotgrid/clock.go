package slotgrid

import (
	"fmt"
	"time"
)

const (
	clockLayout    = "15:04"
	civilianLayout = "3:04"
	dateLayout     = "2006-01-02"
)

// ParseClock parses a time-of-day in HH:MM format. The returned time is
// anchored on a fixed reference day so values only differ in their
// time-of-day.
func ParseClock(s string) (time.Time, error) {
	t, err := time.Parse(clockLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: invalid time-of-day %q, expected HH:MM", ErrValidation, s)
	}

	return t, nil
}

func normalizeClock(s string) (string, error) {
	t, err := ParseClock(s)
	if err != nil {
		return "", err
	}

	return t.Format(clockLayout), nil
}

func parseDate(s string) (time.Time, error) {
	d, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: invalid date %q, expected YYYY-MM-DD", ErrValidation, s)
	}

	return d, nil
}
