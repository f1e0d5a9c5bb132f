package slot

import (
	"fmt"
	"time"

	"gaming-cafe-booking/pkg/apperror"
)

const (
	dateLayout = "2006-01-02"

	// MinutesPerDay is also the minute value of the "24:00" end-of-day clock
	MinutesPerDay = 24 * 60
)

var (
	ErrInvalidDate  = apperror.Validation("booking date must be YYYY-MM-DD")
	ErrInvalidClock = apperror.Validation("time must be HH:MM on a 24h scale")
	ErrEmptyWindow  = apperror.Validation("start time must be before end time")
)

// ParseClock converts "HH:MM" into minutes since midnight. "24:00" is
// accepted and yields MinutesPerDay.
func ParseClock(s string) (int, error) {
	if len(s) != 5 || s[2] != ':' {
		return 0, ErrInvalidClock
	}
	if s == "24:00" {
		return MinutesPerDay, nil
	}
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, ErrInvalidClock
	}
	return t.Hour()*60 + t.Minute(), nil
}

func FormatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// ParseDate checks a cafe-local calendar date. The string itself is kept as
// the canonical form; no time zone conversion is done.
func ParseDate(s string) (string, error) {
	if len(s) != len(dateLayout) {
		return "", ErrInvalidDate
	}
	if _, err := time.Parse(dateLayout, s); err != nil {
		return "", ErrInvalidDate
	}
	return s, nil
}

// Window is a half-open interval [Start, End) in minutes since midnight.
type Window struct {
	Start int
	End   int
}

func NewWindow(start, end string) (Window, error) {
	s, err := ParseClock(start)
	if err != nil {
		return Window{}, err
	}
	e, err := ParseClock(end)
	if err != nil {
		return Window{}, err
	}
	if s >= e {
		return Window{}, ErrEmptyWindow
	}
	return Window{Start: s, End: e}, nil
}

func (w Window) Minutes() int {
	return w.End - w.Start
}

// Overlaps reports whether the two windows share any instant.
// Back-to-back windows (one ends when the other starts) do not overlap.
func (w Window) Overlaps(other Window) bool {
	return w.Start < other.End && other.Start < w.End
}

// Within reports whether w lies entirely inside outer.
func (w Window) Within(outer Window) bool {
	return w.Start >= outer.Start && w.End <= outer.End
}

func (w Window) String() string {
	return FormatClock(w.Start) + "-" + FormatClock(w.End)
}
