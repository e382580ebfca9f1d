package pkg

import (
	"fmt"
	"time"
)

const DateLayout = "2006-01-02"

// DayStart truncates t to midnight UTC of its calendar day in t's location.
// All workout dates are handled as UTC midnights so day arithmetic never
// crosses a DST boundary.
func DayStart(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD string into a UTC midnight.
func ParseDate(s string) (time.Time, error) {
	d, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date [%s]: %w", s, err)
	}
	return d, nil
}

func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// DaysBetween returns the whole calendar days from `from` to `to`.
func DaysBetween(from, to time.Time) int {
	return int(DayStart(to).Sub(DayStart(from)).Hours() / 24)
}

// Today is the current calendar date in the given location, as a UTC midnight.
func Today(loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	return DayStart(time.Now().In(loc))
}
