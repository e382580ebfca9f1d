package dashboard

import "time"

// FromISOWeekday converts a Monday=0..Sunday=6 weekday into the
// Sunday=0..Saturday=6 numbering used by the rest days.
// Returns -1 for values out of range.
func FromISOWeekday(iso int) int {
	if iso < 0 || iso > 6 {
		return -1
	}
	return (iso + 1) % 7
}

// ISOWeekday is the Monday=0..Sunday=6 weekday of the date.
func ISOWeekday(date time.Time) int {
	return (int(date.Weekday()) + 6) % 7
}

// Weekday is the Sunday-indexed weekday of the date.
func Weekday(date time.Time) int {
	return FromISOWeekday(ISOWeekday(date))
}
