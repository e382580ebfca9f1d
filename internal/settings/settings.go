package settings

import (
	"sort"
	"strconv"
	"strings"

	"github.com/samber/lo"
)

const DefaultWeeklyMinSessions = 3

// Sunday, in the 0=Sunday ... 6=Saturday numbering.
var DefaultRestDays = []int{0}

type Settings struct {
	UserID int `json:"-"`
	// 0=Sunday ... 6=Saturday
	RestDays          []int `json:"rest_days"`
	WeeklyMinSessions int   `json:"weekly_min_sessions"`
}

func Default(userID int) Settings {
	return Settings{
		UserID:            userID,
		RestDays:          append([]int(nil), DefaultRestDays...),
		WeeklyMinSessions: DefaultWeeklyMinSessions,
	}
}

// IsRestDay reports if the weekday (0=Sunday) is a rest day.
func (s Settings) IsRestDay(weekday int) bool {
	return lo.Contains(s.RestDays, weekday)
}

// Normalize drops out of range rest days, sorts and dedups them, and
// replaces invalid values with the defaults.
func (s *Settings) Normalize() {
	s.RestDays = normalizeRestDays(s.RestDays)
	if s.WeeklyMinSessions <= 0 {
		s.WeeklyMinSessions = DefaultWeeklyMinSessions
	}
}

func normalizeRestDays(days []int) []int {
	valid := lo.Uniq(lo.Filter(days, func(d int, _ int) bool {
		return d >= 0 && d <= 6
	}))
	if len(valid) == 0 {
		return append([]int(nil), DefaultRestDays...)
	}
	sort.Ints(valid)
	return valid
}

// ParseRestDays parses a comma separated list of weekdays, e.g. "0,6".
// Unparsable and out of range entries are skipped, an empty result falls back to Sunday.
func ParseRestDays(raw string) []int {
	parts := lo.Map(strings.Split(raw, ","), func(p string, _ int) string {
		return strings.TrimSpace(p)
	})
	days := lo.FilterMap(parts, func(p string, _ int) (int, bool) {
		d, err := strconv.Atoi(p)
		return d, err == nil
	})
	return normalizeRestDays(days)
}

func FormatRestDays(days []int) string {
	return strings.Join(lo.Map(days, func(d int, _ int) string {
		return strconv.Itoa(d)
	}), ",")
}
