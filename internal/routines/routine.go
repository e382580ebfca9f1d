package routines

import (
	"errors"
	"strings"
	"time"

	"github.com/2beens/fittrack/internal/dashboard"

	"github.com/samber/lo"
)

var (
	ErrRoutineNotFound = errors.New("routine not found")
	ErrEmptyName       = errors.New("routine name is empty")
	ErrNoRestDays      = errors.New("routine has no rest days")
)

// WeekdayLabels are the accepted train/rest day labels, Monday first.
var WeekdayLabels = []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

type Day struct {
	Label     string   `json:"label"`
	Exercises []string `json:"exercises"`
}

type Routine struct {
	ID        int       `json:"id"`
	UserID    int       `json:"-"`
	Name      string    `json:"name"`
	TrainDays []string  `json:"train_days"`
	RestDays  []string  `json:"rest_days"`
	Days      []Day     `json:"days"`
	CreatedAt time.Time `json:"created_at"`
}

// Template is a recommended routine, users copy it into their own routines.
type Template struct {
	Name      string   `json:"name"`
	Tagline   string   `json:"tagline"`
	TrainDays []string `json:"train_days"`
	RestDays  []string `json:"rest_days"`
	Days      []Day    `json:"days"`
}

var Recommended = []Template{
	{
		Name:      "Full Body 3 days",
		Tagline:   "Basic and effective to get started.",
		TrainDays: []string{"Mon", "Wed", "Fri"},
		RestDays:  []string{"Tue", "Thu", "Sat", "Sun"},
		Days: []Day{
			{Label: "Day A", Exercises: []string{"Squat", "Bench press", "Barbell row", "Plank"}},
			{Label: "Day B", Exercises: []string{"Deadlift", "Overhead press", "Pull-ups", "Abs"}},
			{Label: "Day C", Exercises: []string{"Leg press", "Dips", "Dumbbell row", "Calves"}},
		},
	},
	{
		Name:      "Upper/Lower 4 days",
		Tagline:   "Balanced strength and volume.",
		TrainDays: []string{"Mon", "Tue", "Thu", "Fri"},
		RestDays:  []string{"Wed", "Sat", "Sun"},
		Days: []Day{
			{Label: "Upper 1", Exercises: []string{"Bench press", "Barbell row", "Overhead press", "Biceps curl"}},
			{Label: "Lower 1", Exercises: []string{"Squat", "Leg curl", "Calves", "Abs"}},
			{Label: "Upper 2", Exercises: []string{"Incline press", "Pull-ups", "Lateral raises", "Triceps"}},
			{Label: "Lower 2", Exercises: []string{"Romanian deadlift", "Leg press", "Lunges", "Glutes"}},
		},
	},
	{
		Name:      "Push/Pull/Legs 6 days",
		Tagline:   "For high frequency.",
		TrainDays: []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat"},
		RestDays:  []string{"Sun"},
		Days: []Day{
			{Label: "Push 1", Exercises: []string{"Bench press", "Overhead press", "Dips", "Triceps"}},
			{Label: "Pull 1", Exercises: []string{"Pull-ups", "Barbell row", "Biceps curl", "Face pull"}},
			{Label: "Legs 1", Exercises: []string{"Squat", "Leg press", "Calves", "Abs"}},
			{Label: "Push 2", Exercises: []string{"Incline press", "Flyes", "Lateral raises"}},
			{Label: "Pull 2", Exercises: []string{"Dumbbell row", "Lat pulldown", "Hammer curl"}},
			{Label: "Legs 2", Exercises: []string{"Romanian deadlift", "Lunges", "Glutes"}},
		},
	},
}

// ISOIndex maps a weekday label to Monday=0..Sunday=6, -1 when unknown.
func ISOIndex(label string) int {
	return lo.IndexOf(WeekdayLabels, label)
}

func normalizeDayLabels(labels []string) []string {
	valid := lo.Uniq(lo.Filter(labels, func(l string, _ int) bool {
		return ISOIndex(l) >= 0
	}))
	// keep the Monday first order
	return lo.Filter(WeekdayLabels, func(l string, _ int) bool {
		return lo.Contains(valid, l)
	})
}

// Normalize trims the routine, drops unknown weekday labels and empty days.
func (r *Routine) Normalize() error {
	r.Name = strings.TrimSpace(r.Name)
	if r.Name == "" {
		return ErrEmptyName
	}
	r.TrainDays = normalizeDayLabels(r.TrainDays)
	r.RestDays = normalizeDayLabels(r.RestDays)

	days := make([]Day, 0, len(r.Days))
	for _, d := range r.Days {
		label := strings.TrimSpace(d.Label)
		if label == "" {
			continue
		}
		exercises := lo.FilterMap(d.Exercises, func(e string, _ int) (string, bool) {
			e = strings.TrimSpace(e)
			return e, e != ""
		})
		days = append(days, Day{Label: label, Exercises: exercises})
	}
	r.Days = days
	return nil
}

// RestWeekdays converts the rest day labels into Sunday-indexed weekdays.
func (r Routine) RestWeekdays() []int {
	return lo.FilterMap(r.RestDays, func(label string, _ int) (int, bool) {
		weekday := dashboard.FromISOWeekday(ISOIndex(label))
		return weekday, weekday >= 0
	})
}

func joinDays(labels []string) string {
	return strings.Join(labels, ",")
}

func splitDays(raw string) []string {
	return normalizeDayLabels(strings.Split(raw, ","))
}
