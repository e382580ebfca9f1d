package workouts

import (
	"encoding/json"
	"math"
	"strings"
	"time"

	"github.com/2beens/fittrack/pkg"
)

const DefaultRoutine = "Free"

type Workout struct {
	ID          int       `json:"id"`
	UserID      int       `json:"-"`
	Date        time.Time `json:"date"`
	Routine     string    `json:"routine"`
	DurationMin int       `json:"duration_min"`
	Note        string    `json:"note"`
	Sets        []Set     `json:"sets,omitempty"`
}

// MarshalJSON renders the workout date as a plain YYYY-MM-DD.
func (w Workout) MarshalJSON() ([]byte, error) {
	type alias Workout
	return json.Marshal(struct {
		alias
		Date string `json:"date"`
	}{
		alias: alias(w),
		Date:  pkg.FormatDate(w.Date),
	})
}

func (w *Workout) UnmarshalJSON(data []byte) error {
	type alias Workout
	aux := struct {
		*alias
		Date string `json:"date"`
	}{
		alias: (*alias)(w),
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if aux.Date == "" {
		w.Date = time.Time{}
		return nil
	}
	date, err := pkg.ParseDate(aux.Date)
	if err != nil {
		return err
	}
	w.Date = date
	return nil
}

// Volume is the summed volume of all the workout sets.
func (w Workout) Volume() float64 {
	var total float64
	for _, s := range w.Sets {
		total += s.Volume()
	}
	return total
}

type Set struct {
	ID        int     `json:"-"`
	WorkoutID int     `json:"-"`
	Exercise  string  `json:"exercise"`
	Sets      int     `json:"sets"`
	Reps      int     `json:"reps"`
	Weight    float64 `json:"weight"`
	Note      string  `json:"note"`
}

// Volume is weight x reps x sets, with stored garbage coerced:
// sets below 1 count as 1, negative reps and weight count as 0.
func (s Set) Volume() float64 {
	sets := s.Sets
	if sets < 1 {
		sets = 1
	}
	reps := max(s.Reps, 0)
	weight := s.Weight
	if weight < 0 || math.IsNaN(weight) || math.IsInf(weight, 0) {
		weight = 0
	}
	return weight * float64(reps) * float64(sets)
}

// Normalize trims the text fields and coerces the numbers into their valid ranges.
func (s *Set) Normalize() {
	s.Exercise = strings.TrimSpace(s.Exercise)
	s.Note = strings.TrimSpace(s.Note)
	if s.Sets < 1 {
		s.Sets = 1
	}
	if s.Reps < 0 {
		s.Reps = 0
	}
	if s.Weight < 0 || math.IsNaN(s.Weight) || math.IsInf(s.Weight, 0) {
		s.Weight = 0
	}
}

// ExerciseSummary aggregates all the sets a user logged for one exercise.
type ExerciseSummary struct {
	Exercise  string    `json:"exercise"`
	LastDate  time.Time `json:"-"`
	MaxWeight float64   `json:"max_weight"`
	Est1RM    float64   `json:"est_1rm"`
	Volume    float64   `json:"volume"`
}

func (e ExerciseSummary) MarshalJSON() ([]byte, error) {
	type alias ExerciseSummary
	return json.Marshal(struct {
		alias
		LastDate string `json:"last_date"`
	}{
		alias:    alias(e),
		LastDate: pkg.FormatDate(e.LastDate),
	})
}

// Epley estimation of the one repetition max.
func Est1RM(weight float64, reps int) float64 {
	return weight * (1 + float64(reps)/30)
}

func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}
