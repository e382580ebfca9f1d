package musclemap

import (
	"sort"

	"github.com/samber/lo"
)

const (
	ChipAll           = "All"
	ChipYourExercises = "Your exercises"
)

// Tiers are ordered best first.
var Tiers = []string{"S", "A", "B", "C", "D", "E", "F"}

type Muscle struct {
	Slug string `json:"slug"`
	Name string `json:"name"`
}

var Muscles = []Muscle{
	{Slug: "chest", Name: "Chest"},
	{Slug: "back", Name: "Back"},
	{Slug: "shoulders", Name: "Shoulders"},
	{Slug: "biceps", Name: "Biceps"},
	{Slug: "triceps", Name: "Triceps"},
	{Slug: "forearms", Name: "Forearms"},
	{Slug: "abs", Name: "Abs"},
	{Slug: "glutes", Name: "Glutes"},
	{Slug: "quads", Name: "Quads"},
	{Slug: "hamstrings", Name: "Hamstrings"},
	{Slug: "calves", Name: "Calves"},
	{Slug: "traps", Name: "Traps"},
}

type SuggestionGroup struct {
	Name      string
	Exercises []string
}

// suggestionGroups feed the exercise autocomplete, grouped by muscle.
var suggestionGroups = []SuggestionGroup{
	{Name: "Chest", Exercises: []string{"Bench press", "Incline press", "Dips", "Flyes"}},
	{Name: "Back", Exercises: []string{"Pull-ups", "Barbell row", "Lat pulldown", "Dumbbell row"}},
	{Name: "Shoulders", Exercises: []string{"Overhead press", "Lateral raises", "Face pull", "Reverse flyes"}},
	{Name: "Biceps", Exercises: []string{"Barbell curl", "Dumbbell curl", "Hammer curl"}},
	{Name: "Triceps", Exercises: []string{"Dips", "Cable pushdown", "Skull crushers"}},
	{Name: "Legs", Exercises: []string{"Squat", "Leg press", "Romanian deadlift", "Leg curl", "Lunges"}},
	{Name: "Glutes", Exercises: []string{"Hip thrust", "Glute bridge", "Sumo squat"}},
	{Name: "Abs", Exercises: []string{"Plank", "Crunch", "Leg raises"}},
	{Name: "Calves", Exercises: []string{"Calf raises", "Seated calf raise"}},
}

type SuggestionChip struct {
	Name      string   `json:"name"`
	Exercises []string `json:"exercises"`
}

// BuildSuggestions returns the suggestion chips: "All" first, then the
// muscle groups, then the user's own exercises when there are any.
func BuildSuggestions(userExercises []string) []SuggestionChip {
	all := lo.Uniq(lo.FlatMap(suggestionGroups, func(g SuggestionGroup, _ int) []string {
		return g.Exercises
	}))
	sort.Strings(all)

	chips := []SuggestionChip{{Name: ChipAll, Exercises: all}}
	for _, g := range suggestionGroups {
		chips = append(chips, SuggestionChip{
			Name:      g.Name,
			Exercises: append([]string{}, g.Exercises...),
		})
	}

	own := lo.Uniq(lo.Compact(userExercises))
	if len(own) > 0 {
		sort.Strings(own)
		chips = append(chips, SuggestionChip{Name: ChipYourExercises, Exercises: own})
	}

	return chips
}

func IsValidTier(tier string) bool {
	return lo.Contains(Tiers, tier)
}

// KnownMuscle returns the catalog muscle for the slug.
func KnownMuscle(slug string) (Muscle, bool) {
	return lo.Find(Muscles, func(m Muscle) bool {
		return m.Slug == slug
	})
}
