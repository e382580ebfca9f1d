package dashboard

import "github.com/samber/lo"

const (
	ChipRest     = "Rest"
	ChipTraining = "Training"
)

type DayType struct {
	Chip        string `json:"chip"`
	ActionTitle string `json:"action_title"`
	ActionSub   string `json:"action_sub"`
}

// ResolveDayType picks the call to action for the Sunday-indexed weekday.
func ResolveDayType(weekday int, restDays []int) DayType {
	if lo.Contains(restDays, weekday) {
		return DayType{
			Chip:        ChipRest,
			ActionTitle: "Recover",
			ActionSub:   "Rest day today. Stretch and sleep well.",
		}
	}
	return DayType{
		Chip:        ChipTraining,
		ActionTitle: "Train",
		ActionSub:   "Do a short, clean session.",
	}
}
