package dashboard

import (
	"fmt"

	"github.com/2beens/fittrack/internal/settings"
)

const (
	GoalMaintain     = "Maintain"
	GoalCompleteWeek = "Complete week"
)

type WeeklyGoal struct {
	Status  string `json:"status"`
	Detail  string `json:"detail"`
	Deficit int    `json:"deficit"`
}

func EvaluateWeeklyGoal(sessions7d, weeklyMin int) WeeklyGoal {
	if weeklyMin <= 0 {
		weeklyMin = settings.DefaultWeeklyMinSessions
	}

	if sessions7d >= weeklyMin {
		return WeeklyGoal{
			Status: GoalMaintain,
			Detail: "You're on track this week.",
		}
	}

	deficit := weeklyMin - sessions7d
	detail := fmt.Sprintf("%d more sessions to reach your goal.", deficit)
	if deficit == 1 {
		detail = "1 more session to reach your goal."
	}
	return WeeklyGoal{
		Status:  GoalCompleteWeek,
		Detail:  detail,
		Deficit: deficit,
	}
}
