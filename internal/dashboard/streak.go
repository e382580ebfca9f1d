package dashboard

import (
	"context"
	"time"

	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"
)

const DefaultMaxLookbackDays = 3 * 365

// Streak counts the consecutive days, going back from today, on which the user
// either trained or had a scheduled rest day. The scan stops after maxLookbackDays
// days, and the count reached so far is returned.
func Streak(
	ctx context.Context,
	history HistoryReader,
	userID int,
	restDays []int,
	today time.Time,
	maxLookbackDays int,
) (int, error) {
	if maxLookbackDays <= 0 {
		maxLookbackDays = DefaultMaxLookbackDays
	}

	// one ExistsOnDate read per scanned non-rest day, so a long streak costs
	// up to maxLookbackDays round trips
	streak, scanned, reads := 0, 0, 0
	day := today
	for streak < maxLookbackDays {
		scanned++
		// rest days never break the streak, no need to look at the history
		if !lo.Contains(restDays, Weekday(day)) {
			reads++
			trained, err := history.ExistsOnDate(ctx, userID, day)
			if err != nil {
				return 0, err
			}
			if !trained {
				break
			}
		}
		streak++
		day = day.AddDate(0, 0, -1)
	}

	log.Debugf("streak: user %d, streak %d, scanned days %d, history reads %d", userID, streak, scanned, reads)

	return streak, nil
}
