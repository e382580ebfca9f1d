package dashboard

import (
	"context"
	"errors"
	"time"

	"github.com/2beens/fittrack/internal/settings"
)

// ErrDataUnavailable is returned when the workout history or the user settings
// could not be read. Callers must not render a zeroed dashboard for it.
var ErrDataUnavailable = errors.New("dashboard data unavailable")

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=dashboard_test

// HistoryReader answers the read queries over the stored workouts of a user.
// All dates are calendar dates, ranges are inclusive on both ends.
type HistoryReader interface {
	CountInRange(ctx context.Context, userID int, start, end time.Time) (int, error)
	VolumeInRange(ctx context.Context, userID int, start, end time.Time) (float64, error)
	ExistsOnDate(ctx context.Context, userID int, date time.Time) (bool, error)
	// MostRecentDate returns nil if the user never logged a workout.
	MostRecentDate(ctx context.Context, userID int) (*time.Time, error)
}

type SettingsReader interface {
	Get(ctx context.Context, userID int) (*settings.Settings, error)
}
