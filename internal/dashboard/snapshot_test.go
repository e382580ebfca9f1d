package dashboard_test

import (
	"context"
	"errors"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2beens/fittrack/internal/dashboard"
	"github.com/2beens/fittrack/internal/settings"
	"github.com/2beens/fittrack/internal/workouts"
)

func squat(sets, reps int, weight float64) workouts.Set {
	return workouts.Set{Exercise: "Squat", Sets: sets, Reps: reps, Weight: weight}
}

func TestService_Snapshot(t *testing.T) {
	history := workouts.NewTestRepo()
	settingsRepo := settings.NewTestRepo()
	service := dashboard.NewService(history, settingsRepo, dashboard.ServiceParams{})

	// current week [7, 13]: 1500 + 1000 + 500
	history.Log(1, day(13), squat(3, 10, 50))
	history.Log(1, day(12), squat(2, 10, 50))
	history.Log(1, day(11), squat(1, 10, 50))
	// previous week [feb 29, 6]
	history.Log(1, day(5), squat(4, 10, 60))

	snapshot, err := service.Snapshot(context.Background(), 1, day(13))
	require.NoError(t, err)
	require.NotNil(t, snapshot)

	assert.Equal(t, &dashboard.Snapshot{
		// 13, 12, 11, sunday 10 is a rest day, saturday 9 breaks
		Streak:      4,
		Sessions7d:  3,
		Volume7d:    3000,
		TrendLabel:  dashboard.TrendRising,
		TrendPct:    25,
		LastLabel:   "Today",
		DayChip:     dashboard.ChipTraining,
		ActionTitle: "Train",
		ActionSub:   "Do a short, clean session.",
		NextStep:    dashboard.GoalMaintain,
		NextStepSub: "You're on track this week.",
	}, snapshot)
}

func TestService_Snapshot_NewUser(t *testing.T) {
	service := dashboard.NewService(workouts.NewTestRepo(), settings.NewTestRepo(), dashboard.ServiceParams{})

	// sunday, default rest day
	snapshot, err := service.Snapshot(context.Background(), 1, day(10))
	require.NoError(t, err)

	assert.Equal(t, 1, snapshot.Streak)
	assert.Zero(t, snapshot.Sessions7d)
	assert.Zero(t, snapshot.Volume7d)
	assert.Equal(t, dashboard.TrendNoData, snapshot.TrendLabel)
	assert.Zero(t, snapshot.TrendPct)
	assert.Equal(t, dashboard.NotYetLogged, snapshot.LastLabel)
	assert.Equal(t, dashboard.ChipRest, snapshot.DayChip)
	assert.Equal(t, "Recover", snapshot.ActionTitle)
	assert.Equal(t, dashboard.GoalCompleteWeek, snapshot.NextStep)
	assert.Equal(t, "3 more sessions to reach your goal.", snapshot.NextStepSub)
}

func TestService_Snapshot_WindowsAndRecency(t *testing.T) {
	history := workouts.NewTestRepo()
	settingsRepo := settings.NewTestRepo()
	require.NoError(t, settingsRepo.Update(context.Background(), settings.Settings{
		UserID:            1,
		RestDays:          []int{3},
		WeeklyMinSessions: 2,
	}))
	service := dashboard.NewService(history, settingsRepo, dashboard.ServiceParams{})

	// first day of the current window and last day of the previous one
	history.Log(1, day(7), squat(1, 10, 100))
	history.Log(1, day(6), squat(1, 10, 100))
	// one day before the previous window starts, 2024-02-28
	history.Log(1, day(-1), squat(1, 10, 1000))

	snapshot, err := service.Snapshot(context.Background(), 1, day(13))
	require.NoError(t, err)

	assert.Equal(t, 1, snapshot.Sessions7d)
	assert.Equal(t, 1000.0, snapshot.Volume7d)
	assert.Equal(t, dashboard.TrendStable, snapshot.TrendLabel)
	assert.Zero(t, snapshot.TrendPct)
	assert.Equal(t, "6 days ago", snapshot.LastLabel)
	// wednesday is the configured rest day, tuesday 12 breaks
	assert.Equal(t, 1, snapshot.Streak)
	assert.Equal(t, dashboard.ChipRest, snapshot.DayChip)
	assert.Equal(t, dashboard.GoalCompleteWeek, snapshot.NextStep)
	assert.Equal(t, "1 more session to reach your goal.", snapshot.NextStepSub)

	snapshot, err = service.Snapshot(context.Background(), 1, day(8))
	require.NoError(t, err)
	assert.Equal(t, "1 day ago", snapshot.LastLabel)
}

func TestService_Snapshot_VolumeRounding(t *testing.T) {
	history := workouts.NewTestRepo()
	service := dashboard.NewService(history, settings.NewTestRepo(), dashboard.ServiceParams{})

	history.Log(1, day(13), squat(1, 1, 33.33))
	// sets stored as zero count once
	history.Log(1, day(13), squat(0, 10, 50))

	snapshot, err := service.Snapshot(context.Background(), 1, day(13))
	require.NoError(t, err)
	assert.Equal(t, 533.3, snapshot.Volume7d)
}

func TestService_Snapshot_Idempotent(t *testing.T) {
	history := workouts.NewTestRepo()
	service := dashboard.NewService(history, settings.NewTestRepo(), dashboard.ServiceParams{})
	for d := 1; d <= 13; d += 2 {
		history.Log(1, day(d), squat(3, 8, float64(40+d)))
	}

	first, err := service.Snapshot(context.Background(), 1, day(13))
	require.NoError(t, err)
	second, err := service.Snapshot(context.Background(), 1, day(13))
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestService_Snapshot_MalformedSettingsAreDefaulted(t *testing.T) {
	history := workouts.NewTestRepo()
	settingsRepo := settings.NewTestRepo()
	settingsRepo.Set(settings.Settings{UserID: 1, RestDays: []int{9, -1}, WeeklyMinSessions: 0})
	service := dashboard.NewService(history, settingsRepo, dashboard.ServiceParams{})

	snapshot, err := service.Snapshot(context.Background(), 1, day(10))
	require.NoError(t, err)
	assert.Equal(t, dashboard.ChipRest, snapshot.DayChip)
	assert.Equal(t, "3 more sessions to reach your goal.", snapshot.NextStepSub)
}

func TestService_Snapshot_NilSettingsAreDefaulted(t *testing.T) {
	ctrl := gomock.NewController(t)
	settingsMock := NewMockSettingsReader(ctrl)
	settingsMock.EXPECT().Get(gomock.Any(), 1).Return(nil, nil)
	service := dashboard.NewService(workouts.NewTestRepo(), settingsMock, dashboard.ServiceParams{})

	snapshot, err := service.Snapshot(context.Background(), 1, day(10))
	require.NoError(t, err)
	assert.Equal(t, dashboard.ChipRest, snapshot.DayChip)
}

func TestService_Snapshot_MaxLookback(t *testing.T) {
	settingsRepo := settings.NewTestRepo()
	require.NoError(t, settingsRepo.Update(context.Background(), settings.Settings{
		UserID:            1,
		RestDays:          []int{0, 1, 2, 3, 4, 5, 6},
		WeeklyMinSessions: 3,
	}))
	service := dashboard.NewService(workouts.NewTestRepo(), settingsRepo, dashboard.ServiceParams{
		MaxLookbackDays: 21,
	})

	snapshot, err := service.Snapshot(context.Background(), 1, day(13))
	require.NoError(t, err)
	assert.Equal(t, 21, snapshot.Streak)
}

func TestService_Snapshot_HistoryUnavailable(t *testing.T) {
	history := workouts.NewTestRepo()
	history.Log(1, day(13))
	dbErr := errors.New("connection refused")
	history.Err = dbErr
	service := dashboard.NewService(history, settings.NewTestRepo(), dashboard.ServiceParams{})

	snapshot, err := service.Snapshot(context.Background(), 1, day(13))
	assert.Nil(t, snapshot)
	assert.ErrorIs(t, err, dashboard.ErrDataUnavailable)
	assert.ErrorIs(t, err, dbErr)
}

func TestService_Snapshot_SettingsUnavailable(t *testing.T) {
	ctrl := gomock.NewController(t)
	historyMock := NewMockHistoryReader(ctrl)
	settingsMock := NewMockSettingsReader(ctrl)
	service := dashboard.NewService(historyMock, settingsMock, dashboard.ServiceParams{})

	settingsMock.EXPECT().Get(gomock.Any(), 1).Return(nil, errors.New("timeout"))

	snapshot, err := service.Snapshot(context.Background(), 1, day(13))
	assert.Nil(t, snapshot)
	assert.ErrorIs(t, err, dashboard.ErrDataUnavailable)
}

// A failure in any of the reads fails the whole snapshot.
func TestService_Snapshot_NoPartialSnapshots(t *testing.T) {
	dbErr := errors.New("connection reset")
	for _, failing := range []string{"CountInRange", "VolumeInRange", "ExistsOnDate", "MostRecentDate"} {
		t.Run(failing, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			historyMock := NewMockHistoryReader(ctrl)
			settingsRepo := settings.NewTestRepo()
			service := dashboard.NewService(historyMock, settingsRepo, dashboard.ServiceParams{})

			errFor := func(method string) error {
				if method == failing {
					return dbErr
				}
				return nil
			}
			historyMock.EXPECT().CountInRange(gomock.Any(), 1, gomock.Any(), gomock.Any()).
				Return(2, errFor("CountInRange")).AnyTimes()
			historyMock.EXPECT().VolumeInRange(gomock.Any(), 1, gomock.Any(), gomock.Any()).
				Return(100.0, errFor("VolumeInRange")).AnyTimes()
			historyMock.EXPECT().ExistsOnDate(gomock.Any(), 1, gomock.Any()).
				Return(false, errFor("ExistsOnDate")).AnyTimes()
			last := day(12)
			historyMock.EXPECT().MostRecentDate(gomock.Any(), 1).
				Return(&last, errFor("MostRecentDate")).AnyTimes()

			snapshot, err := service.Snapshot(context.Background(), 1, day(13))
			assert.Nil(t, snapshot)
			assert.ErrorIs(t, err, dashboard.ErrDataUnavailable)
			assert.ErrorIs(t, err, dbErr)
		})
	}
}

func TestService_Snapshot_ReadsTheExpectedWindows(t *testing.T) {
	ctrl := gomock.NewController(t)
	historyMock := NewMockHistoryReader(ctrl)
	service := dashboard.NewService(historyMock, settings.NewTestRepo(), dashboard.ServiceParams{})

	historyMock.EXPECT().CountInRange(gomock.Any(), 1, day(7), day(13)).Return(1, nil)
	historyMock.EXPECT().VolumeInRange(gomock.Any(), 1, day(7), day(13)).Return(80.0, nil)
	historyMock.EXPECT().VolumeInRange(gomock.Any(), 1, day(0), day(6)).Return(100.0, nil)
	historyMock.EXPECT().ExistsOnDate(gomock.Any(), 1, day(13)).Return(true, nil)
	historyMock.EXPECT().ExistsOnDate(gomock.Any(), 1, day(12)).Return(false, nil)
	last := day(13)
	historyMock.EXPECT().MostRecentDate(gomock.Any(), 1).Return(&last, nil)

	snapshot, err := service.Snapshot(context.Background(), 1, day(13))
	require.NoError(t, err)
	assert.Equal(t, dashboard.TrendFalling, snapshot.TrendLabel)
	assert.Equal(t, -20, snapshot.TrendPct)
	assert.Equal(t, 1, snapshot.Streak)
}
