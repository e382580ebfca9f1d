package dashboard

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/2beens/fittrack/internal/settings"
	"github.com/2beens/fittrack/internal/telemetry/tracing"
	"github.com/2beens/fittrack/pkg"

	"go.opentelemetry.io/otel/attribute"
)

// Snapshot holds the derived dashboard metrics of one user for one day.
type Snapshot struct {
	Streak      int     `json:"streak"`
	Sessions7d  int     `json:"sessions_7d"`
	Volume7d    float64 `json:"volume_7d"`
	TrendLabel  string  `json:"trend_label"`
	TrendPct    int     `json:"trend_pct"`
	LastLabel   string  `json:"last_label"`
	DayChip     string  `json:"day_chip"`
	ActionTitle string  `json:"action_title"`
	ActionSub   string  `json:"action_sub"`
	NextStep    string  `json:"next_step"`
	NextStepSub string  `json:"next_step_sub"`
}

type ServiceParams struct {
	// MaxLookbackDays bounds the streak scan, DefaultMaxLookbackDays when not set.
	MaxLookbackDays int
}

type Service struct {
	history         HistoryReader
	settings        SettingsReader
	maxLookbackDays int
}

func NewService(history HistoryReader, settingsReader SettingsReader, params ServiceParams) *Service {
	maxLookbackDays := params.MaxLookbackDays
	if maxLookbackDays <= 0 {
		maxLookbackDays = DefaultMaxLookbackDays
	}
	return &Service{
		history:         history,
		settings:        settingsReader,
		maxLookbackDays: maxLookbackDays,
	}
}

func unavailable(what string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrDataUnavailable, what, err)
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// Snapshot computes the dashboard metrics of the user as of today.
// Any failed read fails the whole snapshot with ErrDataUnavailable.
func (s *Service) Snapshot(ctx context.Context, userID int, today time.Time) (_ *Snapshot, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "dashboard.snapshot")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("user.id", userID))

	today = pkg.DayStart(today)

	userSettings, err := s.settings.Get(ctx, userID)
	if err != nil {
		return nil, unavailable("settings", err)
	}
	if userSettings == nil {
		def := settings.Default(userID)
		userSettings = &def
	}
	userSettings.Normalize()

	weekStart := today.AddDate(0, 0, -6)
	prevWeekEnd := today.AddDate(0, 0, -7)
	prevWeekStart := today.AddDate(0, 0, -13)

	sessions7d, err := s.history.CountInRange(ctx, userID, weekStart, today)
	if err != nil {
		return nil, unavailable("sessions in last 7 days", err)
	}

	volume7d, err := s.history.VolumeInRange(ctx, userID, weekStart, today)
	if err != nil {
		return nil, unavailable("volume in last 7 days", err)
	}

	volumePrev7d, err := s.history.VolumeInRange(ctx, userID, prevWeekStart, prevWeekEnd)
	if err != nil {
		return nil, unavailable("volume in previous 7 days", err)
	}

	streak, err := Streak(ctx, s.history, userID, userSettings.RestDays, today, s.maxLookbackDays)
	if err != nil {
		return nil, unavailable("streak", err)
	}

	lastDate, err := s.history.MostRecentDate(ctx, userID)
	if err != nil {
		return nil, unavailable("most recent workout", err)
	}

	trend := ClassifyTrend(volume7d, volumePrev7d)
	dayType := ResolveDayType(Weekday(today), userSettings.RestDays)
	goal := EvaluateWeeklyGoal(sessions7d, userSettings.WeeklyMinSessions)

	return &Snapshot{
		Streak:      streak,
		Sessions7d:  sessions7d,
		Volume7d:    round1(max(volume7d, 0)),
		TrendLabel:  trend.Label,
		TrendPct:    trend.Pct,
		LastLabel:   RecencyLabel(lastDate, today),
		DayChip:     dayType.Chip,
		ActionTitle: dayType.ActionTitle,
		ActionSub:   dayType.ActionSub,
		NextStep:    goal.Status,
		NextStepSub: goal.Detail,
	}, nil
}
