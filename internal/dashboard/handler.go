package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/2beens/fittrack/internal/auth"
	"github.com/2beens/fittrack/internal/telemetry/metrics"
	"github.com/2beens/fittrack/internal/telemetry/tracing"
	"github.com/2beens/fittrack/internal/workouts"
	"github.com/2beens/fittrack/pkg"

	log "github.com/sirupsen/logrus"
)

const RecentActivityLimit = 6

type snapshotter interface {
	Snapshot(ctx context.Context, userID int, today time.Time) (*Snapshot, error)
}

type activityReader interface {
	Recent(ctx context.Context, userID, limit int) ([]workouts.Workout, error)
}

type notesReader interface {
	ForUser(ctx context.Context, userID int) ([]string, error)
}

type Response struct {
	Date     string             `json:"date"`
	Snapshot *Snapshot          `json:"snapshot"`
	Notes    []string           `json:"notes"`
	Activity []workouts.Workout `json:"activity"`
}

type Handler struct {
	service        snapshotter
	activity       activityReader
	notes          notesReader
	metricsManager *metrics.Manager
	location       *time.Location
}

func NewHandler(
	service snapshotter,
	activity activityReader,
	notes notesReader,
	metricsManager *metrics.Manager,
	location *time.Location,
) *Handler {
	return &Handler{
		service:        service,
		activity:       activity,
		notes:          notes,
		metricsManager: metricsManager,
		location:       location,
	}
}

// HandleGet renders the dashboard of the logged user. The day defaults to
// today in the service time zone and can be overridden with ?date=YYYY-MM-DD.
func (handler *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.dashboard.get")
	defer span.End()

	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	today := pkg.Today(handler.location)
	if dateParam := r.URL.Query().Get("date"); dateParam != "" {
		d, err := pkg.ParseDate(dateParam)
		if err != nil {
			http.Error(w, "error, invalid date", http.StatusBadRequest)
			return
		}
		today = d
	}

	start := time.Now()
	snapshot, err := handler.service.Snapshot(ctx, userID, today)
	handler.metricsManager.HistogramSnapshotDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		handler.metricsManager.CounterDashboardFailures.Inc()
		log.Errorf("failed to compute dashboard for user %d: %s", userID, err)
		if errors.Is(err, ErrDataUnavailable) {
			http.Error(w, "error, dashboard data unavailable", http.StatusServiceUnavailable)
			return
		}
		http.Error(w, "error, failed to get dashboard", http.StatusInternalServerError)
		return
	}

	activity, err := handler.activity.Recent(ctx, userID, RecentActivityLimit)
	if err != nil {
		handler.metricsManager.CounterDashboardFailures.Inc()
		log.Errorf("failed to get recent activity for user %d: %s", userID, err)
		http.Error(w, "error, dashboard data unavailable", http.StatusServiceUnavailable)
		return
	}

	notes, err := handler.notes.ForUser(ctx, userID)
	if err != nil {
		handler.metricsManager.CounterDashboardFailures.Inc()
		log.Errorf("failed to get notes for user %d: %s", userID, err)
		http.Error(w, "error, dashboard data unavailable", http.StatusServiceUnavailable)
		return
	}

	if activity == nil {
		activity = []workouts.Workout{}
	}
	if notes == nil {
		notes = []string{}
	}

	respJson, err := json.Marshal(Response{
		Date:     pkg.FormatDate(today),
		Snapshot: snapshot,
		Notes:    notes,
		Activity: activity,
	})
	if err != nil {
		log.Errorf("failed to marshal dashboard response: %s", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, respJson, http.StatusOK)
}
