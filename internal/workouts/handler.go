package workouts

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/2beens/fittrack/internal/auth"
	"github.com/2beens/fittrack/internal/telemetry/metrics"
	"github.com/2beens/fittrack/internal/telemetry/tracing"
	"github.com/2beens/fittrack/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

// how many workouts (with their sets) the progress page shows
const ProgressWorkoutsLimit = 12

//go:generate mockgen -source=$GOFILE -destination=workouts_mocks_test.go -package=workouts_test

type workoutsRepo interface {
	Add(ctx context.Context, workout Workout) (*Workout, error)
	ListWithSets(ctx context.Context, userID, limit int) ([]Workout, error)
	ExerciseSummaries(ctx context.Context, userID int) ([]ExerciseSummary, error)
	Delete(ctx context.Context, userID, id int) error
}

type AddWorkoutRequest struct {
	// YYYY-MM-DD, today when empty
	Date        string `json:"date"`
	Routine     string `json:"routine"`
	DurationMin int    `json:"duration_min"`
	Note        string `json:"note"`
	Sets        []Set  `json:"sets"`
}

type ProgressResponse struct {
	Workouts  []Workout         `json:"workouts"`
	Exercises []ExerciseSummary `json:"exercises"`
}

type DeleteWorkoutResponse struct {
	DeletedID int `json:"deleted_id"`
}

type Handler struct {
	repo           workoutsRepo
	metricsManager *metrics.Manager
	location       *time.Location
}

func NewHandler(repo workoutsRepo, metricsManager *metrics.Manager, location *time.Location) *Handler {
	return &Handler{
		repo:           repo,
		metricsManager: metricsManager,
		location:       location,
	}
}

// workoutFromRequest drops the rows without an exercise name and normalizes the rest.
func workoutFromRequest(userID int, req AddWorkoutRequest, today time.Time) (Workout, error) {
	date := today
	if strings.TrimSpace(req.Date) != "" {
		d, err := pkg.ParseDate(strings.TrimSpace(req.Date))
		if err != nil {
			return Workout{}, err
		}
		date = d
	}

	routine := strings.TrimSpace(req.Routine)
	if routine == "" {
		routine = DefaultRoutine
	}

	workout := Workout{
		UserID:      userID,
		Date:        date,
		Routine:     routine,
		DurationMin: max(req.DurationMin, 0),
		Note:        strings.TrimSpace(req.Note),
	}
	for _, s := range req.Sets {
		s.Normalize()
		if s.Exercise == "" {
			continue
		}
		workout.Sets = append(workout.Sets, s)
	}
	if len(workout.Sets) == 0 {
		return Workout{}, ErrNoExercises
	}

	return workout, nil
}

func (handler *Handler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.add")
	defer span.End()

	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	if r.Header.Get("Content-Type") != "application/json" {
		http.Error(w, "invalid content type", http.StatusBadRequest)
		return
	}

	var req AddWorkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Tracef("add workout, unmarshal json params: %s", err)
		http.Error(w, "add workout failed", http.StatusBadRequest)
		return
	}

	workout, err := workoutFromRequest(userID, req, pkg.Today(handler.location))
	if err != nil {
		if errors.Is(err, ErrNoExercises) {
			http.Error(w, "error, add at least one exercise", http.StatusBadRequest)
			return
		}
		http.Error(w, "error, invalid date", http.StatusBadRequest)
		return
	}

	addedWorkout, err := handler.repo.Add(ctx, workout)
	if err != nil {
		log.Errorf("failed to add workout for user %d: %s", userID, err)
		http.Error(w, "error, failed to add workout", http.StatusInternalServerError)
		return
	}
	handler.metricsManager.CounterWorkoutsLogged.Inc()

	addedJson, err := json.Marshal(addedWorkout)
	if err != nil {
		log.Errorf("failed to marshal new workout: %s", err)
		http.Error(w, "error, failed to add workout", http.StatusInternalServerError)
		return
	}

	log.Debugf("workout %d added for user %d, %d exercises", addedWorkout.ID, userID, len(addedWorkout.Sets))
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, addedJson, http.StatusCreated)
}

func (handler *Handler) HandleProgress(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.progress")
	defer span.End()

	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	workouts, err := handler.repo.ListWithSets(ctx, userID, ProgressWorkoutsLimit)
	if err != nil {
		log.Errorf("failed to list workouts for user %d: %s", userID, err)
		http.Error(w, "error, failed to get progress", http.StatusInternalServerError)
		return
	}

	summaries, err := handler.repo.ExerciseSummaries(ctx, userID)
	if err != nil {
		log.Errorf("failed to get exercise summaries for user %d: %s", userID, err)
		http.Error(w, "error, failed to get progress", http.StatusInternalServerError)
		return
	}

	if workouts == nil {
		workouts = []Workout{}
	}
	if summaries == nil {
		summaries = []ExerciseSummary{}
	}

	respJson, err := json.Marshal(ProgressResponse{
		Workouts:  workouts,
		Exercises: summaries,
	})
	if err != nil {
		log.Errorf("failed to marshal progress response: %s", err)
		http.Error(w, "error, failed to get progress", http.StatusInternalServerError)
		return
	}

	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, respJson, http.StatusOK)
}

func (handler *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.delete")
	defer span.End()

	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "error, id NaN", http.StatusBadRequest)
		return
	}

	if err := handler.repo.Delete(ctx, userID, id); err != nil {
		if errors.Is(err, ErrWorkoutNotFound) {
			http.Error(w, "error, workout not found", http.StatusNotFound)
			return
		}
		log.Errorf("failed to delete workout %d: %s", id, err)
		http.Error(w, "error, failed to delete workout", http.StatusInternalServerError)
		return
	}

	respJson, err := json.Marshal(DeleteWorkoutResponse{DeletedID: id})
	if err != nil {
		log.Errorf("failed to marshal delete workout response: %s", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, respJson, http.StatusOK)
}
