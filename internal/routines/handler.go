package routines

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/2beens/fittrack/internal/auth"
	"github.com/2beens/fittrack/internal/settings"
	"github.com/2beens/fittrack/internal/telemetry/tracing"
	"github.com/2beens/fittrack/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

type routinesRepo interface {
	Add(ctx context.Context, routine Routine) (*Routine, error)
	Update(ctx context.Context, routine Routine) error
	List(ctx context.Context, userID int) ([]Routine, error)
	Get(ctx context.Context, userID, id int) (*Routine, error)
	Delete(ctx context.Context, userID, id int) error
}

type settingsStore interface {
	Get(ctx context.Context, userID int) (*settings.Settings, error)
	Update(ctx context.Context, s settings.Settings) error
}

type DeleteRoutineResponse struct {
	DeletedID int `json:"deleted_id"`
}

type Handler struct {
	repo     routinesRepo
	settings settingsStore
}

func NewHandler(repo routinesRepo, settingsStore settingsStore) *Handler {
	return &Handler{
		repo:     repo,
		settings: settingsStore,
	}
}

func (handler *Handler) SetupRoutes(router *mux.Router) {
	router.HandleFunc("/routines", handler.HandleList).Methods("GET", "OPTIONS").Name("routines-list")
	router.HandleFunc("/routines", handler.HandleCreate).Methods("POST", "OPTIONS").Name("routines-create")
	router.HandleFunc("/routines/recommended", handler.HandleRecommended).Methods("GET", "OPTIONS").Name("routines-recommended")
	router.HandleFunc("/routines/{id:[0-9]+}", handler.HandleGet).Methods("GET", "OPTIONS").Name("routines-get")
	router.HandleFunc("/routines/{id:[0-9]+}", handler.HandleUpdate).Methods("PUT", "OPTIONS").Name("routines-update")
	router.HandleFunc("/routines/{id:[0-9]+}", handler.HandleDelete).Methods("DELETE", "OPTIONS").Name("routines-delete")
	router.HandleFunc("/routines/{id:[0-9]+}/apply-schedule", handler.HandleApplySchedule).Methods("POST", "OPTIONS").Name("routines-apply-schedule")
}

func writeJSON(w http.ResponseWriter, v any, statusCode int) {
	respJson, err := json.Marshal(v)
	if err != nil {
		log.Errorf("failed to marshal routines response: %s", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, respJson, statusCode)
}

func routineID(r *http.Request) (int, bool) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	return id, err == nil
}

func decodeRoutine(w http.ResponseWriter, r *http.Request) (*Routine, bool) {
	if r.Header.Get("Content-Type") != "application/json" {
		http.Error(w, "invalid content type", http.StatusBadRequest)
		return nil, false
	}
	var routine Routine
	if err := json.NewDecoder(r.Body).Decode(&routine); err != nil {
		log.Tracef("routine, unmarshal json params: %s", err)
		http.Error(w, "error, invalid routine", http.StatusBadRequest)
		return nil, false
	}
	if err := routine.Normalize(); err != nil {
		http.Error(w, "error, routine name empty", http.StatusBadRequest)
		return nil, false
	}
	return &routine, true
}

func (handler *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.routines.list")
	defer span.End()

	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	routines, err := handler.repo.List(ctx, userID)
	if err != nil {
		log.Errorf("failed to list routines for user %d: %s", userID, err)
		http.Error(w, "error, failed to get routines", http.StatusInternalServerError)
		return
	}
	if routines == nil {
		routines = []Routine{}
	}

	writeJSON(w, routines, http.StatusOK)
}

func (handler *Handler) HandleRecommended(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, Recommended, http.StatusOK)
}

func (handler *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.routines.create")
	defer span.End()

	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	routine, ok := decodeRoutine(w, r)
	if !ok {
		return
	}
	routine.UserID = userID

	added, err := handler.repo.Add(ctx, *routine)
	if err != nil {
		log.Errorf("failed to add routine for user %d: %s", userID, err)
		http.Error(w, "error, failed to add routine", http.StatusInternalServerError)
		return
	}
	span.SetAttributes(attribute.Int("routine.id", added.ID))

	log.Debugf("new routine added: %d [user %d]", added.ID, userID)
	writeJSON(w, added, http.StatusCreated)
}

func (handler *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.routines.get")
	defer span.End()

	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	id, ok := routineID(r)
	if !ok {
		http.Error(w, "error, invalid routine id", http.StatusBadRequest)
		return
	}

	routine, err := handler.repo.Get(ctx, userID, id)
	if err != nil {
		if errors.Is(err, ErrRoutineNotFound) {
			http.Error(w, "error, routine not found", http.StatusNotFound)
			return
		}
		log.Errorf("failed to get routine %d: %s", id, err)
		http.Error(w, "error, failed to get routine", http.StatusInternalServerError)
		return
	}

	writeJSON(w, routine, http.StatusOK)
}

func (handler *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.routines.update")
	defer span.End()

	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	id, ok := routineID(r)
	if !ok {
		http.Error(w, "error, invalid routine id", http.StatusBadRequest)
		return
	}

	routine, ok := decodeRoutine(w, r)
	if !ok {
		return
	}
	routine.ID = id
	routine.UserID = userID

	if err := handler.repo.Update(ctx, *routine); err != nil {
		if errors.Is(err, ErrRoutineNotFound) {
			http.Error(w, "error, routine not found", http.StatusNotFound)
			return
		}
		log.Errorf("failed to update routine %d: %s", id, err)
		http.Error(w, "error, failed to update routine", http.StatusInternalServerError)
		return
	}

	writeJSON(w, routine, http.StatusOK)
}

func (handler *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.routines.delete")
	defer span.End()

	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	id, ok := routineID(r)
	if !ok {
		http.Error(w, "error, invalid routine id", http.StatusBadRequest)
		return
	}

	if err := handler.repo.Delete(ctx, userID, id); err != nil {
		if errors.Is(err, ErrRoutineNotFound) {
			http.Error(w, "error, routine not found", http.StatusNotFound)
			return
		}
		log.Errorf("failed to delete routine %d: %s", id, err)
		http.Error(w, "error, failed to delete routine", http.StatusInternalServerError)
		return
	}

	writeJSON(w, DeleteRoutineResponse{DeletedID: id}, http.StatusOK)
}

// HandleApplySchedule copies the routine rest days into the user settings.
func (handler *Handler) HandleApplySchedule(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.routines.applySchedule")
	defer span.End()

	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	id, ok := routineID(r)
	if !ok {
		http.Error(w, "error, invalid routine id", http.StatusBadRequest)
		return
	}

	routine, err := handler.repo.Get(ctx, userID, id)
	if err != nil {
		if errors.Is(err, ErrRoutineNotFound) {
			http.Error(w, "error, routine not found", http.StatusNotFound)
			return
		}
		log.Errorf("apply schedule, get routine %d: %s", id, err)
		http.Error(w, "error, failed to apply schedule", http.StatusInternalServerError)
		return
	}

	restDays := routine.RestWeekdays()
	if len(restDays) == 0 {
		http.Error(w, "error, "+ErrNoRestDays.Error(), http.StatusBadRequest)
		return
	}

	current, err := handler.settings.Get(ctx, userID)
	if err != nil {
		log.Errorf("apply schedule, get settings for user %d: %s", userID, err)
		http.Error(w, "error, failed to apply schedule", http.StatusInternalServerError)
		return
	}

	updated := settings.Default(userID)
	if current != nil {
		updated.WeeklyMinSessions = current.WeeklyMinSessions
	}
	updated.RestDays = restDays
	updated.Normalize()

	if err := handler.settings.Update(ctx, updated); err != nil {
		log.Errorf("apply schedule, update settings for user %d: %s", userID, err)
		http.Error(w, "error, failed to apply schedule", http.StatusInternalServerError)
		return
	}

	log.Debugf("routine %d schedule applied for user %d: %v", id, userID, updated.RestDays)
	writeJSON(w, updated, http.StatusOK)
}
