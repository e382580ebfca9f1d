package musclemap

import (
	"context"
	"encoding/json"
	"net/http"
	"regexp"
	"strings"

	"github.com/2beens/fittrack/internal/auth"
	"github.com/2beens/fittrack/internal/telemetry/tracing"
	"github.com/2beens/fittrack/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

var slugRegex = regexp.MustCompile(`^[a-z0-9_-]{1,64}$`)

type exercisesReader interface {
	UserExercises(ctx context.Context, userID int) ([]string, error)
}

type Handler struct {
	service   *Service
	exercises exercisesReader
}

func NewHandler(service *Service, exercises exercisesReader) *Handler {
	return &Handler{
		service:   service,
		exercises: exercises,
	}
}

func (handler *Handler) SetupRoutes(router *mux.Router) {
	router.HandleFunc("/muscles", handler.HandleList).Methods("GET", "OPTIONS").Name("muscles-list")
	router.HandleFunc("/muscles/{slug}", handler.HandleGet).Methods("GET", "OPTIONS").Name("muscles-get")
	router.HandleFunc("/exercises/suggestions", handler.HandleSuggestions).Methods("GET", "OPTIONS").Name("exercises-suggestions")
}

func (handler *Handler) SetupAdminRoutes(adminRouter *mux.Router) {
	adminRouter.HandleFunc("/muscles/{slug}", handler.HandleSave).Methods("PUT", "OPTIONS").Name("admin-muscles-save")
}

func writeJSON(w http.ResponseWriter, v any) {
	respJson, err := json.Marshal(v)
	if err != nil {
		log.Errorf("failed to marshal muscle map response: %s", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, respJson)
}

func slugFromRequest(r *http.Request) (string, bool) {
	slug := strings.ToLower(strings.TrimSpace(mux.Vars(r)["slug"]))
	return slug, slugRegex.MatchString(slug)
}

func (handler *Handler) HandleList(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, Muscles)
}

func (handler *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.musclemap.get")
	defer span.End()

	slug, ok := slugFromRequest(r)
	if !ok {
		http.Error(w, "error, invalid muscle", http.StatusBadRequest)
		return
	}

	detail, err := handler.service.Get(ctx, slug)
	if err != nil {
		log.Errorf("failed to get muscle %s: %s", slug, err)
		http.Error(w, "error, failed to get muscle", http.StatusInternalServerError)
		return
	}

	writeJSON(w, detail)
}

func (handler *Handler) HandleSave(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.musclemap.save")
	defer span.End()

	slug, ok := slugFromRequest(r)
	if !ok {
		http.Error(w, "error, invalid muscle", http.StatusBadRequest)
		return
	}
	if r.Header.Get("Content-Type") != "application/json" {
		http.Error(w, "invalid content type", http.StatusBadRequest)
		return
	}

	var req SaveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Tracef("save muscle, unmarshal json params: %s", err)
		http.Error(w, "error, invalid muscle content", http.StatusBadRequest)
		return
	}

	detail, err := handler.service.Save(ctx, slug, req)
	if err != nil {
		log.Errorf("failed to save muscle %s: %s", slug, err)
		http.Error(w, "error, failed to save muscle", http.StatusInternalServerError)
		return
	}

	writeJSON(w, detail)
}

func (handler *Handler) HandleSuggestions(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.musclemap.suggestions")
	defer span.End()

	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	userExercises, err := handler.exercises.UserExercises(ctx, userID)
	if err != nil {
		// the catalog alone is still useful
		log.Errorf("failed to get exercises for user %d: %s", userID, err)
		userExercises = nil
	}

	writeJSON(w, BuildSuggestions(userExercises))
}
