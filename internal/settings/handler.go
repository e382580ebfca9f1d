package settings

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/2beens/fittrack/internal/auth"
	"github.com/2beens/fittrack/internal/telemetry/tracing"
	"github.com/2beens/fittrack/pkg"

	log "github.com/sirupsen/logrus"
)

//go:generate mockgen -source=$GOFILE -destination=settings_mocks_test.go -package=settings_test

type settingsRepo interface {
	Get(ctx context.Context, userID int) (*Settings, error)
	Update(ctx context.Context, s Settings) error
}

type Handler struct {
	repo settingsRepo
}

func NewHandler(repo settingsRepo) *Handler {
	return &Handler{
		repo: repo,
	}
}

func (handler *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.settings.get")
	defer span.End()

	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	s, err := handler.repo.Get(ctx, userID)
	if err != nil {
		log.Errorf("failed to get settings for user %d: %s", userID, err)
		http.Error(w, "error, failed to get settings", http.StatusInternalServerError)
		return
	}

	settingsJson, err := json.Marshal(s)
	if err != nil {
		log.Errorf("failed to marshal settings: %s", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, settingsJson, http.StatusOK)
}

func (handler *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.settings.update")
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

	var s Settings
	if err := json.NewDecoder(r.Body).Decode(&s); err != nil {
		log.Tracef("update settings, unmarshal json params: %s", err)
		http.Error(w, "update settings failed", http.StatusBadRequest)
		return
	}
	s.UserID = userID
	s.Normalize()

	if err := handler.repo.Update(ctx, s); err != nil {
		log.Errorf("failed to update settings for user %d: %s", userID, err)
		http.Error(w, "error, failed to update settings", http.StatusInternalServerError)
		return
	}

	settingsJson, err := json.Marshal(s)
	if err != nil {
		log.Errorf("failed to marshal settings: %s", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, settingsJson, http.StatusOK)
}
