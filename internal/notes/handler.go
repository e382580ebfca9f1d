package notes

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/2beens/fittrack/internal/auth"
	"github.com/2beens/fittrack/internal/telemetry/metrics"
	"github.com/2beens/fittrack/internal/telemetry/tracing"
	"github.com/2beens/fittrack/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

type notesRepo interface {
	Add(ctx context.Context, note *Note) (*Note, error)
	Recent(ctx context.Context, userID, limit int) ([]Note, error)
	Delete(ctx context.Context, userID, id int) error
}

// Box serves the notes shown on the dashboard.
type Box struct {
	repo notesRepo
}

func NewBox(repo notesRepo) *Box {
	return &Box{
		repo: repo,
	}
}

// ForUser returns the latest saved notes of the user followed by the default tips.
func (b *Box) ForUser(ctx context.Context, userID int) ([]string, error) {
	saved, err := b.repo.Recent(ctx, userID, DashboardLimit)
	if err != nil {
		return nil, err
	}
	return MergeWithTips(saved, DashboardLimit), nil
}

type AddNoteRequest struct {
	Text string `json:"text"`
}

type Handler struct {
	repo    notesRepo
	metrics *metrics.Manager
}

func NewHandler(repo notesRepo, metrics *metrics.Manager) *Handler {
	return &Handler{
		repo:    repo,
		metrics: metrics,
	}
}

func (handler *Handler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.notes.add")
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

	var req AddNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Tracef("add note, unmarshal json params: %s", err)
		http.Error(w, "add note failed", http.StatusBadRequest)
		return
	}

	text := strings.TrimSpace(req.Text)
	if text == "" {
		http.Error(w, "error, text empty", http.StatusBadRequest)
		return
	}
	if utf8.RuneCountInString(text) > MaxTextLength {
		http.Error(w, "error, text too long", http.StatusBadRequest)
		return
	}

	addedNote, err := handler.repo.Add(ctx, &Note{
		UserID:    userID,
		Text:      text,
		CreatedAt: time.Now(),
	})
	if err != nil {
		log.Errorf("failed to add note for user %d: %s", userID, err)
		http.Error(w, "error, failed to add note", http.StatusInternalServerError)
		return
	}

	handler.metrics.CounterNotes.Inc()

	noteJson, err := json.Marshal(addedNote)
	if err != nil {
		log.Errorf("failed to marshal note: %s", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	log.Debugf("new note added for user %d: %d", userID, addedNote.ID)
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, noteJson, http.StatusCreated)
}

func (handler *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.notes.list")
	defer span.End()

	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	notes, err := handler.repo.Recent(ctx, userID, DashboardLimit)
	if err != nil {
		log.Errorf("failed to list notes for user %d: %s", userID, err)
		http.Error(w, "error, failed to list notes", http.StatusInternalServerError)
		return
	}
	if notes == nil {
		notes = []Note{}
	}

	notesJson, err := json.Marshal(notes)
	if err != nil {
		log.Errorf("failed to marshal notes: %s", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, notesJson, http.StatusOK)
}

func (handler *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.notes.delete")
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
		if errors.Is(err, ErrNoteNotFound) {
			http.Error(w, "error, note not found", http.StatusNotFound)
			return
		}
		log.Errorf("failed to delete note %d: %s", id, err)
		http.Error(w, "error, failed to delete note", http.StatusInternalServerError)
		return
	}

	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, []byte(`{"deleted_id":`+strconv.Itoa(id)+`}`), http.StatusOK)
}
