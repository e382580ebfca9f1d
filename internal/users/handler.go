package users

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/2beens/fittrack/internal/auth"
	"github.com/2beens/fittrack/internal/middleware"
	"github.com/2beens/fittrack/internal/telemetry/metrics"
	"github.com/2beens/fittrack/internal/telemetry/tracing"
	"github.com/2beens/fittrack/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

//go:generate mockgen -source=$GOFILE -destination=users_mocks_test.go -package=users_test

type sessionsService interface {
	Login(ctx context.Context, userID int, createdAt time.Time) (string, error)
	Logout(ctx context.Context, token string) (bool, error)
}

type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token   string `json:"token"`
	User    User   `json:"user"`
	IsAdmin bool   `json:"is_admin"`
}

type AdminRequest struct {
	Username string `json:"username"`
}

type Handler struct {
	service        *Service
	sessions       sessionsService
	metricsManager *metrics.Manager
}

func NewHandler(service *Service, sessions sessionsService, metricsManager *metrics.Manager) *Handler {
	return &Handler{
		service:        service,
		sessions:       sessions,
		metricsManager: metricsManager,
	}
}

func (handler *Handler) SetupRoutes(
	mainRouter *mux.Router,
	rateLimiter middleware.RequestRateLimiter,
	loginAllowedPerMin int,
) {
	mainRouter.HandleFunc("/logout", handler.HandleLogout).Methods("GET", "OPTIONS").Name("logout")

	loginSubrouter := mainRouter.PathPrefix("/").Subrouter()
	loginSubrouter.HandleFunc("/register", handler.HandleRegister).Methods("POST", "OPTIONS").Name("register")
	loginSubrouter.HandleFunc("/login", handler.HandleLogin).Methods("POST", "OPTIONS").Name("login")

	// rate limit the /login and /register endpoints to prevent abuse
	loginSubrouter.Use(middleware.RateLimit(rateLimiter, "login", loginAllowedPerMin, handler.metricsManager))
}

func (handler *Handler) SetupAdminRoutes(adminRouter *mux.Router) {
	adminRouter.HandleFunc("/admins", handler.HandleListAdmins).Methods("GET", "OPTIONS").Name("admins-list")
	adminRouter.HandleFunc("/admins", handler.HandleAddAdmin).Methods("POST", "OPTIONS").Name("admins-add")
	adminRouter.HandleFunc("/admins", handler.HandleRemoveAdmin).Methods("DELETE", "OPTIONS").Name("admins-remove")
}

func (handler *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.users.register")
	defer span.End()

	if r.Header.Get("Content-Type") != "application/json" {
		http.Error(w, "invalid content type", http.StatusBadRequest)
		return
	}

	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Tracef("register, unmarshal json params: %s", err)
		http.Error(w, "register failed", http.StatusBadRequest)
		return
	}

	user, err := handler.service.Register(ctx, req.Username, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, ErrMissingFields):
			http.Error(w, "error, fill in all the fields", http.StatusBadRequest)
		case errors.Is(err, pkg.ErrPasswordTooShort):
			http.Error(w, "error, password too short", http.StatusBadRequest)
		case errors.Is(err, ErrUsernameTaken):
			http.Error(w, "error, username or email already exists", http.StatusConflict)
		default:
			log.Errorf("failed to register user %s: %s", req.Username, err)
			http.Error(w, "error, failed to register", http.StatusInternalServerError)
		}
		return
	}
	handler.metricsManager.CounterRegistrations.Inc()

	userJson, err := json.Marshal(user)
	if err != nil {
		log.Errorf("failed to marshal user: %s", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	log.Printf("new user registered: %s [%d]", user.Username, user.ID)
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, userJson, http.StatusCreated)
}

func (handler *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.users.login")
	defer span.End()

	if r.Header.Get("Content-Type") != "application/json" {
		http.Error(w, "invalid content type", http.StatusBadRequest)
		return
	}

	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Errorf("login, unmarshal json params: %s", err)
		http.Error(w, "login failed", http.StatusBadRequest)
		return
	}

	user, err := handler.service.Authenticate(ctx, req.Username, req.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			log.Tracef("failed login attempt for user: %s", req.Username)
			http.Error(w, "error, wrong credentials", http.StatusBadRequest)
			return
		}
		log.Errorf("login failed for user %s: %s", req.Username, err)
		http.Error(w, "login failed", http.StatusInternalServerError)
		return
	}

	token, err := handler.sessions.Login(ctx, user.ID, time.Now())
	if err != nil {
		log.Errorf("login failed, generate token error: %s", err)
		http.Error(w, "generate token error", http.StatusInternalServerError)
		return
	}

	isAdmin, err := handler.service.IsAdmin(ctx, user.ID)
	if err != nil {
		// not fatal, the admin endpoints check it again
		log.Errorf("login, check admin for user %d: %s", user.ID, err)
	}

	respJson, err := json.Marshal(LoginResponse{
		Token:   token,
		User:    *user,
		IsAdmin: isAdmin,
	})
	if err != nil {
		log.Errorf("failed to marshal login response: %s", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	log.Tracef("new login success: %s", user.Username)
	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, respJson)
}

func (handler *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.users.logout")
	defer span.End()

	authToken := r.Header.Get(auth.TokenHeader)
	if authToken == "" {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	loggedOut, err := handler.sessions.Logout(ctx, authToken)
	if err != nil {
		log.Errorf("logout failed: %s", err)
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}
	if !loggedOut {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	pkg.WriteTextResponseOK(w, "logged-out")
}

func (handler *Handler) HandleListAdmins(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.users.listAdmins")
	defer span.End()

	admins, err := handler.service.ListAdmins(ctx)
	if err != nil {
		log.Errorf("failed to list admins: %s", err)
		http.Error(w, "error, failed to list admins", http.StatusInternalServerError)
		return
	}
	if admins == nil {
		admins = []string{}
	}

	adminsJson, err := json.Marshal(admins)
	if err != nil {
		log.Errorf("failed to marshal admins: %s", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, adminsJson)
}

func (handler *Handler) decodeAdminRequest(w http.ResponseWriter, r *http.Request) (string, bool) {
	if r.Header.Get("Content-Type") != "application/json" {
		http.Error(w, "invalid content type", http.StatusBadRequest)
		return "", false
	}
	var req AdminRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Username == "" {
		http.Error(w, "error, username empty", http.StatusBadRequest)
		return "", false
	}
	return req.Username, true
}

func (handler *Handler) HandleAddAdmin(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.users.addAdmin")
	defer span.End()

	username, ok := handler.decodeAdminRequest(w, r)
	if !ok {
		return
	}

	if err := handler.service.AddAdmin(ctx, username); err != nil {
		if errors.Is(err, ErrUserNotFound) {
			http.Error(w, "error, user not found", http.StatusNotFound)
			return
		}
		log.Errorf("failed to add admin %s: %s", username, err)
		http.Error(w, "error, failed to add admin", http.StatusInternalServerError)
		return
	}

	log.Printf("admin added: %s", username)
	pkg.WriteTextResponseOK(w, "added")
}

func (handler *Handler) HandleRemoveAdmin(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.users.removeAdmin")
	defer span.End()

	username, ok := handler.decodeAdminRequest(w, r)
	if !ok {
		return
	}

	if err := handler.service.RemoveAdmin(ctx, username); err != nil {
		switch {
		case errors.Is(err, ErrBootstrapAdmin):
			http.Error(w, "error, cannot remove the main admin", http.StatusForbidden)
		case errors.Is(err, ErrUserNotFound):
			http.Error(w, "error, user not found", http.StatusNotFound)
		default:
			log.Errorf("failed to remove admin %s: %s", username, err)
			http.Error(w, "error, failed to remove admin", http.StatusInternalServerError)
		}
		return
	}

	log.Printf("admin removed: %s", username)
	pkg.WriteTextResponseOK(w, "removed")
}
