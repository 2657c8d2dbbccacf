package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/taskdeck/taskdeck/internal/config"
	"github.com/taskdeck/taskdeck/internal/metrics"
	"github.com/taskdeck/taskdeck/internal/service"
	"github.com/taskdeck/taskdeck/internal/sessionwatch"
	"github.com/taskdeck/taskdeck/internal/store"
)

const sessionCookieName = "taskdeck_session"

// Handler contains all HTTP handlers
type Handler struct {
	store          *store.Store
	cfg            *config.Config
	authService    *service.AuthService
	profileService *service.ProfileService
	taskService    *service.TaskService
	partnerService *service.PartnerService
	broker         *sessionwatch.Broker
	collector      *metrics.Collector
}

// New creates a new Handler wired to the given store and broker.
func New(s *store.Store, cfg *config.Config, broker *sessionwatch.Broker, collector *metrics.Collector) *Handler {
	authSvc := service.NewAuthService(s, broker, cfg.SessionTTL, cfg.VerificationTTL)
	return &Handler{
		store:          s,
		cfg:            cfg,
		authService:    authSvc,
		profileService: service.NewProfileService(s),
		taskService:    service.NewTaskService(s),
		partnerService: service.NewPartnerService(s, authSvc),
		broker:         broker,
		collector:      collector,
	}
}

// AuthService returns the handler's auth service.
// Used by main.go to wire up the auth middleware and session sweeper.
func (h *Handler) AuthService() *service.AuthService {
	return h.authService
}

// ProfileService returns the handler's profile service for the auth middleware.
func (h *Handler) ProfileService() *service.ProfileService {
	return h.profileService
}

// JSON helper to write JSON responses
func (h *Handler) JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// Error helper to write error responses
func (h *Handler) Error(w http.ResponseWriter, status int, message string) {
	h.JSON(w, status, map[string]string{"error": message})
}

// DecodeJSON helper to decode request body
func (h *Handler) DecodeJSON(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}

// ServiceError maps service-layer errors onto HTTP statuses. Unrecognized
// errors are logged and reported once as a 500; the caller may re-trigger
// the action, nothing is retried automatically.
func (h *Handler) ServiceError(w http.ResponseWriter, err error) {
	var removal *service.RemovalError
	switch {
	case errors.Is(err, service.ErrValidation), errors.Is(err, service.ErrWeakPassword):
		h.Error(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrInvalidCredentials), errors.Is(err, service.ErrNoSession):
		h.Error(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, service.ErrNotVerified):
		h.Error(w, http.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrForbidden):
		h.collector.RecordForbidden()
		h.Error(w, http.StatusForbidden, "Forbidden")
	case errors.Is(err, service.ErrNotFound):
		h.Error(w, http.StatusNotFound, "Not found")
	case errors.Is(err, service.ErrEmailInUse):
		h.Error(w, http.StatusConflict, err.Error())
	case errors.As(err, &removal):
		// Partial removal: report which step failed so the admin knows
		// whether orphaned tasks may remain
		log.Printf("Partner removal error: %v", removal)
		h.Error(w, http.StatusInternalServerError, removal.Error())
	default:
		log.Printf("Internal error: %v", err)
		h.Error(w, http.StatusInternalServerError, "Internal error")
	}
}

// setSessionCookie sets the session cookie
func (h *Handler) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   false, // Set to true in production with HTTPS
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(h.cfg.SessionTTL.Seconds()),
	})
}

// clearSessionCookie clears the session cookie
func (h *Handler) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
}

// getSessionToken gets the session token from cookie
func (h *Handler) getSessionToken(r *http.Request) string {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}
