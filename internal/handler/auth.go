package handler

import (
	"net/http"

	"github.com/taskdeck/taskdeck/internal/middleware"
)

// AuthSignUp handles account registration.
// POST /auth/signup
// The account starts unverified; the verification token is returned in the
// response for delivery out of band. No session is established.
func (h *Handler) AuthSignUp(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		Name     string `json:"name"`
	}
	if err := h.DecodeJSON(r, &req); err != nil {
		h.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	token, err := h.authService.SignUp(r.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		h.ServiceError(w, err)
		return
	}

	h.JSON(w, http.StatusAccepted, map[string]string{
		"message":            "Account created, verification required before sign-in",
		"verification_token": token,
	})
}

// AuthLogin handles email/password sign-in.
// POST /auth/login
func (h *Handler) AuthLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := h.DecodeJSON(r, &req); err != nil {
		h.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	token, profile, err := h.authService.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		h.collector.RecordSignIn("failure")
		h.ServiceError(w, err)
		return
	}
	h.collector.RecordSignIn("success")

	h.setSessionCookie(w, token)
	h.JSON(w, http.StatusOK, profile)
}

// AuthLogout ends the current session.
// POST /auth/logout
func (h *Handler) AuthLogout(w http.ResponseWriter, r *http.Request) {
	token := h.getSessionToken(r)
	if err := h.authService.SignOut(r.Context(), token); err != nil {
		h.ServiceError(w, err)
		return
	}
	h.clearSessionCookie(w)
	h.JSON(w, http.StatusOK, map[string]string{"message": "Signed out"})
}

// AuthVerify redeems a verification token.
// GET /auth/verify?token=...
func (h *Handler) AuthVerify(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		h.Error(w, http.StatusBadRequest, "Missing verification token")
		return
	}
	if err := h.authService.Verify(r.Context(), token); err != nil {
		h.ServiceError(w, err)
		return
	}
	h.JSON(w, http.StatusOK, map[string]string{"message": "Account verified, you can sign in now"})
}

// AuthMe returns the profile for the current session.
// GET /auth/me (behind auth middleware)
func (h *Handler) AuthMe(w http.ResponseWriter, r *http.Request) {
	profile := middleware.GetProfile(r.Context())
	if profile == nil {
		h.Error(w, http.StatusUnauthorized, "No active session")
		return
	}
	h.JSON(w, http.StatusOK, profile)
}
