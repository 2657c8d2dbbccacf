package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taskdeck/taskdeck/internal/middleware"
)

// PartnersList returns the partner roster. Admin only.
// GET /api/partners
func (h *Handler) PartnersList(w http.ResponseWriter, r *http.Request) {
	profile := middleware.GetProfile(r.Context())

	partners, err := h.partnerService.List(r.Context(), profile)
	if err != nil {
		h.ServiceError(w, err)
		return
	}
	h.JSON(w, http.StatusOK, partners)
}

// PartnersAdd registers a new partner account. Admin only.
// POST /api/partners
func (h *Handler) PartnersAdd(w http.ResponseWriter, r *http.Request) {
	profile := middleware.GetProfile(r.Context())

	var req struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := h.DecodeJSON(r, &req); err != nil {
		h.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	token, err := h.partnerService.Add(r.Context(), profile, req.Name, req.Email, req.Password)
	if err != nil {
		h.ServiceError(w, err)
		return
	}

	h.JSON(w, http.StatusCreated, map[string]string{
		"message":            "Partner added, verification required before sign-in",
		"verification_token": token,
	})
}

// PartnersRemove removes a partner and their assigned tasks. Admin only.
// DELETE /api/partners/{partnerId}
func (h *Handler) PartnersRemove(w http.ResponseWriter, r *http.Request) {
	profile := middleware.GetProfile(r.Context())
	partnerID := chi.URLParam(r, "partnerId")

	if err := h.partnerService.Remove(r.Context(), profile, partnerID); err != nil {
		h.ServiceError(w, err)
		return
	}
	h.collector.RecordPartnerRemoval()
	h.JSON(w, http.StatusOK, map[string]string{"message": "Partner removed"})
}
