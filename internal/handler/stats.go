package handler

import (
	"log"
	"net/http"

	"github.com/taskdeck/taskdeck/internal/middleware"
	"github.com/taskdeck/taskdeck/internal/model"
	"github.com/taskdeck/taskdeck/internal/service"
)

// StatsGet aggregates dashboard statistics over the tasks visible to the
// current profile. The partner roster only feeds the per-partner load, so a
// roster fetch failure degrades to counts and project progress alone.
// GET /api/stats
func (h *Handler) StatsGet(w http.ResponseWriter, r *http.Request) {
	profile := middleware.GetProfile(r.Context())

	tasks, err := h.taskService.List(r.Context(), profile)
	if err != nil {
		h.ServiceError(w, err)
		return
	}

	var partners []*model.Profile
	if profile.IsAdmin() {
		partners, err = h.partnerService.List(r.Context(), profile)
		if err != nil {
			log.Printf("stats: partner roster unavailable, omitting partner load: %v", err)
			partners = nil
		}
	}

	h.JSON(w, http.StatusOK, service.ComputeStats(tasks, partners))
}
