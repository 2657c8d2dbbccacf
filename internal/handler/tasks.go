package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/taskdeck/taskdeck/internal/middleware"
	"github.com/taskdeck/taskdeck/internal/service"
)

// TasksList returns the tasks visible to the current profile, newest first.
// GET /api/tasks
func (h *Handler) TasksList(w http.ResponseWriter, r *http.Request) {
	profile := middleware.GetProfile(r.Context())

	tasks, err := h.taskService.List(r.Context(), profile)
	if err != nil {
		h.ServiceError(w, err)
		return
	}
	h.JSON(w, http.StatusOK, tasks)
}

// TasksCreate creates a task. Admin only.
// POST /api/tasks
func (h *Handler) TasksCreate(w http.ResponseWriter, r *http.Request) {
	profile := middleware.GetProfile(r.Context())

	var req struct {
		Title      string `json:"title"`
		Project    string `json:"project"`
		AssignedTo string `json:"assigned_to"`
		DueDate    string `json:"due_date"`
	}
	if err := h.DecodeJSON(r, &req); err != nil {
		h.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	input := service.TaskInput{
		Title:   req.Title,
		Project: req.Project,
	}
	if req.AssignedTo != "" {
		input.AssignedTo = &req.AssignedTo
	}
	if req.DueDate != "" {
		due, err := time.Parse(time.RFC3339, req.DueDate)
		if err != nil {
			h.Error(w, http.StatusBadRequest, "Invalid due_date, expected RFC 3339")
			return
		}
		input.DueDate = &due
	}

	task, err := h.taskService.Create(r.Context(), profile, input)
	if err != nil {
		h.ServiceError(w, err)
		return
	}
	h.collector.RecordTaskCreated()
	h.JSON(w, http.StatusCreated, task)
}

// TasksAdvanceStatus moves a task to the next status in the cycle.
// POST /api/tasks/{taskId}/status
func (h *Handler) TasksAdvanceStatus(w http.ResponseWriter, r *http.Request) {
	profile := middleware.GetProfile(r.Context())
	taskID := chi.URLParam(r, "taskId")

	task, err := h.taskService.AdvanceStatus(r.Context(), profile, taskID)
	if err != nil {
		h.ServiceError(w, err)
		return
	}
	h.collector.RecordStatusTransition()
	h.JSON(w, http.StatusOK, task)
}

// TasksDelete removes a task. Admin only.
// DELETE /api/tasks/{taskId}
func (h *Handler) TasksDelete(w http.ResponseWriter, r *http.Request) {
	profile := middleware.GetProfile(r.Context())
	taskID := chi.URLParam(r, "taskId")

	if err := h.taskService.Delete(r.Context(), profile, taskID); err != nil {
		h.ServiceError(w, err)
		return
	}
	h.collector.RecordTaskDeleted()
	h.JSON(w, http.StatusOK, map[string]string{"message": "Task deleted"})
}
