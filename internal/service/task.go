package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/taskdeck/taskdeck/internal/model"
	"github.com/taskdeck/taskdeck/internal/store"
)

// TaskInput carries the fields accepted when creating a task.
type TaskInput struct {
	Title      string     `json:"title"`
	Project    string     `json:"project"`
	AssignedTo *string    `json:"assigned_to"`
	DueDate    *time.Time `json:"due_date"`
}

// TaskService is the role-scoped accessor for the task collection. The
// admin/partner visibility rule is the one authorization-sensitive rule in
// the system and is enforced here on every entry point; partners never
// receive rows assigned to someone else.
type TaskService struct {
	store *store.Store
}

// NewTaskService creates a new task service
func NewTaskService(s *store.Store) *TaskService {
	return &TaskService{store: s}
}

// List returns the tasks visible to the profile, newest first. Admins see
// every task; partners see only tasks assigned to them, and that predicate
// is part of the query sent to the store, not a post-filter.
func (s *TaskService) List(ctx context.Context, profile *model.Profile) ([]*model.Task, error) {
	if profile.IsAdmin() {
		tasks, err := s.store.ListTasks(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list tasks: %w", err)
		}
		return tasks, nil
	}
	tasks, err := s.store.ListTasksAssignedTo(ctx, profile.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list assigned tasks: %w", err)
	}
	return tasks, nil
}

// Create persists a new task. Admin-only. Title is required; project
// defaults to General and status is always forced to Pending regardless of
// input.
func (s *TaskService) Create(ctx context.Context, profile *model.Profile, input TaskInput) (*model.Task, error) {
	if !profile.IsAdmin() {
		return nil, ErrForbidden
	}

	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrValidation)
	}

	project := strings.TrimSpace(input.Project)
	if project == "" {
		project = model.DefaultProject
	}

	task := &model.Task{
		Title:      title,
		Project:    project,
		AssignedTo: input.AssignedTo,
		DueDate:    input.DueDate,
		Status:     model.StatusPending,
		CreatedBy:  profile.ID,
	}
	if err := s.store.CreateTask(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}
	return task, nil
}

// AdvanceStatus moves a task's status one step along the fixed cycle
// Pending -> In Progress -> Completed -> Pending. The next status is computed
// from the stored row, not from whatever the caller last saw, so a stale
// client cannot skip or repeat a transition. Any viewer with access to the
// task may advance it; a task outside the caller's scope is reported as
// ErrNotFound, the same as a task that does not exist.
func (s *TaskService) AdvanceStatus(ctx context.Context, profile *model.Profile, taskID string) (*model.Task, error) {
	task, err := s.getVisibleTask(ctx, profile, taskID)
	if err != nil {
		return nil, err
	}

	task.Status = model.NextStatus(task.Status)
	if err := s.store.UpdateTask(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to update task status: %w", err)
	}
	return task, nil
}

// Delete removes a task. Admin-only.
func (s *TaskService) Delete(ctx context.Context, profile *model.Profile, taskID string) error {
	if !profile.IsAdmin() {
		return ErrForbidden
	}
	if err := s.store.DeleteTask(ctx, taskID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete task: %w", err)
	}
	return nil
}

// getVisibleTask fetches a task and applies the same visibility rule as
// List: partners only ever see tasks assigned to them.
func (s *TaskService) getVisibleTask(ctx context.Context, profile *model.Profile, taskID string) (*model.Task, error) {
	task, err := s.store.GetTaskByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch task: %w", err)
	}
	if !profile.IsAdmin() {
		if task.AssignedTo == nil || *task.AssignedTo != profile.ID {
			return nil, ErrNotFound
		}
	}
	return task, nil
}
