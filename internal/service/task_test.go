package service

import (
	"context"
	"errors"
	"testing"

	"github.com/taskdeck/taskdeck/internal/model"
)

func TestListScopesPartnerToAssignedTasks(t *testing.T) {
	env := testSetup(t)
	ctx := context.Background()

	admin := env.seedProfile(t, "admin@example.com", model.RoleAdmin, "password-123")
	alice := env.seedProfile(t, "alice@example.com", model.RolePartner, "password-123")
	bob := env.seedProfile(t, "bob@example.com", model.RolePartner, "password-123")

	env.seedTask(t, "for alice", admin.ID, &alice.ID, model.StatusPending)
	env.seedTask(t, "for bob", admin.ID, &bob.ID, model.StatusPending)
	env.seedTask(t, "unassigned", admin.ID, nil, model.StatusPending)

	got, err := env.Tasks.List(ctx, alice)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 task for alice, got %d", len(got))
	}
	if got[0].AssignedTo == nil || *got[0].AssignedTo != alice.ID {
		t.Errorf("task outside alice's assignment leaked: %+v", got[0])
	}

	all, err := env.Tasks.List(ctx, admin)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("expected admin to see all 3 tasks, got %d", len(all))
	}
}

func TestCreateForbiddenForPartner(t *testing.T) {
	env := testSetup(t)
	alice := env.seedProfile(t, "alice@example.com", model.RolePartner, "password-123")

	_, err := env.Tasks.Create(context.Background(), alice, TaskInput{Title: "sneaky"})
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if n := env.taskCount(t); n != 0 {
		t.Errorf("expected no tasks persisted, found %d", n)
	}
}

func TestCreateEmptyTitleFailsWithoutInsert(t *testing.T) {
	env := testSetup(t)
	admin := env.seedProfile(t, "admin@example.com", model.RoleAdmin, "password-123")

	_, err := env.Tasks.Create(context.Background(), admin, TaskInput{Title: "   "})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	if n := env.taskCount(t); n != 0 {
		t.Errorf("expected no insert for invalid task, found %d", n)
	}
}

func TestCreateDefaultsProjectAndStatus(t *testing.T) {
	env := testSetup(t)
	admin := env.seedProfile(t, "admin@example.com", model.RoleAdmin, "password-123")

	task, err := env.Tasks.Create(context.Background(), admin, TaskInput{Title: "Write report"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if task.Project != model.DefaultProject {
		t.Errorf("expected default project %q, got %q", model.DefaultProject, task.Project)
	}
	if task.Status != model.StatusPending {
		t.Errorf("expected initial status %q, got %q", model.StatusPending, task.Status)
	}
	if task.CreatedBy != admin.ID {
		t.Errorf("expected created_by %q, got %q", admin.ID, task.CreatedBy)
	}
}

func TestAdvanceStatusFollowsCycle(t *testing.T) {
	env := testSetup(t)
	ctx := context.Background()
	admin := env.seedProfile(t, "admin@example.com", model.RoleAdmin, "password-123")
	task := env.seedTask(t, "cycle me", admin.ID, nil, model.StatusPending)

	want := []string{model.StatusInProgress, model.StatusCompleted, model.StatusPending}
	for _, expected := range want {
		updated, err := env.Tasks.AdvanceStatus(ctx, admin, task.ID)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if updated.Status != expected {
			t.Fatalf("expected status %q, got %q", expected, updated.Status)
		}
	}
}

func TestAdvanceStatusUsesStoredStatus(t *testing.T) {
	env := testSetup(t)
	ctx := context.Background()
	admin := env.seedProfile(t, "admin@example.com", model.RoleAdmin, "password-123")
	task := env.seedTask(t, "race me", admin.ID, nil, model.StatusPending)

	// Another actor advances the task behind this caller's back
	if _, err := env.Tasks.AdvanceStatus(ctx, admin, task.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// The next advance starts from the stored In Progress, not the stale
	// Pending this caller may still be displaying
	updated, err := env.Tasks.AdvanceStatus(ctx, admin, task.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Status != model.StatusCompleted {
		t.Errorf("expected %q, got %q", model.StatusCompleted, updated.Status)
	}
}

func TestAdvanceStatusPartnerScope(t *testing.T) {
	env := testSetup(t)
	ctx := context.Background()
	admin := env.seedProfile(t, "admin@example.com", model.RoleAdmin, "password-123")
	alice := env.seedProfile(t, "alice@example.com", model.RolePartner, "password-123")
	bob := env.seedProfile(t, "bob@example.com", model.RolePartner, "password-123")

	mine := env.seedTask(t, "mine", admin.ID, &alice.ID, model.StatusPending)
	theirs := env.seedTask(t, "theirs", admin.ID, &bob.ID, model.StatusPending)

	if _, err := env.Tasks.AdvanceStatus(ctx, alice, mine.ID); err != nil {
		t.Fatalf("partner should advance own task: %v", err)
	}

	// A task assigned to someone else is indistinguishable from a missing one
	if _, err := env.Tasks.AdvanceStatus(ctx, alice, theirs.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for out-of-scope task, got %v", err)
	}

	stored, err := env.Store.GetTaskByID(ctx, theirs.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stored.Status != model.StatusPending {
		t.Errorf("out-of-scope task was mutated to %q", stored.Status)
	}
}

func TestDeleteForbiddenForPartnerLeavesTask(t *testing.T) {
	env := testSetup(t)
	ctx := context.Background()
	admin := env.seedProfile(t, "admin@example.com", model.RoleAdmin, "password-123")
	alice := env.seedProfile(t, "alice@example.com", model.RolePartner, "password-123")
	task := env.seedTask(t, "keep me", admin.ID, &alice.ID, model.StatusPending)

	if err := env.Tasks.Delete(ctx, alice, task.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if _, err := env.Store.GetTaskByID(ctx, task.ID); err != nil {
		t.Errorf("task should remain in the store: %v", err)
	}
}

func TestDeleteNotFound(t *testing.T) {
	env := testSetup(t)
	admin := env.seedProfile(t, "admin@example.com", model.RoleAdmin, "password-123")

	if err := env.Tasks.Delete(context.Background(), admin, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
