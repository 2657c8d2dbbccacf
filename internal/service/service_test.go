package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/taskdeck/taskdeck/internal/crypto"
	"github.com/taskdeck/taskdeck/internal/model"
	"github.com/taskdeck/taskdeck/internal/sessionwatch"
	"github.com/taskdeck/taskdeck/internal/store"
)

// testEnv holds a store plus the services under test, backed by a temp
// SQLite database.
type testEnv struct {
	Store    *store.Store
	Broker   *sessionwatch.Broker
	Auth     *AuthService
	Profiles *ProfileService
	Tasks    *TaskService
	Partners *PartnerService
}

func testSetup(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("%s/service_test.db", t.TempDir())), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := db.AutoMigrate(model.AllModels()...); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	s := store.New(db)
	broker := sessionwatch.NewBroker()
	auth := NewAuthService(s, broker, time.Hour, time.Hour)
	return &testEnv{
		Store:    s,
		Broker:   broker,
		Auth:     auth,
		Profiles: NewProfileService(s),
		Tasks:    NewTaskService(s),
		Partners: NewPartnerService(s, auth),
	}
}

// seedProfile creates a verified profile with a known password.
func (e *testEnv) seedProfile(t *testing.T, email, role, password string) *model.Profile {
	t.Helper()
	hash, err := crypto.HashPassword(password)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}
	now := time.Now()
	p := &model.Profile{
		Name:         "Test " + email,
		Email:        email,
		Role:         role,
		PasswordHash: hash,
		VerifiedAt:   &now,
	}
	if err := e.Store.CreateProfile(context.Background(), p); err != nil {
		t.Fatalf("failed to create profile: %v", err)
	}
	return p
}

// seedTask creates a task directly in the store.
func (e *testEnv) seedTask(t *testing.T, title, createdBy string, assignedTo *string, status string) *model.Task {
	t.Helper()
	task := &model.Task{
		Title:      title,
		Project:    model.DefaultProject,
		Status:     status,
		CreatedBy:  createdBy,
		AssignedTo: assignedTo,
	}
	if err := e.Store.CreateTask(context.Background(), task); err != nil {
		t.Fatalf("failed to create task: %v", err)
	}
	return task
}

func (e *testEnv) taskCount(t *testing.T) int {
	t.Helper()
	tasks, err := e.Store.ListTasks(context.Background())
	if err != nil {
		t.Fatalf("failed to list tasks: %v", err)
	}
	return len(tasks)
}
