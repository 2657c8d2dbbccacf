// Package store provides database operations using GORM. Role-scoped task
// visibility is enforced here, in the queries themselves: a partner-scoped
// list never selects rows assigned to anyone else, so callers cannot receive
// tasks they are not entitled to and then filter client-side.
package store

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/taskdeck/taskdeck/internal/model"
)

// Common errors
var (
	ErrNotFound = errors.New("record not found")
)

// Store wraps GORM DB for database operations.
type Store struct {
	db *gorm.DB
}

// New creates a new Store with the given GORM DB.
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// DB returns the underlying GORM DB for advanced queries.
func (s *Store) DB() *gorm.DB {
	return s.db
}

// --- Profiles ---

func (s *Store) GetProfileByID(ctx context.Context, id string) (*model.Profile, error) {
	var profile model.Profile
	if err := s.db.WithContext(ctx).First(&profile, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &profile, nil
}

func (s *Store) GetProfileByEmail(ctx context.Context, email string) (*model.Profile, error) {
	var profile model.Profile
	if err := s.db.WithContext(ctx).First(&profile, "email = ?", email).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &profile, nil
}

func (s *Store) CreateProfile(ctx context.Context, profile *model.Profile) error {
	return s.db.WithContext(ctx).Create(profile).Error
}

func (s *Store) UpdateProfile(ctx context.Context, profile *model.Profile) error {
	return s.db.WithContext(ctx).Save(profile).Error
}

// ListPartners returns partner-role profiles ordered by creation time
// descending. The role predicate lives in the query, admins never appear.
func (s *Store) ListPartners(ctx context.Context) ([]*model.Profile, error) {
	var profiles []*model.Profile
	err := s.db.WithContext(ctx).
		Where("role = ?", model.RolePartner).
		Order("created_at DESC").
		Find(&profiles).Error
	return profiles, err
}

// DeleteProfile deletes a profile row. Sessions and verification tokens for
// the profile go with it so a removed partner cannot keep an active session.
func (s *Store) DeleteProfile(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("profile_id = ?", id).Delete(&model.UserSession{}).Error; err != nil {
			return err
		}
		if err := tx.Where("profile_id = ?", id).Delete(&model.VerificationToken{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&model.Profile{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// --- Tasks ---

func (s *Store) GetTaskByID(ctx context.Context, id string) (*model.Task, error) {
	var task model.Task
	if err := s.db.WithContext(ctx).First(&task, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &task, nil
}

// ListTasks returns all tasks ordered by creation time descending.
func (s *Store) ListTasks(ctx context.Context) ([]*model.Task, error) {
	var tasks []*model.Task
	err := s.db.WithContext(ctx).
		Order("created_at DESC").
		Find(&tasks).Error
	return tasks, err
}

// ListTasksAssignedTo returns only tasks assigned to the given profile,
// ordered by creation time descending. The assignment predicate is part of
// the query, never applied after the fact.
func (s *Store) ListTasksAssignedTo(ctx context.Context, profileID string) ([]*model.Task, error) {
	var tasks []*model.Task
	err := s.db.WithContext(ctx).
		Where("assigned_to = ?", profileID).
		Order("created_at DESC").
		Find(&tasks).Error
	return tasks, err
}

func (s *Store) CreateTask(ctx context.Context, task *model.Task) error {
	return s.db.WithContext(ctx).Create(task).Error
}

func (s *Store) UpdateTask(ctx context.Context, task *model.Task) error {
	return s.db.WithContext(ctx).Save(task).Error
}

func (s *Store) DeleteTask(ctx context.Context, id string) error {
	result := s.db.WithContext(ctx).Delete(&model.Task{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteTasksByAssignee removes every task assigned to a profile and returns
// how many rows were deleted. Used when removing a partner.
func (s *Store) DeleteTasksByAssignee(ctx context.Context, profileID string) (int64, error) {
	result := s.db.WithContext(ctx).Delete(&model.Task{}, "assigned_to = ?", profileID)
	return result.RowsAffected, result.Error
}

// --- User Sessions ---

func (s *Store) CreateUserSession(ctx context.Context, session *model.UserSession) error {
	return s.db.WithContext(ctx).Create(session).Error
}

func (s *Store) GetUserSessionByToken(ctx context.Context, tokenHash string) (*model.UserSession, error) {
	var session model.UserSession
	if err := s.db.WithContext(ctx).Preload("Profile").First(&session, "token_hash = ?", tokenHash).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &session, nil
}

func (s *Store) DeleteUserSession(ctx context.Context, tokenHash string) error {
	return s.db.WithContext(ctx).Delete(&model.UserSession{}, "token_hash = ?", tokenHash).Error
}

func (s *Store) DeleteExpiredUserSessions(ctx context.Context) error {
	return s.db.WithContext(ctx).Delete(&model.UserSession{}, "expires_at < ?", time.Now()).Error
}

// --- Verification Tokens ---

func (s *Store) CreateVerificationToken(ctx context.Context, token *model.VerificationToken) error {
	return s.db.WithContext(ctx).Create(token).Error
}

func (s *Store) GetVerificationTokenByHash(ctx context.Context, tokenHash string) (*model.VerificationToken, error) {
	var token model.VerificationToken
	if err := s.db.WithContext(ctx).First(&token, "token_hash = ?", tokenHash).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &token, nil
}

func (s *Store) DeleteVerificationToken(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Delete(&model.VerificationToken{}, "id = ?", id).Error
}
