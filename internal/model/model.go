// Package model defines the database models used throughout the application.
// These models work with both PostgreSQL and SQLite via GORM.
package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Profile roles. A profile's role is assigned server-side and never changed
// through the API.
const (
	RoleAdmin   = "admin"
	RolePartner = "partner"
)

// Task status values. Status always moves through the fixed cycle
// Pending -> In Progress -> Completed -> Pending.
const (
	StatusPending    = "Pending"
	StatusInProgress = "In Progress"
	StatusCompleted  = "Completed"
)

// DefaultProject is assigned to tasks created without a project.
const DefaultProject = "General"

// NextStatus returns the status following s in the fixed cycle. Unknown
// values reset to Pending.
func NextStatus(s string) string {
	switch s {
	case StatusPending:
		return StatusInProgress
	case StatusInProgress:
		return StatusCompleted
	default:
		return StatusPending
	}
}

// ValidStatus reports whether s is one of the three enumerated statuses.
func ValidStatus(s string) bool {
	return s == StatusPending || s == StatusInProgress || s == StatusCompleted
}

// Profile represents an application user. The ID doubles as the identity ID:
// there is exactly one profile per signed-up identity.
type Profile struct {
	ID           string     `gorm:"primaryKey;type:text" json:"id"`
	Name         string     `gorm:"not null;type:text" json:"name"`
	Email        string     `gorm:"uniqueIndex;not null;type:text" json:"email"`
	Role         string     `gorm:"not null;type:text;default:partner" json:"role"`
	PasswordHash string     `gorm:"column:password_hash;not null;type:text" json:"-"`
	VerifiedAt   *time.Time `gorm:"column:verified_at" json:"verified_at,omitempty"`
	CreatedAt    time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Profile) TableName() string { return "profiles" }

func (p *Profile) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	return nil
}

// IsAdmin reports whether the profile has the admin role.
func (p *Profile) IsAdmin() bool { return p.Role == RoleAdmin }

// IsVerified reports whether the account completed email verification.
func (p *Profile) IsVerified() bool { return p.VerifiedAt != nil }

// Task is a unit of work. AssignedTo references a profile; tasks assigned to
// a partner are deleted when that partner is removed.
type Task struct {
	ID         string     `gorm:"primaryKey;type:text" json:"id"`
	Title      string     `gorm:"not null;type:text" json:"title"`
	Project    string     `gorm:"not null;type:text;default:General" json:"project"`
	AssignedTo *string    `gorm:"column:assigned_to;type:text;index" json:"assigned_to,omitempty"`
	DueDate    *time.Time `gorm:"column:due_date" json:"due_date,omitempty"`
	Status     string     `gorm:"not null;type:text;default:Pending" json:"status"`
	CreatedBy  string     `gorm:"column:created_by;not null;type:text" json:"created_by"`
	CreatedAt  time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Task) TableName() string { return "tasks" }

func (t *Task) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	return nil
}

// UserSession represents an authentication session (cookie-based).
type UserSession struct {
	ID        string    `gorm:"primaryKey;type:text" json:"id"`
	ProfileID string    `gorm:"column:profile_id;not null;type:text;index" json:"profile_id"`
	TokenHash string    `gorm:"column:token_hash;uniqueIndex;not null;type:text" json:"token_hash"`
	ExpiresAt time.Time `gorm:"column:expires_at;not null;index" json:"expires_at"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`

	Profile *Profile `gorm:"foreignKey:ProfileID" json:"-"`
}

func (UserSession) TableName() string { return "user_sessions" }

func (s *UserSession) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	return nil
}

// VerificationToken is a pending email-confirmation token. An account cannot
// sign in until a token for it has been redeemed.
type VerificationToken struct {
	ID        string    `gorm:"primaryKey;type:text" json:"id"`
	ProfileID string    `gorm:"column:profile_id;not null;type:text;index" json:"profile_id"`
	TokenHash string    `gorm:"column:token_hash;uniqueIndex;not null;type:text" json:"token_hash"`
	ExpiresAt time.Time `gorm:"column:expires_at;not null" json:"expires_at"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`

	Profile *Profile `gorm:"foreignKey:ProfileID" json:"-"`
}

func (VerificationToken) TableName() string { return "verification_tokens" }

func (v *VerificationToken) BeforeCreate(tx *gorm.DB) error {
	if v.ID == "" {
		v.ID = uuid.New().String()
	}
	return nil
}

// AllModels returns all models for migration.
func AllModels() []any {
	return []any{
		&Profile{},
		&Task{},
		&UserSession{},
		&VerificationToken{},
	}
}
