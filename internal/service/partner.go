package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/taskdeck/taskdeck/internal/model"
	"github.com/taskdeck/taskdeck/internal/store"
)

// PartnerService manages the partner roster. Every operation is admin-only.
type PartnerService struct {
	store *store.Store
	auth  *AuthService
}

// NewPartnerService creates a new partner service
func NewPartnerService(s *store.Store, auth *AuthService) *PartnerService {
	return &PartnerService{store: s, auth: auth}
}

// List returns the partner roster, newest first. Admin accounts are not part
// of the roster.
func (s *PartnerService) List(ctx context.Context, profile *model.Profile) ([]*model.Profile, error) {
	if !profile.IsAdmin() {
		return nil, ErrForbidden
	}
	profiles, err := s.store.ListPartners(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list partners: %w", err)
	}
	return profiles, nil
}

// Add creates a new partner account through the same sign-up flow a
// self-registering user goes through: the account starts unverified and the
// returned verification token must be redeemed before first sign-in.
func (s *PartnerService) Add(ctx context.Context, profile *model.Profile, name, email, password string) (string, error) {
	if !profile.IsAdmin() {
		return "", ErrForbidden
	}
	if strings.TrimSpace(name) == "" {
		return "", fmt.Errorf("%w: name is required", ErrValidation)
	}
	return s.auth.SignUp(ctx, email, password, name)
}

// Remove deletes a partner: first every task assigned to them, then the
// profile itself. Both steps are attempted even if the first fails, and a
// failure in either is reported distinctly via RemovalError so the admin
// knows whether orphaned tasks may remain. Admin profiles cannot be removed.
func (s *PartnerService) Remove(ctx context.Context, profile *model.Profile, partnerID string) error {
	if !profile.IsAdmin() {
		return ErrForbidden
	}
	if partnerID == profile.ID {
		return fmt.Errorf("%w: cannot remove your own account", ErrValidation)
	}

	target, err := s.store.GetProfileByID(ctx, partnerID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to fetch partner: %w", err)
	}
	if target.IsAdmin() {
		return fmt.Errorf("%w: cannot remove an admin account", ErrValidation)
	}

	removal := &RemovalError{}

	if n, err := s.store.DeleteTasksByAssignee(ctx, partnerID); err != nil {
		removal.TaskCleanup = err
	} else if n > 0 {
		log.Printf("Removed %d tasks assigned to partner %s", n, partnerID)
	}

	// Profile deletion is attempted regardless of the task cleanup outcome.
	if err := s.store.DeleteProfile(ctx, partnerID); err != nil && !errors.Is(err, store.ErrNotFound) {
		removal.ProfileDelete = err
	}

	if removal.TaskCleanup != nil || removal.ProfileDelete != nil {
		return removal
	}
	return nil
}
