package service

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/taskdeck/taskdeck/internal/model"
	"github.com/taskdeck/taskdeck/internal/store"
)

// ProfileService maps signed-in identities to stored profiles.
type ProfileService struct {
	store *store.Store
}

// NewProfileService creates a new profile service
func NewProfileService(s *store.Store) *ProfileService {
	return &ProfileService{store: s}
}

// Resolve fetches the profile for an identity. If no profile row exists (a
// first-time login, or a row lost out-of-band), a default partner profile is
// created from the identity's metadata and returned. Any other backend error
// is wrapped and should be treated as non-fatal by the caller: leave the
// profile unset and allow a retry.
func (s *ProfileService) Resolve(ctx context.Context, identity *Identity) (*model.Profile, error) {
	profile, err := s.store.GetProfileByID(ctx, identity.ID)
	if err == nil {
		return profile, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("failed to fetch profile: %w", err)
	}

	if identity.Email == "" {
		return nil, fmt.Errorf("failed to fetch profile: no row for identity %s and no email to create one", identity.ID)
	}

	name := identity.Name
	if name == "" {
		name = "User"
	}
	profile = &model.Profile{
		ID:    identity.ID,
		Name:  name,
		Email: identity.Email,
		Role:  model.RolePartner,
	}
	if err := s.store.CreateProfile(ctx, profile); err != nil {
		return nil, fmt.Errorf("failed to create default profile: %w", err)
	}
	log.Printf("Created default partner profile for %s", identity.Email)
	return profile, nil
}
