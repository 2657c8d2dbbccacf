package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/taskdeck/taskdeck/internal/crypto"
	"github.com/taskdeck/taskdeck/internal/model"
	"github.com/taskdeck/taskdeck/internal/sessionwatch"
	"github.com/taskdeck/taskdeck/internal/store"
)

// AuthService handles sign-up, sign-in, sign-out and session resolution.
// Every session change is published to the sessionwatch broker so attached
// listeners can re-resolve the profile and re-scope their data.
type AuthService struct {
	store           *store.Store
	broker          *sessionwatch.Broker
	sessionTTL      time.Duration
	verificationTTL time.Duration
}

// NewAuthService creates a new auth service
func NewAuthService(s *store.Store, broker *sessionwatch.Broker, sessionTTL, verificationTTL time.Duration) *AuthService {
	return &AuthService{
		store:           s,
		broker:          broker,
		sessionTTL:      sessionTTL,
		verificationTTL: verificationTTL,
	}
}

// SignUp creates a pending (unverified) account with the partner role and
// returns a verification token. No session is established: the account
// cannot sign in until the token is redeemed.
func (s *AuthService) SignUp(ctx context.Context, email, password, displayName string) (string, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || !strings.Contains(email, "@") {
		return "", fmt.Errorf("%w: a valid email is required", ErrValidation)
	}
	if len(password) < crypto.MinPasswordLength {
		return "", fmt.Errorf("%w: password must be at least %d characters", ErrWeakPassword, crypto.MinPasswordLength)
	}

	if _, err := s.store.GetProfileByEmail(ctx, email); err == nil {
		return "", ErrEmailInUse
	} else if !errors.Is(err, store.ErrNotFound) {
		return "", fmt.Errorf("failed to check existing account: %w", err)
	}

	hash, err := crypto.HashPassword(password)
	if err != nil {
		return "", err
	}

	name := strings.TrimSpace(displayName)
	if name == "" {
		name = "User"
	}

	profile := &model.Profile{
		Name:         name,
		Email:        email,
		Role:         model.RolePartner,
		PasswordHash: hash,
	}
	if err := s.store.CreateProfile(ctx, profile); err != nil {
		return "", fmt.Errorf("failed to create account: %w", err)
	}

	token, err := s.issueVerificationToken(ctx, profile.ID)
	if err != nil {
		return "", err
	}

	log.Printf("Account created for %s, pending verification", email)
	return token, nil
}

// SignIn checks credentials and establishes a session, returning the opaque
// session token and the signed-in profile. Unknown email and wrong password
// are indistinguishable to the caller.
func (s *AuthService) SignIn(ctx context.Context, email, password string) (string, *model.Profile, error) {
	email = strings.TrimSpace(strings.ToLower(email))

	profile, err := s.store.GetProfileByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, fmt.Errorf("failed to look up account: %w", err)
	}

	if err := crypto.CheckPassword(profile.PasswordHash, password); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	if !profile.IsVerified() {
		return "", nil, ErrNotVerified
	}

	token, err := crypto.NewToken()
	if err != nil {
		return "", nil, err
	}

	session := &model.UserSession{
		ProfileID: profile.ID,
		TokenHash: crypto.HashToken(token),
		ExpiresAt: time.Now().Add(s.sessionTTL),
	}
	if err := s.store.CreateUserSession(ctx, session); err != nil {
		return "", nil, fmt.Errorf("failed to create session: %w", err)
	}

	s.broker.Publish(sessionwatch.Event{
		Type:      sessionwatch.EventSignedIn,
		ProfileID: profile.ID,
		Email:     profile.Email,
	})
	return token, profile, nil
}

// SignOut deletes the session for the given token and publishes a
// "no session" notification. Signing out an already-dead token is a no-op.
func (s *AuthService) SignOut(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := s.store.DeleteUserSession(ctx, crypto.HashToken(token)); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	s.broker.Publish(sessionwatch.Event{Type: sessionwatch.EventSignedOut})
	return nil
}

// Identity is the signed-in principal carried by a session: the opaque
// authentication handle, reduced to its id and email. Role and the rest of
// the application user live on the Profile, resolved separately.
type Identity struct {
	ID    string
	Email string
	Name  string
}

// ActiveIdentity resolves the current session token to a signed-in identity.
// Returns ErrNoSession for missing, unknown, or expired tokens.
func (s *AuthService) ActiveIdentity(ctx context.Context, token string) (*Identity, error) {
	if token == "" {
		return nil, ErrNoSession
	}

	session, err := s.store.GetUserSessionByToken(ctx, crypto.HashToken(token))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrNoSession
		}
		return nil, fmt.Errorf("failed to look up session: %w", err)
	}

	if session.ExpiresAt.Before(time.Now()) {
		return nil, ErrNoSession
	}

	identity := &Identity{ID: session.ProfileID}
	if session.Profile != nil {
		identity.Email = session.Profile.Email
		identity.Name = session.Profile.Name
	}
	return identity, nil
}

// Verify redeems a verification token, marking the account as able to sign
// in. Expired or unknown tokens return ErrNotFound.
func (s *AuthService) Verify(ctx context.Context, token string) error {
	vt, err := s.store.GetVerificationTokenByHash(ctx, crypto.HashToken(token))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to look up verification token: %w", err)
	}
	if vt.ExpiresAt.Before(time.Now()) {
		return ErrNotFound
	}

	profile, err := s.store.GetProfileByID(ctx, vt.ProfileID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to look up profile: %w", err)
	}

	if !profile.IsVerified() {
		now := time.Now()
		profile.VerifiedAt = &now
		if err := s.store.UpdateProfile(ctx, profile); err != nil {
			return fmt.Errorf("failed to mark profile verified: %w", err)
		}
	}

	if err := s.store.DeleteVerificationToken(ctx, vt.ID); err != nil {
		log.Printf("Warning: failed to delete redeemed verification token: %v", err)
	}
	return nil
}

// SweepExpiredSessions runs a background loop deleting expired session rows
// at the given interval until ctx is cancelled.
func (s *AuthService) SweepExpiredSessions(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.store.DeleteExpiredUserSessions(ctx); err != nil && ctx.Err() == nil {
				log.Printf("Warning: failed to sweep expired sessions: %v", err)
			}
		}
	}
}

// issueVerificationToken creates a fresh verification token for a profile.
func (s *AuthService) issueVerificationToken(ctx context.Context, profileID string) (string, error) {
	token, err := crypto.NewToken()
	if err != nil {
		return "", err
	}
	vt := &model.VerificationToken{
		ProfileID: profileID,
		TokenHash: crypto.HashToken(token),
		ExpiresAt: time.Now().Add(s.verificationTTL),
	}
	if err := s.store.CreateVerificationToken(ctx, vt); err != nil {
		return "", fmt.Errorf("failed to create verification token: %w", err)
	}
	return token, nil
}
