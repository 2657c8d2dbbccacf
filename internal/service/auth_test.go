package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/taskdeck/taskdeck/internal/crypto"
	"github.com/taskdeck/taskdeck/internal/model"
	"github.com/taskdeck/taskdeck/internal/sessionwatch"
)

func TestSignUpThenVerifyThenSignIn(t *testing.T) {
	env := testSetup(t)
	ctx := context.Background()

	verifyToken, err := env.Auth.SignUp(ctx, "new@example.com", "password-123", "New Partner")
	if err != nil {
		t.Fatalf("sign up failed: %v", err)
	}
	if verifyToken == "" {
		t.Fatal("expected a verification token")
	}

	// No session before verification
	if _, _, err := env.Auth.SignIn(ctx, "new@example.com", "password-123"); !errors.Is(err, ErrNotVerified) {
		t.Fatalf("expected ErrNotVerified before verification, got %v", err)
	}

	if err := env.Auth.Verify(ctx, verifyToken); err != nil {
		t.Fatalf("verify failed: %v", err)
	}

	token, profile, err := env.Auth.SignIn(ctx, "new@example.com", "password-123")
	if err != nil {
		t.Fatalf("sign in failed: %v", err)
	}
	if token == "" {
		t.Fatal("expected a session token")
	}
	if profile.Role != model.RolePartner {
		t.Errorf("expected default role partner, got %q", profile.Role)
	}
	if profile.Name != "New Partner" {
		t.Errorf("expected display name kept, got %q", profile.Name)
	}
}

func TestSignUpEmailInUse(t *testing.T) {
	env := testSetup(t)
	env.seedProfile(t, "taken@example.com", model.RolePartner, "password-123")

	if _, err := env.Auth.SignUp(context.Background(), "taken@example.com", "password-123", "Dup"); !errors.Is(err, ErrEmailInUse) {
		t.Fatalf("expected ErrEmailInUse, got %v", err)
	}
}

func TestSignUpWeakPassword(t *testing.T) {
	env := testSetup(t)
	if _, err := env.Auth.SignUp(context.Background(), "weak@example.com", "short", "Weak"); !errors.Is(err, ErrWeakPassword) {
		t.Fatalf("expected ErrWeakPassword, got %v", err)
	}
}

func TestSignInWrongPassword(t *testing.T) {
	env := testSetup(t)
	env.seedProfile(t, "alice@example.com", model.RolePartner, "password-123")

	if _, _, err := env.Auth.SignIn(context.Background(), "alice@example.com", "wrong-password"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestSignInUnknownEmail(t *testing.T) {
	env := testSetup(t)
	if _, _, err := env.Auth.SignIn(context.Background(), "ghost@example.com", "password-123"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestSignOutEndsSession(t *testing.T) {
	env := testSetup(t)
	ctx := context.Background()
	env.seedProfile(t, "alice@example.com", model.RolePartner, "password-123")

	token, _, err := env.Auth.SignIn(ctx, "alice@example.com", "password-123")
	if err != nil {
		t.Fatalf("sign in failed: %v", err)
	}

	if _, err := env.Auth.ActiveIdentity(ctx, token); err != nil {
		t.Fatalf("expected active identity, got %v", err)
	}

	if err := env.Auth.SignOut(ctx, token); err != nil {
		t.Fatalf("sign out failed: %v", err)
	}

	if _, err := env.Auth.ActiveIdentity(ctx, token); !errors.Is(err, ErrNoSession) {
		t.Fatalf("expected ErrNoSession after sign out, got %v", err)
	}
}

func TestActiveIdentityExpiredSession(t *testing.T) {
	env := testSetup(t)
	ctx := context.Background()
	alice := env.seedProfile(t, "alice@example.com", model.RolePartner, "password-123")

	token, err := crypto.NewToken()
	if err != nil {
		t.Fatalf("token error: %v", err)
	}
	session := &model.UserSession{
		ProfileID: alice.ID,
		TokenHash: crypto.HashToken(token),
		ExpiresAt: time.Now().Add(-time.Minute),
	}
	if err := env.Store.CreateUserSession(ctx, session); err != nil {
		t.Fatalf("failed to create session: %v", err)
	}

	if _, err := env.Auth.ActiveIdentity(ctx, token); !errors.Is(err, ErrNoSession) {
		t.Fatalf("expected ErrNoSession for expired session, got %v", err)
	}
}

func TestSessionChangesArePublished(t *testing.T) {
	env := testSetup(t)
	ctx := context.Background()
	env.seedProfile(t, "alice@example.com", model.RolePartner, "password-123")

	sub := env.Broker.Subscribe()
	defer env.Broker.Unsubscribe(sub)

	token, _, err := env.Auth.SignIn(ctx, "alice@example.com", "password-123")
	if err != nil {
		t.Fatalf("sign in failed: %v", err)
	}

	select {
	case e := <-sub.Events:
		if e.Type != sessionwatch.EventSignedIn || e.Email != "alice@example.com" {
			t.Errorf("unexpected event: %+v", e)
		}
	case <-time.After(time.Second):
		t.Fatal("no sign-in event published")
	}

	if err := env.Auth.SignOut(ctx, token); err != nil {
		t.Fatalf("sign out failed: %v", err)
	}

	select {
	case e := <-sub.Events:
		if e.Type != sessionwatch.EventSignedOut {
			t.Errorf("unexpected event: %+v", e)
		}
	case <-time.After(time.Second):
		t.Fatal("no sign-out event published")
	}
}

func TestVerifyExpiredToken(t *testing.T) {
	env := testSetup(t)
	ctx := context.Background()
	alice := env.seedProfile(t, "alice@example.com", model.RolePartner, "password-123")
	alice.VerifiedAt = nil
	if err := env.Store.UpdateProfile(ctx, alice); err != nil {
		t.Fatalf("failed to update profile: %v", err)
	}

	token, err := crypto.NewToken()
	if err != nil {
		t.Fatalf("token error: %v", err)
	}
	vt := &model.VerificationToken{
		ProfileID: alice.ID,
		TokenHash: crypto.HashToken(token),
		ExpiresAt: time.Now().Add(-time.Minute),
	}
	if err := env.Store.CreateVerificationToken(ctx, vt); err != nil {
		t.Fatalf("failed to create token: %v", err)
	}

	if err := env.Auth.Verify(ctx, token); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for expired token, got %v", err)
	}
}
