package service

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by the service layer. Handlers map these onto
// HTTP statuses; anything else is a backend failure surfaced once, with no
// automatic retry.
var (
	// ErrForbidden means the caller's role does not permit the operation.
	// Role checks live here, not in the UI: hiding a button is a
	// convenience, not a security boundary.
	ErrForbidden = errors.New("forbidden")

	// ErrNotFound means the target record does not exist or is outside the
	// caller's visibility scope.
	ErrNotFound = errors.New("not found")

	// ErrValidation means a required field is missing or empty.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidCredentials covers unknown email and wrong password alike.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrEmailInUse means an account with that email already exists.
	ErrEmailInUse = errors.New("email already registered")

	// ErrWeakPassword means the password does not meet the minimum length.
	ErrWeakPassword = errors.New("password too weak")

	// ErrNotVerified means the account exists but has not completed email
	// confirmation and cannot sign in yet.
	ErrNotVerified = errors.New("email not verified")

	// ErrNoSession means no active session could be resolved.
	ErrNoSession = errors.New("no active session")
)

// RemovalError reports the outcome of a partner removal where one or both
// cleanup steps failed. Task cleanup and profile deletion are always both
// attempted; an admin reading this error knows whether orphaned tasks may
// remain.
type RemovalError struct {
	TaskCleanup   error // failure deleting the partner's assigned tasks, if any
	ProfileDelete error // failure deleting the profile row, if any
}

func (e *RemovalError) Error() string {
	switch {
	case e.TaskCleanup != nil && e.ProfileDelete != nil:
		return fmt.Sprintf("partner removal failed: task cleanup: %v; profile deletion: %v", e.TaskCleanup, e.ProfileDelete)
	case e.TaskCleanup != nil:
		return fmt.Sprintf("partner removed but task cleanup failed, orphaned tasks may remain: %v", e.TaskCleanup)
	default:
		return fmt.Sprintf("partner tasks removed but profile deletion failed: %v", e.ProfileDelete)
	}
}
