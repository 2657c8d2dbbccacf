package middleware

import (
	"context"
	"net/http"

	"github.com/taskdeck/taskdeck/internal/model"
	"github.com/taskdeck/taskdeck/internal/service"
)

type contextKey string

const (
	// ProfileKey holds the resolved *model.Profile for the request
	ProfileKey contextKey = "profile"
)

const sessionCookieName = "taskdeck_session"

// Auth validates the session cookie, resolves the signed-in identity to a
// profile, and stores the profile in the request context. Requests without a
// live session get 401.
func Auth(auth *service.AuthService, profiles *service.ProfileService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(sessionCookieName)
			if err != nil {
				http.Error(w, `{"error":"Authentication required"}`, http.StatusUnauthorized)
				return
			}

			identity, err := auth.ActiveIdentity(r.Context(), cookie.Value)
			if err != nil {
				// Clear invalid cookie
				http.SetCookie(w, &http.Cookie{
					Name:     sessionCookieName,
					Value:    "",
					Path:     "/",
					HttpOnly: true,
					MaxAge:   -1,
				})
				http.Error(w, `{"error":"Session expired"}`, http.StatusUnauthorized)
				return
			}

			profile, err := profiles.Resolve(r.Context(), identity)
			if err != nil {
				// Profile fetch failures are non-fatal for the session; the
				// caller may retry the request
				http.Error(w, `{"error":"Failed to resolve profile"}`, http.StatusInternalServerError)
				return
			}

			ctx := context.WithValue(r.Context(), ProfileKey, profile)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin rejects requests whose profile is not an admin. This is a
// convenience gate in front of the service-layer role checks, which are
// enforced regardless.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		profile := GetProfile(r.Context())
		if profile == nil || !profile.IsAdmin() {
			http.Error(w, `{"error":"Forbidden"}`, http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetProfile extracts the resolved profile from context
func GetProfile(ctx context.Context) *model.Profile {
	if profile, ok := ctx.Value(ProfileKey).(*model.Profile); ok {
		return profile
	}
	return nil
}
