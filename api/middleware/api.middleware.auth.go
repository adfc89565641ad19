package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/fieldworks/meterhub/internal/auth"
	"github.com/fieldworks/meterhub/internal/errors"
	"github.com/fieldworks/meterhub/internal/models"
)

type contextKey string

const userContextKey contextKey = "user"

// AuthMiddleware validates bearer tokens against Keycloak and attaches
// the resolved profile to the request context.
type AuthMiddleware struct {
	auth *auth.Service
}

func NewAuthMiddleware(authSvc *auth.Service) *AuthMiddleware {
	return &AuthMiddleware{auth: authSvc}
}

// Authenticate validates the token and adds the caller profile to context
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := extractToken(r)
		if token == "" {
			handleError(w, errors.NewAuthError("no token provided", nil))
			return
		}

		profile, err := m.auth.Introspect(r.Context(), token)
		if err != nil {
			handleError(w, errors.NewAuthError("invalid token", err))
			return
		}

		ctx := context.WithValue(r.Context(), userContextKey, profile)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireRoles ensures the caller has one of the required roles
func (m *AuthMiddleware) RequireRoles(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			caller := CallerFrom(r.Context())
			if caller == nil {
				handleError(w, errors.NewAuthError("no user context found", nil))
				return
			}

			if !hasAnyRole(caller.Role, roles) {
				handleError(w, errors.NewAuthorizationError("insufficient permissions", nil))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// CallerFrom retrieves the authenticated profile from a request context.
// Returns nil when the request did not pass Authenticate.
func CallerFrom(ctx context.Context) *models.Profile {
	profile, _ := ctx.Value(userContextKey).(*models.Profile)
	return profile
}

// WithCaller returns a context carrying the given profile. Used by tests.
func WithCaller(ctx context.Context, profile *models.Profile) context.Context {
	return context.WithValue(ctx, userContextKey, profile)
}

// Helper functions

func extractToken(r *http.Request) string {
	bearerToken := r.Header.Get("Authorization")
	if len(strings.Split(bearerToken, " ")) == 2 {
		return strings.Split(bearerToken, " ")[1]
	}
	return ""
}

func hasAnyRole(role string, required []string) bool {
	if len(required) == 0 {
		return true
	}
	for _, want := range required {
		if want == "*" || want == role {
			return true
		}
	}
	return false
}

func handleError(w http.ResponseWriter, err error) {
	if apiErr, ok := err.(*errors.APIError); ok {
		http.Error(w, apiErr.Message, apiErr.Code)
		return
	}
	http.Error(w, "Internal Server Error", http.StatusInternalServerError)
}
