package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/rhale/trailtime/internal/api/apierr"
	"github.com/rhale/trailtime/internal/services/auth"
)

type contextKey string

const sessionContextKey contextKey = "session"

// Auth creates authentication middleware requiring any valid session
func Auth(authService *auth.Service) func(http.Handler) http.Handler {
	return requireSession(authService, func(*auth.Session) bool { return true })
}

// StaffAuth creates authentication middleware requiring a staff session
func StaffAuth(authService *auth.Service) func(http.Handler) http.Handler {
	return requireSession(authService, func(s *auth.Session) bool {
		return s.Role == auth.RoleStaff
	})
}

func requireSession(authService *auth.Service, allowed func(*auth.Session) bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractToken(r)
			if token == "" {
				apierr.WriteError(w, apierr.NewUnauthorizedError())
				return
			}

			session, err := authService.ValidateSession(token)
			if err != nil {
				apierr.WriteError(w, err)
				return
			}
			if !allowed(session) {
				apierr.WriteError(w, apierr.NewForbiddenError())
				return
			}

			ctx := context.WithValue(r.Context(), sessionContextKey, session)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetSession returns the session from the request context, if any
func GetSession(ctx context.Context) (*auth.Session, bool) {
	session, ok := ctx.Value(sessionContextKey).(*auth.Session)
	return session, ok
}

// MustGetSession returns the session from the context; panics if absent.
// Only call from handlers behind the auth middleware.
func MustGetSession(ctx context.Context) *auth.Session {
	session, ok := GetSession(ctx)
	if !ok {
		panic("no session in context")
	}
	return session
}

// extractToken extracts the session token from the request
func extractToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}

	cookie, err := r.Cookie("session")
	if err == nil {
		return cookie.Value
	}

	return ""
}
