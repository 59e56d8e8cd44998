package middleware

import (
	"context"
	"net/http"

	"github.com/brizzai/fitdash/internal/auth/session"
	"github.com/brizzai/fitdash/internal/logger"
	"go.uber.org/zap"
)

type sessionContextKey struct{}

// WithSession stores the session in the context
func WithSession(ctx context.Context, s *session.Session) context.Context {
	return context.WithValue(ctx, sessionContextKey{}, s)
}

// FromContext returns the session attached by Session, or nil
func FromContext(ctx context.Context) *session.Session {
	s, _ := ctx.Value(sessionContextKey{}).(*session.Session)
	return s
}

// Session resolves the browser's session from its cookie, creating a new
// session and cookie when none is known.
func Session(store *session.Store, cookieName string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var s *session.Session
			if c, err := r.Cookie(cookieName); err == nil {
				s, _ = store.Get(c.Value)
			}
			if s == nil {
				s = store.Create()
				logger.Debug("Created session",
					zap.String("session", s.ID()),
					zap.String("remote_addr", r.RemoteAddr),
				)
				http.SetCookie(w, &http.Cookie{
					Name:     cookieName,
					Value:    s.ID(),
					Path:     "/",
					HttpOnly: true,
					SameSite: http.SameSiteLaxMode,
				})
			}
			next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), s)))
		})
	}
}

// RequireAuthenticated rejects requests whose session holds no credentials
func RequireAuthenticated(unauthorized http.HandlerFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s := FromContext(r.Context())
			if s == nil || s.State() != session.Authenticated {
				unauthorized(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
