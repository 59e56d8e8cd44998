package auth

import (
	"context"
	"net/http"
	"sync"

	"github.com/brizzai/fitdash/internal/auth/constants"
	"github.com/brizzai/fitdash/internal/auth/handlers"
	"github.com/brizzai/fitdash/internal/auth/middleware"
	"github.com/brizzai/fitdash/internal/auth/providers"
	"github.com/brizzai/fitdash/internal/auth/session"
	"github.com/brizzai/fitdash/internal/config"
)

// Service represents the OAuth service of the web dashboard
type Service struct {
	config       *config.ServerConfig
	authProvider providers.Provider
	store        *session.Store
	cleanup      *session.CleanupManager
	handler      *handlers.Handler

	mu        sync.RWMutex
	listeners []handlers.AuthenticatedFunc
}

// NewService creates a new OAuth service
func NewService(cfg *config.ServerConfig, provider providers.Provider, store *session.Store) *Service {
	s := &Service{
		config:       cfg,
		authProvider: provider,
		store:        store,
		cleanup:      session.NewCleanupManager(store, cfg.SessionCleanupInterval, cfg.SessionIdleTimeout),
	}
	s.handler = handlers.NewHandler("/", s.notifyAuthenticated)
	return s
}

// RegisterRoutes registers all OAuth-related routes
func (s *Service) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET "+constants.LoginPath, s.handler.HandleLogin)
	mux.HandleFunc("POST "+constants.SubmitPath, s.handler.HandleSubmit)
	mux.HandleFunc("POST "+constants.LogoutPath, s.handler.HandleLogout)
	mux.HandleFunc("GET "+constants.CallbackPath, s.handler.HandleCallback)
}

// HandleCallback exposes the callback handler for hosts whose redirect URI is the app root
func (s *Service) HandleCallback(w http.ResponseWriter, r *http.Request) {
	s.handler.HandleCallback(w, r)
}

// WrapWithMiddleware attaches the browser session to every request
func (s *Service) WrapWithMiddleware(handler http.Handler) http.Handler {
	return middleware.Session(s.store, s.config.CookieName)(handler)
}

// RequireAuthenticated returns the middleware guarding authenticated routes
func (s *Service) RequireAuthenticated(unauthorized http.HandlerFunc) func(http.Handler) http.Handler {
	return middleware.RequireAuthenticated(unauthorized)
}

// OnAuthenticated registers fn to run whenever a session authenticates
func (s *Service) OnAuthenticated(fn handlers.AuthenticatedFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

func (s *Service) notifyAuthenticated(sess *session.Session) {
	s.mu.RLock()
	listeners := append([]handlers.AuthenticatedFunc(nil), s.listeners...)
	s.mu.RUnlock()
	for _, fn := range listeners {
		fn(sess)
	}
}

// GetProvider returns the configured auth provider
func (s *Service) GetProvider() providers.Provider {
	return s.authProvider
}

// Store returns the session store
func (s *Service) Store() *session.Store {
	return s.store
}

// Start begins dropping idle sessions until Shutdown
func (s *Service) Start(ctx context.Context) {
	s.cleanup.Start(ctx)
}

// Shutdown stops the idle cleanup and logs out every session, which stops their pollers
func (s *Service) Shutdown() {
	s.cleanup.Stop()
	s.store.Range(func(sess *session.Session) bool {
		s.store.Delete(sess.ID())
		return true
	})
}
