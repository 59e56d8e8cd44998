// Package server provides the web dashboard: the HTTP server, its lifecycle
// and one poller per authenticated session.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/brizzai/fitdash/internal/auth"
	"github.com/brizzai/fitdash/internal/auth/session"
	"github.com/brizzai/fitdash/internal/config"
	"github.com/brizzai/fitdash/internal/dashboard"
	"github.com/brizzai/fitdash/internal/fitbit"
	"github.com/brizzai/fitdash/internal/logger"
	"github.com/brizzai/fitdash/internal/poller"
	"github.com/brizzai/fitdash/internal/server/handler"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	// defaultShutdownTimeout is the maximum time to wait for server shutdown
	defaultShutdownTimeout = 5 * time.Second
)

// Server serves the web dashboard and keeps one poller running per
// authenticated session.
type Server struct {
	config    *config.ServerConfig
	dashboard *config.DashboardConfig
	auth      *auth.Service
	fetcher   fitbit.Fetcher
	handler   http.Handler

	httpServer *http.Server

	mu       sync.Mutex
	trackers map[string]*tracker
}

type Params struct {
	fx.In

	Config    *config.ServerConfig
	Dashboard *config.DashboardConfig
	Fitbit    *config.FitbitConfig
	Auth      *auth.Service
	Fetcher   fitbit.Fetcher
}

// NewServer creates the web dashboard server
func NewServer(p Params) *Server {
	srv := &Server{
		config:    p.Config,
		dashboard: p.Dashboard,
		auth:      p.Auth,
		fetcher:   p.Fetcher,
		trackers:  make(map[string]*tracker),
	}
	p.Auth.OnAuthenticated(func(s *session.Session) {
		srv.track(s)
	})
	srv.handler = handler.NewHandler(p.Auth, srv, p.Fitbit.RedirectURI, p.Dashboard.RefreshInterval).CreateHTTPHandler()
	return srv
}

// Handler returns the root HTTP handler
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start binds the listen address and serves in the background
func (s *Server) Start(context.Context) error {
	addr := s.config.Addr()
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	s.httpServer = &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Bound to the server, not to the start timeout of ctx
	s.auth.Start(context.Background())

	go func() {
		logger.Info("Starting server", zap.String("address", "http://"+ln.Addr().String()))
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server error", zap.Error(err))
		}
	}()
	return nil
}

// Stop shuts the HTTP server down and logs out every session
func (s *Server) Stop(ctx context.Context) error {
	timeout := s.config.ShutdownTimeout
	if timeout <= 0 {
		timeout = defaultShutdownTimeout
	}
	logger.Info("Shutting down server", zap.Duration("timeout", timeout))

	var err error
	if s.httpServer != nil {
		shutdownCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		if shutdownErr := s.httpServer.Shutdown(shutdownCtx); shutdownErr != nil {
			err = fmt.Errorf("server shutdown error: %w", shutdownErr)
		}
	}

	s.auth.Shutdown()
	return err
}

// Snapshot returns the latest snapshot of an authenticated session, starting
// its poller if none is running.
func (s *Server) Snapshot(sess *session.Session) (dashboard.Snapshot, bool) {
	t := s.track(sess)
	if t == nil {
		return dashboard.Snapshot{}, false
	}
	return t.latest()
}

// Refresh triggers an immediate poll for the session
func (s *Server) Refresh(sess *session.Session) {
	if t := s.track(sess); t != nil {
		t.poller.Refresh()
	}
}

// track returns the session's tracker, starting one bound to the session
// context when the session is authenticated and none is running.
func (s *Server) track(sess *session.Session) *tracker {
	if sess == nil {
		return nil
	}
	ctx, ok := sess.ContextIfAuthenticated()
	if !ok {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	// A tracker of a previous login stops on its own once its context is done
	if t, ok := s.trackers[sess.ID()]; ok && t.ctx.Err() == nil {
		return t
	}

	t := newTracker(ctx, sess, s.fetcher, s.dashboard)
	s.trackers[sess.ID()] = t
	go func() {
		t.run()
		s.mu.Lock()
		if s.trackers[sess.ID()] == t {
			delete(s.trackers, sess.ID())
		}
		s.mu.Unlock()
	}()

	logger.Info("Started polling", zap.String("session", sess.ID()), zap.Duration("interval", s.dashboard.RefreshInterval))
	return t
}

// tracker owns a session's poller and its latest snapshot
type tracker struct {
	ctx    context.Context
	poller *poller.Poller
	opts   dashboard.Options

	mu       sync.RWMutex
	snapshot *dashboard.Snapshot
}

func newTracker(ctx context.Context, sess *session.Session, fetcher fitbit.Fetcher, cfg *config.DashboardConfig) *tracker {
	token := func() (string, bool) {
		creds := sess.Credentials()
		if creds == nil {
			return "", false
		}
		return creds.AccessToken, true
	}
	return &tracker{
		ctx:    ctx,
		poller: poller.New(fetcher, token, cfg.RefreshInterval),
		opts:   dashboard.Options{StepGoal: cfg.StepGoal},
	}
}

func (t *tracker) run() {
	t.poller.Run(t.ctx, func(res poller.Result) {
		snap := dashboard.NewSnapshot(res, t.opts)
		t.mu.Lock()
		t.snapshot = &snap
		t.mu.Unlock()
	})
}

func (t *tracker) latest() (dashboard.Snapshot, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.snapshot == nil {
		return dashboard.Snapshot{}, false
	}
	return *t.snapshot, true
}

// Module provides the web dashboard server and ties it to the fx lifecycle
var Module = fx.Module("server",
	fx.Provide(NewServer),
	fx.Invoke(func(lc fx.Lifecycle, s *Server) {
		lc.Append(fx.Hook{
			OnStart: s.Start,
			OnStop:  s.Stop,
		})
	}),
)
