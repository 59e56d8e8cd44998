// Package handler provides HTTP request handling for the web dashboard.
package handler

import (
	"bytes"
	"html/template"
	"net/http"
	"time"

	"github.com/brizzai/fitdash/internal/auth"
	"github.com/brizzai/fitdash/internal/auth/constants"
	"github.com/brizzai/fitdash/internal/auth/middleware"
	"github.com/brizzai/fitdash/internal/auth/session"
	"github.com/brizzai/fitdash/internal/dashboard"
	"github.com/brizzai/fitdash/internal/logger"
	"github.com/brizzai/fitdash/internal/utils"
	"go.uber.org/zap"
)

// fetchingRefresh is how soon the page reloads while the first poll is running
const fetchingRefresh = 2

// Dashboards gives access to the polled data of a session
type Dashboards interface {
	// Snapshot returns the latest snapshot, false before the first poll finished
	Snapshot(s *session.Session) (dashboard.Snapshot, bool)
	// Refresh asks the session's poller for an immediate poll
	Refresh(s *session.Session)
}

// Handler manages HTTP request handling and middleware configuration.
type Handler struct {
	auth        *auth.Service
	dashboards  Dashboards
	redirectURI string
	interval    time.Duration
}

// NewHandler creates a new HTTP handler.
func NewHandler(auth *auth.Service, dashboards Dashboards, redirectURI string, interval time.Duration) *Handler {
	return &Handler{
		auth:        auth,
		dashboards:  dashboards,
		redirectURI: redirectURI,
		interval:    interval,
	}
}

// CreateHTTPHandler creates an HTTP handler with the session middleware and
// the authentication routes. Only /healthz is served without a session.
func (h *Handler) CreateHTTPHandler() http.Handler {
	mux := http.NewServeMux()

	h.auth.RegisterRoutes(mux)
	logger.Info("Registered authentication routes")

	requireAuth := h.auth.RequireAuthenticated(h.unauthorized)
	mux.HandleFunc("GET /{$}", h.handleRoot)
	mux.Handle("POST /refresh", requireAuth(http.HandlerFunc(h.handleRefresh)))
	mux.Handle("GET /api/dashboard", requireAuth(http.HandlerFunc(h.handleAPIDashboard)))

	// Health checks carry no cookie and must not create sessions
	root := http.NewServeMux()
	root.HandleFunc("GET /healthz", h.handleHealth)
	root.Handle("/", h.auth.WrapWithMiddleware(mux))
	return root
}

func (h *Handler) handleRoot(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	if query.Has(constants.CodeParam) || query.Has("error") {
		// The registered redirect URI may point at the application root
		h.auth.HandleCallback(w, r)
		return
	}

	s := middleware.FromContext(r.Context())
	flash := s.TakeFlash()

	if s.State() != session.Authenticated {
		h.render(w, "login.html", loginPage, LoginPageData{
			Flash:       flash,
			LoginPath:   constants.LoginPath,
			SubmitPath:  constants.SubmitPath,
			RedirectURI: h.redirectURI,
		})
		return
	}

	data := DashboardPageData{
		Flash:          flash,
		LogoutPath:     constants.LogoutPath,
		Interval:       h.interval,
		RefreshSeconds: fetchingRefresh,
	}
	if snap, ok := h.dashboards.Snapshot(s); ok {
		data.Snapshot = &snap
		data.RefreshSeconds = int(h.interval.Seconds())
	}
	h.render(w, "dashboard.html", dashboardPage, data)
}

func (h *Handler) handleRefresh(w http.ResponseWriter, r *http.Request) {
	h.dashboards.Refresh(middleware.FromContext(r.Context()))
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handler) handleAPIDashboard(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.dashboards.Snapshot(middleware.FromContext(r.Context()))
	if !ok {
		w.Header().Set("Retry-After", "2")
		utils.WriteJSONStatus(w, http.StatusAccepted, map[string]string{"status": "fetching"})
		return
	}
	utils.WriteJSON(w, snap)
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	utils.WriteJSON(w, map[string]string{"status": "ok"})
}

func (h *Handler) unauthorized(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodGet {
		utils.WriteError(w, "unauthorized", "Authentication required", http.StatusUnauthorized)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handler) render(w http.ResponseWriter, name string, page *template.Template, data any) {
	var buf bytes.Buffer
	if err := page.ExecuteTemplate(&buf, name, data); err != nil {
		logger.Error("Failed to render page", zap.String("page", name), zap.Error(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err := buf.WriteTo(w); err != nil {
		logger.Debug("Failed to write page", zap.String("page", name), zap.Error(err))
	}
}
