package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/brizzai/fitdash/internal/auth/constants"
	"github.com/brizzai/fitdash/internal/auth/middleware"
	"github.com/brizzai/fitdash/internal/auth/session"
	"github.com/brizzai/fitdash/internal/logger"
	"go.uber.org/zap"
)

// AuthenticatedFunc is called once a session has obtained credentials
type AuthenticatedFunc func(s *session.Session)

// Handler handles the OAuth flow of the web dashboard
type Handler struct {
	homePath        string
	onAuthenticated AuthenticatedFunc
}

// NewHandler creates a new Handler that redirects to homePath after every step
func NewHandler(homePath string, onAuthenticated AuthenticatedFunc) *Handler {
	if homePath == "" {
		homePath = "/"
	}
	return &Handler{
		homePath:        homePath,
		onAuthenticated: onAuthenticated,
	}
}

// HandleLogin redirects the browser to the Fitbit authorize page
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	s := middleware.FromContext(r.Context())
	if s == nil {
		http.Error(w, "no session", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, s.BeginAuthorization(), http.StatusFound)
}

// HandleSubmit exchanges the code of a redirect URL pasted into the login form
func (h *Handler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	s := middleware.FromContext(r.Context())
	if s == nil {
		http.Error(w, "no session", http.StatusInternalServerError)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Failed to parse form", http.StatusBadRequest)
		return
	}

	redirectURL := strings.TrimSpace(r.PostForm.Get(constants.RedirectURLField))
	if redirectURL == "" {
		s.Flash(session.EmptyURLMessage)
		h.home(w, r)
		return
	}

	h.complete(r.Context(), s, func(ctx context.Context) error {
		return s.SubmitRedirect(ctx, redirectURL)
	})
	h.home(w, r)
}

// HandleCallback handles the browser being redirected back from Fitbit
func (h *Handler) HandleCallback(w http.ResponseWriter, r *http.Request) {
	s := middleware.FromContext(r.Context())
	if s == nil {
		http.Error(w, "no session", http.StatusInternalServerError)
		return
	}

	query := r.URL.Query()
	if errCode := query.Get("error"); errCode != "" {
		msg := fmt.Sprintf("Authorization denied: %s", errCode)
		if desc := query.Get("error_description"); desc != "" {
			msg += " (" + desc + ")"
		}
		logger.Warn("Authorization callback returned an error", zap.String("session", s.ID()), zap.String("error", errCode))
		s.Flash(msg)
		h.home(w, r)
		return
	}

	code := query.Get(constants.CodeParam)
	if code == "" {
		s.Flash(session.ErrorMessage(session.ErrNoCodeFound))
		h.home(w, r)
		return
	}

	h.complete(r.Context(), s, func(ctx context.Context) error {
		return s.Exchange(ctx, code)
	})
	h.home(w, r)
}

// HandleLogout clears the session
func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if s := middleware.FromContext(r.Context()); s != nil {
		s.Logout()
	}
	h.home(w, r)
}

func (h *Handler) complete(ctx context.Context, s *session.Session, exchange func(context.Context) error) {
	if err := exchange(ctx); err != nil {
		s.Flash(session.ErrorMessage(err))
		return
	}
	s.Flash("Authenticated!")
	if h.onAuthenticated != nil {
		h.onAuthenticated(s)
	}
}

func (h *Handler) home(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, h.homePath, http.StatusSeeOther)
}
