package session

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/brizzai/fitdash/internal/auth/constants"
	"github.com/brizzai/fitdash/internal/auth/models"
	"github.com/brizzai/fitdash/internal/auth/providers"
	"github.com/brizzai/fitdash/internal/logger"
	"github.com/brizzai/fitdash/internal/requester"
	"go.uber.org/zap"
)

var (
	// ErrInvalidURL is returned when a pasted redirect URL is not an absolute URL
	ErrInvalidURL = errors.New("invalid URL")
	// ErrNoCodeFound is returned when a redirect URL carries no authorization code
	ErrNoCodeFound = errors.New("no code found in URL")
)

type invalidURLError struct {
	cause error
}

func (e *invalidURLError) Error() string        { return fmt.Sprintf("%s: %v", ErrInvalidURL, e.cause) }
func (e *invalidURLError) Is(target error) bool { return target == ErrInvalidURL }
func (e *invalidURLError) Unwrap() error        { return e.cause }

// State is the authentication state of a session
type State int

const (
	Unauthenticated State = iota
	AwaitingCode
	Authenticated
)

func (s State) String() string {
	switch s {
	case Unauthenticated:
		return "unauthenticated"
	case AwaitingCode:
		return "awaiting_code"
	case Authenticated:
		return "authenticated"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// ExtractCode returns the code query parameter of the URL Fitbit redirected to
func ExtractCode(redirectedURL string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(redirectedURL))
	if err != nil {
		return "", &invalidURLError{cause: err}
	}
	if u.Scheme == "" || u.Host == "" {
		return "", &invalidURLError{cause: fmt.Errorf("%q is not an absolute URL", redirectedURL)}
	}
	code := u.Query().Get(constants.CodeParam)
	if code == "" {
		return "", ErrNoCodeFound
	}
	return code, nil
}

// Session is one user's OAuth state. It is safe for concurrent use.
type Session struct {
	id       string
	provider providers.Provider

	mu          sync.RWMutex
	awaiting    bool
	authCode    string
	credentials *models.Credentials
	flash       string
	lastSeen    time.Time
	ctx         context.Context
	cancel      context.CancelFunc
}

// New creates an unauthenticated session
func New(id string, provider providers.Provider) *Session {
	s := &Session{id: id, provider: provider, lastSeen: time.Now()}
	s.ctx, s.cancel = context.WithCancel(context.Background())
	return s
}

func (s *Session) ID() string {
	return s.id
}

// State derives the authentication state from what the session holds
func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state()
}

func (s *Session) state() State {
	switch {
	case s.credentials != nil:
		return Authenticated
	case s.awaiting || s.authCode != "":
		return AwaitingCode
	default:
		return Unauthenticated
	}
}

// Credentials returns a copy of the tokens, or nil when not authenticated
func (s *Session) Credentials() *models.Credentials {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.credentials == nil {
		return nil
	}
	creds := *s.credentials
	return &creds
}

// Context is cancelled when the session logs out. Work bound to an
// authentication (the poller) should use it.
func (s *Session) Context() context.Context {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ctx
}

// ContextIfAuthenticated returns the session context together with the
// authentication it belongs to, false when the session holds no credentials.
func (s *Session) ContextIfAuthenticated() (context.Context, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.credentials == nil {
		return nil, false
	}
	return s.ctx, true
}

// Touch records activity on the session at now
func (s *Session) Touch(now time.Time) {
	s.mu.Lock()
	if now.After(s.lastSeen) {
		s.lastSeen = now
	}
	s.mu.Unlock()
}

// LastSeen returns the time of the last recorded activity
func (s *Session) LastSeen() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastSeen
}

// BeginAuthorization returns the authorize URL and starts waiting for a code
func (s *Session) BeginAuthorization() string {
	s.mu.Lock()
	if s.state() == Unauthenticated {
		s.awaiting = true
	}
	s.mu.Unlock()
	return s.provider.AuthCodeURL()
}

// SubmitRedirect extracts the code from a pasted redirect URL and exchanges it
func (s *Session) SubmitRedirect(ctx context.Context, redirectedURL string) error {
	code, err := ExtractCode(redirectedURL)
	if err != nil {
		return err
	}
	return s.Exchange(ctx, code)
}

// Exchange trades an authorization code for credentials. On failure the
// session keeps waiting for a code.
func (s *Session) Exchange(ctx context.Context, code string) error {
	if code == "" {
		return ErrNoCodeFound
	}

	s.mu.Lock()
	if s.credentials != nil {
		s.mu.Unlock()
		return nil
	}
	s.awaiting = true
	s.authCode = code
	s.mu.Unlock()

	tok, err := s.provider.ExchangeCode(ctx, code)
	if err != nil {
		logger.Warn("Failed to exchange authorization code", zap.String("session", s.id), zap.Error(err))
		return fmt.Errorf("exchanging authorization code: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	// A logout during the exchange wins
	if s.authCode != code {
		return fmt.Errorf("session was reset during the code exchange")
	}
	s.credentials = models.CredentialsFromToken(tok)
	logger.Info("Session authenticated", zap.String("session", s.id), zap.String("user_id", s.credentials.UserID))
	return nil
}

// Logout forgets the code and the tokens and cancels the session context.
// Calling it on an unauthenticated session is a no-op.
func (s *Session) Logout() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state() == Unauthenticated {
		return
	}
	s.cancel()
	s.awaiting = false
	s.authCode = ""
	s.credentials = nil
	s.flash = ""
	s.ctx, s.cancel = context.WithCancel(context.Background())
	logger.Info("Session logged out", zap.String("session", s.id))
}

// Close cancels the session context for good
func (s *Session) Close() {
	s.Logout()
	s.mu.Lock()
	s.cancel()
	s.mu.Unlock()
}

// Flash stores a message to show on the next page render
func (s *Session) Flash(msg string) {
	s.mu.Lock()
	s.flash = msg
	s.mu.Unlock()
}

// TakeFlash returns and clears the pending message
func (s *Session) TakeFlash() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	msg := s.flash
	s.flash = ""
	return msg
}

// ErrorMessage turns an authentication error into the text shown to the user
func ErrorMessage(err error) string {
	var urlErr *invalidURLError
	var httpErr *requester.HTTPError
	switch {
	case errors.Is(err, ErrNoCodeFound):
		return "No code found in URL."
	case errors.As(err, &urlErr):
		return fmt.Sprintf("Invalid URL format. Error: %v", urlErr.cause)
	case errors.As(err, &httpErr):
		return fmt.Sprintf("Error exchanging code: %v", httpErr)
	default:
		return fmt.Sprintf("Authentication failed: %v", err)
	}
}

// EmptyURLMessage is shown when the user submits without pasting a URL
const EmptyURLMessage = "Please paste the URL."
