package requester

import (
	"fmt"
	"net/http"
)

// AuthType represents the type of authentication to use. Token endpoint
// Basic auth is done by oauth2 in auth/providers, API calls use bearer tokens.
type AuthType string

const (
	AuthTypeNone   AuthType = "none"
	AuthTypeBearer AuthType = "bearer"
)

// AuthManager handles request authentication
type AuthManager interface {
	ApplyAuth(req *http.Request) error
}

// HTTPAuthManager implements the AuthManager interface
type HTTPAuthManager struct {
	authType   AuthType
	authConfig map[string]string
}

// NewHTTPAuthManager creates a new HTTPAuthManager
func NewHTTPAuthManager(authType AuthType, authConfig map[string]string) *HTTPAuthManager {
	return &HTTPAuthManager{
		authType:   authType,
		authConfig: authConfig,
	}
}

// NewBearerAuth authenticates requests with an OAuth access token
func NewBearerAuth(accessToken string) *HTTPAuthManager {
	return NewHTTPAuthManager(AuthTypeBearer, map[string]string{"token": accessToken})
}

// ApplyAuth adds authentication to the request
func (a *HTTPAuthManager) ApplyAuth(req *http.Request) error {
	switch a.authType {
	case AuthTypeNone:
		return nil
	case AuthTypeBearer:
		token := a.authConfig["token"]
		if token == "" {
			return fmt.Errorf("bearer auth requires a token")
		}
		req.Header.Set("Authorization", "Bearer "+token)
	default:
		return fmt.Errorf("unsupported auth type: %s", a.authType)
	}
	return nil
}
