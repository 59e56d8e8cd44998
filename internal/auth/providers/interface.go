package providers

import (
	"context"

	"golang.org/x/oauth2"
)

// Provider defines the OAuth operations a dashboard session needs
type Provider interface {
	// AuthCodeURL returns the authorization URL the user opens in a browser
	AuthCodeURL() string

	// ExchangeCode exchanges an authorization code for tokens
	ExchangeCode(ctx context.Context, code string) (*oauth2.Token, error)
}
