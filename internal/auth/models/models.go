package models

import (
	"time"

	"github.com/brizzai/fitdash/internal/auth/constants"
	"golang.org/x/oauth2"
)

// Credentials are the tokens of an authenticated Fitbit session
type Credentials struct {
	AccessToken  string
	RefreshToken string
	UserID       string
	// Expiry is informational, tokens are never refreshed
	Expiry time.Time
}

// CredentialsFromToken converts a token endpoint response
func CredentialsFromToken(tok *oauth2.Token) *Credentials {
	creds := &Credentials{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		Expiry:       tok.Expiry,
	}
	if userID, ok := tok.Extra(constants.UserIDField).(string); ok {
		creds.UserID = userID
	}
	return creds
}
