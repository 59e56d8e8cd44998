package providers

import (
	"context"
	"errors"
	"strconv"

	"github.com/brizzai/fitdash/internal/auth/constants"
	"github.com/brizzai/fitdash/internal/config"
	"github.com/brizzai/fitdash/internal/logger"
	"github.com/brizzai/fitdash/internal/requester"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

type FitbitProvider struct {
	oauth2Config *oauth2.Config
	expiresIn    int
}

var _ Provider = (*FitbitProvider)(nil)

func NewFitbitProvider(cfg *config.FitbitConfig) *FitbitProvider {
	return &FitbitProvider{
		oauth2Config: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURI,
			Scopes:       cfg.Scopes,
			Endpoint: oauth2.Endpoint{
				AuthURL:  cfg.AuthURL,
				TokenURL: cfg.TokenURL,
				// Fitbit expects the client credentials as HTTP Basic auth
				AuthStyle: oauth2.AuthStyleInHeader,
			},
		},
		expiresIn: cfg.ExpiresIn,
	}
}

// AuthCodeURL builds the Fitbit authorize URL. No state parameter is sent.
func (p *FitbitProvider) AuthCodeURL() string {
	opts := []oauth2.AuthCodeOption{
		oauth2.SetAuthURLParam(constants.PromptParam, constants.PromptConsent),
	}
	if p.expiresIn > 0 {
		opts = append(opts, oauth2.SetAuthURLParam(constants.ExpiresInParam, strconv.Itoa(p.expiresIn)))
	}
	return p.oauth2Config.AuthCodeURL("", opts...)
}

// ExchangeCode posts the authorization code to the token endpoint. A non-2xx
// response is returned as *requester.HTTPError.
func (p *FitbitProvider) ExchangeCode(ctx context.Context, code string) (*oauth2.Token, error) {
	tok, err := p.oauth2Config.Exchange(ctx, code)
	if err != nil {
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) && retrieveErr.Response != nil {
			logger.Warn("Token exchange rejected", zap.Int("status", retrieveErr.Response.StatusCode))
			return nil, requester.NewHTTPError(retrieveErr.Response.StatusCode, p.oauth2Config.Endpoint.TokenURL, retrieveErr.Body)
		}
		return nil, err
	}
	return tok, nil
}
