package auth

import (
	"github.com/brizzai/fitdash/internal/auth/providers"
	"github.com/brizzai/fitdash/internal/auth/session"
	"go.uber.org/fx"
)

// Module provides the Fitbit provider, the session store and the OAuth service
var Module = fx.Module("auth",
	fx.Provide(
		fx.Annotate(
			providers.NewFitbitProvider,
			fx.As(new(providers.Provider)),
		),
		session.NewStore,
		NewService,
	),
)
