package fitbit

import "go.uber.org/fx"

// Module provides the Fitbit API client, as itself and as a Fetcher
var Module = fx.Module("fitbit",
	fx.Provide(
		fx.Annotate(
			NewClient,
			fx.As(fx.Self()),
			fx.As(new(Fetcher)),
		),
	),
)
