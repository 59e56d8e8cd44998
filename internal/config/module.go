package config

import "go.uber.org/fx"

// Module splits a loaded *Config into the sections the other modules depend on.
// The *Config itself is supplied by the caller with fx.Supply.
var Module = fx.Module("config",
	fx.Provide(
		func(c *Config) *FitbitConfig { return &c.Fitbit },
		func(c *Config) *ServerConfig { return &c.Server },
		func(c *Config) *DashboardConfig { return &c.Dashboard },
		func(c *Config) *LoggingConfig { return &c.Logging },
	),
)
