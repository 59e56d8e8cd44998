package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Version information - set by GoReleaser during build
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// GetVersionInfo returns a formatted version string
func GetVersionInfo() string {
	return fmt.Sprintf("fitdash version %s, commit %s, built at %s", version, commit, date)
}

// ErrMissingCredentials is returned by Load when the Fitbit client id or secret is not configured.
var ErrMissingCredentials = errors.New("missing Fitbit API credentials")

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Fitbit    FitbitConfig    `mapstructure:"fitbit"`
	Dashboard DashboardConfig `mapstructure:"dashboard"`
}

type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	Host            string        `mapstructure:"host"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	CookieName      string        `mapstructure:"cookie_name"`
	// Sessions without a request for SessionIdleTimeout are dropped, checked every SessionCleanupInterval
	SessionIdleTimeout     time.Duration `mapstructure:"session_idle_timeout"`
	SessionCleanupInterval time.Duration `mapstructure:"session_cleanup_interval"`
}

// Addr returns the listen address of the web dashboard
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type LoggingConfig struct {
	Level             string `mapstructure:"level"`
	Format            string `mapstructure:"format"`
	Color             bool   `mapstructure:"color"`
	DisableStacktrace bool   `mapstructure:"disable_stacktrace"`
	OutputPath        string `mapstructure:"output_path"`
	AppendToFile      bool   `mapstructure:"append_to_file"`
	DisableConsole    bool   `mapstructure:"disable_console"`
}

// FitbitConfig holds the OAuth client registration and the API endpoints.
// RedirectURI is the only redirect URI the application uses; it must match
// the one registered on the Fitbit developer site.
type FitbitConfig struct {
	ClientID     string        `mapstructure:"client_id"`
	ClientSecret string        `mapstructure:"client_secret"`
	RedirectURI  string        `mapstructure:"redirect_uri"`
	Scopes       []string      `mapstructure:"scopes"`
	ExpiresIn    int           `mapstructure:"expires_in"`
	AuthURL      string        `mapstructure:"auth_url"`
	TokenURL     string        `mapstructure:"token_url"`
	APIBaseURL   string        `mapstructure:"api_base_url"`
	Timeout      time.Duration `mapstructure:"timeout"`
}

type DashboardConfig struct {
	RefreshInterval time.Duration `mapstructure:"refresh_interval"`
	StepGoal        int           `mapstructure:"step_goal"`
}

// Default values, also registered with viper so that every key can be set from the environment
const (
	DefaultHost            = "localhost"
	DefaultPort            = 8501
	DefaultRedirectURI     = "http://localhost:8501/callback"
	DefaultAuthURL         = "https://www.fitbit.com/oauth2/authorize"
	DefaultTokenURL        = "https://api.fitbit.com/oauth2/token"
	DefaultAPIBaseURL      = "https://api.fitbit.com"
	DefaultExpiresIn       = 87000
	DefaultStepGoal        = 10000
	DefaultRefreshInterval = 2 * time.Minute
	DefaultCookieName      = "fitdash_session"
	DefaultSessionIdle     = 24 * time.Hour
	DefaultSessionCleanup  = 10 * time.Minute
)

// DefaultScopes are the Fitbit scopes the dashboard needs
var DefaultScopes = []string{"heartrate", "activity", "profile"}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", DefaultHost)
	v.SetDefault("server.port", DefaultPort)
	v.SetDefault("server.shutdown_timeout", 5*time.Second)
	v.SetDefault("server.cookie_name", DefaultCookieName)
	v.SetDefault("server.session_idle_timeout", DefaultSessionIdle)
	v.SetDefault("server.session_cleanup_interval", DefaultSessionCleanup)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.color", true)
	v.SetDefault("logging.disable_stacktrace", false)
	v.SetDefault("logging.output_path", "")
	v.SetDefault("logging.append_to_file", false)
	v.SetDefault("logging.disable_console", false)

	// Empty defaults make the secrets visible to AutomaticEnv during Unmarshal
	v.SetDefault("fitbit.client_id", "")
	v.SetDefault("fitbit.client_secret", "")
	v.SetDefault("fitbit.redirect_uri", DefaultRedirectURI)
	v.SetDefault("fitbit.scopes", DefaultScopes)
	v.SetDefault("fitbit.expires_in", DefaultExpiresIn)
	v.SetDefault("fitbit.auth_url", DefaultAuthURL)
	v.SetDefault("fitbit.token_url", DefaultTokenURL)
	v.SetDefault("fitbit.api_base_url", DefaultAPIBaseURL)
	v.SetDefault("fitbit.timeout", 30*time.Second)

	v.SetDefault("dashboard.refresh_interval", DefaultRefreshInterval)
	v.SetDefault("dashboard.step_goal", DefaultStepGoal)
}

// flagKeys maps command line flags to configuration keys
var flagKeys = map[string]string{
	"config":           "config",
	"host":             "server.host",
	"port":             "server.port",
	"redirect-uri":     "fitbit.redirect_uri",
	"refresh-interval": "dashboard.refresh_interval",
	"log-level":        "logging.level",
	"log-format":       "logging.format",
}

// InitFlags registers the configuration flags on fs (without parsing)
func InitFlags(fs *pflag.FlagSet) {
	fs.String("config", "", "Path to a config file (default ./config.yaml or /etc/fitdash/config.yaml)")
	fs.String("host", DefaultHost, "Host the web dashboard listens on")
	fs.Int("port", DefaultPort, "Port the web dashboard listens on")
	fs.String("redirect-uri", DefaultRedirectURI, "OAuth redirect URI registered with Fitbit")
	fs.Duration("refresh-interval", DefaultRefreshInterval, "How often the dashboard polls the Fitbit API")
	fs.String("log-level", "info", "Log level (debug|info|warn|error)")
	fs.String("log-format", "console", "Log format (console|json)")
}

// Load reads configuration from flags, FITDASH_* environment variables and an optional config file.
// fs may be nil when no flags are available.
func Load(fs *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("FITDASH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if fs != nil {
		for name, key := range flagKeys {
			if f := fs.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, err
				}
			}
		}
	}

	if cfgFile := v.GetString("config"); cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/fitdash")
	}

	if err := v.ReadInConfig(); err != nil {
		// The config file is optional, secrets usually come from the environment
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// Validate checks the values the dashboard cannot run without
func (c *Config) Validate() error {
	var missing []string
	if c.Fitbit.ClientID == "" {
		missing = append(missing, "fitbit.client_id (FITDASH_FITBIT_CLIENT_ID)")
	}
	if c.Fitbit.ClientSecret == "" {
		missing = append(missing, "fitbit.client_secret (FITDASH_FITBIT_CLIENT_SECRET)")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: set %s", ErrMissingCredentials, strings.Join(missing, " and "))
	}

	if c.Fitbit.RedirectURI == "" {
		return fmt.Errorf("fitbit.redirect_uri is required, please adjust the config or pass --redirect-uri")
	}
	if c.Dashboard.RefreshInterval <= 0 {
		return fmt.Errorf("dashboard.refresh_interval must be positive, got %s", c.Dashboard.RefreshInterval)
	}
	if c.Dashboard.StepGoal <= 0 {
		return fmt.Errorf("dashboard.step_goal must be positive, got %d", c.Dashboard.StepGoal)
	}
	return nil
}
