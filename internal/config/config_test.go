package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_FromEnvironment(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("FITDASH_FITBIT_CLIENT_ID", "client-123")
	t.Setenv("FITDASH_FITBIT_CLIENT_SECRET", "secret-456")

	cfg, err := Load(nil)
	require.NoError(t, err)

	assert.Equal(t, "client-123", cfg.Fitbit.ClientID)
	assert.Equal(t, "secret-456", cfg.Fitbit.ClientSecret)
	assert.Equal(t, DefaultRedirectURI, cfg.Fitbit.RedirectURI)
	assert.Equal(t, DefaultScopes, cfg.Fitbit.Scopes)
	assert.Equal(t, DefaultExpiresIn, cfg.Fitbit.ExpiresIn)
	assert.Equal(t, DefaultRefreshInterval, cfg.Dashboard.RefreshInterval)
	assert.Equal(t, DefaultStepGoal, cfg.Dashboard.StepGoal)
	assert.Equal(t, "localhost:8501", cfg.Server.Addr())
	assert.Equal(t, DefaultSessionIdle, cfg.Server.SessionIdleTimeout)
	assert.Equal(t, DefaultSessionCleanup, cfg.Server.SessionCleanupInterval)
}

func TestLoad_MissingCredentials(t *testing.T) {
	tests := []struct {
		name   string
		id     string
		secret string
	}{
		{name: "both missing"},
		{name: "secret missing", id: "client-123"},
		{name: "id missing", secret: "secret-456"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Chdir(t.TempDir())
			t.Setenv("FITDASH_FITBIT_CLIENT_ID", tt.id)
			t.Setenv("FITDASH_FITBIT_CLIENT_SECRET", tt.secret)

			cfg, err := Load(nil)
			assert.Nil(t, cfg)
			assert.ErrorIs(t, err, ErrMissingCredentials)
		})
	}
}

func TestLoad_ConfigFileAndFlags(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("FITDASH_FITBIT_CLIENT_SECRET", "from-env")

	content := []byte(`
fitbit:
  client_id: from-file
  client_secret: overridden-by-env
  redirect_uri: http://localhost:9000/callback
dashboard:
  refresh_interval: 30s
  step_goal: 8000
server:
  port: 9000
`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), content, 0o600))

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	InitFlags(fs)
	require.NoError(t, fs.Parse([]string{"--refresh-interval=45s"}))

	cfg, err := Load(fs)
	require.NoError(t, err)

	assert.Equal(t, "from-file", cfg.Fitbit.ClientID)
	assert.Equal(t, "from-env", cfg.Fitbit.ClientSecret)
	assert.Equal(t, "http://localhost:9000/callback", cfg.Fitbit.RedirectURI)
	assert.Equal(t, 45*time.Second, cfg.Dashboard.RefreshInterval)
	assert.Equal(t, 8000, cfg.Dashboard.StepGoal)
	assert.Equal(t, 9000, cfg.Server.Port)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Fitbit: FitbitConfig{
				ClientID:     "id",
				ClientSecret: "secret",
				RedirectURI:  DefaultRedirectURI,
			},
			Dashboard: DashboardConfig{
				RefreshInterval: time.Minute,
				StepGoal:        DefaultStepGoal,
			},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "no redirect uri", mutate: func(c *Config) { c.Fitbit.RedirectURI = "" }, wantErr: true},
		{name: "zero refresh interval", mutate: func(c *Config) { c.Dashboard.RefreshInterval = 0 }, wantErr: true},
		{name: "negative step goal", mutate: func(c *Config) { c.Dashboard.StepGoal = -1 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}
