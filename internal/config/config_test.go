package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{EnvAPIURL, EnvTimeout, EnvStorePath, EnvLogLevel, EnvRedisURL, EnvLegacyActorHeader} {
		t.Setenv(key, "")
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "teammatch.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, DefaultAPIURL, cfg.APIURL)
	assert.Equal(t, 10*time.Second, cfg.Timeout)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.NotEmpty(t, cfg.StorePath)
	assert.False(t, cfg.LegacyActorHeader)
	assert.Equal(t, 0, cfg.ToastLimit)
}

func TestLoad_YAMLFile(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
api_url: https://teams.example.com/api
timeout: 5s
store_path: /tmp/teammatch-test.db
log_level: debug
legacy_actor_header: true
toast_limit: 20
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://teams.example.com/api", cfg.APIURL)
	assert.Equal(t, 5*time.Second, cfg.Timeout)
	assert.Equal(t, "/tmp/teammatch-test.db", cfg.StorePath)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.True(t, cfg.LegacyActorHeader)
	assert.Equal(t, 20, cfg.ToastLimit)
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, "log_level: warn\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultAPIURL, cfg.APIURL)
	assert.Equal(t, DefaultTimeout, cfg.Timeout)
	assert.Equal(t, "warn", cfg.LogLevel)
}

func TestLoad_EnvironmentOverridesFile(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, "api_url: https://file.example.com/api\n")
	t.Setenv(EnvAPIURL, "http://env.example.com:9000/api")
	t.Setenv(EnvTimeout, "2s")
	t.Setenv(EnvLegacyActorHeader, "true")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "http://env.example.com:9000/api", cfg.APIURL)
	assert.Equal(t, 2*time.Second, cfg.Timeout)
	assert.True(t, cfg.LegacyActorHeader)
}

func TestLoad_InvalidEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvTimeout, "soon")
	_, err := Load("")
	assert.Error(t, err)

	clearEnv(t)
	t.Setenv(EnvLegacyActorHeader, "maybe")
	_, err = Load("")
	assert.Error(t, err)
}

func TestLoad_FileErrors(t *testing.T) {
	clearEnv(t)

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := writeConfig(t, "api_url: [unterminated\n")
	_, err = Load(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "defaults are valid", mutate: func(*Config) {}},
		{name: "https base URL", mutate: func(c *Config) { c.APIURL = "https://api.example.com" }},
		{name: "relative URL", mutate: func(c *Config) { c.APIURL = "/api" }, wantErr: true},
		{name: "ftp URL", mutate: func(c *Config) { c.APIURL = "ftp://example.com" }, wantErr: true},
		{name: "zero timeout", mutate: func(c *Config) { c.Timeout = 0 }, wantErr: true},
		{name: "negative toast limit", mutate: func(c *Config) { c.ToastLimit = -1 }, wantErr: true},
		{name: "unknown log level", mutate: func(c *Config) { c.LogLevel = "loud" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
