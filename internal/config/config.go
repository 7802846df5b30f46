// Package config provides configuration loading and validation for the teammatch client.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Defaults used when neither the config file nor the environment sets a value.
const (
	DefaultAPIURL   = "http://localhost:8080/api"
	DefaultTimeout  = 10 * time.Second
	DefaultLogLevel = "info"
)

// Environment variables that override file values.
const (
	EnvAPIURL            = "TEAMMATCH_API_URL"
	EnvTimeout           = "TEAMMATCH_TIMEOUT"
	EnvStorePath         = "TEAMMATCH_STORE"
	EnvLogLevel          = "TEAMMATCH_LOG_LEVEL"
	EnvRedisURL          = "TEAMMATCH_REDIS_URL"
	EnvLegacyActorHeader = "TEAMMATCH_LEGACY_ACTOR_HEADER"
)

// Config holds the client settings. Every field is optional in the file.
type Config struct {
	APIURL            string        `yaml:"api_url"`
	Timeout           time.Duration `yaml:"timeout"`
	StorePath         string        `yaml:"store_path"`
	LogLevel          string        `yaml:"log_level"`
	RedisURL          string        `yaml:"redis_url"`
	LegacyActorHeader bool          `yaml:"legacy_actor_header"`
	ToastLimit        int           `yaml:"toast_limit"`
	Metrics           bool          `yaml:"metrics"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		APIURL:    DefaultAPIURL,
		Timeout:   DefaultTimeout,
		StorePath: DefaultStorePath(),
		LogLevel:  DefaultLogLevel,
	}
}

// DefaultStorePath returns the durable store location under the user config directory.
func DefaultStorePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "teammatch", "storage.db")
}

// Load builds the configuration: defaults, then the YAML file at path (if path is
// non-empty), then environment overrides. The result is validated.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		fileCfg, err := LoadFile(path)
		if err != nil {
			return nil, err
		}
		cfg = fileCfg.MergeWithDefaults(cfg)
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadFile reads a YAML config file without applying defaults.
func LoadFile(path string) (*Config, error) {
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config YAML: %w", err)
	}
	return &cfg, nil
}

// MergeWithDefaults returns a copy of c with zero fields taken from defaults.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	if result.APIURL == "" {
		result.APIURL = defaults.APIURL
	}
	if result.Timeout == 0 {
		result.Timeout = defaults.Timeout
	}
	if result.StorePath == "" {
		result.StorePath = defaults.StorePath
	}
	if result.LogLevel == "" {
		result.LogLevel = defaults.LogLevel
	}
	if result.RedisURL == "" {
		result.RedisURL = defaults.RedisURL
	}
	if result.ToastLimit == 0 {
		result.ToastLimit = defaults.ToastLimit
	}

	// Bools cannot tell unset from false; the file value wins.
	return result
}

func (c *Config) applyEnv() error {
	if v := os.Getenv(EnvAPIURL); v != "" {
		c.APIURL = v
	}
	if v := os.Getenv(EnvTimeout); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvTimeout, err)
		}
		c.Timeout = d
	}
	if v := os.Getenv(EnvStorePath); v != "" {
		c.StorePath = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv(EnvRedisURL); v != "" {
		c.RedisURL = v
	}
	if v := os.Getenv(EnvLegacyActorHeader); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvLegacyActorHeader, err)
		}
		c.LegacyActorHeader = b
	}
	return nil
}

// Validate checks that the configuration has usable values.
func (c *Config) Validate() error {
	u, err := url.Parse(c.APIURL)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("config error: 'api_url' must be an http(s) URL, got %q", c.APIURL)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("config error: 'timeout' must be positive")
	}
	if c.ToastLimit < 0 {
		return fmt.Errorf("config error: 'toast_limit' must be non-negative")
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config error: unknown 'log_level' %q", c.LogLevel)
	}
	return nil
}
