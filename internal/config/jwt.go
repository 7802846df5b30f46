package config

import (
	"fmt"
	"os"
	"strconv"
)

// JWTConfig holds the development backend's token signing settings.
type JWTConfig struct {
	Secret          string
	ExpirationHours int
}

// NewJWTConfig reads JWT_SECRET and JWT_EXPIRATION_HOURS (default: 24).
// When JWT_SECRET is unset, fallbackSecret is used; an empty fallback makes
// the secret required.
func NewJWTConfig(fallbackSecret string) (*JWTConfig, error) {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = fallbackSecret
	}
	if secret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required but not set")
	}

	expirationStr := os.Getenv("JWT_EXPIRATION_HOURS")
	if expirationStr == "" {
		expirationStr = "24"
	}
	expirationHours, err := strconv.Atoi(expirationStr)
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_EXPIRATION_HOURS: %v", err)
	}

	cfg := &JWTConfig{
		Secret:          secret,
		ExpirationHours: expirationHours,
	}
	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *JWTConfig) normalize() error {
	if len(c.Secret) < 16 {
		return fmt.Errorf("JWT secret must be at least 16 bytes")
	}
	if c.ExpirationHours < 1 {
		return fmt.Errorf("JWT_EXPIRATION_HOURS must be at least 1 hour, got: %d", c.ExpirationHours)
	}
	return nil
}
