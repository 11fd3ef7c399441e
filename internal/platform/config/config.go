// Copyright (c) 2026 Cuentas Claras. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package config handles application-wide settings and environment parsing.

It leverages 'caarlos0/env' to map OS environment variables into a strongly-typed
Go struct, providing early validation and default values.

Usage:

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}

Architecture:

  - Immutability: Once loaded, configuration is read-only.
  - DI-Friendly: Passed to the session store, the client and the policy loader via constructors.
  - Zero Hidden State: No global variables are used to store config.
*/
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
)

// # Session Backends

const (
	SessionBackendFile   = "file"
	SessionBackendRedis  = "redis"
	SessionBackendMemory = "memory"
)

// # Configuration Schema

// Config holds all runtime configuration for the Cuentas Claras client.
type Config struct {

	// Runtime settings
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	Debug       bool   `env:"DEBUG"       envDefault:"false"`

	// Backend REST API
	APIBaseURL     string        `env:"CC_API_BASE_URL"    envDefault:"http://localhost:3000/api"`
	RefreshPath    string        `env:"CC_REFRESH_PATH"    envDefault:"/auth/refresh"`
	RequestTimeout time.Duration `env:"CC_REQUEST_TIMEOUT" envDefault:"30s"`

	// Outbound rate limiting. Zero RPS disables the limiter.
	RateLimitRPS   float64 `env:"CC_RATE_LIMIT_RPS"   envDefault:"0"`
	RateLimitBurst int     `env:"CC_RATE_LIMIT_BURST" envDefault:"10"`

	// Session persistence
	SessionBackend string `env:"CC_SESSION_BACKEND" envDefault:"file"`
	SessionFile    string `env:"CC_SESSION_FILE"`
	RedisURL       string `env:"CC_REDIS_URL"`

	// Capability allow-list sources. Both are optional; defaults apply when empty.
	PolicyFile    string `env:"CC_POLICY_FILE"`
	DatabaseURL   string `env:"CC_DATABASE_URL"`
	MigrationPath string `env:"CC_MIGRATION_PATH" envDefault:"./data/migrations"`

	// Capability guard server (cuentas serve)
	GuardAddr        string `env:"CC_GUARD_ADDR"       envDefault:":8080"`
	JWTPublicKeyPath string `env:"CC_JWT_PUBLIC_KEY"`
	JWTIssuer        string `env:"CC_JWT_ISSUER"       envDefault:"cuentasclaras.cl"`
}

// # Configuration Loading

// Load parses environment variables into a [Config] struct.
func Load() (*Config, error) {

	// Initialize an empty config struct
	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validate enforces cross-field rules that struct tags cannot express.
func (c *Config) validate() error {
	switch c.SessionBackend {
	case SessionBackendFile, SessionBackendMemory:
	case SessionBackendRedis:
		if c.RedisURL == "" {
			return fmt.Errorf("config: CC_REDIS_URL is required when CC_SESSION_BACKEND=redis")
		}
	default:
		return fmt.Errorf("config: unknown session backend %q", c.SessionBackend)
	}

	if c.APIBaseURL == "" {
		return fmt.Errorf("config: CC_API_BASE_URL must not be empty")
	}

	return nil
}

// SessionFilePath returns the configured session file or the per-user default.
func (c *Config) SessionFilePath() (string, error) {
	if c.SessionFile != "" {
		return c.SessionFile, nil
	}

	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("config: resolve user config dir: %w", err)
	}

	return filepath.Join(dir, "cuentasclaras", "session.json"), nil
}

// IsDevelopment reports whether the client is running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction reports whether the client is running in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
