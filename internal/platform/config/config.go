// Copyright (c) 2026 Yomira. All rights reserved.
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
  - DI-Friendly: Passed to core components (DB, Redis, mailer) via constructors.
  - Zero Hidden State: No global variables are used to store config.
*/
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// # Configuration Schema

// Config holds all runtime configuration for the accounts API server.
type Config struct {

	// Server settings
	ServerPort  string `env:"SERVER_PORT"  envDefault:"8080"`
	Environment string `env:"ENVIRONMENT"  envDefault:"development"`
	Debug       bool   `env:"DEBUG"        envDefault:"false"`

	// Relational Database (PostgreSQL)
	DatabaseURL      string `env:"DATABASE_URL,required,notEmpty"`
	DatabaseMaxConns int32  `env:"DATABASE_MAX_CONNS" envDefault:"10"`

	// MigrationPath is the filesystem path to the SQL migrations directory.
	MigrationPath string `env:"MIGRATION_PATH" envDefault:"./migrations"`

	// Key-Value Cache (Redis), used for sessions and the login throttle
	RedisURL      string `env:"REDIS_URL,required,notEmpty"`
	RedisPoolSize int    `env:"REDIS_POOL_SIZE" envDefault:"10"`

	// PublicBaseURL prefixes the links embedded in outbound emails.
	PublicBaseURL string `env:"PUBLIC_BASE_URL" envDefault:"http://localhost:8080"`

	// Mail identity and transport. An empty SMTPHost logs messages instead of sending.
	SiteName      string        `env:"SITE_NAME"      envDefault:"Yomira Accounts"`
	MailFrom      string        `env:"MAIL_FROM"      envDefault:"no-reply@localhost"`
	SMTPHost      string        `env:"SMTP_HOST"`
	SMTPPort      int           `env:"SMTP_PORT"      envDefault:"587"`
	SMTPUsername  string        `env:"SMTP_USERNAME"`
	SMTPPassword  string        `env:"SMTP_PASSWORD"`
	NotifyTimeout time.Duration `env:"NOTIFY_TIMEOUT" envDefault:"10s"`

	// Password policy length bounds, layered over the complexity rules.
	PasswordMinLength int `env:"PASSWORD_MIN_LENGTH" envDefault:"8"`
	PasswordMaxLength int `env:"PASSWORD_MAX_LENGTH" envDefault:"20"`

	// Token and session lifetimes
	ResetTokenTTL       time.Duration `env:"RESET_TOKEN_TTL"        envDefault:"24h"`
	RememberSessionTTL  time.Duration `env:"REMEMBER_SESSION_TTL"   envDefault:"720h"`
	EphemeralSessionTTL time.Duration `env:"EPHEMERAL_SESSION_TTL"  envDefault:"12h"`
	ResetPurgeInterval  time.Duration `env:"RESET_PURGE_INTERVAL"   envDefault:"1h"`

	// Login lockout. A zero threshold disables it.
	LoginLockoutThreshold int           `env:"LOGIN_LOCKOUT_THRESHOLD" envDefault:"7"`
	LoginLockoutWindow    time.Duration `env:"LOGIN_LOCKOUT_WINDOW"    envDefault:"15m"`

	// Cross-Origin Resource Sharing, comma separated origin suffixes
	AllowedOrigins string `env:"ALLOWED_ORIGINS"`

	// CookieSecure marks the session cookie Secure. Disable only for local HTTP.
	CookieSecure bool `env:"COOKIE_SECURE" envDefault:"true"`
}

// # Configuration Loading

// Load parses environment variables into a [Config] struct.
func Load() (*Config, error) {

	// Initialize an empty config struct
	cfg := &Config{}

	// This will fail if any field marked with 'required' is missing.
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validate rejects combinations that env tags cannot express.
func (c *Config) validate() error {
	if c.PasswordMinLength < 1 || c.PasswordMaxLength < c.PasswordMinLength {
		return fmt.Errorf("config: invalid password length bounds %d..%d", c.PasswordMinLength, c.PasswordMaxLength)
	}
	if c.ResetTokenTTL <= 0 {
		return fmt.Errorf("config: RESET_TOKEN_TTL must be positive")
	}
	if c.DatabaseMaxConns < 1 || c.RedisPoolSize < 1 {
		return fmt.Errorf("config: pool sizes must be at least 1")
	}
	if c.LoginLockoutThreshold < 0 {
		return fmt.Errorf("config: LOGIN_LOCKOUT_THRESHOLD must not be negative")
	}
	return nil
}

// IsDevelopment reports whether the server is running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction reports whether the server is running in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// Origins splits AllowedOrigins into trimmed, non-empty entries.
func (c *Config) Origins() []string {
	var origins []string
	for _, origin := range strings.Split(c.AllowedOrigins, ",") {
		if trimmed := strings.TrimSpace(origin); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}
