// Package config loads application configuration from defaults, an optional
// YAML file and MUSIC_* environment variables, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Validation errors.
var (
	// ErrMissingJWTSecret is returned when no token signing secret is configured.
	ErrMissingJWTSecret = errors.New("missing security.jwt_secrets (MUSIC_SECURITY_JWT_SECRETS)")

	// ErrMissingDatabaseURL is returned when the postgres driver has no URL.
	ErrMissingDatabaseURL = errors.New("missing database.url (MUSIC_DATABASE_URL)")

	// ErrUnknownDriver is returned for database drivers other than postgres and memory.
	ErrUnknownDriver = errors.New("unknown database driver")
)

// Database drivers.
const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Config is the complete application configuration.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Database DatabaseConfig `koanf:"database"`
	Security SecurityConfig `koanf:"security"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Addr            string        `koanf:"addr"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	IdleTimeout     time.Duration `koanf:"idle_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	CORSOrigins     []string      `koanf:"cors_origins"`
}

// DatabaseConfig selects and configures the entity store.
type DatabaseConfig struct {
	Driver   string `koanf:"driver"`
	URL      string `koanf:"url"`
	MaxConns int32  `koanf:"max_conns"`
}

// SecurityConfig configures credentials, tokens and rate limiting.
type SecurityConfig struct {
	// JWTSecrets lists HMAC secrets. The first signs new tokens; all verify.
	JWTSecrets     []string      `koanf:"jwt_secrets"`
	TokenTTL       time.Duration `koanf:"token_ttl"`
	TokenIssuer    string        `koanf:"token_issuer"`
	BcryptCost     int           `koanf:"bcrypt_cost"`
	AuthRateLimit  int           `koanf:"auth_rate_limit"`
	AuthRateWindow time.Duration `koanf:"auth_rate_window"`
	// PolicyFile replaces the built-in access rules when set.
	PolicyFile     string        `koanf:"policy_file"`
}

// LoggingConfig configures zerolog output.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// Validate checks that required values are present and consistent.
func (c *Config) Validate() error {
	if len(c.Security.JWTSecrets) == 0 {
		return ErrMissingJWTSecret
	}
	for i, s := range c.Security.JWTSecrets {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("security.jwt_secrets[%d] is empty", i)
		}
	}
	if c.Security.TokenTTL <= 0 {
		return fmt.Errorf("security.token_ttl must be positive, got %s", c.Security.TokenTTL)
	}

	switch c.Database.Driver {
	case DriverPostgres:
		if c.Database.URL == "" {
			return ErrMissingDatabaseURL
		}
	case DriverMemory:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownDriver, c.Database.Driver)
	}

	if c.Server.Addr == "" {
		return errors.New("server.addr is required")
	}
	return nil
}
