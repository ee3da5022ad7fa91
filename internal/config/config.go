// Package config loads yatube configuration from an optional YAML file and
// YATUBE_* environment variables, then fills in defaults.
package config

import (
	"fmt"
	"time"
)

// Config holds runtime settings for the yatube server.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Database DatabaseConfig `koanf:"database"`
	Log      LogConfig      `koanf:"log"`
	Auth     AuthConfig     `koanf:"auth"`
	Metrics  MetricsConfig  `koanf:"metrics"`
}

type ServerConfig struct {
	Addr            string        `koanf:"addr"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

type DatabaseConfig struct {
	Path string `koanf:"path"`
}

type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// AuthConfig controls sessions, password hashing and login throttling.
// LoginRate is the number of login attempts per minute allowed per client.
type AuthConfig struct {
	CookieName string        `koanf:"cookie_name"`
	SessionTTL time.Duration `koanf:"session_ttl"`
	BcryptCost int           `koanf:"bcrypt_cost"`
	LoginRate  float64       `koanf:"login_rate"`
	LoginBurst int           `koanf:"login_burst"`
}

type MetricsConfig struct {
	Enabled bool `koanf:"enabled"`
}

// Default returns a Config populated with development defaults.
func Default() *Config {
	cfg := preset()
	applyDefaults(cfg)
	return cfg
}

// DefaultLoginRate is the login attempts allowed per minute per client.
const DefaultLoginRate = 10

// preset holds the defaults for fields whose zero value is meaningful
// (metrics.enabled: false, auth.login_rate: 0 disables throttling). They
// are set before unmarshalling so only an explicit setting overrides them.
func preset() *Config {
	return &Config{
		Metrics: MetricsConfig{Enabled: true},
		Auth:    AuthConfig{LoginRate: DefaultLoginRate},
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 10 * time.Second
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 10 * time.Second
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 10 * time.Second
	}
	if cfg.Database.Path == "" {
		cfg.Database.Path = "yatube.db"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.Auth.CookieName == "" {
		cfg.Auth.CookieName = "session_id"
	}
	if cfg.Auth.SessionTTL == 0 {
		cfg.Auth.SessionTTL = 24 * time.Hour
	}
	if cfg.Auth.BcryptCost == 0 {
		cfg.Auth.BcryptCost = 10
	}
	if cfg.Auth.LoginBurst == 0 {
		cfg.Auth.LoginBurst = 5
	}
}

// Validate rejects settings the server cannot run with.
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr is required")
	}
	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}
	if c.Auth.SessionTTL < time.Minute {
		return fmt.Errorf("auth.session_ttl must be at least 1m, got %s", c.Auth.SessionTTL)
	}
	if c.Auth.BcryptCost < 4 || c.Auth.BcryptCost > 31 {
		return fmt.Errorf("auth.bcrypt_cost must be between 4 and 31, got %d", c.Auth.BcryptCost)
	}
	if c.Auth.LoginRate < 0 || c.Auth.LoginBurst < 1 {
		return fmt.Errorf("auth.login_rate must be >= 0 and auth.login_burst >= 1")
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("log.format must be json or console, got %q", c.Log.Format)
	}
	return nil
}
