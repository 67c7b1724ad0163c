// Package config loads server settings from the environment.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"strconv"
	"strings"
)

// Storage backends
const (
	StorageMemory   = "memory"
	StorageSQLite   = "sqlite"
	StoragePostgres = "postgres"
	StorageRedis    = "redis"
)

// Config holds server settings
type Config struct {
	Host   string
	Port   int
	AppEnv string

	StorageType string
	SQLitePath  string
	DatabaseURL string
	RedisURL    string

	LogFormat string
	LogLevel  slog.Level

	MetricsEnabled          bool
	AuditSchedule           string
	LeaderboardDefaultLimit int
}

// Load reads the configuration from the process environment
func Load() (*Config, error) {
	return LoadFrom(os.Getenv)
}

// LoadFrom reads the configuration through getenv
func LoadFrom(getenv func(string) string) (*Config, error) {
	env := envReader{getenv: getenv}

	cfg := &Config{
		Host:                    env.str("HOST", ""),
		Port:                    env.int("PORT", 3000),
		AppEnv:                  env.str("APP_ENV", "development"),
		StorageType:             strings.ToLower(env.str("STORAGE_TYPE", StorageSQLite)),
		SQLitePath:              env.str("SQLITE_PATH", "database/tictactoe.db"),
		DatabaseURL:             env.str("DATABASE_URL", ""),
		RedisURL:                env.str("REDIS_URL", ""),
		LogFormat:               strings.ToLower(env.str("LOG_FORMAT", "json")),
		LogLevel:                env.level("LOG_LEVEL", slog.LevelInfo),
		MetricsEnabled:          env.bool("METRICS_ENABLED", true),
		AuditSchedule:           env.raw("AUDIT_SCHEDULE", "@hourly"),
		LeaderboardDefaultLimit: env.int("LEADERBOARD_DEFAULT_LIMIT", 10),
	}

	if len(env.errs) > 0 {
		return nil, errors.Join(env.errs...)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks cross-field requirements
func (c *Config) Validate() error {
	var errs []error
	if c.Port < 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("PORT out of range: %d", c.Port))
	}
	switch c.StorageType {
	case StorageMemory:
	case StorageSQLite:
		if c.SQLitePath == "" {
			errs = append(errs, errors.New("SQLITE_PATH required when STORAGE_TYPE=sqlite"))
		}
	case StoragePostgres:
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL required when STORAGE_TYPE=postgres"))
		}
	case StorageRedis:
		if c.RedisURL == "" {
			errs = append(errs, errors.New("REDIS_URL required when STORAGE_TYPE=redis"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown STORAGE_TYPE %q", c.StorageType))
	}
	if c.LogFormat != "json" && c.LogFormat != "text" {
		errs = append(errs, fmt.Errorf("unknown LOG_FORMAT %q", c.LogFormat))
	}
	if c.LeaderboardDefaultLimit <= 0 {
		errs = append(errs, fmt.Errorf("LEADERBOARD_DEFAULT_LIMIT must be positive: %d", c.LeaderboardDefaultLimit))
	}
	return errors.Join(errs...)
}

// Addr returns the listen address
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// IsProduction reports whether error details must be hidden from clients
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// NewLogger builds the process logger: JSON for machines, text for humans
func (c *Config) NewLogger(w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: c.LogLevel}
	if c.LogFormat == "text" {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

type envReader struct {
	getenv func(string) string
	errs   []error
}

func (e *envReader) str(key, def string) string {
	if v := strings.TrimSpace(e.getenv(key)); v != "" {
		return v
	}
	return def
}

// raw is like str, but "off", "none" or "disabled" yield an empty value
func (e *envReader) raw(key, def string) string {
	v := strings.TrimSpace(e.getenv(key))
	switch strings.ToLower(v) {
	case "":
		return def
	case "off", "none", "disabled":
		return ""
	}
	return v
}

func (e *envReader) int(key string, def int) int {
	v := strings.TrimSpace(e.getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		e.errs = append(e.errs, fmt.Errorf("%s: %w", key, err))
		return def
	}
	return n
}

func (e *envReader) bool(key string, def bool) bool {
	v := strings.TrimSpace(e.getenv(key))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		e.errs = append(e.errs, fmt.Errorf("%s: %w", key, err))
		return def
	}
	return b
}

func (e *envReader) level(key string, def slog.Level) slog.Level {
	v := strings.TrimSpace(e.getenv(key))
	if v == "" {
		return def
	}
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(v)); err != nil {
		e.errs = append(e.errs, fmt.Errorf("%s: %w", key, err))
		return def
	}
	return lvl
}
