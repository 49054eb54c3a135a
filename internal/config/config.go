package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"time"
)

type Config struct {
	Database DatabaseConfig `koanf:"database"`
	JWT      JWTConfig      `koanf:"jwt"`
	App      AppConfig      `koanf:"app"`
	Summary  SummaryConfig  `koanf:"summary"`
	Metrics  MetricsConfig  `koanf:"metrics"`
}

type DatabaseConfig struct {
	// URL overrides the discrete connection fields when set
	URL             string        `koanf:"url"`
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	User            string        `koanf:"user"`
	Password        string        `koanf:"password"`
	Name            string        `koanf:"name"`
	SSLMode         string        `koanf:"ssl_mode"`
	MaxConns        int32         `koanf:"max_conns"`
	MinConns        int32         `koanf:"min_conns"`
	MaxConnLifetime time.Duration `koanf:"max_conn_lifetime"`
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret           string        `koanf:"secret"`
	AccessExpiration time.Duration `koanf:"access_expiration"`
}

// AppConfig holds application configuration
type AppConfig struct {
	Name            string        `koanf:"name"`
	Version         string        `koanf:"version"`
	Port            int           `koanf:"port"`
	Env             string        `koanf:"env"`
	LogLevel        string        `koanf:"log_level"`
	Timezone        string        `koanf:"timezone"`
	CORSOrigins     []string      `koanf:"cors_origins"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	RankingTopN     int           `koanf:"ranking_top_n"`
}

// SummaryConfig controls the scheduled summary cache refresh
type SummaryConfig struct {
	// RefreshInterval of 0 disables the scheduled refresh
	RefreshInterval  time.Duration `koanf:"refresh_interval"`
	RefreshTimeout   time.Duration `koanf:"refresh_timeout"`
	RefreshOnStartup bool          `koanf:"refresh_on_startup"`
	StreamBuffer     int           `koanf:"stream_buffer"`
}

type MetricsConfig struct {
	Enabled   bool   `koanf:"enabled"`
	Namespace string `koanf:"namespace"`
	Path      string `koanf:"path"`
}

// New returns a Config holding the defaults
func New() *Config {
	return &Config{
		Database: DatabaseConfig{
			Host:     "localhost",
			Port:     5432,
			User:     "postgres",
			Name:     "deskmetrics",
			SSLMode:  "disable",
			MaxConns: 25,
			MinConns: 5,
		},
		JWT: JWTConfig{
			AccessExpiration: time.Hour,
		},
		App: AppConfig{
			Name:            "deskmetrics",
			Version:         "v1.0.0",
			Port:            8080,
			Env:             "development",
			LogLevel:        "info",
			Timezone:        "America/Sao_Paulo",
			CORSOrigins:     []string{"http://localhost:3000"},
			ShutdownTimeout: 15 * time.Second,
			RankingTopN:     3,
		},
		Summary: SummaryConfig{
			RefreshInterval:  15 * time.Minute,
			RefreshTimeout:   2 * time.Minute,
			RefreshOnStartup: true,
			StreamBuffer:     10,
		},
		Metrics: MetricsConfig{
			Enabled:   true,
			Namespace: "deskmetrics",
			Path:      "/metrics",
		},
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Database.URL == "" && c.Database.Password == "" {
		return fmt.Errorf("%w: database.password is required", ErrInvalidConfig)
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("%w: jwt.secret is required", ErrInvalidConfig)
	}
	if c.App.Port <= 0 || c.App.Port > 65535 {
		return fmt.Errorf("%w: app.port %d out of range", ErrInvalidConfig, c.App.Port)
	}
	if c.Database.MinConns > c.Database.MaxConns {
		return fmt.Errorf("%w: database.min_conns exceeds database.max_conns", ErrInvalidConfig)
	}
	if c.Summary.RefreshInterval < 0 {
		return fmt.Errorf("%w: summary.refresh_interval must not be negative", ErrInvalidConfig)
	}
	if _, err := time.LoadLocation(c.App.Timezone); err != nil {
		return fmt.Errorf("%w: app.timezone: %v", ErrInvalidConfig, err)
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.App.LogLevel)); err != nil {
		return fmt.Errorf("%w: app.log_level: %v", ErrInvalidConfig, err)
	}
	return nil
}

// SlogLevel returns the configured log level, info when unparseable
func (c *Config) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.App.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}

// Location returns the timezone calendar periods are evaluated in
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.App.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// DatabaseURL returns the PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	if c.Database.URL != "" {
		return c.Database.URL
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.Database.User, c.Database.Password),
		Host:     fmt.Sprintf("%s:%d", c.Database.Host, c.Database.Port),
		Path:     "/" + c.Database.Name,
		RawQuery: "sslmode=" + url.QueryEscape(c.Database.SSLMode),
	}
	return u.String()
}
