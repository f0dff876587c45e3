package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config aggregates application configuration values.
type Config struct {
	HTTP    HTTPConfig
	Graph   GraphConfig
	Logging LoggingConfig
	Auth    AuthConfig
}

// HTTPConfig governs HTTP server behaviour.
type HTTPConfig struct {
	Host            string        `env:"SERVER_HOST"             envDefault:"0.0.0.0"`
	Port            int           `env:"SERVER_PORT"             envDefault:"4000"`
	ReadTimeout     time.Duration `env:"SERVER_READ_TIMEOUT"     envDefault:"10s"`
	WriteTimeout    time.Duration `env:"SERVER_WRITE_TIMEOUT"    envDefault:"15s"`
	IdleTimeout     time.Duration `env:"SERVER_IDLE_TIMEOUT"     envDefault:"60s"`
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" envDefault:"10s"`
	MetricsEnabled  bool          `env:"SERVER_METRICS_ENABLED"  envDefault:"false"`
	AllowedOrigins  []string      `env:"SERVER_ALLOWED_ORIGINS"  envSeparator:","`
	// APIPrefix is where the JSON API is mounted; /healthz and /metrics stay at the root.
	APIPrefix string `env:"SERVER_API_PREFIX" envDefault:"/api"`
}

// GraphConfig describes connectivity to the Neo4j database.
type GraphConfig struct {
	URI            string `env:"GRAPH_URI"`
	Database       string `env:"GRAPH_DATABASE"`
	Username       string `env:"GRAPH_USERNAME"`
	Password       string `env:"GRAPH_PASSWORD"`
	MaxConnections int    `env:"GRAPH_MAX_CONNECTIONS" envDefault:"10"`
}

// LoggingConfig controls structured logging settings.
type LoggingConfig struct {
	Level         string `env:"LOG_LEVEL"          envDefault:"info"`
	Format        string `env:"LOG_FORMAT"         envDefault:"text"` // text|json
	IncludeCaller bool   `env:"LOG_INCLUDE_CALLER" envDefault:"false"`
}

// AuthConfig holds token signing and password hashing settings.
type AuthConfig struct {
	JWTSecret  string        `env:"JWT_SECRET"  envDefault:"dev_secret"`
	JWTIssuer  string        `env:"JWT_ISSUER"  envDefault:"skillgraph"`
	TokenTTL   time.Duration `env:"JWT_TTL"     envDefault:"8h"`
	BcryptCost int           `env:"BCRYPT_COST" envDefault:"10"`
	// Roles are the person labels accepted at registration.
	Roles []string `env:"AUTH_ROLES" envDefault:"Student,Faculty,Staff,Alumni" envSeparator:","`
}

// Load reads configuration from environment variables, applying defaults.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	if cfg.HTTP.Port <= 0 || cfg.HTTP.Port > 65535 {
		return Config{}, fmt.Errorf("port %d is out of range", cfg.HTTP.Port)
	}
	if cfg.Auth.JWTSecret == "" {
		return Config{}, fmt.Errorf("JWT_SECRET must not be empty")
	}

	cfg.HTTP.AllowedOrigins = cleanList(cfg.HTTP.AllowedOrigins)
	cfg.HTTP.APIPrefix = "/" + strings.Trim(strings.TrimSpace(cfg.HTTP.APIPrefix), "/")
	cfg.Auth.Roles = cleanList(cfg.Auth.Roles)
	if len(cfg.Auth.Roles) == 0 {
		return Config{}, fmt.Errorf("AUTH_ROLES must name at least one role")
	}

	return cfg, nil
}

func cleanList(values []string) []string {
	var out []string
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		out = append(out, v)
	}
	return out
}
