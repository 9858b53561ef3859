package config

import (
	"fmt"
	"net/url"
	"time"

	"github.com/agonsep/21stCentury/pkg/config"
)

// ServiceName prefixes service-specific environment overrides (CATALOG_*)
const ServiceName = "catalog"

// Config contains all configuration for the catalog service
type Config struct {
	// Logging configuration
	Log config.LogConfig `yaml:"log"`

	// HTTP server configuration
	Server ServerConfig `yaml:"server"`

	// Database configuration
	Database DatabaseConfig `yaml:"database"`

	// Admin authentication configuration
	Auth AuthConfig `yaml:"auth"`

	Seed    SeedConfig    `yaml:"seed"`
	Metrics MetricsConfig `yaml:"metrics"`
	Geocode GeocodeConfig `yaml:"geocode"`
}

// ServerConfig configures the HTTP listener
type ServerConfig struct {
	Host            string        `yaml:"host" env:"HOST" default:"0.0.0.0"`
	Port            int           `yaml:"port" env:"PORT" default:"5001"`
	CORSOrigins     []string      `yaml:"cors_origins" env:"CORS_ORIGINS" default:"*"`
	ReadTimeout     time.Duration `yaml:"read_timeout" default:"15s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" default:"30s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" default:"120s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"10s"`
	// Disables the server-rendered catalog pages
	DisableWebUI bool `yaml:"disable_web_ui" env:"DISABLE_WEB_UI" default:"false"`
}

// DatabaseConfig configures the SQLite store
type DatabaseConfig struct {
	DSN   string `yaml:"dsn" env:"DATABASE_URL" default:"file:./catalog.db?_pragma=foreign_keys(1)"`
	Debug bool   `yaml:"debug" env:"DATABASE_DEBUG" default:"false"`
}

// AuthConfig configures admin token issuance. Either AdminPassword or
// AdminPasswordHash (bcrypt) must be set; the hash wins when both are.
type AuthConfig struct {
	JWTSecretKey      string        `yaml:"-" env:"JWT_SECRET_KEY"`
	AdminPassword     string        `yaml:"-" env:"ADMIN_PASSWORD"`
	AdminPasswordHash string        `yaml:"admin_password_hash" env:"ADMIN_PASSWORD_HASH"`
	TokenTTL          time.Duration `yaml:"token_ttl" env:"TOKEN_TTL" default:"12h"`
	Issuer            string        `yaml:"issuer" default:"catalog"`
}

// SeedConfig controls bootstrap data
type SeedConfig struct {
	Enabled bool `yaml:"enabled" env:"SEED_ENABLED" default:"true"`
}

// MetricsConfig controls the Prometheus endpoint and the catalog gauges
type MetricsConfig struct {
	Enabled            bool          `yaml:"enabled" env:"METRICS_ENABLED" default:"true"`
	CollectionInterval time.Duration `yaml:"collection_interval" default:"30s"`
}

// GeocodeConfig configures the address lookup service used by map search
type GeocodeConfig struct {
	BaseURL      string        `yaml:"base_url" env:"GEOCODE_URL" default:"https://nominatim.openstreetmap.org"`
	CountryCodes string        `yaml:"country_codes" default:"us"`
	UserAgent    string        `yaml:"user_agent" default:"catalog-map-editor/1.0"`
	Timeout      time.Duration `yaml:"timeout" default:"10s"`
}

// Load loads the catalog configuration from multiple sources
func Load(configFile, envFile string) (*Config, error) {
	cfg := &Config{}

	loader := config.NewLoader(config.LoaderConfig{
		ConfigFile:      configFile,
		EnvironmentFile: envFile,
		ServiceName:     ServiceName,
	})

	if err := loader.Load(cfg); err != nil {
		return nil, fmt.Errorf("failed to load catalog configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("catalog configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Auth.JWTSecretKey == "" {
		return fmt.Errorf("JWT_SECRET_KEY environment variable is required")
	}
	if len(c.Auth.JWTSecretKey) < 32 {
		return fmt.Errorf("JWT_SECRET_KEY must be at least 32 characters long")
	}
	if c.Auth.AdminPassword == "" && c.Auth.AdminPasswordHash == "" {
		return fmt.Errorf("ADMIN_PASSWORD or ADMIN_PASSWORD_HASH is required")
	}
	if c.Auth.TokenTTL <= 0 {
		return fmt.Errorf("token TTL must be positive")
	}

	if c.Database.DSN == "" {
		return fmt.Errorf("database DSN is required")
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server port must be between 1 and 65535")
	}
	for name, d := range map[string]time.Duration{
		"read timeout":     c.Server.ReadTimeout,
		"write timeout":    c.Server.WriteTimeout,
		"idle timeout":     c.Server.IdleTimeout,
		"shutdown timeout": c.Server.ShutdownTimeout,
	} {
		if d <= 0 {
			return fmt.Errorf("server %s must be positive", name)
		}
	}

	if c.Metrics.Enabled && c.Metrics.CollectionInterval <= 0 {
		return fmt.Errorf("metrics collection interval must be positive")
	}

	if _, err := url.ParseRequestURI(c.Geocode.BaseURL); err != nil {
		return fmt.Errorf("geocode base URL is invalid: %w", err)
	}
	if c.Geocode.Timeout <= 0 {
		return fmt.Errorf("geocode timeout must be positive")
	}

	return nil
}

// GetListenAddress returns the address the server should listen on
func (c *Config) GetListenAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
