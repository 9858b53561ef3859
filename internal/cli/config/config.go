// Package config loads catalogctl settings with viper from config.yaml,
// CATALOG_* environment variables and command-line flags.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// DirName is the per-user settings directory under $HOME
const DirName = ".catalogctl"

type Config struct {
	Server ServerConfig `mapstructure:"server"`
	Auth   AuthConfig   `mapstructure:"auth"`
}

type ServerConfig struct {
	URL string `mapstructure:"url"`
}

// AuthConfig holds the stored admin token. TokenExpiresAt is RFC 3339.
type AuthConfig struct {
	Token          string `mapstructure:"token"`
	TokenExpiresAt string `mapstructure:"token_expires_at"`
}

// HasValidToken reports whether a token is stored and not yet expired.
// Tokens without a parseable expiry are assumed valid.
func (a AuthConfig) HasValidToken(now time.Time) bool {
	if a.Token == "" {
		return false
	}
	expires, err := time.Parse(time.RFC3339, a.TokenExpiresAt)
	return err != nil || now.Before(expires)
}

func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	// Add config search paths
	viper.AddConfigPath(".")
	viper.AddConfigPath("$HOME/" + DirName)

	// With SetEnvPrefix("CATALOG") these become CATALOG_SERVER_URL and CATALOG_AUTH_TOKEN
	viper.SetEnvPrefix("CATALOG")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.BindEnv("server.url")
	viper.BindEnv("auth.token")

	viper.SetDefault("server.url", "http://localhost:5001")

	if err := viper.ReadInConfig(); err != nil {
		// An explicit --config path that does not exist yet is created on save
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	return &config, nil
}

// Save writes the config to $HOME/.catalogctl/config.yaml
func (c *Config) Save() error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}
	return c.SaveTo(filepath.Join(homeDir, DirName, "config.yaml"))
}

// SaveTo writes the config to path, creating its directory
func (c *Config) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	viper.SetConfigFile(path)
	viper.Set("server.url", c.Server.URL)
	viper.Set("auth.token", c.Auth.Token)
	viper.Set("auth.token_expires_at", c.Auth.TokenExpiresAt)

	if err := viper.WriteConfig(); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return os.Chmod(path, 0o600)
}
