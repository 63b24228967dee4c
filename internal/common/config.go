// Package common provides shared utilities for Tradedeck
package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Source kinds supported by the trade loader.
const (
	SourceNotion    = "notion"
	SourceSurreal   = "surrealdb"
	DefaultCacheTTL = "60s"
)

// Config holds all configuration for Tradedeck
type Config struct {
	Environment string          `toml:"environment"`
	Server      ServerConfig    `toml:"server"`
	Source      SourceConfig    `toml:"source"`
	Dashboard   DashboardConfig `toml:"dashboard"`
	Auth        AuthConfig      `toml:"auth"`
	Clients     ClientsConfig   `toml:"clients"`
	Logging     LoggingConfig   `toml:"logging"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// SourceConfig selects and configures the trade journal backend.
type SourceConfig struct {
	Kind    string        `toml:"kind"` // "notion" or "surrealdb"
	Notion  NotionConfig  `toml:"notion"`
	Surreal SurrealConfig `toml:"surrealdb"`
}

// NotionConfig holds Notion API configuration
type NotionConfig struct {
	BaseURL    string `toml:"base_url"`
	Token      string `toml:"token"`
	DatabaseID string `toml:"database_id"`
	RateLimit  int    `toml:"rate_limit"`
	Timeout    string `toml:"timeout"`
}

// GetTimeout parses and returns the timeout duration
func (c *NotionConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// SurrealConfig holds SurrealDB journal configuration
type SurrealConfig struct {
	Address   string `toml:"address"`
	Namespace string `toml:"namespace"`
	Database  string `toml:"database"`
	Username  string `toml:"username"`
	Password  string `toml:"password"`
	Table     string `toml:"table"`
}

// DashboardConfig holds the metrics pipeline settings.
type DashboardConfig struct {
	StartingCapital float64 `toml:"starting_capital"`
	CacheTTL        string  `toml:"cache_ttl"`
	RefreshInterval string  `toml:"refresh_interval"`
}

// GetCacheTTL parses and returns the record cache TTL
func (c *DashboardConfig) GetCacheTTL() time.Duration {
	d, err := time.ParseDuration(c.CacheTTL)
	if err != nil {
		return 60 * time.Second
	}
	return d
}

// GetRefreshInterval parses and returns the background refresh interval.
// Zero disables the background refresher.
func (c *DashboardConfig) GetRefreshInterval() time.Duration {
	if c.RefreshInterval == "" {
		return 0
	}
	d, err := time.ParseDuration(c.RefreshInterval)
	if err != nil {
		return 0
	}
	return d
}

// AuthConfig holds optional dashboard authentication. When AccessKeyHash is
// empty the API is open (single-user deployment behind a private network).
type AuthConfig struct {
	JWTSecret     string `toml:"jwt_secret"`
	AccessKeyHash string `toml:"access_key_hash"` // bcrypt hash of the access key
	TokenExpiry   string `toml:"token_expiry"`    // duration string, default "24h"
}

// Enabled reports whether bearer auth should be enforced.
func (c *AuthConfig) Enabled() bool {
	return c.AccessKeyHash != "" && c.JWTSecret != ""
}

// GetTokenExpiry parses and returns the token expiry duration.
func (c *AuthConfig) GetTokenExpiry() time.Duration {
	d, err := time.ParseDuration(c.TokenExpiry)
	if err != nil {
		return 24 * time.Hour
	}
	return d
}

// ClientsConfig holds API client configurations
type ClientsConfig struct {
	Gemini GeminiConfig `toml:"gemini"`
}

// GeminiConfig holds Gemini API configuration for the optional AI recap
type GeminiConfig struct {
	APIKey string `toml:"api_key"`
	Model  string `toml:"model"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `toml:"level"`
}

// NewDefaultConfig returns a Config with sensible defaults
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Source: SourceConfig{
			Kind: SourceNotion,
			Notion: NotionConfig{
				BaseURL:   "https://api.notion.com",
				RateLimit: 3,
				Timeout:   "30s",
			},
			Surreal: SurrealConfig{
				Namespace: "tradedeck",
				Database:  "journal",
				Table:     "trades",
			},
		},
		Dashboard: DashboardConfig{
			StartingCapital: 18600,
			CacheTTL:        DefaultCacheTTL,
			RefreshInterval: "60s",
		},
		Auth: AuthConfig{
			TokenExpiry: "24h",
		},
		Clients: ClientsConfig{
			Gemini: GeminiConfig{
				Model: "gemini-2.0-flash",
			},
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// LoadConfig loads configuration from files with environment overrides
func LoadConfig(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	// Load and merge each config file in order (later files override earlier)
	for _, path := range paths {
		if path == "" {
			continue
		}

		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue // Skip missing files
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(config)

	if err := validateSource(config); err != nil {
		return nil, err
	}

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("TRADEDECK_ENV"); env != "" {
		config.Environment = env
	}

	if host := os.Getenv("TRADEDECK_HOST"); host != "" {
		config.Server.Host = host
	}

	if port := os.Getenv("TRADEDECK_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}

	if level := os.Getenv("TRADEDECK_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}

	if kind := os.Getenv("TRADEDECK_SOURCE_KIND"); kind != "" {
		config.Source.Kind = strings.ToLower(kind)
	}

	if token := os.Getenv("NOTION_TOKEN"); token != "" {
		config.Source.Notion.Token = token
	}
	if id := os.Getenv("NOTION_DATABASE_ID"); id != "" {
		config.Source.Notion.DatabaseID = id
	}

	if addr := os.Getenv("TRADEDECK_SURREAL_ADDRESS"); addr != "" {
		config.Source.Surreal.Address = addr
	}
	if user := os.Getenv("TRADEDECK_SURREAL_USERNAME"); user != "" {
		config.Source.Surreal.Username = user
	}
	if pass := os.Getenv("TRADEDECK_SURREAL_PASSWORD"); pass != "" {
		config.Source.Surreal.Password = pass
	}

	if capital := os.Getenv("TRADEDECK_STARTING_CAPITAL"); capital != "" {
		if v, err := strconv.ParseFloat(capital, 64); err == nil && v > 0 {
			config.Dashboard.StartingCapital = v
		}
	}

	if v := os.Getenv("TRADEDECK_AUTH_JWT_SECRET"); v != "" {
		config.Auth.JWTSecret = v
	}
	if v := os.Getenv("TRADEDECK_AUTH_ACCESS_KEY_HASH"); v != "" {
		config.Auth.AccessKeyHash = v
	}

	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		config.Clients.Gemini.APIKey = v
	}
}

// validateSource ensures the selected source backend has the credentials it
// needs. Missing source configuration is fatal at startup: there is nothing
// the dashboard can render without a journal to read.
func validateSource(config *Config) error {
	switch config.Source.Kind {
	case SourceNotion:
		if config.Source.Notion.Token == "" {
			return fmt.Errorf("source.notion.token is required (or set NOTION_TOKEN)")
		}
		if config.Source.Notion.DatabaseID == "" {
			return fmt.Errorf("source.notion.database_id is required (or set NOTION_DATABASE_ID)")
		}
	case SourceSurreal:
		if config.Source.Surreal.Address == "" {
			return fmt.Errorf("source.surrealdb.address is required (or set TRADEDECK_SURREAL_ADDRESS)")
		}
	default:
		return fmt.Errorf("unknown source kind %q (expected %q or %q)", config.Source.Kind, SourceNotion, SourceSurreal)
	}

	if config.Dashboard.StartingCapital <= 0 {
		return fmt.Errorf("dashboard.starting_capital must be positive, got %v", config.Dashboard.StartingCapital)
	}

	return nil
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	env := strings.ToLower(strings.TrimSpace(c.Environment))
	return env == "production" || env == "prod"
}
