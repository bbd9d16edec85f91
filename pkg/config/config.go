package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds application configuration
type Config struct {
	DatabaseURL    string
	JWTSecret      string
	Port           string
	Environment    string
	LogLevel       string
	LogFormat      string
	MigrationsPath string
	// Security configuration
	AllowedOrigins string
	TrustedProxies string
}

// New creates a new configuration instance from environment variables
func New() (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("PORT", "8080")
	v.SetDefault("ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("MIGRATIONS_PATH", "migrations")

	cfg := &Config{
		DatabaseURL:    v.GetString("DATABASE_URL"),
		JWTSecret:      v.GetString("JWT_SECRET"),
		Port:           v.GetString("PORT"),
		Environment:    v.GetString("ENV"),
		LogLevel:       v.GetString("LOG_LEVEL"),
		LogFormat:      v.GetString("LOG_FORMAT"),
		MigrationsPath: v.GetString("MIGRATIONS_PATH"),
		AllowedOrigins: v.GetString("ALLOWED_ORIGINS"),
		TrustedProxies: v.GetString("TRUSTED_PROXIES"),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	return cfg, nil
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// GetAllowedOrigins returns a slice of allowed CORS origins
func (c *Config) GetAllowedOrigins() []string {
	if c.AllowedOrigins == "" {
		return nil
	}
	return strings.Split(c.AllowedOrigins, ",")
}

// GetTrustedProxies returns a slice of trusted proxy IPs
func (c *Config) GetTrustedProxies() []string {
	if c.TrustedProxies == "" {
		return nil
	}
	return strings.Split(c.TrustedProxies, ",")
}
