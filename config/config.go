package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Database DatabaseConfig
	Matching MatchingConfig
	Logging  LoggingConfig
}

// DatabaseConfig holds PostgreSQL connection configuration
type DatabaseConfig struct {
	URL      string `mapstructure:"url"`
	MaxConns int32  `mapstructure:"max_conns"`
	MinConns int32  `mapstructure:"min_conns"`
}

// MatchingConfig holds product matching configuration
type MatchingConfig struct {
	// Threshold is the minimum fuzzy similarity score (0-100) for a merge.
	Threshold float64 `mapstructure:"threshold"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Environment string `mapstructure:"environment"` // "development" or "production"
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	v := viper.New()

	// Set config name and paths
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/smartcart/")

	// Environment variable settings
	v.SetEnvPrefix("SMARTCART")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Set default values
	setDefaults(v)

	// Read config file (optional - will use env vars if file doesn't exist)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found; using environment variables and defaults
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// Validate configuration
	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Database defaults. The empty URL default registers the key so
	// AutomaticEnv can surface SMARTCART_DATABASE_URL; validate rejects it
	// when it stays empty.
	v.SetDefault("database.url", "")
	v.SetDefault("database.max_conns", 10)
	v.SetDefault("database.min_conns", 2)

	// Matching defaults
	v.SetDefault("matching.threshold", 85.0)

	// Logging defaults
	v.SetDefault("logging.environment", "development")
}

// validate validates the configuration
func validate(config *Config) error {
	if config.Database.URL == "" {
		return fmt.Errorf("database URL is required (set SMARTCART_DATABASE_URL)")
	}

	if config.Matching.Threshold <= 0 || config.Matching.Threshold > 100 {
		return fmt.Errorf("matching threshold must be in (0, 100], got: %v", config.Matching.Threshold)
	}

	if config.Logging.Environment != "development" && config.Logging.Environment != "production" {
		return fmt.Errorf("logging environment must be 'development' or 'production', got: %s", config.Logging.Environment)
	}

	return nil
}
