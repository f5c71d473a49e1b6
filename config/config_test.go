package config

import (
	"os"
	"testing"
)

func TestLoad(t *testing.T) {
	// Clean up environment before tests
	cleanupEnv := func() {
		os.Unsetenv("SMARTCART_DATABASE_URL")
		os.Unsetenv("SMARTCART_DATABASE_MAX_CONNS")
		os.Unsetenv("SMARTCART_DATABASE_MIN_CONNS")
		os.Unsetenv("SMARTCART_MATCHING_THRESHOLD")
		os.Unsetenv("SMARTCART_LOGGING_ENVIRONMENT")
	}

	t.Run("loads with defaults when no env vars set", func(t *testing.T) {
		cleanupEnv()
		// Set required database URL
		os.Setenv("SMARTCART_DATABASE_URL", "postgres://localhost/smartcart")
		defer cleanupEnv()

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() error = %v, want nil", err)
		}

		// Check defaults
		if cfg.Database.MaxConns != 10 {
			t.Errorf("Database.MaxConns = %d, want 10", cfg.Database.MaxConns)
		}
		if cfg.Database.MinConns != 2 {
			t.Errorf("Database.MinConns = %d, want 2", cfg.Database.MinConns)
		}
		if cfg.Matching.Threshold != 85.0 {
			t.Errorf("Matching.Threshold = %v, want 85.0", cfg.Matching.Threshold)
		}
		if cfg.Logging.Environment != "development" {
			t.Errorf("Logging.Environment = %s, want development", cfg.Logging.Environment)
		}
	})

	t.Run("loads custom values from environment variables", func(t *testing.T) {
		cleanupEnv()
		os.Setenv("SMARTCART_DATABASE_URL", "postgres://db.internal/prices")
		os.Setenv("SMARTCART_DATABASE_MAX_CONNS", "20")
		os.Setenv("SMARTCART_MATCHING_THRESHOLD", "90")
		os.Setenv("SMARTCART_LOGGING_ENVIRONMENT", "production")
		defer cleanupEnv()

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() error = %v, want nil", err)
		}

		if cfg.Database.URL != "postgres://db.internal/prices" {
			t.Errorf("Database.URL = %s, want postgres://db.internal/prices", cfg.Database.URL)
		}
		if cfg.Database.MaxConns != 20 {
			t.Errorf("Database.MaxConns = %d, want 20", cfg.Database.MaxConns)
		}
		if cfg.Matching.Threshold != 90.0 {
			t.Errorf("Matching.Threshold = %v, want 90.0", cfg.Matching.Threshold)
		}
		if cfg.Logging.Environment != "production" {
			t.Errorf("Logging.Environment = %s, want production", cfg.Logging.Environment)
		}
	})

	t.Run("fails validation when database URL is missing", func(t *testing.T) {
		cleanupEnv()
		defer cleanupEnv()

		_, err := Load()
		if err == nil {
			t.Error("Load() error = nil, want error for missing database URL")
		}
	})

	t.Run("fails validation for out-of-range threshold", func(t *testing.T) {
		cleanupEnv()
		os.Setenv("SMARTCART_DATABASE_URL", "postgres://localhost/smartcart")
		os.Setenv("SMARTCART_MATCHING_THRESHOLD", "150")
		defer cleanupEnv()

		_, err := Load()
		if err == nil {
			t.Error("Load() error = nil, want error for threshold above 100")
		}
	})
}

func TestValidate(t *testing.T) {
	t.Run("validates successfully with all required fields", func(t *testing.T) {
		cfg := &Config{
			Database: DatabaseConfig{URL: "postgres://localhost/smartcart"},
			Matching: MatchingConfig{Threshold: 85.0},
			Logging:  LoggingConfig{Environment: "development"},
		}

		err := validate(cfg)
		if err != nil {
			t.Errorf("validate() error = %v, want nil", err)
		}
	})

	t.Run("fails when database URL is empty", func(t *testing.T) {
		cfg := &Config{
			Matching: MatchingConfig{Threshold: 85.0},
			Logging:  LoggingConfig{Environment: "development"},
		}

		err := validate(cfg)
		if err == nil {
			t.Error("validate() error = nil, want error for empty database URL")
		}
	})

	t.Run("fails for zero threshold", func(t *testing.T) {
		cfg := &Config{
			Database: DatabaseConfig{URL: "postgres://localhost/smartcart"},
			Matching: MatchingConfig{Threshold: 0},
			Logging:  LoggingConfig{Environment: "development"},
		}

		err := validate(cfg)
		if err == nil {
			t.Error("validate() error = nil, want error for zero threshold")
		}
	})

	t.Run("fails for unknown logging environment", func(t *testing.T) {
		cfg := &Config{
			Database: DatabaseConfig{URL: "postgres://localhost/smartcart"},
			Matching: MatchingConfig{Threshold: 85.0},
			Logging:  LoggingConfig{Environment: "staging"},
		}

		err := validate(cfg)
		if err == nil {
			t.Error("validate() error = nil, want error for unknown logging environment")
		}
	})
}
