package config

import (
	"fmt"
	"os"
	"time"
)

// Config holds all configuration for the application
type Config struct {
	TelegramToken  string
	DatabaseURL    string
	LogLevel       string
	Port           string
	WebhookURL     string
	MigrationsDir  string
	BackupDir      string
	BackupInterval time.Duration
}

// Load loads configuration from environment variables. DATABASE_URL is
// optional: when empty the bot runs on the in-memory store and nothing
// survives a restart.
func Load() (*Config, error) {
	cfg := &Config{
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		LogLevel:      getEnvOrDefault("LOG_LEVEL", "info"),
		Port:          getEnvOrDefault("PORT", "8080"),
		WebhookURL:    os.Getenv("WEBHOOK_URL"),
		MigrationsDir: getEnvOrDefault("MIGRATIONS_DIR", "migrations"),
		BackupDir:     getEnvOrDefault("BACKUP_DIR", "backups"),
	}

	if cfg.TelegramToken = os.Getenv("TELEGRAM_TOKEN"); cfg.TelegramToken == "" {
		return nil, fmt.Errorf("TELEGRAM_TOKEN environment variable is required")
	}

	if raw := os.Getenv("BACKUP_INTERVAL"); raw != "" {
		interval, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid BACKUP_INTERVAL %q: %w", raw, err)
		}
		cfg.BackupInterval = interval
	}

	return cfg, nil
}

// getEnvOrDefault returns environment variable value or default if not set
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
