package internal

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"github.com/dukerupert/regcheck/internal/telemetry"
)

// Config holds all runtime configuration. Values come from the environment,
// with .env discovery for local development. Integrations (database, NATS,
// email, S3 input, Sentry) are optional; the core pipeline runs with none
// of them configured.
type Config struct {
	Env      string
	LogLevel string
	Server   ServerConfig
	Database DatabaseConfig
	Input    InputConfig
	NATS     NATSConfig
	Email    EmailConfig
	Sentry   telemetry.SentryConfig
}

// ServerConfig configures the intake HTTP server.
type ServerConfig struct {
	Port uint16
}

// DatabaseConfig configures the optional Postgres store for accepted
// registrations and run summaries.
type DatabaseConfig struct {
	// URL is the Postgres connection string. Empty disables persistence.
	URL string
}

// Configured reports whether a database is available to this process.
func (c DatabaseConfig) Configured() bool {
	return c.URL != ""
}

// InputConfig configures S3-compatible object storage for batch inputs
// referenced as s3://bucket/key. Local file inputs need no configuration.
type InputConfig struct {
	S3Region    string
	S3Endpoint  string // custom endpoint for R2/MinIO; empty uses AWS
	S3AccessKey string
	S3SecretKey string
}

// NATSConfig configures the optional row/run event publisher.
type NATSConfig struct {
	URL string

	// SubjectPrefix is the leading token of published subjects
	// (e.g. "regcheck" publishes to regcheck.rows.accepted).
	SubjectPrefix string
}

// Configured reports whether event publishing is available.
func (c NATSConfig) Configured() bool {
	return c.URL != ""
}

// EmailConfig configures the optional run-summary report mailer.
type EmailConfig struct {
	Host     string
	Port     uint16
	Username string
	Password string
	From     string
	To       string // comma-separated recipient list
}

// Configured reports whether report mail can be sent.
func (c EmailConfig) Configured() bool {
	return c.Host != "" && c.From != "" && c.To != ""
}

// NewConfig loads configuration from the environment. A .env file in the
// working directory or up to two parent directories is loaded first.
func NewConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		dir, _ := os.Getwd()
		found := false
		for i := 0; i < 2; i++ {
			dir = filepath.Join(dir, "..")
			if err := godotenv.Load(filepath.Join(dir, ".env")); err == nil {
				found = true
				break
			}
		}
		if !found {
			slog.Default().Warn(".env file not found, using environment variables and defaults")
		}
	}

	cfg := &Config{
		Env:      getEnv("ENV", "dev"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		Server: ServerConfig{
			Port: getEnvInt("PORT", 3000),
		},
		Database: DatabaseConfig{
			URL: getEnv("DATABASE_URL", ""),
		},
		Input: InputConfig{
			S3Region:    getEnv("INPUT_S3_REGION", "us-east-1"),
			S3Endpoint:  getEnv("INPUT_S3_ENDPOINT", ""),
			S3AccessKey: getEnv("INPUT_S3_ACCESS_KEY_ID", ""),
			S3SecretKey: getEnv("INPUT_S3_SECRET_ACCESS_KEY", ""),
		},
		NATS: NATSConfig{
			URL:           getEnv("NATS_URL", ""),
			SubjectPrefix: getEnv("NATS_SUBJECT_PREFIX", "regcheck"),
		},
		Email: EmailConfig{
			Host:     getEnv("SMTP_HOST", ""),
			Port:     getEnvInt("SMTP_PORT", 587),
			Username: getEnv("SMTP_USERNAME", ""),
			Password: getEnv("SMTP_PASSWORD", ""),
			From:     getEnv("SMTP_FROM", ""),
			To:       getEnv("REPORT_TO", ""),
		},
		Sentry: telemetry.SentryConfig{
			DSN:         getEnv("SENTRY_DSN", ""),
			Enabled:     getEnvBool("SENTRY_ENABLED", false),
			Environment: getEnv("SENTRY_ENVIRONMENT", "development"),
			Release:     getEnv("SENTRY_RELEASE", ""),
			SampleRate:  getEnvFloat("SENTRY_SAMPLE_RATE", 1.0),
			Debug:       getEnvBool("SENTRY_DEBUG", false),
		},
	}

	if cfg.Env != "dev" && cfg.Env != "prod" {
		slog.Default().Warn("Invalid environment. Using default: prod", slog.String("env", cfg.Env))
		cfg.Env = "prod"
	}

	validLevel := cfg.LogLevel == "info" || cfg.LogLevel == "debug" || cfg.LogLevel == "warn" || cfg.LogLevel == "error"
	if !validLevel {
		slog.Default().Warn("Invalid log level. Using default: info", slog.String("value", cfg.LogLevel))
		cfg.LogLevel = "info"
	}

	if cfg.Sentry.Enabled && cfg.Sentry.DSN == "" {
		return nil, fmt.Errorf("SENTRY_DSN required when SENTRY_ENABLED is true")
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue uint16) uint16 {
	if value := os.Getenv(key); value != "" {
		var intValue uint16
		if _, err := fmt.Sscanf(value, "%d", &intValue); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1" || value == "yes"
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		var floatValue float64
		if _, err := fmt.Sscanf(value, "%f", &floatValue); err == nil {
			return floatValue
		}
	}
	return defaultValue
}
