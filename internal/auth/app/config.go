package app

import (
	"os"
	"strconv"
	"time"

	"github.com/aussiebroadwan/bookly/pkg/jwtx"
)

type Config struct {
	SecretKey string // Required: server secret for signing session and action tokens
	Issuer    string // Optional: issuer claim for tokens (default: bookly-auth)
	BaseURL   string // Optional: external base URL used in mail links (default: http://localhost:{port})

	DatabaseFile string // Optional: path to SQLite database file (default: ./auth.db)
	RedisURL     string // Optional: Redis URL for the revocation registry; empty runs in-memory

	AccessTTL  time.Duration // Optional: access token lifetime (default: 1h)
	RefreshTTL time.Duration // Optional: refresh token lifetime (default: 48h)
	VerifyTTL  time.Duration // Optional: email verification token lifetime (default: 24h)
	ResetTTL   time.Duration // Optional: password reset token lifetime (default: 30m)

	SMTPHost     string // Optional: SMTP relay host; empty disables outgoing mail
	SMTPPort     int    // Optional: SMTP relay port (default: 587)
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string // Optional: From address on outgoing mail

	Env                 string        // Environment (dev, staging, prod) (default: dev)
	LogLevel            string        // Log level (debug, info, warn, error) (default: info)
	LogFormat           string        // Log format (json, text) (default: json)
	Port                int           // HTTP server port (default: 8080)
	ShutdownGracePeriod time.Duration // Graceful shutdown timeout (default: 10s)
	MailQueueSize       int           // Outbox queue capacity (default: 64)
}

func LoadConfig() Config {
	cfg := Config{
		SecretKey: os.Getenv("AUTH_SECRET_KEY"),
		Issuer:    getEnvOrDefault("AUTH_ISSUER", "bookly-auth"),
		BaseURL:   os.Getenv("AUTH_BASE_URL"),

		DatabaseFile: getEnvOrDefault("AUTH_DATABASE_FILE", "auth.db"),
		RedisURL:     os.Getenv("REDIS_URL"),

		AccessTTL:  getEnvDurationOrDefault("AUTH_ACCESS_TOKEN_TTL", jwtx.DefaultAccessTokenTTL),
		RefreshTTL: getEnvDurationOrDefault("AUTH_REFRESH_TOKEN_TTL", jwtx.DefaultRefreshTokenTTL),
		VerifyTTL:  getEnvDurationOrDefault("AUTH_VERIFY_TOKEN_TTL", jwtx.DefaultVerifyTokenTTL),
		ResetTTL:   getEnvDurationOrDefault("AUTH_RESET_TOKEN_TTL", jwtx.DefaultResetTokenTTL),

		SMTPHost:     os.Getenv("SMTP_HOST"),
		SMTPPort:     getEnvIntOrDefault("SMTP_PORT", 587),
		SMTPUsername: os.Getenv("SMTP_USERNAME"),
		SMTPPassword: os.Getenv("SMTP_PASSWORD"),
		SMTPFrom:     getEnvOrDefault("SMTP_FROM", "no-reply@bookly.local"),

		Env:                 getEnvOrDefault("ENV", "dev"),
		LogLevel:            getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:           getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod: getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		MailQueueSize:       getEnvIntOrDefault("MAIL_QUEUE_SIZE", 64),
	}

	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost:" + strconv.Itoa(cfg.Port)
	}

	return cfg
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	// Try parsing as duration (e.g., "1h", "30m", "90s")
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Try parsing as integer minutes (for backwards compatibility)
	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}

	return defaultValue
}
