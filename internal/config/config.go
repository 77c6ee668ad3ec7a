// Package config handles application configuration from environment variables
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// Server settings
	Port     string
	Env      string // "development", "staging", "production"
	LogLevel string

	// Database
	DatabaseURL string // PostgreSQL connection string (optional, uses in-memory if not set)

	// Payment gateway
	GatewayBaseURL   string
	GatewayKeyID     string
	GatewayKeySecret string // Signs the order|payment verification tuple
	WebhookSecret    string // Separate key authenticating webhook bodies (optional)

	// Registration fee, charged in minor units (paise)
	RegistrationFee int64
	Currency        string

	// Capture notification sink (optional)
	NotifyURL    string
	NotifySecret string

	// Observability
	OTLPEndpoint string
	RateLimitRPM int

	// CORS origins allowed to call the API
	AllowedOrigins []string
}

// Defaults
const (
	DefaultGatewayBaseURL  = "https://api.razorpay.com"
	DefaultPort            = "8080"
	DefaultEnv             = "development"
	DefaultLogLevel        = "info"
	DefaultRegistrationFee = 1500000 // Rs 15,000 in paise
	DefaultCurrency        = "INR"
	DefaultRateLimit       = 120
)

// Load reads configuration from environment variables.
// It loads a .env file if present (for local development).
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not present)
	_ = godotenv.Load()

	cfg := &Config{
		Port:             getEnv("PORT", DefaultPort),
		Env:              getEnv("ENV", DefaultEnv),
		LogLevel:         getEnv("LOG_LEVEL", DefaultLogLevel),
		DatabaseURL:      os.Getenv("DATABASE_URL"), // Optional, uses in-memory if not set
		GatewayBaseURL:   getEnv("GATEWAY_BASE_URL", DefaultGatewayBaseURL),
		GatewayKeyID:     os.Getenv("GATEWAY_KEY_ID"),     // Required, no default
		GatewayKeySecret: os.Getenv("GATEWAY_KEY_SECRET"), // Required, no default
		WebhookSecret:    os.Getenv("WEBHOOK_SECRET"),
		RegistrationFee:  getEnvInt64("REGISTRATION_FEE", DefaultRegistrationFee),
		Currency:         getEnv("CURRENCY", DefaultCurrency),
		NotifyURL:        os.Getenv("NOTIFY_URL"),
		NotifySecret:     os.Getenv("NOTIFY_SECRET"),
		OTLPEndpoint:     os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
		RateLimitRPM:     int(getEnvInt64("RATE_LIMIT_RPM", DefaultRateLimit)),
		AllowedOrigins:   splitList(getEnv("ALLOWED_ORIGINS", "*")),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that all required configuration is present.
// The webhook secret is deliberately not required here: without it the
// webhook endpoint answers 500, but client-side verification still works.
func (c *Config) Validate() error {
	if c.GatewayKeyID == "" {
		return fmt.Errorf("GATEWAY_KEY_ID is required")
	}
	if c.GatewayKeySecret == "" {
		return fmt.Errorf("GATEWAY_KEY_SECRET is required")
	}
	if c.GatewayBaseURL == "" {
		return fmt.Errorf("GATEWAY_BASE_URL is required")
	}
	if c.RegistrationFee <= 0 {
		return fmt.Errorf("REGISTRATION_FEE must be a positive amount in minor units")
	}
	if c.Currency == "" {
		return fmt.Errorf("CURRENCY is required")
	}
	return nil
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.ParseInt(value, 10, 64); err == nil {
			return i
		}
	}
	return defaultValue
}
