package config

import (
	"errors"
	"os"
)

type Config struct {
	RunAddress          string
	DatabaseURI         string
	JWTSecret           string
	StripeWebhookSecret string
	StripeAPIKey        string
	PortalBaseURL       string
	SMTPAddr            string
	SMTPFrom            string
}

// New reads configuration from the environment. The payment-processor secrets
// are mandatory: without them the webhook cannot verify signatures, and
// serving unverified events must not be possible.
func New() (*Config, error) {
	cfg := &Config{
		RunAddress:          getEnv("RUN_ADDRESS", "localhost:8080"),
		DatabaseURI:         getEnv("DATABASE_URI", ""),
		JWTSecret:           getEnv("JWT_SECRET", ""),
		StripeWebhookSecret: getEnv("STRIPE_WEBHOOK_SECRET", ""),
		StripeAPIKey:        getEnv("STRIPE_SECRET_KEY", ""),
		PortalBaseURL:       getEnv("PORTAL_BASE_URL", "http://localhost:3000"),
		SMTPAddr:            getEnv("SMTP_ADDR", ""),
		SMTPFrom:            getEnv("SMTP_FROM", "no-reply@reelstudio.io"),
	}

	if cfg.DatabaseURI == "" {
		return nil, errors.New("DATABASE_URI is required")
	}
	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET is required")
	}
	if cfg.StripeWebhookSecret == "" {
		return nil, errors.New("STRIPE_WEBHOOK_SECRET is required")
	}
	if cfg.StripeAPIKey == "" {
		return nil, errors.New("STRIPE_SECRET_KEY is required")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}
