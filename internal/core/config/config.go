// Package config provides configuration management for the formlogic
// runtime service.
package config

import (
	"encoding/base64"
	"fmt"
	"os"
	"strings"
	"time"
)

// RuntimeConfig holds configuration for the HTTP form runtime service.
type RuntimeConfig struct {
	Host           string
	Port           int
	RequestTimeout time.Duration
	MaxBodyBytes   int64
	WebhookTimeout time.Duration
	DatabaseURL    string
}

// DefaultRuntimeConfig returns configuration with default values.
func DefaultRuntimeConfig() *RuntimeConfig {
	return &RuntimeConfig{
		Host:           "0.0.0.0",
		Port:           8080,
		RequestTimeout: 30 * time.Second,
		MaxBodyBytes:   1024 * 1024,
		WebhookTimeout: 10 * time.Second,
	}
}

// WebhookSecret extracts the outbound webhook signing secret from the
// FL_WEBHOOK_SECRET environment variable. Environment-only per 12-factor;
// never read from config files. Returns nil when unset (signing disabled).
func WebhookSecret() ([]byte, error) {
	val := os.Getenv("FL_WEBHOOK_SECRET")
	if val == "" {
		return nil, nil
	}
	decoded, err := base64.StdEncoding.DecodeString(strings.TrimSpace(val))
	if err != nil {
		return nil, fmt.Errorf("FL_WEBHOOK_SECRET: invalid base64 encoding: %w", err)
	}
	if len(decoded) < 32 {
		return nil, fmt.Errorf("FL_WEBHOOK_SECRET: secret must be at least 32 bytes, got %d", len(decoded))
	}
	return decoded, nil
}
