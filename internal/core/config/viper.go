package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// LoadConfig loads configuration from file using viper.
// CLI flags > environment > config file > defaults precedence.
func LoadConfig(configPath string) (*RuntimeConfig, error) {
	v := viper.New()

	// Set defaults matching DefaultRuntimeConfig
	v.SetDefault("runtime.host", "0.0.0.0")
	v.SetDefault("runtime.port", 8080)
	v.SetDefault("runtime.request_timeout", "30s")
	v.SetDefault("runtime.max_body_bytes", 1024*1024)
	v.SetDefault("runtime.webhook_timeout", "10s")
	v.SetDefault("runtime.database_url", "")

	// Bind environment variables with FL_ prefix
	v.SetEnvPrefix("FL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Load config file if provided
	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Security check: reject secrets in config files
	// Secrets must be environment-only per 12-factor principles
	if err := validateNoSecretsInConfig(v); err != nil {
		return nil, err
	}

	cfg := &RuntimeConfig{
		Host:           v.GetString("runtime.host"),
		Port:           v.GetInt("runtime.port"),
		RequestTimeout: v.GetDuration("runtime.request_timeout"),
		MaxBodyBytes:   v.GetInt64("runtime.max_body_bytes"),
		WebhookTimeout: v.GetDuration("runtime.webhook_timeout"),
		DatabaseURL:    v.GetString("runtime.database_url"),
	}

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validateConfig checks port range and positive timeouts and body limit.
func validateConfig(cfg *RuntimeConfig) error {
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", cfg.Port)
	}
	if cfg.RequestTimeout <= 0 {
		return fmt.Errorf("request_timeout must be positive, got %v", cfg.RequestTimeout)
	}
	if cfg.MaxBodyBytes <= 0 {
		return fmt.Errorf("max_body_bytes must be positive, got %d", cfg.MaxBodyBytes)
	}
	if cfg.WebhookTimeout <= 0 {
		return fmt.Errorf("webhook_timeout must be positive, got %v", cfg.WebhookTimeout)
	}
	return nil
}

// validateNoSecretsInConfig enforces environment-only secrets (12-factor principle).
func validateNoSecretsInConfig(v *viper.Viper) error {
	if v.IsSet("webhook_secret") || v.IsSet("runtime.webhook_secret") {
		return fmt.Errorf("webhook secrets not allowed in config files (use FL_WEBHOOK_SECRET environment variable)")
	}
	return nil
}
