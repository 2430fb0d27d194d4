// Package config loads the Supervisor's environment-variable
// configuration, following the teacher's getEnvOrDefault-style loader
// pattern rather than a struct-tag binding library.
package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/crabrolls-cartesi/crabrolls/addressbook"
	"github.com/crabrolls-cartesi/crabrolls/portal"
)

// Config is the Supervisor's bootstrap configuration.
type Config struct {
	RollupHTTPServerURL string
	ChainSelector       addressbook.ChainSelector
	LogLevel            string

	// MinBackoff/MaxBackoff bound the Supervisor's exponential backoff
	// between empty /finish polls.
	MinBackoff time.Duration
	MaxBackoff time.Duration

	// PortalHandlerOverrides lets a dapp author override the default
	// Handle(true) mode for individual portal kinds programmatically;
	// config.go itself only ever loads chain selector and transport
	// settings from the environment.
	PortalHandlerOverrides map[addressbook.PortalKind]portal.HandlerConfig
}

// NewConfigFromEnv loads configuration from environment variables,
// falling back to .env if present (ignored if absent, matching the
// teacher's best-effort load).
func NewConfigFromEnv() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("config: no .env file loaded: %v", err)
	}

	selector, err := addressbook.ParseChainSelector(getEnvOrDefault("CRABROLLS_ADDRESS_BOOK", "local"))
	if err != nil {
		return nil, err
	}

	return &Config{
		RollupHTTPServerURL:    getEnvOrDefault("ROLLUP_HTTP_SERVER_URL", "http://127.0.0.1:5004"),
		ChainSelector:          selector,
		LogLevel:               getEnvOrDefault("CRABROLLS_LOG_LEVEL", "info"),
		MinBackoff:             time.Duration(getEnvUint64("ROLLUP_MIN_BACKOFF_MS", 50)) * time.Millisecond,
		MaxBackoff:             time.Duration(getEnvUint64("ROLLUP_MAX_BACKOFF_MS", 2000)) * time.Millisecond,
		PortalHandlerOverrides: map[addressbook.PortalKind]portal.HandlerConfig{},
	}, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvUint64(key string, defaultValue uint64) uint64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseUint(value, 10, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}

