// Package config provides configuration management for Automata services.
package config

import (
	"encoding/base64"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/solatis/automata/internal/types"
)

// Config holds configuration for the automata service.
type Config struct {
	Server     ServerConfig
	Metrics    MetricsConfig
	Evaluation EvaluationConfig
	Database   DatabaseConfig
}

// ServerConfig holds configuration for the gRPC automation API.
type ServerConfig struct {
	Host              string
	Port              int
	RequestTimeout    time.Duration
	MaxDefinitionSize int
}

// MetricsConfig holds configuration for the Prometheus HTTP endpoint.
// Empty Addr disables the endpoint.
type MetricsConfig struct {
	Addr string
}

// EvaluationConfig controls how conditions are resolved.
type EvaluationConfig struct {
	Parallel       bool
	MaxParallelism int
	Locale         string
}

// DatabaseConfig holds the store connection URL (sqlite:// or postgres://).
type DatabaseConfig struct {
	URL string
}

// Default returns configuration with default values.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:              "0.0.0.0",
			Port:              50051,
			RequestTimeout:    30 * time.Second,
			MaxDefinitionSize: types.MaxDefinitionSize,
		},
		Metrics: MetricsConfig{
			Addr: ":9090",
		},
		Evaluation: EvaluationConfig{
			Parallel:       false,
			MaxParallelism: 8,
			Locale:         "en",
		},
		Database: DatabaseConfig{
			URL: "sqlite://./data/automata.db",
		},
	}
}

// HMACSecrets extracts HMAC secrets from environment variables.
// Supports AUTOMATA_HMAC_SECRET (single) and AUTOMATA_HMAC_SECRET_N (rotation).
// Returns map of secret_id -> decoded secret bytes.
// Secret IDs are UUIDv7 (32 hex chars without hyphens) matching API key format.
func HMACSecrets() (map[string][]byte, error) {
	secrets := make(map[string][]byte)

	add := func(key, val string) error {
		secretID, decoded, err := ParseHMACSecretWithID(val)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		if _, exists := secrets[secretID]; exists {
			return fmt.Errorf("duplicate secret_id '%s' found in environment variables (check AUTOMATA_HMAC_SECRET and AUTOMATA_HMAC_SECRET_* for conflicts)", secretID)
		}
		secrets[secretID] = decoded
		return nil
	}

	// Format: <secret_id>:<base64_secret>
	if val := os.Getenv("AUTOMATA_HMAC_SECRET"); val != "" {
		if err := add("AUTOMATA_HMAC_SECRET", val); err != nil {
			return nil, err
		}
	}

	// Multiple secrets enable rotation: old and new keys valid during migration
	for i := 1; ; i++ {
		key := fmt.Sprintf("AUTOMATA_HMAC_SECRET_%d", i)
		val := os.Getenv(key)
		if val == "" {
			break
		}
		if err := add(key, val); err != nil {
			return nil, err
		}
	}

	return secrets, nil
}

// ParseHMACSecretWithID parses secret_id:base64_secret format.
// Secret ID must be 32 hex chars (UUIDv7 without hyphens).
func ParseHMACSecretWithID(envValue string) (secretID string, secret []byte, err error) {
	parts := strings.SplitN(strings.TrimSpace(envValue), ":", 2)
	if len(parts) != 2 {
		return "", nil, fmt.Errorf("format must be <secret_id>:<base64_secret>")
	}

	secretID = parts[0]
	if len(secretID) != 32 {
		return "", nil, fmt.Errorf("secret_id must be 32 hex chars (UUIDv7 without hyphens)")
	}

	for _, c := range secretID {
		if !((c >= '0' && c <= '9') || (c >= 'a' && c <= 'f')) {
			return "", nil, fmt.Errorf("secret_id must be hex chars only")
		}
	}

	secret, err = base64.StdEncoding.DecodeString(parts[1])
	if err != nil {
		return "", nil, fmt.Errorf("invalid base64 encoding: %w", err)
	}

	if len(secret) < 32 {
		return "", nil, fmt.Errorf("secret must be at least 32 bytes, got %d", len(secret))
	}

	return secretID, secret, nil
}
