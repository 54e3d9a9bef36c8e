// Package config handles configuration loading and management
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// ErrMissingVar is returned when a required environment variable is not set.
var ErrMissingVar = errors.New("required configuration missing")

// Config holds the orchestrator connection and validation settings.
type Config struct {
	Host               string
	APIToken           string
	EnterpriseID       int
	EdgeID             int
	InsecureSkipVerify bool
	StrictFields       bool
	HTTPTimeout        time.Duration
	LogLevel           string
}

// Load reads configuration from environment variables and .env file
func Load() (*Config, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		// It's okay if the file doesn't exist
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("error loading .env file: %w", err)
		}
	}

	cfg := &Config{
		Host:     os.Getenv(EnvHost),
		APIToken: os.Getenv(EnvAPIToken),
		LogLevel: getEnv(EnvLogLevel, DefaultLogLevel),
	}

	if cfg.Host == "" {
		return nil, fmt.Errorf("%w: %s", ErrMissingVar, EnvHost)
	}

	if cfg.APIToken == "" {
		return nil, fmt.Errorf("%w: %s", ErrMissingVar, EnvAPIToken)
	}

	enterpriseID := os.Getenv(EnvEnterpriseID)
	if enterpriseID == "" {
		return nil, fmt.Errorf("%w: %s", ErrMissingVar, EnvEnterpriseID)
	}

	id, err := strconv.Atoi(enterpriseID)
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %w", EnvEnterpriseID, err)
	}

	cfg.EnterpriseID = id

	// The edge id is optional: without one the edge-scoped probes are
	// skipped, not failed.
	if v := os.Getenv(EnvEdgeID); v != "" {
		edgeID, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", EnvEdgeID, err)
		}

		cfg.EdgeID = edgeID
	}

	insecure, err := strconv.ParseBool(getEnv(EnvInsecureSkipVerify, "false"))
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %w", EnvInsecureSkipVerify, err)
	}

	cfg.InsecureSkipVerify = insecure

	strict, err := strconv.ParseBool(getEnv(EnvStrictFields, "false"))
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %w", EnvStrictFields, err)
	}

	cfg.StrictFields = strict

	timeout, err := time.ParseDuration(getEnv(EnvHTTPTimeout, DefaultHTTPTimeout))
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %w", EnvHTTPTimeout, err)
	}

	cfg.HTTPTimeout = timeout

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func (c *Config) String() string {
	tokenDisplay := "(not set)"
	if c.APIToken != "" {
		tokenDisplay = "********"
	}

	edgeDisplay := strconv.Itoa(c.EdgeID)
	if c.EdgeID == 0 {
		edgeDisplay = "(not set, edge probes skipped)"
	}

	return fmt.Sprintf(`Current Configuration:
======================
VCO Host:           %s
API Token:          %s
Enterprise ID:      %d
Edge ID:            %s
Skip TLS Verify:    %t
Strict Fields:      %t
HTTP Timeout:       %s
Log Level:          %s`,
		c.Host,
		tokenDisplay,
		c.EnterpriseID,
		edgeDisplay,
		c.InsecureSkipVerify,
		c.StrictFields,
		c.HTTPTimeout,
		c.LogLevel,
	)
}
