// Package config provides configuration management for rulekit services.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// ServerConfig holds configuration for the rule administration API service.
type ServerConfig struct {
	Host           string
	Port           int
	RequestTimeout time.Duration
	DatabaseURL    string
	LogLevel       string
	LogFormat      string
}

// DefaultServerConfig returns configuration with default values.
func DefaultServerConfig() *ServerConfig {
	return &ServerConfig{
		Host:           "0.0.0.0",
		Port:           8080,
		RequestTimeout: 30 * time.Second,
		LogLevel:       "info",
		LogFormat:      "json",
	}
}

// APIToken extracts the admin API bearer token from the environment.
// Tokens are environment-only; config files carrying one are rejected at
// load time. An empty return means auth is disabled (local development).
func APIToken() (string, error) {
	token := strings.TrimSpace(os.Getenv("RULEKIT_API_TOKEN"))
	if token == "" {
		return "", nil
	}
	if len(token) < 16 {
		return "", fmt.Errorf("RULEKIT_API_TOKEN must be at least 16 characters, got %d", len(token))
	}
	return token, nil
}
