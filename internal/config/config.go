package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type (
	// Config holds configuration settings for the engine
	Config struct {
		// API server
		APIHost  string `yaml:"api_host"`
		APIPort  int    `yaml:"api_port"`
		LogLevel string `yaml:"log_level"`

		// Application to load at startup
		ApplicationID string `yaml:"application_id"`

		// Engine definition store (modules, devices)
		EngineDSN string `yaml:"engine_dsn"`

		// Named database targets reachable via CONNECT directives
		Driver          string            `yaml:"driver"`
		Databases       map[string]string `yaml:"databases"`
		DefaultDatabase string            `yaml:"default_database"`

		// Session lifecycle
		SessionTimeout  time.Duration `yaml:"session_timeout"`
		CleanupInterval time.Duration `yaml:"cleanup_interval"`

		// Runaway-definition guards
		MaxCallDepth  int `yaml:"max_call_depth"`
		MaxIterations int `yaml:"max_iterations"`
	}
)

const (
	DefaultAPIHost = "0.0.0.0"
	DefaultAPIPort = 8080
	MaxTCPPort     = 65535

	DefaultDriver          = "pgx"
	DefaultDatabaseName    = "WMS"
	DefaultSessionTimeout  = 8 * time.Hour
	DefaultCleanupInterval = 5 * time.Minute
	DefaultMaxCallDepth    = 20
	DefaultMaxIterations   = 10000
)

var (
	ErrInvalidAPIPort       = errors.New("invalid API port")
	ErrInvalidCallDepth     = errors.New("max call depth must be positive")
	ErrInvalidIterations    = errors.New("max iterations must be positive")
	ErrInvalidTimeout       = errors.New("session timeout must be positive")
	ErrMissingApplicationID = errors.New("application id is required")
)

// NewDefaultConfig creates a configuration with sensible defaults for all
// engine settings
func NewDefaultConfig() *Config {
	return &Config{
		APIHost:         DefaultAPIHost,
		APIPort:         DefaultAPIPort,
		LogLevel:        "info",
		Driver:          DefaultDriver,
		Databases:       map[string]string{},
		DefaultDatabase: DefaultDatabaseName,
		SessionTimeout:  DefaultSessionTimeout,
		CleanupInterval: DefaultCleanupInterval,
		MaxCallDepth:    DefaultMaxCallDepth,
		MaxIterations:   DefaultMaxIterations,
	}
}

// LoadFromFile merges settings from a YAML configuration file
func (c *Config) LoadFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

// LoadFromEnv populates configuration values from environment variables.
// Returns an error if any env var cannot be parsed.
func (c *Config) LoadFromEnv() error {
	if host := os.Getenv("API_HOST"); host != "" {
		c.APIHost = host
	}
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		c.LogLevel = level
	}
	if appID := os.Getenv("APPLICATION_ID"); appID != "" {
		c.ApplicationID = appID
	}
	if dsn := os.Getenv("ENGINE_DSN"); dsn != "" {
		c.EngineDSN = dsn
	}
	if name := os.Getenv("DEFAULT_DATABASE"); name != "" {
		c.DefaultDatabase = name
	}

	if err := loadEnvInt("API_PORT", &c.APIPort, 0, MaxTCPPort); err != nil {
		return err
	}
	if err := loadEnvInt(
		"MAX_CALL_DEPTH", &c.MaxCallDepth, 0, 1000,
	); err != nil {
		return err
	}
	if err := loadEnvInt(
		"MAX_ITERATIONS", &c.MaxIterations, 0, 1_000_000,
	); err != nil {
		return err
	}

	if err := loadEnvDuration(
		"SESSION_TIMEOUT", &c.SessionTimeout,
	); err != nil {
		return err
	}
	return loadEnvDuration("CLEANUP_INTERVAL", &c.CleanupInterval)
}

// Validate checks that all configuration values are valid
func (c *Config) Validate() error {
	if c.APIPort <= 0 || c.APIPort > MaxTCPPort {
		return fmt.Errorf("%w: %d", ErrInvalidAPIPort, c.APIPort)
	}
	if c.MaxCallDepth <= 0 {
		return ErrInvalidCallDepth
	}
	if c.MaxIterations <= 0 {
		return ErrInvalidIterations
	}
	if c.SessionTimeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.ApplicationID == "" {
		return ErrMissingApplicationID
	}
	return nil
}

func loadEnvInt(key string, dst *int, min, max int) error {
	s := os.Getenv(key)
	if s == "" {
		return nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("invalid %s: %q", key, s)
	}
	if v <= min || v > max {
		return fmt.Errorf("invalid %s: %d out of range (%d, %d]",
			key, v, min, max)
	}
	*dst = v
	return nil
}

func loadEnvDuration(key string, dst *time.Duration) error {
	s := os.Getenv(key)
	if s == "" {
		return nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid %s: %q", key, s)
	}
	*dst = d
	return nil
}
