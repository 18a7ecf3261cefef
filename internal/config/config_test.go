package config_test

import (
	"os"
	"testing"
	"time"

	testify "github.com/stretchr/testify/assert"

	"github.com/warekit/shuttle/internal/assert"
	"github.com/warekit/shuttle/internal/assert/helpers"
	"github.com/warekit/shuttle/internal/config"
)

func TestConfigValidation(t *testing.T) {
	as := assert.New(t)

	t.Run("valid_test_config", func(t *testing.T) {
		cfg := helpers.NewTestConfig()
		as.ConfigValid(cfg)
	})

	tests := []struct {
		name          string
		configMod     func(*config.Config)
		errorContains string
	}{
		{
			name: "invalid_api_port_zero",
			configMod: func(c *config.Config) {
				c.APIPort = 0
			},
			errorContains: "invalid API port",
		},
		{
			name: "invalid_api_port_too_high",
			configMod: func(c *config.Config) {
				c.APIPort = 70000
			},
			errorContains: "invalid API port",
		},
		{
			name: "zero_call_depth",
			configMod: func(c *config.Config) {
				c.MaxCallDepth = 0
			},
			errorContains: "call depth",
		},
		{
			name: "zero_iterations",
			configMod: func(c *config.Config) {
				c.MaxIterations = 0
			},
			errorContains: "iterations",
		},
		{
			name: "zero_session_timeout",
			configMod: func(c *config.Config) {
				c.SessionTimeout = 0
			},
			errorContains: "session timeout",
		},
		{
			name: "missing_application_id",
			configMod: func(c *config.Config) {
				c.ApplicationID = ""
			},
			errorContains: "application id",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := helpers.NewTestConfig()
			tt.configMod(cfg)
			as.ConfigInvalid(cfg, tt.errorContains)
		})
	}
}

func TestLoadFromEnv(t *testing.T) {
	as := testify.New(t)

	t.Run("overrides_applied", func(t *testing.T) {
		t.Setenv("API_HOST", "127.0.0.1")
		t.Setenv("API_PORT", "9090")
		t.Setenv("LOG_LEVEL", "debug")
		t.Setenv("APPLICATION_ID", helpers.TestApplicationID)
		t.Setenv("ENGINE_DSN", "postgres://localhost/engine")
		t.Setenv("DEFAULT_DATABASE", "Billing")
		t.Setenv("SESSION_TIMEOUT", "30m")
		t.Setenv("MAX_CALL_DEPTH", "5")

		cfg := config.NewDefaultConfig()
		as.NoError(cfg.LoadFromEnv())
		as.Equal("127.0.0.1", cfg.APIHost)
		as.Equal(9090, cfg.APIPort)
		as.Equal("debug", cfg.LogLevel)
		as.Equal(helpers.TestApplicationID, cfg.ApplicationID)
		as.Equal("postgres://localhost/engine", cfg.EngineDSN)
		as.Equal("Billing", cfg.DefaultDatabase)
		as.Equal(30*time.Minute, cfg.SessionTimeout)
		as.Equal(5, cfg.MaxCallDepth)
	})

	t.Run("bad_port_rejected", func(t *testing.T) {
		t.Setenv("API_PORT", "not-a-port")
		cfg := config.NewDefaultConfig()
		as.Error(cfg.LoadFromEnv())
	})

	t.Run("bad_duration_rejected", func(t *testing.T) {
		t.Setenv("SESSION_TIMEOUT", "soon")
		cfg := config.NewDefaultConfig()
		as.Error(cfg.LoadFromEnv())
	})
}

func TestLoadFromFile(t *testing.T) {
	as := testify.New(t)

	t.Run("yaml_merged", func(t *testing.T) {
		path := t.TempDir() + "/config.yaml"
		data := []byte(
			"api_port: 9999\n" +
				"application_id: " + helpers.TestApplicationID + "\n" +
				"databases:\n" +
				"  WMS: postgres://localhost/wms\n" +
				"  Billing: postgres://localhost/billing\n")
		as.NoError(os.WriteFile(path, data, 0o600))

		cfg := config.NewDefaultConfig()
		as.NoError(cfg.LoadFromFile(path))
		as.Equal(9999, cfg.APIPort)
		as.Len(cfg.Databases, 2)
		as.NoError(cfg.Validate())
	})

	t.Run("missing_file", func(t *testing.T) {
		cfg := config.NewDefaultConfig()
		as.Error(cfg.LoadFromFile("/does/not/exist.yaml"))
	})
}
