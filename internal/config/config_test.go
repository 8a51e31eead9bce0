package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"codeberg.org/mirrwin/upsmon/internal/config"
	"codeberg.org/mirrwin/upsmon/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	tempDir := t.TempDir()

	configContent := []byte(`
interval = 500
buffer_size = 10
smoothing_base = 1.5
max_points = 50
database = "/var/lib/upsmon/baselines.db"
listen = ":9090"
source = "kafka"
kafka_brokers = ["broker-1:9092", "broker-2:9092"]
kafka_topic = "ups.telemetry"
log_level = "debug"
`)
	configPath := filepath.Join(tempDir, "upsmon.toml")
	err := os.WriteFile(configPath, configContent, 0o600)
	require.NoError(t, err)

	t.Setenv("UPSMON_CONFIG", configPath)

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 500, cfg.Interval, "Expected Interval 500")
	assert.Equal(t, 10, cfg.BufferSize, "Expected BufferSize 10")
	assert.InDelta(t, 1.5, cfg.SmoothingBase, 1e-9, "Expected SmoothingBase 1.5")
	assert.Equal(t, 50, cfg.MaxPoints, "Expected MaxPoints 50")
	assert.Equal(t, "/var/lib/upsmon/baselines.db", cfg.Database)
	assert.Equal(t, ":9090", cfg.Listen, "Expected Listen :9090")
	assert.Equal(t, "kafka", cfg.Source, "Expected Source kafka")
	assert.Equal(t, []string{"broker-1:9092", "broker-2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "ups.telemetry", cfg.KafkaTopic)
	assert.Equal(t, "debug", cfg.LogLevel, "Expected LogLevel debug")
}

func TestLoadDefaults(t *testing.T) {
	// Ensure no config file is picked up
	t.Setenv("UPSMON_CONFIG", "")

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	defer os.Chdir(wd)

	cfg, err := config.Load()
	require.NoError(t, err, "Failed to load config")

	assert.Equal(t, 1000, cfg.Interval, "Expected default Interval 1000")
	assert.Equal(t, 15, cfg.BufferSize, "Expected default BufferSize 15")
	assert.InDelta(t, 1.2, cfg.SmoothingBase, 1e-9, "Expected default SmoothingBase 1.2")
	assert.Equal(t, 100, cfg.MaxPoints, "Expected default MaxPoints 100")
	assert.Equal(t, 20, cfg.SeedCount, "Expected default SeedCount 20")
	assert.Equal(t, 0, cfg.RevertAfter, "Expected default RevertAfter 0")
	assert.Equal(t, "http", cfg.Source, "Expected default Source http")
	assert.Equal(t, config.DefaultLogLevel, cfg.LogLevel, "Expected default LogLevel info")
}

func TestLoadConfigFileInvalidFormat(t *testing.T) {
	tempDir := t.TempDir()

	configContent := []byte(`
This is not a valid TOML file
`)
	configPath := filepath.Join(tempDir, "upsmon.toml")
	err := os.WriteFile(configPath, configContent, 0o600)
	require.NoError(t, err)

	t.Setenv("UPSMON_CONFIG", configPath)

	_, err = config.Load()
	require.Error(t, err)

	var appErr errors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, errors.ErrReadConfig, appErr.Code())
}

func TestInvalidLogLevel(t *testing.T) {
	tempDir := t.TempDir()

	configContent := []byte(`
log_level = "chatty"
`)
	configPath := filepath.Join(tempDir, "upsmon.toml")
	err := os.WriteFile(configPath, configContent, 0o600)
	require.NoError(t, err)

	t.Setenv("UPSMON_CONFIG", configPath)

	_, err = config.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid_log_level")
}

func TestValidate(t *testing.T) {
	base := func() *config.Config {
		return &config.Config{
			Interval:      1000,
			BufferSize:    15,
			SmoothingBase: 1.2,
			MaxPoints:     100,
			SeedCount:     20,
			SeedSpacing:   1000,
			Source:        "none",
			LogLevel:      "info",
		}
	}

	tests := []struct {
		name    string
		mutate  func(*config.Config)
		wantErr bool
	}{
		{"valid", func(*config.Config) {}, false},
		{"zero interval", func(c *config.Config) { c.Interval = 0 }, true},
		{"zero buffer", func(c *config.Config) { c.BufferSize = 0 }, true},
		{"base below one", func(c *config.Config) { c.SmoothingBase = 0.9 }, true},
		{"zero max points", func(c *config.Config) { c.MaxPoints = 0 }, true},
		{"negative revert", func(c *config.Config) { c.RevertAfter = -1 }, true},
		{"unknown source", func(c *config.Config) { c.Source = "mqtt" }, true},
		{"kafka without brokers", func(c *config.Config) { c.Source = "kafka" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
