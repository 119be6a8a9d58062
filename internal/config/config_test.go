package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "fire_data.db", cfg.DatabasePath)
	assert.Equal(t, []string{"localhost:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "fire-replay-events", cfg.KafkaTopic)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, "slow", cfg.DefaultSpeed)
	assert.Equal(t, "block", cfg.OverflowPolicy)
}

func TestLoad_CustomEnv(t *testing.T) {
	t.Setenv("DATABASE_PATH", "/var/data/fires.db")
	t.Setenv("KAFKA_BROKERS", "broker1:9092,broker2:9092")
	t.Setenv("KAFKA_TOPIC", "custom-events")
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("SHUTDOWN_TIMEOUT", "30s")
	t.Setenv("DEFAULT_SPEED", "fastest")
	t.Setenv("OVERFLOW_POLICY", "drop_oldest")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/var/data/fires.db", cfg.DatabasePath)
	assert.Equal(t, []string{"broker1:9092", "broker2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "custom-events", cfg.KafkaTopic)
	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, "fastest", cfg.DefaultSpeed)
	assert.Equal(t, "drop_oldest", cfg.OverflowPolicy)
}

func TestLoad_UnknownDefaultSpeed(t *testing.T) {
	t.Setenv("DEFAULT_SPEED", "warp")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DEFAULT_SPEED")
}

func TestLoad_UnknownOverflowPolicy(t *testing.T) {
	t.Setenv("OVERFLOW_POLICY", "drop_everything")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "OVERFLOW_POLICY")
}

func TestLoad_InvalidShutdownTimeout(t *testing.T) {
	t.Setenv("SHUTDOWN_TIMEOUT", "0s")

	_, err := Load()
	assert.Error(t, err)
}
