package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testAPIKey = "ow-test-key"

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("OPEN_WEATHER_API_KEY", testAPIKey)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, testAPIKey, cfg.OpenWeatherAPIKey)
	assert.Equal(t, []string{"localhost:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "weather-updates", cfg.KafkaTopic)
	assert.Equal(t, "weather-alert-service", cfg.KafkaGroupID)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, time.Minute, cfg.TickInterval)
	assert.Equal(t, 10*time.Second, cfg.FetchTimeout)
	assert.Equal(t, 4, cfg.TickWorkers)
	assert.Equal(t, "profiles.db", cfg.ProfileDSN)
	assert.Empty(t, cfg.ThresholdsPath)
	assert.Empty(t, cfg.WindowSnapshotPath)
}

func TestLoad_CustomEnv(t *testing.T) {
	t.Setenv("OPEN_WEATHER_API_KEY", testAPIKey)
	t.Setenv("KAFKA_BROKERS", "broker1:9092, broker2:9092")
	t.Setenv("KAFKA_TOPIC", "custom-updates")
	t.Setenv("KAFKA_GROUP_ID", "custom-group")
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("SHUTDOWN_TIMEOUT", "30s")
	t.Setenv("TICK_INTERVAL", "5m")
	t.Setenv("FETCH_TIMEOUT", "3s")
	t.Setenv("TICK_WORKERS", "8")
	t.Setenv("PROFILE_DB_DSN", "/data/profiles.db")
	t.Setenv("THRESHOLDS_PATH", "/etc/cropwatch/thresholds.yaml")
	t.Setenv("WINDOW_SNAPSHOT_PATH", "/data/windows.snap")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"broker1:9092", "broker2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "custom-updates", cfg.KafkaTopic)
	assert.Equal(t, "custom-group", cfg.KafkaGroupID)
	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, 5*time.Minute, cfg.TickInterval)
	assert.Equal(t, 3*time.Second, cfg.FetchTimeout)
	assert.Equal(t, 8, cfg.TickWorkers)
	assert.Equal(t, "/data/profiles.db", cfg.ProfileDSN)
	assert.Equal(t, "/etc/cropwatch/thresholds.yaml", cfg.ThresholdsPath)
	assert.Equal(t, "/data/windows.snap", cfg.WindowSnapshotPath)
}

func TestLoad_MissingAPIKey(t *testing.T) {
	t.Setenv("OPEN_WEATHER_API_KEY", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "OPEN_WEATHER_API_KEY")
}

func TestLoad_InvalidTickInterval(t *testing.T) {
	t.Setenv("OPEN_WEATHER_API_KEY", testAPIKey)
	t.Setenv("TICK_INTERVAL", "not-a-duration")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TICK_INTERVAL")
}

func TestLoad_NegativeFetchTimeout(t *testing.T) {
	t.Setenv("OPEN_WEATHER_API_KEY", testAPIKey)
	t.Setenv("FETCH_TIMEOUT", "-5s")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "FETCH_TIMEOUT")
}

func TestLoad_InvalidTickWorkers(t *testing.T) {
	t.Setenv("OPEN_WEATHER_API_KEY", testAPIKey)
	t.Setenv("TICK_WORKERS", "0")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TICK_WORKERS")
}
