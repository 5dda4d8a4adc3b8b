package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	OpenWeatherAPIKey string

	KafkaBrokers []string
	KafkaTopic   string
	KafkaGroupID string

	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	TickInterval time.Duration
	FetchTimeout time.Duration
	TickWorkers  int

	ProfileDSN         string
	ThresholdsPath     string
	WindowSnapshotPath string
}

// Load reads configuration from environment variables, applying defaults
// where unset. A .env file in the working directory is honored when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	shutdownTimeout, err := parsePositiveDuration("SHUTDOWN_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}
	tickInterval, err := parsePositiveDuration("TICK_INTERVAL", "1m")
	if err != nil {
		return nil, err
	}
	fetchTimeout, err := parsePositiveDuration("FETCH_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}
	tickWorkers, err := parsePositiveInt("TICK_WORKERS", 4)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		OpenWeatherAPIKey: os.Getenv("OPEN_WEATHER_API_KEY"),

		KafkaBrokers: parseBrokers(envOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaTopic:   envOrDefault("KAFKA_TOPIC", "weather-updates"),
		KafkaGroupID: envOrDefault("KAFKA_GROUP_ID", "weather-alert-service"),

		HTTPAddr:        envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        envOrDefault("LOG_LEVEL", "info"),
		LogFormat:       envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		TickInterval: tickInterval,
		FetchTimeout: fetchTimeout,
		TickWorkers:  tickWorkers,

		ProfileDSN:         envOrDefault("PROFILE_DB_DSN", "profiles.db"),
		ThresholdsPath:     os.Getenv("THRESHOLDS_PATH"),
		WindowSnapshotPath: os.Getenv("WINDOW_SNAPSHOT_PATH"),
	}

	if cfg.OpenWeatherAPIKey == "" {
		return nil, errors.New("OPEN_WEATHER_API_KEY is required")
	}
	if len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_BROKERS is required")
	}
	if cfg.KafkaTopic == "" {
		return nil, errors.New("KAFKA_TOPIC is required")
	}

	return cfg, nil
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseBrokers(s string) []string {
	var brokers []string
	for _, b := range strings.Split(s, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

func parsePositiveDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(envOrDefault(key, def))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func parsePositiveInt(key string, def int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return n, nil
}
