package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/masakick/wbgt-checker/internal/feed"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// CronSecret authenticates the scheduled trigger endpoints.
	CronSecret string

	FeedBaseURL     string
	FetchTimeout    time.Duration
	FetchRetries    int
	FetchRetryDelay time.Duration

	SnapshotPath    string
	TemperaturePath string

	// DatabaseURL enables the Postgres durable tier when set.
	DatabaseURL string

	// Kafka snapshot-update publishing configuration.
	KafkaBrokers []string
	KafkaEnabled bool
	KafkaTopic   string
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := parseDuration("SHUTDOWN_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}

	fetchTimeout, err := parseDuration("FETCH_TIMEOUT", "30s")
	if err != nil {
		return nil, err
	}

	fetchRetryDelay, err := parseDuration("FETCH_RETRY_DELAY", "1s")
	if err != nil {
		return nil, err
	}

	fetchRetries, err := parseInt("FETCH_RETRIES", 3)
	if err != nil {
		return nil, err
	}

	kafkaEnabled := false
	if v := os.Getenv("KAFKA_ENABLED"); v != "" {
		kafkaEnabled = v == "true"
	}

	cfg := &Config{
		HTTPAddr:        envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        envOrDefault("LOG_LEVEL", "info"),
		LogFormat:       envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		CronSecret: os.Getenv("CRON_SECRET"),

		FeedBaseURL:     envOrDefault("FEED_BASE_URL", feed.DefaultBaseURL),
		FetchTimeout:    fetchTimeout,
		FetchRetries:    fetchRetries,
		FetchRetryDelay: fetchRetryDelay,

		SnapshotPath:    envOrDefault("SNAPSHOT_PATH", "data/wbgt.json"),
		TemperaturePath: envOrDefault("TEMPERATURE_PATH", "data/temperature.json"),

		DatabaseURL: os.Getenv("DATABASE_URL"),

		KafkaBrokers: parseBrokers(envOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaEnabled: kafkaEnabled,
		KafkaTopic:   envOrDefault("KAFKA_TOPIC", "wbgt-snapshot-updates"),
	}

	if cfg.CronSecret == "" {
		return nil, errors.New("CRON_SECRET is required")
	}
	if cfg.FetchRetries < 0 {
		return nil, errors.New("FETCH_RETRIES must not be negative")
	}
	if cfg.KafkaEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_ENABLED is true but KAFKA_BROKERS is not set")
	}

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseDuration(key, fallback string) (time.Duration, error) {
	d, err := time.ParseDuration(envOrDefault(key, fallback))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func parseInt(key string, fallback int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return n, nil
}

func parseBrokers(s string) []string {
	parts := strings.Split(s, ",")
	brokers := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			brokers = append(brokers, p)
		}
	}
	return brokers
}
