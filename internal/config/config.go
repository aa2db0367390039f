package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Kafka stream mode configuration.
	StreamEnabled      bool
	KafkaBrokers       []string
	KafkaSourceTopic   string
	KafkaSinkTopic     string
	KafkaGroupID       string
	BatchSize          int
	BatchFlushInterval time.Duration

	// Upstream data API configuration.
	DataAPIURL       string
	DataAPIEnabled   bool
	DataAPITimeout   time.Duration
	DataAPICacheSize int
	DataAPILimit     int
}

const maxBatchSize = 1000

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := parseDuration("SHUTDOWN_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}

	flushInterval, err := parseDuration("BATCH_FLUSH_INTERVAL", "500ms")
	if err != nil {
		return nil, err
	}

	dataAPITimeout, err := parseDuration("DATA_API_TIMEOUT", "5s")
	if err != nil {
		return nil, err
	}

	batchSize, err := parseBatchSize()
	if err != nil {
		return nil, err
	}

	dataAPIURL := os.Getenv("DATA_API_URL")
	dataAPIEnabled := dataAPIURL != ""
	if v := os.Getenv("DATA_API_ENABLED"); v != "" {
		dataAPIEnabled = v == "true"
	}

	cfg := &Config{
		HTTPAddr:        envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        envOrDefault("LOG_LEVEL", "info"),
		LogFormat:       envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		StreamEnabled:      os.Getenv("STREAM_ENABLED") == "true",
		KafkaBrokers:       parseBrokers(envOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaSourceTopic:   envOrDefault("KAFKA_SOURCE_TOPIC", "viz-requests"),
		KafkaSinkTopic:     envOrDefault("KAFKA_SINK_TOPIC", "viz-recommendations"),
		KafkaGroupID:       envOrDefault("KAFKA_GROUP_ID", "argo-insight"),
		BatchSize:          batchSize,
		BatchFlushInterval: flushInterval,

		DataAPIURL:       dataAPIURL,
		DataAPIEnabled:   dataAPIEnabled,
		DataAPITimeout:   dataAPITimeout,
		DataAPICacheSize: parsePositiveInt("DATA_API_CACHE_SIZE", 1000),
		DataAPILimit:     parsePositiveInt("DATA_API_LIMIT", 200),
	}

	if cfg.StreamEnabled {
		if len(cfg.KafkaBrokers) == 0 {
			return nil, errors.New("KAFKA_BROKERS is required when STREAM_ENABLED is true")
		}
		if cfg.KafkaSourceTopic == "" {
			return nil, errors.New("KAFKA_SOURCE_TOPIC is required when STREAM_ENABLED is true")
		}
		if cfg.KafkaSinkTopic == "" {
			return nil, errors.New("KAFKA_SINK_TOPIC is required when STREAM_ENABLED is true")
		}
	}
	if cfg.DataAPIEnabled && cfg.DataAPIURL == "" {
		return nil, errors.New("DATA_API_ENABLED is true but DATA_API_URL is not set")
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

func parseDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(envOrDefault(key, def))
	if err != nil || d <= 0 {
		return 0, errors.New("invalid " + key)
	}
	return d, nil
}

func parseBatchSize() (int, error) {
	s := envOrDefault("BATCH_SIZE", "50")
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 || n > maxBatchSize {
		return 0, errors.New("invalid BATCH_SIZE: must be between 1 and " + strconv.Itoa(maxBatchSize))
	}
	return n, nil
}

func parsePositiveInt(key string, def int) int {
	if s := os.Getenv(key); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			return n
		}
	}
	return def
}
