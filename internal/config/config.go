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
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Upstream data source configuration.
	SourceTimeout    time.Duration
	SourceMaxRetries int
	MaxRangeDays     int
	PowerBaseURL     string
	GPMBaseURL       string
	MODISBaseURL     string
	WorldviewBaseURL string
	EarthdataToken   string

	// Caching. SourceCacheSize enables the in-process LRU when positive;
	// RedisAddr enables the shared verdict cache when set.
	SourceCacheSize int
	RedisAddr       string
	VerdictCacheTTL time.Duration

	// Alert publishing. Disabled when KafkaBrokers is empty.
	KafkaBrokers     []string
	KafkaAlertsTopic string

	// Circuit breaker tuning, shared by all four sources.
	BreakerFailures uint32
	BreakerOpenFor  time.Duration
}

// LoggerLevel implements observability.LoggerSettings.
func (c *Config) LoggerLevel() string { return c.LogLevel }

// LoggerFormat implements observability.LoggerSettings.
func (c *Config) LoggerFormat() string { return c.LogFormat }

// Load reads configuration from the environment, applying defaults where
// unset. A .env file in the working directory is loaded first if present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	shutdownTimeout, err := parseDuration("SHUTDOWN_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}
	sourceTimeout, err := parseDuration("SOURCE_TIMEOUT", "15s")
	if err != nil {
		return nil, err
	}
	verdictTTL, err := parseDuration("VERDICT_CACHE_TTL", "15m")
	if err != nil {
		return nil, err
	}
	breakerOpenFor, err := parseDuration("BREAKER_OPEN_FOR", "30s")
	if err != nil {
		return nil, err
	}

	maxRetries, err := parseInt("SOURCE_MAX_RETRIES", 0, 0)
	if err != nil {
		return nil, err
	}
	maxRangeDays, err := parseInt("MAX_RANGE_DAYS", 366, 1)
	if err != nil {
		return nil, err
	}
	cacheSize, err := parseInt("SOURCE_CACHE_SIZE", 256, 0)
	if err != nil {
		return nil, err
	}
	breakerFailures, err := parseInt("BREAKER_FAILURES", 5, 1)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		HTTPAddr:        envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        envOrDefault("LOG_LEVEL", "info"),
		LogFormat:       envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		SourceTimeout:    sourceTimeout,
		SourceMaxRetries: maxRetries,
		MaxRangeDays:     maxRangeDays,
		PowerBaseURL:     envOrDefault("POWER_BASE_URL", "https://power.larc.nasa.gov/api/temporal/daily/point"),
		GPMBaseURL:       envOrDefault("GPM_BASE_URL", "https://gpm1.gesdisc.eosdis.nasa.gov/daac-bin/timeseries"),
		MODISBaseURL:     envOrDefault("MODIS_BASE_URL", "https://modis.ornl.gov/rst/api/v1/MOD13Q1/subset"),
		WorldviewBaseURL: envOrDefault("WORLDVIEW_BASE_URL", "https://wvs.earthdata.nasa.gov/api/v1/snapshot"),
		EarthdataToken:   os.Getenv("EARTHDATA_TOKEN"),

		SourceCacheSize: cacheSize,
		RedisAddr:       os.Getenv("REDIS_ADDR"),
		VerdictCacheTTL: verdictTTL,

		KafkaBrokers:     parseBrokers(os.Getenv("KAFKA_BROKERS")),
		KafkaAlertsTopic: envOrDefault("KAFKA_ALERTS_TOPIC", "crop-risk-alerts"),

		BreakerFailures: uint32(breakerFailures),
		BreakerOpenFor:  breakerOpenFor,
	}

	if cfg.HTTPAddr == "" {
		return nil, errors.New("HTTP_ADDR is required")
	}
	if len(cfg.KafkaBrokers) > 0 && cfg.KafkaAlertsTopic == "" {
		return nil, errors.New("KAFKA_BROKERS is set but KAFKA_ALERTS_TOPIC is empty")
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

func parseInt(key string, fallback, min int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < min {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return n, nil
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
