package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)

	assert.Equal(t, 15*time.Second, cfg.SourceTimeout)
	assert.Equal(t, 0, cfg.SourceMaxRetries)
	assert.Equal(t, 366, cfg.MaxRangeDays)
	assert.Contains(t, cfg.PowerBaseURL, "power.larc.nasa.gov")
	assert.Empty(t, cfg.EarthdataToken)

	assert.Equal(t, 256, cfg.SourceCacheSize)
	assert.Empty(t, cfg.RedisAddr)
	assert.Equal(t, 15*time.Minute, cfg.VerdictCacheTTL)

	assert.Empty(t, cfg.KafkaBrokers)
	assert.Equal(t, "crop-risk-alerts", cfg.KafkaAlertsTopic)

	assert.Equal(t, uint32(5), cfg.BreakerFailures)
	assert.Equal(t, 30*time.Second, cfg.BreakerOpenFor)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9999")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("SOURCE_TIMEOUT", "3s")
	t.Setenv("SOURCE_MAX_RETRIES", "2")
	t.Setenv("MAX_RANGE_DAYS", "31")
	t.Setenv("EARTHDATA_TOKEN", "tok")
	t.Setenv("SOURCE_CACHE_SIZE", "0")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("KAFKA_BROKERS", "b1:9092, b2:9092 ,")
	t.Setenv("BREAKER_FAILURES", "3")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9999", cfg.HTTPAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 3*time.Second, cfg.SourceTimeout)
	assert.Equal(t, 2, cfg.SourceMaxRetries)
	assert.Equal(t, 31, cfg.MaxRangeDays)
	assert.Equal(t, "tok", cfg.EarthdataToken)
	assert.Equal(t, 0, cfg.SourceCacheSize)
	assert.Equal(t, "localhost:6379", cfg.RedisAddr)
	assert.Equal(t, []string{"b1:9092", "b2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, uint32(3), cfg.BreakerFailures)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := []struct {
		key, value string
	}{
		{"SHUTDOWN_TIMEOUT", "soon"},
		{"SOURCE_TIMEOUT", "-2s"},
		{"VERDICT_CACHE_TTL", "0s"},
		{"BREAKER_OPEN_FOR", "never"},
		{"SOURCE_MAX_RETRIES", "-1"},
		{"MAX_RANGE_DAYS", "0"},
		{"SOURCE_CACHE_SIZE", "many"},
		{"BREAKER_FAILURES", "0"},
	}

	for _, tc := range cases {
		t.Run(tc.key, func(t *testing.T) {
			t.Setenv(tc.key, tc.value)

			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.key)
		})
	}
}

func TestLoadBrokersWhitespaceOnly(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", " , ,")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Empty(t, cfg.KafkaBrokers, "whitespace-only broker list disables publishing")
}
