package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envMap(m map[string]string) func(string) string {
	return func(key string) string { return m[key] }
}

func TestFromEnv_Defaults(t *testing.T) {
	cfg, err := FromEnv(envMap(nil))
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, ":50051", cfg.GRPCAddr)
	assert.Equal(t, DriverMySQL, cfg.StoreDriver)
	assert.Equal(t, 50, cfg.MySQLMaxOpen)
	assert.Empty(t, cfg.RedisAddr)
	assert.Empty(t, cfg.KafkaBrokers)
	assert.Equal(t, 30*time.Second, cfg.CatalogCacheTTL)
	assert.Equal(t, 24*time.Hour, cfg.IdempotencyTTL)
	assert.Equal(t, "cart-events", cfg.CartEventsTopic)
}

func TestFromEnv_Overrides(t *testing.T) {
	cfg, err := FromEnv(envMap(map[string]string{
		"STORE_DRIVER":      "memory",
		"REDIS_ADDR":        "redis:6379",
		"KAFKA_BROKERS":     "k1:9092, k2:9092,,",
		"CATALOG_CACHE_TTL": "2m",
		"LOG_FORMAT":        "console",
	}))
	require.NoError(t, err)

	assert.Equal(t, DriverMemory, cfg.StoreDriver)
	assert.Equal(t, "redis:6379", cfg.RedisAddr)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, 2*time.Minute, cfg.CatalogCacheTTL)
	assert.Equal(t, "console", cfg.LogFormat)
}

func TestFromEnv_ReportsEveryInvalidValue(t *testing.T) {
	_, err := FromEnv(envMap(map[string]string{
		"STORE_DRIVER":         "postgres",
		"MYSQL_MAX_OPEN_CONNS": "many",
		"SHUTDOWN_TIMEOUT":     "soon",
	}))
	require.Error(t, err)

	assert.Contains(t, err.Error(), "STORE_DRIVER")
	assert.Contains(t, err.Error(), "MYSQL_MAX_OPEN_CONNS")
	assert.Contains(t, err.Error(), "SHUTDOWN_TIMEOUT")
}
