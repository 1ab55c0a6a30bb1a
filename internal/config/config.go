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

const (
	DriverMySQL  = "mysql"
	DriverMemory = "memory"
)

type Config struct {
	HTTPAddr        string
	GRPCAddr        string
	StoreDriver     string
	MySQLDSN        string
	MySQLMaxOpen    int
	RedisAddr       string
	CatalogCacheTTL time.Duration
	IdempotencyTTL  time.Duration
	KafkaBrokers    []string
	CartEventsTopic string
	PublicDir       string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration
}

// Load reads the configuration from the environment. Values from a .env file
// in the working directory are used when present and never override
// variables that are already set.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	return FromEnv(os.Getenv)
}

func FromEnv(getenv func(string) string) (Config, error) {
	env := func(key, fallback string) string {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			return v
		}
		return fallback
	}

	cfg := Config{
		HTTPAddr:        env("HTTP_ADDR", ":8080"),
		GRPCAddr:        env("GRPC_ADDR", ":50051"),
		StoreDriver:     env("STORE_DRIVER", DriverMySQL),
		MySQLDSN:        env("MYSQL_DSN", "root:root@tcp(localhost:3306)/storefront?parseTime=true"),
		RedisAddr:       env("REDIS_ADDR", ""),
		CartEventsTopic: env("CART_EVENTS_TOPIC", "cart-events"),
		PublicDir:       env("PUBLIC_DIR", "public"),
		LogLevel:        env("LOG_LEVEL", "info"),
		LogFormat:       env("LOG_FORMAT", "json"),
	}

	var errs []error
	var err error
	if cfg.MySQLMaxOpen, err = strconv.Atoi(env("MYSQL_MAX_OPEN_CONNS", "50")); err != nil {
		errs = append(errs, fmt.Errorf("MYSQL_MAX_OPEN_CONNS: %w", err))
	}
	if cfg.CatalogCacheTTL, err = time.ParseDuration(env("CATALOG_CACHE_TTL", "30s")); err != nil {
		errs = append(errs, fmt.Errorf("CATALOG_CACHE_TTL: %w", err))
	}
	if cfg.IdempotencyTTL, err = time.ParseDuration(env("IDEMPOTENCY_TTL", "24h")); err != nil {
		errs = append(errs, fmt.Errorf("IDEMPOTENCY_TTL: %w", err))
	}
	if cfg.ShutdownTimeout, err = time.ParseDuration(env("SHUTDOWN_TIMEOUT", "5s")); err != nil {
		errs = append(errs, fmt.Errorf("SHUTDOWN_TIMEOUT: %w", err))
	}

	for _, broker := range strings.Split(env("KAFKA_BROKERS", ""), ",") {
		if broker = strings.TrimSpace(broker); broker != "" {
			cfg.KafkaBrokers = append(cfg.KafkaBrokers, broker)
		}
	}

	switch cfg.StoreDriver {
	case DriverMySQL, DriverMemory:
	default:
		errs = append(errs, fmt.Errorf("STORE_DRIVER: unknown driver %q", cfg.StoreDriver))
	}

	if len(errs) > 0 {
		return Config{}, errors.Join(errs...)
	}
	return cfg, nil
}
