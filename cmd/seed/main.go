package main

import (
	"context"
	"database/sql"
	"flag"
	"log"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/rl1809/storefront/internal/adapter/storage"
	"github.com/rl1809/storefront/internal/config"
	"github.com/rl1809/storefront/internal/logging"
)

func main() {
	clearCart := flag.Bool("clear-cart", false, "delete every cart line after seeding")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	logger, err := logging.New("storefront-seed", cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer logger.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		logger.Fatal("failed to open mysql", zap.Error(err))
	}
	defer db.Close()
	if err := db.PingContext(ctx); err != nil {
		logger.Fatal("failed to ping mysql", zap.Error(err))
	}

	adapter := storage.NewMySQLAdapter(db)
	if err := adapter.Migrate(ctx); err != nil {
		logger.Fatal("failed to migrate", zap.Error(err))
	}

	catalog := storage.MusicShopCatalog()
	if err := adapter.SeedInventory(ctx, catalog); err != nil {
		logger.Fatal("failed to seed inventory", zap.Error(err))
	}
	logger.Info("seeded inventory", zap.Int("items", len(catalog)))

	if *clearCart {
		removed, err := adapter.DeleteAllCartLines(ctx)
		if err != nil {
			logger.Fatal("failed to clear cart", zap.Error(err))
		}
		logger.Info("cleared cart", zap.Int64("removed", removed))
	}

	// Invalidate cached catalog
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer rdb.Close()
		cache := storage.NewRedisAdapter(rdb, cfg.CatalogCacheTTL, cfg.IdempotencyTTL)
		if err := cache.InvalidateCatalog(ctx); err != nil {
			logger.Warn("failed to invalidate catalog cache", zap.Error(err))
		} else {
			logger.Info("invalidated catalog cache")
		}
	}
}
