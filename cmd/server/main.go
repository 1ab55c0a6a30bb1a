package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	_ "github.com/go-sql-driver/mysql"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"google.golang.org/grpc"

	"github.com/rl1809/storefront/internal/adapter/handler"
	"github.com/rl1809/storefront/internal/adapter/messaging"
	"github.com/rl1809/storefront/internal/adapter/storage"
	"github.com/rl1809/storefront/internal/config"
	"github.com/rl1809/storefront/internal/core/service"
	"github.com/rl1809/storefront/internal/logging"
	"github.com/rl1809/storefront/internal/metrics"
	"github.com/rl1809/storefront/internal/port"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := logging.New("storefront", cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer logger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize store
	db, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to open store", zap.String("driver", cfg.StoreDriver), zap.Error(err))
	}
	defer closeStore()

	// Initialize Redis
	var cache port.CacheRepository
	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			PoolSize: 100,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Fatal("failed to connect redis", zap.String("addr", cfg.RedisAddr), zap.Error(err))
		}
		defer rdb.Close()
		cache = storage.NewRedisAdapter(rdb, cfg.CatalogCacheTTL, cfg.IdempotencyTTL)
		logger.Info("connected to redis", zap.String("addr", cfg.RedisAddr))
	}

	// Initialize Kafka
	var events port.EventPublisher = messaging.NopPublisher{}
	if len(cfg.KafkaBrokers) > 0 {
		events = messaging.NewKafkaPublisher(messaging.NewKafkaWriter(cfg.KafkaBrokers, cfg.CartEventsTopic))
		logger.Info("publishing cart events",
			zap.Strings("brokers", cfg.KafkaBrokers),
			zap.String("topic", cfg.CartEventsTopic),
		)
	}
	defer events.Close()

	// Initialize services
	cartService := service.NewCartService(db,
		service.WithCache(cache),
		service.WithEventPublisher(events),
		service.WithLogger(logger.Named("cart")),
	)
	catalogService := service.NewCatalogService(db, cache, logger.Named("catalog"))

	// Initialize gRPC server
	grpcServer := grpc.NewServer()
	prober := handler.NewHealthProber(db, 5*time.Second, logger.Named("health"))
	prober.Register(grpcServer)
	go prober.Run(ctx)

	lis, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		logger.Fatal("failed to listen", zap.String("addr", cfg.GRPCAddr), zap.Error(err))
	}

	go func() {
		logger.Info("gRPC server listening", zap.String("addr", cfg.GRPCAddr))
		if err := grpcServer.Serve(lis); err != nil {
			logger.Error("gRPC server error", zap.Error(err))
		}
	}()

	// Initialize HTTP server
	gin.SetMode(gin.ReleaseMode)
	router := handler.NewRouter(handler.RouterConfig{
		Cart:      cartService,
		Catalog:   catalogService,
		Store:     db,
		Metrics:   metrics.NewServerMetrics(),
		Logger:    logger.Named("http"),
		PublicDir: cfg.PublicDir,
	})

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("HTTP server listening", zap.String("addr", cfg.HTTPAddr))
		if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server error", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("HTTP server shutdown", zap.Error(err))
	}
	logger.Info("HTTP server stopped")

	grpcServer.GracefulStop()
	logger.Info("gRPC server stopped")
}

func openStore(ctx context.Context, cfg config.Config, logger *zap.Logger) (port.DatabaseRepository, func(), error) {
	switch cfg.StoreDriver {
	case config.DriverMemory:
		logger.Warn("using in-memory store; cart state is lost on restart")
		return storage.NewMemoryAdapter(storage.MusicShopCatalog()), func() {}, nil

	case config.DriverMySQL:
		db, err := sql.Open("mysql", cfg.MySQLDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("open mysql: %w", err)
		}
		db.SetMaxOpenConns(cfg.MySQLMaxOpen)
		db.SetMaxIdleConns(cfg.MySQLMaxOpen / 2)
		db.SetConnMaxLifetime(5 * time.Minute)

		if err := db.PingContext(ctx); err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("ping mysql: %w", err)
		}
		adapter := storage.NewMySQLAdapter(db)
		if err := adapter.Migrate(ctx); err != nil {
			db.Close()
			return nil, nil, err
		}
		logger.Info("connected to mysql")
		return adapter, func() { db.Close() }, nil
	}
	return nil, nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
}
