// Package main is the entry point for the production planning API server.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"mfgplan/internal/config"
	"mfgplan/internal/domain/batch"
	"mfgplan/internal/domain/planning"
	v1 "mfgplan/internal/infrastructure/http/v1"
	"mfgplan/internal/infrastructure/cache"
	"mfgplan/internal/infrastructure/http/v1/handlers"
	"mfgplan/internal/infrastructure/storage/postgres"
	"mfgplan/internal/infrastructure/storage/postgres/catalog_repo"
	"mfgplan/pkg/logger"
)

var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.New(logger.Config{
		Level:       cfg.LogLevel,
		Development: cfg.IsDevelopment(),
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	ctx := context.Background()
	log.Infow("starting mfgplan server", "version", version, "env", cfg.Env)

	// --- Database ---
	poolCfg := postgres.DefaultPoolConfig(cfg.DatabaseURL)
	if cfg.DBMaxConns > 0 {
		poolCfg.MaxConns = cfg.DBMaxConns
	}
	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()
	log.Info("database connection established")

	txManager := postgres.NewTxManager(pool)

	// --- Repositories ---
	// Repositories get TxManager from context per-request
	products := catalog_repo.NewProductRepo()
	salesRepo := catalog_repo.NewSalesRepo()

	healthChecks := map[string]handlers.Pinger{"database": pool}

	var sales planning.SalesRepository = salesRepo

	// --- Sales cache ---
	if cfg.CacheEnabled() {
		client, err := cache.NewRedisClient(ctx, cache.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		if err != nil {
			log.Fatalw("failed to connect to redis", "error", err, "addr", cfg.RedisAddr)
		}
		defer func() { _ = client.Close() }()

		sales = cache.NewSalesCache(salesRepo, client, cfg.SalesCacheTTL)
		healthChecks["redis"] = pingRedis(client)

		log.Infow("sales cache enabled", "addr", cfg.RedisAddr, "ttl", cfg.SalesCacheTTL)
	}

	// --- Services ---
	planService := planning.NewService(products, sales, cfg.Planning.Planning())
	batchService := batch.NewService(products, sales, cfg.Planning.Batch())

	// --- Router ---
	router := v1.NewRouter(v1.RouterConfig{
		Logger:               log,
		Pool:                 pool,
		TxManager:            txManager,
		HealthChecks:         healthChecks,
		Plans:                planService,
		Batches:              batchService,
		InfiniteCoverageDays: cfg.Planning.InfiniteCoverageDays,
		AllowedOrigins:       cfg.CORSAllowedOrigins,
		Version:              version,
		Debug:                cfg.IsDevelopment(),
	})

	// --- HTTP Server ---
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Infow("server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalw("server failed", "error", err)
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")
	pool.LogStats(ctx)

	// Give outstanding requests 30 seconds to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Errorw("server forced to shutdown", "error", err)
		return
	}

	log.Info("server stopped")
}

func pingRedis(client *redis.Client) handlers.PingFunc {
	return func(ctx context.Context) error {
		return client.Ping(ctx).Err()
	}
}
