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

	"github.com/kislikjeka/walletkeeper/internal/infra/postgres"
	infraRedis "github.com/kislikjeka/walletkeeper/internal/infra/redis"
	"github.com/kislikjeka/walletkeeper/internal/platform/wallet"
	"github.com/kislikjeka/walletkeeper/internal/transport/httpapi"
	"github.com/kislikjeka/walletkeeper/internal/transport/httpapi/handler"
	"github.com/kislikjeka/walletkeeper/internal/transport/httpapi/middleware"
	"github.com/kislikjeka/walletkeeper/migrations"
	"github.com/kislikjeka/walletkeeper/pkg/config"
	"github.com/kislikjeka/walletkeeper/pkg/logger"
)

func main() {
	// Create context that listens for termination signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Options{
		Env:    cfg.Env,
		Format: cfg.LogFormat,
		Level:  cfg.LogLevel,
	}, os.Stdout)
	log.Info("Starting WalletKeeper API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	db, err := postgres.NewPool(ctx, postgres.Config{URL: cfg.DatabaseURL})
	if err != nil {
		log.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	log.Info("Database connection established")

	if cfg.AutoMigrate {
		if err := postgres.Migrate(ctx, db.Pool, migrations.FS, log); err != nil {
			log.Error("Failed to migrate database", "error", err)
			os.Exit(1)
		}
	}

	// Redis DB 0 holds the current-wallet pointers
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisURL,
		Password: cfg.RedisPassword,
		DB:       0,
	})
	defer redisClient.Close()

	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Error("Failed to connect to Redis", "error", err)
		os.Exit(1)
	}
	log.Info("Redis connection established")

	var walletRepo wallet.Repository = postgres.NewWalletRepository(db.Pool)
	if cfg.WalletCacheTTL > 0 {
		cacheClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisURL,
			Password: cfg.RedisPassword,
			DB:       cfg.WalletCacheRedisDB,
		})
		defer cacheClient.Close()

		walletRepo = infraRedis.NewCachedRepository(walletRepo,
			infraRedis.NewCacheWithTTL(cacheClient, cfg.WalletCacheTTL, log))
		log.Info("Wallet cache enabled", "ttl", cfg.WalletCacheTTL, "redis_db", cfg.WalletCacheRedisDB)
	}

	attempts := wallet.NewRateAttemptLimiter(cfg.PasswordAttemptsPerMinute, cfg.PasswordAttemptBurst)
	go attempts.Run(ctx, time.Minute)

	walletSvc := wallet.NewService(
		walletRepo,
		infraRedis.NewSelectionStore(redisClient, log),
		attempts,
		cfg.BcryptCost,
		log,
	)

	jwtSvc := middleware.NewJWTService(cfg.JWTSecret)

	healthHandler := handler.NewHealthHandler(map[string]handler.Check{
		"database": db.Ping,
		"redis": func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		},
	})

	rateLimiter := middleware.NewRateLimiter(100, 20, time.Minute)
	go rateLimiter.Run(ctx)

	r := httpapi.NewRouter(httpapi.Config{
		Logger:            log,
		AllowedOrigins:    cfg.AllowedOrigins,
		RateLimiter:       rateLimiter,
		TrustProxy:        cfg.TrustProxy,
		WalletHandler:     handler.NewWalletHandler(walletSvc),
		ValidationHandler: handler.NewValidationHandler(walletSvc),
		HealthHandler:     healthHandler,
		JWTMiddleware:     middleware.JWTMiddleware(jwtSvc),
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("Server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	log.Info("Shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server shutdown failed", "error", err)
		os.Exit(1)
	}

	log.Info("Server stopped gracefully")
}
