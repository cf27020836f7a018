// cmd/engine/main.go
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"newme-engine/internal/access"
	"newme-engine/internal/clients/account"
	"newme-engine/internal/clients/analysis"
	"newme-engine/internal/clients/catalog"
	"newme-engine/internal/clients/certificate"
	"newme-engine/internal/common/config"
	"newme-engine/internal/common/database"
	"newme-engine/internal/common/logger"
	"newme-engine/internal/common/observability"
	"newme-engine/internal/common/storage"
	"newme-engine/internal/engine"
	"newme-engine/internal/notify"
	"newme-engine/internal/results"
	"newme-engine/internal/server"
	"newme-engine/internal/session"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2 // Exponential backoff
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting test engine...",
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment),
	)

	obs := observability.New(cfg.App.Name)
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Init PostgreSQL with retry ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		return pg.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "PostgreSQL connection")
	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()
	zapLog.Info("PostgreSQL connected successfully")

	// --- Init Redis with retry ---
	var redisClient *database.RedisClient
	err = retryWithBackoff(func() error {
		var err error
		redisClient, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		return redisClient.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "Redis connection")
	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer redisClient.Close()
	zapLog.Info("Redis connected successfully")

	// --- Results schema ---
	resultStore := results.NewStore(pg.DB, log)
	if err := resultStore.EnsureSchema(ctx); err != nil {
		zapLog.Fatal("results schema setup failed", zap.Error(err))
	}

	// --- Collaborator clients ---
	catalogClient := catalog.New(
		cfg.Services.Catalog.BaseURL,
		time.Duration(cfg.Services.Catalog.Timeout)*time.Millisecond,
		redisClient.Client,
		time.Duration(cfg.Catalog.CacheTTL)*time.Second,
		log,
	)
	accountClient := account.New(
		cfg.Services.Account.BaseURL,
		time.Duration(cfg.Services.Account.Timeout)*time.Millisecond,
		log,
	)
	analysisClient := analysis.New(
		cfg.Services.Analysis.BaseURL,
		time.Duration(cfg.Services.Analysis.Timeout)*time.Millisecond,
		log,
	)
	certificateClient := certificate.New(
		cfg.Services.Certificate.BaseURL,
		time.Duration(cfg.Services.Certificate.Timeout)*time.Millisecond,
		log,
	)

	notifier, err := notify.New(
		ctx,
		cfg.Notifications.Email.Enabled,
		cfg.Notifications.AWS.Region,
		cfg.Notifications.Email.FromEmail,
		log,
	)
	if err != nil {
		zapLog.Fatal("notifier setup failed", zap.Error(err))
	}

	// --- Engine wiring ---
	sessions := session.NewManager(
		storage.NewRedisStore(redisClient.Client),
		time.Duration(cfg.Session.TTL)*time.Second,
	)
	eng := engine.New(
		access.NewGate(accountClient, log),
		accountClient,
		catalogClient,
		sessions,
		resultStore,
		analysisClient,
		certificateClient,
		notifier,
		log,
	)

	srv := server.New(
		eng,
		time.Duration(cfg.Server.ReadTimeout)*time.Millisecond,
		time.Duration(cfg.Server.WriteTimeout)*time.Millisecond,
		log,
	)

	// --- Metrics endpoint ---
	go func() {
		http.Handle("/metrics", promhttp.Handler())
		addr := fmt.Sprintf(":%d", cfg.Server.MetricsPort)
		zapLog.Info("Metrics endpoint listening", zap.String("addr", addr))
		if err := http.ListenAndServe(addr, nil); err != nil {
			zapLog.Error("metrics server failed", zap.Error(err))
		}
	}()

	// --- API server ---
	go func() {
		zapLog.Info("API listening", zap.String("addr", cfg.Server.Address))
		if err := srv.Listen(cfg.Server.Address); err != nil {
			zapLog.Fatal("api server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping server...")
	if err := srv.Shutdown(); err != nil {
		zapLog.Error("server shutdown failed", zap.Error(err))
	}
	zapLog.Info("Test engine stopped")
}
