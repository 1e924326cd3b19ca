package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ndquoc/library-notify/internal/api"
	"github.com/ndquoc/library-notify/internal/auth"
	"github.com/ndquoc/library-notify/internal/config"
	"github.com/ndquoc/library-notify/internal/engine"
	"github.com/ndquoc/library-notify/internal/metrics"
	"github.com/ndquoc/library-notify/internal/service"
	"github.com/ndquoc/library-notify/internal/store"
	"github.com/ndquoc/library-notify/internal/worker"
	"github.com/ndquoc/library-notify/internal/ws"
	"github.com/ndquoc/library-notify/migrations"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Persistence: Postgres when configured, otherwise the in-memory
	// reference store.
	var st store.Store
	if cfg.DatabaseURL != "" {
		pgStore, err := store.NewPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Error("failed to connect to postgres", "error", err)
			os.Exit(1)
		}
		defer pgStore.Close()
		logger.Info("connected to PostgreSQL")

		if err := pgStore.RunMigrations(ctx, migrations.Files); err != nil {
			logger.Error("failed to run migrations", "error", err)
			os.Exit(1)
		}
		logger.Info("database migrations applied")

		st = pgStore
	} else {
		logger.Warn("DATABASE_URL not set, using in-memory store")
		st = store.NewMemory()
	}

	redisClient, err := store.NewRedis(ctx, cfg.RedisURL)
	if err != nil {
		logger.Error("failed to connect to redis", "error", err)
		os.Exit(1)
	}
	defer redisClient.Close()
	logger.Info("connected to Redis")

	m := metrics.New()

	hub := ws.NewHub(logger)
	go hub.Run()

	publisher := engine.NewPublisher(st, redisClient, m, logger)

	// Delivery pipeline: dispatcher pulls queued jobs from Redis, the
	// pool runs one outbound call per job.
	deliverer := worker.NewDeliverer(st, m, hub, cfg.DeliveryTimeout, logger)
	pool := worker.NewPool(cfg.NumWorkers, deliverer, logger)
	pool.Start(ctx)

	dispatcher := worker.NewDispatcher(redisClient, pool, logger)
	go dispatcher.Start(ctx)

	router := api.NewRouter(api.Deps{
		Books:       service.NewBookService(st, publisher, logger),
		Webhooks:    service.NewWebhookService(st, logger),
		Users:       st,
		Deliveries:  st,
		Publisher:   publisher,
		Tokens:      auth.NewTokens(cfg.JWTSecret),
		Limiter:     engine.NewRateLimiter(redisClient, logger),
		Idempotency: engine.NewIdempotencyCache(redisClient),
		Metrics:     m,
		Hub:         hub,
		Logger:      logger,
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	// Stop intake first: the dispatcher hands over anything it already
	// claimed before the pool stops accepting jobs, then the pool drains.
	cancel()
	dispatcher.Wait()
	pool.Stop()

	logger.Info("server stopped")
}
