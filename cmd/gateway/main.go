package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/DanielPopoola/solpay-gateway/internal/api"
	"github.com/DanielPopoola/solpay-gateway/internal/application"
	"github.com/DanielPopoola/solpay-gateway/internal/application/services"
	"github.com/DanielPopoola/solpay-gateway/internal/config"
	rediscache "github.com/DanielPopoola/solpay-gateway/internal/infrastructure/cache/redis"
	"github.com/DanielPopoola/solpay-gateway/internal/infrastructure/ledger"
	"github.com/DanielPopoola/solpay-gateway/internal/infrastructure/persistence/postgres"
	"github.com/DanielPopoola/solpay-gateway/internal/infrastructure/ratelimit"
	"github.com/DanielPopoola/solpay-gateway/internal/infrastructure/replay"
	"github.com/DanielPopoola/solpay-gateway/internal/infrastructure/retry"
	"github.com/DanielPopoola/solpay-gateway/internal/interfaces/rest"
	"github.com/DanielPopoola/solpay-gateway/internal/interfaces/rest/handlers"
	"github.com/DanielPopoola/solpay-gateway/internal/interfaces/rest/middleware"
	"github.com/DanielPopoola/solpay-gateway/internal/worker"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := cfg.Logger.NewLogger(cfg.Primary.Env)
	slog.SetDefault(logger)

	logger.Info("starting gateway service",
		"env", cfg.Primary.Env,
		"port", cfg.Server.Port,
		"store_backend", cfg.Store.Backend,
		"verification_log", cfg.VerificationLog.Enabled,
		"log_level", cfg.Logger.Level,
	)

	ctx := context.Background()
	checks := make(map[string]handlers.HealthCheck)

	var db *postgres.DB
	if cfg.NeedsDatabase() {
		db, err = postgres.Connect(ctx, &cfg.Database, logger)
		if err != nil {
			logger.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		checks["postgres"] = db.Ping
	}

	var (
		replayStore application.ReplayStore
		limiter     application.RateLimitStore
	)
	switch cfg.Store.Backend {
	case config.BackendRedis:
		rdb, err := rediscache.NewClient(ctx, cfg.Redis, logger)
		if err != nil {
			logger.Error("failed to connect to redis", "error", err)
			os.Exit(1)
		}
		defer rdb.Close()
		checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }

		replayStore = rediscache.NewReplayStore(rdb, cfg.Redis.KeyPrefix, cfg.Replay.PendingTTL, cfg.Replay.Retention)
		limiter = rediscache.NewRateLimitStore(rdb, cfg.Redis.KeyPrefix, cfg.RateLimit.Window, cfg.RateLimit.MaxRequests)
	case config.BackendPostgres:
		replayStore = postgres.NewReplayStore(db, cfg.Replay.PendingTTL, cfg.Worker.BatchSize)
		limiter = postgres.NewRateLimitStore(db, cfg.RateLimit.Window, cfg.RateLimit.MaxRequests)
	default:
		replayStore = replay.NewMemoryStore(cfg.Replay.HighWaterMark, cfg.Replay.EvictionBatch, logger,
			replay.WithMinEvictionAge(cfg.Verification.MaxTransactionAge))
		limiter = ratelimit.NewMemoryStore(cfg.RateLimit.Window, cfg.RateLimit.MaxRequests)
	}

	treasury, err := ledger.ParseAccount(cfg.Verification.TreasuryAccount)
	if err != nil {
		logger.Error("invalid treasury account", "error", err)
		os.Exit(1)
	}

	prices, err := cfg.Prices()
	if err != nil {
		logger.Error("invalid pricing", "error", err)
		os.Exit(1)
	}

	ledgerClient := ledger.NewRetryClient(
		ledger.NewSolanaClient(cfg.Ledger),
		retry.PolicyFromConfig(cfg.Retry),
		logger,
	)
	validator := services.NewPaymentValidator(treasury, cfg.Verification.MaxTransactionAge)

	var (
		opts    []services.ServiceOption
		querier rest.VerificationQuerier
	)
	if cfg.VerificationLog.Enabled {
		verificationRepo := postgres.NewVerificationRepository(db)
		opts = append(opts, services.WithRecorder(verificationRepo))
		querier = services.NewQueryService(verificationRepo)
	}

	verificationService := services.NewVerificationService(
		ledgerClient,
		replayStore,
		limiter,
		validator,
		logger,
		opts...,
	)

	doc, err := api.LoadSpec(ctx)
	if err != nil {
		logger.Error("failed to load openapi document", "error", err)
		os.Exit(1)
	}

	h := handlers.NewHandlers(
		verificationService,
		querier,
		checks,
		cfg.Verification.ExposeReasons,
		logger,
	)

	mux := http.NewServeMux()
	api.RegisterDocsRoutes(mux, doc)
	h.RegisterRoutes(mux, middleware.RequirePayment(
		verificationService,
		prices,
		cfg.Verification.ExposeReasons,
		logger,
	))

	validate, err := middleware.ValidateRequests(doc, logger)
	if err != nil {
		logger.Error("failed to build request validator", "error", err)
		os.Exit(1)
	}

	handler := validate(mux)
	handler = middleware.Recovery(logger)(handler)
	handler = middleware.Timeout(cfg.Server.RequestTimeout)(handler)
	handler = middleware.Logging(logger)(handler)
	handler = middleware.RequestID(handler)

	server := &http.Server{
		Addr:         "0.0.0.0:" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	workerCtx, cancelWorkers := context.WithCancel(context.Background())
	defer cancelWorkers()

	if pruner, ok := replayStore.(application.ReplayPruner); ok {
		pruneWorker := worker.NewReplayPruneWorker(
			pruner,
			cfg.Replay.Retention,
			cfg.Replay.PendingTTL,
			cfg.Worker.Interval,
			logger,
		)
		go pruneWorker.Start(workerCtx)
	}

	go func() {
		logger.Info("server starting", "addr", server.Addr, "services", len(prices))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	cancelWorkers()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}

	logger.Info("server exited")
}
