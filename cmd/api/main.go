package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/user/html5-auditor/internal/adapter/chromedp_browser"
	"github.com/user/html5-auditor/internal/adapter/postgres"
	redis_adapter "github.com/user/html5-auditor/internal/adapter/redis"
	"github.com/user/html5-auditor/internal/adapter/vnu"
	"github.com/user/html5-auditor/internal/analyzer"
	"github.com/user/html5-auditor/internal/delivery/http/handler"
	"github.com/user/html5-auditor/internal/delivery/http/router"
	"github.com/user/html5-auditor/internal/repository"
	"github.com/user/html5-auditor/internal/usecase"
	"github.com/user/html5-auditor/pkg/config"
	"github.com/user/html5-auditor/pkg/logger"
)

func main() {
	// --- Configuration ---
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	// --- Logger ---
	logger.Init(os.Stdout, logger.ParseLevel(cfg.LogLevel), cfg.LogFormat)
	slog.Info("Logger initialized", "level", cfg.LogLevel, "format", cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	health := map[string]handler.Pinger{}

	// --- Repositories ---
	// Both stores are optional; a nil interface disables them.
	var (
		results  repository.AuditResultRepository
		failures repository.AuditFailureRepository
		cache    repository.ResultCacheRepository
	)

	// PostgreSQL
	if cfg.PostgresURL != "" {
		dbpool, err := pgxpool.New(ctx, cfg.PostgresURL)
		if err != nil {
			slog.Error("Unable to connect to database", "error", err)
			os.Exit(1)
		}
		defer dbpool.Close()
		if err := dbpool.Ping(ctx); err != nil {
			slog.Error("Unable to reach database", "error", err)
			os.Exit(1)
		}
		if err := postgres.EnsureSchema(ctx, dbpool); err != nil {
			slog.Error("Unable to apply schema", "error", err)
			os.Exit(1)
		}
		resultRepo := postgres.NewAuditResultRepo(dbpool)
		results = resultRepo
		failures = postgres.NewAuditFailureRepo(dbpool)
		health["postgres"] = resultRepo
		slog.Info("PostgreSQL connection pool established")
	} else {
		slog.Info("POSTGRES_URL not set, audit results will not be persisted")
	}

	// Redis
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer rdb.Close()
		if _, err := rdb.Ping(ctx).Result(); err != nil {
			slog.Error("Unable to connect to Redis", "error", err)
			os.Exit(1)
		}
		resultCache := redis_adapter.NewResultCache(rdb)
		cache = resultCache
		health["redis"] = resultCache
		slog.Info("Redis connection established")
	} else {
		slog.Info("REDIS_ADDR not set, audit results will not be cached")
	}

	// --- Validator ---
	installer := vnu.NewInstaller(cfg.ValidatorDir, cfg.ValidatorURL, cfg.DownloadTimeout())
	if !installer.Installed() {
		go func() {
			slog.Info("vnu.jar missing, downloading in the background", "url", cfg.ValidatorURL)
			if err := installer.Install(ctx, nil); err != nil {
				slog.Warn("Validator download failed, audits will report it as unavailable", "error", err)
			}
		}()
	}
	validator := vnu.NewValidator(cfg.ValidatorDir, cfg.ValidatorTimeout())

	// --- Use Cases ---
	fetcher := chromedp_browser.NewChromedpFetcher(cfg.PageLoadTimeout(), cfg.SettleDelay())
	an := analyzer.New(analyzer.TitleBounds{Min: cfg.TitleMinLength, Max: cfg.TitleMaxLength})
	auditor := usecase.NewAuditUseCase(fetcher, validator, an, usecase.Config{
		Results:        results,
		Failures:       failures,
		Cache:          cache,
		CacheTTL:       cfg.CacheTTL(),
		MaxConcurrency: cfg.MaxConcurrency,
		ScreenshotPath: usecase.HashedScreenshotPath(cfg.ScreenshotDir),
	})

	// --- HTTP Server ---
	apiHandler := handler.NewHandler(auditor, results, failures, health, cfg.AuditTimeout())
	httpRouter := router.New(apiHandler)

	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      httpRouter,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: cfg.AuditTimeout() + 10*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		slog.Info("Starting server", "port", cfg.ServerPort)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Could not listen on port", "port", cfg.ServerPort, "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Graceful shutdown failed", "error", err)
	}
	slog.Info("Server stopped")
}
