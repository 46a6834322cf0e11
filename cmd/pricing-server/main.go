package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/af-corp/llm-cost-calculator/internal/catalog"
	"github.com/af-corp/llm-cost-calculator/internal/config"
	"github.com/af-corp/llm-cost-calculator/internal/ratelimit"
	"github.com/af-corp/llm-cost-calculator/internal/reference"
	"github.com/af-corp/llm-cost-calculator/internal/server"
	"github.com/af-corp/llm-cost-calculator/internal/syncjob"
	"github.com/af-corp/llm-cost-calculator/internal/telemetry"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
)

var version = "dev"

func main() {
	configDir := flag.String("config", "configs", "path to configuration directory")
	flag.Parse()

	// Load configuration with a bootstrap logger, then rebuild it from config.
	logger := telemetry.NewLogger(os.Stdout, "info", "json")
	loader := config.NewLoader(*configDir, logger)
	if err := loader.Load(); err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	cfg := loader.Config()
	logger = telemetry.NewLogger(os.Stdout, cfg.Telemetry.LogLevel, cfg.Telemetry.LogFormat)
	slog.SetDefault(logger)

	if err := loader.Watch(); err != nil {
		logger.Warn("failed to start config watcher", "error", err)
	}

	metrics := telemetry.NewMetrics(prometheus.DefaultRegisterer)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Serve the published catalog, falling back to the curated list.
	cat := server.NewCatalog(cfg.Pricing.CatalogPath, metrics, logger)
	if err := cat.Watch(ctx); err != nil {
		logger.Warn("failed to watch catalog file", "path", cfg.Pricing.CatalogPath, "error", err)
	}

	// Optional in-process sync; the watcher picks up each publish.
	if expr := cfg.Sync.Schedule; expr != "" {
		job := &syncjob.Job{
			Sync:      cfg.Sync,
			Parsing:   cfg.Parsing,
			Publisher: catalog.FilePublisher{Path: cfg.Pricing.CatalogPath},
			Metrics:   metrics,
			Logger:    logger,
		}
		if _, err := syncjob.NextRun(expr, time.Now()); err != nil {
			logger.Error("invalid sync schedule", "error", err)
			os.Exit(1)
		}
		go func() {
			if err := job.Schedule(ctx, expr); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("sync scheduler stopped", "error", err)
			}
		}()
	}

	// Connect to Redis for the per-client rate limit
	var limiter *ratelimit.Limiter
	if cfg.Server.RateLimitRPM > 0 {
		var rdb *redis.Client
		redisCfg := cfg.Storage.Redis
		if len(redisCfg.Addresses) > 0 && redisCfg.Addresses[0] != "" {
			rdb = redis.NewClient(&redis.Options{
				Addr:     redisCfg.Addresses[0],
				Password: redisCfg.Password,
				DB:       redisCfg.DB,
				PoolSize: redisCfg.PoolSize,
			})
			if err := rdb.Ping(ctx).Err(); err != nil {
				logger.Warn("redis not reachable (rate limit disabled)", "error", err)
				rdb.Close()
				rdb = nil
			} else {
				logger.Info("redis connected")
				defer rdb.Close()
			}
		}
		limiter = ratelimit.NewLimiter(rdb, redisCfg.KeyPrefix)
	}

	opts := server.Options{
		Catalog: cat,
		Index: func() reference.Index {
			return reference.IndexFromConfig(loader.References())
		},
		Metrics:        metrics,
		MetricsHandler: promhttp.Handler(),
		Logger:         logger,
		StaticDir:      cfg.Server.StaticDir,
		Version:        version,
	}
	if limiter != nil {
		opts.RateLimiter = limiter
		opts.RateLimitRPM = cfg.Server.RateLimitRPM
	}
	srv := server.New(opts)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	httpSrv := &http.Server{
		Addr:         addr,
		Handler:      srv.Routes(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Graceful shutdown
	errCh := make(chan error, 1)
	go func() {
		logger.Info("pricing server starting", "addr", addr, "version", version, "catalog", cfg.Pricing.CatalogPath)
		errCh <- httpSrv.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		logger.Info("received shutdown signal", "signal", sig)
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}

	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.GracefulShutdown)
	defer shutdownCancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}
	logger.Info("pricing server stopped")
}
