package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/af-corp/llm-cost-calculator/internal/config"
	"github.com/af-corp/llm-cost-calculator/internal/syncjob"
	"github.com/af-corp/llm-cost-calculator/internal/telemetry"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

func main() {
	configDir := flag.String("config", "configs", "path to configuration directory")
	output := flag.String("output", "", "write the catalog to this path (overrides config and env)")
	flag.Parse()

	logger := telemetry.NewLogger(os.Stdout, "info", "json")
	loader := config.NewLoader(*configDir, logger)
	if err := loader.Load(); err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	cfg := loader.Config()
	if err := config.ApplySyncEnv(cfg); err != nil {
		logger.Error("failed to read environment", "error", err)
		os.Exit(1)
	}
	if *output != "" {
		cfg.Sync.OutputPath = *output
		cfg.Sync.OutputBucket = ""
	}
	logger = telemetry.NewLogger(os.Stdout, cfg.Telemetry.LogLevel, cfg.Telemetry.LogFormat)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	publisher, err := syncjob.NewPublisher(ctx, cfg.Sync)
	if err != nil {
		logger.Error("failed to set up publisher", "error", err)
		os.Exit(1)
	}

	reg := prometheus.NewRegistry()
	job := &syncjob.Job{
		Sync:      cfg.Sync,
		Parsing:   cfg.Parsing,
		Publisher: publisher,
		Metrics:   telemetry.NewMetrics(reg),
		Logger:    logger,
	}

	_, runErr := job.Run(ctx)
	if runErr != nil {
		logger.Error("pricing sync failed", "error", runErr)
	}

	if cfg.Sync.PushgatewayURL != "" {
		if err := push.New(cfg.Sync.PushgatewayURL, "llmcost_sync").Gatherer(reg).Push(); err != nil {
			logger.Warn("failed to push metrics", "url", cfg.Sync.PushgatewayURL, "error", err)
		}
	}

	if runErr != nil {
		os.Exit(1)
	}
}
