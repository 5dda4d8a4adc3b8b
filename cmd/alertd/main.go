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

	httpadapter "github.com/cropwatch/weather-alert-service/internal/adapter/http"
	kafkaadapter "github.com/cropwatch/weather-alert-service/internal/adapter/kafka"
	"github.com/cropwatch/weather-alert-service/internal/adapter/openweather"
	"github.com/cropwatch/weather-alert-service/internal/config"
	"github.com/cropwatch/weather-alert-service/internal/dispatch"
	"github.com/cropwatch/weather-alert-service/internal/domain"
	"github.com/cropwatch/weather-alert-service/internal/observability"
	"github.com/cropwatch/weather-alert-service/internal/profiles"
	"github.com/cropwatch/weather-alert-service/internal/scheduler"
	"github.com/cropwatch/weather-alert-service/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	catalog, err := domain.LoadCatalog(cfg.ThresholdsPath)
	if err != nil {
		logger.Error("failed to load threshold catalog", "error", err, "path", cfg.ThresholdsPath)
		os.Exit(1)
	}

	profileStore, err := profiles.Open(cfg.ProfileDSN, logger)
	if err != nil {
		logger.Error("failed to open profile store", "error", err, "dsn", cfg.ProfileDSN)
		os.Exit(1)
	}

	windows := store.New(domain.RetentionHorizon, time.Minute, logger)
	if cfg.WindowSnapshotPath != "" {
		if err := windows.LoadSnapshot(cfg.WindowSnapshotPath); err != nil {
			logger.Warn("window snapshot not restored", "error", err, "path", cfg.WindowSnapshotPath)
		}
	}

	fetcher := openweather.NewClient(cfg.OpenWeatherAPIKey, cfg.FetchTimeout, logger)

	writer := kafkaadapter.NewWriter(cfg, logger)
	reader := kafkaadapter.NewReader(cfg, logger)

	registry := dispatch.NewRegistry(logger, metrics)

	sched := scheduler.New(profileStore, fetcher, windows, writer, catalog, logger, metrics, scheduler.Options{
		Interval:     cfg.TickInterval,
		FetchTimeout: cfg.FetchTimeout,
		Workers:      cfg.TickWorkers,
	})

	srv := httpadapter.NewServer(cfg.HTTPAddr, sched, registry, windows, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Start the monitor loop.
	go func() {
		if err := sched.Run(ctx); err != nil {
			logger.Error("scheduler error", "error", err)
		}
	}()

	// Consume the update bus and fan events out to connected sessions.
	go func() {
		if err := reader.Consume(ctx, registry.OnEvent); err != nil {
			logger.Error("bus consumer error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if err := reader.Close(); err != nil {
		logger.Error("kafka reader close error", "error", err)
	}
	if err := writer.Close(); err != nil {
		logger.Error("kafka writer close error", "error", err)
	}
	if cfg.WindowSnapshotPath != "" {
		if err := windows.SaveSnapshot(cfg.WindowSnapshotPath); err != nil {
			logger.Error("window snapshot save error", "error", err, "path", cfg.WindowSnapshotPath)
		}
	}

	logger.Info("shutdown complete")
}
