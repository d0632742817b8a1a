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

	"github.com/joho/godotenv"

	"github.com/couchcryptid/aqi-hexmap/internal/adapter/csvsource"
	httpadapter "github.com/couchcryptid/aqi-hexmap/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/aqi-hexmap/internal/adapter/kafka"
	"github.com/couchcryptid/aqi-hexmap/internal/adapter/mapbox"
	"github.com/couchcryptid/aqi-hexmap/internal/config"
	"github.com/couchcryptid/aqi-hexmap/internal/domain"
	"github.com/couchcryptid/aqi-hexmap/internal/observability"
	"github.com/couchcryptid/aqi-hexmap/internal/pipeline"
)

func main() {
	// A missing .env is fine; real deployments set the environment directly.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("failed to read .env", "error", err)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	// Initialize geocoder (feature-flagged via MAPBOX_ENABLED / MAPBOX_TOKEN).
	var geocoder domain.Geocoder
	if cfg.MapboxEnabled {
		client := mapbox.NewClient(cfg.MapboxToken, cfg.MapboxTimeout, logger, metrics)
		geocoder = mapbox.NewCachedGeocoder(client, cfg.MapboxCacheSize, metrics)
		metrics.GeocodeEnabled.Set(1)
		logger.Info("mapbox geocoding enabled", "cache_size", cfg.MapboxCacheSize, "timeout", cfg.MapboxTimeout)
	} else {
		logger.Info("mapbox geocoding disabled")
	}

	// Initialize Kafka export (feature-flagged via KAFKA_BROKERS / KAFKA_EXPORT_ENABLED).
	var publisher pipeline.CellPublisher
	var writer *kafkaadapter.Writer
	if cfg.KafkaEnabled {
		writer = kafkaadapter.NewWriter(cfg, logger, metrics)
		publisher = writer
		metrics.ExportEnabled.Set(1)
		logger.Info("kafka export enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaExportTopic)
	} else {
		logger.Info("kafka export disabled")
	}

	source := csvsource.New(cfg.DataPath, logger)
	loader := pipeline.NewLoader(source, publisher, cfg.HexSize, cfg.CacheSize, logger, metrics)
	transformer := pipeline.NewTransformer(geocoder, logger, metrics)

	p := pipeline.New(loader, transformer, logger, metrics)

	srv := httpadapter.NewServer(cfg.HTTPAddr, p, httpadapter.Options{
		Title: cfg.DashboardTitle,
		Years: cfg.Years,
	}, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	// Warm the cache for the configured years. Failures leave the service
	// unready but serving, so a fixed file is picked up on the next request.
	go func() {
		warmCtx, cancel := context.WithTimeout(ctx, time.Minute)
		defer cancel()
		if err := p.Warm(warmCtx, cfg.Years); err != nil {
			logger.Error("cache warm failed", "path", cfg.DataPath, "error", err)
			return
		}
		logger.Info("cache warmed", "years", cfg.Years)
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
