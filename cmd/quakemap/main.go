package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/quake-overlay-service/internal/adapter/feed"
	"github.com/couchcryptid/quake-overlay-service/internal/adapter/httpadapter"
	kafkaadapter "github.com/couchcryptid/quake-overlay-service/internal/adapter/kafka"
	"github.com/couchcryptid/quake-overlay-service/internal/adapter/mapbox"
	"github.com/couchcryptid/quake-overlay-service/internal/adapter/snapshot"
	"github.com/couchcryptid/quake-overlay-service/internal/config"
	"github.com/couchcryptid/quake-overlay-service/internal/domain"
	"github.com/couchcryptid/quake-overlay-service/internal/observability"
	"github.com/couchcryptid/quake-overlay-service/internal/overlay"
	"github.com/couchcryptid/quake-overlay-service/internal/pipeline"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	// Base-map tile proxy (feature-flagged via MAPBOX_ENABLED / MAPBOX_TOKEN).
	var tiles domain.TileSource
	if cfg.MapboxEnabled {
		client := mapbox.NewClient(cfg.MapboxToken, cfg.MapboxTimeout, cfg.MapboxRateLimit, metrics, logger)
		tiles = mapbox.NewCachedTiles(client, cfg.MapboxCacheSize, metrics)
		metrics.TileProxyEnabled.Set(1)
		logger.Info("mapbox tile proxy enabled",
			"cache_size", cfg.MapboxCacheSize,
			"timeout", cfg.MapboxTimeout,
			"rate_limit", cfg.MapboxRateLimit,
		)
	} else {
		logger.Info("mapbox tile proxy disabled")
	}

	opts := pipeline.Options{Interval: cfg.RefreshInterval}

	var snapshots *snapshot.Store
	if cfg.SnapshotPath != "" {
		snapshots, err = snapshot.Open(cfg.SnapshotPath)
		if err != nil {
			logger.Error("failed to open snapshot store", "path", cfg.SnapshotPath, "error", err)
			os.Exit(1)
		}
		opts.Snapshots = snapshots
		logger.Info("overlay snapshots enabled", "path", cfg.SnapshotPath)
	}

	var writer *kafkaadapter.Writer
	if cfg.KafkaEnabled {
		writer = kafkaadapter.NewWriter(cfg, logger)
		opts.Publisher = writer
		logger.Info("kafka publishing enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic)
	}

	getter := feed.NewGetter(cfg.FeedTimeout, cfg.FeedRetryAttempts, metrics, logger)
	quakes := feed.NewEarthquakeClient(getter, cfg.EarthquakeFeedURL, logger)
	plates := feed.NewPlateClient(getter, cfg.PlatesFeedURL, logger)
	styler := domain.NewStyler(cfg.MarkerRadiusScale, cfg.DisplayLocation)
	store := overlay.NewStore()

	p := pipeline.New(quakes, plates, styler, store, opts, logger, metrics)

	srv := httpadapter.NewServer(cfg.HTTPAddr, store, styler, tiles, p, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Start overlay refresh.
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := p.Run(ctx); err != nil {
			logger.Error("pipeline error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}

	select {
	case <-done:
	case <-shutdownCtx.Done():
		logger.Warn("pipeline did not stop before shutdown timeout")
	}

	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}
	if snapshots != nil {
		if err := snapshots.Close(); err != nil {
			logger.Error("snapshot store close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
