// Command oval runs the auroral oval service: it consumes magnetometer
// observation batches from Kafka, fits the SECS model, publishes score
// snapshots and serves the model over HTTP.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpadapter "github.com/couchcryptid/aurora-oval-service/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/aurora-oval-service/internal/adapter/kafka"
	"github.com/couchcryptid/aurora-oval-service/internal/adapter/mapbox"
	"github.com/couchcryptid/aurora-oval-service/internal/config"
	"github.com/couchcryptid/aurora-oval-service/internal/domain"
	"github.com/couchcryptid/aurora-oval-service/internal/observability"
	"github.com/couchcryptid/aurora-oval-service/internal/oval"
	"github.com/couchcryptid/aurora-oval-service/internal/pipeline"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	// Peak labelling is feature-flagged via MAPBOX_ENABLED / MAPBOX_TOKEN.
	var geocoder domain.Geocoder
	if cfg.MapboxEnabled {
		client := mapbox.NewClient(cfg.MapboxToken, cfg.MapboxTimeout, metrics, logger,
			mapbox.WithRateLimit(cfg.MapboxRateLimit))
		geocoder = mapbox.NewCachedGeocoder(client, cfg.MapboxCacheSize, metrics)
		metrics.GeocodeEnabled.Set(1)
		logger.Info("mapbox geocoding enabled",
			"cache_size", cfg.MapboxCacheSize,
			"timeout", cfg.MapboxTimeout,
			"rate_limit", cfg.MapboxRateLimit,
		)
	} else {
		logger.Info("mapbox geocoding disabled")
	}

	auth := oval.NewAuthorizer(cfg.Owner, cfg.AuthorizedCallers)
	if !auth.Enabled() {
		logger.Warn("caller authorization disabled: no OVAL_OWNER or OVAL_AUTHORIZED_CALLERS configured")
	}

	svc, err := oval.NewService(oval.Config{
		PoleGrid:     cfg.PoleGrid,
		PoleAltitude: cfg.PoleAltitude,
		Epsilon:      cfg.Epsilon,
		Solver:       cfg.Solver,
		PredictGrid:  cfg.PredictGrid,
		ScoreScale:   cfg.ScoreScale,
		Contour:      cfg.Contour,
	}, auth, geocoder, metrics, logger)
	if err != nil {
		logger.Error("failed to build model", "error", err)
		os.Exit(1)
	}

	reader := kafkaadapter.NewReader(cfg, logger)
	writer := kafkaadapter.NewWriter(cfg, logger)
	transformer := pipeline.NewTransformer(svc, logger)

	p := pipeline.New(reader, transformer, writer, logger, metrics, cfg.BatchSize)

	srv := httpadapter.NewServer(cfg.HTTPAddr, p, svc, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	go func() {
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
	if err := reader.Close(); err != nil {
		logger.Error("kafka reader close error", "error", err)
	}
	if err := writer.Close(); err != nil {
		logger.Error("kafka writer close error", "error", err)
	}

	logger.Info("shutdown complete")
}
