package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpadapter "github.com/couchcryptid/sounding-service/internal/adapter/http"
	"github.com/couchcryptid/sounding-service/internal/adapter/igra"
	kafkaadapter "github.com/couchcryptid/sounding-service/internal/adapter/kafka"
	"github.com/couchcryptid/sounding-service/internal/adapter/mqtt"
	"github.com/couchcryptid/sounding-service/internal/adapter/store"
	"github.com/couchcryptid/sounding-service/internal/adapter/uwyo"
	"github.com/couchcryptid/sounding-service/internal/config"
	"github.com/couchcryptid/sounding-service/internal/domain"
	"github.com/couchcryptid/sounding-service/internal/observability"
	"github.com/couchcryptid/sounding-service/internal/pipeline"
	"github.com/couchcryptid/sounding-service/internal/sounding"
	"github.com/couchcryptid/sounding-service/internal/stations"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	archive := igra.NewClient(cfg.IGRABaseURL, cfg.FetchTimeout, cfg.IGRACacheSize, logger, metrics)
	web := uwyo.NewClient(cfg.UWYOBaseURL, cfg.FetchTimeout, logger, metrics)
	selector := sounding.NewSelector(archive, web, logger, metrics)

	var retriever domain.SoundingRetriever = sounding.NewRetriever(selector, logger, metrics)

	directory := stations.NewDirectory(cfg.StationListURL, cfg.StationCachePath, cfg.StationCacheTTL, cfg.FetchTimeout, logger, metrics)
	ready := httpadapter.Readiness{directory}

	// Initialize result store (feature-flagged via STORE_DRIVER).
	var resultStore *store.Store
	if cfg.StoreDriver != config.StoreNone {
		resultStore, err = store.Open(ctx, cfg.StoreDriver, cfg.StoreDSN)
		if err != nil {
			logger.Error("failed to open result store", "driver", cfg.StoreDriver, "error", err)
			os.Exit(1)
		}
		retriever = store.NewCachedRetriever(retriever, resultStore, logger, metrics)
		ready = append(ready, resultStore)
		logger.Info("result store enabled", "driver", cfg.StoreDriver)
	} else {
		logger.Info("result store disabled")
	}

	// Warm the station directory; failure is not fatal, readiness reports it.
	if _, err := directory.GetOrRefresh(ctx); err != nil {
		logger.Warn("station directory not loaded at startup", "error", err)
	}

	srv := httpadapter.NewServer(cfg.HTTPAddr, ready, retriever, directory, logger)

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Start request worker (feature-flagged via WORKER_ENABLED).
	var closers []func() error
	if cfg.WorkerEnabled {
		reader := kafkaadapter.NewReader(cfg, logger)
		writer := kafkaadapter.NewWriter(cfg, logger)
		closers = append(closers, reader.Close, writer.Close)

		var loader pipeline.BatchLoader = writer
		if cfg.MQTTBrokerURL != "" {
			publisher := mqtt.NewPublisher(cfg.MQTTBrokerURL, cfg.MQTTClientID, cfg.MQTTTopicPrefix, logger)
			if err := publisher.Connect(ctx); err != nil {
				logger.Warn("mqtt connect failed, outcomes go to kafka only", "error", err)
			}
			loader = pipeline.NewFanOut(writer, logger, publisher)
			closers = append(closers, publisher.Close)
		}

		p := pipeline.New(reader, pipeline.NewTransformer(retriever, logger), loader, logger, metrics, cfg.BatchSize)
		go func() {
			if err := p.Run(ctx); err != nil {
				logger.Error("pipeline error", "error", err)
			}
		}()
	} else {
		logger.Info("request worker disabled")
	}

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	for _, closeFn := range closers {
		if err := closeFn(); err != nil {
			logger.Error("close error", "error", err)
		}
	}
	if resultStore != nil {
		if err := resultStore.Close(); err != nil {
			logger.Error("result store close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
