package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/floatlab/argo-insight/internal/adapter/dataapi"
	httpadapter "github.com/floatlab/argo-insight/internal/adapter/http"
	kafkaadapter "github.com/floatlab/argo-insight/internal/adapter/kafka"
	"github.com/floatlab/argo-insight/internal/config"
	"github.com/floatlab/argo-insight/internal/engine"
	"github.com/floatlab/argo-insight/internal/observability"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	eng := engine.New(logger, metrics)

	// Upstream data API (feature-flagged via DATA_API_ENABLED / DATA_API_URL).
	var fetcher httpadapter.DatasetFetcher
	if cfg.DataAPIEnabled {
		client := dataapi.NewClient(cfg, logger, metrics)
		fetcher = dataapi.NewCachedFetcher(client, cfg.DataAPICacheSize, metrics)
		metrics.DataAPIEnabled.Set(1)
		logger.Info("data api enabled", "url", cfg.DataAPIURL, "cache_size", cfg.DataAPICacheSize, "timeout", cfg.DataAPITimeout)
	} else {
		logger.Info("data api disabled")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Stream mode consumes requests from Kafka alongside the HTTP API.
	// Readiness follows the pipeline when streaming, the engine otherwise.
	var ready httpadapter.ReadinessChecker = eng
	var reader *kafkaadapter.Reader
	var writer *kafkaadapter.Writer
	if cfg.StreamEnabled {
		reader = kafkaadapter.NewReader(cfg, logger)
		writer = kafkaadapter.NewWriter(cfg, logger)
		p := engine.NewPipeline(reader, eng, writer, logger, metrics, cfg.BatchSize)
		ready = p

		go func() {
			if err := p.Run(ctx); err != nil {
				logger.Error("pipeline error", "error", err)
			}
		}()
		logger.Info("stream mode enabled",
			"brokers", cfg.KafkaBrokers,
			"source_topic", cfg.KafkaSourceTopic,
			"sink_topic", cfg.KafkaSinkTopic,
		)
	}

	srv := httpadapter.NewServer(cfg.HTTPAddr, eng, fetcher, ready, logger)

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if reader != nil {
		if err := reader.Close(); err != nil {
			logger.Error("kafka reader close error", "error", err)
		}
	}
	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
