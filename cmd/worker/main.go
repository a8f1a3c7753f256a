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

	"github.com/kirillkom/rfp-slide-generator/internal/bootstrap"
	"github.com/kirillkom/rfp-slide-generator/internal/config"
	"github.com/kirillkom/rfp-slide-generator/internal/core/domain"
	"github.com/kirillkom/rfp-slide-generator/internal/observability/logging"
	"github.com/kirillkom/rfp-slide-generator/internal/observability/metrics"
)

const serviceName = "worker"

func main() {
	cfg := config.Load()
	logger := logging.NewJSONLogger(serviceName, cfg.LogLevel)
	slog.SetDefault(logger)

	if !cfg.EventsEnabled {
		logger.Error("worker_requires_events", "hint", "set EVENTS_ENABLED=true and NATS_URL")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg)
	if err != nil {
		logger.Error("bootstrap_failed", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	workerMetrics := metrics.NewWorkerMetrics(serviceName)
	metricsServer := &http.Server{
		Addr:              ":" + cfg.WorkerMetricsPort,
		Handler:           workerMetrics.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("worker_metrics_server_failed", "error", err)
		}
	}()

	logger.Info("worker_subscribed", "subject", cfg.NATSSubject, "metrics_port", cfg.WorkerMetricsPort)
	err = app.Events.SubscribeSlidesGenerated(ctx, func(handlerCtx context.Context, event domain.SlidesGeneratedEvent) error {
		if !event.GeneratedAt.IsZero() {
			workerMetrics.ObserveQueueLag(serviceName, time.Since(event.GeneratedAt))
		}

		archiveCtx, cancel := context.WithTimeout(handlerCtx, cfg.ArchiveTimeout())
		defer cancel()

		workerMetrics.StartArchive()
		started := time.Now()
		archiveErr := app.Decks.Archive(archiveCtx, event.GenerationID)
		workerMetrics.FinishArchive(serviceName, time.Since(started), archiveErr)
		return archiveErr
	})
	if err != nil {
		logger.Error("worker_subscribe_failed", "error", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout())
	defer cancel()
	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("worker_metrics_shutdown_failed", "error", err)
	}
	logger.Info("worker_stopped")
}
