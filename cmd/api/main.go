package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/net/netutil"

	httpadapter "github.com/kirillkom/rfp-slide-generator/internal/adapters/http"
	mcpadapter "github.com/kirillkom/rfp-slide-generator/internal/adapters/mcp"
	"github.com/kirillkom/rfp-slide-generator/internal/bootstrap"
	"github.com/kirillkom/rfp-slide-generator/internal/config"
	"github.com/kirillkom/rfp-slide-generator/internal/observability/logging"
	"github.com/kirillkom/rfp-slide-generator/internal/observability/metrics"
)

const serviceName = "api"

func main() {
	cfg := config.Load()
	logger := logging.NewJSONLogger(serviceName, cfg.LogLevel)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg)
	if err != nil {
		logger.Error("bootstrap_failed", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	httpMetrics := metrics.NewHTTPServerMetrics(serviceName)
	router := httpadapter.NewRouter(cfg, app.Uploader, app.Generator, app.Catalog, app.Decks).
		WithMetrics(serviceName, httpMetrics).
		Mount("/metrics", httpMetrics.Handler())
	if cfg.MCPEnabled {
		router.Mount("/mcp", mcpadapter.NewServer(app.Generator, app.Catalog).Handler())
	}

	server := &http.Server{
		Addr:              ":" + cfg.APIPort,
		Handler:           httpMetrics.Middleware(serviceName, router.Handler()),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      cfg.GenerationTimeout() + 30*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	listener, err := net.Listen("tcp", server.Addr)
	if err != nil {
		logger.Error("api_listen_failed", "addr", server.Addr, "error", err)
		os.Exit(1)
	}
	if cfg.APIMaxConnections > 0 {
		listener = netutil.LimitListener(listener, cfg.APIMaxConnections)
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("api_listening",
			"addr", server.Addr,
			"mcp_enabled", cfg.MCPEnabled,
			"max_connections", cfg.APIMaxConnections,
		)
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-ctx.Done():
	case err, ok := <-serveErr:
		if ok {
			logger.Error("api_server_failed", "error", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout())
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("api_shutdown_failed", "error", err)
	}
	logger.Info("api_stopped")
}
