// Command server runs the artwall gallery: the rotation engine, the iTunes
// search client, the optional NATS event sink and the HTTP control API.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/caarlos0/env/v10"

	"github.com/SebastienMelki/artwall/internal/gallery"
	"github.com/SebastienMelki/artwall/internal/gateway"
	"github.com/SebastienMelki/artwall/internal/itunes"
	"github.com/SebastienMelki/artwall/internal/nats"
	"github.com/SebastienMelki/artwall/internal/observability"
)

// Config holds all server configuration.
type Config struct {
	// LogLevel is the log level (debug, info, warn, error)
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// LogFormat is the log format (json, text)
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	// Gallery engine configuration
	Gallery gallery.Config `envPrefix:""`

	// iTunes search client configuration
	ITunes itunes.Config `envPrefix:"ITUNES_"`

	// HTTP gateway configuration
	Gateway gateway.Config `envPrefix:""`

	// NATS configuration
	NATS nats.Config `envPrefix:""`
}

func main() {
	// Load configuration from environment
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		slog.Error("failed to parse config", "error", err)
		os.Exit(1)
	}

	// Setup logger
	logger := setupLogger(cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(logger)

	if _, err := itunes.ParseMedia(cfg.Gallery.DefaultMedia); err != nil {
		logger.Error("invalid default media", "media", cfg.Gallery.DefaultMedia, "error", err)
		os.Exit(1)
	}

	logger.Info("starting artwall server",
		"log_level", cfg.LogLevel,
		"http_addr", cfg.Gateway.Addr,
		"slots", cfg.Gallery.Slots,
		"tick_interval", cfg.Gallery.TickInterval,
		"nats_enabled", cfg.NATS.Enabled,
	)

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Setup signal handling
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	obs, err := observability.New("artwall")
	if err != nil {
		logger.Error("failed to initialise observability", "error", err)
		os.Exit(1)
	}
	metrics := obs.Metrics()

	searcher := itunes.NewClient(cfg.ITunes, metrics, logger)

	sinks := []gallery.Sink{gallery.NewLogSink(logger)}
	checks := map[string]gateway.HealthChecker{}

	var natsClient *nats.Client
	if cfg.NATS.Enabled {
		natsClient, err = nats.NewClient(cfg.NATS, metrics, logger)
		if err != nil {
			logger.Error("failed to connect to NATS", "error", err)
			os.Exit(1)
		}
		defer natsClient.Close()

		streamMgr := nats.NewStreamManager(natsClient.JetStream(), cfg.NATS.Stream, logger)
		if _, err := streamMgr.EnsureStream(ctx); err != nil {
			logger.Error("failed to ensure stream", "error", err)
			os.Exit(1)
		}

		sinks = append(sinks, nats.NewPublisher(natsClient.JetStream(), cfg.NATS, metrics, logger))
		checks["nats"] = natsClient
	}

	wall, err := gallery.New(cfg.Gallery, searcher, gallery.NewMultiSink(sinks...), metrics, logger)
	if err != nil {
		logger.Error("failed to create gallery", "error", err)
		os.Exit(1)
	}
	wall.Start(ctx)

	mediaTypes := make([]string, 0, len(itunes.MediaTypes()))
	for _, m := range itunes.MediaTypes() {
		mediaTypes = append(mediaTypes, string(m))
	}

	server, err := gateway.NewServer(cfg.Gateway, gateway.Deps{
		Gallery:        wall,
		MediaTypes:     mediaTypes,
		DefaultMedia:   wall.DefaultMedia(),
		Checks:         checks,
		Metrics:        metrics,
		MetricsHandler: obs.MetricsHandler(),
	}, logger)
	if err != nil {
		logger.Error("failed to create server", "error", err)
		os.Exit(1)
	}

	// Start server in goroutine
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	// Wait for shutdown signal or error
	select {
	case sig := <-sigCh:
		logger.Info("received shutdown signal", "signal", sig)
	case err := <-errCh:
		if err != nil {
			logger.Error("server error", "error", err)
		}
	}

	// Graceful shutdown
	logger.Info("initiating graceful shutdown")

	if err := server.Shutdown(context.Background()); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	cancel()
	wall.Stop()

	if natsClient != nil {
		if err := natsClient.Drain(5 * time.Second); err != nil {
			logger.Error("NATS drain error", "error", err)
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := obs.Shutdown(shutdownCtx); err != nil {
		logger.Error("observability shutdown error", "error", err)
	}

	logger.Info("server stopped")
}

// setupLogger creates a logger based on configuration.
func setupLogger(level, format string) *slog.Logger {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: logLevel,
	}

	var handler slog.Handler
	if format == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}
