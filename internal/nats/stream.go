package nats

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/nats-io/nats.go/jetstream"
)

// StreamManager creates and inspects the gallery event stream.
type StreamManager struct {
	js     jetstream.JetStream
	config StreamConfig
	logger *slog.Logger
}

// NewStreamManager creates a new stream manager.
func NewStreamManager(js jetstream.JetStream, cfg StreamConfig, logger *slog.Logger) *StreamManager {
	if logger == nil {
		logger = slog.Default()
	}
	return &StreamManager{
		js:     js,
		config: cfg,
		logger: logger.With("component", "stream-manager"),
	}
}

// EnsureStream creates the stream, or updates it in place when it already
// exists.
func (m *StreamManager) EnsureStream(ctx context.Context) (jetstream.Stream, error) {
	stream, err := m.js.CreateOrUpdateStream(ctx, streamConfig(m.config))
	if err != nil {
		return nil, fmt.Errorf("failed to ensure stream %s: %w", m.config.Name, err)
	}

	m.logger.Info("stream ready",
		"name", m.config.Name,
		"subjects", m.config.Subjects,
		"storage", m.config.Storage,
		"max_age", m.config.MaxAge,
	)

	return stream, nil
}

// GetStreamInfo returns information about the stream.
func (m *StreamManager) GetStreamInfo(ctx context.Context) (*jetstream.StreamInfo, error) {
	stream, err := m.js.Stream(ctx, m.config.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to get stream: %w", err)
	}

	info, err := stream.Info(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get stream info: %w", err)
	}

	return info, nil
}

// streamConfig maps the configuration onto a JetStream stream. Gallery
// events are a live feed, so the oldest messages are discarded first and
// a publish ID window deduplicates retried publishes.
func streamConfig(cfg StreamConfig) jetstream.StreamConfig {
	storage := jetstream.FileStorage
	if strings.ToLower(cfg.Storage) == "memory" {
		storage = jetstream.MemoryStorage
	}

	return jetstream.StreamConfig{
		Name:        cfg.Name,
		Subjects:    cfg.Subjects,
		Storage:     storage,
		MaxAge:      cfg.MaxAge,
		MaxBytes:    cfg.MaxBytes,
		Replicas:    cfg.Replicas,
		Retention:   jetstream.LimitsPolicy,
		Discard:     jetstream.DiscardOld,
		Duplicates:  2 * time.Minute,
		AllowDirect: true,
	}
}
