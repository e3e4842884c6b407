package gallery

import (
	"context"
	"log/slog"
)

// FetcherFunc adapts a function to the Fetcher interface.
type FetcherFunc func(ctx context.Context, query, media string) ([]CandidateID, error)

// Fetch calls f.
func (f FetcherFunc) Fetch(ctx context.Context, query, media string) ([]CandidateID, error) {
	return f(ctx, query, media)
}

// LogSink writes gallery output to a structured logger. Progress and frames
// are logged at debug level, alerts at warn.
type LogSink struct {
	logger *slog.Logger
}

// NewLogSink creates a LogSink. A nil logger uses slog.Default().
func NewLogSink(logger *slog.Logger) *LogSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSink{logger: logger.With("component", "gallery-sink")}
}

// Progress logs population progress.
func (s *LogSink) Progress(progress float64) {
	s.logger.Debug("population progress", "progress", progress)
}

// Render logs the slot contents.
func (s *LogSink) Render(frame Frame) {
	occupied := 0
	for _, slot := range frame.Slots {
		if slot.Occupied {
			occupied++
		}
	}
	s.logger.Debug("gallery frame",
		"query", frame.Query,
		"occupied", occupied,
		"pool_size", frame.PoolSize,
	)
}

// Alert logs a user-facing failure.
func (s *LogSink) Alert(alert Alert) {
	s.logger.Warn("gallery alert",
		"kind", alert.Kind,
		"query", alert.Query,
		"message", alert.Message,
	)
}

// MultiSink fans output out to several sinks in order. Nil sinks are skipped.
type MultiSink []Sink

// NewMultiSink builds a MultiSink from the non-nil sinks.
func NewMultiSink(sinks ...Sink) MultiSink {
	out := make(MultiSink, 0, len(sinks))
	for _, s := range sinks {
		if s != nil {
			out = append(out, s)
		}
	}
	return out
}

// Progress forwards to every sink.
func (m MultiSink) Progress(progress float64) {
	for _, s := range m {
		s.Progress(progress)
	}
}

// Render forwards to every sink.
func (m MultiSink) Render(frame Frame) {
	for _, s := range m {
		s.Render(frame)
	}
}

// Alert forwards to every sink.
func (m MultiSink) Alert(alert Alert) {
	for _, s := range m {
		s.Alert(alert)
	}
}
