package nats

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go/jetstream"
	"go.opentelemetry.io/otel/attribute"
	otelmetric "go.opentelemetry.io/otel/metric"

	"github.com/SebastienMelki/artwall/internal/gallery"
	"github.com/SebastienMelki/artwall/internal/observability"
)

// EventType names a gallery event and is the last token of its subject.
type EventType string

// Gallery event types.
const (
	EventProgress EventType = "progress"
	EventRender   EventType = "render"
	EventAlert    EventType = "alert"
)

// Event is the JSON payload of every published message. Exactly one of
// Progress, Frame and Alert is set, matching Type.
type Event struct {
	ID       string         `json:"id"`
	Type     EventType      `json:"type"`
	Time     time.Time      `json:"time"`
	Progress *float64       `json:"progress,omitempty"`
	Frame    *gallery.Frame `json:"frame,omitempty"`
	Alert    *gallery.Alert `json:"alert,omitempty"`
}

// asyncPublisher is the part of jetstream.JetStream the publisher uses.
type asyncPublisher interface {
	PublishAsync(subject string, payload []byte, opts ...jetstream.PublishOpt) (jetstream.PubAckFuture, error)
}

var _ gallery.Sink = (*Publisher)(nil)

// Publisher is a gallery.Sink that publishes every event to JetStream. It
// never waits for acks: failures surface through the client's async error
// handler.
type Publisher struct {
	js        asyncPublisher
	prefix    string
	stallWait time.Duration
	metrics   *observability.Metrics
	logger    *slog.Logger
	now       func() time.Time
}

// NewPublisher creates a new gallery event publisher. metrics is optional.
func NewPublisher(js jetstream.JetStream, cfg Config, metrics *observability.Metrics, logger *slog.Logger) *Publisher {
	return newPublisher(js, cfg, metrics, logger)
}

func newPublisher(js asyncPublisher, cfg Config, metrics *observability.Metrics, logger *slog.Logger) *Publisher {
	if logger == nil {
		logger = slog.Default()
	}
	prefix := cfg.SubjectPrefix
	if prefix == "" {
		prefix = "gallery"
	}
	return &Publisher{
		js:        js,
		prefix:    prefix,
		stallWait: cfg.StallWait,
		metrics:   metrics,
		logger:    logger.With("component", "publisher"),
		now:       time.Now,
	}
}

// Progress publishes population progress.
func (p *Publisher) Progress(progress float64) {
	p.publish(Event{Type: EventProgress, Progress: &progress})
}

// Render publishes a frame.
func (p *Publisher) Render(frame gallery.Frame) {
	p.publish(Event{Type: EventRender, Frame: &frame})
}

// Alert publishes an alert.
func (p *Publisher) Alert(alert gallery.Alert) {
	p.publish(Event{Type: EventAlert, Alert: &alert})
}

func (p *Publisher) publish(event Event) {
	subject := p.deriveSubject(event.Type)

	if err := p.publishAsync(subject, event); err != nil {
		if p.metrics != nil {
			p.metrics.PublishFailures.Add(context.Background(), 1,
				otelmetric.WithAttributes(attribute.String("type", string(event.Type))))
		}
		p.logger.Warn("failed to publish gallery event", "subject", subject, "error", err)
		return
	}

	if p.metrics != nil {
		p.metrics.EventsPublished.Add(context.Background(), 1,
			otelmetric.WithAttributes(attribute.String("type", string(event.Type))))
	}
}

func (p *Publisher) publishAsync(subject string, event Event) error {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	event.ID = id.String()
	event.Time = p.now().UTC()

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("%w: marshal: %w", ErrPublish, err)
	}

	opts := []jetstream.PublishOpt{jetstream.WithMsgID(event.ID)}
	if p.stallWait > 0 {
		opts = append(opts, jetstream.WithStallWait(p.stallWait))
	}

	if _, err := p.js.PublishAsync(subject, data, opts...); err != nil {
		return fmt.Errorf("%w: %w", ErrPublish, err)
	}
	return nil
}

// deriveSubject derives the NATS subject for an event type.
// Format: {prefix}.{type}.
func (p *Publisher) deriveSubject(t EventType) string {
	return p.prefix + "." + string(t)
}
