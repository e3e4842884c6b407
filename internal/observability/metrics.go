package observability

import (
	otelmetric "go.opentelemetry.io/otel/metric"
)

// Metrics holds all metric instruments used across artwall services.
// Instruments are created once at startup and shared with middleware,
// handlers, and service components.
type Metrics struct {
	// HTTP metrics
	HTTPRequestDuration otelmetric.Float64Histogram
	HTTPRequestTotal    otelmetric.Int64Counter
	HTTPRequestErrors   otelmetric.Int64Counter

	// Search metrics
	SearchesIssued    otelmetric.Int64Counter
	SearchesCancelled otelmetric.Int64Counter
	FetchDuration     otelmetric.Float64Histogram
	FetchFailures     otelmetric.Int64Counter
	FetchRetries      otelmetric.Int64Counter

	// Rotation engine metrics
	Populations         otelmetric.Int64Counter
	PopulationsRejected otelmetric.Int64Counter
	Ticks               otelmetric.Int64Counter
	TicksSkipped        otelmetric.Int64Counter
	InvariantViolations otelmetric.Int64Counter
	PoolSize            otelmetric.Int64Gauge

	// NATS sink metrics
	EventsPublished otelmetric.Int64Counter
	PublishFailures otelmetric.Int64Counter
}

// NewMetrics creates all metric instruments from the given Meter.
// Each instrument is created with a descriptive name, unit, and description
// following OpenTelemetry semantic conventions.
func NewMetrics(meter otelmetric.Meter) (*Metrics, error) {
	var m Metrics
	var err error

	// HTTP metrics
	m.HTTPRequestDuration, err = meter.Float64Histogram(
		"http.request.duration",
		otelmetric.WithUnit("ms"),
		otelmetric.WithDescription("HTTP request duration in milliseconds"),
	)
	if err != nil {
		return nil, err
	}

	m.HTTPRequestTotal, err = meter.Int64Counter(
		"http.request.total",
		otelmetric.WithDescription("Total HTTP requests"),
	)
	if err != nil {
		return nil, err
	}

	m.HTTPRequestErrors, err = meter.Int64Counter(
		"http.request.errors",
		otelmetric.WithDescription("HTTP request errors (4xx and 5xx)"),
	)
	if err != nil {
		return nil, err
	}

	// Search metrics
	m.SearchesIssued, err = meter.Int64Counter(
		"gallery.searches.issued",
		otelmetric.WithDescription("Searches issued"),
	)
	if err != nil {
		return nil, err
	}

	m.SearchesCancelled, err = meter.Int64Counter(
		"gallery.searches.cancelled",
		otelmetric.WithDescription("Search results dropped because a newer search superseded them"),
	)
	if err != nil {
		return nil, err
	}

	m.FetchDuration, err = meter.Float64Histogram(
		"gallery.fetch.duration",
		otelmetric.WithUnit("ms"),
		otelmetric.WithDescription("Artwork search fetch duration in milliseconds"),
	)
	if err != nil {
		return nil, err
	}

	m.FetchFailures, err = meter.Int64Counter(
		"gallery.fetch.failures",
		otelmetric.WithDescription("Artwork search fetches that failed"),
	)
	if err != nil {
		return nil, err
	}

	m.FetchRetries, err = meter.Int64Counter(
		"gallery.fetch.retries",
		otelmetric.WithDescription("Artwork search fetch attempts retried"),
	)
	if err != nil {
		return nil, err
	}

	// Rotation engine metrics
	m.Populations, err = meter.Int64Counter(
		"gallery.populations",
		otelmetric.WithDescription("Successful gallery populations"),
	)
	if err != nil {
		return nil, err
	}

	m.PopulationsRejected, err = meter.Int64Counter(
		"gallery.populations.rejected",
		otelmetric.WithDescription("Populations rejected for insufficient distinct results"),
	)
	if err != nil {
		return nil, err
	}

	m.Ticks, err = meter.Int64Counter(
		"gallery.ticks",
		otelmetric.WithDescription("Rotation ticks that replaced a slot"),
	)
	if err != nil {
		return nil, err
	}

	m.TicksSkipped, err = meter.Int64Counter(
		"gallery.ticks.skipped",
		otelmetric.WithDescription("Rotation ticks skipped because the pool was empty"),
	)
	if err != nil {
		return nil, err
	}

	m.InvariantViolations, err = meter.Int64Counter(
		"gallery.invariant.violations",
		otelmetric.WithDescription("Pool/slot disjointness violations detected"),
	)
	if err != nil {
		return nil, err
	}

	m.PoolSize, err = meter.Int64Gauge(
		"gallery.pool.size",
		otelmetric.WithDescription("Candidates currently waiting in the pool"),
	)
	if err != nil {
		return nil, err
	}

	// NATS sink metrics
	m.EventsPublished, err = meter.Int64Counter(
		"nats.events.published",
		otelmetric.WithDescription("Gallery events published to NATS"),
	)
	if err != nil {
		return nil, err
	}

	m.PublishFailures, err = meter.Int64Counter(
		"nats.publish.failures",
		otelmetric.WithDescription("Gallery events that failed to publish"),
	)
	if err != nil {
		return nil, err
	}

	return &m, nil
}
