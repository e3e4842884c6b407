package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/attribute"
	otelmetric "go.opentelemetry.io/otel/metric"

	"github.com/SebastienMelki/artwall/internal/gallery/internal/domain"
	"github.com/SebastienMelki/artwall/internal/observability"
)

// Fetcher retrieves candidate artwork for a query.
type Fetcher interface {
	Fetch(ctx context.Context, query, media string) ([]domain.CandidateID, error)
}

// MediaValidator is implemented by fetchers that know which media types they
// accept.
type MediaValidator interface {
	ValidateMedia(media string) error
}

// FetchCoordinator runs searches. Each search takes a new generation; when a
// newer search starts before an older one finishes, the older result is
// dropped and never reaches the engine. The in-flight fetch is not aborted.
type FetchCoordinator struct {
	fetcher   Fetcher
	scheduler *Scheduler
	metrics   *observability.Metrics
	logger    *slog.Logger

	generation atomic.Uint64
}

// NewFetchCoordinator creates a coordinator that feeds the scheduler's engine.
func NewFetchCoordinator(
	fetcher Fetcher,
	scheduler *Scheduler,
	metrics *observability.Metrics,
	logger *slog.Logger,
) *FetchCoordinator {
	if logger == nil {
		logger = slog.Default()
	}
	return &FetchCoordinator{
		fetcher:   fetcher,
		scheduler: scheduler,
		metrics:   metrics,
		logger:    logger.With("component", "fetch-coordinator"),
	}
}

// Search fetches candidates for query and hands them to the engine. It
// returns the deduplicated candidates together with the engine's verdict: nil
// on a successful population, a *domain.Error for insufficient results, a
// transport failure or a superseded search.
func (c *FetchCoordinator) Search(ctx context.Context, query, media string) ([]domain.CandidateID, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: empty query", ErrInvalidQuery)
	}
	if v, ok := c.fetcher.(MediaValidator); ok {
		if err := v.ValidateMedia(media); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidQuery, err)
		}
	}

	gen := c.generation.Add(1)
	if c.metrics != nil {
		c.metrics.SearchesIssued.Add(ctx, 1, otelmetric.WithAttributes(attribute.String("media", media)))
	}

	// The engine must leave Fetching even if the caller goes away.
	engineCtx := context.WithoutCancel(ctx)

	if err := c.scheduler.Announce(engineCtx, gen, query); err != nil {
		return nil, c.handleCancel(ctx, query, gen, err)
	}

	c.logger.Info("search started", "query", query, "media", media, "generation", gen)

	start := time.Now()
	raw, fetchErr := c.fetcher.Fetch(ctx, query, media)
	if c.metrics != nil {
		c.metrics.FetchDuration.Record(ctx, float64(time.Since(start).Milliseconds()))
	}

	if gen != c.generation.Load() {
		return nil, c.handleCancel(ctx, query, gen, superseded(query))
	}

	var candidates []domain.CandidateID
	if fetchErr != nil {
		if c.metrics != nil {
			c.metrics.FetchFailures.Add(ctx, 1)
		}
		fetchErr = domain.NewError(domain.KindTransportFailure, query, fetchErr.Error(), fetchErr)
	} else {
		candidates = domain.Unique(raw)
	}

	err := c.scheduler.Deliver(engineCtx, gen, query, candidates, fetchErr)
	if errors.Is(err, domain.ErrCancelled) {
		return nil, c.handleCancel(ctx, query, gen, err)
	}
	if err != nil {
		return candidates, err
	}

	c.logger.Info("search completed", "query", query, "generation", gen, "candidates", len(candidates))
	return candidates, nil
}

// Generation returns the number of searches issued so far.
func (c *FetchCoordinator) Generation() uint64 {
	return c.generation.Load()
}

func (c *FetchCoordinator) handleCancel(ctx context.Context, query string, gen uint64, err error) error {
	if !errors.Is(err, domain.ErrCancelled) {
		return err
	}
	if c.metrics != nil {
		c.metrics.SearchesCancelled.Add(ctx, 1)
	}
	c.logger.Debug("search superseded", "query", query, "generation", gen)
	return err
}
