package gallery

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"

	"github.com/SebastienMelki/artwall/internal/gallery/internal/service"
	"github.com/SebastienMelki/artwall/internal/observability"
)

var _ Controller = (*Module)(nil)

// Module is the gallery module facade. It owns the rotation engine, the
// scheduler goroutine that drives it and the fetch coordinator.
type Module struct {
	cfg         Config
	scheduler   *service.Scheduler
	coordinator *service.FetchCoordinator
}

// New creates a gallery Module. sink and metrics are optional (pass nil to
// disable them). The module does nothing until Start is called.
func New(
	cfg Config,
	fetcher Fetcher,
	sink Sink,
	metrics *observability.Metrics,
	logger *slog.Logger,
) (*Module, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if fetcher == nil {
		return nil, fmt.Errorf("%w: fetcher is required", ErrInvalidConfig)
	}
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("module", "gallery")

	seed1, seed2 := cfg.Seed, cfg.Seed
	if cfg.Seed == 0 {
		seed1, seed2 = rand.Uint64(), rand.Uint64()
	}
	rng := rand.New(rand.NewPCG(seed1, seed2))

	engine := service.NewRotationEngine(cfg.Slots, cfg.MinPopulation, rng, sink, metrics, logger)
	scheduler := service.NewScheduler(engine, cfg.TickInterval, cfg.CommandBuffer, logger)

	return &Module{
		cfg:         cfg,
		scheduler:   scheduler,
		coordinator: service.NewFetchCoordinator(fetcher, scheduler, metrics, logger),
	}, nil
}

// Start begins the scheduler goroutine.
func (m *Module) Start(ctx context.Context) {
	m.scheduler.Start(ctx)
}

// Stop stops the scheduler and waits for it to exit.
func (m *Module) Stop() {
	m.scheduler.Stop()
}

// Search fetches candidates for query and replaces the gallery with them.
func (m *Module) Search(ctx context.Context, query, media string) ([]CandidateID, error) {
	if media == "" {
		media = m.cfg.DefaultMedia
	}
	return m.coordinator.Search(ctx, query, media)
}

// Play starts rotation.
func (m *Module) Play(ctx context.Context) (View, error) {
	return m.scheduler.Play(ctx)
}

// Pause stops rotation.
func (m *Module) Pause(ctx context.Context) (View, error) {
	return m.scheduler.Pause(ctx)
}

// View returns the current gallery state.
func (m *Module) View(ctx context.Context) (View, error) {
	return m.scheduler.View(ctx)
}

// DefaultMedia returns the media type used when a search names none.
func (m *Module) DefaultMedia() string {
	return m.cfg.DefaultMedia
}
