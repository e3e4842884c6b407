// Package service implements the rotation engine state machine, the
// single-writer scheduler that drives it, and the fetch coordinator that
// feeds it search results.
package service

import (
	"context"
	"errors"
	"log/slog"
	"math/rand/v2"

	"go.opentelemetry.io/otel/attribute"
	otelmetric "go.opentelemetry.io/otel/metric"

	"github.com/SebastienMelki/artwall/internal/gallery/internal/domain"
	"github.com/SebastienMelki/artwall/internal/observability"
)

// Sink receives engine output. Methods are called from the scheduler
// goroutine and must not block.
type Sink interface {
	// Progress reports population progress in [0, 1]. Each population
	// starts with 0 and ends with 1.
	Progress(progress float64)

	// Render delivers the slot contents after a population or a rotation.
	Render(frame domain.Frame)

	// Alert delivers a user-facing failure. The same kind for the same
	// query is never delivered twice in a row.
	Alert(alert domain.Alert)
}

// View is a read-only picture of the engine for status endpoints.
type View struct {
	State        domain.State  `json:"state"`
	Progress     float64       `json:"progress"`
	Query        string        `json:"query,omitempty"`
	PendingQuery string        `json:"pending_query,omitempty"`
	PoolSize     int           `json:"pool_size"`
	Slots        []domain.Slot `json:"slots"`
	Alert        *domain.Alert `json:"alert,omitempty"`
	CanRotate    bool          `json:"can_rotate"`
}

// RotationEngine owns the candidate pool and the slot set. It is a plain
// state machine: it has no goroutines and no locks, and every method must be
// called from the same goroutine (see Scheduler).
type RotationEngine struct {
	pool  *domain.CandidatePool
	slots *domain.SlotSet

	minPopulation int

	state    domain.State
	progress float64
	query    string // query of the gallery on screen
	pending  string // query of the search in flight
	loaded   bool   // a valid gallery has been populated
	failure  *domain.Error
	surfaced *domain.Alert // last alert delivered to the sink

	sink    Sink
	metrics *observability.Metrics
	logger  *slog.Logger
}

// NewRotationEngine creates an Idle engine with slotCount empty slots that
// accepts populations of at least minPopulation distinct candidates. rng
// drives every random choice; pass a seeded source for reproducible runs.
// sink and metrics are optional.
func NewRotationEngine(
	slotCount int,
	minPopulation int,
	rng *rand.Rand,
	sink Sink,
	metrics *observability.Metrics,
	logger *slog.Logger,
) *RotationEngine {
	if logger == nil {
		logger = slog.Default()
	}
	if sink == nil {
		sink = nopSink{}
	}
	// Every slot plus at least one bench candidate.
	if minPopulation <= slotCount {
		minPopulation = slotCount + 1
	}
	return &RotationEngine{
		pool:          domain.NewCandidatePool(rng),
		slots:         domain.NewSlotSet(slotCount, rng),
		minPopulation: minPopulation,
		state:         domain.StateIdle,
		sink:          sink,
		metrics:       metrics,
		logger:        logger.With("component", "rotation-engine"),
	}
}

// State returns the current lifecycle state.
func (e *RotationEngine) State() domain.State {
	return e.state
}

// BeginFetch records that a search for query is in flight. Rotation halts
// immediately; the gallery on screen is kept until a population replaces it.
func (e *RotationEngine) BeginFetch(query string) {
	if e.state == domain.StateRotating {
		e.logger.Debug("rotation halted for new search", "query", query)
	}
	e.state = domain.StateFetching
	e.pending = query
}

// Populate replaces the gallery with candidates.
//
// Fewer than the minimum distinct candidates moves the engine to Error with
// an InsufficientResults failure and leaves pool and slots untouched.
// Otherwise pool and slots are reset (the old gallery is discarded, not
// merged), every slot receives a random candidate with one progress report
// per slot, and the engine ends Paused.
func (e *RotationEngine) Populate(query string, candidates []domain.CandidateID) error {
	unique := domain.Unique(candidates)
	if len(unique) < e.minPopulation {
		err := domain.InsufficientResults(query, len(unique), e.minPopulation)
		if e.metrics != nil {
			e.metrics.PopulationsRejected.Add(context.Background(), 1)
		}
		e.fail(err)
		return err
	}

	e.state = domain.StatePopulating
	e.pending = query
	e.failure = nil
	e.setProgress(0)

	e.pool.Clear()
	e.slots.Clear()
	e.pool.InsertBulk(unique)

	n := e.slots.Len()
	chosen := make([]domain.CandidateID, n)
	for i := range n {
		id, ok := e.pool.RemoveRandom()
		if !ok {
			// Unreachable while minPopulation > slot count.
			err := domain.NewError(domain.KindInvariantViolation, query, "pool drained during population", nil)
			e.violation(err)
			e.fail(err)
			return err
		}
		chosen[i] = id
		e.setProgress(float64(i+1) / float64(n))
	}
	if err := e.slots.SetAll(chosen); err != nil {
		e.fail(domain.NewError(domain.KindInvariantViolation, query, "slot assignment failed", err))
		return err
	}

	e.state = domain.StatePaused
	e.query = query
	e.pending = ""
	e.loaded = true
	e.surfaced = nil

	if e.metrics != nil {
		e.metrics.Populations.Add(context.Background(), 1)
	}
	e.recordPoolSize()
	e.logger.Info("gallery populated",
		"query", query,
		"candidates", len(unique),
		"slots", n,
		"pool_size", e.pool.Size(),
	)

	e.sink.Render(e.frame())
	return nil
}

// Fail records a failed search for query. Errors that are not already
// classified are treated as transport failures. The gallery on screen is
// left as it is.
func (e *RotationEngine) Fail(query string, cause error) *domain.Error {
	var derr *domain.Error
	if !errors.As(cause, &derr) {
		derr = domain.NewError(domain.KindTransportFailure, query, cause.Error(), cause)
	}
	if derr.Query == "" {
		derr.Query = query
	}
	e.fail(derr)
	return derr
}

// Tick replaces one random slot with one random pool candidate and gives the
// evicted candidate back to the pool. It does nothing unless the engine is
// Rotating, and skips the cycle when the pool is empty. It reports whether a
// slot changed.
func (e *RotationEngine) Tick() bool {
	if e.state != domain.StateRotating {
		return false
	}

	candidate, ok := e.pool.RemoveRandom()
	if !ok {
		if e.metrics != nil {
			e.metrics.TicksSkipped.Add(context.Background(), 1)
		}
		e.logger.Debug("tick skipped, pool empty")
		return false
	}

	evicted, ok := e.slots.ReplaceRandomOccupied(candidate)
	if !ok {
		e.pool.Return(candidate)
		e.violation(domain.NewError(domain.KindInvariantViolation, e.query, "rotating with no occupied slot", nil))
		return false
	}

	if !e.pool.Return(evicted) {
		e.violation(domain.NewError(domain.KindInvariantViolation, e.query,
			"evicted candidate "+string(evicted)+" was already in the pool", nil))
	}

	if e.metrics != nil {
		e.metrics.Ticks.Add(context.Background(), 1)
	}
	e.logger.Debug("slot rotated", "evicted", evicted, "placed", candidate)

	e.sink.Render(e.frame())
	return true
}

// Start arms rotation. Only a Paused engine with a loaded gallery can start;
// it reports whether the transition happened.
func (e *RotationEngine) Start() bool {
	if e.state != domain.StatePaused || !e.loaded {
		return false
	}
	e.state = domain.StateRotating
	e.logger.Info("rotation started", "query", e.query)
	return true
}

// Pause disarms rotation, keeping the gallery. Only a Rotating engine can
// pause; it reports whether the transition happened.
func (e *RotationEngine) Pause() bool {
	if e.state != domain.StateRotating {
		return false
	}
	e.state = domain.StatePaused
	e.logger.Info("rotation paused", "query", e.query)
	return true
}

// View returns a copy of the engine's observable state.
func (e *RotationEngine) View() View {
	v := View{
		State:        e.state,
		Progress:     e.progress,
		Query:        e.query,
		PendingQuery: e.pending,
		PoolSize:     e.pool.Size(),
		Slots:        e.slots.Snapshot(),
		CanRotate:    e.loaded && (e.state == domain.StatePaused || e.state == domain.StateRotating),
	}
	if e.failure != nil {
		a := e.failure.Alert()
		v.Alert = &a
	}
	return v
}

func (e *RotationEngine) fail(err *domain.Error) {
	e.state = domain.StateError
	e.failure = err
	e.pending = ""

	e.logger.Warn("search failed",
		"query", err.Query,
		"kind", err.Kind,
		"message", err.Message,
	)

	alert := err.Alert()
	if e.surfaced != nil && e.surfaced.SameCause(alert) {
		e.logger.Debug("alert suppressed, already shown", "query", alert.Query, "kind", alert.Kind)
		return
	}
	e.surfaced = &alert
	e.sink.Alert(alert)
}

func (e *RotationEngine) violation(err *domain.Error) {
	if e.metrics != nil {
		e.metrics.InvariantViolations.Add(context.Background(), 1,
			otelmetric.WithAttributes(attribute.String("kind", string(err.Kind))))
	}
	e.logger.Error("invariant violation", "query", err.Query, "message", err.Message)
}

func (e *RotationEngine) setProgress(p float64) {
	e.progress = p
	e.sink.Progress(p)
}

func (e *RotationEngine) recordPoolSize() {
	if e.metrics != nil {
		e.metrics.PoolSize.Record(context.Background(), int64(e.pool.Size()))
	}
}

func (e *RotationEngine) frame() domain.Frame {
	return domain.Frame{
		Query:    e.query,
		Slots:    e.slots.Snapshot(),
		PoolSize: e.pool.Size(),
	}
}

type nopSink struct{}

func (nopSink) Progress(float64)    {}
func (nopSink) Render(domain.Frame) {}
func (nopSink) Alert(domain.Alert)  {}
