package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/SebastienMelki/artwall/internal/gallery/internal/domain"
)

type command struct {
	fn   func(*RotationEngine)
	done chan struct{}
}

// Scheduler is the single writer of a RotationEngine. Its goroutine runs the
// rotation ticker and every command (search announcements, deliveries,
// play, pause, view), one at a time. Callers never touch the engine directly.
type Scheduler struct {
	engine   *RotationEngine
	interval time.Duration
	buffer   int
	logger   *slog.Logger

	mu      sync.Mutex
	running bool
	cmds    chan command
	stopCh  chan struct{}
	doneCh  chan struct{}

	// Owned by the run goroutine.
	latestGen uint64
}

// NewScheduler creates a scheduler that rotates one slot per interval while
// the engine is Rotating. buffer is the command channel capacity.
func NewScheduler(engine *RotationEngine, interval time.Duration, buffer int, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	if interval <= 0 {
		interval = 2 * time.Second
	}
	if buffer < 0 {
		buffer = 0
	}

	return &Scheduler{
		engine:   engine,
		interval: interval,
		buffer:   buffer,
		logger:   logger.With("component", "gallery-scheduler"),
	}
}

// Start begins the scheduler loop in a background goroutine. The loop exits
// when ctx is cancelled or Stop is called.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		s.logger.Warn("scheduler already running")
		return
	}

	s.cmds = make(chan command, s.buffer)
	s.stopCh = make(chan struct{})
	s.doneCh = make(chan struct{})
	s.running = true

	go s.run(ctx, s.cmds, s.stopCh, s.doneCh)

	s.logger.Info("gallery scheduler started", "interval", s.interval)
}

// Stop signals the scheduler to stop and waits for the loop to exit.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	close(s.stopCh)
	s.running = false
	doneCh := s.doneCh
	s.mu.Unlock()

	<-doneCh
	s.logger.Info("gallery scheduler stopped")
}

// Announce tells the engine that search gen for query is in flight. It is
// rejected as cancelled when a newer generation has already been announced.
func (s *Scheduler) Announce(ctx context.Context, gen uint64, query string) error {
	var err error
	doErr := s.do(ctx, func(e *RotationEngine) {
		if gen < s.latestGen {
			err = superseded(query)
			return
		}
		s.latestGen = gen
		e.BeginFetch(query)
	})
	if doErr != nil {
		return doErr
	}
	return err
}

// Deliver hands the outcome of search gen to the engine: fetchErr moves it to
// Error, otherwise the candidates are populated. A delivery whose generation
// is not the latest announced one is dropped and reported as cancelled.
func (s *Scheduler) Deliver(
	ctx context.Context,
	gen uint64,
	query string,
	candidates []domain.CandidateID,
	fetchErr error,
) error {
	var err error
	doErr := s.do(ctx, func(e *RotationEngine) {
		if gen != s.latestGen {
			s.logger.Debug("stale delivery dropped", "query", query, "generation", gen, "latest", s.latestGen)
			err = superseded(query)
			return
		}
		if fetchErr != nil {
			err = e.Fail(query, fetchErr)
			return
		}
		err = e.Populate(query, candidates)
	})
	if doErr != nil {
		return doErr
	}
	return err
}

// Play starts rotation.
func (s *Scheduler) Play(ctx context.Context) (View, error) {
	return s.transition(ctx, "play", (*RotationEngine).Start)
}

// Pause stops rotation and keeps the gallery.
func (s *Scheduler) Pause(ctx context.Context) (View, error) {
	return s.transition(ctx, "pause", (*RotationEngine).Pause)
}

// View returns the engine's current state.
func (s *Scheduler) View(ctx context.Context) (View, error) {
	var v View
	if err := s.do(ctx, func(e *RotationEngine) { v = e.View() }); err != nil {
		return View{}, err
	}
	return v, nil
}

func (s *Scheduler) transition(ctx context.Context, name string, step func(*RotationEngine) bool) (View, error) {
	var (
		v  View
		ok bool
	)
	if err := s.do(ctx, func(e *RotationEngine) {
		ok = step(e)
		v = e.View()
	}); err != nil {
		return View{}, err
	}
	if !ok {
		return v, fmt.Errorf("%w: cannot %s while %s", ErrInvalidTransition, name, v.State)
	}
	return v, nil
}

// do runs fn on the scheduler goroutine and waits for it to finish.
func (s *Scheduler) do(ctx context.Context, fn func(*RotationEngine)) error {
	s.mu.Lock()
	running, cmds, doneCh := s.running, s.cmds, s.doneCh
	s.mu.Unlock()

	if !running {
		return ErrNotRunning
	}

	cmd := command{fn: fn, done: make(chan struct{})}
	select {
	case cmds <- cmd:
	case <-doneCh:
		return ErrNotRunning
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case <-cmd.done:
		return nil
	case <-doneCh:
		// The loop may have run the command just before exiting.
		select {
		case <-cmd.done:
			return nil
		default:
			return ErrNotRunning
		}
	}
}

// run is the main scheduler loop. The ticker is only armed while the engine
// is Rotating, so the first rotation happens one interval after play.
func (s *Scheduler) run(ctx context.Context, cmds <-chan command, stopCh, doneCh chan struct{}) {
	defer close(doneCh)

	ticker := time.NewTicker(s.interval)
	ticker.Stop()
	defer ticker.Stop()
	armed := false

	rearm := func() {
		rotating := s.engine.State() == domain.StateRotating
		switch {
		case rotating && !armed:
			ticker.Reset(s.interval)
			armed = true
		case !rotating && armed:
			ticker.Stop()
			armed = false
		}
	}

	for {
		var tickC <-chan time.Time
		if armed {
			tickC = ticker.C
		}

		select {
		case <-ctx.Done():
			return
		case <-stopCh:
			return
		case cmd := <-cmds:
			cmd.fn(s.engine)
			close(cmd.done)
			rearm()
		case <-tickC:
			s.engine.Tick()
			rearm()
		}
	}
}

func superseded(query string) *domain.Error {
	return domain.NewError(domain.KindCancelled, query, "superseded by a newer search", nil)
}
