// Package gallery provides the rotating artwork gallery: a fixed set of
// display slots fed from a larger pool of fetched candidates, with one slot
// swapped for a fresh candidate on every rotation tick while playing.
package gallery

import (
	"context"

	"github.com/SebastienMelki/artwall/internal/gallery/internal/domain"
	"github.com/SebastienMelki/artwall/internal/gallery/internal/service"
)

// Controller drives a gallery. Implementations must be safe for concurrent
// use.
type Controller interface {
	// Search fetches candidates for query and replaces the gallery with
	// them. An empty media selects the configured default. It returns the
	// deduplicated candidates even when the population was rejected.
	Search(ctx context.Context, query, media string) ([]CandidateID, error)

	// Play starts rotation. It fails with ErrInvalidTransition unless a
	// gallery is loaded and paused.
	Play(ctx context.Context) (View, error)

	// Pause stops rotation and keeps the gallery.
	Pause(ctx context.Context) (View, error)

	// View returns the current gallery state.
	View(ctx context.Context) (View, error)
}

type (
	// CandidateID is an artwork reference.
	CandidateID = domain.CandidateID
	// Slot is one display position.
	Slot = domain.Slot
	// State is the gallery lifecycle state.
	State = domain.State
	// Frame is the slot contents delivered to sinks.
	Frame = domain.Frame
	// Alert is a user-facing failure.
	Alert = domain.Alert
	// Kind classifies failures.
	Kind = domain.Kind
	// Error is a classified failure tied to a query.
	Error = domain.Error
	// View is a read-only picture of the gallery.
	View = service.View
	// Sink receives progress, frames and alerts. Methods must not block.
	Sink = service.Sink
	// Fetcher retrieves candidates for a query.
	Fetcher = service.Fetcher
	// MediaValidator is optionally implemented by fetchers.
	MediaValidator = service.MediaValidator
)

// Lifecycle states.
const (
	StateIdle       = domain.StateIdle
	StateFetching   = domain.StateFetching
	StatePopulating = domain.StatePopulating
	StatePaused     = domain.StatePaused
	StateRotating   = domain.StateRotating
	StateError      = domain.StateError
)

// Failure kinds.
const (
	KindInsufficientResults = domain.KindInsufficientResults
	KindTransportFailure    = domain.KindTransportFailure
	KindCancelled           = domain.KindCancelled
	KindInvariantViolation  = domain.KindInvariantViolation
)
