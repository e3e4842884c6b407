// Package domain contains the core data structures of the rotating gallery:
// the candidate pool (the bench of undisplayed artwork), the fixed slot set
// (what is on screen), order-preserving deduplication and the lifecycle
// state and error vocabulary shared by the service layer.
//
// Nothing in this package is safe for concurrent use. The service layer
// guarantees a single writer.
package domain

import "fmt"

// CandidateID is an opaque artwork reference (an artwork URL). Two candidates
// are the same candidate iff their strings are equal.
type CandidateID string

// Slot is one display position. An empty slot has Occupied == false and an
// empty ID.
type Slot struct {
	ID       CandidateID `json:"id,omitempty"`
	Occupied bool        `json:"occupied"`
}

// State is the lifecycle state of the rotation engine.
type State int

const (
	// StateIdle is the initial state; nothing has been searched yet.
	StateIdle State = iota
	// StateFetching means a search is in flight and rotation is halted.
	StateFetching
	// StatePopulating means a validated candidate list is being laid out.
	StatePopulating
	// StatePaused means a gallery is loaded and rotation is stopped.
	StatePaused
	// StateRotating means the periodic tick is armed.
	StateRotating
	// StateError means the last search failed. The previous gallery, if
	// any, is still intact.
	StateError
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateFetching:
		return "fetching"
	case StatePopulating:
		return "populating"
	case StatePaused:
		return "paused"
	case StateRotating:
		return "rotating"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// MarshalText renders the state by name so JSON views stay readable.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText parses a state name produced by MarshalText.
func (s *State) UnmarshalText(text []byte) error {
	for c := StateIdle; c <= StateError; c++ {
		if c.String() == string(text) {
			*s = c
			return nil
		}
	}
	return fmt.Errorf("unknown state %q", text)
}

// Frame is what render sinks receive: the slot contents after a population
// or a rotation, with the query they belong to.
type Frame struct {
	Query    string `json:"query"`
	Slots    []Slot `json:"slots"`
	PoolSize int    `json:"pool_size"`
}
