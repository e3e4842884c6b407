package service

import "errors"

var (
	// ErrNotRunning is returned when a command is sent to a stopped scheduler.
	ErrNotRunning = errors.New("scheduler not running")

	// ErrInvalidTransition is returned when play or pause is not allowed in
	// the current state.
	ErrInvalidTransition = errors.New("invalid state transition")

	// ErrInvalidQuery is returned for a search that cannot be issued.
	ErrInvalidQuery = errors.New("invalid query")
)
