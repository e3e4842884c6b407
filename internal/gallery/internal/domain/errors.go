package domain

import (
	"errors"
	"fmt"
)

// Kind classifies gallery failures.
type Kind string

// Failure kinds.
const (
	KindInsufficientResults Kind = "insufficient_results"
	KindTransportFailure    Kind = "transport_failure"
	KindCancelled           Kind = "cancelled"
	KindInvariantViolation  Kind = "invariant_violation"
)

// Sentinel errors, one per Kind. *Error values unwrap to the sentinel of
// their kind so callers can use errors.Is.
var (
	ErrInsufficientResults = errors.New("insufficient distinct results")
	ErrTransportFailure    = errors.New("search transport failure")
	ErrCancelled           = errors.New("search superseded by a newer search")
	ErrInvariantViolation  = errors.New("pool/slot invariant violated")

	ErrSlotCount = errors.New("slot count mismatch")
)

// Sentinel returns the sentinel error for the kind, or nil for an unknown kind.
func (k Kind) Sentinel() error {
	switch k {
	case KindInsufficientResults:
		return ErrInsufficientResults
	case KindTransportFailure:
		return ErrTransportFailure
	case KindCancelled:
		return ErrCancelled
	case KindInvariantViolation:
		return ErrInvariantViolation
	default:
		return nil
	}
}

// Error is a classified gallery failure tied to the query that caused it.
type Error struct {
	Kind    Kind
	Query   string
	Message string
	Err     error
}

// NewError builds an *Error of the given kind.
func NewError(kind Kind, query, message string, cause error) *Error {
	return &Error{Kind: kind, Query: query, Message: message, Err: cause}
}

// InsufficientResults builds the error returned when fewer than min distinct
// candidates were found.
func InsufficientResults(query string, found, min int) *Error {
	return NewError(KindInsufficientResults, query,
		fmt.Sprintf("%d distinct results found, but %d or more are needed.", found, min), nil)
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap exposes both the kind sentinel and the underlying cause.
func (e *Error) Unwrap() []error {
	errs := make([]error, 0, 2)
	if s := e.Kind.Sentinel(); s != nil {
		errs = append(errs, s)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// Alert converts the error to the tuple delivered to alert sinks.
func (e *Error) Alert() Alert {
	return Alert{Kind: e.Kind, Message: e.Message, Query: e.Query}
}

// Alert is a user-facing failure notification.
type Alert struct {
	Kind    Kind   `json:"kind"`
	Message string `json:"message"`
	Query   string `json:"query"`
}

// SameCause reports whether two alerts would be redundant if shown back to
// back: same kind for the same query.
func (a Alert) SameCause(other Alert) bool {
	return a.Kind == other.Kind && a.Query == other.Query
}
