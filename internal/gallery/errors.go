package gallery

import (
	"errors"

	"github.com/SebastienMelki/artwall/internal/gallery/internal/domain"
	"github.com/SebastienMelki/artwall/internal/gallery/internal/service"
)

// Errors returned by the gallery. Classified failures are *Error values that
// match one of the kind sentinels with errors.Is.
var (
	ErrInsufficientResults = domain.ErrInsufficientResults
	ErrTransportFailure    = domain.ErrTransportFailure
	ErrCancelled           = domain.ErrCancelled
	ErrInvariantViolation  = domain.ErrInvariantViolation

	ErrNotRunning        = service.ErrNotRunning
	ErrInvalidTransition = service.ErrInvalidTransition
	ErrInvalidQuery      = service.ErrInvalidQuery

	ErrInvalidConfig = errors.New("invalid gallery configuration")
)
