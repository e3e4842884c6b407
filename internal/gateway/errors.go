package gateway

import "errors"

// Sentinel errors for the gateway package.
var (
	ErrInvalidBody     = errors.New("request body must be a JSON object")
	ErrQueryRequired   = errors.New("query is required")
	ErrGalleryRequired = errors.New("gallery controller is required")
	ErrBodyTooLarge    = errors.New("request body too large")
)
