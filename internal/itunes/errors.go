package itunes

import "errors"

var (
	// ErrUnknownMedia is returned for a media type the API does not accept.
	ErrUnknownMedia = errors.New("unknown media type")

	// ErrUnexpectedStatus is returned when the API answers with a non-200 status.
	ErrUnexpectedStatus = errors.New("unexpected response status")

	// ErrDecode is returned when the response body is not a search result.
	ErrDecode = errors.New("failed to decode search response")

	// ErrRetriesExhausted is returned when every retry failed.
	ErrRetriesExhausted = errors.New("all retries exhausted")
)
