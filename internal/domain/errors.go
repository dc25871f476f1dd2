package domain

import (
	"errors"
	"fmt"
)

// Geolocation failures.
var (
	ErrPermissionDenied       = errors.New("location permission denied")
	ErrPositionUnavailable    = errors.New("location unavailable")
	ErrLocationTimeout        = errors.New("location request timed out")
	ErrGeolocationUnsupported = errors.New("geolocation is not supported")
)

// Lookup and validation failures.
var (
	ErrNotFound          = errors.New("not found")
	ErrEmptyQuery        = errors.New("query must be non-empty")
	ErrInvalidCoordinate = errors.New("invalid coordinate")
	ErrInvalidMode       = errors.New("invalid travel mode")
)

// TransportError wraps any failure to reach or understand an upstream service.
// Callers should offer a retry; the operation itself never retries.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// IsTransport reports whether err carries a TransportError.
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}
