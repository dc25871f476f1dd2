package ports

import (
	"context"
	"time"

	"mappy/internal/domain"
)

type PositionOptions struct {
	HighAccuracy bool
	Timeout      time.Duration
	// Zero means a cached position is never reused.
	MaximumAge time.Duration
}

// PositionSource is the platform geolocation capability (the browser, or a
// fixed position for the CLI).
type PositionSource interface {
	// Block until one fix arrives, the source fails, or ctx ends.
	CurrentPosition(ctx context.Context, opts PositionOptions) (domain.UserLocation, error)
	// Subscribe to continuous fixes. The returned stop function is idempotent.
	Watch(opts PositionOptions, onUpdate func(domain.UserLocation), onError func(error)) (stop func())
}
