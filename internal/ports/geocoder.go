package ports

import (
	"context"

	"mappy/internal/domain"
)

// Contract for resolving free text to the best matching destination.
type Geocoder interface {
	// Return the best match, domain.ErrNotFound, or a *domain.TransportError.
	Search(ctx context.Context, query string) (domain.Destination, error)
}

// Contract for resolving a coordinate to a short place name.
type ReverseGeocoder interface {
	Reverse(ctx context.Context, c domain.Coordinate) (string, error)
}

// Persistent query -> destination cache. Keys are normalized by the caller.
type GeocodeCache interface {
	GetMany(ctx context.Context, queries []string) (map[string]domain.Destination, error)
	PutMany(ctx context.Context, results map[string]domain.Destination) error
}
