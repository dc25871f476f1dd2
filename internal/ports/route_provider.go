package ports

import (
	"context"
	"fmt"

	"mappy/internal/domain"
)

// Contract for retrieving a road route for one travel mode.
type RouteProvider interface {
	// One request per call; failures of one mode never affect another.
	Route(ctx context.Context, mode domain.TravelMode, from, to domain.Coordinate) (domain.RouteEstimate, error)
}

// RouteKey identifies a cached route. Endpoints are compared at ~1 m precision.
type RouteKey struct {
	Mode     domain.TravelMode
	From, To domain.Coordinate
}

func (k RouteKey) String() string {
	return fmt.Sprintf("%s|%.5f,%.5f|%.5f,%.5f", k.Mode, k.From.Lat, k.From.Lon, k.To.Lat, k.To.Lon)
}

// Cache of road route estimates.
type RouteCache interface {
	Get(ctx context.Context, key RouteKey) (domain.RouteEstimate, bool, error)
	Put(ctx context.Context, key RouteKey, est domain.RouteEstimate) error
}
