package ports

import "mappy/internal/domain"

// MapView owns the rendered map. Each operation replaces its own element and
// repeating a call with the same arguments changes nothing.
type MapView interface {
	SetUserMarker(c domain.Coordinate)
	SetAccuracyRing(c domain.Coordinate, radiusMeters float64)
	SetDestinationMarker(c domain.Coordinate, label string)
	ClearDestinationMarker()
	// Two points draw a straight line.
	DrawRoute(path []domain.Coordinate)
	ClearRoute()
	FitBounds(points []domain.Coordinate, paddingPx int)
	SetView(center domain.Coordinate, zoom int)
	SetTileLayer(layerID string) error
}
