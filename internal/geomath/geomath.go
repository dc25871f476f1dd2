// Package geomath holds the pure distance and formatting helpers used by the
// route estimates and the info panel.
package geomath

import (
	"errors"
	"fmt"
	"math"

	"github.com/golang/geo/s2"
	"github.com/paulmach/orb"

	"mappy/internal/domain"
)

// earthRadiusInMeters is the volumetric mean radius of the Earth.
const earthRadiusInMeters = 6371000

var ErrInvalidSpeed = errors.New("speed must be greater than zero")

// Distance returns the great-circle distance in meters between a and b.
func Distance(a, b domain.Coordinate) float64 {
	if a == b {
		return 0
	}
	p1 := s2.LatLngFromDegrees(a.Lat, a.Lon)
	p2 := s2.LatLngFromDegrees(b.Lat, b.Lon)
	return p1.Distance(p2).Radians() * earthRadiusInMeters
}

// EstimateDuration returns the seconds needed to cover distanceMeters at speedKmh.
func EstimateDuration(distanceMeters, speedKmh float64) (float64, error) {
	if speedKmh <= 0 || math.IsNaN(speedKmh) {
		return 0, fmt.Errorf("estimate duration: %w (got %v)", ErrInvalidSpeed, speedKmh)
	}
	return distanceMeters / 1000 / speedKmh * 3600, nil
}

// FormatDistance renders whole meters below one kilometer, kilometers with
// two decimals otherwise. The branch is chosen on the rounded meters, so
// 999.5 m is "1.00 km" and never "1000 m".
func FormatDistance(meters float64) string {
	if m := math.Round(meters); m < 1000 {
		return fmt.Sprintf("%d m", int(m))
	}
	return fmt.Sprintf("%.2f km", meters/1000)
}

// FormatDuration renders a travel time for the mode buttons.
//
// Minutes are rounded; hour and day breakdowns floor the remainder.
func FormatDuration(seconds float64) string {
	if seconds < 60 {
		return "<1 min"
	}

	if seconds < 3600 {
		mins := int(math.Round(seconds / 60))
		// 3570s..3599s would round up to an hour's worth of minutes.
		if mins >= 60 {
			mins = 59
		}
		return fmt.Sprintf("%d mins", mins)
	}

	total := int64(math.Floor(seconds))
	if seconds < 24*3600 {
		hours := total / 3600
		mins := (total % 3600) / 60
		return fmt.Sprintf("%dh %dm", hours, mins)
	}

	days := total / 86400
	hours := (total % 86400) / 3600
	return fmt.Sprintf("%dd %dh", days, hours)
}

// FormatCoordinate renders "lat, lon" with six decimals.
func FormatCoordinate(c domain.Coordinate) string {
	return fmt.Sprintf("%.6f, %.6f", c.Lat, c.Lon)
}

// Bound returns the bounding box of the given points. Orb points are [lon, lat].
func Bound(points ...domain.Coordinate) orb.Bound {
	if len(points) == 0 {
		return orb.Bound{}
	}
	mp := make(orb.MultiPoint, 0, len(points))
	for _, p := range points {
		mp = append(mp, orb.Point{p.Lon, p.Lat})
	}
	return mp.Bound()
}
