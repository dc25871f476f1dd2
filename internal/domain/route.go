package domain

import (
	"fmt"
	"strings"
)

// TravelMode selects how a route estimate is produced.
type TravelMode string

const (
	ModeDriving TravelMode = "driving"
	ModeWalking TravelMode = "walking"
	ModeCycling TravelMode = "cycling"
	ModeFlying  TravelMode = "flying"
)

// DefaultMode is the mode selected when a session starts.
const DefaultMode = ModeDriving

// AllModes returns every mode in display order.
func AllModes() []TravelMode {
	return []TravelMode{ModeDriving, ModeWalking, ModeCycling, ModeFlying}
}

// RoadModes returns the modes that are resolved by the routing service.
func RoadModes() []TravelMode {
	return []TravelMode{ModeDriving, ModeWalking, ModeCycling}
}

func (m TravelMode) IsValid() bool {
	switch m {
	case ModeDriving, ModeWalking, ModeCycling, ModeFlying:
		return true
	default:
		return false
	}
}

// IsRoad reports whether the mode needs the routing service.
func (m TravelMode) IsRoad() bool {
	return m.IsValid() && m != ModeFlying
}

func ParseTravelMode(s string) (TravelMode, error) {
	m := TravelMode(strings.ToLower(strings.TrimSpace(s)))
	if !m.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidMode, s)
	}
	return m, nil
}

// RouteEstimate is the distance/duration for one mode between the current
// user location and destination.
// A nil Path means the route is drawn as a straight line between the endpoints.
type RouteEstimate struct {
	Mode            TravelMode
	DistanceMeters  float64
	DurationSeconds float64
	Path            []Coordinate
}

func (r RouteEstimate) IsStraightLine() bool { return r.Path == nil }
