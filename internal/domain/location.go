package domain

import "fmt"

// UserLocation is a single fix reported by the position source.
// A new fix always replaces the previous one; fields are never merged.
type UserLocation struct {
	Coordinate
	AccuracyMeters float64
	AltitudeMeters *float64
	HeadingDegrees *float64
}

func (l UserLocation) Validate() error {
	if err := l.Coordinate.Validate(); err != nil {
		return err
	}
	if l.AccuracyMeters < 0 {
		return fmt.Errorf("%w: accuracy %v must be >= 0", ErrInvalidCoordinate, l.AccuracyMeters)
	}
	if l.HeadingDegrees != nil && (*l.HeadingDegrees < 0 || *l.HeadingDegrees >= 360) {
		return fmt.Errorf("%w: heading %v out of range [0,360)", ErrInvalidCoordinate, *l.HeadingDegrees)
	}
	return nil
}

// Destination is the best geocoding match for a free-text search.
type Destination struct {
	Coordinate
	DisplayName string
}
