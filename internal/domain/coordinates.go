package domain

import "fmt"

// Immutable geographic coordinate (latitude, longitude) in degrees.
type Coordinate struct {
	Lat float64
	Lon float64
}

// Validate reports whether the coordinate lies inside the WGS84 range.
func (c Coordinate) Validate() error {
	if c.Lat < -90 || c.Lat > 90 {
		return fmt.Errorf("%w: latitude %v out of range [-90,90]", ErrInvalidCoordinate, c.Lat)
	}
	if c.Lon < -180 || c.Lon > 180 {
		return fmt.Errorf("%w: longitude %v out of range [-180,180]", ErrInvalidCoordinate, c.Lon)
	}
	return nil
}

// Return coordinates as [lon, lat] for GeoJSON and OSRM compatibility.
func (c Coordinate) CoordsToList() []float64 { return []float64{c.Lon, c.Lat} }

func (c Coordinate) String() string {
	return fmt.Sprintf("%.6f,%.6f", c.Lat, c.Lon)
}
