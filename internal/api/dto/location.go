package dto

import "mappy/internal/domain"

// UserLocation is a position fix as the browser reports it and as the info
// panel shows it.
type UserLocation struct {
	Lat      float64  `json:"lat"`
	Lon      float64  `json:"lon"`
	Accuracy float64  `json:"accuracy"`
	Altitude *float64 `json:"altitude,omitempty"`
	Heading  *float64 `json:"heading,omitempty"`
	Place    string   `json:"place,omitempty"`
}

func FromUserLocation(loc domain.UserLocation, place string) UserLocation {
	return UserLocation{
		Lat:      loc.Lat,
		Lon:      loc.Lon,
		Accuracy: loc.AccuracyMeters,
		Altitude: loc.AltitudeMeters,
		Heading:  loc.HeadingDegrees,
		Place:    place,
	}
}

func (u UserLocation) ToDomain() domain.UserLocation {
	return domain.UserLocation{
		Coordinate:     domain.Coordinate{Lat: u.Lat, Lon: u.Lon},
		AccuracyMeters: u.Accuracy,
		AltitudeMeters: u.Altitude,
		HeadingDegrees: u.Heading,
	}
}
