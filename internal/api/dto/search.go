package dto

import "mappy/internal/domain"

type SearchRequest struct {
	Query string `json:"query"`
}

type LocationResponse struct {
	Lat         float64 `json:"lat"`
	Lon         float64 `json:"lon"`
	DisplayName string  `json:"display_name"`
}

type SearchResponse struct {
	Success  bool              `json:"success"`
	Location *LocationResponse `json:"location,omitempty"`
	Error    string            `json:"error,omitempty"`
}

type ReverseResponse struct {
	Success bool   `json:"success"`
	Name    string `json:"name,omitempty"`
	Error   string `json:"error,omitempty"`
}

func FromDestination(d domain.Destination) LocationResponse {
	return LocationResponse{Lat: d.Lat, Lon: d.Lon, DisplayName: d.DisplayName}
}

func (l LocationResponse) ToDomain() domain.Destination {
	return domain.Destination{
		Coordinate:  domain.Coordinate{Lat: l.Lat, Lon: l.Lon},
		DisplayName: l.DisplayName,
	}
}
