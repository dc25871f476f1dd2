package dto

import "mappy/internal/domain"

type Point struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

func (p Point) ToDomain() domain.Coordinate { return domain.Coordinate{Lat: p.Lat, Lon: p.Lon} }

type RouteRequest struct {
	Start   Point  `json:"start"`
	End     Point  `json:"end"`
	Profile string `json:"profile"`
}

// RouteResponseBody carries the geometry as GeoJSON-ordered [lon, lat] pairs.
type RouteResponseBody struct {
	Mode           string       `json:"mode"`
	Distance       float64      `json:"distance"`
	Duration       float64      `json:"duration"`
	Geometry       [][2]float64 `json:"geometry,omitempty"`
	IsStraightLine bool         `json:"is_straight_line"`
}

type RouteResponse struct {
	Success bool               `json:"success"`
	Route   *RouteResponseBody `json:"route,omitempty"`
	Error   string             `json:"error,omitempty"`
}

func FromEstimate(est domain.RouteEstimate) RouteResponseBody {
	body := RouteResponseBody{
		Mode:           string(est.Mode),
		Distance:       est.DistanceMeters,
		Duration:       est.DurationSeconds,
		IsStraightLine: est.IsStraightLine(),
	}
	if est.Path != nil {
		body.Geometry = make([][2]float64, len(est.Path))
		for i, c := range est.Path {
			body.Geometry[i] = [2]float64{c.Lon, c.Lat}
		}
	}
	return body
}

func (r RouteResponseBody) ToDomain() domain.RouteEstimate {
	est := domain.RouteEstimate{
		Mode:            domain.TravelMode(r.Mode),
		DistanceMeters:  r.Distance,
		DurationSeconds: r.Duration,
	}
	if !r.IsStraightLine && len(r.Geometry) > 0 {
		est.Path = make([]domain.Coordinate, len(r.Geometry))
		for i, p := range r.Geometry {
			est.Path[i] = domain.Coordinate{Lat: p[1], Lon: p[0]}
		}
	}
	return est
}
