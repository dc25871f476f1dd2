package cache

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/paulmach/orb"

	"mappy/internal/domain"
)

// Paths are stored as GeoJSON-style [[lon,lat],...] arrays.
func encodePath(path []domain.Coordinate) (string, error) {
	if path == nil {
		return "", nil
	}
	ls := make(orb.LineString, len(path))
	for i, c := range path {
		ls[i] = orb.Point{c.Lon, c.Lat}
	}
	b, err := json.Marshal(ls)
	if err != nil {
		return "", fmt.Errorf("encode path: %w", err)
	}
	return string(b), nil
}

func decodePath(s string) ([]domain.Coordinate, error) {
	if s == "" {
		return nil, nil
	}
	var ls orb.LineString
	if err := json.Unmarshal([]byte(s), &ls); err != nil {
		return nil, fmt.Errorf("decode path: %w", err)
	}
	path := make([]domain.Coordinate, len(ls))
	for i, p := range ls {
		path[i] = domain.Coordinate{Lat: p.Lat(), Lon: p.Lon()}
	}
	return path, nil
}

// expired reports whether an entry written at createdUnix has outlived ttl.
// A zero ttl never expires.
func expired(createdUnix int64, ttl time.Duration, now time.Time) bool {
	return ttl > 0 && now.Sub(time.Unix(createdUnix, 0)) >= ttl
}
