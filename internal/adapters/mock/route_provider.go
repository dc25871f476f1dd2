// Package mock provides in-memory geocoders and route providers for tests
// and offline runs.
package mock

import (
	"context"
	"fmt"
	"sync"

	"mappy/internal/domain"
)

// MockRoute is the canned answer for one travel mode.
type MockRoute struct {
	Mode    domain.TravelMode
	Meters  float64
	Seconds float64
	Path    []domain.Coordinate
	Err     error
}

// MockRouteProvider answers Route from a per-mode table and counts calls.
// When Gate is set each call blocks until the gate yields or ctx ends.
type MockRouteProvider struct {
	m    map[domain.TravelMode]MockRoute
	Gate map[domain.TravelMode]chan struct{}

	mu    sync.Mutex
	calls map[domain.TravelMode]int
}

func NewMockRouteProvider(routes []MockRoute) *MockRouteProvider {
	m := make(map[domain.TravelMode]MockRoute, len(routes))
	for _, r := range routes {
		m[r.Mode] = r
	}
	return &MockRouteProvider{m: m, calls: map[domain.TravelMode]int{}}
}

func (p *MockRouteProvider) Route(
	ctx context.Context,
	mode domain.TravelMode,
	from, to domain.Coordinate,
) (domain.RouteEstimate, error) {
	p.mu.Lock()
	p.calls[mode]++
	gate := p.Gate[mode]
	p.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return domain.RouteEstimate{}, ctx.Err()
		}
	}

	r, ok := p.m[mode]
	if !ok {
		return domain.RouteEstimate{}, fmt.Errorf("missing route for mode %q", mode)
	}
	if r.Err != nil {
		return domain.RouteEstimate{}, r.Err
	}

	path := r.Path
	if path == nil {
		path = []domain.Coordinate{from, to}
	}
	return domain.RouteEstimate{
		Mode:            mode,
		DistanceMeters:  r.Meters,
		DurationSeconds: r.Seconds,
		Path:            path,
	}, nil
}

// Calls returns how many times Route was invoked for mode.
func (p *MockRouteProvider) Calls(mode domain.TravelMode) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls[mode]
}
