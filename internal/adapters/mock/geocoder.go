package mock

import (
	"context"
	"strings"
	"sync"

	"mappy/internal/domain"
)

// MockGeocoder resolves queries from a fixed table keyed by lower-cased query.
// Unknown queries return domain.ErrNotFound; Err, when set, is returned for
// every call.
type MockGeocoder struct {
	Places map[string]domain.Destination
	Names  map[domain.Coordinate]string
	Err    error

	mu    sync.Mutex
	calls int
}

func NewMockGeocoder(places map[string]domain.Destination) *MockGeocoder {
	return &MockGeocoder{Places: places}
}

func (g *MockGeocoder) Search(ctx context.Context, query string) (domain.Destination, error) {
	g.mu.Lock()
	g.calls++
	g.mu.Unlock()

	q := strings.ToLower(strings.Join(strings.Fields(query), " "))
	if q == "" {
		return domain.Destination{}, domain.ErrEmptyQuery
	}
	if g.Err != nil {
		return domain.Destination{}, g.Err
	}
	d, ok := g.Places[q]
	if !ok {
		return domain.Destination{}, domain.ErrNotFound
	}
	return d, nil
}

// Reverse returns the configured name for c, or "Unknown".
func (g *MockGeocoder) Reverse(ctx context.Context, c domain.Coordinate) (string, error) {
	if name, ok := g.Names[c]; ok {
		return name, nil
	}
	return "Unknown", nil
}

func (g *MockGeocoder) Calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls
}
