package controller

import (
	"context"
	"fmt"
	"sync"

	"mappy/internal/domain"
	"mappy/internal/ports"
)

type mapCall struct {
	Op     string
	Points []domain.Coordinate
	Zoom   int
	Arg    string
}

type fakeMap struct {
	mu    sync.Mutex
	calls []mapCall
}

func (m *fakeMap) record(c mapCall) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, c)
}

func (m *fakeMap) SetUserMarker(c domain.Coordinate) {
	m.record(mapCall{Op: "user", Points: []domain.Coordinate{c}})
}

func (m *fakeMap) SetAccuracyRing(c domain.Coordinate, r float64) {
	m.record(mapCall{Op: "ring", Points: []domain.Coordinate{c}, Arg: fmt.Sprint(r)})
}

func (m *fakeMap) SetDestinationMarker(c domain.Coordinate, label string) {
	m.record(mapCall{Op: "dest", Points: []domain.Coordinate{c}, Arg: label})
}

func (m *fakeMap) ClearDestinationMarker() { m.record(mapCall{Op: "clear_dest"}) }

func (m *fakeMap) DrawRoute(path []domain.Coordinate) {
	m.record(mapCall{Op: "route", Points: append([]domain.Coordinate(nil), path...)})
}

func (m *fakeMap) ClearRoute() { m.record(mapCall{Op: "clear_route"}) }

func (m *fakeMap) FitBounds(points []domain.Coordinate, padding int) {
	m.record(mapCall{Op: "fit", Points: append([]domain.Coordinate(nil), points...), Zoom: padding})
}

func (m *fakeMap) SetView(c domain.Coordinate, zoom int) {
	m.record(mapCall{Op: "view", Points: []domain.Coordinate{c}, Zoom: zoom})
}

func (m *fakeMap) SetTileLayer(id string) error {
	if id != "dark" && id != "street" && id != "satellite" {
		return fmt.Errorf("unknown layer %q", id)
	}
	m.record(mapCall{Op: "layer", Arg: id})
	return nil
}

func (m *fakeMap) all() []mapCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]mapCall(nil), m.calls...)
}

func (m *fakeMap) count(op string) int {
	n := 0
	for _, c := range m.all() {
		if c.Op == op {
			n++
		}
	}
	return n
}

func (m *fakeMap) last(op string) (mapCall, bool) {
	calls := m.all()
	for i := len(calls) - 1; i >= 0; i-- {
		if calls[i].Op == op {
			return calls[i], true
		}
	}
	return mapCall{}, false
}

type notice struct {
	Level   ports.NotifyLevel
	Message string
}

type fakeDisplay struct {
	mu       sync.Mutex
	notices  []notice
	slots    map[domain.TravelMode]ports.ModeSlot
	place    string
	dest     *domain.Destination
	route    *domain.RouteEstimate
	tracking bool
	theme    domain.Theme
	shared   []string
}

func newFakeDisplay() *fakeDisplay {
	return &fakeDisplay{slots: map[domain.TravelMode]ports.ModeSlot{}}
}

func (d *fakeDisplay) Notify(level ports.NotifyLevel, message string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.notices = append(d.notices, notice{level, message})
}

func (d *fakeDisplay) SetModeSlot(mode domain.TravelMode, slot ports.ModeSlot) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.slots[mode] = slot
}

func (d *fakeDisplay) ShowLocation(loc domain.UserLocation, placeName string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.place = placeName
}

func (d *fakeDisplay) ShowDestination(dest domain.Destination) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.dest = &dest
}

func (d *fakeDisplay) HideDestination() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.dest = nil
	d.route = nil
}

func (d *fakeDisplay) ShowRoute(est domain.RouteEstimate) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.route = &est
}

func (d *fakeDisplay) HideRoute() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.route = nil
}

func (d *fakeDisplay) shownRoute() *domain.RouteEstimate {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.route
}

func (d *fakeDisplay) SetTracking(enabled bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.tracking = enabled
}

func (d *fakeDisplay) SetTheme(theme domain.Theme) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.theme = theme
}

func (d *fakeDisplay) Share(url string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.shared = append(d.shared, url)
}

func (d *fakeDisplay) slot(mode domain.TravelMode) ports.ModeSlot {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.slots[mode]
}

func (d *fakeDisplay) hasNotice(msg string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, n := range d.notices {
		if n.Message == msg {
			return true
		}
	}
	return false
}

func (d *fakeDisplay) lastNotice() notice {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.notices) == 0 {
		return notice{}
	}
	return d.notices[len(d.notices)-1]
}

// watchSource is a position source whose fixes are pushed by the test.
type watchSource struct {
	mu       sync.Mutex
	fix      domain.UserLocation
	err      error
	onUpdate func(domain.UserLocation)
	watching bool
}

func (s *watchSource) CurrentPosition(ctx context.Context, opts ports.PositionOptions) (domain.UserLocation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fix, s.err
}

func (s *watchSource) Watch(opts ports.PositionOptions, onUpdate func(domain.UserLocation), onError func(error)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onUpdate = onUpdate
	s.watching = true
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.watching = false
	}
}

// push delivers loc through the most recent watch callback, even after the
// watch was stopped, the way a late platform callback would.
func (s *watchSource) push(loc domain.UserLocation) {
	s.mu.Lock()
	cb := s.onUpdate
	s.mu.Unlock()
	if cb != nil {
		cb(loc)
	}
}

// gatedGeocoder blocks each query listed in gates until its channel closes.
type gatedGeocoder struct {
	places map[string]domain.Destination
	gates  map[string]chan struct{}
}

func (g *gatedGeocoder) Search(ctx context.Context, query string) (domain.Destination, error) {
	if gate, ok := g.gates[query]; ok {
		select {
		case <-gate:
		case <-ctx.Done():
			return domain.Destination{}, ctx.Err()
		}
	}
	d, ok := g.places[query]
	if !ok {
		return domain.Destination{}, domain.ErrNotFound
	}
	return d, nil
}

type memPrefs struct {
	mu     sync.Mutex
	themes map[string]domain.Theme
}

func (p *memPrefs) Theme(ctx context.Context, clientID string) (domain.Theme, bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	t, ok := p.themes[clientID]
	return t, ok, nil
}

func (p *memPrefs) SetTheme(ctx context.Context, clientID string, theme domain.Theme) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.themes[clientID] = theme
	return nil
}

func (p *memPrefs) get(clientID string) domain.Theme {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.themes[clientID]
}
