package controller

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mappy/internal/adapters/mock"
	"mappy/internal/domain"
	"mappy/internal/geomath"
	"mappy/internal/location"
	"mappy/internal/ports"
)

const (
	waitFor = 2 * time.Second
	tick    = 5 * time.Millisecond
)

var (
	phoenix = domain.UserLocation{
		Coordinate:     domain.Coordinate{Lat: 33.4484, Lon: -112.074},
		AccuracyMeters: 15,
	}
	tempe = domain.Destination{
		Coordinate:  domain.Coordinate{Lat: 33.4255, Lon: -111.94},
		DisplayName: "Tempe, Arizona",
	}
	walkPath  = []domain.Coordinate{phoenix.Coordinate, {Lat: 33.44, Lon: -112.0}, tempe.Coordinate}
	drivePath = []domain.Coordinate{phoenix.Coordinate, {Lat: 33.45, Lon: -111.98}, tempe.Coordinate}
)

type harness struct {
	c      *Controller
	m      *fakeMap
	d      *fakeDisplay
	src    *watchSource
	geo    *mock.MockGeocoder
	routes *mock.MockRouteProvider
	prefs  *memPrefs
}

func defaultRoutes() []mock.MockRoute {
	return []mock.MockRoute{
		{Mode: domain.ModeDriving, Meters: 14000, Seconds: 1080, Path: drivePath},
		{Mode: domain.ModeWalking, Meters: 13500, Seconds: 10800, Path: walkPath},
		{Mode: domain.ModeCycling, Meters: 13800, Seconds: 2700},
	}
}

func newHarness(t *testing.T, configure ...func(*harness, *Deps)) *harness {
	t.Helper()

	h := &harness{
		m:   &fakeMap{},
		d:   newFakeDisplay(),
		src: &watchSource{fix: phoenix},
		geo: mock.NewMockGeocoder(map[string]domain.Destination{
			"tempe": tempe,
		}),
		routes: mock.NewMockRouteProvider(defaultRoutes()),
		prefs:  &memPrefs{themes: map[string]domain.Theme{}},
	}
	h.geo.Names = map[domain.Coordinate]string{phoenix.Coordinate: "Phoenix"}

	deps := Deps{
		Geocoder: h.geo,
		Reverse:  h.geo,
		Routes:   h.routes,
		Location: location.New(h.src, time.Second, time.Second),
		Map:      h.m,
		Display:  h.d,
		Prefs:    h.prefs,
	}
	for _, fn := range configure {
		fn(h, &deps)
	}

	h.c = New(deps, Options{ClientID: "client-1", FlyingSpeedKmh: 800})

	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		_ = h.c.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-stopped
	})
	return h
}

func (h *harness) snapshot(t *testing.T) Session {
	t.Helper()
	s, err := h.c.Snapshot(context.Background())
	require.NoError(t, err)
	return s
}

func (h *harness) locateAndSearch(t *testing.T) {
	t.Helper()
	h.c.LocationAcquired(phoenix)
	h.c.SearchSubmitted("tempe")
	require.Eventually(t, func() bool {
		return len(h.snapshot(t).Estimates) == 4
	}, waitFor, tick)
}

func TestStartDrawsDefaultView(t *testing.T) {
	h := newHarness(t)
	s := h.snapshot(t)

	assert.Equal(t, domain.DefaultMode, s.SelectedMode)
	assert.Equal(t, domain.DefaultTheme, s.Theme)
	assert.Equal(t, "dark", s.Layer)

	view, ok := h.m.last("view")
	require.True(t, ok)
	assert.Equal(t, DefaultCenter, view.Points[0])
	assert.Equal(t, 2, view.Zoom)
	assert.Equal(t, ports.SlotEmpty, h.d.slot(domain.ModeFlying).State)
}

func TestLocationAcquiredFirstFixCentres(t *testing.T) {
	h := newHarness(t)

	moved := phoenix
	moved.Lat += 0.01
	h.geo.Names[moved.Coordinate] = "Phoenix"

	h.c.LocationAcquired(phoenix)
	h.c.LocationAcquired(moved)

	require.Eventually(t, func() bool { return h.snapshot(t).PlaceName == "Phoenix" }, waitFor, tick)
	s := h.snapshot(t)
	assert.Equal(t, moved, *s.UserLocation)

	views := 0
	for _, c := range h.m.all() {
		if c.Op == "view" && c.Zoom == 13 {
			views++
		}
	}
	assert.Equal(t, 1, views, "only the first fix centres the map")
	assert.Equal(t, 2, h.m.count("user"))
}

func TestInvalidLocationIgnored(t *testing.T) {
	h := newHarness(t)

	h.c.LocationAcquired(domain.UserLocation{Coordinate: domain.Coordinate{Lat: 120}})
	assert.Nil(t, h.snapshot(t).UserLocation)
}

func TestFanOutIsIndependentPerMode(t *testing.T) {
	boom := &domain.TransportError{Op: "osrm route driving", Err: errors.New("503")}
	h := newHarness(t, func(h *harness, d *Deps) {
		routes := defaultRoutes()
		routes[0].Err = boom
		h.routes = mock.NewMockRouteProvider(routes)
		d.Routes = h.routes
	})

	h.c.LocationAcquired(phoenix)
	h.c.SearchSubmitted("tempe")

	require.Eventually(t, func() bool {
		return h.d.slot(domain.ModeDriving).State == ports.SlotUnavailable &&
			len(h.snapshot(t).Estimates) == 3
	}, waitFor, tick)

	s := h.snapshot(t)
	assert.NotContains(t, s.Estimates, domain.ModeDriving)
	assert.Equal(t, ports.ModeSlot{State: ports.SlotReady, Text: "3h 0m"}, h.d.slot(domain.ModeWalking))
	assert.Equal(t, ports.ModeSlot{State: ports.SlotReady, Text: "45 mins"}, h.d.slot(domain.ModeCycling))
	assert.Equal(t, ports.SlotReady, h.d.slot(domain.ModeFlying).State)
	assert.True(t, h.d.hasNotice("Driving route unavailable."))
	assert.Zero(t, h.m.count("route"), "selected mode failed so nothing is drawn")

	for _, mode := range domain.RoadModes() {
		assert.Equal(t, 1, h.routes.Calls(mode))
	}
	assert.Zero(t, h.routes.Calls(domain.ModeFlying))

	h.c.ModeSelected(domain.ModeWalking)
	require.Eventually(t, func() bool { return h.m.count("route") == 1 }, waitFor, tick)
	route, _ := h.m.last("route")
	assert.Equal(t, walkPath, route.Points)
}

func TestFlyingDrawsStraightLine(t *testing.T) {
	h := newHarness(t)
	h.locateAndSearch(t)

	h.c.ModeSelected(domain.ModeFlying)
	require.Eventually(t, func() bool {
		r, ok := h.m.last("route")
		return ok && len(r.Points) == 2
	}, waitFor, tick)

	s := h.snapshot(t)
	fly := s.Estimates[domain.ModeFlying]
	assert.True(t, fly.IsStraightLine())
	assert.InDelta(t, geomath.Distance(phoenix.Coordinate, tempe.Coordinate), fly.DistanceMeters, 1e-6)

	r, _ := h.m.last("route")
	assert.Equal(t, []domain.Coordinate{phoenix.Coordinate, tempe.Coordinate}, r.Points)
}

func TestSearchWithLocationFitsBothPoints(t *testing.T) {
	h := newHarness(t)
	h.locateAndSearch(t)

	fit, ok := h.m.last("fit")
	require.True(t, ok)
	assert.Equal(t, []domain.Coordinate{phoenix.Coordinate, tempe.Coordinate}, fit.Points)
	assert.Equal(t, 100, fit.Zoom)
	assert.True(t, h.d.hasNotice("Location found!"))

	dest, ok := h.m.last("dest")
	require.True(t, ok)
	assert.Equal(t, "Tempe, Arizona", dest.Arg)
}

func TestSearchWithoutLocationCentresOnDestination(t *testing.T) {
	h := newHarness(t)

	h.c.SearchSubmitted("tempe")
	require.Eventually(t, func() bool { return h.snapshot(t).Destination != nil }, waitFor, tick)

	view, _ := h.m.last("view")
	assert.Equal(t, tempe.Coordinate, view.Points[0])
	assert.Equal(t, 13, view.Zoom)
	assert.Empty(t, h.snapshot(t).Estimates)
	assert.Zero(t, h.routes.Calls(domain.ModeDriving))
}

func TestBlankSearchIsRejectedLocally(t *testing.T) {
	h := newHarness(t)

	h.c.SearchSubmitted("   ")
	h.snapshot(t)

	assert.Equal(t, notice{ports.NotifyError, "Please enter a location to search."}, h.d.lastNotice())
	assert.Zero(t, h.geo.Calls())
}

func TestSearchFailuresHaveDistinctMessages(t *testing.T) {
	h := newHarness(t)

	h.c.SearchSubmitted("atlantis")
	require.Eventually(t, func() bool {
		return h.d.hasNotice("Location not found. Try being more specific.")
	}, waitFor, tick)
	assert.Nil(t, h.snapshot(t).Destination)

	h.geo.Err = &domain.TransportError{Op: "nominatim search", Err: errors.New("timeout")}
	h.c.SearchSubmitted("tempe")
	require.Eventually(t, func() bool {
		return h.d.hasNotice("Search failed. Please try again.")
	}, waitFor, tick)
	assert.Nil(t, h.snapshot(t).Destination)
}

func TestSupersededSearchIsDropped(t *testing.T) {
	slow := make(chan struct{})
	mesa := domain.Destination{Coordinate: domain.Coordinate{Lat: 33.4152, Lon: -111.8315}, DisplayName: "Mesa"}
	h := newHarness(t, func(h *harness, d *Deps) {
		d.Geocoder = &gatedGeocoder{
			places: map[string]domain.Destination{"tempe": tempe, "mesa": mesa},
			gates:  map[string]chan struct{}{"tempe": slow},
		}
	})

	h.c.SearchSubmitted("tempe")
	h.c.SearchSubmitted("mesa")
	require.Eventually(t, func() bool {
		d := h.snapshot(t).Destination
		return d != nil && d.DisplayName == "Mesa"
	}, waitFor, tick)

	close(slow)
	assert.Never(t, func() bool {
		return h.snapshot(t).Destination.DisplayName != "Mesa"
	}, 100*time.Millisecond, tick)
}

func TestClearResetsAndModeSelectIsNoop(t *testing.T) {
	h := newHarness(t)
	h.locateAndSearch(t)

	h.c.Clear()
	s := h.snapshot(t)
	assert.Nil(t, s.Destination)
	assert.Empty(t, s.Estimates)
	assert.Equal(t, ports.SlotEmpty, h.d.slot(domain.ModeDriving).State)

	view, _ := h.m.last("view")
	assert.Equal(t, phoenix.Coordinate, view.Points[0])
	assert.Equal(t, 15, view.Zoom)

	before := len(h.m.all())
	h.c.ModeSelected(domain.ModeWalking)
	s = h.snapshot(t)
	assert.Equal(t, domain.ModeWalking, s.SelectedMode)
	assert.Len(t, h.m.all(), before, "mode change after clear draws nothing")
}

func TestClearWithoutLocationShowsWorld(t *testing.T) {
	h := newHarness(t)

	h.c.Clear()
	h.snapshot(t)

	view, _ := h.m.last("view")
	assert.Equal(t, DefaultCenter, view.Points[0])
	assert.Equal(t, 2, view.Zoom)
}

func TestEstimatesFromBeforeClearAreDiscarded(t *testing.T) {
	gate := make(chan struct{})
	h := newHarness(t, func(h *harness, d *Deps) {
		h.routes.Gate = map[domain.TravelMode]chan struct{}{domain.ModeDriving: gate}
	})

	h.c.LocationAcquired(phoenix)
	h.c.SearchSubmitted("tempe")
	require.Eventually(t, func() bool { return len(h.snapshot(t).Estimates) == 3 }, waitFor, tick)

	h.c.Clear()
	h.snapshot(t)
	close(gate)

	assert.Never(t, func() bool {
		return len(h.snapshot(t).Estimates) > 0 ||
			h.d.slot(domain.ModeDriving).State == ports.SlotReady
	}, 100*time.Millisecond, tick)
}

func TestTrackingUpdatesStopAfterToggleOff(t *testing.T) {
	h := newHarness(t)

	h.c.TrackingToggled()
	require.Eventually(t, func() bool { return h.snapshot(t).Tracking }, waitFor, tick)
	assert.True(t, h.d.hasNotice("Live tracking enabled!"))

	h.src.push(phoenix)
	require.Eventually(t, func() bool { return h.snapshot(t).UserLocation != nil }, waitFor, tick)

	h.c.TrackingToggled()
	require.Eventually(t, func() bool { return !h.snapshot(t).Tracking }, waitFor, tick)
	assert.True(t, h.d.hasNotice("Live tracking disabled"))

	late := phoenix
	late.Lat += 1
	h.src.push(late)

	assert.Equal(t, phoenix, *h.snapshot(t).UserLocation)
}

func TestStaleTrackingGenerationIgnored(t *testing.T) {
	h := newHarness(t)

	h.c.TrackingToggled()
	h.c.TrackingToggled()
	h.c.TrackingToggled()
	require.True(t, h.snapshot(t).Tracking)

	h.c.post(func() { h.c.trackedFix(1, phoenix) })
	assert.Nil(t, h.snapshot(t).UserLocation)
}

func TestTrackingPermissionDeniedStops(t *testing.T) {
	h := newHarness(t)

	h.c.TrackingToggled()
	require.True(t, h.snapshot(t).Tracking)

	h.c.post(func() { h.c.trackingFailed(h.c.trackGen, domain.ErrPermissionDenied) })
	s := h.snapshot(t)
	assert.False(t, s.Tracking)
	assert.Equal(t, notice{ports.NotifyError, "Location permission denied."}, h.d.lastNotice())
}

func TestLocateRequested(t *testing.T) {
	h := newHarness(t)

	h.c.LocateRequested()
	require.Eventually(t, func() bool { return h.d.hasNotice("Location enabled!") }, waitFor, tick)
	assert.Equal(t, phoenix, *h.snapshot(t).UserLocation)
}

func TestLocateRequestedFailure(t *testing.T) {
	h := newHarness(t)
	h.src.mu.Lock()
	h.src.err = domain.ErrPermissionDenied
	h.src.mu.Unlock()

	h.c.LocateRequested()
	require.Eventually(t, func() bool { return h.d.hasNotice("Location permission denied.") }, waitFor, tick)
	assert.Nil(t, h.snapshot(t).UserLocation)
}

func TestLocateUnsupported(t *testing.T) {
	h := newHarness(t, func(h *harness, d *Deps) {
		d.Location = location.New(nil, 0, 0)
	})

	h.c.LocateRequested()
	require.Eventually(t, func() bool {
		return h.d.hasNotice("Geolocation is not supported by your browser.")
	}, waitFor, tick)
}

func TestRecenterAndShare(t *testing.T) {
	h := newHarness(t)

	h.c.RecenterRequested()
	h.c.ShareRequested()
	h.snapshot(t)
	assert.Equal(t, notice{ports.NotifyError, "Location not available"}, h.d.lastNotice())
	assert.Empty(t, h.d.shared)

	h.c.LocationAcquired(phoenix)
	h.c.RecenterRequested()
	h.c.ShareRequested()
	h.snapshot(t)

	view, _ := h.m.last("view")
	assert.Equal(t, 15, view.Zoom)
	assert.Equal(t, []string{"https://www.google.com/maps?q=33.4484,-112.074"}, h.d.shared)
}

func TestLayerSelected(t *testing.T) {
	h := newHarness(t)

	h.c.LayerSelected("street")
	assert.Equal(t, "street", h.snapshot(t).Layer)
	assert.Equal(t, "Map style changed to street", h.d.lastNotice().Message)

	h.c.LayerSelected("moon")
	assert.Equal(t, "street", h.snapshot(t).Layer)
	assert.Equal(t, ports.NotifyError, h.d.lastNotice().Level)
}

func TestThemeIsLoadedAndPersisted(t *testing.T) {
	h := newHarness(t, func(h *harness, d *Deps) {
		h.prefs.themes["client-1"] = domain.ThemeLight
	})
	assert.Equal(t, domain.ThemeLight, h.snapshot(t).Theme)

	h.c.ThemeToggled()
	assert.Equal(t, domain.ThemeDark, h.snapshot(t).Theme)
	require.Eventually(t, func() bool { return h.prefs.get("client-1") == domain.ThemeDark }, waitFor, tick)
}

func TestSnapshotIsACopy(t *testing.T) {
	h := newHarness(t)
	h.locateAndSearch(t)

	s := h.snapshot(t)
	delete(s.Estimates, domain.ModeFlying)
	s.UserLocation.Lat = 0

	again := h.snapshot(t)
	assert.Len(t, again.Estimates, 4)
	assert.Equal(t, phoenix, *again.UserLocation)
}

func TestShareURL(t *testing.T) {
	assert.Equal(t, "https://www.google.com/maps?q=-33.8688,151.2093",
		ShareURL(domain.Coordinate{Lat: -33.8688, Lon: 151.2093}))
}

// failTo fails one mode for routes ending at one coordinate.
type failTo struct {
	ports.RouteProvider
	mode domain.TravelMode
	to   domain.Coordinate
}

func (f failTo) Route(ctx context.Context, mode domain.TravelMode, from, to domain.Coordinate) (domain.RouteEstimate, error) {
	if mode == f.mode && to == f.to {
		return domain.RouteEstimate{}, &domain.TransportError{Op: "osrm route", Err: errors.New("502")}
	}
	return f.RouteProvider.Route(ctx, mode, from, to)
}

func TestNewDestinationClearsOldRouteWhenItsRouteFails(t *testing.T) {
	mesa := domain.Destination{
		Coordinate:  domain.Coordinate{Lat: 33.4152, Lon: -111.8315},
		DisplayName: "Mesa, Arizona",
	}
	h := newHarness(t, func(h *harness, d *Deps) {
		h.geo.Places["mesa"] = mesa
		d.Routes = failTo{RouteProvider: h.routes, mode: domain.ModeDriving, to: mesa.Coordinate}
	})

	h.locateAndSearch(t)
	require.Eventually(t, func() bool { return h.d.shownRoute() != nil }, waitFor, tick)
	drawn, ok := h.m.last("route")
	require.True(t, ok)
	require.Equal(t, tempe.Coordinate, drawn.Points[len(drawn.Points)-1])

	h.c.SearchSubmitted("mesa")
	require.Eventually(t, func() bool {
		return h.d.slot(domain.ModeDriving).State == ports.SlotUnavailable
	}, waitFor, tick)

	calls := h.m.all()
	lastRoute, lastClear := -1, -1
	for i, c := range calls {
		switch c.Op {
		case "route":
			lastRoute = i
		case "clear_route":
			lastClear = i
		}
	}
	assert.Greater(t, lastClear, lastRoute, "route to the previous destination must be removed")
	assert.Nil(t, h.d.shownRoute())
	assert.NotContains(t, h.snapshot(t).Estimates, domain.ModeDriving)
	assert.Equal(t, domain.DefaultMode, h.snapshot(t).SelectedMode)
}
