package view

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mappy/internal/domain"
)

type recorder struct{ cmds []Command }

func (r *recorder) Emit(cmd Command) { r.cmds = append(r.cmds, cmd) }

func (r *recorder) ops() []string {
	out := make([]string, len(r.cmds))
	for i, c := range r.cmds {
		out[i] = string(c.Op) + ":" + string(c.Element)
	}
	return out
}

var (
	home = domain.Coordinate{Lat: 33.4484, Lon: -112.074}
	work = domain.Coordinate{Lat: 33.4255, Lon: -111.94}
)

func newScene() (*Scene, *recorder) {
	rec := &recorder{}
	return NewScene(rec, domain.DefaultTileLayers()), rec
}

func TestReplaceRemovesBeforeAdding(t *testing.T) {
	s, rec := newScene()

	s.SetUserMarker(home)
	s.SetUserMarker(work)

	assert.Equal(t, []string{
		"add:user_marker",
		"remove:user_marker",
		"add:user_marker",
	}, rec.ops())

	cmd, ok := s.Element(ElementUserMarker)
	require.True(t, ok)
	assert.Equal(t, []LatLng{{work.Lat, work.Lon}}, cmd.Points)
}

func TestIdenticalCallsAreNoops(t *testing.T) {
	s, rec := newScene()

	s.SetAccuracyRing(home, 25)
	s.SetAccuracyRing(home, 25)
	s.SetDestinationMarker(work, "Tempe")
	s.SetDestinationMarker(work, "Tempe")
	s.DrawRoute([]domain.Coordinate{home, work})
	s.DrawRoute([]domain.Coordinate{home, work})
	require.NoError(t, s.SetTileLayer("street"))
	require.NoError(t, s.SetTileLayer("street"))

	assert.Equal(t, []string{
		"add:accuracy_ring",
		"add:destination_marker",
		"add:route",
		"add:tile_layer",
	}, rec.ops())

	s.SetAccuracyRing(home, 30)
	assert.Equal(t, "add:accuracy_ring", rec.ops()[len(rec.ops())-1])
}

func TestClearIsIdempotent(t *testing.T) {
	s, rec := newScene()

	s.ClearRoute()
	s.ClearDestinationMarker()
	assert.Empty(t, rec.cmds)

	s.DrawRoute([]domain.Coordinate{home, work})
	s.ClearRoute()
	s.ClearRoute()
	assert.Equal(t, []string{"add:route", "remove:route"}, rec.ops())

	_, ok := s.Element(ElementRoute)
	assert.False(t, ok)
}

func TestDrawRouteWithTooFewPointsClears(t *testing.T) {
	s, rec := newScene()

	s.DrawRoute([]domain.Coordinate{home, work})
	s.DrawRoute([]domain.Coordinate{home})
	assert.Equal(t, []string{"add:route", "remove:route"}, rec.ops())
}

func TestSetTileLayer(t *testing.T) {
	s, rec := newScene()

	require.NoError(t, s.SetTileLayer("dark"))
	require.NoError(t, s.SetTileLayer("satellite"))
	assert.ErrorIs(t, s.SetTileLayer("moon"), ErrUnknownLayer)

	assert.Equal(t, []string{"add:tile_layer", "remove:tile_layer", "add:tile_layer"}, rec.ops())
	assert.Equal(t, "satellite", rec.cmds[2].Layer.ID)
}

func TestFitBoundsAndSetView(t *testing.T) {
	s, rec := newScene()

	s.FitBounds(nil, 100)
	assert.Empty(t, rec.cmds)

	s.FitBounds([]domain.Coordinate{home, work}, 100)
	s.SetView(home, 15)
	s.SetView(home, 15)

	require.Len(t, rec.cmds, 3)
	fit := rec.cmds[0]
	assert.Equal(t, OpFitBounds, fit.Op)
	assert.Equal(t, 100, fit.Padding)
	assert.Equal(t, []LatLng{{work.Lat, home.Lon}, {home.Lat, work.Lon}}, fit.Points)
	assert.Equal(t, Command{Op: OpSetView, Points: []LatLng{{home.Lat, home.Lon}}, Zoom: 15}, rec.cmds[1])
}

func TestRedraw(t *testing.T) {
	s, rec := newScene()
	require.NoError(t, s.SetTileLayer("dark"))
	s.SetUserMarker(home)
	rec.cmds = nil

	s.Redraw()
	assert.Equal(t, []string{"add:tile_layer", "add:user_marker"}, rec.ops())
}
