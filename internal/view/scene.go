// Package view keeps the table of elements drawn on the browser map and
// turns ports.MapView calls into drawing commands.
package view

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"mappy/internal/domain"
	"mappy/internal/geomath"
)

var ErrUnknownLayer = errors.New("unknown tile layer")

type Op string

const (
	OpAdd       Op = "add"
	OpRemove    Op = "remove"
	OpSetView   Op = "set_view"
	OpFitBounds Op = "fit_bounds"
)

type Element string

const (
	ElementUserMarker        Element = "user_marker"
	ElementAccuracyRing      Element = "accuracy_ring"
	ElementDestinationMarker Element = "destination_marker"
	ElementRoute             Element = "route"
	ElementTileLayer         Element = "tile_layer"
)

// LatLng is a [lat, lon] pair, the order map widgets expect.
type LatLng [2]float64

func toLatLng(c domain.Coordinate) LatLng { return LatLng{c.Lat, c.Lon} }

// Command is one drawing instruction for the map widget.
type Command struct {
	Op      Op                `json:"op"`
	Element Element           `json:"element,omitempty"`
	Points  []LatLng          `json:"points,omitempty"`
	Radius  float64           `json:"radius,omitempty"`
	Label   string            `json:"label,omitempty"`
	Zoom    int               `json:"zoom,omitempty"`
	Padding int               `json:"padding,omitempty"`
	Layer   *domain.TileLayer `json:"layer,omitempty"`
}

// Sink receives commands in the order they must be applied.
type Sink interface {
	Emit(cmd Command)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(Command)

func (f SinkFunc) Emit(cmd Command) { f(cmd) }

// Scene implements ports.MapView. Each element is held at most once: a
// replacement removes the old element before adding the new one, and a call
// that would redraw an element unchanged emits nothing. View changes are
// always emitted since the user may have moved the map in between.
type Scene struct {
	sink   Sink
	layers []domain.TileLayer

	mu       sync.Mutex
	elements map[Element]Command
}

// NewScene returns a scene drawing onto sink with the given layer catalogue.
func NewScene(sink Sink, layers []domain.TileLayer) *Scene {
	return &Scene{
		sink:     sink,
		layers:   layers,
		elements: make(map[Element]Command),
	}
}

func (s *Scene) SetUserMarker(c domain.Coordinate) {
	s.put(Command{Op: OpAdd, Element: ElementUserMarker, Points: []LatLng{toLatLng(c)}})
}

func (s *Scene) SetAccuracyRing(c domain.Coordinate, radiusMeters float64) {
	s.put(Command{Op: OpAdd, Element: ElementAccuracyRing, Points: []LatLng{toLatLng(c)}, Radius: radiusMeters})
}

func (s *Scene) SetDestinationMarker(c domain.Coordinate, label string) {
	s.put(Command{Op: OpAdd, Element: ElementDestinationMarker, Points: []LatLng{toLatLng(c)}, Label: label})
}

func (s *Scene) ClearDestinationMarker() { s.remove(ElementDestinationMarker) }

func (s *Scene) DrawRoute(path []domain.Coordinate) {
	if len(path) < 2 {
		s.remove(ElementRoute)
		return
	}
	pts := make([]LatLng, len(path))
	for i, c := range path {
		pts[i] = toLatLng(c)
	}
	s.put(Command{Op: OpAdd, Element: ElementRoute, Points: pts})
}

func (s *Scene) ClearRoute() { s.remove(ElementRoute) }

// FitBounds frames the bounding box of points. It does nothing for an empty set.
func (s *Scene) FitBounds(points []domain.Coordinate, paddingPx int) {
	if len(points) == 0 {
		return
	}
	b := geomath.Bound(points...)
	s.sink.Emit(Command{
		Op: OpFitBounds,
		Points: []LatLng{
			{b.Min.Lat(), b.Min.Lon()},
			{b.Max.Lat(), b.Max.Lon()},
		},
		Padding: paddingPx,
	})
}

func (s *Scene) SetView(center domain.Coordinate, zoom int) {
	s.sink.Emit(Command{Op: OpSetView, Points: []LatLng{toLatLng(center)}, Zoom: zoom})
}

func (s *Scene) SetTileLayer(layerID string) error {
	idx := slices.IndexFunc(s.layers, func(l domain.TileLayer) bool { return l.ID == layerID })
	if idx < 0 {
		return fmt.Errorf("%w: %q", ErrUnknownLayer, layerID)
	}
	layer := s.layers[idx]
	s.put(Command{Op: OpAdd, Element: ElementTileLayer, Layer: &layer, Label: layer.ID})
	return nil
}

// Element returns the current command for e, if drawn.
func (s *Scene) Element(e Element) (Command, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cmd, ok := s.elements[e]
	return cmd, ok
}

// Redraw re-emits every drawn element, for a sink that lost its state.
func (s *Scene) Redraw() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range drawOrder {
		if cmd, ok := s.elements[e]; ok {
			s.sink.Emit(cmd)
		}
	}
}

var drawOrder = []Element{
	ElementTileLayer,
	ElementAccuracyRing,
	ElementRoute,
	ElementUserMarker,
	ElementDestinationMarker,
}

func (s *Scene) put(cmd Command) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if old, ok := s.elements[cmd.Element]; ok {
		if sameCommand(old, cmd) {
			return
		}
		s.sink.Emit(Command{Op: OpRemove, Element: cmd.Element})
	}
	s.elements[cmd.Element] = cmd
	s.sink.Emit(cmd)
}

func (s *Scene) remove(e Element) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.elements[e]; !ok {
		return
	}
	delete(s.elements, e)
	s.sink.Emit(Command{Op: OpRemove, Element: e})
}

func sameCommand(a, b Command) bool {
	if a.Op != b.Op || a.Element != b.Element || a.Radius != b.Radius ||
		a.Label != b.Label || a.Zoom != b.Zoom || a.Padding != b.Padding {
		return false
	}
	if (a.Layer == nil) != (b.Layer == nil) || (a.Layer != nil && *a.Layer != *b.Layer) {
		return false
	}
	return slices.Equal(a.Points, b.Points)
}
