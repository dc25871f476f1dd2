package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"mappy/internal/domain"
	"mappy/internal/geomath"
	"mappy/internal/ports"
	"mappy/internal/view"
)

// terminal is a ports.Display that prints to w. settled is closed once every
// mode slot has a final answer; failed is closed when an error arrives before
// any destination was found.
type terminal struct {
	w       io.Writer
	verbose bool

	mu      sync.Mutex
	slots   map[domain.TravelMode]ports.ModeSlot
	settled chan struct{}
	closed  bool

	destShown bool
	failed    chan struct{}
	failure   string
}

func newTerminal(w io.Writer, verbose bool) *terminal {
	return &terminal{
		w:       w,
		verbose: verbose,
		slots:   map[domain.TravelMode]ports.ModeSlot{},
		settled: make(chan struct{}),
		failed:  make(chan struct{}),
	}
}

func (t *terminal) printf(format string, args ...any) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintf(t.w, format, args...)
}

// Emit prints map commands when verbose.
func (t *terminal) Emit(cmd view.Command) {
	if !t.verbose {
		return
	}
	t.printf("map: %s %s %v\n", cmd.Op, cmd.Element, cmd.Points)
}

func (t *terminal) Notify(level ports.NotifyLevel, message string) {
	t.printf("[%s] %s\n", level, message)

	t.mu.Lock()
	defer t.mu.Unlock()
	if level == ports.NotifyError && !t.destShown && t.failure == "" {
		t.failure = message
		close(t.failed)
	}
}

func (t *terminal) SetModeSlot(mode domain.TravelMode, slot ports.ModeSlot) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.slots[mode] = slot
	if t.closed {
		return
	}
	for _, m := range domain.AllModes() {
		s := t.slots[m].State
		if s != ports.SlotReady && s != ports.SlotUnavailable {
			return
		}
	}
	t.closed = true
	close(t.settled)
}

func (t *terminal) ShowLocation(loc domain.UserLocation, placeName string) {
	t.printf("you are at %s (%s, ±%.0f m)\n", geomath.FormatCoordinate(loc.Coordinate), placeName, loc.AccuracyMeters)
}

func (t *terminal) ShowDestination(dest domain.Destination) {
	t.mu.Lock()
	t.destShown = true
	t.mu.Unlock()
	t.printf("destination: %s (%s)\n", dest.DisplayName, geomath.FormatCoordinate(dest.Coordinate))
}

func (t *terminal) HideDestination() {}

func (t *terminal) HideRoute() {}

func (t *terminal) ShowRoute(est domain.RouteEstimate) {
	if t.verbose {
		t.printf("route: %s %s\n", est.Mode, geomath.FormatDistance(est.DistanceMeters))
	}
}

func (t *terminal) SetTracking(enabled bool) {}

func (t *terminal) SetTheme(theme domain.Theme) {}

func (t *terminal) Share(url string) {
	t.printf("share: %s\n", url)
}

func (t *terminal) wait(ctx context.Context) error {
	select {
	case <-t.settled:
		return nil
	case <-t.failed:
		return errors.New(t.failure)
	case <-ctx.Done():
		return ctx.Err()
	}
}

// fixedSource always reports the same position.
type fixedSource struct {
	loc domain.UserLocation
}

func (s fixedSource) CurrentPosition(ctx context.Context, _ ports.PositionOptions) (domain.UserLocation, error) {
	return s.loc, nil
}

func (s fixedSource) Watch(_ ports.PositionOptions, onUpdate func(domain.UserLocation), _ func(error)) func() {
	go onUpdate(s.loc)
	return func() {}
}
