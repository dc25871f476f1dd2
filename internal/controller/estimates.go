package controller

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"mappy/internal/domain"
	"mappy/internal/geomath"
	"mappy/internal/ports"
	"mappy/internal/services"
)

// recomputeEstimates replaces every estimate for the current endpoints.
// Flying is filled in at once; each road mode is fetched concurrently and
// fills its own slot when it lands. Results from an older generation are
// discarded.
func (c *Controller) recomputeEstimates() {
	if c.s.UserLocation == nil || c.s.Destination == nil {
		return
	}

	c.routeGen++
	gen := c.routeGen
	from := c.s.UserLocation.Coordinate
	to := c.s.Destination.Coordinate

	c.s.Estimates = map[domain.TravelMode]domain.RouteEstimate{}
	// The drawn route belongs to the old endpoints until the new one lands.
	c.deps.Map.ClearRoute()
	c.deps.Display.HideRoute()

	for _, mode := range domain.RoadModes() {
		c.deps.Display.SetModeSlot(mode, ports.ModeSlot{State: ports.SlotPending, Text: msgSlotPending})
		c.fetchRoute(gen, mode, from, to)
	}

	c.routeReady(services.EstimateFlying(from, to, c.opts.FlyingSpeedKmh))
}

func (c *Controller) fetchRoute(gen uint64, mode domain.TravelMode, from, to domain.Coordinate) {
	c.async(func(ctx context.Context) func() {
		est, err := c.deps.Routes.Route(ctx, mode, from, to)
		return func() {
			if gen != c.routeGen {
				return
			}
			if err != nil {
				c.routeFailed(mode, err)
				return
			}
			est.Mode = mode
			c.routeReady(est)
		}
	})
}

func (c *Controller) routeReady(est domain.RouteEstimate) {
	c.s.Estimates[est.Mode] = est
	c.deps.Display.SetModeSlot(est.Mode, ports.ModeSlot{
		State: ports.SlotReady,
		Text:  geomath.FormatDuration(est.DurationSeconds),
	})
	if est.Mode == c.s.SelectedMode {
		c.drawSelected()
	}
}

func (c *Controller) routeFailed(mode domain.TravelMode, err error) {
	c.log.Info("route unavailable", zap.String("mode", string(mode)), zap.Error(err))
	c.deps.Display.SetModeSlot(mode, ports.ModeSlot{State: ports.SlotUnavailable, Text: msgSlotUnavailable})
	if mode == c.s.SelectedMode {
		c.deps.Display.Notify(ports.NotifyError, fmt.Sprintf(msgRouteUnavailable, modeTitle(mode)))
	}
}

// drawSelected draws the selected mode's route if both endpoints and its
// estimate are known. A straight-line estimate is drawn between the endpoints.
func (c *Controller) drawSelected() {
	if c.s.UserLocation == nil || c.s.Destination == nil {
		return
	}
	est, ok := c.s.Estimates[c.s.SelectedMode]
	if !ok {
		return
	}

	path := est.Path
	if est.IsStraightLine() {
		path = []domain.Coordinate{c.s.UserLocation.Coordinate, c.s.Destination.Coordinate}
	}
	c.deps.Map.DrawRoute(path)
	c.deps.Display.ShowRoute(est)
}

func (c *Controller) resetSlots() {
	for _, mode := range domain.AllModes() {
		c.deps.Display.SetModeSlot(mode, ports.ModeSlot{State: ports.SlotEmpty})
	}
}

func modeTitle(m domain.TravelMode) string {
	s := string(m)
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
