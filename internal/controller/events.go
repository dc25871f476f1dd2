package controller

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"mappy/internal/domain"
	"mappy/internal/location"
	"mappy/internal/ports"
)

// LocationAcquired applies a fix from any source other than tracking.
func (c *Controller) LocationAcquired(loc domain.UserLocation) {
	c.post(func() { c.applyLocation(loc) })
}

// LocateRequested asks the location provider for a single fix.
func (c *Controller) LocateRequested() {
	c.post(c.locate)
}

func (c *Controller) SearchSubmitted(text string) {
	c.post(func() { c.search(text) })
}

func (c *Controller) ModeSelected(mode domain.TravelMode) {
	c.post(func() { c.selectMode(mode) })
}

func (c *Controller) TrackingToggled() {
	c.post(c.toggleTracking)
}

func (c *Controller) LayerSelected(id string) {
	c.post(func() { c.selectLayer(id) })
}

func (c *Controller) Clear() {
	c.post(c.clear)
}

func (c *Controller) RecenterRequested() {
	c.post(c.recenter)
}

func (c *Controller) ShareRequested() {
	c.post(c.share)
}

func (c *Controller) ThemeToggled() {
	c.post(c.toggleTheme)
}

func (c *Controller) applyLocation(loc domain.UserLocation) {
	if err := loc.Validate(); err != nil {
		c.log.Warn("ignoring invalid location", zap.Error(err))
		return
	}
	c.s.UserLocation = &loc

	c.deps.Map.SetUserMarker(loc.Coordinate)
	c.deps.Map.SetAccuracyRing(loc.Coordinate, loc.AccuracyMeters)
	if !c.centered {
		c.deps.Map.SetView(loc.Coordinate, firstFixZoom)
		c.centered = true
	}
	c.deps.Display.ShowLocation(loc, c.s.PlaceName)
	c.reverseGeocode(loc.Coordinate)

	if c.s.Destination != nil {
		c.recomputeEstimates()
	}
}

// reverseGeocode keeps at most one lookup in flight; the place name only
// changes when the user moves between settlements.
func (c *Controller) reverseGeocode(at domain.Coordinate) {
	if c.deps.Reverse == nil || c.reverseRunning {
		return
	}
	c.reverseRunning = true

	c.async(func(ctx context.Context) func() {
		name, err := c.deps.Reverse.Reverse(ctx, at)
		return func() {
			c.reverseRunning = false
			if err != nil {
				c.log.Debug("reverse geocode failed", zap.Stringer("at", at), zap.Error(err))
				return
			}
			c.s.PlaceName = name
			if c.s.UserLocation != nil {
				c.deps.Display.ShowLocation(*c.s.UserLocation, name)
			}
		}
	})
}

func (c *Controller) locate() {
	c.async(func(ctx context.Context) func() {
		loc, err := c.deps.Location.RequestOnce(ctx)
		return func() {
			if err != nil {
				c.deps.Display.Notify(ports.NotifyError, location.Message(err))
				return
			}
			c.applyLocation(loc)
			c.deps.Display.Notify(ports.NotifySuccess, msgLocationEnabled)
		}
	})
}

func (c *Controller) search(text string) {
	query := strings.TrimSpace(text)
	if query == "" {
		c.deps.Display.Notify(ports.NotifyError, msgEmptyQuery)
		return
	}

	c.searchSeq++
	seq := c.searchSeq
	c.deps.Display.Notify(ports.NotifySuccess, msgSearching)

	c.async(func(ctx context.Context) func() {
		dest, err := c.deps.Geocoder.Search(ctx, query)
		return func() {
			if seq != c.searchSeq {
				c.log.Debug("dropping superseded search", zap.String("query", query))
				return
			}
			if err != nil {
				c.searchFailed(query, err)
				return
			}
			c.setDestination(dest)
		}
	})
}

func (c *Controller) searchFailed(query string, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		c.deps.Display.Notify(ports.NotifyError, msgNotFound)
	case errors.Is(err, domain.ErrEmptyQuery):
		c.deps.Display.Notify(ports.NotifyError, msgEmptyQuery)
	default:
		c.log.Warn("search failed", zap.String("query", query), zap.Error(err))
		c.deps.Display.Notify(ports.NotifyError, msgSearchFailed)
	}
}

func (c *Controller) setDestination(dest domain.Destination) {
	c.s.Destination = &dest

	c.deps.Map.SetDestinationMarker(dest.Coordinate, dest.DisplayName)
	if c.s.UserLocation != nil {
		c.deps.Map.FitBounds([]domain.Coordinate{c.s.UserLocation.Coordinate, dest.Coordinate}, fitPaddingPx)
	} else {
		c.deps.Map.SetView(dest.Coordinate, firstFixZoom)
	}
	c.deps.Display.ShowDestination(dest)
	c.deps.Display.Notify(ports.NotifySuccess, msgFound)

	c.recomputeEstimates()
}

func (c *Controller) selectMode(mode domain.TravelMode) {
	if !mode.IsValid() {
		c.log.Warn("ignoring unknown travel mode", zap.String("mode", string(mode)))
		return
	}
	c.s.SelectedMode = mode
	c.drawSelected()
}

func (c *Controller) toggleTracking() {
	if c.s.Tracking {
		c.stopTracking()
		c.deps.Display.Notify(ports.NotifySuccess, msgTrackingOff)
		return
	}

	c.trackGen++
	gen := c.trackGen
	err := c.deps.Location.StartTracking(
		func(loc domain.UserLocation) {
			c.tryPost(func() { c.trackedFix(gen, loc) })
		},
		func(err error) {
			c.tryPost(func() { c.trackingFailed(gen, err) })
		},
	)
	if err != nil {
		c.deps.Display.Notify(ports.NotifyError, location.Message(err))
		return
	}

	c.s.Tracking = true
	c.deps.Display.SetTracking(true)
	c.deps.Display.Notify(ports.NotifySuccess, msgTrackingOn)
}

func (c *Controller) stopTracking() {
	c.deps.Location.StopTracking()
	c.trackGen++
	c.s.Tracking = false
	c.deps.Display.SetTracking(false)
}

// trackedFix drops fixes from a tracking run that has since been stopped.
func (c *Controller) trackedFix(gen uint64, loc domain.UserLocation) {
	if !c.s.Tracking || gen != c.trackGen {
		return
	}
	c.applyLocation(loc)
}

func (c *Controller) trackingFailed(gen uint64, err error) {
	if !c.s.Tracking || gen != c.trackGen {
		return
	}
	if errors.Is(err, domain.ErrPermissionDenied) {
		c.stopTracking()
		c.deps.Display.Notify(ports.NotifyError, location.Message(err))
		return
	}
	c.log.Debug("tracking error", zap.Error(err))
}

func (c *Controller) selectLayer(id string) {
	if err := c.deps.Map.SetTileLayer(id); err != nil {
		c.deps.Display.Notify(ports.NotifyError, fmt.Sprintf(msgLayerUnknown, id))
		return
	}
	c.s.Layer = id
	c.deps.Display.Notify(ports.NotifySuccess, fmt.Sprintf(msgLayerChanged, id))
}

func (c *Controller) clear() {
	c.routeGen++
	c.searchSeq++
	c.s.Destination = nil
	c.s.Estimates = map[domain.TravelMode]domain.RouteEstimate{}

	c.deps.Map.ClearRoute()
	c.deps.Map.ClearDestinationMarker()
	c.deps.Display.HideDestination()
	c.deps.Display.HideRoute()
	c.resetSlots()

	if c.s.UserLocation != nil {
		c.deps.Map.SetView(c.s.UserLocation.Coordinate, recenterZoom)
	} else {
		c.deps.Map.SetView(DefaultCenter, defaultZoom)
	}
}

func (c *Controller) recenter() {
	if c.s.UserLocation == nil {
		c.deps.Display.Notify(ports.NotifyError, msgLocationMissing)
		return
	}
	c.deps.Map.SetView(c.s.UserLocation.Coordinate, recenterZoom)
	c.deps.Display.Notify(ports.NotifySuccess, msgCentered)
}

func (c *Controller) share() {
	if c.s.UserLocation == nil {
		c.deps.Display.Notify(ports.NotifyError, msgLocationMissing)
		return
	}
	c.deps.Display.Share(ShareURL(c.s.UserLocation.Coordinate))
}

// ShareURL links to the given position on Google Maps.
func ShareURL(at domain.Coordinate) string {
	return fmt.Sprintf(shareURLFormat,
		strconv.FormatFloat(at.Lat, 'f', -1, 64),
		strconv.FormatFloat(at.Lon, 'f', -1, 64))
}

func (c *Controller) toggleTheme() {
	c.s.Theme = c.s.Theme.Toggle()
	c.deps.Display.SetTheme(c.s.Theme)

	if c.deps.Prefs == nil || c.opts.ClientID == "" {
		return
	}
	theme := c.s.Theme
	c.async(func(ctx context.Context) func() {
		ctx, cancel := context.WithTimeout(ctx, prefsTimeout)
		defer cancel()
		if err := c.deps.Prefs.SetTheme(ctx, c.opts.ClientID, theme); err != nil {
			c.log.Warn("save theme preference", zap.Error(err))
		}
		return nil
	})
}
