// Package controller runs one map session: it reacts to UI events and
// location updates, drives geocoding and routing, and keeps the map and
// info panel in step with the session state.
package controller

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"mappy/internal/domain"
	"mappy/internal/location"
	"mappy/internal/ports"
)

const (
	firstFixZoom  = 13
	recenterZoom  = 15
	defaultZoom   = 2
	fitPaddingPx  = 100
	eventQueueLen = 64
	prefsTimeout  = 5 * time.Second
)

// DefaultCenter is shown before the first location fix and after Clear
// when no location is known.
var DefaultCenter = domain.Coordinate{Lat: 20, Lon: 0}

// Deps are the collaborators of a controller. Reverse and Prefs may be nil.
type Deps struct {
	Geocoder ports.Geocoder
	Reverse  ports.ReverseGeocoder
	Routes   ports.RouteProvider
	Location *location.Provider
	Map      ports.MapView
	Display  ports.Display
	Prefs    ports.PreferenceStore
	Logger   *zap.Logger
}

type Options struct {
	ClientID       string
	DefaultLayer   string
	FlyingSpeedKmh float64
}

// Controller serialises every event of a session onto one goroutine.
// Handlers run to completion there; I/O runs on other goroutines and posts
// its result back as a new event.
type Controller struct {
	deps Deps
	opts Options
	log  *zap.Logger

	events chan func()
	done   chan struct{}
	wg     sync.WaitGroup

	// Owned by the loop goroutine.
	ctx            context.Context
	s              Session
	routeGen       uint64
	searchSeq      uint64
	trackGen       uint64
	centered       bool
	reverseRunning bool
}

func New(deps Deps, opts Options) *Controller {
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}
	if opts.DefaultLayer == "" {
		opts.DefaultLayer = domain.DefaultLayerID
	}
	return &Controller{
		deps:   deps,
		opts:   opts,
		log:    log,
		events: make(chan func(), eventQueueLen),
		done:   make(chan struct{}),
		s:      newSession(domain.DefaultTheme, opts.DefaultLayer),
	}
}

// Run draws the initial map and processes events until ctx is cancelled.
// It stops tracking and waits for outstanding I/O before returning.
func (c *Controller) Run(ctx context.Context) error {
	c.ctx = ctx
	c.start()

	for {
		select {
		case <-ctx.Done():
			c.shutdown()
			return nil
		case fn := <-c.events:
			fn()
		}
	}
}

func (c *Controller) start() {
	if c.deps.Prefs != nil && c.opts.ClientID != "" {
		ctx, cancel := context.WithTimeout(c.ctx, prefsTimeout)
		theme, ok, err := c.deps.Prefs.Theme(ctx, c.opts.ClientID)
		cancel()
		switch {
		case err != nil:
			c.log.Warn("load theme preference", zap.Error(err))
		case ok:
			c.s.Theme = theme
		}
	}
	c.deps.Display.SetTheme(c.s.Theme)

	if err := c.deps.Map.SetTileLayer(c.s.Layer); err != nil {
		c.log.Warn("default tile layer", zap.String("layer", c.s.Layer), zap.Error(err))
	}
	c.deps.Map.SetView(DefaultCenter, defaultZoom)
	c.resetSlots()
}

func (c *Controller) shutdown() {
	if c.s.Tracking {
		c.deps.Location.StopTracking()
		c.s.Tracking = false
	}
	close(c.done)
	c.wg.Wait()
}

// post queues fn for the loop. It blocks while the queue is full and gives
// up once the controller has stopped.
func (c *Controller) post(fn func()) {
	select {
	case c.events <- fn:
	case <-c.done:
	}
}

// tryPost queues fn unless the queue is full. Used for tracking fixes,
// where a newer fix supersedes a dropped one.
func (c *Controller) tryPost(fn func()) {
	select {
	case c.events <- fn:
	default:
		c.log.Debug("event queue full, dropping tracking event")
	}
}

// async runs work off the loop and posts its completion back.
func (c *Controller) async(work func(ctx context.Context) func()) {
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		complete := work(c.ctx)
		if complete != nil {
			c.post(complete)
		}
	}()
}

// Snapshot returns a copy of the session state.
func (c *Controller) Snapshot(ctx context.Context) (Session, error) {
	out := make(chan Session, 1)
	select {
	case c.events <- func() { out <- c.s.clone() }:
	case <-c.done:
		return Session{}, errors.New("controller stopped")
	case <-ctx.Done():
		return Session{}, ctx.Err()
	}

	select {
	case s := <-out:
		return s, nil
	case <-c.done:
		return Session{}, errors.New("controller stopped")
	case <-ctx.Done():
		return Session{}, ctx.Err()
	}
}
