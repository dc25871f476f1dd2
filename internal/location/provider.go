// Package location turns a ports.PositionSource into the one-shot and
// tracking lookups used by a map session.
package location

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"mappy/internal/domain"
	"mappy/internal/ports"
)

const (
	DefaultLocateTimeout   = 10 * time.Second
	DefaultTrackingTimeout = 5 * time.Second
)

type State int

const (
	StateIdle State = iota
	StateRequesting
	StateAvailable
	StateUnavailable
	StateTracking
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRequesting:
		return "requesting"
	case StateAvailable:
		return "available"
	case StateUnavailable:
		return "unavailable"
	case StateTracking:
		return "tracking"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Provider is safe for concurrent use.
//
// Tracking callbacks are delivered one at a time while holding an internal
// lock, so once StopTracking returns no callback is running or will run.
// Callbacks must not block and must not call back into the Provider.
type Provider struct {
	source          ports.PositionSource
	locateTimeout   time.Duration
	trackingTimeout time.Duration

	mu    sync.Mutex
	state State
	gen   uint64
	stop  func()

	deliver sync.Mutex
}

// New returns a provider over source. A nil source reports
// domain.ErrGeolocationUnsupported for every request.
func New(source ports.PositionSource, locateTimeout, trackingTimeout time.Duration) *Provider {
	if locateTimeout <= 0 {
		locateTimeout = DefaultLocateTimeout
	}
	if trackingTimeout <= 0 {
		trackingTimeout = DefaultTrackingTimeout
	}
	return &Provider{
		source:          source,
		locateTimeout:   locateTimeout,
		trackingTimeout: trackingTimeout,
	}
}

func (p *Provider) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

func (p *Provider) Tracking() bool {
	return p.State() == StateTracking
}

// RequestOnce asks for a single high-accuracy fix that is no older than the request.
func (p *Provider) RequestOnce(ctx context.Context) (domain.UserLocation, error) {
	if p.source == nil {
		return domain.UserLocation{}, domain.ErrGeolocationUnsupported
	}

	p.transition(StateRequesting)

	ctx, cancel := context.WithTimeout(ctx, p.locateTimeout)
	defer cancel()

	loc, err := p.source.CurrentPosition(ctx, ports.PositionOptions{
		HighAccuracy: true,
		Timeout:      p.locateTimeout,
		MaximumAge:   0,
	})
	if err == nil {
		err = loc.Validate()
	}
	if err != nil {
		p.transition(StateUnavailable)
		return domain.UserLocation{}, Classify(err)
	}

	p.transition(StateAvailable)
	return loc, nil
}

// transition moves to s unless tracking is active; tracking owns the state
// until it is stopped.
func (p *Provider) transition(s State) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state != StateTracking {
		p.state = s
	}
}

// StartTracking begins continuous updates. Each update fully replaces the
// previous location. Calling it while already tracking is a no-op.
func (p *Provider) StartTracking(onUpdate func(domain.UserLocation), onError func(error)) error {
	if p.source == nil {
		return domain.ErrGeolocationUnsupported
	}

	p.mu.Lock()
	if p.state == StateTracking {
		p.mu.Unlock()
		return nil
	}
	p.gen++
	gen := p.gen
	p.state = StateTracking
	p.mu.Unlock()

	opts := ports.PositionOptions{
		HighAccuracy: true,
		Timeout:      p.trackingTimeout,
		MaximumAge:   0,
	}
	stop := p.source.Watch(opts,
		func(loc domain.UserLocation) {
			if err := loc.Validate(); err != nil {
				p.deliverIfCurrent(gen, func() { onError(Classify(err)) })
				return
			}
			p.deliverIfCurrent(gen, func() { onUpdate(loc) })
		},
		func(err error) {
			p.deliverIfCurrent(gen, func() { onError(Classify(err)) })
		},
	)

	p.mu.Lock()
	if p.gen == gen {
		p.stop = stop
		p.mu.Unlock()
		return nil
	}
	// StopTracking ran while Watch was starting.
	p.mu.Unlock()
	stop()
	return nil
}

func (p *Provider) deliverIfCurrent(gen uint64, fn func()) {
	p.deliver.Lock()
	defer p.deliver.Unlock()

	p.mu.Lock()
	current := p.gen == gen && p.state == StateTracking
	p.mu.Unlock()

	if current {
		fn()
	}
}

// StopTracking ends tracking. It is idempotent; after it returns no
// tracking callback is invoked.
func (p *Provider) StopTracking() {
	p.mu.Lock()
	if p.state != StateTracking {
		p.mu.Unlock()
		return
	}
	p.gen++
	p.state = StateIdle
	stop := p.stop
	p.stop = nil
	p.mu.Unlock()

	if stop != nil {
		stop()
	}

	// Wait out a callback that passed the generation check before we bumped it.
	p.deliver.Lock()
	p.deliver.Unlock()
}

// Classify maps a position source failure onto the geolocation error taxonomy.
func Classify(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, domain.ErrPermissionDenied),
		errors.Is(err, domain.ErrPositionUnavailable),
		errors.Is(err, domain.ErrLocationTimeout),
		errors.Is(err, domain.ErrGeolocationUnsupported):
		return err
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: %v", domain.ErrLocationTimeout, err)
	default:
		return fmt.Errorf("%w: %v", domain.ErrPositionUnavailable, err)
	}
}

// Message is the user-visible text for a geolocation failure.
func Message(err error) string {
	switch {
	case errors.Is(err, domain.ErrPermissionDenied):
		return "Location permission denied."
	case errors.Is(err, domain.ErrLocationTimeout):
		return "Location request timed out."
	case errors.Is(err, domain.ErrGeolocationUnsupported):
		return "Geolocation is not supported by your browser."
	default:
		return "Location unavailable."
	}
}
