package session

import (
	"context"
	"fmt"
	"sync"

	"mappy/internal/domain"
	"mappy/internal/ports"
)

type positionResult struct {
	loc domain.UserLocation
	err error
}

type watch struct {
	onUpdate func(domain.UserLocation)
	onError  func(error)
}

// BrowserPositionSource implements ports.PositionSource by asking the
// connected browser for geolocation and waiting for its reply.
type BrowserPositionSource struct {
	send func(Outbound) error

	mu      sync.Mutex
	nextID  uint64
	pending map[uint64]chan positionResult
	watches map[uint64]watch
	closed  bool
}

func NewBrowserPositionSource(send func(Outbound) error) *BrowserPositionSource {
	return &BrowserPositionSource{
		send:    send,
		pending: make(map[uint64]chan positionResult),
		watches: make(map[uint64]watch),
	}
}

func requestFor(typ string, id uint64, opts ports.PositionOptions) Outbound {
	return Outbound{
		Type:         typ,
		ID:           id,
		HighAccuracy: opts.HighAccuracy,
		TimeoutMs:    opts.Timeout.Milliseconds(),
		MaximumAgeMs: opts.MaximumAge.Milliseconds(),
	}
}

func (s *BrowserPositionSource) CurrentPosition(
	ctx context.Context,
	opts ports.PositionOptions,
) (domain.UserLocation, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return domain.UserLocation{}, domain.ErrPositionUnavailable
	}
	s.nextID++
	id := s.nextID
	ch := make(chan positionResult, 1)
	s.pending[id] = ch
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.pending, id)
		s.mu.Unlock()
	}()

	if err := s.send(requestFor(TypeGeolocate, id, opts)); err != nil {
		return domain.UserLocation{}, fmt.Errorf("%w: %v", domain.ErrPositionUnavailable, err)
	}

	select {
	case res := <-ch:
		return res.loc, res.err
	case <-ctx.Done():
		return domain.UserLocation{}, ctx.Err()
	}
}

func (s *BrowserPositionSource) Watch(
	opts ports.PositionOptions,
	onUpdate func(domain.UserLocation),
	onError func(error),
) func() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		onError(domain.ErrPositionUnavailable)
		return func() {}
	}
	s.nextID++
	id := s.nextID
	s.watches[id] = watch{onUpdate: onUpdate, onError: onError}
	s.mu.Unlock()

	if err := s.send(requestFor(TypeWatchStart, id, opts)); err != nil {
		onError(fmt.Errorf("%w: %v", domain.ErrPositionUnavailable, err))
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			_, active := s.watches[id]
			delete(s.watches, id)
			s.mu.Unlock()
			if active {
				_ = s.send(Outbound{Type: TypeWatchStop, ID: id})
			}
		})
	}
}

// Deliver routes a position or position_error message to the request it
// answers. It reports false when no request is waiting for msg.ID.
func (s *BrowserPositionSource) Deliver(msg Inbound) bool {
	var (
		loc domain.UserLocation
		err error
	)
	switch msg.Type {
	case TypePosition:
		if msg.Position == nil {
			err = fmt.Errorf("%w: empty position report", domain.ErrPositionUnavailable)
		} else {
			loc = msg.Position.ToDomain()
		}
	case TypePositionError:
		err = errorForCode(msg.Code, msg.Message)
	default:
		return false
	}

	s.mu.Lock()
	ch, isPending := s.pending[msg.ID]
	if isPending {
		delete(s.pending, msg.ID)
	}
	w, isWatch := s.watches[msg.ID]
	s.mu.Unlock()

	switch {
	case isPending:
		ch <- positionResult{loc: loc, err: err}
		return true
	case isWatch && err != nil:
		w.onError(err)
		return true
	case isWatch:
		w.onUpdate(loc)
		return true
	default:
		return false
	}
}

// Close fails outstanding requests and forgets every watch.
func (s *BrowserPositionSource) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	for id, ch := range s.pending {
		ch <- positionResult{err: domain.ErrPositionUnavailable}
		delete(s.pending, id)
	}
	clear(s.watches)
}

func errorForCode(code int, message string) error {
	var base error
	switch code {
	case CodeUnsupported:
		base = domain.ErrGeolocationUnsupported
	case CodePermissionDenied:
		base = domain.ErrPermissionDenied
	case CodeTimeout:
		base = domain.ErrLocationTimeout
	default:
		base = domain.ErrPositionUnavailable
	}
	if message == "" {
		return base
	}
	return fmt.Errorf("%w: %s", base, message)
}
