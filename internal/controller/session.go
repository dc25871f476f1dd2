package controller

import (
	"maps"

	"mappy/internal/domain"
)

// Session is the state of one map session. It is owned by the controller
// loop; callers only ever see copies taken by Snapshot.
type Session struct {
	UserLocation *domain.UserLocation
	PlaceName    string
	Destination  *domain.Destination
	SelectedMode domain.TravelMode
	Estimates    map[domain.TravelMode]domain.RouteEstimate
	Tracking     bool
	Theme        domain.Theme
	Layer        string
}

func newSession(theme domain.Theme, layer string) Session {
	return Session{
		SelectedMode: domain.DefaultMode,
		Estimates:    map[domain.TravelMode]domain.RouteEstimate{},
		Theme:        theme,
		Layer:        layer,
	}
}

func (s Session) clone() Session {
	out := s
	if s.UserLocation != nil {
		loc := *s.UserLocation
		out.UserLocation = &loc
	}
	if s.Destination != nil {
		d := *s.Destination
		out.Destination = &d
	}
	out.Estimates = maps.Clone(s.Estimates)
	if out.Estimates == nil {
		out.Estimates = map[domain.TravelMode]domain.RouteEstimate{}
	}
	return out
}
