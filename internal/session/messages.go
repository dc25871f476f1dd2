package session

import (
	"mappy/internal/api/dto"
	"mappy/internal/view"
)

// Browser -> server message types.
const (
	TypeLocate        = "locate"
	TypeSearch        = "search"
	TypeMode          = "mode"
	TypeTracking      = "tracking"
	TypeLayer         = "layer"
	TypeClear         = "clear"
	TypeRecenter      = "recenter"
	TypeShare         = "share"
	TypeTheme         = "theme"
	TypePosition      = "position"
	TypePositionError = "position_error"
)

// Server -> browser message types.
const (
	TypeMap         = "map"
	TypeSlot        = "slot"
	TypeNotify      = "notify"
	TypeDestination = "destination"
	TypeRoute       = "route"
	TypeLocation    = "location"
	TypeTrackingOut = "tracking"
	TypeThemeOut    = "theme"
	TypeShareOut    = "share"
	TypeGeolocate   = "geolocate"
	TypeWatchStart  = "watch_start"
	TypeWatchStop   = "watch_stop"
)

// Geolocation error codes as reported by the browser. Zero means the browser
// has no geolocation support at all.
const (
	CodeUnsupported         = 0
	CodePermissionDenied    = 1
	CodePositionUnavailable = 2
	CodeTimeout             = 3
)

// Inbound is a message from the browser. ID ties position reports to the
// geolocate or watch_start request they answer; a position with ID 0 is an
// unsolicited fix.
type Inbound struct {
	Type     string            `json:"type"`
	ID       uint64            `json:"id,omitempty"`
	Query    string            `json:"query,omitempty"`
	Mode     string            `json:"mode,omitempty"`
	Layer    string            `json:"layer,omitempty"`
	Position *dto.UserLocation `json:"position,omitempty"`
	Code     int               `json:"code,omitempty"`
	Message  string            `json:"message,omitempty"`
}

type Slot struct {
	State string `json:"state"`
	Text  string `json:"text,omitempty"`
}

// Outbound is a message to the browser. A destination message without a
// destination hides the destination panel.
type Outbound struct {
	Type         string                 `json:"type"`
	ID           uint64                 `json:"id,omitempty"`
	Command      *view.Command          `json:"command,omitempty"`
	Mode         string                 `json:"mode,omitempty"`
	Slot         *Slot                  `json:"slot,omitempty"`
	Level        string                 `json:"level,omitempty"`
	Message      string                 `json:"message,omitempty"`
	Destination  *dto.LocationResponse  `json:"destination,omitempty"`
	Route        *dto.RouteResponseBody `json:"route,omitempty"`
	Location     *dto.UserLocation      `json:"location,omitempty"`
	Enabled      *bool                  `json:"enabled,omitempty"`
	Theme        string                 `json:"theme,omitempty"`
	URL          string                 `json:"url,omitempty"`
	HighAccuracy bool                   `json:"high_accuracy,omitempty"`
	TimeoutMs    int64                  `json:"timeout_ms,omitempty"`
	MaximumAgeMs int64                  `json:"maximum_age_ms,omitempty"`
}
