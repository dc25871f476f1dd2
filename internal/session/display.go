package session

import (
	"go.uber.org/zap"

	"mappy/internal/api/dto"
	"mappy/internal/domain"
	"mappy/internal/ports"
	"mappy/internal/view"
)

// Display implements ports.Display and view.Sink by writing messages to the
// browser. Write failures are logged; the read loop notices a dead socket.
type Display struct {
	send func(Outbound) error
	log  *zap.Logger
}

func NewDisplay(send func(Outbound) error, log *zap.Logger) *Display {
	return &Display{send: send, log: log}
}

func (d *Display) write(msg Outbound) {
	if err := d.send(msg); err != nil {
		d.log.Debug("session write failed", zap.String("type", msg.Type), zap.Error(err))
	}
}

func (d *Display) Emit(cmd view.Command) {
	d.write(Outbound{Type: TypeMap, Command: &cmd})
}

func (d *Display) Notify(level ports.NotifyLevel, message string) {
	d.write(Outbound{Type: TypeNotify, Level: string(level), Message: message})
}

func (d *Display) SetModeSlot(mode domain.TravelMode, slot ports.ModeSlot) {
	d.write(Outbound{
		Type: TypeSlot,
		Mode: string(mode),
		Slot: &Slot{State: string(slot.State), Text: slot.Text},
	})
}

func (d *Display) ShowLocation(loc domain.UserLocation, placeName string) {
	l := dto.FromUserLocation(loc, placeName)
	d.write(Outbound{Type: TypeLocation, Location: &l})
}

func (d *Display) ShowDestination(dest domain.Destination) {
	l := dto.FromDestination(dest)
	d.write(Outbound{Type: TypeDestination, Destination: &l})
}

func (d *Display) HideDestination() {
	d.write(Outbound{Type: TypeDestination})
}

func (d *Display) ShowRoute(est domain.RouteEstimate) {
	r := dto.FromEstimate(est)
	d.write(Outbound{Type: TypeRoute, Mode: string(est.Mode), Route: &r})
}

// HideRoute sends a route message without a route.
func (d *Display) HideRoute() {
	d.write(Outbound{Type: TypeRoute})
}

func (d *Display) SetTracking(enabled bool) {
	d.write(Outbound{Type: TypeTrackingOut, Enabled: &enabled})
}

func (d *Display) SetTheme(theme domain.Theme) {
	d.write(Outbound{Type: TypeThemeOut, Theme: string(theme)})
}

func (d *Display) Share(url string) {
	d.write(Outbound{Type: TypeShareOut, URL: url})
}
