// Package session connects a browser over a websocket to a server-side
// map controller. The browser renders and reports geolocation; every
// decision is made by the controller.
package session

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"mappy/internal/controller"
	"mappy/internal/domain"
	"mappy/internal/location"
	"mappy/internal/platform/metrics"
	"mappy/internal/ports"
	"mappy/internal/view"
)

type Config struct {
	LocateTimeout   time.Duration
	TrackingTimeout time.Duration
	FlyingSpeedKmh  float64
	Layers          []domain.TileLayer
	DefaultLayer    string
}

// Handler upgrades requests to websocket sessions, one controller each.
type Handler struct {
	Geocoder ports.Geocoder
	Reverse  ports.ReverseGeocoder
	Routes   ports.RouteProvider
	Prefs    ports.PreferenceStore
	Config   Config
	// ClientID identifies the browser for stored preferences. May be nil.
	ClientID func(r *http.Request) string
	Logger   *zap.Logger

	Upgrader websocket.Upgrader
}

func (h *Handler) logger() *zap.Logger {
	if h.Logger == nil {
		return zap.L()
	}
	return h.Logger
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ws, err := h.Upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger().Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	var clientID string
	if h.ClientID != nil {
		clientID = h.ClientID(r)
	}
	log := h.logger().With(
		zap.String("session_id", uuid.NewString()),
		zap.String("client_id", clientID),
	)

	metrics.ActiveSessions.Inc()
	defer metrics.ActiveSessions.Dec()

	log.Info("session started")
	h.serve(r.Context(), newConn(ws), clientID, log)
	log.Info("session ended")
}

func (h *Handler) serve(parent context.Context, c *conn, clientID string, log *zap.Logger) {
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	source := NewBrowserPositionSource(c.send)
	display := NewDisplay(c.send, log)
	scene := view.NewScene(display, h.Config.Layers)

	ctl := controller.New(controller.Deps{
		Geocoder: h.Geocoder,
		Reverse:  h.Reverse,
		Routes:   h.Routes,
		Location: location.New(source, h.Config.LocateTimeout, h.Config.TrackingTimeout),
		Map:      scene,
		Display:  display,
		Prefs:    h.Prefs,
		Logger:   log,
	}, controller.Options{
		ClientID:       clientID,
		DefaultLayer:   h.Config.DefaultLayer,
		FlyingSpeedKmh: h.Config.FlyingSpeedKmh,
	})

	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		if err := ctl.Run(ctx); err != nil {
			log.Error("controller stopped", zap.Error(err))
		}
	}()
	go keepAlive(ctx, c)

	h.readLoop(c, ctl, source, log)

	cancel()
	source.Close()
	<-stopped
	_ = c.close()
}

func keepAlive(ctx context.Context, c *conn) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := c.ping(); err != nil {
				return
			}
		}
	}
}

func (h *Handler) readLoop(c *conn, ctl *controller.Controller, source *BrowserPositionSource, log *zap.Logger) {
	_ = c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var msg Inbound
		if err := c.ws.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Warn("websocket read failed", zap.Error(err))
			}
			return
		}
		_ = c.ws.SetReadDeadline(time.Now().Add(pongWait))
		dispatch(msg, ctl, source, log)
	}
}

func dispatch(msg Inbound, ctl *controller.Controller, source *BrowserPositionSource, log *zap.Logger) {
	switch msg.Type {
	case TypeLocate:
		ctl.LocateRequested()
	case TypeSearch:
		ctl.SearchSubmitted(msg.Query)
	case TypeMode:
		mode, err := domain.ParseTravelMode(msg.Mode)
		if err != nil {
			log.Debug("ignoring mode message", zap.Error(err))
			return
		}
		ctl.ModeSelected(mode)
	case TypeTracking:
		ctl.TrackingToggled()
	case TypeLayer:
		ctl.LayerSelected(msg.Layer)
	case TypeClear:
		ctl.Clear()
	case TypeRecenter:
		ctl.RecenterRequested()
	case TypeShare:
		ctl.ShareRequested()
	case TypeTheme:
		ctl.ThemeToggled()
	case TypePosition, TypePositionError:
		if source.Deliver(msg) {
			return
		}
		if msg.Type == TypePosition && msg.ID == 0 && msg.Position != nil {
			ctl.LocationAcquired(msg.Position.ToDomain())
			return
		}
		log.Debug("position report for unknown request", zap.Uint64("id", msg.ID))
	default:
		log.Debug("ignoring unknown message", zap.String("type", msg.Type))
	}
}
