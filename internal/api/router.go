package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/julienschmidt/httprouter"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"mappy/internal/api/handlers"
	"mappy/internal/domain"
	"mappy/internal/ports"
)

// Deps are the collaborators the HTTP surface needs. Session and StaticDir
// are optional.
type Deps struct {
	Geocoder ports.Geocoder
	Reverse  ports.ReverseGeocoder
	Routes   ports.RouteProvider
	Prefs    ports.PreferenceStore

	Layers       []domain.TileLayer
	DefaultLayer string

	// Session serves GET /api/session. Nil disables live sessions.
	Session http.Handler
	// StaticDir holds the browser client. Empty serves nothing outside /api.
	StaticDir string

	Env     string
	Version string
	Ping    func(ctx context.Context) error
	Logger  *zap.Logger
}

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// This is the API composition root (handlers stay unaware of concrete adapters).
func NewRouter(d Deps) http.Handler {
	log := d.Logger
	if log == nil {
		log = zap.L()
	}

	router := httprouter.New()

	search := &handlers.SearchHandler{Geocoder: d.Geocoder, Reverse: d.Reverse, Logger: log}
	route := &handlers.RouteHandler{Routes: d.Routes, Logger: log}
	prefs := &handlers.PreferenceHandler{
		Prefs:        d.Prefs,
		Layers:       d.Layers,
		DefaultLayer: d.DefaultLayer,
		Logger:       log,
	}
	health := &handlers.HealthHandler{Env: d.Env, Version: d.Version, Ping: d.Ping}

	router.POST("/api/search", search.Search)
	router.GET("/api/reverse", search.ReverseLookup)
	router.POST("/api/route", route.Route)
	router.GET("/api/layers", prefs.ListLayers)
	router.GET("/api/preferences/theme", prefs.GetTheme)
	router.PUT("/api/preferences/theme", prefs.PutTheme)
	if d.Session != nil {
		router.Handler(http.MethodGet, "/api/session", d.Session)
	}

	router.HandlerFunc(http.MethodGet, "/health", health.Health)
	router.Handler(http.MethodGet, "/metrics", promhttp.Handler())

	if d.StaticDir != "" {
		router.NotFound = http.FileServer(http.Dir(d.StaticDir))
	}

	var h http.Handler = router
	h = apiNoStore(h)
	h = handlers.WithClientID(h)
	h = sentryMiddleware(h)
	h = SecurityHeaders(h)
	h = loggingMiddleware(log)(h)
	return requestID(h)
}

// apiNoStore disables caching for /api responses only; static assets keep
// the file server's validators.
func apiNoStore(next http.Handler) http.Handler {
	uncached := noStore(next)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/api/") {
			uncached.ServeHTTP(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}
