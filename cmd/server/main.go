package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"mappy/internal/adapters/cache"
	"mappy/internal/adapters/nominatim"
	"mappy/internal/adapters/osrm"
	"mappy/internal/adapters/repositories"
	"mappy/internal/api"
	"mappy/internal/api/handlers"
	"mappy/internal/config"
	"mappy/internal/platform/db"
	"mappy/internal/platform/obs"
	"mappy/internal/platform/report"
	"mappy/internal/ports"
	"mappy/internal/services"
	"mappy/internal/session"
)

var version = "dev"

// main is the application composition root.
// It wires concrete adapters (SQL, Redis, Nominatim, OSRM) behind ports and starts the HTTP server.
func main() {
	cfg, err := config.Load(config.Get("MAPPY_CONFIG", "config.toml"))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	log, err := obs.NewLogger(cfg.Env, "mappy")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer log.Sync()

	if cfg.DotEnvErr != nil {
		log.Info("no .env file found (using environment variables)", zap.Error(cfg.DotEnvErr))
	}
	zap.ReplaceGlobals(log)

	if err := report.Setup(cfg.SentryDSN, cfg.Env, version); err != nil {
		log.Warn("error reporting disabled", zap.Error(err))
	}
	defer report.Flush()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	conn, dialect, err := openDB(cfg.Storage)
	if err != nil {
		log.Fatal("open database", zap.Error(err))
	}
	defer conn.Close()

	if err := repositories.InitSchema(ctx, conn); err != nil {
		log.Fatal("init schema", zap.Error(err))
	}

	geocodeCache, routeCache, closeCache, err := openCaches(ctx, cfg.Storage, conn, dialect, log)
	if err != nil {
		log.Fatal("open caches", zap.Error(err))
	}
	defer closeCache()

	geo := nominatim.New(cfg.Nominatim.BaseURL, cfg.Nominatim.UserAgent, cfg.Nominatim.Timeout.Duration, nil)
	roads := osrm.New(cfg.OSRM.BaseURL, cfg.Nominatim.UserAgent, cfg.OSRM.Timeout.Duration, cfg.Profiles(), nil)

	geocoder := services.NewGeocodeService(geo, geocodeCache)
	routes := services.NewRouteService(roads, routeCache, cfg.Session.FlyingSpeedKmh)
	prefs := repositories.NewSQLPreferenceStore(conn, dialect)

	sessions := &session.Handler{
		Geocoder: geocoder,
		Reverse:  geo,
		Routes:   routes,
		Prefs:    prefs,
		Config: session.Config{
			LocateTimeout:   cfg.Session.LocateTimeout.Duration,
			TrackingTimeout: cfg.Session.TrackingTimeout.Duration,
			FlyingSpeedKmh:  cfg.Session.FlyingSpeedKmh,
			Layers:          cfg.Layers(),
			DefaultLayer:    cfg.DefaultLayer,
		},
		ClientID: handlers.ClientID,
		Logger:   log.Named("session"),
		Upgrader: websocket.Upgrader{ReadBufferSize: 1024, WriteBufferSize: 1024},
	}

	router := api.NewRouter(api.Deps{
		Geocoder:     geocoder,
		Reverse:      geo,
		Routes:       routes,
		Prefs:        prefs,
		Layers:       cfg.Layers(),
		DefaultLayer: cfg.DefaultLayer,
		Session:      sessions,
		StaticDir:    cfg.StaticDir,
		Env:          cfg.Env,
		Version:      version,
		Ping:         conn.PingContext,
		Logger:       log.Named("http"),
	})

	// WriteTimeout stays zero: session connections are long-lived and keep
	// their own deadlines.
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	go func() {
		log.Info("server listening", zap.String("addr", srv.Addr), zap.String("storage", string(dialect)))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("http server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")

	// Cancelling the base context ends every live session.
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http server forced shutdown", zap.Error(err))
	}

	log.Info("stopped")
}

func openDB(cfg config.StorageConfig) (*sql.DB, db.Dialect, error) {
	if cfg.Driver == string(db.DialectPostgres) {
		conn, err := db.Open(cfg.DatabaseURL)
		return conn, db.DialectPostgres, err
	}

	if err := os.MkdirAll(filepath.Dir(cfg.SQLitePath), 0o755); err != nil {
		return nil, "", fmt.Errorf("openDB: create directory for %q: %w", cfg.SQLitePath, err)
	}
	conn, err := db.OpenSQLite(cfg.SQLitePath)
	return conn, db.DialectSQLite, err
}

// openCaches picks the geocode cache for the dialect and the route cache
// backend: Redis when configured, the SQL table otherwise.
func openCaches(
	ctx context.Context,
	cfg config.StorageConfig,
	conn *sql.DB,
	dialect db.Dialect,
	log *zap.Logger,
) (ports.GeocodeCache, ports.RouteCache, func(), error) {
	var geocodeCache ports.GeocodeCache = cache.NewSqliteGeocodeCache(conn)
	if dialect == db.DialectPostgres {
		geocodeCache = cache.NewSQLGeocodeCache(conn)
	}

	if cfg.RedisURL == "" {
		return geocodeCache, cache.NewSQLRouteCache(conn, dialect, cfg.RouteCacheTTL.Duration), func() {}, nil
	}

	rdb, err := cache.OpenRedis(ctx, cfg.RedisURL)
	if err != nil {
		return nil, nil, nil, err
	}
	log.Info("route cache on redis")
	return geocodeCache, cache.NewRedisRouteCache(rdb, cfg.RouteCacheTTL.Duration), func() { _ = rdb.Close() }, nil
}
