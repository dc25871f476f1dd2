package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"mappy/internal/domain"
	"mappy/internal/platform/db"
	"mappy/internal/platform/metrics"
	"mappy/internal/platform/obs"
	"mappy/internal/ports"
)

// SQLRouteCache stores road route estimates in the route_cache table.
// It works against both SQLite and Postgres; entries older than TTL are
// treated as misses.
type SQLRouteCache struct {
	DB      *sql.DB
	Dialect db.Dialect
	TTL     time.Duration

	now func() time.Time
}

func NewSQLRouteCache(conn *sql.DB, dialect db.Dialect, ttl time.Duration) *SQLRouteCache {
	return &SQLRouteCache{DB: conn, Dialect: dialect, TTL: ttl, now: time.Now}
}

func (s *SQLRouteCache) Get(
	ctx context.Context,
	key ports.RouteKey,
) (_ domain.RouteEstimate, _ bool, err error) {
	defer obs.Time(ctx, "route.cache.Get")(&err)

	if s.DB == nil {
		return domain.RouteEstimate{}, false, errors.New("route cache: db is nil")
	}

	q := db.Rebind(s.Dialect, `
	SELECT distance_meters, duration_seconds, geometry, created_at
    FROM route_cache
    WHERE route_key = ?;
	`)

	var (
		meters, seconds float64
		geometry        string
		created         int64
	)
	err = s.DB.QueryRowContext(ctx, q, key.String()).Scan(&meters, &seconds, &geometry, &created)
	if errors.Is(err, sql.ErrNoRows) {
		metrics.CacheLookups.WithLabelValues("route", "miss").Inc()
		return domain.RouteEstimate{}, false, nil
	}
	if err != nil {
		return domain.RouteEstimate{}, false, fmt.Errorf("get route cache: %w", err)
	}

	if expired(created, s.TTL, s.now()) {
		metrics.CacheLookups.WithLabelValues("route", "expired").Inc()
		return domain.RouteEstimate{}, false, nil
	}

	path, err := decodePath(geometry)
	if err != nil {
		return domain.RouteEstimate{}, false, fmt.Errorf("get route cache key=%q: %w", key, err)
	}

	metrics.CacheLookups.WithLabelValues("route", "hit").Inc()
	return domain.RouteEstimate{
		Mode:            key.Mode,
		DistanceMeters:  meters,
		DurationSeconds: seconds,
		Path:            path,
	}, true, nil
}

func (s *SQLRouteCache) Put(ctx context.Context, key ports.RouteKey, est domain.RouteEstimate) (err error) {
	defer obs.Time(ctx, "route.cache.Put")(&err)

	if s.DB == nil {
		return errors.New("route cache: db is nil")
	}

	geometry, err := encodePath(est.Path)
	if err != nil {
		return fmt.Errorf("insert route cache key=%q: %w", key, err)
	}

	q := db.Rebind(s.Dialect, `
	INSERT INTO route_cache (route_key, mode, distance_meters, duration_seconds, geometry, created_at)
    VALUES (?, ?, ?, ?, ?, ?)
	ON CONFLICT (route_key) DO UPDATE
	SET distance_meters = excluded.distance_meters,
		duration_seconds = excluded.duration_seconds,
		geometry = excluded.geometry,
		created_at = excluded.created_at;
	`)

	_, err = s.DB.ExecContext(ctx, q,
		key.String(), string(key.Mode), est.DistanceMeters, est.DurationSeconds, geometry, s.now().Unix())
	if err != nil {
		return fmt.Errorf("insert route cache key=%q: %w", key, err)
	}
	return nil
}
