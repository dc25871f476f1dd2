package cache

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mappy/internal/domain"
	"mappy/internal/platform/db"
	"mappy/internal/ports"
)

// The schema lives in repositories; repeating the two cache tables here
// avoids an import cycle in tests.
func openCacheDB(t *testing.T) *sql.DB {
	t.Helper()
	conn, err := db.OpenSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	_, err = conn.Exec(`
	CREATE TABLE geocode_cache (
        query TEXT PRIMARY KEY,
        lat DOUBLE PRECISION NOT NULL,
        lon DOUBLE PRECISION NOT NULL,
        display_name TEXT NOT NULL DEFAULT ''
    );`)
	require.NoError(t, err)

	_, err = conn.Exec(`
	CREATE TABLE route_cache (
        route_key TEXT PRIMARY KEY,
        mode TEXT NOT NULL,
        distance_meters DOUBLE PRECISION NOT NULL,
        duration_seconds DOUBLE PRECISION NOT NULL,
        geometry TEXT NOT NULL DEFAULT '',
        created_at BIGINT NOT NULL
    );`)
	require.NoError(t, err)
	return conn
}

var testKey = ports.RouteKey{
	Mode: domain.ModeDriving,
	From: domain.Coordinate{Lat: 33.4484, Lon: -112.074},
	To:   domain.Coordinate{Lat: 33.4255, Lon: -111.94},
}

var testEstimate = domain.RouteEstimate{
	Mode:            domain.ModeDriving,
	DistanceMeters:  14250.5,
	DurationSeconds: 1080,
	Path: []domain.Coordinate{
		{Lat: 33.4484, Lon: -112.074},
		{Lat: 33.4255, Lon: -111.94},
	},
}

func TestSqliteGeocodeCache(t *testing.T) {
	ctx := context.Background()
	c := NewSqliteGeocodeCache(openCacheDB(t))

	got, err := c.GetMany(ctx, []string{"paris"})
	require.NoError(t, err)
	assert.Empty(t, got)

	paris := domain.Destination{Coordinate: domain.Coordinate{Lat: 48.8566, Lon: 2.3522}, DisplayName: "Paris, France"}
	require.NoError(t, c.PutMany(ctx, map[string]domain.Destination{"paris": paris}))

	got, err = c.GetMany(ctx, []string{"paris", " paris ", "", "london"})
	require.NoError(t, err)
	assert.Equal(t, map[string]domain.Destination{"paris": paris}, got)

	assert.Error(t, c.PutMany(ctx, map[string]domain.Destination{" ": paris}))
}

func TestSQLRouteCacheRoundTripAndTTL(t *testing.T) {
	ctx := context.Background()
	c := NewSQLRouteCache(openCacheDB(t), db.DialectSQLite, time.Hour)
	now := time.Unix(1_700_000_000, 0)
	c.now = func() time.Time { return now }

	_, ok, err := c.Get(ctx, testKey)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Put(ctx, testKey, testEstimate))

	got, ok, err := c.Get(ctx, testKey)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, testEstimate, got)

	now = now.Add(time.Hour)
	_, ok, err = c.Get(ctx, testKey)
	require.NoError(t, err)
	assert.False(t, ok, "entry should expire after TTL")

	require.NoError(t, c.Put(ctx, testKey, testEstimate))
	_, ok, err = c.Get(ctx, testKey)
	require.NoError(t, err)
	assert.True(t, ok, "overwrite refreshes created_at")
}

func TestSQLRouteCacheStraightLine(t *testing.T) {
	ctx := context.Background()
	c := NewSQLRouteCache(openCacheDB(t), db.DialectSQLite, 0)

	est := domain.RouteEstimate{Mode: domain.ModeWalking, DistanceMeters: 10, DurationSeconds: 8}
	key := testKey
	key.Mode = domain.ModeWalking
	require.NoError(t, c.Put(ctx, key, est))

	got, ok, err := c.Get(ctx, key)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Nil(t, got.Path)
}

func TestRedisRouteCache(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	c := NewRedisRouteCache(client, time.Minute)

	_, ok, err := c.Get(ctx, testKey)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Put(ctx, testKey, testEstimate))
	got, ok, err := c.Get(ctx, testKey)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, testEstimate, got)

	mr.FastForward(2 * time.Minute)
	_, ok, err = c.Get(ctx, testKey)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestOpenRedis(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := OpenRedis(context.Background(), "redis://"+mr.Addr())
	require.NoError(t, err)
	client.Close()

	_, err = OpenRedis(context.Background(), "not a url")
	assert.Error(t, err)
}
