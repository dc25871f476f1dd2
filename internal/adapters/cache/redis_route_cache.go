package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"mappy/internal/domain"
	"mappy/internal/platform/metrics"
	"mappy/internal/platform/obs"
	"mappy/internal/ports"
)

const redisKeyPrefix = "mappy:route:"

// RedisRouteCache keeps route estimates in Redis and lets Redis expire them.
type RedisRouteCache struct {
	Client *redis.Client
	TTL    time.Duration
}

func NewRedisRouteCache(client *redis.Client, ttl time.Duration) *RedisRouteCache {
	return &RedisRouteCache{Client: client, TTL: ttl}
}

// OpenRedis parses a redis:// URL and verifies the connection.
func OpenRedis(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("open redis: parse url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("open redis: ping: %w", err)
	}
	return client, nil
}

type redisRoute struct {
	Distance float64 `json:"distance"`
	Duration float64 `json:"duration"`
	Geometry string  `json:"geometry,omitempty"`
}

func (r *RedisRouteCache) Get(
	ctx context.Context,
	key ports.RouteKey,
) (_ domain.RouteEstimate, _ bool, err error) {
	defer obs.Time(ctx, "route.cache.Get")(&err)

	raw, err := r.Client.Get(ctx, redisKeyPrefix+key.String()).Bytes()
	if errors.Is(err, redis.Nil) {
		metrics.CacheLookups.WithLabelValues("route", "miss").Inc()
		return domain.RouteEstimate{}, false, nil
	}
	if err != nil {
		return domain.RouteEstimate{}, false, fmt.Errorf("get route cache: %w", err)
	}

	var v redisRoute
	if err := json.Unmarshal(raw, &v); err != nil {
		return domain.RouteEstimate{}, false, fmt.Errorf("get route cache key=%q: %w", key, err)
	}
	path, err := decodePath(v.Geometry)
	if err != nil {
		return domain.RouteEstimate{}, false, fmt.Errorf("get route cache key=%q: %w", key, err)
	}

	metrics.CacheLookups.WithLabelValues("route", "hit").Inc()
	return domain.RouteEstimate{
		Mode:            key.Mode,
		DistanceMeters:  v.Distance,
		DurationSeconds: v.Duration,
		Path:            path,
	}, true, nil
}

func (r *RedisRouteCache) Put(ctx context.Context, key ports.RouteKey, est domain.RouteEstimate) (err error) {
	defer obs.Time(ctx, "route.cache.Put")(&err)

	geometry, err := encodePath(est.Path)
	if err != nil {
		return fmt.Errorf("insert route cache key=%q: %w", key, err)
	}
	raw, err := json.Marshal(redisRoute{
		Distance: est.DistanceMeters,
		Duration: est.DurationSeconds,
		Geometry: geometry,
	})
	if err != nil {
		return fmt.Errorf("insert route cache key=%q: %w", key, err)
	}

	if err := r.Client.Set(ctx, redisKeyPrefix+key.String(), raw, r.TTL).Err(); err != nil {
		return fmt.Errorf("insert route cache key=%q: %w", key, err)
	}
	return nil
}
