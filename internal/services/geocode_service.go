package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"mappy/internal/domain"
	"mappy/internal/platform/metrics"
	"mappy/internal/platform/obs"
	"mappy/internal/ports"
)

// NormalizeQuery is the cache key for a search: lower case with collapsed whitespace.
func NormalizeQuery(q string) string {
	return strings.ToLower(strings.Join(strings.Fields(q), " "))
}

// lookupTimeout bounds a shared upstream lookup once it no longer follows
// the context of the caller that started it.
const lookupTimeout = 15 * time.Second

// GeocodeService puts a persistent cache in front of an upstream geocoder.
// Concurrent searches for the same normalized query share one upstream call.
type GeocodeService struct {
	upstream ports.Geocoder
	cache    ports.GeocodeCache
	group    singleflight.Group
}

// NewGeocodeService returns a service over upstream. cache may be nil.
func NewGeocodeService(upstream ports.Geocoder, cache ports.GeocodeCache) *GeocodeService {
	return &GeocodeService{upstream: upstream, cache: cache}
}

func (s *GeocodeService) Search(ctx context.Context, query string) (_ domain.Destination, err error) {
	defer obs.Time(ctx, "geocode.Search")(&err)

	key := NormalizeQuery(query)
	if key == "" {
		return domain.Destination{}, domain.ErrEmptyQuery
	}

	if s.cache != nil {
		cached, err := s.cache.GetMany(ctx, []string{key})
		switch {
		case err != nil:
			// A broken cache degrades to an upstream lookup.
			metrics.CacheLookups.WithLabelValues("geocode", "error").Inc()
			zap.L().Warn("geocode cache read failed", zap.String("query", key), zap.Error(err))
		default:
			if d, ok := cached[key]; ok {
				metrics.CacheLookups.WithLabelValues("geocode", "hit").Inc()
				return d, nil
			}
			metrics.CacheLookups.WithLabelValues("geocode", "miss").Inc()
		}
	}

	// The lookup is shared, so it must outlive whichever caller started it.
	// Each caller still stops waiting when its own ctx ends.
	ch := s.group.DoChan(key, func() (any, error) {
		lookupCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), lookupTimeout)
		defer cancel()

		dest, err := s.upstream.Search(lookupCtx, query)
		if err != nil {
			return nil, err
		}
		if s.cache != nil {
			if err := s.cache.PutMany(lookupCtx, map[string]domain.Destination{key: dest}); err != nil {
				zap.L().Warn("geocode cache write failed", zap.String("query", key), zap.Error(err))
			}
		}
		return dest, nil
	})

	var res singleflight.Result
	select {
	case res = <-ch:
	case <-ctx.Done():
		return domain.Destination{}, fmt.Errorf("geocode %q: %w", key, ctx.Err())
	}

	v, err := res.Val, res.Err
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) || domain.IsTransport(err) {
			return domain.Destination{}, err
		}
		return domain.Destination{}, fmt.Errorf("geocode %q: %w", key, err)
	}
	return v.(domain.Destination), nil
}
