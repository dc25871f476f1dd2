package services

import (
	"context"

	"go.uber.org/zap"

	"mappy/internal/domain"
	"mappy/internal/geomath"
	"mappy/internal/platform/metrics"
	"mappy/internal/platform/obs"
	"mappy/internal/ports"
)

// DefaultFlyingSpeedKmh is the cruise speed used for flying estimates.
const DefaultFlyingSpeedKmh = 800

// EstimateFlying returns the straight-line estimate between from and to.
// It never touches the network. A non-positive cruiseKmh uses the default.
func EstimateFlying(from, to domain.Coordinate, cruiseKmh float64) domain.RouteEstimate {
	if cruiseKmh <= 0 {
		cruiseKmh = DefaultFlyingSpeedKmh
	}
	meters := geomath.Distance(from, to)
	seconds, _ := geomath.EstimateDuration(meters, cruiseKmh)

	return domain.RouteEstimate{
		Mode:            domain.ModeFlying,
		DistanceMeters:  meters,
		DurationSeconds: seconds,
	}
}

// RouteService resolves estimates for every travel mode. Road modes go through
// the cache and then the upstream provider; flying is computed locally.
type RouteService struct {
	upstream       ports.RouteProvider
	cache          ports.RouteCache
	flyingSpeedKmh float64
}

// NewRouteService returns a service over upstream. cache may be nil.
func NewRouteService(upstream ports.RouteProvider, cache ports.RouteCache, flyingSpeedKmh float64) *RouteService {
	return &RouteService{upstream: upstream, cache: cache, flyingSpeedKmh: flyingSpeedKmh}
}

func (s *RouteService) Route(
	ctx context.Context,
	mode domain.TravelMode,
	from, to domain.Coordinate,
) (est domain.RouteEstimate, err error) {
	defer func() {
		outcome := "ok"
		if err != nil {
			outcome = "error"
		}
		metrics.RouteEstimates.WithLabelValues(string(mode), outcome).Inc()
	}()

	if !mode.IsValid() {
		_, err := domain.ParseTravelMode(string(mode))
		return domain.RouteEstimate{}, err
	}
	if err := from.Validate(); err != nil {
		return domain.RouteEstimate{}, err
	}
	if err := to.Validate(); err != nil {
		return domain.RouteEstimate{}, err
	}

	if mode == domain.ModeFlying {
		return EstimateFlying(from, to, s.flyingSpeedKmh), nil
	}

	defer obs.Time(ctx, "route.Route")(&err)

	key := ports.RouteKey{Mode: mode, From: from, To: to}
	if s.cache != nil {
		cached, ok, err := s.cache.Get(ctx, key)
		if err != nil {
			metrics.CacheLookups.WithLabelValues("route", "error").Inc()
			zap.L().Warn("route cache read failed", zap.Stringer("key", key), zap.Error(err))
		} else if ok {
			return cached, nil
		}
	}

	est, err = s.upstream.Route(ctx, mode, from, to)
	if err != nil {
		return domain.RouteEstimate{}, err
	}

	if s.cache != nil {
		if err := s.cache.Put(ctx, key, est); err != nil {
			zap.L().Warn("route cache write failed", zap.Stringer("key", key), zap.Error(err))
		}
	}

	return est, nil
}
