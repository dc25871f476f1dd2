package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// UpstreamRequests counts calls to Nominatim/OSRM by outcome (ok, not_found, error).
	UpstreamRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mappy_upstream_requests_total",
			Help: "Requests sent to external geocoding and routing services",
		},
		[]string{"service", "outcome"},
	)

	UpstreamLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "mappy_upstream_request_duration_seconds",
		Help:    "Latency of external geocoding and routing requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"service"})
)

var (
	CacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mappy_cache_lookups_total",
		Help: "Geocode and route cache lookups (result = hit, miss, error)",
	}, []string{"cache", "result"})
)

var (
	ActiveSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "mappy_active_sessions",
		Help: "Number of connected map sessions",
	})

	RouteEstimates = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mappy_route_estimates_total",
		Help: "Route estimates delivered to sessions by mode and outcome",
	}, []string{"mode", "outcome"})
)

var (
	OperationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "mappy_operation_duration_seconds",
		Help:    "Duration of timed internal operations",
		Buckets: prometheus.DefBuckets,
	}, []string{"op", "outcome"})
)
