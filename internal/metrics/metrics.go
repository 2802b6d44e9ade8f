// Package metrics defines the Prometheus instrumentation for the core.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Read-through cache metrics
var (
	// CacheHitsTotal counts fresh-entry hits by request path
	CacheHitsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_hits_total",
			Help: "Cache hits served from an unexpired entry, by request path",
		},
		[]string{"path"},
	)

	// CacheMissesTotal counts reads that needed (or forced) a network fetch
	CacheMissesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_misses_total",
			Help: "Cache reads that went to the network, by request path",
		},
		[]string{"path"},
	)

	// CacheCoalescedTotal counts callers served by a shared in-flight fetch
	CacheCoalescedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_coalesced_total",
			Help: "Callers that joined an in-flight fetch instead of issuing their own",
		},
		[]string{"path"},
	)

	// CacheFetchFailuresTotal counts failed fetches (entry cleared)
	CacheFetchFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_fetch_failures_total",
			Help: "Failed network fetches that cleared their cache entry",
		},
		[]string{"path"},
	)

	// CacheInvalidationsTotal counts entries dropped by explicit invalidation
	CacheInvalidationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_invalidations_total",
			Help: "Entries dropped by explicit invalidation, by request path",
		},
		[]string{"path"},
	)
)

// Backend transport metrics
var (
	// BackendRequestsTotal tracks backend requests by endpoint and status
	BackendRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "backend_requests_total",
			Help: "Requests to the reputation backend by endpoint and status",
		},
		[]string{"endpoint", "status"},
	)

	// BackendRequestDuration tracks backend request latency in seconds
	BackendRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "backend_request_duration_seconds",
			Help:    "Backend request duration in seconds",
			Buckets: []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"endpoint"},
	)

	// CircuitBreakerStateChanges tracks breaker state transitions
	CircuitBreakerStateChanges = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_changes_total",
			Help: "Circuit breaker state transitions by component and new state",
		},
		[]string{"component", "state"},
	)

	// CircuitBreakerState tracks the current state (0=closed, 1=half-open, 2=open)
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Current circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"component"},
	)
)

// Aggregation pipeline metrics
var (
	// MentionGroupsLast tracks the size of the most recent clustering result
	MentionGroupsLast = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "mention_groups_last",
			Help: "Number of mention groups produced by the most recent clustering run",
		},
	)

	// ClusterRunsTotal counts clustering runs
	ClusterRunsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cluster_runs_total",
			Help: "Total clustering runs over fetched item sets",
		},
	)

	// StaleSnapshotsTotal counts aggregations discarded by generation checks
	StaleSnapshotsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "stale_snapshots_total",
			Help: "Aggregation results discarded because their inputs were invalidated mid-run",
		},
	)
)
