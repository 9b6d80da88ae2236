// Package metrics holds the prometheus collectors for the aggregation service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Concert listing cache
	ConcertCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "concert_cache_hits_total",
			Help: "Total number of concert listing cache hits",
		},
	)

	ConcertCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "concert_cache_misses_total",
			Help: "Total number of concert listing cache misses",
		},
	)

	ConcertCacheEvictions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "concert_cache_evictions_total",
			Help: "Total number of concert cache entries removed",
		},
		[]string{"reason"}, // "expired", "cleared"
	)

	ConcertCacheEntries = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "concert_cache_entries",
			Help: "Current number of concert listing cache entries, valid or not",
		},
	)

	// Grouping
	GroupsDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "concert_groups_dropped_total",
			Help: "Concert groups dropped because their key had no parseable date",
		},
	)

	RecordingsRejected = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "recordings_rejected_total",
			Help: "Upstream recordings rejected by the strict parse step",
		},
	)

	DetailLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "concert_detail_lookups_total",
			Help: "Concert detail lookups by resolution path",
		},
		[]string{"path"}, // "cache", "fetch", "not_found", "malformed"
	)

	// Upstream browse service
	UpstreamRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "upstream_browse_requests_total",
			Help: "Upstream browse requests by outcome",
		},
		[]string{"outcome"}, // "ok", "rejected", "unavailable"
	)

	UpstreamDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "upstream_browse_duration_seconds",
			Help:    "Duration of upstream browse requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	MetadataCacheRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "metadata_cache_requests_total",
			Help: "Upstream response cache lookups by result",
		},
		[]string{"result"}, // "hit", "miss", "error"
	)

	// HTTP
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests served by route and status",
		},
		[]string{"route", "status"},
	)
)
