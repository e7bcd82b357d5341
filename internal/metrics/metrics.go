package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shortlist_http_requests_total",
			Help: "Total number of HTTP requests by route and status code",
		},
		[]string{"route", "code"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "shortlist_http_request_duration_seconds",
			Help: "Duration of HTTP request handling in seconds",
		},
		[]string{"route"},
	)

	GenerationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "shortlist_generation_duration_seconds",
			Help:    "Duration of report generation in seconds",
			Buckets: []float64{1, 2.5, 5, 10, 20, 40, 80, 160},
		},
	)

	GenerationFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "shortlist_generation_failures_total",
			Help: "Total number of failed report generations",
		},
	)

	ExtractionTier = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shortlist_extraction_tier_total",
			Help: "Number of extractions resolved by each parsing tier",
		},
		[]string{"tier"},
	)

	CacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "shortlist_cache_hits_total",
			Help: "Number of report cache hits",
		},
	)

	CacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "shortlist_cache_misses_total",
			Help: "Number of report cache misses",
		},
	)
)
