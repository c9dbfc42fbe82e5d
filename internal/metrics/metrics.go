// internal/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	MarkSubmissionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mark_submissions_total",
			Help: "Total number of per-student mark submissions",
		},
		[]string{"assignment", "result"},
	)

	MarkTotalHistogram = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mark_total",
			Help:    "Distribution of submitted week totals",
			Buckets: prometheus.LinearBuckets(0, 5, 7),
		},
		[]string{"assignment"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path", "method", "status"},
	)
)
