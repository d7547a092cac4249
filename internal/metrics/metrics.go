// internal/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	QueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sandbox_queries_total",
			Help: "Total number of statements run through the sandbox gateway",
		},
		[]string{"kind", "status"},
	)

	SubmissionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "graded_submissions_total",
			Help: "Total number of graded participant submissions",
		},
		[]string{"verdict"},
	)

	ProvisionOpsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "database_provision_ops_total",
			Help: "Create/drop operations on competition databases",
		},
		[]string{"op", "status"},
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
