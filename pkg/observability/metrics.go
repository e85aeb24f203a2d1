// Package observability wires Prometheus metrics for the search pipeline.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the process-wide instruments recorded by the search service.
type Metrics struct {
	SearchesTotal      *prometheus.CounterVec
	SearchDuration     prometheus.Histogram
	CollaboratorErrors *prometheus.CounterVec
	ResultCount        prometheus.Histogram
}

// NewMetrics registers the search metrics on the given registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		SearchesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "nearby_searches_total",
			Help: "Completed search requests by outcome.",
		}, []string{"status"}),
		SearchDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "nearby_search_duration_seconds",
			Help:    "End-to-end search pipeline latency.",
			Buckets: prometheus.DefBuckets,
		}),
		CollaboratorErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "nearby_collaborator_errors_total",
			Help: "Errors from external collaborators by name.",
		}, []string{"collaborator"}),
		ResultCount: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "nearby_result_count",
			Help:    "Number of items in returned result sets.",
			Buckets: []float64{0, 1, 2, 3, 5, 8, 13, 21},
		}),
	}
}
