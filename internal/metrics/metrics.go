// Package metrics exposes the Prometheus instruments for the HTTP
// surface and the loaded corpus. Instruments are package-level and
// registered once, so handler wiring and tests can share them freely.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RecommendationRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "recommendation_requests_total",
		Help: "Total number of recommendation requests by operation and status",
	}, []string{"operation", "status"})

	RecommendationLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "recommendation_latency_seconds",
		Help:    "Recommendation request latency in seconds",
		Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0, 2.0},
	}, []string{"operation"})

	RecommendationResults = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "recommendation_result_count",
		Help:    "Number of results returned per recommendation request",
		Buckets: []float64{0, 1, 3, 5, 10, 20, 50, 100},
	}, []string{"operation"})

	CacheRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "result_cache_requests_total",
		Help: "Result cache lookups by outcome",
	}, []string{"operation", "outcome"})

	CorpusSize = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "corpus_size",
		Help: "Loaded corpus size by entity",
	}, []string{"entity"})

	SnapshotLoadDuration = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "snapshot_load_duration_seconds",
		Help: "Wall time spent loading the active corpus snapshot",
	})
)

// ObserveRequest records one completed recommendation operation.
func ObserveRequest(operation, status string, started time.Time, resultCount int) {
	RecommendationRequests.WithLabelValues(operation, status).Inc()
	RecommendationLatency.WithLabelValues(operation).Observe(time.Since(started).Seconds())
	RecommendationResults.WithLabelValues(operation).Observe(float64(resultCount))
}

// SetCorpusSize publishes the entity counts of the active snapshot.
func SetCorpusSize(restaurants, users, visits int) {
	CorpusSize.WithLabelValues("restaurants").Set(float64(restaurants))
	CorpusSize.WithLabelValues("users").Set(float64(users))
	CorpusSize.WithLabelValues("visits").Set(float64(visits))
}
