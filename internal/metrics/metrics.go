// Package metrics holds the Prometheus collectors for the analysis store.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	globalMetrics *Metrics
	metricsOnce   sync.Once
)

// Metrics holds Prometheus metrics for the analysis store.
type Metrics struct {
	AnalysesSaved    prometheus.Counter
	AnalysesDeleted  prometheus.Counter
	AnalysesStored   prometheus.Gauge
	PersistWrites    prometheus.Counter
	PersistFailures  prometheus.Counter
	PersistDuration  prometheus.Histogram
	PayloadRecovered prometheus.Counter
}

// New returns the process-wide metrics, registering them on first use so
// repeated calls never hit duplicate-registration panics.
//
// Metrics:
//   - vault_analyses_saved_total
//   - vault_analyses_deleted_total
//   - vault_analyses - records currently held
//   - vault_persist_writes_total
//   - vault_persist_failures_total
//   - vault_persist_duration_seconds
//   - vault_payload_recoveries_total - corrupt payloads replaced by empty state
func New() *Metrics {
	metricsOnce.Do(func() {
		globalMetrics = &Metrics{
			AnalysesSaved: promauto.NewCounter(prometheus.CounterOpts{
				Name: "vault_analyses_saved_total",
				Help: "Total number of analyses saved",
			}),
			AnalysesDeleted: promauto.NewCounter(prometheus.CounterOpts{
				Name: "vault_analyses_deleted_total",
				Help: "Total number of analyses deleted",
			}),
			AnalysesStored: promauto.NewGauge(prometheus.GaugeOpts{
				Name: "vault_analyses",
				Help: "Number of analyses currently held by the store",
			}),
			PersistWrites: promauto.NewCounter(prometheus.CounterOpts{
				Name: "vault_persist_writes_total",
				Help: "Total number of payload writes to the blob store",
			}),
			PersistFailures: promauto.NewCounter(prometheus.CounterOpts{
				Name: "vault_persist_failures_total",
				Help: "Total number of failed payload writes",
			}),
			PersistDuration: promauto.NewHistogram(prometheus.HistogramOpts{
				Name:    "vault_persist_duration_seconds",
				Help:    "Duration of payload writes in seconds",
				Buckets: prometheus.ExponentialBuckets(0.0005, 2, 12),
			}),
			PayloadRecovered: promauto.NewCounter(prometheus.CounterOpts{
				Name: "vault_payload_recoveries_total",
				Help: "Persisted payloads that could not be parsed and were replaced by an empty state",
			}),
		}
	})
	return globalMetrics
}
