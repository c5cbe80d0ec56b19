package health

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus metrics for indicator evaluations.
type Metrics struct {
	evaluationsTotal *prometheus.CounterVec
	indicatorStatus  *prometheus.GaugeVec
}

var (
	metricsInstance *Metrics
	metricsOnce     sync.Once
)

// GetMetrics returns the singleton health metrics instance.
func GetMetrics() *Metrics {
	metricsOnce.Do(func() {
		metricsInstance = &Metrics{
			evaluationsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "healthbridge",
					Subsystem: "health",
					Name:      "evaluations_total",
					Help: "Total number of indicator " +
						"evaluations performed",
				},
				[]string{"indicator"},
			),
			indicatorStatus: promauto.NewGaugeVec(
				prometheus.GaugeOpts{
					Namespace: "healthbridge",
					Subsystem: "health",
					Name:      "indicator_status",
					Help: "Current indicator status " +
						"(1=up, 0=not up)",
				},
				[]string{"indicator"},
			),
		}
	})
	return metricsInstance
}

// MustRegister registers all health metric collectors with the given
// Prometheus registry. promauto registers with the default global
// registry; calling MustRegister bridges the collectors onto a custom
// registry served by the application's metrics endpoint.
func (m *Metrics) MustRegister(registry *prometheus.Registry) {
	registry.MustRegister(
		m.evaluationsTotal,
		m.indicatorStatus,
	)
}

// RecordEvaluation records one indicator evaluation and its outcome.
func (m *Metrics) RecordEvaluation(indicator string, status Status) {
	m.evaluationsTotal.WithLabelValues(indicator).Inc()

	value := 0.0
	if status == StatusUp {
		value = 1.0
	}
	m.indicatorStatus.WithLabelValues(indicator).Set(value)
}
