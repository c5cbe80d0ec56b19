package registry

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus metrics for registry interactions.
type Metrics struct {
	heartbeatsTotal *prometheus.CounterVec
	instanceStatus  *prometheus.GaugeVec
}

var (
	metricsInstance *Metrics
	metricsOnce     sync.Once
)

// trackedStatuses are the instance statuses pre-initialized on the
// one-hot status gauge.
var trackedStatuses = []InstanceStatus{
	InstanceStatusUp,
	InstanceStatusDown,
	InstanceStatusStarting,
	InstanceStatusOutOfService,
	InstanceStatusUnknown,
}

// GetMetrics returns the singleton registry metrics instance.
func GetMetrics() *Metrics {
	metricsOnce.Do(func() {
		metricsInstance = &Metrics{
			heartbeatsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "healthbridge",
					Subsystem: "registry",
					Name:      "heartbeats_total",
					Help: "Total number of heartbeat " +
						"renewals by result",
				},
				[]string{"result"},
			),
			instanceStatus: promauto.NewGaugeVec(
				prometheus.GaugeOpts{
					Namespace: "healthbridge",
					Subsystem: "registry",
					Name:      "instance_status",
					Help: "Current instance status " +
						"(one-hot by status label)",
				},
				[]string{"status"},
			),
		}
	})
	return metricsInstance
}

// MustRegister registers all registry metric collectors with the given
// Prometheus registry.
func (m *Metrics) MustRegister(registry *prometheus.Registry) {
	registry.MustRegister(
		m.heartbeatsTotal,
		m.instanceStatus,
	)
}

// RecordHeartbeat records one heartbeat renewal outcome.
func (m *Metrics) RecordHeartbeat(success bool) {
	result := "success"
	if !success {
		result = "failure"
	}
	m.heartbeatsTotal.WithLabelValues(result).Inc()
}

// SetInstanceStatus updates the one-hot instance status gauge.
func (m *Metrics) SetInstanceStatus(status InstanceStatus) {
	for _, s := range trackedStatuses {
		value := 0.0
		if s == status {
			value = 1.0
		}
		m.instanceStatus.WithLabelValues(s.String()).Set(value)
	}
}
