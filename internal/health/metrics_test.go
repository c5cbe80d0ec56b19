package health

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gaugeValue(t *testing.T, registry *prometheus.Registry, name, label string) float64 {
	t.Helper()

	families, err := registry.Gather()
	require.NoError(t, err)

	for _, family := range families {
		if family.GetName() != name {
			continue
		}
		for _, metric := range family.GetMetric() {
			for _, pair := range metric.GetLabel() {
				if pair.GetValue() == label {
					return metric.GetGauge().GetValue()
				}
			}
		}
	}

	t.Fatalf("metric %s{%s} not found", name, label)
	return 0
}

func findFamily(families []*dto.MetricFamily, name string) *dto.MetricFamily {
	for _, family := range families {
		if family.GetName() == name {
			return family
		}
	}
	return nil
}

func TestMetrics_RecordEvaluation(t *testing.T) {
	metrics := GetMetrics()

	registry := prometheus.NewRegistry()
	metrics.MustRegister(registry)

	metrics.RecordEvaluation("db-probe", StatusUp)
	assert.Equal(t, 1.0, gaugeValue(t, registry, "healthbridge_health_indicator_status", "db-probe"))

	metrics.RecordEvaluation("db-probe", StatusDown)
	assert.Equal(t, 0.0, gaugeValue(t, registry, "healthbridge_health_indicator_status", "db-probe"))

	families, err := registry.Gather()
	require.NoError(t, err)

	counter := findFamily(families, "healthbridge_health_evaluations_total")
	require.NotNil(t, counter)
	assert.NotEmpty(t, counter.GetMetric())
}

func TestGetMetrics_Singleton(t *testing.T) {
	assert.Same(t, GetMetrics(), GetMetrics())
}
