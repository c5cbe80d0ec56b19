package health

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOrderedStatusAggregator(t *testing.T) {
	t.Parallel()

	agg := NewOrderedStatusAggregator()

	tests := []struct {
		name     string
		statuses []Status
		want     Status
	}{
		{
			name:     "down wins over everything",
			statuses: []Status{StatusUp, StatusUnknown, StatusDown, StatusOutOfService},
			want:     StatusDown,
		},
		{
			name:     "out of service wins over up",
			statuses: []Status{StatusUp, StatusOutOfService},
			want:     StatusOutOfService,
		},
		{
			name:     "up wins over unknown",
			statuses: []Status{StatusUnknown, StatusUp},
			want:     StatusUp,
		},
		{
			name:     "single status",
			statuses: []Status{StatusUp},
			want:     StatusUp,
		},
		{
			name:     "empty set aggregates to unknown",
			statuses: nil,
			want:     StatusUnknown,
		},
		{
			name:     "unordered severity is ignored",
			statuses: []Status{Status("degraded"), StatusUp},
			want:     StatusUp,
		},
		{
			name:     "only unordered severities",
			statuses: []Status{Status("degraded")},
			want:     StatusUnknown,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, agg.Aggregate(tt.statuses))
		})
	}
}

func TestOrderedStatusAggregator_CustomOrder(t *testing.T) {
	t.Parallel()

	agg := NewOrderedStatusAggregator(StatusUnknown, StatusDown)

	assert.Equal(t, StatusUnknown, agg.Aggregate([]Status{StatusDown, StatusUnknown}))
	assert.Equal(t, StatusDown, agg.Aggregate([]Status{StatusDown, StatusUp}))
}
