package registry

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/velnikov/healthbridge/internal/health"
	"github.com/velnikov/healthbridge/internal/lifecycle"
)

// staticIndicator always reports the given severity.
func staticIndicator(status health.Status) health.Indicator {
	return health.IndicatorFunc(func(_ context.Context) health.Health {
		return health.Health{Status: status}
	})
}

// recordingAggregator captures the severity set it was handed.
type recordingAggregator struct {
	captured []health.Status
	result   health.Status
}

func (a *recordingAggregator) Aggregate(statuses []health.Status) health.Status {
	a.captured = statuses
	return a.result
}

func TestNewStatusBridge_NilAggregator(t *testing.T) {
	t.Parallel()

	bridge, err := NewStatusBridge(nil)
	require.ErrorIs(t, err, ErrNilAggregator)
	assert.Nil(t, bridge)
}

func TestTranslateStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		status health.Status
		want   InstanceStatus
	}{
		{name: "up", status: health.StatusUp, want: InstanceStatusUp},
		{name: "down", status: health.StatusDown, want: InstanceStatusDown},
		{name: "out of service", status: health.StatusOutOfService, want: InstanceStatusOutOfService},
		{name: "unknown", status: health.StatusUnknown, want: InstanceStatusUnknown},
		{name: "outside the closed set", status: health.Status("degraded"), want: InstanceStatusUnknown},
		{name: "empty", status: health.Status(""), want: InstanceStatusUnknown},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, TranslateStatus(tt.status))
		})
	}
}

func TestStatusBridge_Status(t *testing.T) {
	t.Parallel()

	bridge, err := NewStatusBridge(health.NewOrderedStatusAggregator())
	require.NoError(t, err)

	bridge.Initialize(map[string]health.Indicator{
		"db":    staticIndicator(health.StatusUp),
		"cache": staticIndicator(health.StatusUp),
	}, nil)

	status, changed := bridge.Status(context.Background(), InstanceStatusStarting)
	assert.True(t, changed)
	assert.Equal(t, InstanceStatusUp, status)
}

func TestStatusBridge_Status_WorstWins(t *testing.T) {
	t.Parallel()

	bridge, err := NewStatusBridge(health.NewOrderedStatusAggregator())
	require.NoError(t, err)

	bridge.Initialize(map[string]health.Indicator{
		"db":    staticIndicator(health.StatusUp),
		"cache": staticIndicator(health.StatusDown),
	}, nil)

	status, changed := bridge.Status(context.Background(), InstanceStatusUp)
	assert.True(t, changed)
	assert.Equal(t, InstanceStatusDown, status)
}

func TestStatusBridge_Status_Stopped(t *testing.T) {
	t.Parallel()

	bridge, err := NewStatusBridge(health.NewOrderedStatusAggregator())
	require.NoError(t, err)

	bridge.Initialize(map[string]health.Indicator{
		"db": staticIndicator(health.StatusUp),
	}, nil)

	bridge.Stop()

	status, changed := bridge.Status(context.Background(), InstanceStatusOutOfService)
	assert.False(t, changed)
	assert.Equal(t, InstanceStatusOutOfService, status)

	// Restarting resumes reporting.
	bridge.Start()
	status, changed = bridge.Status(context.Background(), InstanceStatusOutOfService)
	assert.True(t, changed)
	assert.Equal(t, InstanceStatusUp, status)
}

func TestStatusBridge_IsRunningAfterStop(t *testing.T) {
	t.Parallel()

	bridge, err := NewStatusBridge(health.NewOrderedStatusAggregator())
	require.NoError(t, err)

	bridge.Stop()

	assert.True(t, bridge.IsRunning())

	_, changed := bridge.Status(context.Background(), InstanceStatusUp)
	assert.False(t, changed)
}

func TestStatusBridge_Initialize_FlattensComposite(t *testing.T) {
	t.Parallel()

	bridge, err := NewStatusBridge(health.NewOrderedStatusAggregator())
	require.NoError(t, err)

	composite := health.NewComposite(
		health.Contributor{Name: "a", Indicator: staticIndicator(health.StatusUp)},
		health.Contributor{Name: "b", Indicator: staticIndicator(health.StatusDown)},
	)

	bridge.Initialize(map[string]health.Indicator{
		"discovery": composite,
	}, nil)

	assert.Len(t, bridge.indicators, 2)
	assert.Contains(t, bridge.indicators, "a")
	assert.Contains(t, bridge.indicators, "b")
	assert.NotContains(t, bridge.indicators, "discovery")
}

func TestStatusBridge_Initialize_FlattensNestedComposite(t *testing.T) {
	t.Parallel()

	bridge, err := NewStatusBridge(health.NewOrderedStatusAggregator())
	require.NoError(t, err)

	inner := health.NewComposite(
		health.Contributor{Name: "inner-a", Indicator: staticIndicator(health.StatusUp)},
	)
	outer := health.NewComposite(
		health.Contributor{Name: "inner", Indicator: inner},
		health.Contributor{Name: "b", Indicator: staticIndicator(health.StatusUp)},
	)

	bridge.Initialize(map[string]health.Indicator{"outer": outer}, nil)

	assert.Len(t, bridge.indicators, 2)
	assert.Contains(t, bridge.indicators, "inner-a")
	assert.Contains(t, bridge.indicators, "b")
}

func TestStatusBridge_Initialize_ExcludesSelfIndicator(t *testing.T) {
	t.Parallel()

	bridge, err := NewStatusBridge(health.NewOrderedStatusAggregator())
	require.NoError(t, err)

	composite := health.NewComposite(
		health.Contributor{Name: "a", Indicator: staticIndicator(health.StatusUp)},
		health.Contributor{Name: "self", Indicator: NewInstanceStatusIndicator(nil)},
	)

	bridge.Initialize(map[string]health.Indicator{
		"discovery": composite,
	}, nil)

	assert.Len(t, bridge.indicators, 1)
	assert.Contains(t, bridge.indicators, "a")
	assert.NotContains(t, bridge.indicators, "self")
}

func TestStatusBridge_Initialize_CustomExclusion(t *testing.T) {
	t.Parallel()

	bridge, err := NewStatusBridge(health.NewOrderedStatusAggregator(),
		WithExclusion(func(name string, _ health.Indicator) bool {
			return name == "noisy"
		}),
	)
	require.NoError(t, err)

	bridge.Initialize(map[string]health.Indicator{
		"noisy": staticIndicator(health.StatusDown),
		"db":    staticIndicator(health.StatusUp),
	}, nil)

	assert.Len(t, bridge.indicators, 1)
	assert.Contains(t, bridge.indicators, "db")
}

func TestStatusBridge_AggregatorSeesDistinctSeverities(t *testing.T) {
	t.Parallel()

	agg := &recordingAggregator{result: health.StatusDown}
	bridge, err := NewStatusBridge(agg)
	require.NoError(t, err)

	bridge.Initialize(map[string]health.Indicator{
		"a": staticIndicator(health.StatusUp),
		"b": staticIndicator(health.StatusUp),
		"c": staticIndicator(health.StatusDown),
	}, nil)

	status, changed := bridge.Status(context.Background(), InstanceStatusUp)
	assert.True(t, changed)
	assert.Equal(t, InstanceStatusDown, status)

	// Three indicators, two distinct severities.
	assert.ElementsMatch(t, []health.Status{health.StatusUp, health.StatusDown}, agg.captured)
}

func TestStatusBridge_ReactiveIndicators(t *testing.T) {
	t.Parallel()

	deferred := health.ReactiveIndicatorFunc(func(_ context.Context) <-chan health.Health {
		ch := make(chan health.Health, 1)
		ch <- health.Down(errors.New("backend gone"))
		close(ch)
		return ch
	})

	bridge, err := NewStatusBridge(health.NewOrderedStatusAggregator())
	require.NoError(t, err)

	bridge.Initialize(
		map[string]health.Indicator{"db": staticIndicator(health.StatusUp)},
		map[string]health.ReactiveIndicator{"stream": deferred},
	)

	status, changed := bridge.Status(context.Background(), InstanceStatusUp)
	assert.True(t, changed)
	assert.Equal(t, InstanceStatusDown, status)
}

func TestStatusBridge_ReactiveWithoutResultContributesNothing(t *testing.T) {
	t.Parallel()

	empty := health.ReactiveIndicatorFunc(func(_ context.Context) <-chan health.Health {
		ch := make(chan health.Health)
		close(ch)
		return ch
	})

	agg := &recordingAggregator{result: health.StatusUp}
	bridge, err := NewStatusBridge(agg)
	require.NoError(t, err)

	bridge.Initialize(
		map[string]health.Indicator{"db": staticIndicator(health.StatusUp)},
		map[string]health.ReactiveIndicator{"silent": empty},
	)

	status, changed := bridge.Status(context.Background(), InstanceStatusUp)
	assert.True(t, changed)
	assert.Equal(t, InstanceStatusUp, status)
	assert.Equal(t, []health.Status{health.StatusUp}, agg.captured)
}

func TestStatusBridge_NoIndicators(t *testing.T) {
	t.Parallel()

	bridge, err := NewStatusBridge(health.NewOrderedStatusAggregator())
	require.NoError(t, err)

	bridge.Initialize(nil, nil)

	status, changed := bridge.Status(context.Background(), InstanceStatusUp)
	assert.True(t, changed)
	assert.Equal(t, InstanceStatusUnknown, status)
}

func TestStatusBridge_Details(t *testing.T) {
	t.Parallel()

	bridge, err := NewStatusBridge(health.NewOrderedStatusAggregator())
	require.NoError(t, err)

	bridge.Initialize(map[string]health.Indicator{
		"db":    staticIndicator(health.StatusUp),
		"cache": staticIndicator(health.StatusDown),
	}, nil)

	status, details := bridge.Details(context.Background())
	assert.Equal(t, health.StatusDown, status)
	assert.Len(t, details, 2)
	assert.Equal(t, health.StatusUp, details["db"].Status)
	assert.Equal(t, health.StatusDown, details["cache"].Status)
}

func TestStatusBridge_Order(t *testing.T) {
	t.Parallel()

	bridge, err := NewStatusBridge(health.NewOrderedStatusAggregator())
	require.NoError(t, err)

	assert.Equal(t, lifecycle.PriorityHighest, bridge.Order())
}
