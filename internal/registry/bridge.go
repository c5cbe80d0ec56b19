package registry

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/velnikov/healthbridge/internal/health"
	"github.com/velnikov/healthbridge/internal/lifecycle"
	"github.com/velnikov/healthbridge/internal/observability"
)

// instanceStatusByHealth is the fixed translation table from indicator
// severity to registry instance status. Severities outside the table
// translate to UNKNOWN.
var instanceStatusByHealth = map[health.Status]InstanceStatus{
	health.StatusUnknown:      InstanceStatusUnknown,
	health.StatusOutOfService: InstanceStatusOutOfService,
	health.StatusDown:         InstanceStatusDown,
	health.StatusUp:           InstanceStatusUp,
}

// TranslateStatus maps an indicator severity to the registry status
// vocabulary. Unmapped severities yield UNKNOWN, never an error.
func TranslateStatus(status health.Status) InstanceStatus {
	if mapped, ok := instanceStatusByHealth[status]; ok {
		return mapped
	}
	return InstanceStatusUnknown
}

// HealthCheckHandler is consulted by the heartbeat on every renew
// cycle. The second result is false when the caller should keep the
// status it already holds.
type HealthCheckHandler interface {
	Status(ctx context.Context, current InstanceStatus) (InstanceStatus, bool)
}

// ExclusionFunc reports whether a named indicator must be left out of
// the bridge's registries during initialization.
type ExclusionFunc func(name string, indicator health.Indicator) bool

// ErrNilAggregator is returned when a bridge is constructed without an
// aggregator.
var ErrNilAggregator = errors.New("status aggregator must not be nil")

// StatusBridge aggregates indicator severities and translates the
// aggregate into the registry instance status.
//
// The indicator registries are populated once by Initialize and only
// read afterward, so queries need no locking. The running flag may be
// toggled concurrently with queries and is therefore atomic.
type StatusBridge struct {
	aggregator health.StatusAggregator
	indicators map[string]health.Indicator
	reactive   map[string]health.ReactiveIndicator
	exclude    ExclusionFunc
	running    atomic.Bool
	logger     observability.Logger
}

// BridgeOption is a functional option for configuring the bridge.
type BridgeOption func(*StatusBridge)

// WithBridgeLogger sets the logger for the bridge.
func WithBridgeLogger(logger observability.Logger) BridgeOption {
	return func(b *StatusBridge) {
		b.logger = logger
	}
}

// WithExclusion replaces the default exclusion predicate. The default
// excludes the bridge's own InstanceStatusIndicator.
func WithExclusion(exclude ExclusionFunc) BridgeOption {
	return func(b *StatusBridge) {
		b.exclude = exclude
	}
}

// NewStatusBridge creates a bridge delegating severity aggregation to
// the given aggregator.
func NewStatusBridge(aggregator health.StatusAggregator, opts ...BridgeOption) (*StatusBridge, error) {
	if aggregator == nil {
		return nil, ErrNilAggregator
	}

	b := &StatusBridge{
		aggregator: aggregator,
		indicators: make(map[string]health.Indicator),
		reactive:   make(map[string]health.ReactiveIndicator),
		exclude:    excludeSelfIndicator,
		logger:     observability.NopLogger(),
	}
	b.running.Store(true)

	for _, opt := range opts {
		opt(b)
	}

	return b, nil
}

// excludeSelfIndicator is the default exclusion predicate: it skips
// the indicator reporting this bridge's own registry status.
func excludeSelfIndicator(_ string, indicator health.Indicator) bool {
	_, ok := indicator.(*InstanceStatusIndicator)
	return ok
}

// compositeIndicator is satisfied by indicators made of named
// sub-indicators, which the bridge flattens instead of treating as
// opaque.
type compositeIndicator interface {
	Contributors() []health.Contributor
}

// Initialize populates the bridge's registries from the supplied
// indicator maps. Composite indicators are flattened recursively into
// their named contributors; excluded indicators are skipped. Deferred
// indicators are registered unchanged. Intended to be called once.
func (b *StatusBridge) Initialize(
	indicators map[string]health.Indicator,
	reactive map[string]health.ReactiveIndicator,
) {
	for name, indicator := range indicators {
		b.register(name, indicator)
	}
	for name, indicator := range reactive {
		b.reactive[name] = indicator
	}

	b.logger.Debug("bridge initialized",
		observability.Int("indicators", len(b.indicators)),
		observability.Int("reactive_indicators", len(b.reactive)),
	)
}

// register adds one indicator, flattening composites into their
// contributors under their own names.
func (b *StatusBridge) register(name string, indicator health.Indicator) {
	if b.exclude(name, indicator) {
		b.logger.Debug("excluding indicator",
			observability.String("indicator", name))
		return
	}

	if composite, ok := indicator.(compositeIndicator); ok {
		for _, entry := range composite.Contributors() {
			b.register(entry.Name, entry.Indicator)
		}
		return
	}

	b.indicators[name] = indicator
}

// Status evaluates all registered indicators and returns the
// translated registry status. The second result is false when the
// bridge is stopped, telling the caller to keep the status it already
// holds instead of overwriting it.
func (b *StatusBridge) Status(ctx context.Context, current InstanceStatus) (InstanceStatus, bool) {
	if !b.running.Load() {
		return current, false
	}
	status, _ := b.Details(ctx)
	return TranslateStatus(status), true
}

// Details evaluates every registered indicator and returns the
// aggregate severity together with the per-indicator results. Deferred
// indicators are awaited one at a time with no timeout of the bridge's
// own; one that completes without a result contributes nothing.
func (b *StatusBridge) Details(ctx context.Context) (health.Status, map[string]health.Health) {
	metrics := health.GetMetrics()
	results := make(map[string]health.Health, len(b.indicators)+len(b.reactive))

	for name, indicator := range b.indicators {
		h := indicator.Health(ctx)
		metrics.RecordEvaluation(name, h.Status)
		results[name] = h
	}

	for name, indicator := range b.reactive {
		h, ok := <-indicator.Health(ctx)
		if !ok {
			continue
		}
		metrics.RecordEvaluation(name, h.Status)
		results[name] = h
	}

	// Only distinct severities matter to the aggregator.
	seen := make(map[health.Status]struct{}, len(results))
	statuses := make([]health.Status, 0, len(results))
	for _, h := range results {
		if _, ok := seen[h.Status]; ok {
			continue
		}
		seen[h.Status] = struct{}{}
		statuses = append(statuses, h.Status)
	}

	return b.aggregator.Aggregate(statuses), results
}

// Start resumes health reporting. Idempotent.
func (b *StatusBridge) Start() {
	b.running.Store(true)
}

// Stop suppresses health reporting: subsequent Status calls report
// "keep existing". Idempotent, no other side effects.
func (b *StatusBridge) Stop() {
	b.running.Store(false)
}

// IsRunning always reports true. The bridge stays active as a managed
// component even while its health reporting is suppressed; Stop only
// affects what Status emits.
func (b *StatusBridge) IsRunning() bool {
	return true
}

// Order returns the bridge's shutdown precedence. The bridge must stop
// before the heartbeat so the suppressed status is in effect when
// deregistration is announced.
func (b *StatusBridge) Order() int {
	return lifecycle.PriorityHighest
}
