package registry

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/velnikov/healthbridge/internal/observability"
)

// Client is the registry transport used by the heartbeat.
type Client interface {
	Register(ctx context.Context, instance InstanceInfo) error
	Heartbeat(ctx context.Context, instance InstanceInfo) error
	Deregister(ctx context.Context, instance InstanceInfo) error
}

// Heartbeat default configuration constants.
const (
	// DefaultHeartbeatInterval is the default interval between renewals.
	DefaultHeartbeatInterval = 30 * time.Second
)

// Heartbeat periodically renews the instance lease with the registry,
// consulting the health check handler for the status to report. When
// the handler declines to emit a status the previously reported one is
// kept.
type Heartbeat struct {
	client   Client
	handler  HealthCheckHandler
	instance InstanceInfo
	interval time.Duration
	logger   observability.Logger

	mu        sync.Mutex
	running   bool
	current   InstanceStatus
	cancel    context.CancelFunc
	stoppedCh chan struct{}
}

// HeartbeatOption is a functional option for configuring the heartbeat.
type HeartbeatOption func(*Heartbeat)

// WithHeartbeatInterval sets the renewal interval.
func WithHeartbeatInterval(interval time.Duration) HeartbeatOption {
	return func(hb *Heartbeat) {
		hb.interval = interval
	}
}

// WithHeartbeatLogger sets the logger for the heartbeat.
func WithHeartbeatLogger(logger observability.Logger) HeartbeatOption {
	return func(hb *Heartbeat) {
		hb.logger = logger
	}
}

// NewHeartbeat creates a heartbeat for the given instance.
func NewHeartbeat(client Client, handler HealthCheckHandler, instance InstanceInfo, opts ...HeartbeatOption) *Heartbeat {
	hb := &Heartbeat{
		client:   client,
		handler:  handler,
		instance: instance,
		interval: DefaultHeartbeatInterval,
		logger:   observability.NopLogger(),
		current:  instance.Status,
	}

	for _, opt := range opts {
		opt(hb)
	}

	return hb
}

// CurrentStatus returns the status most recently reported to the
// registry.
func (hb *Heartbeat) CurrentStatus() InstanceStatus {
	hb.mu.Lock()
	defer hb.mu.Unlock()
	return hb.current
}

// Start registers the instance and begins the renewal loop. Idempotent.
func (hb *Heartbeat) Start() {
	hb.mu.Lock()
	if hb.running {
		hb.mu.Unlock()
		return
	}
	hb.running = true
	ctx, cancel := context.WithCancel(context.Background())
	hb.cancel = cancel
	hb.stoppedCh = make(chan struct{})
	hb.mu.Unlock()

	go hb.run(ctx)
}

// Stop halts the renewal loop and deregisters the instance. Idempotent.
func (hb *Heartbeat) Stop() {
	hb.mu.Lock()
	if !hb.running {
		hb.mu.Unlock()
		return
	}
	hb.running = false
	cancel := hb.cancel
	stoppedCh := hb.stoppedCh
	hb.mu.Unlock()

	cancel()
	<-stoppedCh

	ctx, done := context.WithTimeout(context.Background(), hb.interval)
	defer done()
	if err := hb.client.Deregister(ctx, hb.snapshot()); err != nil {
		hb.logger.Warn("failed to deregister instance",
			observability.String("instance", hb.instance.InstanceID),
			observability.Error(err),
		)
	}
}

// IsRunning reports whether the renewal loop is active.
func (hb *Heartbeat) IsRunning() bool {
	hb.mu.Lock()
	defer hb.mu.Unlock()
	return hb.running
}

// run is the renewal loop.
func (hb *Heartbeat) run(ctx context.Context) {
	defer close(hb.stoppedCh)

	if err := hb.client.Register(ctx, hb.snapshot()); err != nil {
		hb.logger.Error("failed to register instance",
			observability.String("instance", hb.instance.InstanceID),
			observability.Error(err),
		)
	}

	ticker := time.NewTicker(hb.interval)
	defer ticker.Stop()

	hb.beat(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			hb.beat(ctx)
		}
	}
}

// beat performs one renewal: consult the handler, keep the held status
// on "no change", then renew the lease.
func (hb *Heartbeat) beat(ctx context.Context) {
	metrics := GetMetrics()

	status, changed := hb.handler.Status(ctx, hb.CurrentStatus())
	if changed {
		hb.mu.Lock()
		hb.current = status
		hb.mu.Unlock()
		metrics.SetInstanceStatus(status)
	}

	err := hb.client.Heartbeat(ctx, hb.snapshot())
	metrics.RecordHeartbeat(err == nil)
	if errors.Is(err, ErrInstanceNotFound) {
		// Lease expired on the registry side, announce again.
		hb.logger.Info("instance unknown to registry, re-registering",
			observability.String("instance", hb.instance.InstanceID),
		)
		if regErr := hb.client.Register(ctx, hb.snapshot()); regErr != nil {
			hb.logger.Error("failed to re-register instance",
				observability.String("instance", hb.instance.InstanceID),
				observability.Error(regErr),
			)
		}
		return
	}
	if err != nil {
		hb.logger.Warn("heartbeat renewal failed",
			observability.String("instance", hb.instance.InstanceID),
			observability.String("status", hb.CurrentStatus().String()),
			observability.Error(err),
		)
		return
	}

	hb.logger.Debug("heartbeat renewed",
		observability.String("instance", hb.instance.InstanceID),
		observability.String("status", hb.CurrentStatus().String()),
	)
}

// snapshot returns the instance info carrying the currently held
// status.
func (hb *Heartbeat) snapshot() InstanceInfo {
	info := hb.instance
	info.Status = hb.CurrentStatus()
	return info
}
