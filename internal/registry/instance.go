package registry

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/velnikov/healthbridge/internal/health"
)

// InstanceStatus is the status vocabulary understood by the service
// registry.
type InstanceStatus string

const (
	// InstanceStatusUp indicates the instance is ready to receive traffic.
	InstanceStatusUp InstanceStatus = "UP"

	// InstanceStatusDown indicates the instance is unhealthy.
	InstanceStatusDown InstanceStatus = "DOWN"

	// InstanceStatusStarting indicates the instance is initializing.
	InstanceStatusStarting InstanceStatus = "STARTING"

	// InstanceStatusOutOfService indicates the instance has been taken
	// out of traffic intentionally.
	InstanceStatusOutOfService InstanceStatus = "OUT_OF_SERVICE"

	// InstanceStatusUnknown indicates the instance status cannot be
	// determined.
	InstanceStatusUnknown InstanceStatus = "UNKNOWN"
)

// String returns the string representation of the instance status.
func (s InstanceStatus) String() string {
	return string(s)
}

// InstanceInfo identifies one application instance in the registry.
type InstanceInfo struct {
	App        string         `json:"app"`
	InstanceID string         `json:"instanceId"`
	HostName   string         `json:"hostName"`
	Port       int            `json:"port"`
	Status     InstanceStatus `json:"status"`
}

// NewInstanceInfo creates instance metadata with a generated instance
// ID and starting status.
func NewInstanceInfo(app, hostName string, port int) InstanceInfo {
	return InstanceInfo{
		App:        app,
		InstanceID: fmt.Sprintf("%s:%s:%s", hostName, app, uuid.NewString()),
		HostName:   hostName,
		Port:       port,
		Status:     InstanceStatusStarting,
	}
}

// StatusSource reports the instance status currently held by the
// heartbeat.
type StatusSource interface {
	CurrentStatus() InstanceStatus
}

// healthByInstanceStatus maps the registry vocabulary back to
// indicator severities for the self indicator.
var healthByInstanceStatus = map[InstanceStatus]health.Status{
	InstanceStatusUp:           health.StatusUp,
	InstanceStatusDown:         health.StatusDown,
	InstanceStatusOutOfService: health.StatusOutOfService,
	InstanceStatusStarting:     health.StatusUnknown,
	InstanceStatusUnknown:      health.StatusUnknown,
}

// InstanceStatusIndicator reports the status the instance currently
// holds in the registry. The bridge never registers this indicator for
// its own aggregation: feeding the bridge's output back into its input
// pins the aggregate at a non-passing status.
type InstanceStatusIndicator struct {
	source StatusSource
}

// NewInstanceStatusIndicator creates an indicator over the given
// status source.
func NewInstanceStatusIndicator(source StatusSource) *InstanceStatusIndicator {
	return &InstanceStatusIndicator{source: source}
}

// Health reports the registry status as an indicator severity.
func (i *InstanceStatusIndicator) Health(_ context.Context) health.Health {
	status := InstanceStatusUnknown
	if i.source != nil {
		status = i.source.CurrentStatus()
	}

	h := health.Unknown()
	if severity, ok := healthByInstanceStatus[status]; ok {
		h = h.WithStatus(severity)
	}

	return h.WithDetail("instance-status", status.String())
}
