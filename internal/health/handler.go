package health

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Default timeout values for probe endpoints.
const (
	// DefaultReadinessProbeTimeout is the default timeout for readiness probes.
	DefaultReadinessProbeTimeout = 5 * time.Second
)

// DetailSource produces an aggregate severity together with the
// per-indicator results it was derived from.
type DetailSource interface {
	Details(ctx context.Context) (Status, map[string]Health)
}

// ProbeResponse is the JSON body served by the readiness endpoint.
type ProbeResponse struct {
	Status    Status            `json:"status"`
	Checks    map[string]Health `json:"checks,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
}

// Handler serves liveness and readiness probe endpoints backed by a
// detail source.
type Handler struct {
	source  DetailSource
	timeout time.Duration
}

// HandlerOption is a functional option for configuring the handler.
type HandlerOption func(*Handler)

// WithProbeTimeout sets the readiness probe timeout.
func WithProbeTimeout(timeout time.Duration) HandlerOption {
	return func(h *Handler) {
		h.timeout = timeout
	}
}

// NewHandler creates a probe handler over the given detail source.
func NewHandler(source DetailSource, opts ...HandlerOption) *Handler {
	h := &Handler{
		source:  source,
		timeout: DefaultReadinessProbeTimeout,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// LivenessHandler returns a handler for liveness probes. Liveness
// reports whether the process is running, not whether its dependencies
// are healthy.
func (h *Handler) LivenessHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"timestamp": time.Now().UTC(),
		})
	}
}

// ReadinessHandler returns a handler for readiness probes. The
// response carries the aggregate severity and per-indicator details;
// a down or out-of-service aggregate yields 503.
func (h *Handler) ReadinessHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
		defer cancel()

		status, checks := h.source.Details(ctx)

		response := ProbeResponse{
			Status:    status,
			Checks:    checks,
			Timestamp: time.Now().UTC(),
		}

		statusCode := http.StatusOK
		if status == StatusDown || status == StatusOutOfService {
			statusCode = http.StatusServiceUnavailable
		}

		c.JSON(statusCode, response)
	}
}

// Register mounts the probe endpoints on the given router group.
func (h *Handler) Register(router gin.IRoutes) {
	router.GET("/healthz", h.LivenessHandler())
	router.GET("/readyz", h.ReadinessHandler())
}
