package registry

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker"

	"github.com/velnikov/healthbridge/internal/observability"
)

// HTTP client default configuration constants.
const (
	// DefaultRequestTimeout is the default timeout for registry requests.
	DefaultRequestTimeout = 10 * time.Second

	// DefaultBreakerThreshold is the minimum number of requests before
	// the circuit breaker may trip.
	DefaultBreakerThreshold = 5

	// DefaultBreakerTimeout is how long the circuit stays open before
	// probing again.
	DefaultBreakerTimeout = 30 * time.Second
)

// ErrInstanceNotFound is returned when the registry does not know the
// instance, typically after a lease expiry. Callers should re-register.
var ErrInstanceNotFound = errors.New("instance not found in registry")

// HTTPClient talks to the registry over its REST interface. Requests
// are routed through a circuit breaker so a flapping registry does not
// pile up blocked renewals.
type HTTPClient struct {
	baseURL string
	client  *http.Client
	breaker *gobreaker.CircuitBreaker
	logger  observability.Logger
}

// HTTPClientOption is a functional option for configuring the client.
type HTTPClientOption func(*HTTPClient)

// WithHTTPClient sets the underlying HTTP client.
func WithHTTPClient(client *http.Client) HTTPClientOption {
	return func(c *HTTPClient) {
		c.client = client
	}
}

// WithClientLogger sets the logger for the client.
func WithClientLogger(logger observability.Logger) HTTPClientOption {
	return func(c *HTTPClient) {
		c.logger = logger
	}
}

// NewHTTPClient creates a registry client for the given base URL.
func NewHTTPClient(baseURL string, opts ...HTTPClientOption) *HTTPClient {
	c := &HTTPClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: DefaultRequestTimeout},
		logger:  observability.NopLogger(),
	}

	for _, opt := range opts {
		opt(c)
	}

	c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "registry",
		Timeout: DefaultBreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= DefaultBreakerThreshold && failureRatio >= 0.5
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			c.logger.Info("registry circuit breaker state change",
				observability.String("name", name),
				observability.String("from", from.String()),
				observability.String("to", to.String()),
			)
		},
	})

	return c
}

// Register announces the instance to the registry.
func (c *HTTPClient) Register(ctx context.Context, instance InstanceInfo) error {
	body, err := json.Marshal(instance)
	if err != nil {
		return fmt.Errorf("failed to encode instance: %w", err)
	}

	target := fmt.Sprintf("%s/apps/%s", c.baseURL, url.PathEscape(instance.App))
	return c.do(ctx, http.MethodPost, target, body)
}

// Heartbeat renews the instance lease, carrying the current status.
// Returns ErrInstanceNotFound when the registry no longer knows the
// instance.
func (c *HTTPClient) Heartbeat(ctx context.Context, instance InstanceInfo) error {
	target := fmt.Sprintf("%s/apps/%s/%s?status=%s",
		c.baseURL,
		url.PathEscape(instance.App),
		url.PathEscape(instance.InstanceID),
		url.QueryEscape(instance.Status.String()),
	)
	return c.do(ctx, http.MethodPut, target, nil)
}

// Deregister removes the instance from the registry.
func (c *HTTPClient) Deregister(ctx context.Context, instance InstanceInfo) error {
	target := fmt.Sprintf("%s/apps/%s/%s",
		c.baseURL,
		url.PathEscape(instance.App),
		url.PathEscape(instance.InstanceID),
	)
	return c.do(ctx, http.MethodDelete, target, nil)
}

// do executes one request through the circuit breaker.
func (c *HTTPClient) do(ctx context.Context, method, target string, body []byte) error {
	_, err := c.breaker.Execute(func() (any, error) {
		var reader io.Reader = http.NoBody
		if body != nil {
			reader = bytes.NewReader(body)
		}

		req, err := http.NewRequestWithContext(ctx, method, target, reader)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("registry request failed: %w", err)
		}
		defer resp.Body.Close()
		_, _ = io.Copy(io.Discard, resp.Body)

		if resp.StatusCode == http.StatusNotFound {
			return nil, ErrInstanceNotFound
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return nil, fmt.Errorf("registry returned status %d", resp.StatusCode)
		}

		return nil, nil
	})
	return err
}
