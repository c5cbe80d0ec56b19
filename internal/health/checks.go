package health

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"google.golang.org/grpc"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// PingIndicator returns an indicator that always reports up. Useful as
// a liveness baseline when no real dependencies are configured.
func PingIndicator() Indicator {
	return IndicatorFunc(func(_ context.Context) Health {
		return Up()
	})
}

// HTTPIndicator returns an indicator that performs an HTTP GET against
// the given URL and reports up on a 2xx response.
func HTTPIndicator(url string, timeout time.Duration) Indicator {
	client := &http.Client{Timeout: timeout}

	return IndicatorFunc(func(ctx context.Context) Health {
		start := time.Now()

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
		if err != nil {
			return Down(fmt.Errorf("failed to create request: %w", err))
		}

		resp, err := client.Do(req)
		if err != nil {
			return Down(fmt.Errorf("failed to connect: %w", err))
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return Down(fmt.Errorf("unhealthy status code: %d", resp.StatusCode)).
				WithDetail("code", resp.StatusCode)
		}

		return Up().
			WithDetail("code", resp.StatusCode).
			WithDetail("latency", time.Since(start).String())
	})
}

// TCPIndicator returns an indicator that reports up when a TCP
// connection to the given address succeeds.
func TCPIndicator(address string, timeout time.Duration) Indicator {
	dialer := &net.Dialer{Timeout: timeout}

	return IndicatorFunc(func(ctx context.Context) Health {
		start := time.Now()

		conn, err := dialer.DialContext(ctx, "tcp", address)
		if err != nil {
			return Down(fmt.Errorf("failed to connect: %w", err))
		}
		defer conn.Close()

		return Up().WithDetail("latency", time.Since(start).String())
	})
}

// RedisIndicator returns an indicator that pings the given Redis
// client.
func RedisIndicator(client *redis.Client) Indicator {
	return IndicatorFunc(func(ctx context.Context) Health {
		if client == nil {
			return Down(fmt.Errorf("redis client is nil"))
		}

		start := time.Now()
		if err := client.Ping(ctx).Err(); err != nil {
			return Down(fmt.Errorf("redis ping failed: %w", err))
		}

		return Up().WithDetail("latency", time.Since(start).String())
	})
}

// GRPCIndicator returns an indicator that queries the standard gRPC
// health service on an established connection. An empty service name
// checks the overall server health.
func GRPCIndicator(conn grpc.ClientConnInterface, service string) Indicator {
	return IndicatorFunc(func(ctx context.Context) Health {
		if conn == nil {
			return Down(fmt.Errorf("grpc connection is nil"))
		}

		resp, err := healthpb.NewHealthClient(conn).Check(ctx,
			&healthpb.HealthCheckRequest{Service: service})
		if err != nil {
			return Down(fmt.Errorf("grpc health check failed: %w", err))
		}

		switch resp.GetStatus() {
		case healthpb.HealthCheckResponse_SERVING:
			return Up().WithDetail("service", service)
		case healthpb.HealthCheckResponse_NOT_SERVING:
			return Down(fmt.Errorf("grpc service not serving")).
				WithDetail("service", service)
		default:
			return Unknown().WithDetail("service", service)
		}
	})
}
