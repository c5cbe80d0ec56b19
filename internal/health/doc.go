// Package health provides the health indicator model for the bridge.
//
// This package defines the severity vocabulary, the indicator
// contracts (immediate, deferred, and composite), the pluggable
// status aggregator, and a set of built-in indicators for common
// dependencies (HTTP, TCP, Redis, gRPC).
//
// # Usage
//
// Define indicators and aggregate them:
//
//	indicators := map[string]health.Indicator{
//	    "redis": health.RedisIndicator(client),
//	    "api":   health.HTTPIndicator("http://api:8080/healthz", 5*time.Second),
//	}
//
//	agg := health.NewOrderedStatusAggregator()
//	status := agg.Aggregate([]health.Status{health.StatusUp, health.StatusDown})
package health
