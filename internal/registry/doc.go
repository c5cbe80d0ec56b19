// Package registry bridges aggregated indicator health into the
// instance status reported to a service registry.
//
// The StatusBridge collects results from registered indicators,
// delegates severity aggregation to a pluggable aggregator, and
// translates the aggregate into the registry's instance status
// vocabulary. The Heartbeat runner consults the bridge on every renew
// cycle and keeps the previously reported status whenever the bridge
// declines to emit one (for example while shutting down).
package registry
