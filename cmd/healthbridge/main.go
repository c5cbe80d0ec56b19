// Package main is the entry point for the health bridge.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/velnikov/healthbridge/internal/config"
	"github.com/velnikov/healthbridge/internal/health"
	"github.com/velnikov/healthbridge/internal/lifecycle"
	"github.com/velnikov/healthbridge/internal/observability"
	"github.com/velnikov/healthbridge/internal/registry"
)

// Version information (set at build time).
var (
	version   = "dev"
	buildTime = "unknown"
)

// defaultIndicatorTimeout applies when an indicator entry does not set
// its own timeout.
const defaultIndicatorTimeout = 5 * time.Second

func main() {
	configPath := flag.String("config", getEnvOrDefault("HEALTHBRIDGE_CONFIG_PATH", "configs/healthbridge.yaml"),
		"Path to configuration file")
	showVersion := flag.Bool("version", false, "Show version information")
	flag.Parse()

	if *showVersion {
		fmt.Printf("healthbridge version %s (built %s)\n", version, buildTime)
		return
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid config: %v\n", err)
		os.Exit(1)
	}

	logger, err := observability.NewLogger(observability.LogConfig{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()
	observability.SetGlobalLogger(logger)

	if err := run(*configPath, cfg, logger); err != nil {
		logger.Fatal("healthbridge failed", observability.Error(err))
	}
}

// run wires the bridge, heartbeat, and probe endpoints and blocks
// until a termination signal arrives.
func run(configPath string, cfg *config.Config, logger observability.Logger) error {
	indicators, cleanup, err := buildIndicators(cfg.Indicators)
	if err != nil {
		return err
	}
	defer cleanup()

	bridge, err := registry.NewStatusBridge(
		health.NewOrderedStatusAggregator(),
		registry.WithBridgeLogger(logger.With(observability.String("component", "bridge"))),
	)
	if err != nil {
		return err
	}

	instance := registry.NewInstanceInfo(cfg.Service.Name, cfg.Service.HostName, cfg.Service.Port)
	client := registry.NewHTTPClient(cfg.Registry.URL,
		registry.WithHTTPClient(&http.Client{Timeout: cfg.Registry.RequestTimeout.Duration()}),
		registry.WithClientLogger(logger.With(observability.String("component", "registry-client"))),
	)
	heartbeat := registry.NewHeartbeat(client, bridge, instance,
		registry.WithHeartbeatInterval(cfg.Registry.HeartbeatInterval.Duration()),
		registry.WithHeartbeatLogger(logger.With(observability.String("component", "heartbeat"))),
	)

	// The heartbeat's own status indicator is registered alongside the
	// others; the bridge excludes it during initialization.
	indicators["instance-status"] = registry.NewInstanceStatusIndicator(heartbeat)
	bridge.Initialize(indicators, nil)

	manager := lifecycle.NewManager(lifecycle.WithLogger(logger))
	manager.Add("bridge", bridge)
	manager.Add("heartbeat", heartbeat)
	manager.StartAll()

	server := startProbeServer(cfg, bridge, logger)

	// Indicator wiring is fixed for the life of the process; hot reload
	// only applies settings that are safe to change in place.
	watcher, err := config.NewWatcher(configPath, func(updated *config.Config) {
		if err := logger.SetLevel(updated.Logging.Level); err != nil {
			logger.Warn("ignoring reloaded log level",
				observability.String("level", updated.Logging.Level),
				observability.Error(err))
			return
		}
		logger.Info("log level applied",
			observability.String("level", updated.Logging.Level))
	}, config.WithWatcherLogger(logger.With(observability.String("component", "config-watcher"))))
	if err != nil {
		logger.Warn("configuration watching unavailable", observability.Error(err))
	} else if err := watcher.Start(context.Background()); err != nil {
		logger.Warn("configuration watching unavailable", observability.Error(err))
	} else {
		defer func() { _ = watcher.Stop() }()
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	manager.StopAll()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Warn("probe server shutdown failed", observability.Error(err))
	}

	return nil
}

// buildIndicators constructs the configured indicators. The returned
// cleanup closes any connections opened for them.
func buildIndicators(entries []config.IndicatorConfig) (map[string]health.Indicator, func(), error) {
	indicators := make(map[string]health.Indicator, len(entries))
	var closers []func()

	cleanup := func() {
		for _, fn := range closers {
			fn()
		}
	}

	for _, entry := range entries {
		timeout := entry.Timeout.Duration()
		if timeout == 0 {
			timeout = defaultIndicatorTimeout
		}

		switch entry.Type {
		case config.IndicatorTypePing:
			indicators[entry.Name] = health.PingIndicator()

		case config.IndicatorTypeHTTP:
			indicators[entry.Name] = health.HTTPIndicator(entry.Target, timeout)

		case config.IndicatorTypeTCP:
			indicators[entry.Name] = health.TCPIndicator(entry.Target, timeout)

		case config.IndicatorTypeRedis:
			client := redis.NewClient(&redis.Options{Addr: entry.Target})
			closers = append(closers, func() { _ = client.Close() })
			indicators[entry.Name] = health.RedisIndicator(client)

		case config.IndicatorTypeGRPC:
			conn, err := grpc.NewClient(entry.Target,
				grpc.WithTransportCredentials(insecure.NewCredentials()))
			if err != nil {
				cleanup()
				return nil, nil, fmt.Errorf("indicator %s: %w", entry.Name, err)
			}
			closers = append(closers, func() { _ = conn.Close() })
			indicators[entry.Name] = health.GRPCIndicator(conn, "")

		default:
			cleanup()
			return nil, nil, fmt.Errorf("indicator %s: unknown type %q", entry.Name, entry.Type)
		}
	}

	return indicators, cleanup, nil
}

// startProbeServer serves the liveness/readiness probes and the
// metrics endpoint.
func startProbeServer(cfg *config.Config, bridge *registry.StatusBridge, logger observability.Logger) *http.Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	handler := health.NewHandler(bridge,
		health.WithProbeTimeout(cfg.Probes.ReadinessTimeout.Duration()))
	handler.Register(router)

	metricsRegistry := prometheus.NewRegistry()
	health.GetMetrics().MustRegister(metricsRegistry)
	registry.GetMetrics().MustRegister(metricsRegistry)
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(metricsRegistry, promhttp.HandlerOpts{})))

	server := &http.Server{
		Addr:              cfg.Probes.ListenAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("probe server listening",
			observability.String("addr", cfg.Probes.ListenAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("probe server failed", observability.Error(err))
		}
	}()

	return server
}

// getEnvOrDefault returns the environment value or a default.
func getEnvOrDefault(key, def string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return def
}
