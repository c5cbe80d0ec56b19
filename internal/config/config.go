// Package config provides configuration types and loading for the
// health bridge.
//
// This package defines the configuration model, YAML loading with
// environment variable substitution, validation, and file watching
// for hot-reload support.
package config

import (
	"fmt"
	"time"
)

// Config is the root configuration for the health bridge.
type Config struct {
	Service    ServiceConfig     `yaml:"service"`
	Registry   RegistryConfig    `yaml:"registry"`
	Probes     ProbesConfig      `yaml:"probes"`
	Indicators []IndicatorConfig `yaml:"indicators"`
	Logging    LoggingConfig     `yaml:"logging"`
}

// ServiceConfig identifies this application instance.
type ServiceConfig struct {
	Name     string `yaml:"name"`
	HostName string `yaml:"hostName"`
	Port     int    `yaml:"port"`
}

// RegistryConfig configures the service registry connection.
type RegistryConfig struct {
	URL               string   `yaml:"url"`
	HeartbeatInterval Duration `yaml:"heartbeatInterval"`
	RequestTimeout    Duration `yaml:"requestTimeout"`
}

// ProbesConfig configures the local probe endpoints.
type ProbesConfig struct {
	ListenAddr       string   `yaml:"listenAddr"`
	ReadinessTimeout Duration `yaml:"readinessTimeout"`
}

// IndicatorConfig configures one built-in health indicator.
type IndicatorConfig struct {
	Name    string   `yaml:"name"`
	Type    string   `yaml:"type"`
	Target  string   `yaml:"target"`
	Timeout Duration `yaml:"timeout"`
}

// Indicator types accepted in IndicatorConfig.Type.
const (
	IndicatorTypeHTTP  = "http"
	IndicatorTypeTCP   = "tcp"
	IndicatorTypeRedis = "redis"
	IndicatorTypeGRPC  = "grpc"
	IndicatorTypePing  = "ping"
)

// LoggingConfig configures structured logging.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// DefaultConfig returns a configuration with default values.
func DefaultConfig() *Config {
	return &Config{
		Service: ServiceConfig{
			Name:     "healthbridge",
			HostName: "localhost",
			Port:     8080,
		},
		Registry: RegistryConfig{
			HeartbeatInterval: Duration(30 * time.Second),
			RequestTimeout:    Duration(10 * time.Second),
		},
		Probes: ProbesConfig{
			ListenAddr:       ":8081",
			ReadinessTimeout: Duration(5 * time.Second),
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
	}
}

// Validate checks the configuration for inconsistencies.
func (c *Config) Validate() error {
	if c.Service.Name == "" {
		return fmt.Errorf("service.name must not be empty")
	}
	if c.Registry.URL == "" {
		return fmt.Errorf("registry.url must not be empty")
	}
	if c.Registry.HeartbeatInterval < 0 {
		return fmt.Errorf("registry.heartbeatInterval must not be negative")
	}

	seen := make(map[string]bool, len(c.Indicators))
	for i, ind := range c.Indicators {
		if ind.Name == "" {
			return fmt.Errorf("indicators[%d].name must not be empty", i)
		}
		if seen[ind.Name] {
			return fmt.Errorf("duplicate indicator name: %s", ind.Name)
		}
		seen[ind.Name] = true

		switch ind.Type {
		case IndicatorTypePing:
		case IndicatorTypeHTTP, IndicatorTypeTCP, IndicatorTypeRedis, IndicatorTypeGRPC:
			if ind.Target == "" {
				return fmt.Errorf("indicator %s: target must not be empty", ind.Name)
			}
		default:
			return fmt.Errorf("indicator %s: unknown type %q", ind.Name, ind.Type)
		}
	}

	return nil
}
