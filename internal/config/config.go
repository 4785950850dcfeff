// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package config loads vidresolve configuration from defaults, a YAML file and
// VIDRESOLVE_* environment variables, and hot-reloads it on file change.
package config

import (
	"time"

	"github.com/ManuGH/vidresolve/internal/domain/video/resolve"
)

// Cache backends.
const (
	CacheBackendMemory = "memory"
	CacheBackendRedis  = "redis"
	CacheBackendNone   = "none"
)

// Telemetry exporters.
const (
	ExporterGRPC = "grpc"
	ExporterHTTP = "http"
)

// AppConfig is the effective configuration after all layers are merged.
type AppConfig struct {
	Version    string          `yaml:"-"`
	LogLevel   string          `yaml:"logLevel"`
	LogService string          `yaml:"logService"`
	API        APIConfig       `yaml:"api"`
	Resolver   ResolverConfig  `yaml:"resolver"`
	Playback   PlaybackConfig  `yaml:"playback"`
	Cache      CacheConfig     `yaml:"cache"`
	Telemetry  TelemetryConfig `yaml:"telemetry"`
}

// APIConfig configures the HTTP surface.
type APIConfig struct {
	ListenAddr         string   `yaml:"listenAddr"`
	RateLimitPerMinute int      `yaml:"rateLimitPerMinute"` // per client IP, 0 disables
	AllowedOrigins     []string `yaml:"allowedOrigins,omitempty"`
}

// ResolverConfig holds the synthesis inputs. Changing either invalidates memoized results.
type ResolverConfig struct {
	Origin               string `yaml:"origin"`
	PlaceholderThumbnail string `yaml:"placeholderThumbnail"`
}

// PlaybackConfig tunes the player lifecycle.
type PlaybackConfig struct {
	LoadTimeout         time.Duration `yaml:"loadTimeout"`
	CompletionThreshold float64       `yaml:"completionThreshold"`
	SessionIdleTimeout  time.Duration `yaml:"sessionIdleTimeout"` // 0 keeps sessions until deleted
	SweepInterval       time.Duration `yaml:"sweepInterval"`
}

// CacheConfig selects the list memo backend.
type CacheConfig struct {
	Backend         string        `yaml:"backend"`
	TTL             time.Duration `yaml:"ttl"` // 0 means entries live until invalidated
	CleanupInterval time.Duration `yaml:"cleanupInterval"`
	ListIdleTimeout time.Duration `yaml:"listIdleTimeout"` // 0 keeps list memos until deleted
	Redis           RedisConfig   `yaml:"redis"`
}

// RedisConfig addresses the shared memo store.
type RedisConfig struct {
	Addr      string `yaml:"addr"`
	Password  string `yaml:"password"`
	DB        int    `yaml:"db"`
	Namespace string `yaml:"namespace"`
}

// TelemetryConfig configures OpenTelemetry tracing.
type TelemetryConfig struct {
	Enabled      bool    `yaml:"enabled"`
	Exporter     string  `yaml:"exporter"`
	Endpoint     string  `yaml:"endpoint"`
	SamplingRate float64 `yaml:"samplingRate"`
}

// Default returns the built-in configuration.
func Default() AppConfig {
	return AppConfig{
		LogLevel:   "info",
		LogService: "vidresolve",
		API: APIConfig{
			ListenAddr:         ":8088",
			RateLimitPerMinute: 600,
		},
		Resolver: ResolverConfig{
			PlaceholderThumbnail: resolve.DefaultPlaceholderThumbnail,
		},
		Playback: PlaybackConfig{
			LoadTimeout:         8 * time.Second,
			CompletionThreshold: 0.9,
			SessionIdleTimeout:  30 * time.Minute,
			SweepInterval:       time.Minute,
		},
		Cache: CacheConfig{
			Backend:         CacheBackendMemory,
			TTL:             time.Hour,
			CleanupInterval: 5 * time.Minute,
			ListIdleTimeout: 30 * time.Minute,
			Redis: RedisConfig{
				Addr:      "localhost:6379",
				Namespace: "vidresolve:memo",
			},
		},
		Telemetry: TelemetryConfig{
			Exporter:     ExporterGRPC,
			Endpoint:     "localhost:4317",
			SamplingRate: 1.0,
		},
	}
}

// ResolveOptions maps the resolver section onto synthesis options.
func (c AppConfig) ResolveOptions() resolve.Options {
	return resolve.Options{
		Origin:               c.Resolver.Origin,
		PlaceholderThumbnail: c.Resolver.PlaceholderThumbnail,
	}
}
