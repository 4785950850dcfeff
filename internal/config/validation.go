// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"strings"

	"github.com/ManuGH/vidresolve/internal/validate"
)

// Validate validates an AppConfig using the centralized validation package
func Validate(cfg AppConfig) error {
	v := validate.New()

	v.OneOf("logLevel", strings.ToLower(cfg.LogLevel), validate.LogLevels)

	v.ListenAddr("api.listenAddr", cfg.API.ListenAddr)
	v.NonNegative("api.rateLimitPerMinute", cfg.API.RateLimitPerMinute)
	for _, origin := range cfg.API.AllowedOrigins {
		if origin == "*" {
			continue
		}
		v.Origin("api.allowedOrigins", origin)
	}

	// Empty origin means embeds are built without the origin parameter.
	if cfg.Resolver.Origin != "" {
		v.Origin("resolver.origin", cfg.Resolver.Origin)
	}
	v.NotEmpty("resolver.placeholderThumbnail", cfg.Resolver.PlaceholderThumbnail)
	// Relative asset paths are served by the embedding site; absolute ones must be web URLs.
	if strings.Contains(cfg.Resolver.PlaceholderThumbnail, "://") {
		v.URL("resolver.placeholderThumbnail", cfg.Resolver.PlaceholderThumbnail, []string{"http", "https"})
	}

	v.PositiveDuration("playback.loadTimeout", cfg.Playback.LoadTimeout)
	if cfg.Playback.CompletionThreshold <= 0 || cfg.Playback.CompletionThreshold > 1 {
		v.AddError("playback.completionThreshold", "value must be in (0, 1]", cfg.Playback.CompletionThreshold)
	}
	v.NonNegativeDuration("playback.sessionIdleTimeout", cfg.Playback.SessionIdleTimeout)
	if cfg.Playback.SessionIdleTimeout > 0 {
		v.PositiveDuration("playback.sweepInterval", cfg.Playback.SweepInterval)
	}

	v.OneOf("cache.backend", cfg.Cache.Backend, []string{CacheBackendMemory, CacheBackendRedis, CacheBackendNone})
	v.NonNegativeDuration("cache.ttl", cfg.Cache.TTL)
	v.NonNegativeDuration("cache.listIdleTimeout", cfg.Cache.ListIdleTimeout)
	switch cfg.Cache.Backend {
	case CacheBackendMemory:
		v.PositiveDuration("cache.cleanupInterval", cfg.Cache.CleanupInterval)
	case CacheBackendRedis:
		v.NotEmpty("cache.redis.addr", cfg.Cache.Redis.Addr)
		v.Range("cache.redis.db", cfg.Cache.Redis.DB, 0, 15)
		v.NotEmpty("cache.redis.namespace", cfg.Cache.Redis.Namespace)
	}

	if cfg.Telemetry.Enabled {
		v.OneOf("telemetry.exporter", cfg.Telemetry.Exporter, []string{ExporterGRPC, ExporterHTTP})
		v.NotEmpty("telemetry.endpoint", cfg.Telemetry.Endpoint)
		v.FloatRange("telemetry.samplingRate", cfg.Telemetry.SamplingRate, 0, 1)
	}

	return v.Err()
}
