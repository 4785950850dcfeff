// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package main

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/ManuGH/vidresolve/internal/api"
	"github.com/ManuGH/vidresolve/internal/cache"
	"github.com/ManuGH/vidresolve/internal/config"
	"github.com/ManuGH/vidresolve/internal/domain/playback/controller"
	"github.com/ManuGH/vidresolve/internal/domain/video/memo"
	"github.com/ManuGH/vidresolve/internal/domain/video/model"
	"github.com/ManuGH/vidresolve/internal/domain/video/resolve"
	"github.com/ManuGH/vidresolve/internal/health"
	xglog "github.com/ManuGH/vidresolve/internal/log"
)

// components is the wired domain graph behind one daemon.
type components struct {
	resolver *resolve.Resolver
	lists    *memo.Registry
	sessions *controller.Registry
	health   *health.Manager
	server   *api.Server
	redis    *redis.Client
}

// memoBackend builds the per-list cache factory for the configured backend.
// The returned client is nil unless the backend is redis.
func memoBackend(ctx context.Context, cfg config.CacheConfig) (memo.BackendFactory, *redis.Client, error) {
	switch cfg.Backend {
	case config.CacheBackendNone:
		return nil, nil, nil
	case config.CacheBackendRedis:
		logger := xglog.WithComponent("cache")
		client, err := cache.NewRedisClient(ctx, cache.RedisConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}, logger)
		if err != nil {
			return nil, nil, err
		}
		// List ids are hashed so arbitrary ids cannot break the key namespace.
		factory := func(listID string) cache.Cache[model.ResolvedVideo] {
			return cache.NewRedisCache[model.ResolvedVideo](client, cfg.Redis.Namespace+":"+memo.Key(listID), logger)
		}
		return factory, client, nil
	default:
		factory := func(string) cache.Cache[model.ResolvedVideo] {
			return cache.NewMemoryCache[model.ResolvedVideo](cfg.CleanupInterval)
		}
		return factory, nil, nil
	}
}

func buildComponents(ctx context.Context, cfg config.AppConfig) (*components, error) {
	factory, client, err := memoBackend(ctx, cfg.Cache)
	if err != nil {
		return nil, fmt.Errorf("cache backend %s: %w", cfg.Cache.Backend, err)
	}

	resolver := resolve.NewResolver(cfg.ResolveOptions())
	lists := memo.NewRegistry(resolver, factory, cfg.Cache.TTL, xglog.WithComponent("memo"))
	sessions := controller.NewRegistry(resolver, controller.Options{
		LoadTimeout:         cfg.Playback.LoadTimeout,
		CompletionThreshold: cfg.Playback.CompletionThreshold,
	})

	hm := health.NewManager(cfg.Version)
	hm.RegisterChecker(health.NewGaugeChecker("sessions", "active", sessions.Len))
	hm.RegisterChecker(health.NewGaugeChecker("lists", "memos", lists.Len))
	if client != nil {
		// A failing cache degrades to re-resolution, so readiness only reports it.
		hm.RegisterChecker(health.NewPingChecker("redis", func(ctx context.Context) error {
			return client.Ping(ctx).Err()
		}, 2*time.Second, true))
	}

	tracingService := ""
	if cfg.Telemetry.Enabled {
		tracingService = cfg.LogService
	}
	server := api.NewServer(api.Config{
		AllowedOrigins:     cfg.API.AllowedOrigins,
		RateLimitPerMinute: cfg.API.RateLimitPerMinute,
		TracingService:     tracingService,
	}, api.Deps{
		Resolver: resolver,
		Lists:    lists,
		Sessions: sessions,
		Health:   hm,
		Metrics:  promhttp.Handler(),
	})

	return &components{
		resolver: resolver,
		lists:    lists,
		sessions: sessions,
		health:   hm,
		server:   server,
		redis:    client,
	}, nil
}

// listSweeper releases idle list memos on the cache cleanup cadence.
func (c *components) listSweeper(cfg config.CacheConfig) *memo.Sweeper {
	interval := cfg.CleanupInterval
	if interval <= 0 {
		interval = time.Minute
	}
	return &memo.Sweeper{
		Registry: c.lists,
		Conf:     memo.SweeperConfig{Interval: interval, IdleTimeout: cfg.ListIdleTimeout},
	}
}

// applyConfig pushes the live-reloadable settings into running components.
// Cached resolutions were synthesized with the old options, so a resolver
// change resets every list memo.
func (c *components) applyConfig(cfg config.AppConfig) {
	xglog.Configure(xglog.Config{Level: cfg.LogLevel, Service: cfg.LogService, Version: cfg.Version})

	if c.resolver.SetOptions(cfg.ResolveOptions()) {
		c.lists.ResetAll()
	}
	c.sessions.SetTiming(cfg.Playback.LoadTimeout, cfg.Playback.CompletionThreshold)

	logger := xglog.WithComponent("daemon")
	logger.Info().
		Str(xglog.FieldEvent, "config.applied").
		Str("log_level", cfg.LogLevel).
		Msg("reloaded configuration applied")
}

// close releases sessions, memos and the redis client, in that order.
func (c *components) close() error {
	c.sessions.CloseAll()
	c.lists.Close()
	if c.redis != nil {
		return c.redis.Close()
	}
	return nil
}
