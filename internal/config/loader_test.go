// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuGH/vidresolve/internal/domain/video/resolve"
	"github.com/ManuGH/vidresolve/internal/validate"
)

func writeConfig(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_DefaultsOnly(t *testing.T) {
	cfg, err := NewLoader("", "v1.2.3").Load()
	require.NoError(t, err)

	want := Default()
	want.Version = "v1.2.3"
	assert.Equal(t, want, cfg)
	assert.Equal(t, 8*time.Second, cfg.Playback.LoadTimeout)
	assert.Equal(t, resolve.DefaultPlaceholderThumbnail, cfg.Resolver.PlaceholderThumbnail)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, t.TempDir(), `
logLevel: DEBUG
api:
  listenAddr: "127.0.0.1:9000"
  allowedOrigins: ["https://academy.example"]
resolver:
  origin: https://academy.example
playback:
  loadTimeout: 12s
  completionThreshold: 0.8
cache:
  backend: redis
  redis:
    addr: redis:6379
    db: 2
`)
	cfg, err := NewLoader(path, "").Load()
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "127.0.0.1:9000", cfg.API.ListenAddr)
	assert.Equal(t, []string{"https://academy.example"}, cfg.API.AllowedOrigins)
	assert.Equal(t, "https://academy.example", cfg.Resolver.Origin)
	assert.Equal(t, 12*time.Second, cfg.Playback.LoadTimeout)
	assert.InDelta(t, 0.8, cfg.Playback.CompletionThreshold, 1e-9)
	assert.Equal(t, CacheBackendRedis, cfg.Cache.Backend)
	assert.Equal(t, "redis:6379", cfg.Cache.Redis.Addr)
	assert.Equal(t, 2, cfg.Cache.Redis.DB)

	// Untouched keys keep their defaults.
	assert.Equal(t, "vidresolve:memo", cfg.Cache.Redis.Namespace)
	assert.Equal(t, 600, cfg.API.RateLimitPerMinute)
	assert.Equal(t, 30*time.Minute, cfg.Playback.SessionIdleTimeout)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, t.TempDir(), `
resolver:
  origin: https://file.example
playback:
  loadTimeout: 12s
`)
	t.Setenv("VIDRESOLVE_RESOLVER_ORIGIN", "https://env.example")
	t.Setenv("VIDRESOLVE_LOAD_TIMEOUT", "3s")
	t.Setenv("VIDRESOLVE_ALLOWED_ORIGINS", "https://a.example, ,https://b.example")
	t.Setenv("VIDRESOLVE_TELEMETRY_ENABLED", "yes")
	t.Setenv("VIDRESOLVE_TELEMETRY_SAMPLING_RATE", "0.25")

	loader := NewLoader(path, "")
	cfg, err := loader.Load()
	require.NoError(t, err)

	assert.Equal(t, "https://env.example", cfg.Resolver.Origin)
	assert.Equal(t, 3*time.Second, cfg.Playback.LoadTimeout)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.API.AllowedOrigins)
	assert.True(t, cfg.Telemetry.Enabled)
	assert.InDelta(t, 0.25, cfg.Telemetry.SamplingRate, 1e-9)

	assert.Contains(t, loader.ConsumedEnvKeys, "VIDRESOLVE_RESOLVER_ORIGIN")
	assert.Contains(t, loader.ConsumedEnvKeys, "VIDRESOLVE_REDIS_PASSWORD")
}

func TestLoad_InvalidEnvFallsBackToLowerLayer(t *testing.T) {
	t.Setenv("VIDRESOLVE_LOAD_TIMEOUT", "soon")
	t.Setenv("VIDRESOLVE_REDIS_DB", "two")

	cfg, err := NewLoader("", "").Load()
	require.NoError(t, err)
	assert.Equal(t, 8*time.Second, cfg.Playback.LoadTimeout)
	assert.Equal(t, 0, cfg.Cache.Redis.DB)
}

func TestLoad_StrictUnknownField(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "resolver:\n  orign: https://typo.example\n")

	_, err := NewLoader(path, "").Load()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownConfigField), "got %v", err)
}

func TestLoad_FileErrors(t *testing.T) {
	dir := t.TempDir()

	t.Run("multiple documents", func(t *testing.T) {
		path := writeConfig(t, dir, "logLevel: info\n---\nlogLevel: debug\n")
		_, err := NewLoader(path, "").Load()
		assert.ErrorContains(t, err, "multiple documents")
	})

	t.Run("wrong extension", func(t *testing.T) {
		path := filepath.Join(dir, "config.json")
		require.NoError(t, os.WriteFile(path, []byte("{}"), 0o600))
		_, err := NewLoader(path, "").Load()
		assert.ErrorContains(t, err, "only YAML supported")
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := NewLoader(filepath.Join(dir, "absent.yaml"), "").Load()
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("empty file keeps defaults", func(t *testing.T) {
		path := writeConfig(t, dir, "")
		cfg, err := NewLoader(path, "").Load()
		require.NoError(t, err)
		assert.Equal(t, Default().API, cfg.API)
	})
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*AppConfig)
		fields []string
	}{
		{"defaults", func(*AppConfig) {}, nil},
		{"bad log level", func(c *AppConfig) { c.LogLevel = "loud" }, []string{"logLevel"}},
		{"origin with path", func(c *AppConfig) { c.Resolver.Origin = "https://academy.example/course" }, []string{"resolver.origin"}},
		{"wildcard cors", func(c *AppConfig) { c.API.AllowedOrigins = []string{"*"} }, nil},
		{"zero load timeout", func(c *AppConfig) { c.Playback.LoadTimeout = 0 }, []string{"playback.loadTimeout"}},
		{"threshold above one", func(c *AppConfig) { c.Playback.CompletionThreshold = 1.5 }, []string{"playback.completionThreshold"}},
		{"threshold zero", func(c *AppConfig) { c.Playback.CompletionThreshold = 0 }, []string{"playback.completionThreshold"}},
		{"idle sweep disabled", func(c *AppConfig) { c.Playback.SessionIdleTimeout, c.Playback.SweepInterval = 0, 0 }, nil},
		{"sweep needs interval", func(c *AppConfig) { c.Playback.SweepInterval = 0 }, []string{"playback.sweepInterval"}},
		{"unknown backend", func(c *AppConfig) { c.Cache.Backend = "disk" }, []string{"cache.backend"}},
		{"redis without addr", func(c *AppConfig) {
			c.Cache.Backend = CacheBackendRedis
			c.Cache.Redis.Addr = ""
		}, []string{"cache.redis.addr"}},
		{"telemetry exporter", func(c *AppConfig) {
			c.Telemetry.Enabled = true
			c.Telemetry.Exporter = "zipkin"
		}, []string{"telemetry.exporter"}},
		{"telemetry off ignores exporter", func(c *AppConfig) { c.Telemetry.Exporter = "zipkin" }, nil},
		{"list idle timeout negative", func(c *AppConfig) { c.Cache.ListIdleTimeout = -time.Second }, []string{"cache.listIdleTimeout"}},
		{"placeholder relative path", func(c *AppConfig) { c.Resolver.PlaceholderThumbnail = "/img/none.png" }, nil},
		{"placeholder absolute url", func(c *AppConfig) { c.Resolver.PlaceholderThumbnail = "https://cdn.example/none.png" }, nil},
		{"placeholder bad scheme", func(c *AppConfig) { c.Resolver.PlaceholderThumbnail = "ftp://cdn.example/none.png" }, []string{"resolver.placeholderThumbnail"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := Validate(cfg)
			if tt.fields == nil {
				require.NoError(t, err)
				return
			}
			var verr validate.ValidationError
			require.True(t, errors.As(err, &verr), "got %v", err)
			assert.Equal(t, tt.fields, verr.Fields())
		})
	}
}

func TestResolveOptions(t *testing.T) {
	cfg := Default()
	cfg.Resolver.Origin = "https://academy.example"
	opts := cfg.ResolveOptions()
	assert.Equal(t, "https://academy.example", opts.Origin)
	assert.Equal(t, resolve.DefaultPlaceholderThumbnail, opts.PlaceholderThumbnail)
}
