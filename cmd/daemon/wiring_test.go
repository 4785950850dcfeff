// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuGH/vidresolve/internal/config"
	"github.com/ManuGH/vidresolve/internal/domain/video/memo"
	"github.com/ManuGH/vidresolve/internal/domain/video/model"
)

const youtubeRef = "https://youtu.be/dQw4w9WgXcQ"

func TestMemoBackend_None(t *testing.T) {
	factory, client, err := memoBackend(context.Background(), config.CacheConfig{Backend: config.CacheBackendNone})
	require.NoError(t, err)
	assert.Nil(t, factory)
	assert.Nil(t, client)
}

func TestMemoBackend_Memory(t *testing.T) {
	factory, client, err := memoBackend(context.Background(), config.CacheConfig{Backend: config.CacheBackendMemory})
	require.NoError(t, err)
	require.NotNil(t, factory)
	assert.Nil(t, client)

	a, b := factory("a"), factory("b")
	a.Set("k", model.ResolvedVideo{Provider: model.ProviderGeneric}, 0)
	_, ok := b.Get("k")
	assert.False(t, ok, "each list gets its own backend")
	_, ok = a.Get("k")
	assert.True(t, ok)
}

func TestMemoBackend_Redis(t *testing.T) {
	mr := miniredis.RunT(t)
	factory, client, err := memoBackend(context.Background(), config.CacheConfig{
		Backend: config.CacheBackendRedis,
		Redis:   config.RedisConfig{Addr: mr.Addr(), Namespace: "test:memo"},
	})
	require.NoError(t, err)
	require.NotNil(t, client)
	t.Cleanup(func() { _ = client.Close() })

	listID := "course/42 lesson list"
	backend := factory(listID)
	want := model.ResolvedVideo{Provider: model.ProviderYouTube, CanonicalID: "dQw4w9WgXcQ", EmbedURL: "https://www.youtube.com/embed/dQw4w9WgXcQ"}
	backend.Set("ref", want, 0)

	got, ok := backend.Get("ref")
	require.True(t, ok)
	assert.Equal(t, want, got)

	keys := mr.Keys()
	require.Len(t, keys, 1)
	assert.True(t, strings.HasPrefix(keys[0], "test:memo:"+memo.Key(listID)+":"), keys[0])
	assert.NotContains(t, keys[0], " ")
}

func TestMemoBackend_RedisUnreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, _, err := memoBackend(context.Background(), config.CacheConfig{
		Backend: config.CacheBackendRedis,
		Redis:   config.RedisConfig{Addr: addr},
	})
	require.Error(t, err)
}

func TestBuildComponents_ServesAPI(t *testing.T) {
	cfg := config.Default()
	comps, err := buildComponents(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, comps.close()) })

	srv := httptest.NewServer(comps.server.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/v1/resolve?reference=" + youtubeRef)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "youtube", body["provider"])

	ready, err := http.Get(srv.URL + "/readyz")
	require.NoError(t, err)
	ready.Body.Close()
	assert.Equal(t, http.StatusOK, ready.StatusCode)

	comps.health.MarkDraining()
	ready, err = http.Get(srv.URL + "/readyz")
	require.NoError(t, err)
	ready.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, ready.StatusCode)
}

func TestBuildComponents_RedisReadiness(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := config.Default()
	cfg.Cache.Backend = config.CacheBackendRedis
	cfg.Cache.Redis.Addr = mr.Addr()

	comps, err := buildComponents(context.Background(), cfg)
	require.NoError(t, err)
	require.NotNil(t, comps.redis)
	t.Cleanup(func() { _ = comps.close() })

	resp := comps.health.Ready(context.Background())
	assert.True(t, resp.Ready)

	// The cache is optional, so losing it degrades rather than fails readiness.
	mr.Close()
	resp = comps.health.Ready(context.Background())
	assert.True(t, resp.Ready)
}

func TestApplyConfig_ResetsMemosOnResolverChange(t *testing.T) {
	cfg := config.Default()
	cfg.Cache.CleanupInterval = 0
	comps, err := buildComponents(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = comps.close() })

	m := comps.lists.For("lesson")
	before := m.Resolve(youtubeRef)
	assert.NotContains(t, before.EmbedURL, "origin=")
	require.Equal(t, 1, m.Stats().CurrentSize)

	// Unchanged resolver options keep the memo.
	comps.applyConfig(cfg)
	assert.Equal(t, 1, m.Stats().CurrentSize)

	next := cfg
	next.Resolver.Origin = "https://learn.example.com"
	next.Playback.CompletionThreshold = 0.5
	comps.applyConfig(next)
	assert.Equal(t, 0, m.Stats().CurrentSize)

	after := m.Resolve(youtubeRef)
	assert.Contains(t, after.EmbedURL, "origin=")

	// Sessions keep working after a reload.
	c, snap, err := comps.sessions.Create(youtubeRef)
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.Equal(t, uint64(1), snap.Generation)
}

func TestComponentsClose_StopsMemoryBackends(t *testing.T) {
	cfg := config.Default()
	comps, err := buildComponents(context.Background(), cfg)
	require.NoError(t, err)

	comps.lists.For("a").Resolve(youtubeRef)
	_, _, err = comps.sessions.Create(youtubeRef)
	require.NoError(t, err)

	require.NoError(t, comps.close())
	assert.Equal(t, 0, comps.lists.Len())
	assert.Equal(t, 0, comps.sessions.Len())
}

func TestListSweeper_UsesCacheSettings(t *testing.T) {
	cfg := config.Default()
	comps, err := buildComponents(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = comps.close() })

	s := comps.listSweeper(cfg.Cache)
	assert.Same(t, comps.lists, s.Registry)
	assert.Equal(t, cfg.Cache.CleanupInterval, s.Conf.Interval)
	assert.Equal(t, 30*time.Minute, s.Conf.IdleTimeout)

	cfg.Cache.CleanupInterval = 0
	assert.Equal(t, time.Minute, comps.listSweeper(cfg.Cache).Conf.Interval)
}
