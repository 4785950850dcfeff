// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package memo

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/go-cmp/cmp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/ManuGH/vidresolve/internal/cache"
	"github.com/ManuGH/vidresolve/internal/domain/video/model"
	"github.com/ManuGH/vidresolve/internal/domain/video/resolve"
)

type countingResolver struct {
	calls atomic.Int64
	gate  chan struct{}
	opts  resolve.Options
}

func (c *countingResolver) Resolve(raw string) model.ResolvedVideo {
	c.calls.Add(1)
	if c.gate != nil {
		<-c.gate
	}
	return resolve.Resolve(raw, c.opts)
}

var lessonRefs = []string{
	"https://youtu.be/dQw4w9WgXcQ",
	"https://iframe.mediadelivery.net/play/12345/abcde-fghij",
	`<iframe src="https://player.vimeo.com/video/1"></iframe>`,
	"",
}

func newMemo(r Resolver) *Memo {
	return New(r, cache.NewMemoryCache[model.ResolvedVideo](0), 0, zerolog.Nop())
}

func TestMemo_ResolvesOncePerReference(t *testing.T) {
	r := &countingResolver{}
	m := newMemo(r)

	first := m.Resolve(lessonRefs[0])
	second := m.Resolve(lessonRefs[0])

	assert.Equal(t, first, second)
	assert.Equal(t, int64(1), r.calls.Load())
	assert.Equal(t, int64(1), m.Stats().Hits)
}

func TestMemo_MatchesUnmemoizedResolution(t *testing.T) {
	opts := resolve.Options{Origin: "https://academy.example"}
	m := newMemo(&countingResolver{opts: opts})

	for pass := 0; pass < 3; pass++ {
		got := m.ResolveAll("lesson-list", lessonRefs)
		require.Len(t, got, len(lessonRefs))
		for i, raw := range lessonRefs {
			if diff := cmp.Diff(resolve.Resolve(raw, opts), got[i]); diff != "" {
				t.Errorf("pass %d ref %q (-want +got):\n%s", pass, raw, diff)
			}
		}
	}
}

func TestMemo_BindInvalidatesOnIdentityChange(t *testing.T) {
	r := &countingResolver{}
	m := newMemo(r)

	assert.False(t, m.Bind("list-a"), "first bind is not an invalidation")
	m.Resolve(lessonRefs[0])
	assert.False(t, m.Bind("list-a"))
	m.Resolve(lessonRefs[0])
	require.Equal(t, int64(1), r.calls.Load())

	assert.True(t, m.Bind("list-b"))
	assert.Equal(t, "list-b", m.Identity())
	assert.Equal(t, 0, m.Stats().CurrentSize)

	m.Resolve(lessonRefs[0])
	assert.Equal(t, int64(2), r.calls.Load())
}

func TestMemo_ResolveAllDerivesIdentity(t *testing.T) {
	m := newMemo(&countingResolver{})

	m.ResolveAll("", lessonRefs)
	assert.Equal(t, ListIdentity(lessonRefs), m.Identity())

	m.ResolveAll("", lessonRefs[:2])
	assert.Equal(t, ListIdentity(lessonRefs[:2]), m.Identity())
}

func TestMemo_Reset(t *testing.T) {
	r := &countingResolver{}
	m := newMemo(r)
	m.Bind("list-a")

	m.Resolve(lessonRefs[1])
	m.Reset()
	m.Resolve(lessonRefs[1])

	assert.Equal(t, int64(2), r.calls.Load())
	assert.Equal(t, "list-a", m.Identity(), "reset keeps the binding")
}

func TestMemo_ConcurrentFirstLookupsCollapse(t *testing.T) {
	r := &countingResolver{gate: make(chan struct{})}
	m := newMemo(r)

	const readers = 16
	var wg sync.WaitGroup
	results := make([]model.ResolvedVideo, readers)
	for i := 0; i < readers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = m.Resolve(lessonRefs[0])
		}(i)
	}

	require.Eventually(t, func() bool { return r.calls.Load() >= 1 }, time.Second, time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	close(r.gate)
	wg.Wait()

	for _, v := range results {
		assert.Equal(t, results[0], v)
	}
	assert.LessOrEqual(t, r.calls.Load(), int64(readers))
	assert.Equal(t, "dQw4w9WgXcQ", results[0].CanonicalID)
}

func TestMemo_ResetDuringResolutionDoesNotRepopulate(t *testing.T) {
	r := &countingResolver{gate: make(chan struct{})}
	m := newMemo(r)

	done := make(chan model.ResolvedVideo)
	go func() { done <- m.Resolve(lessonRefs[0]) }()

	require.Eventually(t, func() bool { return r.calls.Load() == 1 }, time.Second, time.Millisecond)
	m.Reset()
	close(r.gate)
	<-done

	assert.Equal(t, 0, m.Stats().CurrentSize, "a result computed before reset must not be stored")
}

func TestMemo_NilBackendDisablesCaching(t *testing.T) {
	r := &countingResolver{}
	m := New(r, nil, 0, zerolog.Nop())

	m.Resolve(lessonRefs[0])
	m.Resolve(lessonRefs[0])
	assert.Equal(t, int64(2), r.calls.Load())
}

func TestMemo_RedisBackend(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	r := &countingResolver{}
	backend := cache.NewRedisCache[model.ResolvedVideo](client, "vidresolve:memo:"+Key("list-a"), zerolog.Nop())
	m := New(r, backend, time.Hour, zerolog.Nop())

	want := resolve.Resolve(lessonRefs[1], resolve.Options{})
	assert.Equal(t, want, m.Resolve(lessonRefs[1]))
	assert.Equal(t, want, m.Resolve(lessonRefs[1]), "value must survive the JSON round trip")
	assert.Equal(t, int64(1), r.calls.Load())

	m.Bind("a")
	m.Bind("b")
	assert.Equal(t, 0, backend.Stats().CurrentSize)

	raw := "https://cdn.example.com/\xff.mp4"
	assert.Equal(t, resolve.Resolve(raw, resolve.Options{}), m.Resolve(raw))
	assert.Equal(t, raw, m.Resolve(raw).EmbedURL, "invalid UTF-8 is resolved directly, never through JSON")
	assert.Equal(t, 0, backend.Stats().CurrentSize)
}

func TestRegistry(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	r := &countingResolver{}
	reg := NewRegistry(r, func(string) cache.Cache[model.ResolvedVideo] {
		return cache.NewMemoryCache[model.ResolvedVideo](time.Minute)
	}, 0, zerolog.Nop())
	defer reg.Close()

	a := reg.For("sidebar")
	assert.Same(t, a, reg.For("sidebar"))
	b := reg.For("tabs")
	assert.NotSame(t, a, b)
	assert.Equal(t, 2, reg.Len())

	a.Resolve(lessonRefs[0])
	b.Resolve(lessonRefs[0])
	require.Equal(t, int64(2), r.calls.Load(), "memos are per list")

	reg.ResetAll()
	a.Resolve(lessonRefs[0])
	assert.Equal(t, int64(3), r.calls.Load())

	reg.Drop("tabs")
	assert.Equal(t, 1, reg.Len())
	assert.NotSame(t, b, reg.For("tabs"))
}

func TestRegistry_NilFactory(t *testing.T) {
	r := &countingResolver{}
	reg := NewRegistry(r, nil, 0, zerolog.Nop())

	m := reg.For("x")
	m.Resolve(lessonRefs[0])
	m.Resolve(lessonRefs[0])
	assert.Equal(t, int64(2), r.calls.Load())
}

func TestListIdentity(t *testing.T) {
	a := ListIdentity([]string{"x", "y"})
	assert.Equal(t, a, ListIdentity([]string{"x", "y"}))
	assert.NotEqual(t, a, ListIdentity([]string{"y", "x"}), "order is part of identity")
	assert.NotEqual(t, ListIdentity([]string{"ab", "c"}), ListIdentity([]string{"a", "bc"}))
	assert.Len(t, a, 64)
	assert.Len(t, Key("anything"), 32)
}

func TestRegistry_SharedRedisKeepsOptionsApart(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	factory := func(listID string) cache.Cache[model.ResolvedVideo] {
		return cache.NewRedisCache[model.ResolvedVideo](client, "vidresolve:memo:"+Key(listID), zerolog.Nop())
	}
	oldOpts := resolve.Options{Origin: "https://old.example"}
	newOpts := resolve.Options{Origin: "https://new.example"}

	// Same list, same backend: a restarted daemon or a second replica with new options.
	before := NewRegistry(resolve.NewResolver(oldOpts), factory, time.Hour, zerolog.Nop())
	after := NewRegistry(resolve.NewResolver(newOpts), factory, time.Hour, zerolog.Nop())

	refs := lessonRefs[:1]
	got := before.For("lesson-1").ResolveAll("", refs)
	require.Equal(t, resolve.Resolve(refs[0], oldOpts), got[0])

	got = after.For("lesson-1").ResolveAll("", refs)
	if diff := cmp.Diff(resolve.Resolve(refs[0], newOpts), got[0]); diff != "" {
		t.Fatalf("memoized result differs from direct resolution (-want +got):\n%s", diff)
	}
	assert.Len(t, mr.Keys(), 2, "entries are written per options fingerprint")

	// Replicas with identical options share entries.
	peer := NewRegistry(resolve.NewResolver(oldOpts), factory, time.Hour, zerolog.Nop())
	got = peer.For("lesson-1").ResolveAll("", refs)
	assert.Equal(t, resolve.Resolve(refs[0], oldOpts), got[0])
	assert.Len(t, mr.Keys(), 2)
}

func newSweptRegistry(now *time.Time) *Registry {
	reg := NewRegistry(&countingResolver{}, func(string) cache.Cache[model.ResolvedVideo] {
		return cache.NewMemoryCache[model.ResolvedVideo](time.Minute)
	}, 0, zerolog.Nop())
	reg.now = func() time.Time { return *now }
	return reg
}

func TestSweeper_ReleasesIdleMemos(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	now := time.Unix(1_700_000_000, 0)
	reg := newSweptRegistry(&now)
	defer reg.Close()
	s := &Sweeper{Registry: reg, Conf: SweeperConfig{IdleTimeout: 10 * time.Minute}}

	stale := reg.For("stale")
	stale.Resolve(lessonRefs[0])
	now = now.Add(6 * time.Minute)
	active := reg.For("active")
	now = now.Add(5 * time.Minute)

	assert.Equal(t, 1, s.SweepOnce())
	assert.Equal(t, 1, reg.Len())
	assert.Equal(t, 0, stale.Stats().CurrentSize)
	assert.Same(t, active, reg.For("active"))
	assert.NotSame(t, stale, reg.For("stale"))

	assert.Equal(t, 0, s.SweepOnce(), "both lists were just used")
}

func TestSweeper_BoundsRotatingListIDs(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	now := time.Unix(1_700_000_000, 0)
	reg := newSweptRegistry(&now)
	s := &Sweeper{Registry: reg, Conf: SweeperConfig{IdleTimeout: time.Minute}}

	for i := 0; i < 200; i++ {
		reg.For(fmt.Sprintf("list-%d", i)).ResolveAll("", lessonRefs[:1])
	}
	require.Equal(t, 200, reg.Len())

	now = now.Add(2 * time.Minute)
	assert.Equal(t, 200, s.SweepOnce())
	assert.Equal(t, 0, reg.Len())
}

func TestSweeper_Disabled(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	reg := newSweptRegistry(&now)
	defer reg.Close()
	reg.For("a")
	now = now.Add(24 * time.Hour)

	s := &Sweeper{Registry: reg}
	assert.Equal(t, 0, s.SweepOnce())
	s.Run(context.Background())
	assert.Equal(t, 1, reg.Len())
}

func TestSweeper_RunStopsOnCancel(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	reg := NewRegistry(&countingResolver{}, nil, 0, zerolog.Nop())
	s := &Sweeper{Registry: reg, Conf: SweeperConfig{Interval: 5 * time.Millisecond, IdleTimeout: time.Hour}}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("sweeper did not stop")
	}
}
