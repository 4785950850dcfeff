// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package memo memoizes video resolutions for list-style consumers that resolve the
// same references on every render. A memo is an optimization only: resolving
// without it yields identical results.
package memo

import (
	"strconv"
	"sync"
	"sync/atomic"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/ManuGH/vidresolve/internal/cache"
	"github.com/ManuGH/vidresolve/internal/domain/video/model"
	xglog "github.com/ManuGH/vidresolve/internal/log"
	"github.com/ManuGH/vidresolve/internal/metrics"
)

// Resolver is the resolution function a memo fronts.
type Resolver interface {
	Resolve(raw string) model.ResolvedVideo
}

// Fingerprinter is implemented by resolvers whose output depends on swappable
// options. The fingerprint is part of every memo key, so entries written under other
// options, by an earlier process or another replica sharing the backend, never match.
type Fingerprinter interface {
	Fingerprint() string
}

// Memo caches ResolvedVideo values by raw reference for one list. It is invalidated
// only when the list's reference set changes identity or on an explicit Reset.
type Memo struct {
	resolver Resolver
	backend  cache.Cache[model.ResolvedVideo]
	ttl      time.Duration
	logger   zerolog.Logger

	// mu orders backend writes against invalidation: writes hold it shared, Reset exclusive.
	mu       sync.RWMutex
	epoch    uint64
	identity string

	group singleflight.Group

	lastUsed atomic.Int64 // unix nanos of the last Registry.For
}

// New creates a memo over backend. A ttl <= 0 keeps entries until invalidation.
func New(resolver Resolver, backend cache.Cache[model.ResolvedVideo], ttl time.Duration, logger zerolog.Logger) *Memo {
	if backend == nil {
		backend = cache.NewNoOpCache[model.ResolvedVideo]()
	}
	return &Memo{
		resolver: resolver,
		backend:  backend,
		ttl:      ttl,
		logger:   logger,
	}
}

// Resolve returns the memoized resolution of raw, resolving it on first use.
// Concurrent first lookups of the same reference share one resolution.
func (m *Memo) Resolve(raw string) model.ResolvedVideo {
	// Backends store JSON, which cannot carry invalid UTF-8 verbatim.
	if !utf8.ValidString(raw) {
		return m.resolver.Resolve(raw)
	}

	fp := m.fingerprint()
	key := Key(fp + "\x00" + raw)
	if v, ok := m.backend.Get(key); ok {
		metrics.IncMemoLookup(true)
		return v
	}
	metrics.IncMemoLookup(false)

	m.mu.RLock()
	epoch := m.epoch
	m.mu.RUnlock()

	out, _, _ := m.group.Do(strconv.FormatUint(epoch, 10)+"/"+key, func() (any, error) {
		v := m.resolver.Resolve(raw)
		m.mu.RLock()
		// An options swap during resolution leaves v unattributable to fp.
		if m.epoch == epoch && m.fingerprint() == fp {
			m.backend.Set(key, v, m.ttl)
		}
		m.mu.RUnlock()
		return v, nil
	})
	return out.(model.ResolvedVideo)
}

// ResolveAll binds the memo to identity and resolves refs in order.
// An empty identity is derived from refs.
func (m *Memo) ResolveAll(identity string, refs []string) []model.ResolvedVideo {
	if identity == "" {
		identity = ListIdentity(refs)
	}
	m.Bind(identity)

	out := make([]model.ResolvedVideo, len(refs))
	for i, raw := range refs {
		out[i] = m.Resolve(raw)
	}
	return out
}

// Bind associates the memo with a list identity. When the identity differs from the
// bound one, cached entries are dropped. It reports whether an invalidation happened.
func (m *Memo) Bind(identity string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.identity == identity {
		return false
	}
	first := m.identity == ""
	m.identity = identity
	if first {
		return false
	}
	m.invalidateLocked("identity_changed")
	return true
}

// Identity returns the currently bound list identity.
func (m *Memo) Identity() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.identity
}

// Reset drops every cached entry while keeping the bound identity.
func (m *Memo) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.invalidateLocked("reset")
}

// Stats exposes the backend statistics.
func (m *Memo) Stats() cache.CacheStats {
	return m.backend.Stats()
}

func (m *Memo) invalidateLocked(reason string) {
	m.epoch++
	m.backend.Clear()
	metrics.IncMemoInvalidation()
	m.logger.Debug().
		Str(xglog.FieldEvent, "memo.invalidated").
		Str("reason", reason).
		Str("identity", m.identity).
		Msg("resolution memo invalidated")
}

func (m *Memo) fingerprint() string {
	if f, ok := m.resolver.(Fingerprinter); ok {
		return f.Fingerprint()
	}
	return ""
}

func (m *Memo) touch(now time.Time) {
	m.lastUsed.Store(now.UnixNano())
}

func (m *Memo) idleSince(cutoff time.Time) bool {
	return m.lastUsed.Load() < cutoff.UnixNano()
}

func (m *Memo) close() {
	if s, ok := m.backend.(interface{ Stop() }); ok {
		s.Stop()
	}
}
