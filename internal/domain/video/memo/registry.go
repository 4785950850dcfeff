// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package memo

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/ManuGH/vidresolve/internal/cache"
	"github.com/ManuGH/vidresolve/internal/domain/video/model"
	xglog "github.com/ManuGH/vidresolve/internal/log"
)

// BackendFactory creates the cache backing the memo of one list.
type BackendFactory func(listID string) cache.Cache[model.ResolvedVideo]

// Registry owns one Memo per list id.
type Registry struct {
	resolver   Resolver
	newBackend BackendFactory
	ttl        time.Duration
	logger     zerolog.Logger
	now        func() time.Time

	mu    sync.Mutex
	memos map[string]*Memo
}

// NewRegistry creates a registry. A nil factory disables caching.
func NewRegistry(resolver Resolver, factory BackendFactory, ttl time.Duration, logger zerolog.Logger) *Registry {
	if factory == nil {
		factory = func(string) cache.Cache[model.ResolvedVideo] {
			return cache.NewNoOpCache[model.ResolvedVideo]()
		}
	}
	return &Registry{
		resolver:   resolver,
		newBackend: factory,
		ttl:        ttl,
		logger:     logger,
		now:        time.Now,
		memos:      make(map[string]*Memo),
	}
}

// For returns the memo for listID, creating it on first use. Every call counts as
// activity for the idle sweep.
func (r *Registry) For(listID string) *Memo {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, ok := r.memos[listID]
	if !ok {
		logger := r.logger.With().Str(xglog.FieldListID, listID).Logger()
		m = New(r.resolver, r.newBackend(listID), r.ttl, logger)
		r.memos[listID] = m
	}
	m.touch(r.now())
	return m
}

// Drop releases the memo for listID.
func (r *Registry) Drop(listID string) {
	r.mu.Lock()
	m, ok := r.memos[listID]
	delete(r.memos, listID)
	r.mu.Unlock()

	if ok {
		m.Reset()
		m.close()
	}
}

// dropIdle releases every memo not used since cutoff and returns how many it released.
func (r *Registry) dropIdle(cutoff time.Time) int {
	r.mu.Lock()
	var idle []*Memo
	for id, m := range r.memos {
		if m.idleSince(cutoff) {
			idle = append(idle, m)
			delete(r.memos, id)
		}
	}
	r.mu.Unlock()

	for _, m := range idle {
		m.Reset()
		m.close()
	}
	return len(idle)
}

// ResetAll invalidates every memo. Called when synthesis options change.
func (r *Registry) ResetAll() {
	r.mu.Lock()
	memos := make([]*Memo, 0, len(r.memos))
	for _, m := range r.memos {
		memos = append(memos, m)
	}
	r.mu.Unlock()

	for _, m := range memos {
		m.Reset()
	}
	r.logger.Info().
		Str(xglog.FieldEvent, "memo.reset_all").
		Int("lists", len(memos)).
		Msg("resolution memos reset")
}

// Len returns the number of live memos.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.memos)
}

// Close releases every memo.
func (r *Registry) Close() {
	r.mu.Lock()
	memos := r.memos
	r.memos = make(map[string]*Memo)
	r.mu.Unlock()

	for _, m := range memos {
		m.close()
	}
}
