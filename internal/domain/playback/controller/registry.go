// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package controller

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ManuGH/vidresolve/internal/metrics"
)

// Registry tracks live player sessions by id. Sessions share nothing but the resolver.
type Registry struct {
	resolver Resolver

	mu       sync.RWMutex
	opts     Options
	sessions map[string]*Controller
	newID    func() string
}

// NewRegistry creates a registry whose sessions are built with opts.
func NewRegistry(resolver Resolver, opts Options) *Registry {
	return &Registry{
		resolver: resolver,
		opts:     opts,
		sessions: make(map[string]*Controller),
		newID:    uuid.NewString,
	}
}

// Create starts a new session for raw and returns it with its first snapshot.
func (r *Registry) Create(raw string) (*Controller, Snapshot, error) {
	r.mu.Lock()
	id := r.newID()
	c := New(id, r.resolver, r.opts)
	r.sessions[id] = c
	n := len(r.sessions)
	r.mu.Unlock()

	metrics.SetActiveSessions(n)
	snap, err := c.Load(raw)
	return c, snap, err
}

// Get returns the session with id.
func (r *Registry) Get(id string) (*Controller, error) {
	r.mu.RLock()
	c, ok := r.sessions[id]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return c, nil
}

// Close closes and forgets the session with id.
func (r *Registry) Close(id string) error {
	r.mu.Lock()
	c, ok := r.sessions[id]
	delete(r.sessions, id)
	n := len(r.sessions)
	r.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	metrics.SetActiveSessions(n)
	c.Close()
	return nil
}

// CloseAll closes every session.
func (r *Registry) CloseAll() {
	r.mu.Lock()
	sessions := r.sessions
	r.sessions = make(map[string]*Controller)
	r.mu.Unlock()

	metrics.SetActiveSessions(0)
	for _, c := range sessions {
		c.Close()
	}
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// SetTiming changes the load timeout and completion threshold for sessions created
// from now on. Live sessions keep the values they were created with.
func (r *Registry) SetTiming(loadTimeout time.Duration, completionThreshold float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.opts.LoadTimeout = loadTimeout
	r.opts.CompletionThreshold = completionThreshold
}

// idleSince lists sessions whose last interaction is before cutoff.
func (r *Registry) idleSince(cutoff time.Time) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var ids []string
	for id, c := range r.sessions {
		if c.LastActivity().Before(cutoff) {
			ids = append(ids, id)
		}
	}
	return ids
}
