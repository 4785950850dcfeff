// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package controller

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/ManuGH/vidresolve/internal/domain/video/model"
	"github.com/ManuGH/vidresolve/internal/domain/video/resolve"
)

// fakeClock fires due timers synchronously from Advance.
type fakeClock struct {
	mu     sync.Mutex
	now    time.Time
	timers []*fakeTimer
}

type fakeTimer struct {
	clock   *fakeClock
	at      time.Time
	f       func()
	stopped bool
	fired   bool
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{clock: c, at: c.now.Add(d), f: f}
	c.timers = append(c.timers, t)
	return t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	var due []func()
	for _, t := range c.timers {
		if !t.stopped && !t.fired && !t.at.After(c.now) {
			t.fired = true
			due = append(due, t.f)
		}
	}
	c.mu.Unlock()

	for _, f := range due {
		f()
	}
}

func (c *fakeClock) pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, t := range c.timers {
		if !t.stopped && !t.fired {
			n++
		}
	}
	return n
}

func (t *fakeTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

type frameCall struct {
	op         string
	generation uint64
	url        string
}

// fakeFrame records mount and unmount calls.
type fakeFrame struct {
	mu    sync.Mutex
	calls []frameCall
}

func (f *fakeFrame) Mount(generation uint64, url string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, frameCall{op: "mount", generation: generation, url: url})
}

func (f *fakeFrame) Unmount(generation uint64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, frameCall{op: "unmount", generation: generation})
}

func (f *fakeFrame) log() []frameCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]frameCall(nil), f.calls...)
}

// recordingResolver resolves with default options and records every input.
type recordingResolver struct {
	mu   sync.Mutex
	seen []string
}

func (r *recordingResolver) Resolve(raw string) model.ResolvedVideo {
	r.mu.Lock()
	r.seen = append(r.seen, raw)
	r.mu.Unlock()
	return resolve.Resolve(raw, resolve.Options{})
}

func (r *recordingResolver) inputs() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.seen...)
}

type harness struct {
	clock    *fakeClock
	frame    *fakeFrame
	resolver *recordingResolver
	changes  []Snapshot
	mu       sync.Mutex
	ctrl     *Controller
}

func newHarness() *harness {
	h := &harness{
		clock:    newFakeClock(),
		frame:    &fakeFrame{},
		resolver: &recordingResolver{},
	}
	nop := zerolog.Nop()
	h.ctrl = New("sess-1", h.resolver, Options{
		Clock:  h.clock,
		Frame:  h.frame,
		Logger: &nop,
		OnChange: func(s Snapshot) {
			h.mu.Lock()
			h.changes = append(h.changes, s)
			h.mu.Unlock()
		},
	})
	return h
}

func (h *harness) observed() []Snapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]Snapshot(nil), h.changes...)
}
