// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package resolve

import (
	"sync/atomic"

	"github.com/ManuGH/vidresolve/internal/domain/video/model"
	"github.com/ManuGH/vidresolve/internal/metrics"
)

// Resolve classifies raw and synthesizes its URLs. It is pure and total.
func Resolve(raw string, opts Options) model.ResolvedVideo {
	return Synthesize(Classify(raw), opts)
}

// Resolver is the single source of truth every consumer resolves through.
// Options can be swapped at runtime (config reload); a given Options value always
// yields the same result for the same reference.
type Resolver struct {
	opts atomic.Pointer[Options]
}

// NewResolver creates a resolver with the given synthesis options.
func NewResolver(opts Options) *Resolver {
	r := &Resolver{}
	r.opts.Store(&opts)
	return r
}

// Resolve classifies and synthesizes raw under the current options.
func (r *Resolver) Resolve(raw string) model.ResolvedVideo {
	v := Resolve(raw, r.Options())
	metrics.IncResolution(string(v.Provider))
	return v
}

// Options returns the options currently in effect.
func (r *Resolver) Options() Options {
	if o := r.opts.Load(); o != nil {
		return *o
	}
	return Options{}
}

// Fingerprint identifies the options currently in effect.
func (r *Resolver) Fingerprint() string {
	return r.Options().Fingerprint()
}

// SetOptions replaces the synthesis options. It reports whether they changed.
func (r *Resolver) SetOptions(opts Options) bool {
	prev := r.opts.Swap(&opts)
	return prev == nil || *prev != opts
}
