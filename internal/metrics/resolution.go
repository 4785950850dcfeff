// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package metrics exposes Prometheus collectors for reference resolution and playback.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const labelUnknown = "unknown"

var knownProviders = map[string]struct{}{
	"youtube":      {},
	"bunny_stream": {},
	"generic":      {},
	"unrecognized": {},
}

var (
	resolutionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vidresolve_resolutions_total",
		Help: "Reference resolutions by classified provider",
	}, []string{"provider"})

	memoLookupsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vidresolve_memo_lookups_total",
		Help: "Resolution cache lookups by result (hit/miss)",
	}, []string{"result"})

	memoInvalidationsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "vidresolve_memo_invalidations_total",
		Help: "Resolution cache invalidations caused by a list identity change or options reload",
	})
)

// IncResolution records one classify+synthesize pass.
func IncResolution(provider string) {
	if _, ok := knownProviders[provider]; !ok {
		provider = labelUnknown
	}
	resolutionsTotal.WithLabelValues(provider).Inc()
}

// IncMemoLookup records a resolution cache lookup.
func IncMemoLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	memoLookupsTotal.WithLabelValues(result).Inc()
}

// IncMemoInvalidation records a resolution cache reset.
func IncMemoInvalidation() {
	memoInvalidationsTotal.Inc()
}
