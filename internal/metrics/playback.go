// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package metrics

import (
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var knownStates = map[string]struct{}{
	"idle":      {},
	"resolving": {},
	"loading":   {},
	"playing":   {},
	"paused":    {},
	"ended":     {},
	"error":     {},
}

var knownErrorKinds = map[string]struct{}{
	"no_reference": {},
	"load_failed":  {},
}

var knownSignals = map[string]struct{}{
	"loaded":   {},
	"failed":   {},
	"play":     {},
	"pause":    {},
	"ended":    {},
	"progress": {},
	"timeout":  {},
}

var (
	playbackTransitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vidresolve_playback_transitions_total",
		Help: "Playback lifecycle transitions",
	}, []string{"from", "to"})

	playbackErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vidresolve_playback_errors_total",
		Help: "Playback sessions entering the error state by kind",
	}, []string{"kind"})

	playbackRetriesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "vidresolve_playback_retries_total",
		Help: "User-initiated playback retries",
	})

	playbackStaleEventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vidresolve_playback_stale_events_total",
		Help: "Frame signals dropped because they belong to a superseded generation",
	}, []string{"event"})

	playbackLoadSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "vidresolve_playback_load_seconds",
		Help:    "Time from mounting the playback frame to its load signal",
		Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 3, 5, 8, 13},
	})

	playbackSessionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "vidresolve_playback_sessions_active",
		Help: "Player sessions currently registered",
	})
)

func normalize(v string, allow map[string]struct{}) string {
	v = strings.ToLower(strings.TrimSpace(v))
	if _, ok := allow[v]; !ok {
		return labelUnknown
	}
	return v
}

// IncPlaybackTransition records a lifecycle edge with low-cardinality labels.
func IncPlaybackTransition(from, to string) {
	playbackTransitionsTotal.WithLabelValues(normalize(from, knownStates), normalize(to, knownStates)).Inc()
}

// IncPlaybackError records a session entering the error state.
func IncPlaybackError(kind string) {
	playbackErrorsTotal.WithLabelValues(normalize(kind, knownErrorKinds)).Inc()
}

// IncPlaybackRetry records a user retry.
func IncPlaybackRetry() {
	playbackRetriesTotal.Inc()
}

// IncStaleEvent records a frame signal dropped by the generation fence.
func IncStaleEvent(event string) {
	playbackStaleEventsTotal.WithLabelValues(normalize(event, knownSignals)).Inc()
}

// ObservePlaybackLoad records how long the frame took to signal a successful load.
func ObservePlaybackLoad(d time.Duration) {
	playbackLoadSeconds.Observe(d.Seconds())
}

// SetActiveSessions publishes the number of registered player sessions.
func SetActiveSessions(n int) {
	playbackSessionsActive.Set(float64(n))
}
