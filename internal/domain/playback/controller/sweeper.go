// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package controller

import (
	"context"
	"time"

	xglog "github.com/ManuGH/vidresolve/internal/log"
)

// SweeperConfig defines the idle policy for abandoned player sessions.
type SweeperConfig struct {
	Interval    time.Duration
	IdleTimeout time.Duration // Close sessions after no caller interaction (0 disables)
}

// Sweeper closes sessions whose page view went away without a DELETE.
type Sweeper struct {
	Registry *Registry
	Conf     SweeperConfig
	Clock    Clock
}

// Run starts the sweeper loop. It periodically calls SweepOnce on a ticker.
func (s *Sweeper) Run(ctx context.Context) {
	if s.Conf.Interval <= 0 || s.Conf.IdleTimeout <= 0 {
		return
	}

	ticker := time.NewTicker(s.Conf.Interval)
	defer ticker.Stop()

	xglog.L().Info().
		Dur("interval", s.Conf.Interval).
		Dur("idle_timeout", s.Conf.IdleTimeout).
		Msg("session sweeper started")

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.SweepOnce()
		}
	}
}

// SweepOnce closes every idle session once and returns how many were closed.
func (s *Sweeper) SweepOnce() int {
	if s.Conf.IdleTimeout <= 0 {
		return 0
	}
	clock := s.Clock
	if clock == nil {
		clock = RealClock{}
	}

	cutoff := clock.Now().Add(-s.Conf.IdleTimeout)
	closed := 0
	for _, id := range s.Registry.idleSince(cutoff) {
		if err := s.Registry.Close(id); err == nil {
			closed++
		}
	}

	if closed > 0 {
		xglog.L().Info().
			Str(xglog.FieldEvent, "playback.swept").
			Int("count", closed).
			Msg("sweeper closed idle sessions")
	}
	return closed
}
