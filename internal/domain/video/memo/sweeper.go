// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package memo

import (
	"context"
	"time"

	xglog "github.com/ManuGH/vidresolve/internal/log"
)

// SweeperConfig defines the idle policy for list memos.
type SweeperConfig struct {
	Interval    time.Duration
	IdleTimeout time.Duration // Release memos of lists not rendered for this long (0 disables)
}

// Sweeper releases memos of lists nobody renders any more. List ids come from
// clients, so without it the registry grows with every id ever seen.
type Sweeper struct {
	Registry *Registry
	Conf     SweeperConfig
}

// Run starts the sweeper loop and blocks until ctx is done.
func (s *Sweeper) Run(ctx context.Context) {
	if s.Conf.Interval <= 0 || s.Conf.IdleTimeout <= 0 {
		return
	}

	ticker := time.NewTicker(s.Conf.Interval)
	defer ticker.Stop()

	xglog.L().Info().
		Dur("interval", s.Conf.Interval).
		Dur("idle_timeout", s.Conf.IdleTimeout).
		Msg("list memo sweeper started")

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.SweepOnce()
		}
	}
}

// SweepOnce releases every idle memo once and returns how many were released.
func (s *Sweeper) SweepOnce() int {
	if s.Conf.IdleTimeout <= 0 {
		return 0
	}

	released := s.Registry.dropIdle(s.Registry.now().Add(-s.Conf.IdleTimeout))
	if released > 0 {
		xglog.L().Info().
			Str(xglog.FieldEvent, "memo.swept").
			Int("count", released).
			Msg("sweeper released idle list memos")
	}
	return released
}
