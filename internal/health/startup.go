// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package health

import (
	"context"
	"fmt"
	"net"
	"slices"

	"github.com/rs/zerolog"

	"github.com/ManuGH/vidresolve/internal/config"
	"github.com/ManuGH/vidresolve/internal/log"
)

// PerformStartupChecks validates the runtime environment before the server starts.
// Configuration syntax is already validated by the loader; these checks cover what
// only the running host can tell.
func PerformStartupChecks(ctx context.Context, cfg config.AppConfig) error {
	logger := log.WithComponent("startup-check")
	logger.Info().Msg("running pre-flight startup checks")

	if err := checkListenAddr(ctx, logger, cfg.API.ListenAddr); err != nil {
		return fmt.Errorf("listen address check failed: %w", err)
	}
	warnOnRiskySettings(logger, cfg)

	logger.Info().Msg("all startup checks passed")
	return nil
}

// checkListenAddr binds and releases the listen address.
func checkListenAddr(ctx context.Context, logger zerolog.Logger, addr string) error {
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("cannot bind %q: %w", addr, err)
	}
	_ = ln.Close()
	logger.Info().Str("addr", addr).Msg("listen address is available")
	return nil
}

func warnOnRiskySettings(logger zerolog.Logger, cfg config.AppConfig) {
	if cfg.Resolver.Origin == "" {
		logger.Warn().Msg("resolver.origin is empty; YouTube embeds are built without the origin parameter")
	}
	if slices.Contains(cfg.API.AllowedOrigins, "*") {
		logger.Warn().Msg("api.allowedOrigins contains *; any site may call the API from a browser")
	}
	if cfg.Cache.Backend == config.CacheBackendNone {
		logger.Warn().Msg("cache backend is none; every list render re-resolves its references")
	}
	if cfg.Playback.SessionIdleTimeout == 0 {
		logger.Warn().Msg("playback.sessionIdleTimeout is 0; abandoned player sessions are never reclaimed")
	}
}
