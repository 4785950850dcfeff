// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ManuGH/vidresolve/internal/config"
	"github.com/ManuGH/vidresolve/internal/daemon"
	"github.com/ManuGH/vidresolve/internal/domain/playback/controller"
	"github.com/ManuGH/vidresolve/internal/health"
	xglog "github.com/ManuGH/vidresolve/internal/log"
	"github.com/ManuGH/vidresolve/internal/telemetry"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP daemon",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, opts)
		},
	}
}

func serve(ctx context.Context, opts *rootOptions) error {
	// Safe defaults until the config is loaded.
	xglog.Configure(xglog.Config{Level: "info", Service: "vidresolve", Version: version})
	logger := xglog.WithComponent("daemon")

	cfg, loader, err := opts.load()
	if err != nil {
		logger.Error().Err(err).
			Str(xglog.FieldEvent, "config.load_failed").
			Str("config_path", opts.path()).
			Msg("failed to load configuration")
		return err
	}
	xglog.Configure(xglog.Config{Level: cfg.LogLevel, Service: cfg.LogService, Version: cfg.Version})
	logger = xglog.WithComponent("daemon")

	source := "env+defaults"
	if loader.Path() != "" {
		source = "file"
	}
	logger.Info().
		Str(xglog.FieldEvent, "config.loaded").
		Str("source", source).
		Str("path", loader.Path()).
		Msg("loaded configuration")

	if err := health.PerformStartupChecks(ctx, cfg); err != nil {
		logger.Error().Err(err).Str(xglog.FieldEvent, "startup.check_failed").Msg("startup checks failed")
		return err
	}

	tp, err := telemetry.NewProvider(ctx, telemetry.Config{
		Enabled:        cfg.Telemetry.Enabled,
		ServiceName:    cfg.LogService,
		ServiceVersion: cfg.Version,
		ExporterType:   cfg.Telemetry.Exporter,
		Endpoint:       cfg.Telemetry.Endpoint,
		SamplingRate:   cfg.Telemetry.SamplingRate,
	})
	if err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}

	comps, err := buildComponents(ctx, cfg)
	if err != nil {
		_ = tp.Shutdown(context.WithoutCancel(ctx))
		return err
	}

	mgr, err := daemon.NewManager(daemon.DefaultServerConfig(cfg.API.ListenAddr), daemon.Deps{
		Logger:     logger,
		APIHandler: comps.server.Handler(),
	})
	if err != nil {
		_ = comps.close()
		_ = tp.Shutdown(context.WithoutCancel(ctx))
		return err
	}
	// Hooks run LIFO after the listener has drained.
	mgr.RegisterShutdownHook("telemetry", tp.Shutdown)
	mgr.RegisterShutdownHook("components", func(context.Context) error { return comps.close() })

	app := daemon.NewApp(logger, mgr, config.NewHolder(cfg, loader), comps.applyConfig)
	app.Go("session-sweeper", (&controller.Sweeper{
		Registry: comps.sessions,
		Conf: controller.SweeperConfig{
			Interval:    cfg.Playback.SweepInterval,
			IdleTimeout: cfg.Playback.SessionIdleTimeout,
		},
	}).Run)
	app.Go("list-memo-sweeper", comps.listSweeper(cfg.Cache).Run)
	app.Go("drain-on-shutdown", func(ctx context.Context) {
		<-ctx.Done()
		comps.health.MarkDraining()
	})

	logger.Info().
		Str(xglog.FieldEvent, "startup").
		Str("version", version).
		Str("commit", commit).
		Str("build_date", buildDate).
		Str("addr", cfg.API.ListenAddr).
		Str("cache_backend", cfg.Cache.Backend).
		Bool("telemetry", cfg.Telemetry.Enabled).
		Msg("starting vidresolve")

	if err := app.Run(ctx); err != nil {
		logger.Error().Err(err).Str(xglog.FieldEvent, "daemon.failed").Msg("daemon stopped with error")
		return err
	}
	logger.Info().Msg("server exiting")
	return nil
}
