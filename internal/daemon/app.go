// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package daemon

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/ManuGH/vidresolve/internal/config"
)

// ApplyFunc applies a reloaded configuration to live components.
type ApplyFunc func(cfg config.AppConfig)

type task struct {
	name string
	run  func(ctx context.Context)
}

// App owns the long-lived runtime lifecycle (config watcher, reload wiring,
// background tasks) and delegates server management to Manager.
type App struct {
	logger       zerolog.Logger
	manager      Manager
	holder       *config.Holder
	apply        ApplyFunc
	tasks        []task
	reloadSignal os.Signal
}

// NewApp creates a new App orchestrator. holder and apply may be nil.
func NewApp(logger zerolog.Logger, manager Manager, holder *config.Holder, apply ApplyFunc) *App {
	return &App{
		logger:       logger,
		manager:      manager,
		holder:       holder,
		apply:        apply,
		reloadSignal: syscall.SIGHUP,
	}
}

// Go registers a background task. It runs until the app context is cancelled.
func (a *App) Go(name string, run func(ctx context.Context)) {
	a.tasks = append(a.tasks, task{name: name, run: run})
}

// Run starts all owned background subsystems and blocks until ctx is cancelled or a fatal error occurs.
func (a *App) Run(ctx context.Context) error {
	if a.manager == nil {
		return ErrMissingManager
	}

	g, ctx := errgroup.WithContext(ctx)

	if a.holder != nil {
		// Startup does not fail when the watcher cannot be started; SIGHUP still reloads.
		if err := a.holder.Watch(ctx); err != nil {
			a.logger.Warn().Err(err).Str("event", "config.watcher_start_failed").Msg("failed to start config watcher")
		}
		defer a.holder.Stop()
	}

	if a.holder != nil && a.apply != nil {
		applyCh := make(chan config.AppConfig, 1)
		a.holder.Subscribe(applyCh)

		g.Go(func() error {
			for {
				select {
				case <-ctx.Done():
					return nil
				case cfg := <-applyCh:
					a.apply(cfg)
				}
			}
		})
	}

	if a.holder != nil && a.reloadSignal != nil {
		g.Go(func() error {
			hupChan := make(chan os.Signal, 1)
			signal.Notify(hupChan, a.reloadSignal)
			defer signal.Stop(hupChan)

			for {
				select {
				case <-ctx.Done():
					return nil
				case <-hupChan:
					a.logger.Info().
						Str("event", "config.reload_signal").
						Str("signal", a.reloadSignal.String()).
						Msg("received reload signal, reloading config")
					if err := a.holder.Reload(ctx); err != nil {
						a.logger.Warn().Err(err).Str("event", "config.reload_failed").Msg("config reload failed")
					}
				}
			}
		})
	}

	for _, t := range a.tasks {
		g.Go(func() error {
			a.logger.Debug().Str("task", t.name).Msg("background task started")
			t.run(ctx)
			a.logger.Debug().Str("task", t.name).Msg("background task stopped")
			return nil
		})
	}

	g.Go(func() error {
		return a.manager.Start(ctx)
	})

	return g.Wait()
}
