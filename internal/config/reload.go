// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"context"
	"fmt"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	xglog "github.com/ManuGH/vidresolve/internal/log"
)

// DefaultDebounce coalesces the burst of events an editor save produces.
const DefaultDebounce = 500 * time.Millisecond

// Holder holds configuration with atomic reloading capability.
type Holder struct {
	mu      sync.RWMutex
	current AppConfig
	loader  *Loader
	logger  zerolog.Logger

	// Debounce is read when the watcher starts.
	Debounce time.Duration

	listenersMu sync.RWMutex
	listeners   []chan<- AppConfig

	watchMu sync.Mutex
	watcher *fsnotify.Watcher
	timer   *time.Timer
	done    chan struct{}
}

// NewHolder creates a holder that starts with initial.
func NewHolder(initial AppConfig, loader *Loader) *Holder {
	return &Holder{
		current:  initial,
		loader:   loader,
		logger:   xglog.WithComponent("config"),
		Debounce: DefaultDebounce,
	}
}

// Get returns the current configuration (thread-safe read).
func (h *Holder) Get() AppConfig {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.current
}

// Reload reloads configuration from its sources.
// If loading or validation fails the old configuration is kept and an error is returned.
func (h *Holder) Reload(_ context.Context) error {
	h.logger.Info().Str(xglog.FieldEvent, "config.reload_start").Msg("reloading configuration")

	next, err := h.loader.Load()
	if err != nil {
		h.logger.Error().
			Err(err).
			Str(xglog.FieldEvent, "config.reload_failed").
			Msg("new configuration rejected, keeping current")
		return fmt.Errorf("reload config: %w", err)
	}

	h.mu.Lock()
	old := h.current
	h.current = next
	h.mu.Unlock()

	h.logChanges(old, next)
	h.notifyListeners(next)

	h.logger.Info().
		Str(xglog.FieldEvent, "config.reload_success").
		Msg("configuration reloaded successfully")
	return nil
}

// Subscribe registers a channel that receives the new config after each successful reload.
// Sends never block; a full channel misses that update.
func (h *Holder) Subscribe(ch chan<- AppConfig) {
	h.listenersMu.Lock()
	defer h.listenersMu.Unlock()
	h.listeners = append(h.listeners, ch)
}

func (h *Holder) notifyListeners(cfg AppConfig) {
	h.listenersMu.RLock()
	defer h.listenersMu.RUnlock()

	for _, ch := range h.listeners {
		select {
		case ch <- cfg:
		default:
			h.logger.Warn().
				Str(xglog.FieldEvent, "config.listener_skip").
				Msg("skipped notifying listener (channel full)")
		}
	}
}

// Watch reloads whenever the config file changes until ctx is done or Stop is called.
// The parent directory is watched so atomic rename-over saves are seen.
// Without a config file this is a no-op.
func (h *Holder) Watch(ctx context.Context) error {
	path := h.loader.Path()
	if path == "" {
		h.logger.Info().
			Str(xglog.FieldEvent, "config.watcher_disabled").
			Msg("config file watcher disabled (using ENV-only configuration)")
		return nil
	}
	path = filepath.Clean(path)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("watch config dir: %w", err)
	}

	h.watchMu.Lock()
	if h.watcher != nil {
		h.watchMu.Unlock()
		_ = watcher.Close()
		return fmt.Errorf("config watcher already running")
	}
	h.watcher = watcher
	h.done = make(chan struct{})
	done := h.done
	h.watchMu.Unlock()

	h.logger.Info().
		Str(xglog.FieldEvent, "config.watcher_started").
		Str("path", path).
		Msg("watching config file for changes")

	go h.watchLoop(ctx, watcher, path, done)
	return nil
}

func (h *Holder) watchLoop(ctx context.Context, watcher *fsnotify.Watcher, path string, done chan struct{}) {
	defer close(done)
	defer func() { _ = watcher.Close() }()

	for {
		select {
		case <-ctx.Done():
			h.stopTimer()
			h.logger.Info().Str(xglog.FieldEvent, "config.watcher_stopped").Msg("config watcher stopped")
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			h.logger.Debug().
				Str(xglog.FieldEvent, "config.file_changed").
				Str("op", event.Op.String()).
				Msg("config file changed")
			h.schedule(ctx)

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			h.logger.Error().
				Err(err).
				Str(xglog.FieldEvent, "config.watcher_error").
				Msg("config watcher error")
		}
	}
}

// schedule (re)arms the debounce timer.
func (h *Holder) schedule(ctx context.Context) {
	h.watchMu.Lock()
	defer h.watchMu.Unlock()
	if h.timer != nil {
		h.timer.Stop()
	}
	h.timer = time.AfterFunc(h.Debounce, func() {
		if ctx.Err() != nil {
			return
		}
		if err := h.Reload(ctx); err != nil {
			h.logger.Error().
				Err(err).
				Str(xglog.FieldEvent, "config.auto_reload_failed").
				Msg("automatic config reload failed")
		}
	})
}

func (h *Holder) stopTimer() {
	h.watchMu.Lock()
	defer h.watchMu.Unlock()
	if h.timer != nil {
		h.timer.Stop()
		h.timer = nil
	}
}

// Stop stops the watcher (if running) and waits for its loop to exit.
func (h *Holder) Stop() {
	h.watchMu.Lock()
	watcher, done := h.watcher, h.done
	h.watcher, h.done = nil, nil
	h.watchMu.Unlock()

	if watcher == nil {
		return
	}
	h.stopTimer()
	_ = watcher.Close()
	<-done
}

// logChanges logs the settings that differ between old and next.
func (h *Holder) logChanges(old, next AppConfig) {
	changed := func(name string, from, to any) {
		h.logger.Info().
			Interface("old", from).
			Interface("new", to).
			Msgf("config changed: %s", name)
	}
	if old.LogLevel != next.LogLevel {
		changed("logLevel", old.LogLevel, next.LogLevel)
	}
	if old.Resolver != next.Resolver {
		changed("resolver", old.Resolver, next.Resolver)
	}
	if old.Playback != next.Playback {
		changed("playback", old.Playback, next.Playback)
	}

	// These are bound at startup.
	restart := old.API.ListenAddr != next.API.ListenAddr ||
		old.API.RateLimitPerMinute != next.API.RateLimitPerMinute ||
		!slices.Equal(old.API.AllowedOrigins, next.API.AllowedOrigins) ||
		old.Playback.SessionIdleTimeout != next.Playback.SessionIdleTimeout ||
		old.Playback.SweepInterval != next.Playback.SweepInterval ||
		old.Cache.Backend != next.Cache.Backend ||
		old.Cache.TTL != next.Cache.TTL ||
		old.Cache.CleanupInterval != next.Cache.CleanupInterval ||
		old.Cache.ListIdleTimeout != next.Cache.ListIdleTimeout ||
		old.Cache.Redis != next.Cache.Redis ||
		old.Telemetry != next.Telemetry
	if restart {
		h.logger.Warn().
			Str(xglog.FieldEvent, "config.restart_required").
			Msg("settings bound at startup changed; restart to apply")
	}
}
