// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Loader handles configuration loading with precedence
type Loader struct {
	configPath      string
	version         string
	ConsumedEnvKeys map[string]struct{}
}

// NewLoader creates a new configuration loader. An empty configPath means ENV-only.
func NewLoader(configPath, version string) *Loader {
	return &Loader{
		configPath:      configPath,
		version:         version,
		ConsumedEnvKeys: make(map[string]struct{}),
	}
}

// Path returns the config file path, possibly empty.
func (l *Loader) Path() string {
	return l.configPath
}

// Load loads configuration with precedence: ENV > File > Defaults, then validates.
func (l *Loader) Load() (AppConfig, error) {
	cfg := Default()

	if l.configPath != "" {
		if err := l.loadFile(l.configPath, &cfg); err != nil {
			return cfg, fmt.Errorf("load config file: %w", err)
		}
	}

	l.mergeEnv(&cfg)
	cfg.LogLevel = strings.ToLower(cfg.LogLevel)
	cfg.Version = l.version

	if err := Validate(cfg); err != nil {
		return cfg, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// loadFile decodes path over cfg with STRICT parsing.
// Unknown fields will cause a fatal error to prevent misconfiguration.
func (l *Loader) loadFile(path string, cfg *AppConfig) error {
	path = filepath.Clean(path)

	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".yaml" && ext != ".yml" {
		return fmt.Errorf("unsupported config format: %s (only YAML supported)", ext)
	}

	// #nosec G304 -- configuration file paths are provided by the operator via CLI/ENV
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read file: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	if err := dec.Decode(cfg); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		if strings.Contains(err.Error(), "not found in type") {
			return fmt.Errorf("strict config parse error: %w: %w", ErrUnknownConfigField, err)
		}
		return fmt.Errorf("strict config parse error: %w", err)
	}

	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return fmt.Errorf("config file contains multiple documents or trailing content")
	}
	return nil
}

func (l *Loader) envString(key, defaultVal string) string {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseString(key, defaultVal)
}

func (l *Loader) envBool(key string, defaultVal bool) bool {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseBool(key, defaultVal)
}

func (l *Loader) envInt(key string, defaultVal int) int {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseInt(key, defaultVal)
}

func (l *Loader) envDuration(key string, defaultVal time.Duration) time.Duration {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseDuration(key, defaultVal)
}

func (l *Loader) envFloat(key string, defaultVal float64) float64 {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseFloat(key, defaultVal)
}

func (l *Loader) envCSV(key string, defaultVal []string) []string {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseCSV(key, defaultVal)
}

// mergeEnv applies VIDRESOLVE_* overrides on top of cfg.
func (l *Loader) mergeEnv(cfg *AppConfig) {
	cfg.LogLevel = l.envString(EnvPrefix+"LOG_LEVEL", cfg.LogLevel)
	cfg.LogService = l.envString(EnvPrefix+"LOG_SERVICE", cfg.LogService)

	cfg.API.ListenAddr = l.envString(EnvPrefix+"LISTEN_ADDR", cfg.API.ListenAddr)
	cfg.API.RateLimitPerMinute = l.envInt(EnvPrefix+"RATE_LIMIT_PER_MINUTE", cfg.API.RateLimitPerMinute)
	cfg.API.AllowedOrigins = l.envCSV(EnvPrefix+"ALLOWED_ORIGINS", cfg.API.AllowedOrigins)

	cfg.Resolver.Origin = l.envString(EnvPrefix+"RESOLVER_ORIGIN", cfg.Resolver.Origin)
	cfg.Resolver.PlaceholderThumbnail = l.envString(EnvPrefix+"PLACEHOLDER_THUMBNAIL", cfg.Resolver.PlaceholderThumbnail)

	cfg.Playback.LoadTimeout = l.envDuration(EnvPrefix+"LOAD_TIMEOUT", cfg.Playback.LoadTimeout)
	cfg.Playback.CompletionThreshold = l.envFloat(EnvPrefix+"COMPLETION_THRESHOLD", cfg.Playback.CompletionThreshold)
	cfg.Playback.SessionIdleTimeout = l.envDuration(EnvPrefix+"SESSION_IDLE_TIMEOUT", cfg.Playback.SessionIdleTimeout)
	cfg.Playback.SweepInterval = l.envDuration(EnvPrefix+"SWEEP_INTERVAL", cfg.Playback.SweepInterval)

	cfg.Cache.Backend = l.envString(EnvPrefix+"CACHE_BACKEND", cfg.Cache.Backend)
	cfg.Cache.TTL = l.envDuration(EnvPrefix+"CACHE_TTL", cfg.Cache.TTL)
	cfg.Cache.CleanupInterval = l.envDuration(EnvPrefix+"CACHE_CLEANUP_INTERVAL", cfg.Cache.CleanupInterval)
	cfg.Cache.ListIdleTimeout = l.envDuration(EnvPrefix+"CACHE_LIST_IDLE_TIMEOUT", cfg.Cache.ListIdleTimeout)
	cfg.Cache.Redis.Addr = l.envString(EnvPrefix+"REDIS_ADDR", cfg.Cache.Redis.Addr)
	cfg.Cache.Redis.Password = l.envString(EnvPrefix+"REDIS_PASSWORD", cfg.Cache.Redis.Password)
	cfg.Cache.Redis.DB = l.envInt(EnvPrefix+"REDIS_DB", cfg.Cache.Redis.DB)
	cfg.Cache.Redis.Namespace = l.envString(EnvPrefix+"REDIS_NAMESPACE", cfg.Cache.Redis.Namespace)

	cfg.Telemetry.Enabled = l.envBool(EnvPrefix+"TELEMETRY_ENABLED", cfg.Telemetry.Enabled)
	cfg.Telemetry.Exporter = l.envString(EnvPrefix+"TELEMETRY_EXPORTER", cfg.Telemetry.Exporter)
	cfg.Telemetry.Endpoint = l.envString(EnvPrefix+"TELEMETRY_ENDPOINT", cfg.Telemetry.Endpoint)
	cfg.Telemetry.SamplingRate = l.envFloat(EnvPrefix+"TELEMETRY_SAMPLING_RATE", cfg.Telemetry.SamplingRate)
}
