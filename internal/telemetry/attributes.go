// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package telemetry

import (
	"go.opentelemetry.io/otel/attribute"
)

// Common attribute keys for consistent tracing across the application.
const (
	// Resolution attributes
	VideoProviderKey    = "video.provider"
	VideoCanonicalIDKey = "video.canonical_id"
	VideoPlayableKey    = "video.playable"
	ListIdentityKey     = "video.list_identity"
	ListSizeKey         = "video.list_size"

	// Playback attributes
	SessionIDKey     = "playback.session_id"
	GenerationKey    = "playback.generation"
	PlaybackStateKey = "playback.state"
	PlaybackEventKey = "playback.event"

	// Error attributes
	ErrorKey     = "error"
	ErrorTypeKey = "error.type"
)

// ResolutionAttributes describes one resolved video. The raw reference is never attached.
func ResolutionAttributes(provider, canonicalID string, playable bool) []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		attribute.String(VideoProviderKey, provider),
		attribute.Bool(VideoPlayableKey, playable),
	}
	if canonicalID != "" {
		attrs = append(attrs, attribute.String(VideoCanonicalIDKey, canonicalID))
	}
	return attrs
}

// ListAttributes describes a list resolution.
func ListAttributes(identity string, size int) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(ListIdentityKey, identity),
		attribute.Int(ListSizeKey, size),
	}
}

// PlaybackAttributes describes a player session at a point in its lifecycle.
func PlaybackAttributes(sessionID string, generation uint64, state, event string) []attribute.KeyValue {
	attrs := make([]attribute.KeyValue, 0, 4)
	if sessionID != "" {
		attrs = append(attrs, attribute.String(SessionIDKey, sessionID))
	}
	attrs = append(attrs, attribute.Int64(GenerationKey, int64(generation)))
	if state != "" {
		attrs = append(attrs, attribute.String(PlaybackStateKey, state))
	}
	if event != "" {
		attrs = append(attrs, attribute.String(PlaybackEventKey, event))
	}
	return attrs
}

// ErrorAttributes creates error-related span attributes.
func ErrorAttributes(errorType string) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Bool(ErrorKey, true),
		attribute.String(ErrorTypeKey, errorType),
	}
}
