// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package model holds the playback lifecycle value types shared by the lifecycle
// rules, the per-player controller and the HTTP surface.
package model

// PlaybackState is the single lifecycle variant of one player session.
type PlaybackState string

const (
	StateIdle      PlaybackState = "idle"
	StateResolving PlaybackState = "resolving"
	StateLoading   PlaybackState = "loading"
	StatePlaying   PlaybackState = "playing"
	StatePaused    PlaybackState = "paused"
	StateEnded     PlaybackState = "ended"
	StateError     PlaybackState = "error"
)

// AllStates lists every state in lifecycle order.
var AllStates = []PlaybackState{
	StateIdle,
	StateResolving,
	StateLoading,
	StatePlaying,
	StatePaused,
	StateEnded,
	StateError,
}

// FrameMounted reports whether the playback frame holds a src in this state.
func (s PlaybackState) FrameMounted() bool {
	switch s {
	case StateLoading, StatePlaying, StatePaused, StateEnded:
		return true
	}
	return false
}

// Watching reports whether progress signals are meaningful in this state.
func (s PlaybackState) Watching() bool {
	return s == StatePlaying || s == StatePaused
}

// ErrorKind classifies a session in StateError.
type ErrorKind string

const (
	ErrorNone ErrorKind = ""
	// ErrorNoReference is a content-authoring problem: nothing to play.
	ErrorNoReference ErrorKind = "no_reference"
	// ErrorLoadFailed covers frame load failures, load timeouts and mid-playback failures.
	ErrorLoadFailed ErrorKind = "load_failed"
)

// Retryable reports whether a user retry can recover from this error.
func (k ErrorKind) Retryable() bool {
	return k == ErrorLoadFailed
}
