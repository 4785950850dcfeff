// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package lifecycle

import "github.com/ManuGH/vidresolve/internal/domain/playback/model"

// Transition is a single allowed edge in the lifecycle state machine.
type Transition struct {
	From   model.PlaybackState
	To     model.PlaybackState
	Event  EventKind
	Error  model.ErrorKind
	Detail string
}

// Decision records whether a transition is allowed and why it is forbidden.
type Decision struct {
	Allowed bool
	Reason  string
}

var transitionsTable = []Transition{
	// Mount path
	{From: model.StateIdle, To: model.StateResolving, Event: EvReferenceSupplied},
	{From: model.StateResolving, To: model.StateLoading, Event: EvResolved},
	{From: model.StateResolving, To: model.StateError, Event: EvUnresolvable, Error: model.ErrorNoReference},
	{From: model.StateLoading, To: model.StatePlaying, Event: EvFrameLoaded},

	// Load failures
	{From: model.StateLoading, To: model.StateError, Event: EvFrameFailed, Error: model.ErrorLoadFailed},
	{From: model.StateLoading, To: model.StateError, Event: EvLoadTimeout, Error: model.ErrorLoadFailed},

	// Native media events
	{From: model.StatePlaying, To: model.StatePaused, Event: EvPause},
	{From: model.StatePaused, To: model.StatePlaying, Event: EvPlay},
	{From: model.StatePlaying, To: model.StateEnded, Event: EvEnded},
	{From: model.StatePaused, To: model.StateEnded, Event: EvEnded},
	{From: model.StateEnded, To: model.StatePlaying, Event: EvPlay},

	// Mid-playback provider failures
	{From: model.StatePlaying, To: model.StateError, Event: EvFrameFailed, Error: model.ErrorLoadFailed},
	{From: model.StatePaused, To: model.StateError, Event: EvFrameFailed, Error: model.ErrorLoadFailed},

	// Manual recovery
	{From: model.StateError, To: model.StateResolving, Event: EvRetry},
}

// TransitionFor returns the allowed transition for a given state+event.
func TransitionFor(from model.PlaybackState, ev EventKind) (Transition, bool) {
	for _, tr := range transitionsTable {
		if tr.From == from && tr.Event == ev {
			return tr, true
		}
	}
	return Transition{}, false
}
