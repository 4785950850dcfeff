// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package lifecycle

import "github.com/ManuGH/vidresolve/internal/domain/playback/model"

const (
	ForbiddenTerminalAbsorbing = "terminal_absorbing"
	ForbiddenOutOfOrder        = "out_of_order"
	ForbiddenAlreadyInState    = "already_in_state"
	ForbiddenNotRetryable      = "not_retryable"
)

func allowed() Decision        { return Decision{Allowed: true} }
func forbid(r string) Decision { return Decision{Allowed: false, Reason: r} }

// decisionTable defines an explicit decision for every State×Event combination.
// Error absorbs every event except Retry; whether Retry applies depends on the error kind.
var decisionTable = map[model.PlaybackState]map[EventKind]Decision{
	model.StateIdle: {
		EvReferenceSupplied: allowed(),
		EvResolved:          forbid(ForbiddenOutOfOrder),
		EvUnresolvable:      forbid(ForbiddenOutOfOrder),
		EvFrameLoaded:       forbid(ForbiddenOutOfOrder),
		EvFrameFailed:       forbid(ForbiddenOutOfOrder),
		EvLoadTimeout:       forbid(ForbiddenOutOfOrder),
		EvPlay:              forbid(ForbiddenOutOfOrder),
		EvPause:             forbid(ForbiddenOutOfOrder),
		EvEnded:             forbid(ForbiddenOutOfOrder),
		EvRetry:             forbid(ForbiddenOutOfOrder),
	},
	model.StateResolving: {
		EvReferenceSupplied: forbid(ForbiddenAlreadyInState),
		EvResolved:          allowed(),
		EvUnresolvable:      allowed(),
		EvFrameLoaded:       forbid(ForbiddenOutOfOrder),
		EvFrameFailed:       forbid(ForbiddenOutOfOrder),
		EvLoadTimeout:       forbid(ForbiddenOutOfOrder),
		EvPlay:              forbid(ForbiddenOutOfOrder),
		EvPause:             forbid(ForbiddenOutOfOrder),
		EvEnded:             forbid(ForbiddenOutOfOrder),
		EvRetry:             forbid(ForbiddenOutOfOrder),
	},
	model.StateLoading: {
		EvReferenceSupplied: forbid(ForbiddenOutOfOrder),
		EvResolved:          forbid(ForbiddenOutOfOrder),
		EvUnresolvable:      forbid(ForbiddenOutOfOrder),
		EvFrameLoaded:       allowed(),
		EvFrameFailed:       allowed(),
		EvLoadTimeout:       allowed(),
		EvPlay:              forbid(ForbiddenOutOfOrder),
		EvPause:             forbid(ForbiddenOutOfOrder),
		EvEnded:             forbid(ForbiddenOutOfOrder),
		EvRetry:             forbid(ForbiddenOutOfOrder),
	},
	model.StatePlaying: {
		EvReferenceSupplied: forbid(ForbiddenOutOfOrder),
		EvResolved:          forbid(ForbiddenOutOfOrder),
		EvUnresolvable:      forbid(ForbiddenOutOfOrder),
		EvFrameLoaded:       forbid(ForbiddenAlreadyInState),
		EvFrameFailed:       allowed(),
		EvLoadTimeout:       forbid(ForbiddenOutOfOrder),
		EvPlay:              forbid(ForbiddenAlreadyInState),
		EvPause:             allowed(),
		EvEnded:             allowed(),
		EvRetry:             forbid(ForbiddenOutOfOrder),
	},
	model.StatePaused: {
		EvReferenceSupplied: forbid(ForbiddenOutOfOrder),
		EvResolved:          forbid(ForbiddenOutOfOrder),
		EvUnresolvable:      forbid(ForbiddenOutOfOrder),
		EvFrameLoaded:       forbid(ForbiddenOutOfOrder),
		EvFrameFailed:       allowed(),
		EvLoadTimeout:       forbid(ForbiddenOutOfOrder),
		EvPlay:              allowed(),
		EvPause:             forbid(ForbiddenAlreadyInState),
		EvEnded:             allowed(),
		EvRetry:             forbid(ForbiddenOutOfOrder),
	},
	model.StateEnded: {
		EvReferenceSupplied: forbid(ForbiddenOutOfOrder),
		EvResolved:          forbid(ForbiddenOutOfOrder),
		EvUnresolvable:      forbid(ForbiddenOutOfOrder),
		EvFrameLoaded:       forbid(ForbiddenOutOfOrder),
		EvFrameFailed:       forbid(ForbiddenOutOfOrder),
		EvLoadTimeout:       forbid(ForbiddenOutOfOrder),
		EvPlay:              allowed(),
		EvPause:             forbid(ForbiddenOutOfOrder),
		EvEnded:             forbid(ForbiddenAlreadyInState),
		EvRetry:             forbid(ForbiddenOutOfOrder),
	},
	model.StateError: {
		EvReferenceSupplied: forbid(ForbiddenTerminalAbsorbing),
		EvResolved:          forbid(ForbiddenTerminalAbsorbing),
		EvUnresolvable:      forbid(ForbiddenTerminalAbsorbing),
		EvFrameLoaded:       forbid(ForbiddenTerminalAbsorbing),
		EvFrameFailed:       forbid(ForbiddenTerminalAbsorbing),
		EvLoadTimeout:       forbid(ForbiddenTerminalAbsorbing),
		EvPlay:              forbid(ForbiddenTerminalAbsorbing),
		EvPause:             forbid(ForbiddenTerminalAbsorbing),
		EvEnded:             forbid(ForbiddenTerminalAbsorbing),
		EvRetry:             allowed(),
	},
}

// DecisionFor returns the explicit decision for state×event.
func DecisionFor(from model.PlaybackState, ev EventKind) (Decision, bool) {
	m, ok := decisionTable[from]
	if !ok {
		return Decision{}, false
	}
	d, ok := m[ev]
	return d, ok
}

// ForbiddenTransitionReason documents why a transition is disallowed.
func ForbiddenTransitionReason(from model.PlaybackState, ev EventKind) string {
	decision, ok := DecisionFor(from, ev)
	if !ok || decision.Allowed {
		return ""
	}
	return decision.Reason
}
