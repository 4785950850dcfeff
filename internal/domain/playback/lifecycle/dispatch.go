// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package lifecycle holds the pure playback state machine: an explicit decision for
// every state×event pair, the table of allowed edges, and Dispatch, the only place
// that mutates a SessionRecord's state.
package lifecycle

import (
	"errors"
	"fmt"
	"time"

	"github.com/ManuGH/vidresolve/internal/domain/playback/model"
	videomodel "github.com/ManuGH/vidresolve/internal/domain/video/model"
)

var (
	// ErrIllegalTransition is returned when an event is not allowed in the current state.
	ErrIllegalTransition = errors.New("illegal transition")
	// ErrNotRetryable is returned when retry is requested for a non-recoverable error.
	ErrNotRetryable = errors.New("error is not retryable")
)

// Dispatch resolves the next transition for ev and applies it to rec.
// A forbidden event leaves rec untouched and returns an error wrapping ErrIllegalTransition.
func Dispatch(rec *model.SessionRecord, ev Event, now time.Time) (Transition, error) {
	from := rec.State

	decision, ok := DecisionFor(from, ev.Kind)
	if !ok {
		return Transition{From: from, To: from, Event: ev.Kind},
			fmt.Errorf("%w: %s + %s", ErrIllegalTransition, from, ev.Kind)
	}
	if !decision.Allowed {
		return Transition{From: from, To: from, Event: ev.Kind},
			fmt.Errorf("%w: %s + %s (%s)", ErrIllegalTransition, from, ev.Kind, decision.Reason)
	}
	if ev.Kind == EvRetry && !rec.Error.Retryable() {
		return Transition{From: from, To: from, Event: ev.Kind},
			fmt.Errorf("%w: %w: %s (%s)", ErrIllegalTransition, ErrNotRetryable, rec.Error, ForbiddenNotRetryable)
	}

	tr, ok := TransitionFor(from, ev.Kind)
	if !ok {
		return Transition{From: from, To: from, Event: ev.Kind},
			fmt.Errorf("%w: %s + %s (no edge)", ErrIllegalTransition, from, ev.Kind)
	}
	if ev.Detail != "" {
		tr.Detail = ev.Detail
	}

	ApplyTransition(rec, tr, now)
	return tr, nil
}

// ApplyTransition mutates the session record according to the transition.
func ApplyTransition(rec *model.SessionRecord, tr Transition, now time.Time) {
	rec.State = tr.To
	rec.Error = tr.Error
	rec.ErrorDetail = ""
	if tr.Error != model.ErrorNone {
		rec.ErrorDetail = tr.Detail
	}

	switch tr.Event {
	case EvRetry:
		// Retry restarts from the pristine reference; the previous resolution is dropped.
		rec.Resolved = videomodel.ResolvedVideo{}
		rec.Retries++
	case EvResolved:
		rec.LoadStartedAt = now
	}
	if tr.To == model.StateError || tr.To == model.StateResolving {
		rec.Position, rec.Duration = 0, 0
	}

	rec.UpdatedAt = now
}
