// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package lifecycle

// EventKind is a domain event in the playback lifecycle.
type EventKind int

const (
	EvUnknown EventKind = iota
	EvReferenceSupplied
	EvResolved     // resolution produced a mountable embed URL
	EvUnresolvable // resolution produced no embed URL
	EvFrameLoaded
	EvFrameFailed
	EvLoadTimeout
	EvPlay
	EvPause
	EvEnded
	EvRetry
)

// AllEvents lists every event the decision table covers.
var AllEvents = []EventKind{
	EvReferenceSupplied,
	EvResolved,
	EvUnresolvable,
	EvFrameLoaded,
	EvFrameFailed,
	EvLoadTimeout,
	EvPlay,
	EvPause,
	EvEnded,
	EvRetry,
}

var eventNames = map[EventKind]string{
	EvReferenceSupplied: "reference_supplied",
	EvResolved:          "resolved",
	EvUnresolvable:      "unresolvable",
	EvFrameLoaded:       "loaded",
	EvFrameFailed:       "failed",
	EvLoadTimeout:       "timeout",
	EvPlay:              "play",
	EvPause:             "pause",
	EvEnded:             "ended",
	EvRetry:             "retry",
}

func (e EventKind) String() string {
	if s, ok := eventNames[e]; ok {
		return s
	}
	return "unknown"
}

// IsFrameSignal reports whether the event originates from the playback frame and
// therefore carries a generation tag.
func (e EventKind) IsFrameSignal() bool {
	switch e {
	case EvFrameLoaded, EvFrameFailed, EvPlay, EvPause, EvEnded:
		return true
	}
	return false
}

// ParseFrameSignal maps a wire signal name (loaded, failed, play, pause, ended) to its event.
func ParseFrameSignal(s string) (EventKind, bool) {
	for ev, name := range eventNames {
		if name == s && ev.IsFrameSignal() {
			return ev, true
		}
	}
	return EvUnknown, false
}

// Event carries optional metadata for a transition.
type Event struct {
	Kind   EventKind
	Detail string
}
