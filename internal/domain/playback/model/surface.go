// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package model

// Affordance is the UI element shown around the playback frame.
type Affordance string

const (
	AffordanceNone     Affordance = "none"
	AffordanceSpinner  Affordance = "spinner"
	AffordanceControls Affordance = "controls"
	// AffordanceNoVideo is the non-actionable "no video assigned" panel.
	AffordanceNoVideo Affordance = "no_video"
	// AffordanceRetry is the error panel offering a retry action.
	AffordanceRetry Affordance = "retry"
)

// Surface is the externally observable output of a state: which URL the frame holds
// and which affordance is shown. Each state maps to exactly one surface.
type Surface struct {
	FrameURL   string     `json:"frameUrl"`
	Affordance Affordance `json:"affordance"`
}

// SurfaceFor derives the surface for a state. embedURL is only handed to the frame
// in states where it is mounted.
func SurfaceFor(state PlaybackState, kind ErrorKind, embedURL string) Surface {
	switch state {
	case StateResolving:
		return Surface{Affordance: AffordanceSpinner}
	case StateLoading:
		return Surface{FrameURL: embedURL, Affordance: AffordanceSpinner}
	case StatePlaying, StatePaused, StateEnded:
		return Surface{FrameURL: embedURL, Affordance: AffordanceControls}
	case StateError:
		if kind == ErrorNoReference {
			return Surface{Affordance: AffordanceNoVideo}
		}
		return Surface{Affordance: AffordanceRetry}
	default:
		return Surface{Affordance: AffordanceNone}
	}
}
