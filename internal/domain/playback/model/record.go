// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package model

import (
	"time"

	videomodel "github.com/ManuGH/vidresolve/internal/domain/video/model"
)

// SessionRecord is the mutable state of one player session. It is owned by exactly one
// controller; a reference change replaces the record rather than patching it.
type SessionRecord struct {
	// Reference is the pristine raw reference as supplied. It is never rewritten.
	Reference string
	// Resolved is the resolution of Reference for the current generation.
	// It is discarded on retry.
	Resolved videomodel.ResolvedVideo

	State PlaybackState
	Error ErrorKind
	// ErrorDetail is a free-form hint from the frame (e.g. provider error code).
	ErrorDetail string

	// Generation increments on every frame mount. Frame signals tagged with an older
	// generation are stale.
	Generation uint64
	Retries    int

	Position    float64 // seconds
	Duration    float64 // seconds
	MaxFraction float64 // furthest watched fraction in [0,1]

	LoadStartedAt time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Surface returns the externally observable surface of the record.
func (r *SessionRecord) Surface() Surface {
	return SurfaceFor(r.State, r.Error, r.Resolved.EmbedURL)
}
