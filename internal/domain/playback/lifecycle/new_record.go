// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package lifecycle

import (
	"time"

	"github.com/ManuGH/vidresolve/internal/domain/playback/model"
)

// NewRecord builds the Idle record for a freshly supplied reference.
func NewRecord(reference string, generation uint64, now time.Time) *model.SessionRecord {
	return &model.SessionRecord{
		Reference:  reference,
		State:      model.StateIdle,
		Generation: generation,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}
