// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package api

import (
	"time"

	"github.com/ManuGH/vidresolve/internal/domain/playback/controller"
	playbackmodel "github.com/ManuGH/vidresolve/internal/domain/playback/model"
	"github.com/ManuGH/vidresolve/internal/domain/video/model"
)

// videoDTO is the wire form of a ResolvedVideo. Absent ids are explicit nulls
// so UI collaborators can tell "no id" from a missing field.
type videoDTO struct {
	Provider     string  `json:"provider"`
	CanonicalID  *string `json:"canonicalId"`
	LibraryID    *string `json:"libraryId"`
	EmbedURL     string  `json:"embedUrl"`
	ThumbnailURL string  `json:"thumbnailUrl"`
	Playable     bool    `json:"playable"`
}

func toVideoDTO(v model.ResolvedVideo) videoDTO {
	return videoDTO{
		Provider:     v.Provider.String(),
		CanonicalID:  optional(v.CanonicalID),
		LibraryID:    optional(v.LibraryID),
		EmbedURL:     v.EmbedURL,
		ThumbnailURL: v.ThumbnailURL,
		Playable:     v.Playable(),
	}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

type listRequest struct {
	References []*string `json:"references"`
	Identity   string    `json:"identity,omitempty"`
}

type listResponse struct {
	ListID   string     `json:"listId"`
	Identity string     `json:"identity"`
	Items    []videoDTO `json:"items"`
}

type referenceRequest struct {
	Reference *string `json:"reference"`
}

type eventRequest struct {
	Type       string  `json:"type"`
	Generation uint64  `json:"generation"`
	Position   float64 `json:"position,omitempty"`
	Duration   float64 `json:"duration,omitempty"`
	Detail     string  `json:"detail,omitempty"`
}

type sessionDTO struct {
	ID                 string                `json:"id"`
	Generation         uint64                `json:"generation"`
	State              string                `json:"state"`
	Error              string                `json:"error,omitempty"`
	ErrorDetail        string                `json:"errorDetail,omitempty"`
	Reference          string                `json:"reference"`
	Video              videoDTO              `json:"video"`
	Surface            playbackmodel.Surface `json:"surface"`
	Retries            int                   `json:"retries"`
	Position           float64               `json:"position"`
	Duration           float64               `json:"duration"`
	Progress           float64               `json:"progress"`
	CompletionEligible bool                  `json:"completionEligible"`
	CreatedAt          time.Time             `json:"createdAt"`
	UpdatedAt          time.Time             `json:"updatedAt"`
}

func toSessionDTO(s controller.Snapshot) sessionDTO {
	return sessionDTO{
		ID:                 s.ID,
		Generation:         s.Generation,
		State:              string(s.State),
		Error:              string(s.Error),
		ErrorDetail:        s.ErrorDetail,
		Reference:          s.Reference,
		Video:              toVideoDTO(s.Resolved),
		Surface:            s.Surface,
		Retries:            s.Retries,
		Position:           s.Position,
		Duration:           s.Duration,
		Progress:           s.Progress,
		CompletionEligible: s.CompletionEligible,
		CreatedAt:          s.CreatedAt,
		UpdatedAt:          s.UpdatedAt,
	}
}

// deref maps a JSON null reference to the empty reference.
func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
