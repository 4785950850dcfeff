// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package model

// Classification is the output of the reference classifier.
// CanonicalID is set only for YouTube and BunnyStream; LibraryID only for BunnyStream.
// Reference is set only for Generic: the cleaned URL to embed as-is, which for markup
// input is the unwrapped src attribute.
type Classification struct {
	Provider    ProviderKind
	CanonicalID string
	LibraryID   string
	Reference   string
}

// ResolvedVideo is the immutable result of classification followed by synthesis.
// It is a pure function of the raw reference and the synthesizer options.
type ResolvedVideo struct {
	Provider     ProviderKind `json:"provider"`
	CanonicalID  string       `json:"canonicalId,omitempty"`
	LibraryID    string       `json:"libraryId,omitempty"`
	EmbedURL     string       `json:"embedUrl"`
	ThumbnailURL string       `json:"thumbnailUrl"`
}

// Playable reports whether the resolution produced something a playback frame can mount.
// Only Unrecognized references yield an empty embed URL.
func (v ResolvedVideo) Playable() bool {
	return v.EmbedURL != ""
}

// Consistent checks the identifier invariant: ids are present iff the provider carries them.
func (v ResolvedVideo) Consistent() bool {
	if !v.Provider.Valid() {
		return false
	}
	if (v.CanonicalID != "") != v.Provider.HasCanonicalID() {
		return false
	}
	if (v.LibraryID != "") != v.Provider.HasLibraryID() {
		return false
	}
	if v.ThumbnailURL == "" {
		return false
	}
	return (v.EmbedURL == "") == (v.Provider == ProviderUnrecognized)
}
