// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package resolve turns authored video references into provider-correct embed and
// thumbnail URLs. Classification and synthesis are pure and total: every input maps
// to exactly one result and nothing here performs I/O.
package resolve

import "github.com/ManuGH/vidresolve/internal/domain/video/model"

// maxUnwrapDepth bounds embed-markup unwrapping to a single level.
const maxUnwrapDepth = 1

// Classify maps a raw reference to its provider and provider-native identifiers.
//
// Rules are tried in fixed priority order and the first match wins:
//  1. YouTube URL shapes (watch?v=, youtu.be/, /embed/, /shorts/)
//  2. Bunny Stream iframe/embed/play paths, then the bare mediadelivery.net fallback
//  3. iframe markup: the src attribute is extracted and classified once more
//  4. Generic: any other non-empty input
//  5. Unrecognized: empty or whitespace-only input
func Classify(raw string) model.Classification {
	return classify(raw, 0)
}

func classify(raw string, depth int) model.Classification {
	ref := Clean(raw)
	if ref == "" {
		return model.Classification{Provider: model.ProviderUnrecognized}
	}

	if id, ok := matchYouTube(ref); ok {
		return model.Classification{
			Provider:    model.ProviderYouTube,
			CanonicalID: id,
		}
	}

	if libraryID, videoID, ok := matchBunny(ref); ok {
		return model.Classification{
			Provider:    model.ProviderBunnyStream,
			CanonicalID: videoID,
			LibraryID:   libraryID,
		}
	}

	if containsFrameTag(ref) && depth < maxUnwrapDepth {
		if src, ok := frameSrc(ref); ok {
			src = Clean(src)
			if src != "" && !containsFrameTag(src) {
				return classify(src, depth+1)
			}
		}
	}

	return model.Classification{
		Provider:  model.ProviderGeneric,
		Reference: ref,
	}
}
