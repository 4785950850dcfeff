// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package resolve

import (
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"strings"

	"github.com/ManuGH/vidresolve/internal/domain/video/model"
)

const (
	youtubeEmbedBase     = "https://www.youtube.com/embed/"
	youtubeThumbnailBase = "https://img.youtube.com/vi/"
	youtubeThumbnailFile = "/mqdefault.jpg"

	bunnyEmbedBase     = "https://iframe.mediadelivery.net/embed/"
	bunnyThumbnailBase = "https://iframe.mediadelivery.net/thumbnail/"

	// DefaultPlaceholderThumbnail is served when no thumbnail pattern applies.
	DefaultPlaceholderThumbnail = "/static/img/video-placeholder.svg"
)

// Options parameterize URL synthesis. The zero value is usable.
type Options struct {
	// Origin is the hosting page origin (scheme://host[:port]) the YouTube player API
	// may post messages to. Empty omits the origin parameter.
	Origin string
	// PlaceholderThumbnail replaces DefaultPlaceholderThumbnail when set.
	PlaceholderThumbnail string
}

func (o Options) placeholder() string {
	if p := strings.TrimSpace(o.PlaceholderThumbnail); p != "" {
		return p
	}
	return DefaultPlaceholderThumbnail
}

func (o Options) origin() string {
	return strings.TrimRight(strings.TrimSpace(o.Origin), "/")
}

// Fingerprint identifies the effective options: two values with the same fingerprint
// synthesize identical URLs for every reference.
func (o Options) Fingerprint() string {
	sum := sha256.Sum256([]byte(o.origin() + "\x00" + o.placeholder()))
	return hex.EncodeToString(sum[:8])
}

// Synthesize builds the canonical embed and thumbnail URLs for a classification.
// Bunny references are always rebuilt in /embed/ form, never passed through, so stale
// query parameters on the authored URL do not leak into the frame.
func Synthesize(c model.Classification, opts Options) model.ResolvedVideo {
	switch c.Provider {
	case model.ProviderYouTube:
		if c.CanonicalID == "" {
			break
		}
		return model.ResolvedVideo{
			Provider:     model.ProviderYouTube,
			CanonicalID:  c.CanonicalID,
			EmbedURL:     youtubeEmbedBase + c.CanonicalID + "?" + youtubeEmbedQuery(opts.origin()),
			ThumbnailURL: youtubeThumbnailBase + c.CanonicalID + youtubeThumbnailFile,
		}

	case model.ProviderBunnyStream:
		if c.CanonicalID == "" || c.LibraryID == "" {
			break
		}
		path := c.LibraryID + "/" + c.CanonicalID
		return model.ResolvedVideo{
			Provider:     model.ProviderBunnyStream,
			CanonicalID:  c.CanonicalID,
			LibraryID:    c.LibraryID,
			EmbedURL:     bunnyEmbedBase + path + "?" + bunnyEmbedQuery(),
			ThumbnailURL: bunnyThumbnailBase + path,
		}

	case model.ProviderGeneric:
		if c.Reference == "" {
			break
		}
		return model.ResolvedVideo{
			Provider:     model.ProviderGeneric,
			EmbedURL:     c.Reference,
			ThumbnailURL: opts.placeholder(),
		}
	}

	return model.ResolvedVideo{
		Provider:     model.ProviderUnrecognized,
		ThumbnailURL: opts.placeholder(),
	}
}

// youtubeEmbedQuery disables related videos and the title overlay, and enables
// player API messaging scoped to origin.
func youtubeEmbedQuery(origin string) string {
	q := url.Values{}
	q.Set("rel", "0")
	q.Set("showinfo", "0")
	q.Set("enablejsapi", "1")
	if origin != "" {
		q.Set("origin", origin)
	}
	return q.Encode()
}

// bunnyEmbedQuery disables autoplay and keeps the native controls.
func bunnyEmbedQuery() string {
	q := url.Values{}
	q.Set("autoplay", "false")
	q.Set("controls", "true")
	q.Set("preload", "true")
	return q.Encode()
}
