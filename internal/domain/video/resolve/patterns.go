// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package resolve

import "regexp"

// youtubeIDLen is the fixed length of a YouTube video id.
const youtubeIDLen = 11

// Index positions in youtubeShapes, used by tests and debug logging.
const (
	shapeWatch = 0 // youtube.com/watch?...v=<id>
	shapeShort = 1 // youtu.be/<id>
	shapeEmbed = 2 // youtube.com/embed/<id>, youtube-nocookie.com/embed/<id>
	shapeReel  = 3 // youtube.com/shorts/<id>
)

// youtubeShapes are tried in order; any single match is sufficient.
// Each captures exactly 11 id characters followed by a non-id character or end of input.
var youtubeShapes = []*regexp.Regexp{
	shapeWatch: regexp.MustCompile(`(?i)youtube\.com/watch\?(?:[^#\s"'<>]*?[&;])?v=([A-Za-z0-9_-]{11})(?:[^A-Za-z0-9_-]|$)`),
	shapeShort: regexp.MustCompile(`(?i)youtu\.be/([A-Za-z0-9_-]{11})(?:[^A-Za-z0-9_-]|$)`),
	shapeEmbed: regexp.MustCompile(`(?i)youtube(?:-nocookie)?\.com/embed/([A-Za-z0-9_-]{11})(?:[^A-Za-z0-9_-]|$)`),
	shapeReel:  regexp.MustCompile(`(?i)youtube\.com/shorts/([A-Za-z0-9_-]{11})(?:[^A-Za-z0-9_-]|$)`),
}

// bunnyShapes capture (libraryID, videoID). The first covers the iframe host with both
// /embed/ and /play/ paths; the second is the bare-domain fallback for references
// missing the iframe. subdomain, allowing any leading path segments. The fallback
// requires the video id to be the last path segment so a numeric segment in the
// middle of an unrelated path is not taken for a library.
var bunnyShapes = []*regexp.Regexp{
	regexp.MustCompile(`(?i)iframe\.mediadelivery\.net/(?:embed|play)/(\d+)/([A-Za-z0-9-]+)`),
	regexp.MustCompile(`(?i)mediadelivery\.net/(?:[^/\s"'<>?#]+/)*?(\d+)/([A-Za-z0-9-]+)/?(?:[?#\s"'<>]|$)`),
}

// frameTag detects embed markup rather than a bare URL.
var frameTag = regexp.MustCompile(`(?i)<\s*iframe\b`)

func matchYouTube(ref string) (string, bool) {
	for _, re := range youtubeShapes {
		if m := re.FindStringSubmatch(ref); len(m) == 2 && len(m[1]) == youtubeIDLen {
			return m[1], true
		}
	}
	return "", false
}

func matchBunny(ref string) (libraryID, videoID string, ok bool) {
	for _, re := range bunnyShapes {
		if m := re.FindStringSubmatch(ref); len(m) == 3 && m[1] != "" && m[2] != "" {
			return m[1], m[2], true
		}
	}
	return "", "", false
}

func containsFrameTag(s string) bool {
	return frameTag.MatchString(s)
}
