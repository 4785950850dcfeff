// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package resolve

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
)

// Clean normalizes an authored reference before classification:
// Unicode format characters (zero-width space/joiners, BOM, bidi marks) pasted from
// rich-text editors are removed and surrounding whitespace is trimmed.
// Input that is not valid UTF-8 is only trimmed, so its bytes pass through unchanged.
func Clean(raw string) string {
	if hasNonASCII(raw) && utf8.ValidString(raw) {
		if out, _, err := transform.String(runes.Remove(runes.In(unicode.Cf)), raw); err == nil {
			raw = out
		}
	}
	return strings.TrimSpace(raw)
}

func hasNonASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return true
		}
	}
	return false
}
