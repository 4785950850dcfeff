// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package resolve

import (
	"strings"

	"golang.org/x/net/html"
)

// frameSrc returns the src attribute of the first iframe element in markup.
// Attribute values come back entity-decoded (&amp; -> &), which matters for
// query strings authored inside HTML.
func frameSrc(markup string) (string, bool) {
	z := html.NewTokenizer(strings.NewReader(markup))
	for {
		switch z.Next() {
		case html.ErrorToken:
			return "", false
		case html.StartTagToken, html.SelfClosingTagToken:
			name, hasAttr := z.TagName()
			if string(name) != "iframe" {
				continue
			}
			for hasAttr {
				var key, val []byte
				key, val, hasAttr = z.TagAttr()
				if string(key) == "src" {
					return string(val), true
				}
			}
			return "", false
		}
	}
}
