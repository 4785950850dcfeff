// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package model holds the value types produced by video reference resolution.
package model

// ProviderKind is the closed set of providers a raw reference can classify as.
// Every reference maps to exactly one kind; Generic and Unrecognized are catch-alls.
type ProviderKind string

const (
	ProviderYouTube      ProviderKind = "youtube"
	ProviderBunnyStream  ProviderKind = "bunny_stream"
	ProviderGeneric      ProviderKind = "generic"
	ProviderUnrecognized ProviderKind = "unrecognized"
)

// AllProviders lists every kind in classification priority order.
var AllProviders = []ProviderKind{
	ProviderYouTube,
	ProviderBunnyStream,
	ProviderGeneric,
	ProviderUnrecognized,
}

// Valid reports whether k is one of the declared kinds.
func (k ProviderKind) Valid() bool {
	switch k {
	case ProviderYouTube, ProviderBunnyStream, ProviderGeneric, ProviderUnrecognized:
		return true
	}
	return false
}

// HasCanonicalID reports whether references of this kind carry a provider-native id.
func (k ProviderKind) HasCanonicalID() bool {
	return k == ProviderYouTube || k == ProviderBunnyStream
}

// HasLibraryID reports whether references of this kind are namespaced under a library.
func (k ProviderKind) HasLibraryID() bool {
	return k == ProviderBunnyStream
}

func (k ProviderKind) String() string {
	return string(k)
}
