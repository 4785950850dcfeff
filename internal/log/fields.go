// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package log

// Canonical field name constants for structured logging.
const (
	// Identity fields
	FieldSessionID  = "session_id"
	FieldRequestID  = "request_id"
	FieldListID     = "list_id"
	FieldGeneration = "generation"

	// Process / pipeline fields
	FieldEvent     = "event"
	FieldComponent = "component"

	// Video reference fields
	FieldReference   = "reference"
	FieldProvider    = "provider"
	FieldCanonicalID = "canonical_id"
	FieldLibraryID   = "library_id"
	FieldEmbedURL    = "embed_url"

	// State fields
	FieldOldState  = "old_state"
	FieldNewState  = "new_state"
	FieldErrorKind = "error_kind"
	FieldRetries   = "retries"

	// HTTP fields
	FieldMethod     = "method"
	FieldPath       = "path"
	FieldStatus     = "status"
	FieldDurationMS = "duration_ms"
)

// MaxReferenceLogBytes bounds raw authored references attached to log lines.
const MaxReferenceLogBytes = 256
