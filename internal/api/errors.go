// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ManuGH/vidresolve/internal/api/middleware"
	"github.com/ManuGH/vidresolve/internal/domain/playback/controller"
	"github.com/ManuGH/vidresolve/internal/domain/playback/lifecycle"
	"github.com/ManuGH/vidresolve/internal/log"
	"github.com/ManuGH/vidresolve/internal/telemetry"
)

// Error codes carried in the "error" field of JSON error bodies.
const (
	codeInvalidRequest    = "invalid_request"
	codeBodyTooLarge      = "body_too_large"
	codeTooManyReferences = "too_many_references"
	codeUnknownEvent      = "unknown_event"
	codeSessionNotFound   = "session_not_found"
	codeStaleGeneration   = "stale_generation"
	codeNotRetryable      = "not_retryable"
	codeIllegalTransition = "illegal_transition"
	codeInvalidProgress   = "invalid_progress"
	codeInternal          = "internal_error"
)

type errorResponse struct {
	Error  string `json:"error"`
	Detail string `json:"detail,omitempty"`
}

// writeJSON writes a JSON response with the given status code
func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError writes an error body and tags the request span with the code.
func writeError(w http.ResponseWriter, r *http.Request, status int, code, detail string) {
	middleware.AddSpanAttributes(r, telemetry.ErrorAttributes(code)...)
	writeJSON(w, status, errorResponse{Error: code, Detail: detail})
}

// classify maps domain errors to an HTTP status and error code.
// ErrNotRetryable is checked first: it is also an ErrIllegalTransition.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, controller.ErrSessionNotFound), errors.Is(err, controller.ErrSessionClosed):
		return http.StatusNotFound, codeSessionNotFound
	case errors.Is(err, controller.ErrStaleGeneration):
		return http.StatusConflict, codeStaleGeneration
	case errors.Is(err, lifecycle.ErrNotRetryable):
		return http.StatusConflict, codeNotRetryable
	case errors.Is(err, lifecycle.ErrIllegalTransition):
		return http.StatusConflict, codeIllegalTransition
	case errors.Is(err, controller.ErrInvalidProgress):
		return http.StatusBadRequest, codeInvalidProgress
	default:
		return http.StatusInternalServerError, codeInternal
	}
}

// writeDomainError writes the mapped error for err.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := classify(err)

	logger := log.WithComponentFromContext(r.Context(), "api")
	if status == http.StatusInternalServerError {
		traceID, _ := middleware.ExtractTraceContext(r)
		logger.Error().Err(err).
			Str(log.FieldEvent, "api.internal_error").
			Str("trace_id", traceID).
			Msg("request failed")
		writeError(w, r, status, code, "an unexpected error occurred")
		return
	}
	logger.Debug().Err(err).Str(log.FieldEvent, "api.rejected").Str("code", code).Msg("request rejected")
	writeError(w, r, status, code, err.Error())
}

// decodeBody decodes a bounded JSON body, rejecting unknown fields.
// It writes the error response itself and reports whether decoding succeeded.
func decodeBody(w http.ResponseWriter, r *http.Request, limit int64, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, r, http.StatusRequestEntityTooLarge, codeBodyTooLarge, err.Error())
			return false
		}
		writeError(w, r, http.StatusBadRequest, codeInvalidRequest, err.Error())
		return false
	}
	if dec.More() {
		writeError(w, r, http.StatusBadRequest, codeInvalidRequest, "body must contain a single JSON object")
		return false
	}
	return true
}
