// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ManuGH/vidresolve/internal/api/middleware"
	"github.com/ManuGH/vidresolve/internal/domain/playback/controller"
	"github.com/ManuGH/vidresolve/internal/domain/playback/lifecycle"
	"github.com/ManuGH/vidresolve/internal/log"
	"github.com/ManuGH/vidresolve/internal/telemetry"
)

const eventProgress = "progress"

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req referenceRequest
	if !decodeBody(w, r, s.cfg.MaxBodyBytes, &req) {
		return
	}

	_, snap, err := s.deps.Sessions.Create(deref(req.Reference))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	s.writeSession(w, r, http.StatusCreated, snap, "")
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	c, r, ok := s.session(w, r)
	if !ok {
		return
	}
	s.writeSession(w, r, http.StatusOK, c.Snapshot(), "")
}

// handleReplaceReference re-creates the session for a new reference under a new generation.
func (s *Server) handleReplaceReference(w http.ResponseWriter, r *http.Request) {
	c, r, ok := s.session(w, r)
	if !ok {
		return
	}
	var req referenceRequest
	if !decodeBody(w, r, s.cfg.MaxBodyBytes, &req) {
		return
	}

	snap, err := c.Load(deref(req.Reference))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	s.writeSession(w, r, http.StatusOK, snap, lifecycle.EvReferenceSupplied.String())
}

// handleSessionEvent applies a frame signal or a progress report.
func (s *Server) handleSessionEvent(w http.ResponseWriter, r *http.Request) {
	c, r, ok := s.session(w, r)
	if !ok {
		return
	}
	var req eventRequest
	if !decodeBody(w, r, s.cfg.MaxBodyBytes, &req) {
		return
	}

	var (
		snap controller.Snapshot
		err  error
	)
	if req.Type == eventProgress {
		snap, err = c.Progress(req.Generation, req.Position, req.Duration)
	} else {
		kind, known := lifecycle.ParseFrameSignal(req.Type)
		if !known {
			writeError(w, r, http.StatusBadRequest, codeUnknownEvent,
				"type must be one of loaded, failed, play, pause, ended, progress")
			return
		}
		snap, err = c.Signal(req.Generation, lifecycle.Event{Kind: kind, Detail: req.Detail})
	}
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	s.writeSession(w, r, http.StatusOK, snap, req.Type)
}

func (s *Server) handleRetrySession(w http.ResponseWriter, r *http.Request) {
	c, r, ok := s.session(w, r)
	if !ok {
		return
	}
	snap, err := c.Retry()
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	s.writeSession(w, r, http.StatusOK, snap, lifecycle.EvRetry.String())
}

func (s *Server) handleCloseSession(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.Sessions.Close(chi.URLParam(r, "sessionID")); err != nil {
		writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// session looks up the addressed session and returns the request with the
// session id attached to its logging context.
func (s *Server) session(w http.ResponseWriter, r *http.Request) (*controller.Controller, *http.Request, bool) {
	id := chi.URLParam(r, "sessionID")
	c, err := s.deps.Sessions.Get(id)
	if err != nil {
		writeDomainError(w, r, err)
		return nil, r, false
	}
	r = r.WithContext(log.ContextWithSessionID(r.Context(), id))
	return c, r, true
}

func (s *Server) writeSession(w http.ResponseWriter, r *http.Request, status int, snap controller.Snapshot, event string) {
	middleware.AddSpanAttributes(r, telemetry.PlaybackAttributes(snap.ID, snap.Generation, string(snap.State), event)...)
	writeJSON(w, status, toSessionDTO(snap))
}
