// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package api

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ManuGH/vidresolve/internal/api/middleware"
	"github.com/ManuGH/vidresolve/internal/domain/video/memo"
	"github.com/ManuGH/vidresolve/internal/log"
	"github.com/ManuGH/vidresolve/internal/telemetry"
)

// handleResolve resolves one reference. A missing reference parameter resolves
// the empty reference, which is Unrecognized.
func (s *Server) handleResolve(w http.ResponseWriter, r *http.Request) {
	v := s.deps.Resolver.Resolve(r.URL.Query().Get("reference"))
	middleware.AddSpanAttributes(r, telemetry.ResolutionAttributes(v.Provider.String(), v.CanonicalID, v.Playable())...)
	writeJSON(w, http.StatusOK, toVideoDTO(v))
}

// handleResolveList resolves every reference of a rendered list through the list's memo.
// Items keep request order; a changed identity invalidates the memo first.
func (s *Server) handleResolveList(w http.ResponseWriter, r *http.Request) {
	listID := chi.URLParam(r, "listID")

	var req listRequest
	if !decodeBody(w, r, s.cfg.MaxBodyBytes, &req) {
		return
	}
	if len(req.References) > s.cfg.MaxListLength {
		writeError(w, r, http.StatusBadRequest, codeTooManyReferences,
			fmt.Sprintf("a list holds at most %d references", s.cfg.MaxListLength))
		return
	}

	refs := make([]string, len(req.References))
	for i, ref := range req.References {
		refs[i] = deref(ref)
	}
	identity := req.Identity
	if identity == "" {
		identity = memo.ListIdentity(refs)
	}

	resolved := s.deps.Lists.For(listID).ResolveAll(identity, refs)
	items := make([]videoDTO, len(resolved))
	for i, v := range resolved {
		items[i] = toVideoDTO(v)
	}

	middleware.AddSpanAttributes(r, telemetry.ListAttributes(identity, len(items))...)
	logger := log.WithComponentFromContext(r.Context(), "api")
	logger.Debug().
		Str(log.FieldEvent, "list.resolved").
		Str(log.FieldListID, listID).
		Int("items", len(items)).
		Msg("list resolved")

	writeJSON(w, http.StatusOK, listResponse{ListID: listID, Identity: identity, Items: items})
}

// handleDropList forgets the memo of a list that is no longer rendered.
func (s *Server) handleDropList(w http.ResponseWriter, r *http.Request) {
	s.deps.Lists.Drop(chi.URLParam(r, "listID"))
	w.WriteHeader(http.StatusNoContent)
}
