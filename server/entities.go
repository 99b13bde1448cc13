package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/agentgate/agentgate/core"
)

func (s *Server) handleListEntities(w http.ResponseWriter, r *http.Request) {
	entities := s.exec.ListEntities()
	if entities == nil {
		entities = []*core.EntityInfo{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"entities": entities})
}

func (s *Server) handleEntityInfo(w http.ResponseWriter, r *http.Request) {
	entityID := chi.URLParam(r, "entityID")
	info, ok := s.exec.GetEntityInfo(entityID)
	if !ok {
		writeError(w, http.StatusNotFound, "entity %s not found", entityID)
		return
	}
	writeJSON(w, http.StatusOK, info)
}
