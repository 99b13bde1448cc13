package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

type createThreadRequest struct {
	AgentID string `json:"agent_id"`
}

func (s *Server) handleCreateThread(w http.ResponseWriter, r *http.Request) {
	var req createThreadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: %v", err)
		return
	}
	if req.AgentID == "" {
		writeError(w, http.StatusBadRequest, "agent_id is required")
		return
	}

	threadID := s.exec.CreateThread(req.AgentID)
	writeJSON(w, http.StatusOK, map[string]any{
		"id":         threadID,
		"object":     "thread",
		"created_at": time.Now().Unix(),
		"metadata":   map[string]string{"agent_id": req.AgentID},
	})
}

func (s *Server) handleListThreads(w http.ResponseWriter, r *http.Request) {
	agentID := r.URL.Query().Get("agent_id")
	if agentID == "" {
		writeError(w, http.StatusBadRequest, "agent_id is required")
		return
	}

	threadIDs := s.exec.ListThreadsForAgent(agentID)
	threads := make([]map[string]any, 0, len(threadIDs))
	for _, id := range threadIDs {
		threads = append(threads, map[string]any{"id": id, "object": "thread", "agent_id": agentID})
	}
	writeJSON(w, http.StatusOK, map[string]any{"object": "list", "data": threads})
}

func (s *Server) handleGetThread(w http.ResponseWriter, r *http.Request) {
	threadID := chi.URLParam(r, "threadID")
	if _, ok := s.exec.GetThread(threadID); !ok {
		writeError(w, http.StatusNotFound, "thread %s not found", threadID)
		return
	}

	resp := map[string]any{"id": threadID, "object": "thread"}
	if agentID, ok := s.exec.GetOwningAgent(threadID); ok {
		resp["agent_id"] = agentID
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDeleteThread(w http.ResponseWriter, r *http.Request) {
	threadID := chi.URLParam(r, "threadID")
	if !s.exec.DeleteThread(threadID) {
		writeError(w, http.StatusNotFound, "thread %s not found", threadID)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"id":      threadID,
		"object":  "thread.deleted",
		"deleted": true,
	})
}

func (s *Server) handleThreadMessages(w http.ResponseWriter, r *http.Request) {
	threadID := chi.URLParam(r, "threadID")
	if _, ok := s.exec.GetThread(threadID); !ok {
		writeError(w, http.StatusNotFound, "thread %s not found", threadID)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"object":    "list",
		"data":      s.exec.ThreadDisplayMessages(threadID),
		"thread_id": threadID,
	})
}
