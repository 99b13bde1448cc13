package server

import (
	"encoding/json"
	"net/http"

	"github.com/agentgate/agentgate/executor"
	"github.com/agentgate/agentgate/mapper"
)

// responsesRequest is the inbound body of POST /v1/responses. The entity to
// execute comes from entity_id, extra_body.entity_id or, failing both, the
// model field.
type responsesRequest struct {
	Model        string              `json:"model,omitempty"`
	Input        any                 `json:"input,omitempty"`
	Stream       bool                `json:"stream,omitempty"`
	Conversation string              `json:"conversation,omitempty"`
	EntityID     string              `json:"entity_id,omitempty"`
	InputData    map[string]any      `json:"input_data,omitempty"`
	SessionID    string              `json:"session_id,omitempty"`
	ThreadID     string              `json:"thread_id,omitempty"`
	ExtraBody    *responsesExtraBody `json:"extra_body,omitempty"`
}

type responsesExtraBody struct {
	EntityID  string         `json:"entity_id,omitempty"`
	InputData map[string]any `json:"input_data,omitempty"`
	SessionID string         `json:"session_id,omitempty"`
	ThreadID  string         `json:"thread_id,omitempty"`
}

func (r responsesRequest) entityID() string {
	if r.EntityID != "" {
		return r.EntityID
	}
	if r.ExtraBody != nil && r.ExtraBody.EntityID != "" {
		return r.ExtraBody.EntityID
	}
	return r.Model
}

func (r responsesRequest) toExecutorRequest() executor.Request {
	req := executor.Request{
		EntityID:       r.entityID(),
		Input:          r.Input,
		InputData:      r.InputData,
		SessionID:      r.SessionID,
		ThreadID:       r.ThreadID,
		ConversationID: r.Conversation,
	}
	if r.ExtraBody != nil {
		if req.InputData == nil {
			req.InputData = r.ExtraBody.InputData
		}
		if req.SessionID == "" {
			req.SessionID = r.ExtraBody.SessionID
		}
		if req.ThreadID == "" {
			req.ThreadID = r.ExtraBody.ThreadID
		}
	}
	return req
}

func (s *Server) handleResponses(w http.ResponseWriter, r *http.Request) {
	var req responsesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: %v", err)
		return
	}

	entityID := req.entityID()
	if entityID == "" {
		writeError(w, http.StatusBadRequest, "missing entity_id")
		return
	}
	if _, ok := s.exec.GetEntityInfo(entityID); !ok {
		writeError(w, http.StatusNotFound, "entity %s not found", entityID)
		return
	}

	if req.Stream {
		s.streamResponse(w, r, req)
		return
	}
	s.syncResponse(w, r, req)
}

// streamResponse forwards the run as server-sent events, one wire event per
// data frame, terminated by a [DONE] frame.
func (s *Server) streamResponse(w http.ResponseWriter, r *http.Request, req responsesRequest) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	conv := mapper.NewConverter()
	for ev := range s.exec.ExecuteStreaming(r.Context(), req.toExecutorRequest()) {
		for _, wireEv := range conv.Convert(ev) {
			payload, err := json.Marshal(wireEv)
			if err != nil {
				s.logger.Error("failed to marshal stream event", "error", err)
				continue
			}
			if _, err := w.Write(append(append([]byte("data: "), payload...), '\n', '\n')); err != nil {
				s.logger.Warn("client disconnected mid-stream", "error", err)
				return
			}
			flusher.Flush()
		}
	}

	_, _ = w.Write([]byte("data: [DONE]\n\n"))
	flusher.Flush()
}

// syncResponse drains the run and returns one aggregated Response. A failed
// run returns the terminal error instead.
func (s *Server) syncResponse(w http.ResponseWriter, r *http.Request, req responsesRequest) {
	conv := mapper.NewConverter()
	var wireEvents []mapper.Event
	for _, ev := range s.exec.ExecuteSync(r.Context(), req.toExecutorRequest()) {
		wireEvents = append(wireEvents, conv.Convert(ev)...)
	}

	for _, ev := range wireEvents {
		if errEv, ok := ev.(mapper.ErrorEvent); ok {
			writeError(w, http.StatusInternalServerError, "%s", errEv.Message)
			return
		}
	}

	writeJSON(w, http.StatusOK, conv.Aggregate(wireEvents, req.Model, req.Input))
}
