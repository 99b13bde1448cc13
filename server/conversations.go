package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/agentgate/agentgate/core"
)

// createConversationRequest is the inbound body of POST /v1/conversations.
// The optional id lets callers reserve deterministic conversation ids.
type createConversationRequest struct {
	ID       string            `json:"id,omitempty"`
	Metadata map[string]string `json:"metadata,omitempty"`
	Items    []itemParam       `json:"items,omitempty"`
}

type updateConversationRequest struct {
	Metadata map[string]string `json:"metadata"`
}

type addItemsRequest struct {
	Items []itemParam `json:"items"`
}

// itemParam accepts message items whose content is either a plain string or a
// list of typed text parts.
type itemParam struct {
	Type    string          `json:"type,omitempty"`
	Role    string          `json:"role,omitempty"`
	Content json.RawMessage `json:"content,omitempty"`
}

type itemParamContent struct {
	Type string `json:"type,omitempty"`
	Text string `json:"text"`
}

// toCore converts the wire item into the store's inbound form.
func (p itemParam) toCore() core.ItemParam {
	param := core.ItemParam{Role: p.Role}
	if len(p.Content) == 0 {
		return param
	}
	var text string
	if err := json.Unmarshal(p.Content, &text); err == nil {
		param.Content = []core.ItemParamContent{{Text: text}}
		return param
	}
	var parts []itemParamContent
	if err := json.Unmarshal(p.Content, &parts); err == nil {
		for _, part := range parts {
			param.Content = append(param.Content, core.ItemParamContent{Text: part.Text})
		}
	}
	return param
}

func toCoreItems(items []itemParam) []core.ItemParam {
	params := make([]core.ItemParam, 0, len(items))
	for _, item := range items {
		if item.Type != "" && item.Type != core.ItemTypeMessage {
			continue
		}
		params = append(params, item.toCore())
	}
	return params
}

func (s *Server) handleCreateConversation(w http.ResponseWriter, r *http.Request) {
	var req createConversationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: %v", err)
		return
	}

	conv, err := s.store.Create(req.Metadata, req.ID)
	if err != nil {
		if errors.Is(err, core.ErrConversationExists) {
			writeError(w, http.StatusConflict, "conversation %s already exists", req.ID)
			return
		}
		writeError(w, http.StatusInternalServerError, "create conversation: %v", err)
		return
	}

	if len(req.Items) > 0 {
		if _, err := s.store.AddItems(conv.ID, toCoreItems(req.Items)); err != nil {
			writeError(w, http.StatusInternalServerError, "add initial items: %v", err)
			return
		}
	}
	writeJSON(w, http.StatusOK, conv)
}

func (s *Server) handleGetConversation(w http.ResponseWriter, r *http.Request) {
	conversationID := chi.URLParam(r, "conversationID")
	conv, ok := s.store.Get(conversationID)
	if !ok {
		writeError(w, http.StatusNotFound, "conversation %s not found", conversationID)
		return
	}
	writeJSON(w, http.StatusOK, conv)
}

func (s *Server) handleUpdateConversation(w http.ResponseWriter, r *http.Request) {
	conversationID := chi.URLParam(r, "conversationID")
	var req updateConversationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: %v", err)
		return
	}

	conv, err := s.store.UpdateMetadata(conversationID, req.Metadata)
	if err != nil {
		if errors.Is(err, core.ErrConversationNotFound) {
			writeError(w, http.StatusNotFound, "conversation %s not found", conversationID)
			return
		}
		writeError(w, http.StatusInternalServerError, "update conversation: %v", err)
		return
	}
	writeJSON(w, http.StatusOK, conv)
}

func (s *Server) handleDeleteConversation(w http.ResponseWriter, r *http.Request) {
	conversationID := chi.URLParam(r, "conversationID")
	deleted, err := s.store.Delete(conversationID)
	if err != nil {
		if errors.Is(err, core.ErrConversationNotFound) {
			writeError(w, http.StatusNotFound, "conversation %s not found", conversationID)
			return
		}
		writeError(w, http.StatusInternalServerError, "delete conversation: %v", err)
		return
	}
	writeJSON(w, http.StatusOK, deleted)
}

func (s *Server) handleAddItems(w http.ResponseWriter, r *http.Request) {
	conversationID := chi.URLParam(r, "conversationID")
	var req addItemsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: %v", err)
		return
	}

	items, err := s.store.AddItems(conversationID, toCoreItems(req.Items))
	if err != nil {
		if errors.Is(err, core.ErrConversationNotFound) {
			writeError(w, http.StatusNotFound, "conversation %s not found", conversationID)
			return
		}
		writeError(w, http.StatusInternalServerError, "add items: %v", err)
		return
	}
	writeJSON(w, http.StatusOK, itemList(items, false))
}

func (s *Server) handleListItems(w http.ResponseWriter, r *http.Request) {
	conversationID := chi.URLParam(r, "conversationID")

	opts := core.ListItemsOptions{
		After: r.URL.Query().Get("after"),
		Order: core.SortOrder(r.URL.Query().Get("order")),
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid limit %q", raw)
			return
		}
		opts.Limit = limit
	}

	items, hasMore, err := s.store.ListItems(conversationID, opts)
	if err != nil {
		if errors.Is(err, core.ErrConversationNotFound) {
			writeError(w, http.StatusNotFound, "conversation %s not found", conversationID)
			return
		}
		writeError(w, http.StatusInternalServerError, "list items: %v", err)
		return
	}
	writeJSON(w, http.StatusOK, itemList(items, hasMore))
}

func (s *Server) handleGetItem(w http.ResponseWriter, r *http.Request) {
	conversationID := chi.URLParam(r, "conversationID")
	itemID := chi.URLParam(r, "itemID")

	item, ok := s.store.GetItem(conversationID, itemID)
	if !ok {
		writeError(w, http.StatusNotFound, "item %s not found in conversation %s", itemID, conversationID)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

// itemList shapes a page of items as an OpenAI list object.
func itemList(items []core.Item, hasMore bool) map[string]any {
	if items == nil {
		items = []core.Item{}
	}
	out := map[string]any{
		"object":   "list",
		"data":     items,
		"has_more": hasMore,
	}
	if len(items) > 0 {
		out["first_id"] = items[0].ItemID()
		out["last_id"] = items[len(items)-1].ItemID()
	}
	return out
}
