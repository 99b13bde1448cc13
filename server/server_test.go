package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentgate/agentgate/conversation"
	"github.com/agentgate/agentgate/core"
	"github.com/agentgate/agentgate/discovery"
	"github.com/agentgate/agentgate/executor"
	"github.com/agentgate/agentgate/internal/testutil"
)

func newTestServer(t *testing.T) (*httptest.Server, *discovery.Registry, *executor.Executor) {
	t.Helper()
	store := conversation.NewInMemoryStore()
	reg := discovery.NewRegistry()
	exec := executor.New(reg, func(o *executor.Options) { o.Store = store })
	srv := New(store, exec)
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)
	return ts, reg, exec
}

func doJSON(t *testing.T, method, url string, body any) (*http.Response, map[string]any) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader([]byte("{}"))
	}
	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })

	var decoded map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	return resp, decoded
}

func TestConversationLifecycle(t *testing.T) {
	ts, _, _ := newTestServer(t)

	resp, body := doJSON(t, http.MethodPost, ts.URL+"/v1/conversations", map[string]any{
		"metadata": map[string]string{"topic": "demo"},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	convID := body["id"].(string)
	assert.True(t, strings.HasPrefix(convID, "conv_"))
	assert.Equal(t, "conversation", body["object"])

	resp, body = doJSON(t, http.MethodGet, ts.URL+"/v1/conversations/"+convID, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, convID, body["id"])

	resp, body = doJSON(t, http.MethodPost, ts.URL+"/v1/conversations/"+convID, map[string]any{
		"metadata": map[string]string{"topic": "updated"},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "updated", body["metadata"].(map[string]any)["topic"])

	resp, body = doJSON(t, http.MethodDelete, ts.URL+"/v1/conversations/"+convID, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["deleted"])

	resp, _ = doJSON(t, http.MethodGet, ts.URL+"/v1/conversations/"+convID, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestCreateConversation_Conflict(t *testing.T) {
	ts, _, _ := newTestServer(t)

	resp, _ := doJSON(t, http.MethodPost, ts.URL+"/v1/conversations", map[string]any{"id": "conv_fixed"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = doJSON(t, http.MethodPost, ts.URL+"/v1/conversations", map[string]any{"id": "conv_fixed"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestItems_AddListGet(t *testing.T) {
	ts, _, _ := newTestServer(t)

	_, body := doJSON(t, http.MethodPost, ts.URL+"/v1/conversations", nil)
	convID := body["id"].(string)

	resp, body := doJSON(t, http.MethodPost, ts.URL+"/v1/conversations/"+convID+"/items", map[string]any{
		"items": []map[string]any{
			{"type": "message", "role": "user", "content": "hello"},
			{"type": "message", "role": "assistant", "content": []map[string]any{
				{"type": "output_text", "text": "hi back"},
			}},
		},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	added := body["data"].([]any)
	require.Len(t, added, 2)
	firstID := added[0].(map[string]any)["id"].(string)

	resp, body = doJSON(t, http.MethodGet, ts.URL+"/v1/conversations/"+convID+"/items?limit=1", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	page := body["data"].([]any)
	require.Len(t, page, 1)
	assert.Equal(t, true, body["has_more"])
	assert.Equal(t, firstID, body["first_id"])

	// Cursor continues after the first page.
	after := body["last_id"].(string)
	resp, body = doJSON(t, http.MethodGet, ts.URL+"/v1/conversations/"+convID+"/items?limit=10&after="+after, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	rest := body["data"].([]any)
	require.Len(t, rest, 1)
	assert.Equal(t, false, body["has_more"])

	// Descending order reverses the sequence.
	resp, body = doJSON(t, http.MethodGet, ts.URL+"/v1/conversations/"+convID+"/items?order=desc", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	desc := body["data"].([]any)
	require.Len(t, desc, 2)
	assert.NotEqual(t, firstID, desc[0].(map[string]any)["id"])

	resp, body = doJSON(t, http.MethodGet, ts.URL+"/v1/conversations/"+convID+"/items/"+firstID, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, firstID, body["id"])

	resp, _ = doJSON(t, http.MethodGet, ts.URL+"/v1/conversations/"+convID+"/items/item_missing", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestItems_UnknownConversation(t *testing.T) {
	ts, _, _ := newTestServer(t)
	resp, _ := doJSON(t, http.MethodGet, ts.URL+"/v1/conversations/conv_missing/items", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestResponses_Sync(t *testing.T) {
	ts, reg, _ := newTestServer(t)
	reg.RegisterAgent("echo", &testutil.ScriptedAgent{
		AgentName: "Echo",
		Updates: []core.AgentUpdate{
			{Contents: []core.Part{core.TextPart{Text: "The answer "}}},
			{Contents: []core.Part{core.TextPart{Text: "is 42."}}},
		},
	}, "test agent")

	resp, body := doJSON(t, http.MethodPost, ts.URL+"/v1/responses", map[string]any{
		"model": "echo",
		"input": "question",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "response", body["object"])

	output := body["output"].([]any)
	require.Len(t, output, 1)
	content := output[0].(map[string]any)["content"].([]any)
	assert.Equal(t, "The answer is 42.", content[0].(map[string]any)["text"])
}

func TestResponses_EntityIDFromExtraBody(t *testing.T) {
	ts, reg, _ := newTestServer(t)
	reg.RegisterAgent("echo", &testutil.ScriptedAgent{
		AgentName: "Echo",
		Updates:   []core.AgentUpdate{{Contents: []core.Part{core.TextPart{Text: "ok"}}}},
	}, "")

	resp, _ := doJSON(t, http.MethodPost, ts.URL+"/v1/responses", map[string]any{
		"input":      "hi",
		"extra_body": map[string]any{"entity_id": "echo"},
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestResponses_UnknownEntity(t *testing.T) {
	ts, _, _ := newTestServer(t)
	resp, _ := doJSON(t, http.MethodPost, ts.URL+"/v1/responses", map[string]any{
		"model": "missing",
		"input": "hi",
	})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestResponses_MissingEntityID(t *testing.T) {
	ts, _, _ := newTestServer(t)
	resp, _ := doJSON(t, http.MethodPost, ts.URL+"/v1/responses", map[string]any{"input": "hi"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestResponses_Streaming(t *testing.T) {
	ts, reg, _ := newTestServer(t)
	reg.RegisterAgent("echo", &testutil.ScriptedAgent{
		AgentName: "Echo",
		Updates: []core.AgentUpdate{
			{Contents: []core.Part{core.TextPart{Text: "chunk1"}}},
			{Contents: []core.Part{core.TextPart{Text: "chunk2"}}},
		},
	}, "")

	payload, _ := json.Marshal(map[string]any{"model": "echo", "input": "hi", "stream": true})
	resp, err := http.Post(ts.URL+"/v1/responses", "application/json", bytes.NewReader(payload))
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	var buf bytes.Buffer
	_, err = buf.ReadFrom(resp.Body)
	require.NoError(t, err)
	raw := buf.String()

	frames := strings.Split(strings.TrimSpace(raw), "\n\n")
	require.Len(t, frames, 3)
	assert.Equal(t, "data: [DONE]", frames[2])

	var first map[string]any
	require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(frames[0], "data: ")), &first))
	assert.Equal(t, "response.output_text.delta", first["type"])
	assert.Equal(t, "chunk1", first["delta"])
	assert.Equal(t, float64(1), first["sequence_number"])
}

func TestThreadEndpoints(t *testing.T) {
	ts, _, _ := newTestServer(t)

	resp, body := doJSON(t, http.MethodPost, ts.URL+"/v1/threads", map[string]any{"agent_id": "agent-a"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	threadID := body["id"].(string)
	assert.Equal(t, "thread", body["object"])

	resp, body = doJSON(t, http.MethodGet, ts.URL+"/v1/threads?agent_id=agent-a", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, body["data"].([]any), 1)

	resp, body = doJSON(t, http.MethodGet, ts.URL+"/v1/threads/"+threadID, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "agent-a", body["agent_id"])

	resp, body = doJSON(t, http.MethodGet, ts.URL+"/v1/threads/"+threadID+"/messages", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, threadID, body["thread_id"])

	resp, body = doJSON(t, http.MethodDelete, ts.URL+"/v1/threads/"+threadID, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["deleted"])

	resp, _ = doJSON(t, http.MethodGet, ts.URL+"/v1/threads/"+threadID, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestThreadCreate_MissingAgentID(t *testing.T) {
	ts, _, _ := newTestServer(t)
	resp, _ := doJSON(t, http.MethodPost, ts.URL+"/v1/threads", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestEntityEndpoints(t *testing.T) {
	ts, reg, _ := newTestServer(t)
	reg.RegisterAgent("echo", &testutil.ScriptedAgent{AgentName: "Echo"}, "an echoing agent")

	resp, body := doJSON(t, http.MethodGet, ts.URL+"/v1/entities", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	entities := body["entities"].([]any)
	require.Len(t, entities, 1)
	assert.Equal(t, "echo", entities[0].(map[string]any)["id"])

	resp, body = doJSON(t, http.MethodGet, ts.URL+"/v1/entities/echo/info", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "agent", body["type"])
	assert.Equal(t, "an echoing agent", body["description"])

	resp, _ = doJSON(t, http.MethodGet, ts.URL+"/v1/entities/missing/info", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestHealth(t *testing.T) {
	ts, reg, _ := newTestServer(t)
	reg.RegisterAgent("echo", &testutil.ScriptedAgent{AgentName: "Echo"}, "")

	resp, body := doJSON(t, http.MethodGet, ts.URL+"/health", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, float64(1), body["entities_count"])
}
