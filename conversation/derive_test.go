package conversation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentgate/agentgate/core"
	"github.com/agentgate/agentgate/internal/testutil"
)

func TestDeriveItems_MessageWithMixedContent(t *testing.T) {
	msg := testutil.NewMessageBuilder("assistant").
		ID("m1").
		Text("see attached").
		Data("https://example.com/chart.png", "image/png", "chart.png").
		Data("https://example.com/report.pdf", "application/pdf", "report.pdf").
		Build()

	items := deriveItems(msg)
	require.Len(t, items, 1)

	m, ok := items[0].(core.MessageItem)
	require.True(t, ok)
	assert.Equal(t, "item_m1", m.ID)
	assert.Equal(t, "assistant", m.Role)
	assert.Equal(t, core.ItemStatusCompleted, m.Status)
	require.Len(t, m.Content, 3)
	assert.Equal(t, core.ItemText{Text: "see attached"}, m.Content[0])
	assert.Equal(t, core.ItemImage{ImageURL: "https://example.com/chart.png", Detail: "auto"}, m.Content[1])
	assert.Equal(t, core.ItemFile{FileURL: "https://example.com/report.pdf", Filename: "report.pdf"}, m.Content[2])
}

func TestDeriveItems_FunctionCallAndResult(t *testing.T) {
	msg := testutil.NewMessageBuilder("assistant").
		ID("m1").
		FunctionCall("c1", "search", `{"q":"go"}`).
		FunctionResult("c1", `{"hits":3}`).
		Build()

	items := deriveItems(msg)
	require.Len(t, items, 2)

	call, ok := items[0].(core.FunctionCallItem)
	require.True(t, ok)
	assert.Equal(t, "item_m1_call_c1", call.ID)
	assert.Equal(t, "c1", call.CallID)
	assert.Equal(t, "search", call.Name)

	result, ok := items[1].(core.FunctionCallOutputItem)
	require.True(t, ok)
	assert.Equal(t, "item_m1_result_c1", result.ID)
	assert.Equal(t, `{"hits":3}`, result.Output)
}

func TestDeriveItems_MessagePrecedesCalls(t *testing.T) {
	msg := testutil.NewMessageBuilder("assistant").
		ID("m1").
		FunctionCall("c1", "search", "{}").
		Text("searching now").
		Build()

	items := deriveItems(msg)
	require.Len(t, items, 2)
	_, isMessage := items[0].(core.MessageItem)
	assert.True(t, isMessage, "message item comes before function call items")
	_, isCall := items[1].(core.FunctionCallItem)
	assert.True(t, isCall)
}

func TestDeriveItems_SkipsIncompleteParts(t *testing.T) {
	msg := core.ChatMessage{
		MessageID: "m1",
		Role:      "assistant",
		Contents: []core.Part{
			core.FunctionCallPart{Name: "missing-call-id"},
			core.FunctionResultPart{Output: "missing-call-id"},
			core.UsagePart{TotalTokens: 3},
		},
	}

	items := deriveItems(msg)
	assert.Empty(t, items, "parts without ids and usage-only content derive no items")
}

func TestDeriveItems_PDFFilenameFallback(t *testing.T) {
	msg := testutil.NewMessageBuilder("user").
		ID("m1").
		Data("data:application/pdf;base64,AAAA", "application/pdf", "").
		Build()

	items := deriveItems(msg)
	require.Len(t, items, 1)
	m := items[0].(core.MessageItem)
	require.Len(t, m.Content, 1)
	assert.Equal(t, "document.pdf", m.Content[0].(core.ItemFile).Filename)
}
