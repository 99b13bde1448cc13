package executor

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentgate/agentgate/core"
)

func TestConvertAgentInput_TextFastPath(t *testing.T) {
	input := convertAgentInput(Request{Input: "hello"})
	require.True(t, input.IsText())
	assert.Equal(t, "hello", input.Text)
}

func TestConvertAgentInput_MessageItems(t *testing.T) {
	input := convertAgentInput(Request{Input: []any{
		map[string]any{
			"type": "message",
			"role": "user",
			"content": []any{
				map[string]any{"type": "input_text", "text": "describe this"},
				map[string]any{"type": "input_image", "image_url": "data:image/jpeg;base64,AAAA"},
				map[string]any{"type": "input_file", "filename": "report.pdf", "file_url": "https://example.com/report.pdf"},
			},
		},
	}})

	require.False(t, input.IsText())
	msg := input.Message
	require.Len(t, msg.Contents, 3)
	assert.Equal(t, "user", msg.Role)
	assert.NotEmpty(t, msg.MessageID)

	assert.Equal(t, core.TextPart{Text: "describe this"}, msg.Contents[0])

	img, ok := msg.Contents[1].(core.DataPart)
	require.True(t, ok)
	assert.Equal(t, "image/jpeg", img.MediaType)
	assert.True(t, img.IsImage())

	file, ok := msg.Contents[2].(core.DataPart)
	require.True(t, ok)
	assert.Equal(t, "application/pdf", file.MediaType)
	assert.Equal(t, "report.pdf", file.Filename)
	assert.Equal(t, "https://example.com/report.pdf", file.URI)
}

func TestConvertAgentInput_InlineFileData(t *testing.T) {
	input := convertAgentInput(Request{Input: []any{
		map[string]any{
			"type": "message",
			"content": []any{
				map[string]any{"type": "input_file", "filename": "notes.png", "file_data": "iVBORw0KGgo="},
			},
		},
	}})

	require.False(t, input.IsText())
	part, ok := input.Message.Contents[0].(core.DataPart)
	require.True(t, ok)
	assert.Equal(t, "data:image/png;base64,iVBORw0KGgo=", part.URI)
	assert.Equal(t, "image/png", part.MediaType)
}

func TestConvertAgentInput_StringContent(t *testing.T) {
	input := convertAgentInput(Request{Input: []any{
		map[string]any{"type": "message", "content": "plain content"},
	}})
	require.False(t, input.IsText())
	assert.Equal(t, "plain content", input.Message.Text())
}

func TestConvertAgentInput_EmptyItemsYieldEmptyMessage(t *testing.T) {
	input := convertAgentInput(Request{Input: []any{}})
	require.False(t, input.IsText())
	require.Len(t, input.Message.Contents, 1)
	assert.Equal(t, core.TextPart{Text: ""}, input.Message.Contents[0])
}

func TestConvertAgentInput_MapFallback(t *testing.T) {
	input := convertAgentInput(Request{Input: map[string]any{"query": "find docs"}})
	require.True(t, input.IsText())
	assert.Equal(t, "find docs", input.Text)
}

func TestConvertAgentInput_SerializeFallback(t *testing.T) {
	input := convertAgentInput(Request{Input: map[string]any{"unrelated": 42}})
	require.True(t, input.IsText())
	assert.JSONEq(t, `{"unrelated":42}`, input.Text)
}

func TestImageMediaType(t *testing.T) {
	assert.Equal(t, "image/webp", imageMediaType("data:image/webp;base64,AAAA"))
	assert.Equal(t, "image/png", imageMediaType("https://example.com/pic"))
	assert.Equal(t, "image/png", imageMediaType("data:;base64,AAAA"))
}

func TestMediaTypeFromFilename(t *testing.T) {
	cases := map[string]string{
		"doc.pdf":    "application/pdf",
		"photo.JPG":  "image/jpeg",
		"clip.mp3":   "audio/mpeg",
		"sound.flac": "audio/flac",
		"unknown":    "application/octet-stream",
	}
	for filename, want := range cases {
		assert.Equal(t, want, mediaTypeFromFilename(filename), filename)
	}
}

func TestSelectPrimaryInputType(t *testing.T) {
	strType := reflect.TypeOf("")
	mapType := reflect.TypeOf(map[string]any{})
	structType := reflect.TypeOf(struct{ Name string }{})

	assert.Equal(t, strType, selectPrimaryInputType([]reflect.Type{structType, strType}))
	assert.Equal(t, mapType, selectPrimaryInputType([]reflect.Type{structType, mapType}))
	assert.Equal(t, structType, selectPrimaryInputType([]reflect.Type{structType}))
}

func TestParseInputForType(t *testing.T) {
	t.Run("string from map", func(t *testing.T) {
		got := parseInputForType(map[string]any{"text": "hi"}, reflect.TypeOf(""))
		assert.Equal(t, "hi", got)
	})

	t.Run("map from json string", func(t *testing.T) {
		got := parseInputForType(`{"a":1}`, reflect.TypeOf(map[string]any{}))
		assert.Equal(t, map[string]any{"a": float64(1)}, got)
	})

	t.Run("struct from map", func(t *testing.T) {
		type startInput struct {
			Topic string `json:"topic"`
		}
		got := parseInputForType(map[string]any{"topic": "go"}, reflect.TypeOf(startInput{}))
		assert.Equal(t, startInput{Topic: "go"}, got)
	})

	t.Run("raw passthrough on mismatch", func(t *testing.T) {
		got := parseInputForType("not json", reflect.TypeOf(map[string]any{}))
		assert.Equal(t, "not json", got)
	})
}
