package executor

import (
	"encoding/json"
	"fmt"
	"path"
	"reflect"
	"strings"

	"github.com/agentgate/agentgate/core"
)

// convertAgentInput turns a raw request payload into the engine's native
// agent input. Plain strings take the fast path; lists of message items build
// a structured multimodal message; anything else degrades to text.
func convertAgentInput(req Request) core.AgentInput {
	switch v := req.Input.(type) {
	case string:
		return core.TextInput(v)
	case []any:
		if msg, ok := buildMessageFromInputItems(v); ok {
			return core.MessageInput(msg)
		}
	}
	return core.TextInput(fallbackText(req.Input))
}

// buildMessageFromInputItems assembles one user message from OpenAI-shaped
// input items. Items that are not message-typed mappings are skipped.
func buildMessageFromInputItems(items []any) (core.ChatMessage, bool) {
	var parts []core.Part
	for _, raw := range items {
		item, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		if t, _ := item["type"].(string); t != "" && t != "message" {
			continue
		}
		switch content := item["content"].(type) {
		case string:
			parts = append(parts, core.TextPart{Text: content})
		case []any:
			parts = append(parts, convertContentParts(content)...)
		}
	}
	if len(parts) == 0 {
		parts = append(parts, core.TextPart{Text: ""})
	}
	return core.NewChatMessage("user", parts...), true
}

func convertContentParts(content []any) []core.Part {
	var parts []core.Part
	for _, raw := range content {
		part, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		switch part["type"] {
		case "input_text":
			text, _ := part["text"].(string)
			parts = append(parts, core.TextPart{Text: text})
		case "input_image":
			imageURL, _ := part["image_url"].(string)
			if imageURL == "" {
				continue
			}
			parts = append(parts, core.DataPart{
				URI:       imageURL,
				MediaType: imageMediaType(imageURL),
			})
		case "input_file":
			if p, ok := convertFilePart(part); ok {
				parts = append(parts, p)
			}
		}
	}
	return parts
}

func convertFilePart(part map[string]any) (core.DataPart, bool) {
	filename, _ := part["filename"].(string)
	mediaType := mediaTypeFromFilename(filename)

	if data, _ := part["file_data"].(string); data != "" {
		uri := data
		if !strings.HasPrefix(data, "data:") {
			uri = fmt.Sprintf("data:%s;base64,%s", mediaType, data)
		}
		return core.DataPart{URI: uri, MediaType: mediaType, Filename: filename}, true
	}
	if fileURL, _ := part["file_url"].(string); fileURL != "" {
		return core.DataPart{URI: fileURL, MediaType: mediaType, Filename: filename}, true
	}
	return core.DataPart{}, false
}

// imageMediaType sniffs the media type from a data URI, defaulting to PNG for
// remote URLs and opaque payloads.
func imageMediaType(imageURL string) string {
	if strings.HasPrefix(imageURL, "data:") {
		rest := strings.TrimPrefix(imageURL, "data:")
		if i := strings.IndexAny(rest, ";,"); i > 0 {
			return rest[:i]
		}
	}
	return "image/png"
}

// mediaTypeFromFilename maps a filename extension to a media type.
func mediaTypeFromFilename(filename string) string {
	switch strings.ToLower(strings.TrimPrefix(path.Ext(filename), ".")) {
	case "pdf":
		return "application/pdf"
	case "png":
		return "image/png"
	case "jpg", "jpeg":
		return "image/jpeg"
	case "gif":
		return "image/gif"
	case "wav":
		return "audio/wav"
	case "mp3":
		return "audio/mpeg"
	case "m4a":
		return "audio/mp4"
	case "ogg":
		return "audio/ogg"
	case "flac":
		return "audio/flac"
	case "aac":
		return "audio/aac"
	default:
		return "application/octet-stream"
	}
}

// fallbackText coerces an arbitrary payload to text. Mappings are probed for
// conventional text-bearing keys before being serialized wholesale.
func fallbackText(input any) string {
	switch v := input.(type) {
	case nil:
		return ""
	case string:
		return v
	case map[string]any:
		for _, key := range []string{"message", "text", "input", "content", "query"} {
			if s, ok := v[key].(string); ok && s != "" {
				return s
			}
		}
	}
	if data, err := json.Marshal(input); err == nil {
		return string(data)
	}
	return fmt.Sprintf("%v", input)
}

// selectWorkflowInput picks the raw workflow payload: structured InputData
// takes priority over the generic Input field.
func selectWorkflowInput(req Request) any {
	if len(req.InputData) > 0 {
		return req.InputData
	}
	return req.Input
}

// parseWorkflowInput coerces a raw payload toward the workflow's declared
// start input type. Coercion is best effort with progressive fallback; the
// raw payload passes through when nothing better applies.
func parseWorkflowInput(wf core.Workflow, raw any) any {
	types := wf.StartInputTypes()
	if len(types) == 0 {
		return raw
	}
	return parseInputForType(raw, selectPrimaryInputType(types))
}

// selectPrimaryInputType prefers string, then mappings, then the first
// declared type.
func selectPrimaryInputType(types []reflect.Type) reflect.Type {
	for _, t := range types {
		if t != nil && t.Kind() == reflect.String {
			return t
		}
	}
	for _, t := range types {
		if t != nil && t.Kind() == reflect.Map {
			return t
		}
	}
	return types[0]
}

func parseInputForType(raw any, t reflect.Type) any {
	if t == nil {
		return raw
	}
	switch t.Kind() {
	case reflect.String:
		if s, ok := raw.(string); ok {
			return s
		}
		return fallbackText(raw)
	case reflect.Map:
		if m, ok := raw.(map[string]any); ok {
			return m
		}
		if s, ok := raw.(string); ok {
			var m map[string]any
			if err := json.Unmarshal([]byte(s), &m); err == nil {
				return m
			}
		}
		return raw
	case reflect.Struct:
		data, err := json.Marshal(raw)
		if err != nil {
			return raw
		}
		instance := reflect.New(t)
		if err := json.Unmarshal(data, instance.Interface()); err != nil {
			return raw
		}
		return instance.Elem().Interface()
	default:
		return raw
	}
}
