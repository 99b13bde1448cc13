package core

import "fmt"

// Part represents a polymorphic segment of a chat message. Concrete part
// types implement the unexported isPart marker enabling a closed set.
type Part interface{ isPart() }

// TextPart is a plain text content segment.
type TextPart struct {
	Text string // Plain UTF-8 text
}

// isPart implements the Part interface for TextPart.
func (TextPart) isPart() {}

// DataPart references binary content (image, file, audio) by URI. The URI may
// be a data: URI carrying inlined base64 bytes or an external URL. A media
// type starting with "image/" marks the part as an image; anything else is
// treated as a generic file reference.
type DataPart struct {
	URI       string // data: URI or external URL
	MediaType string // Declared MIME type, may be empty
	Filename  string // Original filename hint, may be empty
}

// isPart implements the Part interface for DataPart.
func (DataPart) isPart() {}

// IsImage reports whether the declared media type marks this part as an image.
func (p DataPart) IsImage() bool {
	return len(p.MediaType) > 6 && p.MediaType[:6] == "image/"
}

// FunctionCallPart records a tool/function invocation request emitted by the
// engine as part of an assistant message.
type FunctionCallPart struct {
	CallID    string // Correlation id matching the eventual result
	Name      string // Tool / function name
	Arguments string // Serialized argument payload (JSON)
}

// isPart implements the Part interface for FunctionCallPart.
func (FunctionCallPart) isPart() {}

// FunctionResultPart records the outcome of a previously emitted function call.
type FunctionResultPart struct {
	CallID string // Matches the originating FunctionCallPart
	Output string // Serialized result payload
}

// isPart implements the Part interface for FunctionResultPart.
func (FunctionResultPart) isPart() {}

// UsagePart carries token accounting attached to an assistant message.
type UsagePart struct {
	TotalTokens      int
	PromptTokens     int
	CompletionTokens int
}

// isPart implements the Part interface for UsagePart.
func (UsagePart) isPart() {}

// partEnvelope is the type-tagged wire form of a Part, used when a thread's
// message history is serialized for persistence.
type partEnvelope struct {
	Type             string `json:"type"`
	Text             string `json:"text,omitempty"`
	URI              string `json:"uri,omitempty"`
	MediaType        string `json:"media_type,omitempty"`
	Filename         string `json:"filename,omitempty"`
	CallID           string `json:"call_id,omitempty"`
	Name             string `json:"name,omitempty"`
	Arguments        string `json:"arguments,omitempty"`
	Output           string `json:"output,omitempty"`
	TotalTokens      int    `json:"total_tokens,omitempty"`
	PromptTokens     int    `json:"prompt_tokens,omitempty"`
	CompletionTokens int    `json:"completion_tokens,omitempty"`
}

const (
	partTypeText           = "text"
	partTypeData           = "data"
	partTypeFunctionCall   = "function_call"
	partTypeFunctionResult = "function_result"
	partTypeUsage          = "usage"
)

func marshalParts(parts []Part) ([]partEnvelope, error) {
	envelopes := make([]partEnvelope, 0, len(parts))
	for _, p := range parts {
		switch v := p.(type) {
		case TextPart:
			envelopes = append(envelopes, partEnvelope{Type: partTypeText, Text: v.Text})
		case DataPart:
			envelopes = append(envelopes, partEnvelope{Type: partTypeData, URI: v.URI, MediaType: v.MediaType, Filename: v.Filename})
		case FunctionCallPart:
			envelopes = append(envelopes, partEnvelope{Type: partTypeFunctionCall, CallID: v.CallID, Name: v.Name, Arguments: v.Arguments})
		case FunctionResultPart:
			envelopes = append(envelopes, partEnvelope{Type: partTypeFunctionResult, CallID: v.CallID, Output: v.Output})
		case UsagePart:
			envelopes = append(envelopes, partEnvelope{
				Type:             partTypeUsage,
				TotalTokens:      v.TotalTokens,
				PromptTokens:     v.PromptTokens,
				CompletionTokens: v.CompletionTokens,
			})
		default:
			return nil, fmt.Errorf("unknown part type %T", p)
		}
	}
	return envelopes, nil
}

func unmarshalParts(envelopes []partEnvelope) ([]Part, error) {
	parts := make([]Part, 0, len(envelopes))
	for _, e := range envelopes {
		switch e.Type {
		case partTypeText:
			parts = append(parts, TextPart{Text: e.Text})
		case partTypeData:
			parts = append(parts, DataPart{URI: e.URI, MediaType: e.MediaType, Filename: e.Filename})
		case partTypeFunctionCall:
			parts = append(parts, FunctionCallPart{CallID: e.CallID, Name: e.Name, Arguments: e.Arguments})
		case partTypeFunctionResult:
			parts = append(parts, FunctionResultPart{CallID: e.CallID, Output: e.Output})
		case partTypeUsage:
			parts = append(parts, UsagePart{
				TotalTokens:      e.TotalTokens,
				PromptTokens:     e.PromptTokens,
				CompletionTokens: e.CompletionTokens,
			})
		default:
			return nil, fmt.Errorf("unknown part type %q", e.Type)
		}
	}
	return parts, nil
}
