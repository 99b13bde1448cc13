package mapper

import (
	"encoding/json"
	"fmt"
	"time"
)

// Response is the final non-streaming result of one execution request, shaped
// like an OpenAI Responses object.
type Response struct {
	ID                string          `json:"id"`
	Object            string          `json:"object"`
	CreatedAt         int64           `json:"created_at"`
	Model             string          `json:"model"`
	Output            []OutputMessage `json:"output"`
	Usage             *Usage          `json:"usage,omitempty"`
	ParallelToolCalls bool            `json:"parallel_tool_calls"`
	ToolChoice        string          `json:"tool_choice"`
	Tools             []any           `json:"tools"`
}

// OutputMessage is one assistant message in a Response.
type OutputMessage struct {
	ID      string       `json:"id"`
	Type    string       `json:"type"`
	Role    string       `json:"role"`
	Status  string       `json:"status"`
	Content []OutputText `json:"content"`
}

// OutputText is one text block of an output message.
type OutputText struct {
	Type        string `json:"type"`
	Text        string `json:"text"`
	Annotations []any  `json:"annotations"`
}

// Usage is the token accounting block of a Response.
type Usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
	TotalTokens  int `json:"total_tokens"`
}

// Text returns the concatenated text of all output messages.
func (r *Response) Text() string {
	var out string
	for _, msg := range r.Output {
		for _, block := range msg.Content {
			out += block.Text
		}
	}
	return out
}

// Aggregate folds a completed wire event sequence into one final Response.
// Text deltas concatenate into a single assistant message. Token counts come
// from the run's usage events when present; otherwise they are estimated from
// payload sizes so the usage block is never absent.
func (c *Converter) Aggregate(events []Event, model string, input any) *Response {
	var text string
	for _, ev := range events {
		if delta, ok := ev.(TextDeltaEvent); ok {
			text += delta.Delta
		}
	}

	usage := &Usage{}
	if c.usage != nil {
		usage.InputTokens = c.usage.PromptTokens
		usage.OutputTokens = c.usage.CompletionTokens
		usage.TotalTokens = c.usage.TotalTokens
	} else {
		usage.InputTokens = estimateTokens(input)
		usage.OutputTokens = len(text) / 4
		usage.TotalTokens = usage.InputTokens + usage.OutputTokens
	}

	return &Response{
		ID:         fmt.Sprintf("resp_%s", shortID(12)),
		Object:     "response",
		CreatedAt:  time.Now().Unix(),
		Model:      model,
		Usage:      usage,
		ToolChoice: "none",
		Tools:      []any{},
		Output: []OutputMessage{{
			ID:      c.itemID,
			Type:    "message",
			Role:    "assistant",
			Status:  "completed",
			Content: []OutputText{{Type: "output_text", Text: text, Annotations: []any{}}},
		}},
	}
}

// estimateTokens approximates token counts at four characters per token.
func estimateTokens(input any) int {
	switch v := input.(type) {
	case nil:
		return 0
	case string:
		return len(v) / 4
	default:
		data, err := json.Marshal(input)
		if err != nil {
			return 0
		}
		return len(data) / 4
	}
}
