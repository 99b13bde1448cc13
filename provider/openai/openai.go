// Package openai provides a reference core.Agent backed by the OpenAI Chat
// Completions API (streaming, with function/tool call passthrough). It adapts
// thread history and request input into the SDK's message format and turns
// streamed chunks back into agent updates.
package openai

import (
	"context"
	"fmt"
	"strings"

	"github.com/openai/openai-go"

	"github.com/agentgate/agentgate/core"
)

// aggCall aggregates partial tool call streaming deltas (id, name, arguments)
// allowing reconstruction of complete function call parts when the finish
// reason is emitted. Internal helper (unexported).
type aggCall struct{ id, name, args string }

// Options configure the OpenAI agent.
// Fields mirror a subset of Chat Completion parameters intentionally kept
// minimal; extend via functional options without breaking callers.
type Options struct {
	Model               string
	Temperature         float64
	MaxCompletionTokens int64
	Instructions        string
}

// Agent wraps the OpenAI Chat Completions API behind the core.Agent interface.
type Agent struct {
	name   string
	client *openai.Client
	opts   Options
}

var _ core.Agent = (*Agent)(nil)

// New creates an OpenAI-backed agent using the official client with ambient
// credentials.
func New(name string, optFns ...func(o *Options)) *Agent {
	client := openai.NewClient()
	return NewFromClient(name, &client, optFns...)
}

// NewFromClient creates an OpenAI-backed agent from an existing client.
func NewFromClient(name string, client *openai.Client, optFns ...func(o *Options)) *Agent {
	opts := Options{
		Model:               openai.ChatModelGPT4oMini,
		Temperature:         0.7,
		MaxCompletionTokens: 4096,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Agent{name: name, client: client, opts: opts}
}

// Name implements core.Agent.
func (a *Agent) Name() string { return a.name }

// RunStream implements core.Agent. The run's user message and the final
// assistant message are appended to the thread when one is present.
func (a *Agent) RunStream(ctx context.Context, input core.AgentInput, thread *core.Thread) (<-chan core.AgentUpdate, <-chan error) {
	out := make(chan core.AgentUpdate, 32)
	errCh := make(chan error, 1)
	go func() {
		defer close(out)
		defer close(errCh)

		userMsg := inputMessage(input)
		messages := a.buildMessages(thread, userMsg)
		if thread != nil {
			thread.AppendMessages(userMsg)
		}

		final, err := a.stream(ctx, messages, out)
		if err != nil {
			errCh <- err
			return
		}
		if thread != nil && len(final) > 0 {
			thread.AppendMessages(core.NewChatMessage("assistant", final...))
		}
	}()
	return out, errCh
}

func inputMessage(input core.AgentInput) core.ChatMessage {
	if input.IsText() {
		return core.NewTextMessage("user", input.Text)
	}
	return *input.Message
}

// buildMessages converts the thread history plus the new user message into
// OpenAI chat messages, attaching tool results immediately after the
// assistant tool calls they answer.
func (a *Agent) buildMessages(thread *core.Thread, userMsg core.ChatMessage) []openai.ChatCompletionMessageParamUnion {
	var history []core.ChatMessage
	if thread != nil {
		history = thread.Messages()
	}
	history = append(history, userMsg)

	toolResults, order := collectToolResults(history)

	var messages []openai.ChatCompletionMessageParamUnion
	if a.opts.Instructions != "" {
		messages = append(messages, openai.SystemMessage(a.opts.Instructions))
	}
	for _, msg := range history {
		if msg.Role == "tool" {
			continue
		}
		text := msg.Text()
		switch msg.Role {
		case "system":
			messages = append(messages, openai.SystemMessage(text))
		case "user":
			messages = append(messages, openai.UserMessage(text))
		case "assistant":
			toolCalls, callIDs := extractToolCalls(msg)
			if len(toolCalls) == 0 {
				messages = append(messages, openai.AssistantMessage(text))
				continue
			}
			messages = append(
				messages,
				openai.ChatCompletionMessageParamUnion{OfAssistant: &openai.ChatCompletionAssistantMessageParam{
					Role:      "assistant",
					ToolCalls: toolCalls,
				}},
			)
			for _, id := range callIDs {
				if id == "" {
					continue
				}
				if result, ok := toolResults[id]; ok {
					messages = append(messages, openai.ToolMessage(result, id))
					delete(toolResults, id)
				}
			}
		default:
			if text != "" {
				messages = append(messages, openai.UserMessage(text))
			}
		}
	}
	for _, id := range order {
		if result, ok := toolResults[id]; ok {
			messages = append(messages, openai.ToolMessage(result, id))
		}
	}
	return messages
}

// collectToolResults indexes function results by call id preserving
// first-seen order.
func collectToolResults(history []core.ChatMessage) (map[string]string, []string) {
	results := map[string]string{}
	order := []string{}
	for _, msg := range history {
		for _, fr := range msg.FunctionResults() {
			if fr.CallID == "" {
				continue
			}
			if _, exists := results[fr.CallID]; exists {
				continue
			}
			results[fr.CallID] = fr.Output
			order = append(order, fr.CallID)
		}
	}
	return results, order
}

// extractToolCalls returns OpenAI formatted tool calls plus ordered call ids.
func extractToolCalls(msg core.ChatMessage) ([]openai.ChatCompletionMessageToolCallParam, []string) {
	var toolCalls []openai.ChatCompletionMessageToolCallParam
	var callIDs []string
	for _, fc := range msg.FunctionCalls() {
		toolCalls = append(toolCalls, openai.ChatCompletionMessageToolCallParam{
			ID:   fc.CallID,
			Type: "function",
			Function: openai.ChatCompletionMessageToolCallFunctionParam{
				Name:      fc.Name,
				Arguments: fc.Arguments,
			},
		})
		callIDs = append(callIDs, fc.CallID)
	}
	return toolCalls, callIDs
}

// stream runs the completion and forwards deltas, returning the final parts
// of the assistant turn for thread persistence.
func (a *Agent) stream(ctx context.Context, messages []openai.ChatCompletionMessageParamUnion, out chan<- core.AgentUpdate) ([]core.Part, error) {
	params := openai.ChatCompletionNewParams{
		Messages:            messages,
		Model:               a.opts.Model,
		Temperature:         openai.Float(a.opts.Temperature),
		MaxCompletionTokens: openai.Int(a.opts.MaxCompletionTokens),
		StreamOptions:       openai.ChatCompletionStreamOptionsParam{IncludeUsage: openai.Bool(true)},
	}

	responseID := fmt.Sprintf("resp_%s", core.NewID())
	stream := a.client.Chat.Completions.NewStreaming(ctx, params)

	var textBuilder strings.Builder
	toolAgg := map[int64]*aggCall{}
	var usage *core.UsagePart

	for stream.Next() {
		ck := stream.Current()
		if ck.Usage.TotalTokens > 0 {
			usage = &core.UsagePart{
				TotalTokens:      int(ck.Usage.TotalTokens),
				PromptTokens:     int(ck.Usage.PromptTokens),
				CompletionTokens: int(ck.Usage.CompletionTokens),
			}
		}
		for _, ch := range ck.Choices {
			if ch.Delta.Content != "" {
				textBuilder.WriteString(ch.Delta.Content)
				out <- core.AgentUpdate{
					ResponseID: responseID,
					Contents:   []core.Part{core.TextPart{Text: ch.Delta.Content}},
				}
			}
			for _, tc := range ch.Delta.ToolCalls {
				ac, ok := toolAgg[tc.Index]
				if !ok {
					ac = &aggCall{}
					toolAgg[tc.Index] = ac
				}
				if tc.ID != "" {
					ac.id = tc.ID
				}
				if tc.Function.Name != "" {
					ac.name = tc.Function.Name
				}
				ac.args += tc.Function.Arguments
			}
		}
	}
	if err := stream.Err(); err != nil {
		return nil, fmt.Errorf("openai streaming error: %w", err)
	}

	finalParts := make([]core.Part, 0, len(toolAgg)+2)
	if textBuilder.Len() > 0 {
		finalParts = append(finalParts, core.TextPart{Text: textBuilder.String()})
	}
	for _, ac := range toolAgg {
		part := core.FunctionCallPart{CallID: ac.id, Name: ac.name, Arguments: ac.args}
		finalParts = append(finalParts, part)
		out <- core.AgentUpdate{ResponseID: responseID, Contents: []core.Part{part}}
	}
	if usage != nil {
		finalParts = append(finalParts, *usage)
		out <- core.AgentUpdate{ResponseID: responseID, Contents: []core.Part{*usage}}
	}
	return finalParts, nil
}
