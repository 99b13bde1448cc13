// Package anthropic provides a reference core.Agent backed by the Anthropic
// Messages API. The full response is produced in a single update; delta
// streaming of the Messages event protocol is not implemented.
package anthropic

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/agentgate/agentgate/core"
)

// Options configures the Anthropic agent (temperature, model id, max tokens,
// API key, system instructions). Extend via functional options to preserve
// stability.
type Options struct {
	Model        anthropic.Model
	Temperature  float64
	MaxTokens    int64
	APIKey       string
	Instructions string
}

// Agent wraps the Anthropic Messages API behind the core.Agent interface.
type Agent struct {
	name   string
	client *anthropic.Client
	opts   Options
}

var _ core.Agent = (*Agent)(nil)

// New creates an Anthropic-backed agent using the official client.
func New(name string, optFns ...func(o *Options)) *Agent {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}

	var clientOpts []option.RequestOption
	if opts.APIKey != "" {
		clientOpts = append(clientOpts, option.WithAPIKey(opts.APIKey))
	}
	client := anthropic.NewClient(clientOpts...)

	return &Agent{name: name, client: &client, opts: opts}
}

// NewFromClient creates an Anthropic-backed agent from an existing client.
func NewFromClient(name string, client *anthropic.Client, optFns ...func(o *Options)) *Agent {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Agent{name: name, client: client, opts: opts}
}

func defaultOptions() Options {
	return Options{
		Model:       anthropic.ModelClaude3_5Sonnet20241022,
		Temperature: 0.7,
		MaxTokens:   4096,
	}
}

// Name implements core.Agent.
func (a *Agent) Name() string { return a.name }

// RunStream implements core.Agent. The run's user message and the assistant
// response are appended to the thread when one is present.
func (a *Agent) RunStream(ctx context.Context, input core.AgentInput, thread *core.Thread) (<-chan core.AgentUpdate, <-chan error) {
	out := make(chan core.AgentUpdate, 1)
	errCh := make(chan error, 1)
	go func() {
		defer close(out)
		defer close(errCh)

		userMsg := inputMessage(input)
		params := anthropic.MessageNewParams{
			Model:       a.opts.Model,
			Messages:    a.buildMessages(thread, userMsg),
			MaxTokens:   a.opts.MaxTokens,
			Temperature: anthropic.Float(a.opts.Temperature),
		}
		if a.opts.Instructions != "" {
			params.System = []anthropic.TextBlockParam{{Text: a.opts.Instructions}}
		}
		if thread != nil {
			thread.AppendMessages(userMsg)
		}

		resp, err := a.client.Messages.New(ctx, params)
		if err != nil {
			errCh <- fmt.Errorf("anthropic api error: %w", err)
			return
		}

		parts := responseParts(resp)
		if len(parts) == 0 {
			return
		}
		if thread != nil {
			thread.AppendMessages(core.NewChatMessage("assistant", parts...))
		}
		select {
		case <-ctx.Done():
			errCh <- ctx.Err()
		case out <- core.AgentUpdate{ResponseID: resp.ID, Contents: parts}:
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
// Anthropic message params, embedding tool results right after the tool calls
// they answer.
func (a *Agent) buildMessages(thread *core.Thread, userMsg core.ChatMessage) []anthropic.MessageParam {
	var history []core.ChatMessage
	if thread != nil {
		history = thread.Messages()
	}
	history = append(history, userMsg)

	toolResults := make(map[string]string)
	for _, msg := range history {
		for _, fr := range msg.FunctionResults() {
			if fr.CallID != "" {
				toolResults[fr.CallID] = fr.Output
			}
		}
	}

	var messages []anthropic.MessageParam
	for _, msg := range history {
		if msg.Role == "system" || msg.Role == "tool" {
			continue
		}
		switch msg.Role {
		case "assistant":
			if content := assistantContent(msg, toolResults); len(content) > 0 {
				messages = append(messages, anthropic.NewAssistantMessage(content...))
			}
		default:
			if content := userContent(msg); len(content) > 0 {
				messages = append(messages, anthropic.NewUserMessage(content...))
			}
		}
	}
	return messages
}

func userContent(msg core.ChatMessage) []anthropic.ContentBlockParamUnion {
	var content []anthropic.ContentBlockParamUnion
	for _, p := range msg.Contents {
		if tp, ok := p.(core.TextPart); ok && tp.Text != "" {
			content = append(content, anthropic.NewTextBlock(tp.Text))
		}
	}
	return content
}

func assistantContent(msg core.ChatMessage, toolResults map[string]string) []anthropic.ContentBlockParamUnion {
	var content []anthropic.ContentBlockParamUnion
	var callIDs []string

	for _, p := range msg.Contents {
		switch part := p.(type) {
		case core.TextPart:
			if part.Text != "" {
				content = append(content, anthropic.NewTextBlock(part.Text))
			}
		case core.FunctionCallPart:
			var input any
			if part.Arguments != "" {
				if err := json.Unmarshal([]byte(part.Arguments), &input); err != nil {
					input = part.Arguments
				}
			}
			content = append(content, anthropic.NewToolUseBlock(part.CallID, input, part.Name))
			callIDs = append(callIDs, part.CallID)
		}
	}

	for _, id := range callIDs {
		if result, ok := toolResults[id]; ok {
			content = append(content, anthropic.NewToolResultBlock(id, result, false))
			delete(toolResults, id)
		}
	}
	return content
}

// responseParts converts the response content blocks plus usage into parts.
func responseParts(resp *anthropic.Message) []core.Part {
	var parts []core.Part
	for _, block := range resp.Content {
		switch block.Type {
		case "text":
			textBlock := block.AsText()
			if textBlock.Text != "" {
				parts = append(parts, core.TextPart{Text: textBlock.Text})
			}
		case "tool_use":
			toolBlock := block.AsToolUse()
			args := ""
			if toolBlock.Input != nil {
				if data, err := json.Marshal(toolBlock.Input); err == nil {
					args = string(data)
				}
			}
			parts = append(parts, core.FunctionCallPart{
				CallID:    toolBlock.ID,
				Name:      toolBlock.Name,
				Arguments: args,
			})
		}
	}
	if len(parts) > 0 && (resp.Usage.InputTokens > 0 || resp.Usage.OutputTokens > 0) {
		parts = append(parts, core.UsagePart{
			TotalTokens:      int(resp.Usage.InputTokens + resp.Usage.OutputTokens),
			PromptTokens:     int(resp.Usage.InputTokens),
			CompletionTokens: int(resp.Usage.OutputTokens),
		})
	}
	return parts
}
