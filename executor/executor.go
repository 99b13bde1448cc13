package executor

import (
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/agentgate/agentgate/checkpoint"
	"github.com/agentgate/agentgate/core"
	"github.com/agentgate/agentgate/logging"
	"github.com/agentgate/agentgate/trace"
)

// defaultEventBufferSize is the stream channel capacity. A slow consumer
// stalls the producing goroutine once the buffer fills; cancelling the
// request context unblocks it.
const defaultEventBufferSize = 64

// Options holds dependency overrides passed to New.
type Options struct {
	// Store resolves conversation-bound threads for execution requests that
	// carry a conversation id.
	Store core.ConversationStore

	// Checkpoints is injected into workflows before each run so checkpoint
	// persistence is transparent to the engine.
	Checkpoints *checkpoint.Manager

	// Recorder is the trace sink whose capture scopes the pipeline opens and
	// releases around each run.
	Recorder *trace.Recorder

	// Logger receives lifecycle and state transition messages.
	Logger logging.Logger

	// EventBufferSize overrides the stream channel capacity.
	EventBufferSize int
}

// Executor turns execution requests into ordered event streams and owns the
// registry of agent-scoped threads.
type Executor struct {
	discovery   Discovery
	store       core.ConversationStore
	checkpoints *checkpoint.Manager
	recorder    *trace.Recorder
	logger      logging.Logger
	bufferSize  int

	mu           sync.RWMutex
	threads      map[string]*core.Thread
	agentThreads map[string][]string
}

// New constructs an Executor over an entity catalog.
func New(disc Discovery, optFns ...func(o *Options)) *Executor {
	opts := Options{
		Recorder:        trace.NewRecorder(),
		Logger:          logging.NoOpLogger{},
		EventBufferSize: defaultEventBufferSize,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Recorder == nil {
		opts.Recorder = trace.NewRecorder()
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}
	if opts.EventBufferSize <= 0 {
		opts.EventBufferSize = defaultEventBufferSize
	}
	return &Executor{
		discovery:    disc,
		store:        opts.Store,
		checkpoints:  opts.Checkpoints,
		recorder:     opts.Recorder,
		logger:       opts.Logger,
		bufferSize:   opts.EventBufferSize,
		threads:      make(map[string]*core.Thread),
		agentThreads: make(map[string][]string),
	}
}

// Recorder returns the trace sink runs are captured on. Engine code records
// telemetry here to have it interleaved into active streams.
func (e *Executor) Recorder() *trace.Recorder {
	return e.recorder
}

// GetEntityInfo resolves an entity id against the catalog.
func (e *Executor) GetEntityInfo(entityID string) (*core.EntityInfo, bool) {
	return e.discovery.GetEntityInfo(entityID)
}

// ListEntities returns the full entity catalog.
func (e *Executor) ListEntities() []*core.EntityInfo {
	return e.discovery.ListEntities()
}

// CreateThread creates an empty thread owned by an agent and returns its id.
func (e *Executor) CreateThread(agentID string) string {
	threadID := fmt.Sprintf("thread_%s", strings.ReplaceAll(uuid.NewString(), "-", "")[:8])

	e.mu.Lock()
	defer e.mu.Unlock()
	e.threads[threadID] = core.NewThread()
	e.agentThreads[agentID] = append(e.agentThreads[agentID], threadID)

	e.logger.Debug("created thread", "thread_id", threadID, "agent_id", agentID)
	return threadID
}

// GetThread returns a registered thread by id.
func (e *Executor) GetThread(threadID string) (*core.Thread, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	t, ok := e.threads[threadID]
	return t, ok
}

// ListThreadsForAgent returns the ids of all threads owned by an agent, in
// creation order.
func (e *Executor) ListThreadsForAgent(agentID string) []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	ids := make([]string, len(e.agentThreads[agentID]))
	copy(ids, e.agentThreads[agentID])
	return ids
}

// GetOwningAgent returns the agent id a thread belongs to. Ownership fails
// closed: an unregistered thread has no owner.
func (e *Executor) GetOwningAgent(threadID string) (string, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	for agentID, ids := range e.agentThreads {
		for _, id := range ids {
			if id == threadID {
				return agentID, true
			}
		}
	}
	return "", false
}

// DeleteThread removes a thread from the registry and from its owner's list.
// Returns false when the thread is not registered.
func (e *Executor) DeleteThread(threadID string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.threads[threadID]; !ok {
		return false
	}
	delete(e.threads, threadID)
	for agentID, ids := range e.agentThreads {
		for i, id := range ids {
			if id == threadID {
				e.agentThreads[agentID] = append(ids[:i], ids[i+1:]...)
				return true
			}
		}
	}
	return true
}

// SerializeThread captures a registered thread as JSON, embedding the owning
// agent id and thread id in the snapshot metadata.
func (e *Executor) SerializeThread(threadID string) ([]byte, error) {
	thread, ok := e.GetThread(threadID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", core.ErrThreadNotFound, threadID)
	}
	snapshot := thread.Snapshot()
	snapshot.Metadata = map[string]string{"thread_id": threadID}
	if agentID, ok := e.GetOwningAgent(threadID); ok {
		snapshot.Metadata["agent_id"] = agentID
	}
	return core.MarshalThread(snapshot)
}

// DeserializeThread restores a serialized thread under the given ids,
// replacing any thread already registered under threadID. Restoration never
// fails the caller: malformed payloads are logged and reported as false.
func (e *Executor) DeserializeThread(threadID, agentID string, data []byte) bool {
	snapshot, err := core.UnmarshalThread(data)
	if err != nil {
		e.logger.Warn("failed to deserialize thread", "thread_id", threadID, "error", err)
		return false
	}
	thread := core.ThreadFromSnapshot(snapshot)

	e.mu.Lock()
	defer e.mu.Unlock()
	_, existed := e.threads[threadID]
	e.threads[threadID] = thread
	if !existed {
		e.agentThreads[agentID] = append(e.agentThreads[agentID], threadID)
	}
	return true
}

// TokenUsage summarizes token consumption attached to a display message.
type TokenUsage struct {
	TotalTokens      int `json:"total_tokens"`
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
}

// DisplayContent is one UI-facing content element of a display message.
type DisplayContent struct {
	Type      string `json:"type"` // text or data
	Text      string `json:"text,omitempty"`
	URI       string `json:"uri,omitempty"`
	MediaType string `json:"media_type,omitempty"`
}

// DisplayMessage is the UI-facing projection of one thread message.
type DisplayMessage struct {
	ID         string           `json:"id"`
	Role       string           `json:"role"`
	Contents   []DisplayContent `json:"contents"`
	AuthorName string           `json:"author_name,omitempty"`
	Usage      *TokenUsage      `json:"usage,omitempty"`
}

// ThreadDisplayMessages projects a registered thread into UI-facing messages.
// Only user and assistant messages with displayable parts are included;
// function calls, results and other machinery are dropped. An unregistered
// thread yields an empty slice, never an error.
func (e *Executor) ThreadDisplayMessages(threadID string) []DisplayMessage {
	thread, ok := e.GetThread(threadID)
	if !ok {
		return []DisplayMessage{}
	}
	return extractDisplayMessages(thread.Messages())
}

func extractDisplayMessages(msgs []core.ChatMessage) []DisplayMessage {
	out := make([]DisplayMessage, 0, len(msgs))
	for _, msg := range msgs {
		if msg.Role != "user" && msg.Role != "assistant" {
			continue
		}
		var contents []DisplayContent
		var usage *TokenUsage
		for _, part := range msg.Contents {
			switch p := part.(type) {
			case core.TextPart:
				contents = append(contents, DisplayContent{Type: "text", Text: p.Text})
			case core.DataPart:
				contents = append(contents, DisplayContent{Type: "data", URI: p.URI, MediaType: p.MediaType})
			case core.UsagePart:
				usage = &TokenUsage{
					TotalTokens:      p.TotalTokens,
					PromptTokens:     p.PromptTokens,
					CompletionTokens: p.CompletionTokens,
				}
			}
		}
		if len(contents) == 0 {
			continue
		}
		out = append(out, DisplayMessage{
			ID:         msg.MessageID,
			Role:       msg.Role,
			Contents:   contents,
			AuthorName: msg.AuthorName,
			Usage:      usage,
		})
	}
	return out
}
