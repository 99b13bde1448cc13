// Package agentgate provides a high-level façade over the conversation store,
// checkpoint manager, entity registry and execution pipeline, enabling rapid
// construction of OpenAI-compatible agent gateways. Most applications interact
// with this package by:
//  1. Creating an AgentGate via New() (optionally overriding default in-memory services)
//  2. Registering one or more agents and workflows
//  3. Executing entities asynchronously (ExecuteStreaming) or synchronously (ExecuteSync)
//  4. Serving the HTTP surface via Server()
//
// The façade delegates streaming orchestration to executor.Executor while
// keeping setup and usage ergonomics concise. All defaults are safe for local
// development and testing; production deployments typically supply a
// structured logger and tuned buffer sizes.
package agentgate

import (
	"context"

	"github.com/agentgate/agentgate/checkpoint"
	"github.com/agentgate/agentgate/conversation"
	"github.com/agentgate/agentgate/core"
	"github.com/agentgate/agentgate/discovery"
	"github.com/agentgate/agentgate/executor"
	"github.com/agentgate/agentgate/logging"
	"github.com/agentgate/agentgate/server"
	"github.com/agentgate/agentgate/trace"
)

// Options configures the AgentGate instance.
type Options struct {
	// Store holds conversations, threads and checkpoint containers.
	// Defaults to the in-memory implementation.
	Store core.ConversationStore

	// EventBufferSize sets the channel buffer size for stream events. Larger
	// buffers reduce blocking slow consumers but increase memory usage.
	EventBufferSize int

	// Logger (defaults to NoOp logger if nil)
	Logger logging.Logger
}

// AgentGate is the high-level façade aggregating the store, checkpoint
// manager, registry and executor.
type AgentGate struct {
	opts        Options
	store       core.ConversationStore
	checkpoints *checkpoint.Manager
	registry    *discovery.Registry
	exec        *executor.Executor
}

// New creates a new AgentGate instance with optional overrides. Any unset
// service is initialized with an in-memory implementation.
func New(optFns ...func(o *Options)) *AgentGate {
	opts := Options{
		Store:  conversation.NewInMemoryStore(),
		Logger: logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	checkpoints := checkpoint.NewManager(opts.Store, func(o *checkpoint.Options) {
		o.Logger = opts.Logger
	})
	registry := discovery.NewRegistry()
	exec := executor.New(registry, func(o *executor.Options) {
		o.Store = opts.Store
		o.Checkpoints = checkpoints
		o.Logger = opts.Logger
		if opts.EventBufferSize > 0 {
			o.EventBufferSize = opts.EventBufferSize
		}
	})

	return &AgentGate{
		opts:        opts,
		store:       opts.Store,
		checkpoints: checkpoints,
		registry:    registry,
		exec:        exec,
	}
}

// RegisterAgent makes an agent executable under the given entity id.
func (g *AgentGate) RegisterAgent(entityID string, agent core.Agent, description string) {
	g.registry.RegisterAgent(entityID, agent, description)
}

// RegisterWorkflow makes a workflow executable under the given entity id.
func (g *AgentGate) RegisterWorkflow(entityID string, workflow core.Workflow, description string) {
	g.registry.RegisterWorkflow(entityID, workflow, description)
}

// ExecuteStreaming runs an entity and returns its live event stream.
func (g *AgentGate) ExecuteStreaming(ctx context.Context, req executor.Request) <-chan executor.StreamEvent {
	return g.exec.ExecuteStreaming(ctx, req)
}

// ExecuteSync runs an entity to completion and returns the collected events.
func (g *AgentGate) ExecuteSync(ctx context.Context, req executor.Request) []executor.StreamEvent {
	return g.exec.ExecuteSync(ctx, req)
}

// Store returns the conversation store.
func (g *AgentGate) Store() core.ConversationStore { return g.store }

// Checkpoints returns the checkpoint manager.
func (g *AgentGate) Checkpoints() *checkpoint.Manager { return g.checkpoints }

// Executor returns the underlying execution pipeline.
func (g *AgentGate) Executor() *executor.Executor { return g.exec }

// Recorder returns the trace recorder fan-in used by the execution pipeline.
func (g *AgentGate) Recorder() *trace.Recorder { return g.exec.Recorder() }

// ListEntities returns the registered entity catalog sorted by id.
func (g *AgentGate) ListEntities() []*core.EntityInfo { return g.registry.ListEntities() }

// Server constructs the HTTP surface bound to this instance.
func (g *AgentGate) Server(optFns ...func(o *server.Options)) *server.Server {
	return server.New(g.store, g.exec, func(o *server.Options) {
		o.Logger = g.opts.Logger
		for _, fn := range optFns {
			fn(o)
		}
	})
}
