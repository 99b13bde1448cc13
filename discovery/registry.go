package discovery

import (
	"sort"
	"sync"

	"github.com/agentgate/agentgate/core"
)

// Registry is an in-memory catalog of executable entities. It is safe for
// concurrent access. Registering an id twice overwrites the earlier entry;
// ids are shared between agents and workflows, so an id names exactly one
// entity.
type Registry struct {
	mu        sync.RWMutex
	infos     map[string]*core.EntityInfo
	agents    map[string]core.Agent
	workflows map[string]core.Workflow
}

// NewRegistry constructs an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		infos:     make(map[string]*core.EntityInfo),
		agents:    make(map[string]core.Agent),
		workflows: make(map[string]core.Workflow),
	}
}

// RegisterAgent makes an agent addressable under the given entity id.
func (r *Registry) RegisterAgent(entityID string, agent core.Agent, description string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.workflows, entityID)
	r.agents[entityID] = agent
	r.infos[entityID] = &core.EntityInfo{
		ID:          entityID,
		Type:        core.EntityTypeAgent,
		Name:        agent.Name(),
		Description: description,
	}
}

// RegisterWorkflow makes a workflow addressable under the given entity id.
func (r *Registry) RegisterWorkflow(entityID string, workflow core.Workflow, description string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.agents, entityID)
	r.workflows[entityID] = workflow
	r.infos[entityID] = &core.EntityInfo{
		ID:          entityID,
		Type:        core.EntityTypeWorkflow,
		Name:        workflow.ID(),
		Description: description,
	}
}

// GetEntityInfo returns the catalog entry for an entity id.
func (r *Registry) GetEntityInfo(entityID string) (*core.EntityInfo, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	info, ok := r.infos[entityID]
	return info, ok
}

// GetAgent returns the agent registered under an entity id.
func (r *Registry) GetAgent(entityID string) (core.Agent, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	agent, ok := r.agents[entityID]
	return agent, ok
}

// GetWorkflow returns the workflow registered under an entity id.
func (r *Registry) GetWorkflow(entityID string) (core.Workflow, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	wf, ok := r.workflows[entityID]
	return wf, ok
}

// ListEntities returns all catalog entries sorted by id.
func (r *Registry) ListEntities() []*core.EntityInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entities := make([]*core.EntityInfo, 0, len(r.infos))
	for _, info := range r.infos {
		entities = append(entities, info)
	}
	sort.Slice(entities, func(i, j int) bool { return entities[i].ID < entities[j].ID })
	return entities
}
