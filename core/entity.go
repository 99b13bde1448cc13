package core

// EntityType classifies an executable entity.
type EntityType string

// Known entity types. Anything else fails classification.
const (
	EntityTypeAgent    EntityType = "agent"
	EntityTypeWorkflow EntityType = "workflow"
)

// EntityInfo describes an addressable agent or workflow the engine can execute.
type EntityInfo struct {
	ID          string     `json:"id"`
	Type        EntityType `json:"type"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
}
