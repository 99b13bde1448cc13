package core

import "errors"

// Sentinel errors shared across packages. Lookups generally return
// (value, ok) pairs; these errors surface from mutating operations and from
// the execution pipeline's resolving phase.
var (
	// ErrConversationNotFound is returned when a mutating operation references
	// an absent conversation id.
	ErrConversationNotFound = errors.New("conversation not found")

	// ErrConversationExists is returned by Create when the explicit id is
	// already in use. Silent overwrite would lose the prior conversation's
	// items and thread.
	ErrConversationExists = errors.New("conversation already exists")

	// ErrThreadNotFound is returned when a thread id has no registry entry.
	ErrThreadNotFound = errors.New("thread not found")

	// ErrEntityNotFound is returned when the requested entity id is unknown.
	ErrEntityNotFound = errors.New("entity not found")

	// ErrUnsupportedEntityType is returned when an entity classifies as
	// neither agent nor workflow.
	ErrUnsupportedEntityType = errors.New("unsupported entity type")
)
