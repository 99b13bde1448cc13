// Package discovery locates the agents and workflows available for
// execution. The Registry is a process-local catalog populated at wiring
// time; the execution pipeline resolves entity ids against it and classifies
// each entity as agent or workflow.
package discovery
