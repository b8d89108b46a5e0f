// Package tools holds the dynamic catalog of callable actions the engine
// exposes to model backends.
package tools

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/sandevgo/conductor/internal/core"
)

type entry struct {
	tool      core.Tool
	validator *Validator
}

// Registry is a flat, name-keyed catalog. Lookup stays O(1) no matter how
// large the catalog grows; tags categorize without nesting.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]entry
	order []string
}

func NewRegistry() *Registry {
	return &Registry{
		tools: make(map[string]entry),
	}
}

// Register adds a tool. Duplicate names are rejected and logged, never
// silently overwritten.
func (r *Registry) Register(tool core.Tool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tools[tool.Name]; exists {
		log.Warn().Str("tool", tool.Name).Str("service", tool.Service).
			Msg("rejected duplicate tool registration")
		return core.ErrToolConflict
	}

	validator, err := NewValidator(tool.Parameters)
	if err != nil {
		return err
	}

	r.tools[tool.Name] = entry{tool: tool, validator: validator}
	r.order = append(r.order, tool.Name)
	return nil
}

// RegisterAll registers every tool, stopping at the first failure.
func (r *Registry) RegisterAll(tools ...core.Tool) error {
	for _, t := range tools {
		if err := r.Register(t); err != nil {
			return err
		}
	}
	return nil
}

// Unregister removes a tool. Missing names are a no-op.
func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tools[name]; !exists {
		return
	}
	delete(r.tools, name)
	for i, n := range r.order {
		if n == name {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
}

// Get looks a tool up by name. Absence is a normal outcome.
func (r *Registry) Get(name string) (core.Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.tools[name]
	return e.tool, ok
}

// Declarations returns the model-facing catalog in registration order,
// reflecting only currently registered tools.
func (r *Registry) Declarations() []core.ToolDeclaration {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]core.ToolDeclaration, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.tools[name].tool.Declaration())
	}
	return out
}

// ByTag returns every tool carrying the tag, in registration order.
func (r *Registry) ByTag(tag string) []core.Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []core.Tool
	for _, name := range r.order {
		if t := r.tools[name].tool; t.HasTag(tag) {
			out = append(out, t)
		}
	}
	return out
}

// ByService returns every tool owned by the service, in registration order.
func (r *Registry) ByService(service string) []core.Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []core.Tool
	for _, name := range r.order {
		if t := r.tools[name].tool; t.Service == service {
			out = append(out, t)
		}
	}
	return out
}

// List returns the whole catalog in registration order.
func (r *Registry) List() []core.Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]core.Tool, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.tools[name].tool)
	}
	return out
}

// ValidateArgs checks args against the tool's schema before invocation.
func (r *Registry) ValidateArgs(name string, args map[string]any) error {
	r.mu.RLock()
	e, ok := r.tools[name]
	r.mu.RUnlock()

	if !ok {
		return core.ErrUnknownTool
	}
	return e.validator.Validate(args)
}
