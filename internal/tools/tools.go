// Package tools holds the closed set of tools the model may call.
package tools

import (
	"context"
	"fmt"

	"pkdindustries/codi/internal/core"
)

// Kind tags each supported tool. The set is closed: adding a tool means
// adding a Kind and a case to ParseKind.
type Kind int

const (
	KindUnknown Kind = iota
	KindSearchInternet
)

func (k Kind) String() string {
	switch k {
	case KindSearchInternet:
		return "search_internet"
	default:
		return "unknown"
	}
}

// ParseKind maps a function name from the model to its Kind.
func ParseKind(name string) (Kind, bool) {
	switch name {
	case "search_internet":
		return KindSearchInternet, true
	default:
		return KindUnknown, false
	}
}

// Tool is one callable variant
type Tool interface {
	Kind() Kind
	Definition() core.ToolDefinition
	// Execute runs the tool with the model's serialized arguments and
	// returns the content of the tool turn.
	Execute(ctx context.Context, arguments string) (string, error)
}

// Registry resolves tool calls to their variant
type Registry struct {
	tools map[Kind]Tool
	order []Kind
}

// NewRegistry creates a registry holding the given tools
func NewRegistry(tools ...Tool) *Registry {
	r := &Registry{tools: make(map[Kind]Tool)}
	for _, t := range tools {
		r.Register(t)
	}
	return r
}

// Register adds a tool, replacing any tool of the same kind
func (r *Registry) Register(t Tool) {
	k := t.Kind()
	if _, ok := r.tools[k]; !ok {
		r.order = append(r.order, k)
	}
	r.tools[k] = t
}

// Resolve finds the tool for a function name
func (r *Registry) Resolve(name string) (Tool, error) {
	kind, ok := ParseKind(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", core.ErrUnknownTool, name)
	}
	t, ok := r.tools[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q is not enabled", core.ErrUnknownTool, name)
	}
	return t, nil
}

// Definitions returns the manifest in registration order
func (r *Registry) Definitions() []core.ToolDefinition {
	defs := make([]core.ToolDefinition, 0, len(r.order))
	for _, k := range r.order {
		defs = append(defs, r.tools[k].Definition())
	}
	return defs
}

func (r *Registry) Len() int {
	return len(r.tools)
}
