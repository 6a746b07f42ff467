package agent

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/catapulthq/catapult/internal/domain"
)

// Param describes a single parameter of a tool.
type Param struct {
	Name        string   `json:"name"`
	Type        string   `json:"type"`
	Description string   `json:"description,omitempty"`
	Required    bool     `json:"required"`
	Enum        []string `json:"enum,omitempty"`
}

// HandlerFunc executes a tool call. The returned string is fed back to the
// model verbatim as the tool result.
type HandlerFunc func(ctx context.Context, args map[string]any) (string, error)

// Tool is a callable capability exposed to an agent.
type Tool struct {
	Name        string
	Description string
	Params      []Param
	Handler     HandlerFunc
}

// Schema exports the tool in OpenAI function-calling format.
func (t *Tool) Schema() map[string]any {
	properties := make(map[string]any, len(t.Params))
	var required []string
	for _, p := range t.Params {
		prop := map[string]any{"type": p.Type}
		if p.Description != "" {
			prop["description"] = p.Description
		}
		if len(p.Enum) > 0 {
			prop["enum"] = p.Enum
		}
		properties[p.Name] = prop
		if p.Required {
			required = append(required, p.Name)
		}
	}
	params := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		params["required"] = required
	}
	return map[string]any{
		"type": "function",
		"function": map[string]any{
			"name":        t.Name,
			"description": t.Description,
			"parameters":  params,
		},
	}
}

// ToolRegistry holds the tools available to the roster. It is populated at
// wiring time and read-only afterwards, but guarded anyway so ad-hoc
// registration in tests stays safe.
type ToolRegistry struct {
	mu    sync.RWMutex
	tools map[string]*Tool
}

// NewToolRegistry creates an empty tool registry.
func NewToolRegistry() *ToolRegistry {
	return &ToolRegistry{tools: make(map[string]*Tool)}
}

// Register adds a tool to the registry, replacing any previous tool with the
// same name.
func (r *ToolRegistry) Register(t *Tool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tools[t.Name] = t
}

// Get retrieves a tool by name.
func (r *ToolRegistry) Get(name string) (*Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tools[name]
	return t, ok
}

// Names returns the registered tool names in sorted order.
func (r *ToolRegistry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.tools))
	for n := range r.tools {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Schemas exports the named tools in OpenAI function-calling format. Unknown
// names are skipped; the registry is validated at wiring time.
func (r *ToolRegistry) Schemas(names []string) []map[string]any {
	r.mu.RLock()
	defer r.mu.RUnlock()
	schemas := make([]map[string]any, 0, len(names))
	for _, n := range names {
		if t, ok := r.tools[n]; ok {
			schemas = append(schemas, t.Schema())
		}
	}
	return schemas
}

// Execute runs a tool by name. Missing required arguments fail before the
// handler is invoked.
func (r *ToolRegistry) Execute(ctx context.Context, name string, args map[string]any) (string, error) {
	r.mu.RLock()
	t, ok := r.tools[name]
	r.mu.RUnlock()
	if !ok {
		return "", fmt.Errorf("%w: tool %q", domain.ErrNotFound, name)
	}
	if t.Handler == nil {
		return "", fmt.Errorf("tool %q has no handler", name)
	}
	if args == nil {
		args = map[string]any{}
	}
	for _, p := range t.Params {
		if p.Required {
			if _, present := args[p.Name]; !present {
				return "", fmt.Errorf("%w: tool %q missing argument %q", domain.ErrValidation, name, p.Name)
			}
		}
	}
	return t.Handler(ctx, args)
}
