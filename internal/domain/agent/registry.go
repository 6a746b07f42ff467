package agent

import (
	"fmt"

	"github.com/catapulthq/catapult/internal/domain"
)

// Registry is the wired agent roster for a deployment. Validation happens
// once at construction so a bad roster fails at startup, not mid-session.
type Registry struct {
	agents   map[string]*Agent
	terminal string
}

// NewRegistry validates the roster and indexes it by name. Exactly one agent
// must be marked terminal, every handoff target must name a roster member,
// and every tool an agent lists must exist in the tool registry.
func NewRegistry(agents []*Agent, tools *ToolRegistry) (*Registry, error) {
	r := &Registry{agents: make(map[string]*Agent, len(agents))}
	for _, a := range agents {
		if err := a.Validate(); err != nil {
			return nil, err
		}
		if _, dup := r.agents[a.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate agent %q", domain.ErrValidation, a.Name)
		}
		r.agents[a.Name] = a
		if a.Terminal {
			if r.terminal != "" {
				return nil, fmt.Errorf("%w: both %q and %q marked terminal", domain.ErrValidation, r.terminal, a.Name)
			}
			r.terminal = a.Name
		}
	}
	if r.terminal == "" {
		return nil, fmt.Errorf("%w: no terminal agent in roster", domain.ErrValidation)
	}
	for _, a := range r.agents {
		for _, target := range a.HandoffTargets {
			if _, ok := r.agents[target]; !ok {
				return nil, fmt.Errorf("%w: agent %q hands off to unknown agent %q", domain.ErrValidation, a.Name, target)
			}
		}
		for _, name := range a.Tools {
			if _, ok := tools.Get(name); !ok {
				return nil, fmt.Errorf("%w: agent %q references unknown tool %q", domain.ErrValidation, a.Name, name)
			}
		}
	}
	return r, nil
}

// Get retrieves an agent by name.
func (r *Registry) Get(name string) (*Agent, bool) {
	a, ok := r.agents[name]
	return a, ok
}

// Terminal returns the name of the terminal agent.
func (r *Registry) Terminal() string {
	return r.terminal
}

// Len returns the roster size.
func (r *Registry) Len() int {
	return len(r.agents)
}
