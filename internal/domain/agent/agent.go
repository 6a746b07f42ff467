// Package agent defines the planner agent roster: the agent entity,
// the tool registry agents call into, and the instruction prompts.
package agent

import (
	"fmt"

	"github.com/catapulthq/catapult/internal/domain"
)

// Agent describes one specialist in the planning roster. Agents are static
// configuration, not runtime state: the same roster serves every session.
type Agent struct {
	Name           string   `json:"name"`
	Instructions   string   `json:"instructions"`
	Tools          []string `json:"tools,omitempty"`
	HandoffTargets []string `json:"handoff_targets,omitempty"`
	Terminal       bool     `json:"terminal,omitempty"`
}

// Validate checks that an Agent has the required fields.
func (a *Agent) Validate() error {
	if a.Name == "" {
		return fmt.Errorf("%w: agent name is required", domain.ErrValidation)
	}
	if a.Instructions == "" {
		return fmt.Errorf("%w: agent %q has no instructions", domain.ErrValidation, a.Name)
	}
	return nil
}

// CanHandoffTo reports whether target is in the agent's allowed handoff set.
func (a *Agent) CanHandoffTo(target string) bool {
	for _, t := range a.HandoffTargets {
		if t == target {
			return true
		}
	}
	return false
}
