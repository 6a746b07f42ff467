// Package orchestration implements the handoff wire protocol the planning
// agents embed in their free-text responses. The directive grammar is the one
// contract the whole loop depends on, so it is parsed strictly: anything that
// looks like a handoff but does not match the grammar fails the session
// rather than being guessed at.
package orchestration

import (
	"errors"
	"regexp"
	"strings"
)

// Directive grammar: <handoff to='AGENT_NAME'>PAYLOAD</handoff>
// Single quotes around the name, payload is everything up to the first
// closing tag. No escaping and no nesting are defined.
var directiveRe = regexp.MustCompile(`(?s)<handoff to='([^']*)'>(.*?)</handoff>`)

const openingTag = "<handoff"

var (
	// ErrNoDirective means the response carries no handoff at all and is
	// therefore a final response.
	ErrNoDirective = errors.New("no handoff directive")

	// ErrMalformedDirective means handoff-opening syntax is present but the
	// full grammar never matches. Fatal to the session.
	ErrMalformedDirective = errors.New("malformed handoff directive")

	// ErrAmbiguousDirective means the response carries more than one
	// well-formed handoff tag. Fatal to the session.
	ErrAmbiguousDirective = errors.New("multiple handoff directives in one response")
)

// Directive is a parsed handoff: route the payload to the named agent.
type Directive struct {
	Target  string
	Payload string
}

// ParseDirective scans an agent response for a handoff directive.
//
// Returns ErrNoDirective when no opening tag exists (the response is final),
// ErrMalformedDirective when an opening tag exists but the grammar does not
// match, and ErrAmbiguousDirective when more than one complete tag matches.
// Model output is untrusted input: on any deviation the caller must fail the
// session closed instead of looping on unparseable text.
func ParseDirective(response string) (*Directive, error) {
	if !strings.Contains(response, openingTag) {
		return nil, ErrNoDirective
	}

	matches := directiveRe.FindAllStringSubmatch(response, 2)
	switch len(matches) {
	case 0:
		return nil, ErrMalformedDirective
	case 1:
		// fall through
	default:
		return nil, ErrAmbiguousDirective
	}

	target := strings.TrimSpace(matches[0][1])
	if target == "" {
		return nil, ErrMalformedDirective
	}

	return &Directive{Target: target, Payload: matches[0][2]}, nil
}

// HandoffRecord is one audit entry of the planning conversation.
type HandoffRecord struct {
	Hop      int    `json:"hop"`
	Agent    string `json:"agent"`
	Response string `json:"response"`
	Target   string `json:"target,omitempty"`
}
