// Package llm defines the port interface for chat model providers.
package llm

import "context"

// Role values for chat messages.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// Message is one turn of a chat conversation. Assistant turns that
// requested tools carry the ToolCalls they made; tool turns carry the
// ToolCallID they answer.
type Message struct {
	Role       string     `json:"role"`
	Content    string     `json:"content"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
	Name       string     `json:"name,omitempty"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
}

// ToolCall is a function invocation requested by the model.
type ToolCall struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// Request is a single completion request.
type Request struct {
	System   string
	Messages []Message
	Tools    []map[string]any
}

// Reply is the model's answer. When the model requests tool calls, Content
// may be empty and ToolCalls non-empty.
type Reply struct {
	Content   string
	ToolCalls []ToolCall
}

// Gateway is the port interface for chat completion providers.
type Gateway interface {
	Complete(ctx context.Context, req Request) (*Reply, error)
}
