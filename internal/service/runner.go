package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/catapulthq/catapult/internal/adapter/otel"
	"github.com/catapulthq/catapult/internal/domain/agent"
	"github.com/catapulthq/catapult/internal/port/llm"
	"github.com/catapulthq/catapult/internal/resilience"
)

// AgentRunner executes a single agent invocation: one system prompt, a
// bounded number of model round-trips for tool calls, and a final text
// response. Completion failures degrade to an error sentence in the
// response text so the orchestrator can fail the session on its own terms.
type AgentRunner struct {
	gateway      llm.Gateway
	maxToolTurns int
	retries      int
	logger       *slog.Logger
	metrics      *otel.Metrics
}

// NewAgentRunner creates an AgentRunner. metrics may be nil.
func NewAgentRunner(gateway llm.Gateway, maxToolTurns, retries int, logger *slog.Logger, metrics *otel.Metrics) *AgentRunner {
	if maxToolTurns <= 0 {
		maxToolTurns = 4
	}
	if retries <= 0 {
		retries = 1
	}
	return &AgentRunner{
		gateway:      gateway,
		maxToolTurns: maxToolTurns,
		retries:      retries,
		logger:       logger,
		metrics:      metrics,
	}
}

// Run sends input to the agent and drives its tool calls to completion.
// The returned string is always usable as an agent response; errors are
// folded into it rather than propagated.
func (r *AgentRunner) Run(ctx context.Context, ag *agent.Agent, tools *agent.ToolRegistry, input string) string {
	req := llm.Request{
		System:   fmt.Sprintf("You are %s. %s", ag.Name, ag.Instructions),
		Messages: []llm.Message{{Role: llm.RoleUser, Content: input}},
	}
	if len(ag.Tools) > 0 {
		req.Tools = tools.Schemas(ag.Tools)
	}

	for turn := 0; turn < r.maxToolTurns; turn++ {
		reply, err := r.complete(ctx, req)
		if err != nil {
			r.logger.Error("agent completion failed", "agent", ag.Name, "turn", turn, "error", err)
			return fmt.Sprintf("Error generating response: %v", err)
		}
		if len(reply.ToolCalls) == 0 {
			return reply.Content
		}

		req.Messages = append(req.Messages, llm.Message{
			Role:      llm.RoleAssistant,
			Content:   reply.Content,
			ToolCalls: reply.ToolCalls,
		})
		for _, tc := range reply.ToolCalls {
			req.Messages = append(req.Messages, r.executeToolCall(ctx, ag, tools, tc))
		}
	}

	// The model is still asking for tools after the turn budget. Strip the
	// tool schemas and demand a text answer from what it has.
	req.Tools = nil
	reply, err := r.complete(ctx, req)
	if err != nil {
		r.logger.Error("agent final completion failed", "agent", ag.Name, "error", err)
		return fmt.Sprintf("Error generating response: %v", err)
	}
	return reply.Content
}

func (r *AgentRunner) complete(ctx context.Context, req llm.Request) (*llm.Reply, error) {
	var reply *llm.Reply
	err := resilience.Retry(ctx, r.retries, 500*time.Millisecond, func() error {
		var err error
		reply, err = r.gateway.Complete(ctx, req)
		return err
	})
	return reply, err
}

func (r *AgentRunner) executeToolCall(ctx context.Context, ag *agent.Agent, tools *agent.ToolRegistry, tc llm.ToolCall) llm.Message {
	ctx, span := otel.StartToolCallSpan(ctx, tc.ID, tc.Name)
	defer span.End()

	if r.metrics != nil {
		r.metrics.ToolCalls.Add(ctx, 1)
	}

	var args map[string]any
	if tc.Arguments != "" {
		if err := json.Unmarshal([]byte(tc.Arguments), &args); err != nil {
			r.logger.Warn("tool call arguments unparseable", "agent", ag.Name, "tool", tc.Name, "error", err)
			return toolMessage(tc, toolJSON(toolResult{Status: "error", Error: "invalid tool arguments: " + err.Error()}))
		}
	}

	out, err := tools.Execute(ctx, tc.Name, args)
	if err != nil {
		r.logger.Warn("tool execution failed", "agent", ag.Name, "tool", tc.Name, "error", err)
		return toolMessage(tc, toolJSON(toolResult{Status: "error", Error: err.Error()}))
	}
	return toolMessage(tc, out)
}

func toolMessage(tc llm.ToolCall, content string) llm.Message {
	return llm.Message{
		Role:       llm.RoleTool,
		ToolCallID: tc.ID,
		Name:       tc.Name,
		Content:    content,
	}
}
