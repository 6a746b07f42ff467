package ws

import (
	"context"
	"encoding/json"
	"log/slog"
)

// Event type constants for WebSocket messages.
const (
	EventSessionStarted   = "session.started"
	EventSessionHandoff   = "session.handoff"
	EventSessionCompleted = "session.completed"
	EventSessionFailed    = "session.failed"
)

// SessionStartedEvent is broadcast when a planning session begins.
type SessionStartedEvent struct {
	SessionID string `json:"session_id"`
	Request   string `json:"request"`
}

// SessionHandoffEvent is broadcast on every agent-to-agent transition.
type SessionHandoffEvent struct {
	SessionID string `json:"session_id"`
	Hop       int    `json:"hop"`
	From      string `json:"from"`
	To        string `json:"to"`
}

// SessionCompletedEvent is broadcast when a session reaches a complete plan.
type SessionCompletedEvent struct {
	SessionID string  `json:"session_id"`
	Hops      int     `json:"hops"`
	TotalCost float64 `json:"total_cost"`
}

// SessionFailedEvent is broadcast when a session ends in an error state.
type SessionFailedEvent struct {
	SessionID string `json:"session_id"`
	Hops      int    `json:"hops"`
	Reason    string `json:"reason"`
}

// BroadcastEvent marshals a typed event and broadcasts it.
func (h *Hub) BroadcastEvent(ctx context.Context, eventType string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		slog.Error("marshal ws event payload", "type", eventType, "error", err)
		return
	}

	h.Broadcast(ctx, Message{
		Type:    eventType,
		Payload: json.RawMessage(data),
	})
}
