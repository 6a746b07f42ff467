package otel

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "catapult"

// StartSessionSpan starts a span covering one planning session.
func StartSessionSpan(ctx context.Context, sessionID string) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, "session",
		trace.WithAttributes(
			attribute.String("session.id", sessionID),
		),
	)
}

// StartHopSpan starts a span for one agent invocation within a session.
func StartHopSpan(ctx context.Context, sessionID, agentName string, hop int) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, "hop",
		trace.WithAttributes(
			attribute.String("session.id", sessionID),
			attribute.String("agent.name", agentName),
			attribute.Int("hop", hop),
		),
	)
}

// StartToolCallSpan starts a span for a tool call within a hop.
func StartToolCallSpan(ctx context.Context, callID, tool string) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, "toolcall",
		trace.WithAttributes(
			attribute.String("toolcall.id", callID),
			attribute.String("toolcall.tool", tool),
		),
	)
}
