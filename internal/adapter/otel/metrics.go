package otel

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "catapult"

// Metrics holds all Catapult metric instruments.
type Metrics struct {
	SessionsStarted   metric.Int64Counter
	SessionsCompleted metric.Int64Counter
	SessionsFailed    metric.Int64Counter
	Handoffs          metric.Int64Counter
	ToolCalls         metric.Int64Counter
	SessionDuration   metric.Float64Histogram
	SessionHops       metric.Int64Histogram
}

// NewMetrics creates all metric instruments.
func NewMetrics() (*Metrics, error) {
	meter := otel.Meter(meterName)
	m := &Metrics{}
	var err error

	m.SessionsStarted, err = meter.Int64Counter("catapult.sessions.started",
		metric.WithDescription("Number of planning sessions started"))
	if err != nil {
		return nil, err
	}

	m.SessionsCompleted, err = meter.Int64Counter("catapult.sessions.completed",
		metric.WithDescription("Number of planning sessions completed"))
	if err != nil {
		return nil, err
	}

	m.SessionsFailed, err = meter.Int64Counter("catapult.sessions.failed",
		metric.WithDescription("Number of planning sessions failed"))
	if err != nil {
		return nil, err
	}

	m.Handoffs, err = meter.Int64Counter("catapult.handoffs",
		metric.WithDescription("Number of agent-to-agent handoffs"))
	if err != nil {
		return nil, err
	}

	m.ToolCalls, err = meter.Int64Counter("catapult.toolcalls",
		metric.WithDescription("Number of tool calls"))
	if err != nil {
		return nil, err
	}

	m.SessionDuration, err = meter.Float64Histogram("catapult.session.duration_seconds",
		metric.WithDescription("Planning session duration in seconds"))
	if err != nil {
		return nil, err
	}

	m.SessionHops, err = meter.Int64Histogram("catapult.session.hops",
		metric.WithDescription("Agent transitions per planning session"))
	if err != nil {
		return nil, err
	}

	return m, nil
}
