// Package otel provides OpenTelemetry metric instruments and HTTP
// instrumentation for the planning service.
package otel

import (
	"context"
	"log/slog"
)

// ShutdownFunc is called to flush and shut down the trace provider.
type ShutdownFunc func(ctx context.Context) error

// InitTracer returns a no-op shutdown function. Exporter wiring is left to
// the deployment; instruments fall back to the global no-op providers.
func InitTracer(serviceName string) ShutdownFunc {
	slog.Info("otel tracer initialized", "service", serviceName)
	return func(_ context.Context) error {
		return nil
	}
}
