package port

import (
	"context"
	"time"
)

// Span is a backend-agnostic tracing span so repositories and services can
// emit telemetry without importing the OpenTelemetry SDK.
type Span interface {
	End()
	SetAttributes(attrs map[string]interface{})
	SetStatus(code string, message string)
	RecordError(err error)
}

// Telemetry is the probe the core emits through. Tests use the no-op
// implementation; production wires the OTEL probe.
type Telemetry interface {
	StartRepositorySpan(ctx context.Context, operation string, entity string, attrs map[string]interface{}) (context.Context, Span)
	StartServiceSpan(ctx context.Context, service string, operation string, ownerID string, attrs map[string]interface{}) (context.Context, Span)

	RecordRepositoryOperation(ctx context.Context, operation string, entity string, duration time.Duration, err error)
	RecordServiceOperation(ctx context.Context, service string, operation string, ownerID string, duration time.Duration, err error)
	RecordBusinessEvent(ctx context.Context, event string, entity string, entityID string, ownerID string, metadata map[string]interface{})
	RecordError(ctx context.Context, operation string, err error, metadata map[string]interface{})
}
