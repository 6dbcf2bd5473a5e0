package telemetry

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"todoapi/internal/core/port"
)

// OTELProbe implements Telemetry using OpenTelemetry.
type OTELProbe struct {
	logger *slog.Logger
}

func NewOTELProbe(logger *slog.Logger) port.Telemetry {
	return &OTELProbe{logger: logger}
}

// OTelSpan wraps an OpenTelemetry span behind the generic Span interface.
type OTelSpan struct {
	span trace.Span
}

func (s *OTelSpan) End() {
	s.span.End()
}

func (s *OTelSpan) SetAttributes(attrs map[string]interface{}) {
	s.span.SetAttributes(toOtelAttributes(attrs)...)
}

func (s *OTelSpan) SetStatus(code string, message string) {
	var statusCode codes.Code

	switch code {
	case "ok":
		statusCode = codes.Ok
	case "error":
		statusCode = codes.Error
	default:
		statusCode = codes.Unset
	}

	s.span.SetStatus(statusCode, message)
}

func (s *OTelSpan) RecordError(err error) {
	s.span.RecordError(err)
}

func toOtelAttributes(attrs map[string]interface{}) []attribute.KeyValue {
	var otelAttrs []attribute.KeyValue

	for key, value := range attrs {
		switch v := value.(type) {
		case string:
			otelAttrs = append(otelAttrs, attribute.String(key, v))
		case int:
			otelAttrs = append(otelAttrs, attribute.Int(key, v))
		case int64:
			otelAttrs = append(otelAttrs, attribute.Int64(key, v))
		case float64:
			otelAttrs = append(otelAttrs, attribute.Float64(key, v))
		case bool:
			otelAttrs = append(otelAttrs, attribute.Bool(key, v))
		default:
			otelAttrs = append(otelAttrs, attribute.String(key, fmt.Sprintf("%v", v)))
		}
	}

	return otelAttrs
}

func (p *OTELProbe) StartRepositorySpan(ctx context.Context, operation string, entity string, attrs map[string]interface{}) (context.Context, port.Span) {
	spanName := fmt.Sprintf("repository.%s.%s", entity, operation)

	standardAttrs := []attribute.KeyValue{
		attribute.String("repository.entity", entity),
		attribute.String("repository.operation", operation),
		attribute.String("component", "repository"),
	}
	standardAttrs = append(standardAttrs, toOtelAttributes(attrs)...)

	ctx, span := otel.Tracer("todoapi").Start(ctx, spanName, trace.WithAttributes(standardAttrs...))
	return ctx, &OTelSpan{span: span}
}

func (p *OTELProbe) StartServiceSpan(ctx context.Context, service string, operation string, ownerID string, attrs map[string]interface{}) (context.Context, port.Span) {
	spanName := fmt.Sprintf("service.%s.%s", service, operation)

	standardAttrs := []attribute.KeyValue{
		attribute.String("service.name", service),
		attribute.String("service.operation", operation),
		attribute.String("owner.id", ownerID),
		attribute.String("component", "service"),
	}
	standardAttrs = append(standardAttrs, toOtelAttributes(attrs)...)

	ctx, span := otel.Tracer("todoapi").Start(ctx, spanName, trace.WithAttributes(standardAttrs...))
	return ctx, &OTelSpan{span: span}
}

func (p *OTELProbe) RecordRepositoryOperation(ctx context.Context, operation string, entity string, duration time.Duration, err error) {
	if err != nil && p.logger != nil {
		p.logger.Error("repository operation failed",
			"entity", entity,
			"operation", operation,
			"duration", duration,
			"error", err)
	}
}

func (p *OTELProbe) RecordServiceOperation(ctx context.Context, service string, operation string, ownerID string, duration time.Duration, err error) {
	if err != nil && p.logger != nil {
		p.logger.Error("service operation failed",
			"service", service,
			"operation", operation,
			"owner_id", ownerID,
			"duration", duration,
			"error", err)
	}
}

func (p *OTELProbe) RecordBusinessEvent(ctx context.Context, event string, entity string, entityID string, ownerID string, metadata map[string]interface{}) {
	span := trace.SpanFromContext(ctx)

	if !span.SpanContext().IsValid() {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String("event.name", event),
		attribute.String("event.entity", entity),
		attribute.String("event.entity_id", entityID),
		attribute.String("owner.id", ownerID),
	}
	attrs = append(attrs, toOtelAttributes(metadata)...)

	span.AddEvent(fmt.Sprintf("%s.%s", entity, event), trace.WithAttributes(attrs...))
}

func (p *OTELProbe) RecordError(ctx context.Context, operation string, err error, metadata map[string]interface{}) {
	span := trace.SpanFromContext(ctx)

	if span.SpanContext().IsValid() {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}

	if p.logger != nil {
		p.logger.Error("operation failed", "operation", operation, "error", err)
	}
}
