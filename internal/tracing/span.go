package tracing

import (
	"context"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// StartRequestSpan starts a client span for an HTTP request issued by the
// load generator or server handlers. The caller must call EndSpan.
func (p *Provider) StartRequestSpan(ctx context.Context, method, target string) (context.Context, trace.Span) {
	return p.Tracer().Start(ctx, method+" "+target,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", method),
			attribute.String("url.path", target),
		),
	)
}

// StartStoreSpan starts an internal span around a store operation.
func (p *Provider) StartStoreSpan(ctx context.Context, op, key string) (context.Context, trace.Span) {
	return p.Tracer().Start(ctx, "store."+op,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("db.operation.name", op),
			attribute.String("db.redis.key", key),
		),
	)
}

// EndSpan records the outcome and ends the span.
func EndSpan(span trace.Span, statusCode int, err error) {
	if statusCode > 0 {
		span.SetAttributes(attribute.Int("http.response.status_code", statusCode))
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else if statusCode >= 400 {
		span.SetStatus(codes.Error, http.StatusText(statusCode))
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

// InjectHTTPHeaders writes the current trace context into outgoing headers.
func InjectHTTPHeaders(ctx context.Context, header http.Header) {
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(header))
}
