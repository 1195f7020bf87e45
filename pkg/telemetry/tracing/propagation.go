package tracing

import (
	"context"
	"net/http"

	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// w3c handles W3C Trace Context and W3C Baggage headers:
//
//	traceparent: 00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01
var w3c = propagation.NewCompositeTextMapPropagator(
	propagation.TraceContext{},
	propagation.Baggage{},
)

// Propagator returns the W3C text map propagator installed by New.
func Propagator() propagation.TextMapPropagator {
	return w3c
}

// Extract returns ctx carrying the trace context found in headers. If the
// headers hold none, ctx is returned unchanged.
func Extract(ctx context.Context, headers http.Header) context.Context {
	return w3c.Extract(ctx, propagation.HeaderCarrier(headers))
}

// HTTPMiddleware extracts the caller's trace context into the request
// context and echoes its trace ID in the X-Trace-ID response header.
// Validation runs are not linked to the request; the header only lets a
// caller correlate its own trace with the server's logs.
//
//	r.Use(tracing.HTTPMiddleware)
func HTTPMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := Extract(r.Context(), r.Header)

		if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
			w.Header().Set("X-Trace-ID", sc.TraceID().String())
		}

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
