// Package tracing exports rule runs as OpenTelemetry traces.
//
// A run becomes one span named "mapcheck.run". Every rule that is resolved
// and evaluated becomes a child span named "rule <name>". Declarations that
// never reach evaluation (invalid, unresolved or blocked) are recorded as
// events on the run span instead.
//
// Spans are exported over OTLP/gRPC:
//
//	tracer, err := tracing.New(&cfg.Telemetry.Tracing)
//	if err != nil {
//		return err
//	}
//	defer tracer.Shutdown(context.Background())
//
//	rep := tracing.NewReporter(ctx, tracer)
//	eng := engine.New(registry, engine.WithReporter(rep))
//
// When tracing is disabled New returns a tracer backed by a no-op provider,
// so callers never need to branch on the configuration.
package tracing
