// Package telemetry groups the observability packages of mapcheck.
//
// # Components
//
//   - logging: structured logging on log/slog with run-scoped fields
//   - metrics: Prometheus metrics fed by engine events
//   - tracing: OpenTelemetry spans for runs and rule evaluations
//
// The metrics and tracing packages implement engine.Reporter so they can
// be attached to a run next to the log reporter.
package telemetry
