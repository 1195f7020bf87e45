package logging

import (
	"context"
	"log/slog"
)

// Context keys for common log fields.
type contextKey string

const (
	// RunIDKey is the context key for run IDs.
	RunIDKey contextKey = "run_id"

	// MapKey is the context key for the map path.
	MapKey contextKey = "map"

	// RuleKey is the context key for the rule name.
	RuleKey contextKey = "rule"

	// TraceIDKey is the context key for trace IDs.
	TraceIDKey contextKey = "trace_id"
)

var contextKeys = []contextKey{RunIDKey, MapKey, RuleKey, TraceIDKey}

// WithRunID adds a run ID to the context.
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, RunIDKey, runID)
}

// GetRunID retrieves the run ID from the context.
func GetRunID(ctx context.Context) string {
	return getString(ctx, RunIDKey)
}

// WithMap adds the map path to the context.
func WithMap(ctx context.Context, path string) context.Context {
	return context.WithValue(ctx, MapKey, path)
}

// GetMap retrieves the map path from the context.
func GetMap(ctx context.Context) string {
	return getString(ctx, MapKey)
}

// WithRule adds a rule name to the context.
func WithRule(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, RuleKey, name)
}

// GetRule retrieves the rule name from the context.
func GetRule(ctx context.Context) string {
	return getString(ctx, RuleKey)
}

// WithTraceID adds a trace ID to the context.
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, TraceIDKey, traceID)
}

// GetTraceID retrieves the trace ID from the context.
func GetTraceID(ctx context.Context) string {
	return getString(ctx, TraceIDKey)
}

func getString(ctx context.Context, key contextKey) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(key).(string); ok {
		return v
	}
	return ""
}

// contextAttrs extracts the known fields from ctx.
func contextAttrs(ctx context.Context) []slog.Attr {
	var attrs []slog.Attr
	for _, key := range contextKeys {
		if v := getString(ctx, key); v != "" {
			attrs = append(attrs, slog.String(string(key), v))
		}
	}
	return attrs
}
