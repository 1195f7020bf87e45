package tracing

import (
	"fmt"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// createSampler picks a sampler for the configured ratio.
//
// A ratio of 1.0 samples every run and 0.0 samples none. Anything in
// between uses TraceIDRatioBased, so a given run ID is either fully traced
// or not at all.
//
// The sampler is wrapped in ParentBased so a run started under a sampled
// parent span (for example a watch loop triggered by a traced request)
// follows the parent's decision.
func createSampler(ratio float64) (sdktrace.Sampler, error) {
	var baseSampler sdktrace.Sampler

	switch {
	case ratio < 0.0 || ratio > 1.0:
		return nil, fmt.Errorf("sample ratio must be between 0.0 and 1.0, got %f", ratio)
	case ratio == 1.0:
		baseSampler = sdktrace.AlwaysSample()
	case ratio == 0.0:
		baseSampler = sdktrace.NeverSample()
	default:
		baseSampler = sdktrace.TraceIDRatioBased(ratio)
	}

	return sdktrace.ParentBased(baseSampler), nil
}
