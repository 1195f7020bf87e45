package tracing

import (
	"context"
	"fmt"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"maps-workflow/mapcheck/pkg/engine"
	"maps-workflow/mapcheck/pkg/ruleset"
)

// Span attribute keys.
const (
	AttrRunID      = attribute.Key("mapcheck.run.id")
	AttrMap        = attribute.Key("mapcheck.map")
	AttrRuleCount  = attribute.Key("mapcheck.rules")
	AttrOutcome    = attribute.Key("mapcheck.outcome")
	AttrAbortedBy  = attribute.Key("mapcheck.aborted_by")
	AttrRuleName   = attribute.Key("mapcheck.rule.name")
	AttrRuleModule = attribute.Key("mapcheck.rule.module")
	AttrRuleClass  = attribute.Key("mapcheck.rule.class")
	AttrPolicy     = attribute.Key("mapcheck.rule.policy")
	AttrState      = attribute.Key("mapcheck.rule.state")
	AttrAction     = attribute.Key("mapcheck.rule.action")
	AttrViolations = attribute.Key("mapcheck.rule.violations")
)

// RunSpanName names the span covering a whole run.
const RunSpanName = "mapcheck.run"

// Reporter turns engine events into spans. It implements engine.Reporter.
// One Reporter may observe consecutive runs but not concurrent ones.
type Reporter struct {
	tracer *Tracer
	parent context.Context

	mu       sync.Mutex
	runCtx   context.Context
	runSpan  trace.Span
	ruleSpan trace.Span
	ruleName string
}

// NewReporter creates a reporter whose run spans are children of the span
// in ctx, if any.
func NewReporter(ctx context.Context, tracer *Tracer) *Reporter {
	return &Reporter{
		tracer: tracer,
		parent: ctx,
		runCtx: ctx,
	}
}

// Context returns the context carrying the current run span.
func (r *Reporter) Context() context.Context {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.runCtx
}

func (r *Reporter) RunStarted(info engine.RunInfo) {
	r.mu.Lock()
	defer r.mu.Unlock()

	opts := []trace.SpanStartOption{
		trace.WithAttributes(
			AttrRunID.String(info.ID),
			AttrMap.String(info.Locator),
			AttrRuleCount.Int(info.Rules),
		),
	}
	if !info.Started.IsZero() {
		opts = append(opts, trace.WithTimestamp(info.Started))
	}
	r.runCtx, r.runSpan = r.tracer.Start(r.parent, RunSpanName, opts...)
}

func (r *Reporter) RuleStarted(d *ruleset.Descriptor) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.runSpan == nil {
		return
	}
	_, r.ruleSpan = r.tracer.Start(r.runCtx, "rule "+d.Name,
		trace.WithAttributes(
			AttrRuleName.String(d.Name),
			AttrRuleModule.String(d.Module),
			AttrRuleClass.String(d.ClassName),
			AttrPolicy.String(string(d.Type)),
		),
	)
	r.ruleName = d.Name
}

func (r *Reporter) RuleCompleted(res engine.RuleResult) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.runSpan == nil {
		return
	}

	attrs := []attribute.KeyValue{
		AttrRuleName.String(res.Name),
		AttrState.String(res.State.String()),
		AttrAction.String(res.Action.String()),
	}

	if r.ruleSpan == nil || r.ruleName != res.Name {
		// Never evaluated: invalid, unresolved or blocked.
		if res.Err != nil {
			attrs = append(attrs, attribute.String("error.message", res.Err.Error()))
		}
		r.runSpan.AddEvent("rule.not_evaluated", trace.WithAttributes(attrs...))
		return
	}

	span := r.ruleSpan
	r.ruleSpan, r.ruleName = nil, ""

	attrs = append(attrs, AttrViolations.Int(len(res.Violations)))
	span.SetAttributes(attrs...)
	for _, v := range res.Violations {
		span.AddEvent("violation", trace.WithAttributes(attribute.String("message", v.String())))
	}

	switch {
	case res.Err != nil:
		SetStatus(span, res.Err)
	case res.State == engine.StateViolated:
		span.SetStatus(codes.Error, fmt.Sprintf("%d violation(s)", len(res.Violations)))
	default:
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

func (r *Reporter) RunFinished(result *engine.Result) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.runSpan == nil {
		return
	}
	span := r.runSpan
	r.runSpan = nil

	if result != nil {
		span.SetAttributes(AttrOutcome.String(result.Outcome.String()))
		if result.AbortedBy != "" {
			span.SetAttributes(AttrAbortedBy.String(result.AbortedBy))
			span.SetStatus(codes.Error, fmt.Sprintf("aborted by required rule %q", result.AbortedBy))
		} else {
			span.SetStatus(codes.Ok, "")
		}
	}
	span.End()
}
