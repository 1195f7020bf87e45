package report

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"maps-workflow/mapcheck/pkg/engine"
	"maps-workflow/mapcheck/pkg/ruleset"
	"maps-workflow/mapcheck/pkg/telemetry/logging"
)

// LogReporter logs engine events.
type LogReporter struct {
	engine.NopReporter

	logger *slog.Logger
	ctx    context.Context
}

// NewLogReporter creates a reporter that logs through logger.
func NewLogReporter(logger *slog.Logger) *LogReporter {
	return &LogReporter{
		logger: logger.With("component", "engine"),
		ctx:    context.Background(),
	}
}

func (r *LogReporter) RunStarted(info engine.RunInfo) {
	r.ctx = logging.WithMap(logging.WithRunID(context.Background(), info.ID), info.Locator)
	r.logger.InfoContext(r.ctx, fmt.Sprintf("Processing file: %s", info.Locator), "rules", info.Rules)
}

func (r *LogReporter) RuleStarted(d *ruleset.Descriptor) {
	r.logger.DebugContext(r.ctx, "evaluating rule",
		"rule", d.Name, "module", d.Module, "class", d.ClassName, "policy", string(d.Type))
}

func (r *LogReporter) RuleCompleted(res engine.RuleResult) {
	ctx := r.ctx
	if res.Name != "" {
		ctx = logging.WithRule(ctx, res.Name)
	}

	switch res.State {
	case engine.StateInvalid:
		r.logger.ErrorContext(ctx, res.Err.Error(), "source", res.Source.String())
		return
	case engine.StateBlocked:
		r.logger.InfoContext(ctx, fmt.Sprintf("⏭️  Skipping '%s' due to unmet dependencies.", res.Name), "unmet", res.Unmet)
		return
	case engine.StateUnresolved:
		r.logger.WarnContext(ctx, fmt.Sprintf("⚠️ %v", res.Err))
		return
	case engine.StatePassed:
		r.logger.InfoContext(ctx, fmt.Sprintf("✅ Rule '%s' passed. (%s)", res.Name, seconds(res.Elapsed)))
		return
	}

	for _, v := range res.Violations {
		r.logger.InfoContext(ctx, fmt.Sprintf("Violation: %s", v))
	}

	elapsed := seconds(res.Elapsed)
	if res.State == engine.StateErrored {
		switch res.Action {
		case engine.ActionAbort:
			r.logger.ErrorContext(ctx, fmt.Sprintf("❌ Rule '%s' encountered an error (REQUIRED). (%s) Exiting: %v", res.Name, elapsed, res.Err))
		case engine.ActionSkip:
			r.logger.ErrorContext(ctx, fmt.Sprintf("⏭️ Rule '%s' encountered an error but skipping (%s): %v", res.Name, elapsed, res.Err))
		default:
			r.logger.ErrorContext(ctx, fmt.Sprintf("⚠️ Rule '%s' encountered an error (%s): %v", res.Name, elapsed, res.Err))
		}
		return
	}

	switch res.Action {
	case engine.ActionAbort:
		r.logger.ErrorContext(ctx, fmt.Sprintf("❌ Rule '%s' failed (REQUIRED). Exiting with error. (%s)", res.Name, elapsed))
	case engine.ActionSkip:
		r.logger.InfoContext(ctx, fmt.Sprintf("⏭️ Rule '%s' failed but skipping. (%s)", res.Name, elapsed))
	default:
		r.logger.InfoContext(ctx, fmt.Sprintf("⚠️ Rule '%s' failed but continuing. (%s)", res.Name, elapsed))
	}
}

func (r *LogReporter) RunFinished(result *engine.Result) {
	if result.Success() {
		r.logger.InfoContext(r.ctx, "🎉 All rules processed successfully.",
			"passed", result.Count(engine.StatePassed),
			"failed", len(result.Rules)-result.Count(engine.StatePassed),
			"elapsed", seconds(result.Elapsed))
		return
	}
	r.logger.InfoContext(r.ctx, "Rule processing stopped.",
		"aborted_by", result.AbortedBy,
		"processed", len(result.Rules),
		"elapsed", seconds(result.Elapsed))
}

func seconds(d time.Duration) string {
	return fmt.Sprintf("%.2fs", d.Seconds())
}
