package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"maps-workflow/mapcheck/pkg/config"
	"maps-workflow/mapcheck/pkg/engine"
	"maps-workflow/mapcheck/pkg/history"
	"maps-workflow/mapcheck/pkg/history/storage"
	"maps-workflow/mapcheck/pkg/mapfile"
	"maps-workflow/mapcheck/pkg/report"
	"maps-workflow/mapcheck/pkg/rules"
	"maps-workflow/mapcheck/pkg/rules/builtin"
	"maps-workflow/mapcheck/pkg/ruleset"
	"maps-workflow/mapcheck/pkg/telemetry/metrics"
	"maps-workflow/mapcheck/pkg/telemetry/tracing"
)

// runner owns everything a run needs beyond the rule set: the rule
// registry, the reporters and the optional history store.
type runner struct {
	cfg       *config.Config
	logger    *slog.Logger
	registry  *rules.Registry
	collector *metrics.Collector
	tracer    *tracing.Tracer
	store     history.Store

	// extra reporters receive every event after the built-in ones
	extra []engine.Reporter

	// textfile, when set, receives the metrics after each run
	textfile string
}

func newRunner(cfg *config.Config, logger *slog.Logger) (*runner, error) {
	tracer, err := tracing.New(&cfg.Telemetry.Tracing)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize tracing: %w", err)
	}

	r := &runner{
		cfg:       cfg,
		logger:    logger,
		registry:  builtin.NewRegistry(),
		collector: metrics.NewCollector(cfg.Telemetry.Metrics.Namespace, nil),
		tracer:    tracer,
		textfile:  cfg.Telemetry.Metrics.TextfilePath,
	}

	if cfg.History.Enabled {
		store, err := storage.Open(cfg.History)
		if err != nil {
			_ = tracer.Shutdown(context.Background())
			return nil, fmt.Errorf("failed to open history store: %w", err)
		}
		r.store = store
		logger.Debug("History enabled", "backend", cfg.History.Backend)
	}

	return r, nil
}

// addReporter appends a reporter for subsequent runs.
func (r *runner) addReporter(rep engine.Reporter) {
	r.extra = append(r.extra, rep)
}

// Run validates the map at mapPath against entries. An error is returned
// only when the map cannot be read; rule failures are in the result.
func (r *runner) Run(ctx context.Context, mapPath string, entries []ruleset.Entry) (*engine.Result, error) {
	m, err := mapfile.Open(mapPath)
	if err != nil {
		return nil, err
	}

	reporters := engine.Reporters{
		report.NewLogReporter(r.logger),
		r.collector,
		tracing.NewReporter(ctx, r.tracer),
	}
	reporters = append(reporters, r.extra...)

	eng := engine.New(r.registry, engine.WithReporter(reporters))
	result := eng.Run(rules.Input{Locator: mapPath, Map: m}, entries)

	if r.store != nil {
		if err := r.store.Save(ctx, history.NewRun(result, m.Checksum)); err != nil {
			r.logger.Warn("Failed to record run", "run_id", result.RunID, "error", err)
		}
	}

	if r.textfile != "" {
		if err := r.collector.WriteTextfile(r.textfile); err != nil {
			r.logger.Warn("Failed to write metrics", "path", r.textfile, "error", err)
		}
	}

	return result, nil
}

// Close releases the store and flushes pending spans.
func (r *runner) Close(ctx context.Context) error {
	var errs []error
	if r.store != nil {
		errs = append(errs, r.store.Close())
	}
	errs = append(errs, r.tracer.Shutdown(ctx))
	return errors.Join(errs...)
}
