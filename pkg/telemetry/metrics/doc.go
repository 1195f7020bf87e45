// Package metrics provides Prometheus metrics for rule runs.
//
// # Overview
//
// A Collector implements engine.Reporter, so it can be attached to an engine
// next to the log reporter and observe every run without the engine knowing
// about Prometheus.
//
// # Metrics
//
//   - <ns>_rule_evaluations_total{rule,state}: processed declarations by final state
//   - <ns>_rule_evaluation_duration_seconds{rule}: time spent evaluating a rule
//   - <ns>_rule_violations_total{rule}: violations reported by a rule
//   - <ns>_runs_total{outcome}: runs by outcome (completed, aborted)
//   - <ns>_run_duration_seconds: wall time of a whole run
//   - <ns>_last_run_timestamp_seconds: start time of the most recent run
//   - <ns>_last_run_success: 1 if the most recent run completed, 0 otherwise
//
// # Usage
//
//	registry := prometheus.NewRegistry()
//	collector := metrics.NewCollector("mapcheck", registry)
//	eng := engine.New(resolver, engine.WithReporter(engine.Reporters{logReporter, collector}))
//
//	// Serve for scraping
//	r.Handle("/metrics", collector.Handler())
//
//	// Or write a node_exporter textfile after a one-shot run
//	collector.WriteTextfile("/var/lib/node_exporter/mapcheck.prom")
//
// # Cardinality
//
// Rule names come from declaration files, which may change under a watch
// loop. The collector caps the number of distinct rule label values and
// folds any overflow into the "other" label.
package metrics
