// Package server exposes a running watch session over HTTP.
//
// Routes:
//
//	GET  /healthz   liveness, always 200 while the server runs
//	GET  /status    summary of the most recent run as JSON, 503 before the first run
//	GET  /metrics   Prometheus exposition of the run metrics
//	POST /run       queue an immediate re-run, 202 when accepted
//
// A Status value records run summaries as an engine reporter and backs the
// /status route:
//
//	status := server.NewStatus()
//	eng := engine.New(registry, engine.WithReporter(engine.Reporters{logReporter, status}))
//	srv := server.New(&cfg.Watch, status,
//	    server.WithMetrics(collector.Handler()),
//	    server.WithTrigger(watcher.Trigger),
//	)
//	go srv.Start(ctx)
package server
