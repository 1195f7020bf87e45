// Package logging provides structured logging on log/slog.
//
// # Usage
//
//	logger, err := logging.New(logging.Config{
//	    Level:  "info",
//	    Format: "text",
//	})
//
//	// Components add their name
//	log := logger.With("component", "watcher")
//
//	// Run-scoped fields travel in the context
//	ctx = logging.WithRunID(ctx, result.RunID)
//	ctx = logging.WithMap(ctx, "maps/ctf1.map")
//	log.InfoContext(ctx, "run finished")  // includes run_id and map
//
// Context fields are added by the handler returned by New, so any
// *slog.Logger derived from it picks them up in the *Context methods.
package logging
