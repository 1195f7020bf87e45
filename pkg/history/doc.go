// Package history records the outcome of rule runs so they can be listed,
// compared and pruned later.
//
// # Overview
//
// Every run produces one Run record holding the map it checked, the overall
// outcome and one RuleRecord per processed declaration. Records are written
// through a Store:
//
//	store, err := storage.Open(cfg.History)
//	if err != nil {
//		return err
//	}
//	defer store.Close()
//
//	run := history.NewRun(result, m.Checksum)
//	if err := store.Save(ctx, run); err != nil {
//		return err
//	}
//
// # Backends
//
//   - memory: process-local, used by tests and watch mode without a database
//   - sqlite: a single file, either through mattn/go-sqlite3 (cgo) or
//     modernc.org/sqlite (pure Go)
//   - postgres: lib/pq with the schema managed by golang-migrate
//
// # Retention
//
// The retention subpackage deletes runs older than a number of days and
// caps the number of stored runs, optionally on a cron schedule.
package history
