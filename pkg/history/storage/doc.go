// Package storage implements history.Store backends.
//
// # Backends
//
// MemoryStore keeps runs in a map and is meant for tests and short-lived
// processes.
//
// SQLiteStore writes to a single database file. Two drivers are supported:
//
//	history:
//	  backend: sqlite
//	  sqlite:
//	    path: data/history.db
//	    driver: sqlite3   # mattn/go-sqlite3, requires cgo
//	    # driver: sqlite  # modernc.org/sqlite, pure Go
//
// PostgresStore uses lib/pq. Its schema is versioned with golang-migrate
// and the migrations are embedded in the binary, so the first Open brings
// an empty database up to date.
//
// # Schema
//
// Both SQL backends store one row per run. Rule records are kept as a JSON
// document in the rules column. started_at holds Unix nanoseconds (UTC) so
// ordering and cutoffs behave the same on every driver.
package storage
