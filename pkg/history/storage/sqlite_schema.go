package storage

// SchemaVersion is the current SQLite schema version.
const SchemaVersion = 1

// Schema contains the SQL statements to create the SQLite history schema.
// The PostgreSQL schema lives in migrations/.
const Schema = `
CREATE TABLE IF NOT EXISTS runs (
    id TEXT PRIMARY KEY,
    map_path TEXT NOT NULL,
    map_checksum TEXT NOT NULL DEFAULT '',

    -- Unix nanoseconds, UTC
    started_at INTEGER NOT NULL,
    duration_ns INTEGER NOT NULL,

    outcome TEXT NOT NULL,
    aborted_by TEXT NOT NULL DEFAULT '',

    -- JSON array of rule records
    rules TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER PRIMARY KEY,
    applied_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at);
CREATE INDEX IF NOT EXISTS idx_runs_map_path ON runs(map_path);
CREATE INDEX IF NOT EXISTS idx_runs_outcome ON runs(outcome);
`

// InsertSchemaVersion inserts the schema version into the schema_version table.
const InsertSchemaVersion = `
INSERT INTO schema_version (version, applied_at)
VALUES (?, datetime('now'))
ON CONFLICT(version) DO NOTHING;
`

// GetSchemaVersion retrieves the current schema version from the database.
const GetSchemaVersion = `
SELECT version FROM schema_version ORDER BY version DESC LIMIT 1;
`
