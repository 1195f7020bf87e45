package storage

import (
	"database/sql"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
	_ "modernc.org/sqlite"

	"maps-workflow/mapcheck/pkg/history"
)

// SQLite driver names as registered with database/sql.
const (
	DriverCGO    = "sqlite3" // github.com/mattn/go-sqlite3
	DriverPureGo = "sqlite"  // modernc.org/sqlite
)

// SQLiteConfig contains configuration for the SQLite storage backend.
type SQLiteConfig struct {
	// Path is the database file path, or ":memory:".
	Path string

	// Driver is DriverCGO or DriverPureGo.
	// Default: DriverCGO
	Driver string

	// MaxOpenConns is the maximum number of open connections to the database.
	// Default: 4 (1 for ":memory:")
	MaxOpenConns int

	// WALMode enables Write-Ahead Logging mode for better concurrency.
	// Default: true
	WALMode bool

	// BusyTimeout is the duration to wait when the database is locked.
	// Default: 5 seconds
	BusyTimeout time.Duration
}

// DefaultSQLiteConfig returns the default SQLite configuration.
func DefaultSQLiteConfig() *SQLiteConfig {
	return &SQLiteConfig{
		Path:         "data/history.db",
		Driver:       DriverCGO,
		MaxOpenConns: 4,
		WALMode:      true,
		BusyTimeout:  5 * time.Second,
	}
}

// SQLiteStore implements history.Store using SQLite.
type SQLiteStore struct {
	sqlStore
	config *SQLiteConfig
}

// NewSQLiteStore opens the database, creating the file and schema if needed.
func NewSQLiteStore(config *SQLiteConfig) (*SQLiteStore, error) {
	if config == nil {
		config = DefaultSQLiteConfig()
	}
	if config.Driver == "" {
		config.Driver = DriverCGO
	}
	if config.Driver != DriverCGO && config.Driver != DriverPureGo {
		return nil, history.NewStorageError("sqlite", "open", fmt.Errorf("unknown driver %q", config.Driver))
	}

	logger := slog.Default().With("component", "history.storage.sqlite")

	if config.Path != ":memory:" {
		if dir := filepath.Dir(config.Path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, history.NewStorageError("sqlite", "open", err)
			}
		}
	}

	db, err := sql.Open(config.Driver, sqliteDSN(config))
	if err != nil {
		return nil, history.NewStorageError("sqlite", "open", err)
	}

	maxOpen := config.MaxOpenConns
	if maxOpen <= 0 {
		maxOpen = 4
	}
	// Every connection to ":memory:" is a separate database.
	if config.Path == ":memory:" {
		maxOpen = 1
	}
	db.SetMaxOpenConns(maxOpen)

	s := &SQLiteStore{
		sqlStore: sqlStore{
			db:      db,
			backend: "sqlite",
			rebind:  questionRebind,
			logger:  logger,
		},
		config: config,
	}

	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("SQLite storage initialized",
		"path", config.Path,
		"driver", config.Driver,
		"wal_mode", config.WALMode,
	)

	return s, nil
}

// sqliteDSN builds a connection string. The two drivers spell connection
// pragmas differently.
func sqliteDSN(config *SQLiteConfig) string {
	busy := config.BusyTimeout.Milliseconds()
	params := url.Values{}

	switch config.Driver {
	case DriverPureGo:
		params.Add("_pragma", fmt.Sprintf("busy_timeout(%d)", busy))
		params.Add("_pragma", "foreign_keys(1)")
		if config.WALMode && config.Path != ":memory:" {
			params.Add("_pragma", "journal_mode(WAL)")
		}
	default:
		params.Set("_busy_timeout", fmt.Sprint(busy))
		params.Set("_foreign_keys", "1")
		if config.WALMode && config.Path != ":memory:" {
			params.Set("_journal_mode", "WAL")
		}
	}

	return "file:" + config.Path + "?" + params.Encode()
}

// initialize creates the schema and checks its version.
func (s *SQLiteStore) initialize() error {
	if _, err := s.db.Exec(Schema); err != nil {
		return history.NewStorageError("sqlite", "create_schema", err)
	}

	if _, err := s.db.Exec(InsertSchemaVersion, SchemaVersion); err != nil {
		return history.NewStorageError("sqlite", "insert_schema_version", err)
	}

	var version int
	err := s.db.QueryRow(GetSchemaVersion).Scan(&version)
	if err != nil && err != sql.ErrNoRows {
		return history.NewStorageError("sqlite", "get_schema_version", err)
	}

	if version != SchemaVersion {
		return history.NewStorageError("sqlite", "schema_version_mismatch",
			fmt.Errorf("expected schema version %d, got %d", SchemaVersion, version))
	}

	s.logger.Debug("schema version verified", "version", version)
	return nil
}

// Path returns the database file path.
func (s *SQLiteStore) Path() string {
	return s.config.Path
}
