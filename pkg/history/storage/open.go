package storage

import (
	"fmt"

	"maps-workflow/mapcheck/pkg/config"
	"maps-workflow/mapcheck/pkg/history"
)

// Backend names accepted by Open.
const (
	BackendMemory   = "memory"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
)

// Open creates the store selected by the history configuration.
func Open(cfg config.HistoryConfig) (history.Store, error) {
	switch cfg.Backend {
	case BackendMemory:
		return NewMemoryStore(), nil

	case BackendSQLite, "":
		sc := DefaultSQLiteConfig()
		if cfg.SQLite.Path != "" {
			sc.Path = cfg.SQLite.Path
		}
		if cfg.SQLite.Driver != "" {
			sc.Driver = cfg.SQLite.Driver
		}
		if cfg.SQLite.BusyTimeout > 0 {
			sc.BusyTimeout = cfg.SQLite.BusyTimeout
		}
		return NewSQLiteStore(sc)

	case BackendPostgres:
		return NewPostgresStore(PostgresConfigFrom(cfg.Postgres))

	default:
		return nil, history.NewStorageError(cfg.Backend, "open", fmt.Errorf("unknown history backend %q", cfg.Backend))
	}
}

// PostgresConfigFrom converts the file configuration.
func PostgresConfigFrom(pc config.PostgresConfig) *PostgresConfig {
	return &PostgresConfig{
		URL:      pc.URL,
		Host:     pc.Host,
		Port:     pc.Port,
		Database: pc.Database,
		User:     pc.User,
		Password: pc.Password,
		SSLMode:  pc.SSLMode,
	}
}
