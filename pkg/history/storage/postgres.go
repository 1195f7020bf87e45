package storage

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"strconv"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/lib/pq"

	"maps-workflow/mapcheck/pkg/history"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// PostgresConfig contains configuration for the PostgreSQL backend.
type PostgresConfig struct {
	// URL is a postgres:// connection URL. When set the other connection
	// fields are ignored.
	URL string

	Host     string
	Port     int
	Database string
	User     string
	Password string
	SSLMode  string

	// MaxOpenConns is the maximum number of open connections.
	// Default: 10
	MaxOpenConns int

	// ConnectTimeout bounds the initial ping.
	// Default: 10 seconds
	ConnectTimeout time.Duration
}

// DSN returns the connection URL.
func (c *PostgresConfig) DSN() string {
	if c.URL != "" {
		return c.URL
	}

	port := c.Port
	if port == 0 {
		port = 5432
	}
	u := url.URL{
		Scheme: "postgres",
		Host:   net.JoinHostPort(c.Host, strconv.Itoa(port)),
		Path:   "/" + c.Database,
	}
	if c.User != "" {
		if c.Password != "" {
			u.User = url.UserPassword(c.User, c.Password)
		} else {
			u.User = url.User(c.User)
		}
	}
	if c.SSLMode != "" {
		u.RawQuery = url.Values{"sslmode": {c.SSLMode}}.Encode()
	}
	return u.String()
}

// PostgresStore implements history.Store using PostgreSQL.
type PostgresStore struct {
	sqlStore
}

// NewPostgresStore migrates the schema to the latest version and opens a
// connection pool.
func NewPostgresStore(config *PostgresConfig) (*PostgresStore, error) {
	if config == nil {
		return nil, history.NewStorageError("postgres", "open", errors.New("config is nil"))
	}

	logger := slog.Default().With("component", "history.storage.postgres")
	dsn := config.DSN()

	migrator, err := NewMigrator(dsn)
	if err != nil {
		return nil, err
	}
	if err := migrator.Up(); err != nil {
		migrator.Close()
		return nil, err
	}
	if err := migrator.Close(); err != nil {
		logger.Warn("failed to close migrator", "error", err)
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, history.NewStorageError("postgres", "open", err)
	}

	maxOpen := config.MaxOpenConns
	if maxOpen <= 0 {
		maxOpen = 10
	}
	db.SetMaxOpenConns(maxOpen)

	timeout := config.ConnectTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, history.NewStorageError("postgres", "ping", err)
	}

	logger.Info("PostgreSQL storage initialized", "host", config.Host, "database", config.Database)

	return &PostgresStore{
		sqlStore: sqlStore{
			db:      db,
			backend: "postgres",
			rebind:  dollarRebind,
			logger:  logger,
		},
	}, nil
}

// Migrator applies the embedded PostgreSQL migrations.
type Migrator struct {
	m *migrate.Migrate
}

// NewMigrator creates a migrator for the database at dsn.
func NewMigrator(dsn string) (*Migrator, error) {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return nil, history.NewStorageError("postgres", "load_migrations", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", src, dsn)
	if err != nil {
		return nil, history.NewStorageError("postgres", "migrate", err)
	}
	return &Migrator{m: m}, nil
}

// Up applies all pending migrations.
func (mg *Migrator) Up() error {
	if err := mg.m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return history.NewStorageError("postgres", "migrate_up", err)
	}
	return nil
}

// Down rolls back every migration.
func (mg *Migrator) Down() error {
	if err := mg.m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return history.NewStorageError("postgres", "migrate_down", err)
	}
	return nil
}

// Version returns the applied schema version and whether the last
// migration left the database dirty. A database without migrations
// reports version 0.
func (mg *Migrator) Version() (uint, bool, error) {
	version, dirty, err := mg.m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, history.NewStorageError("postgres", "migrate_version", err)
	}
	return version, dirty, nil
}

// Close releases the migrator's source and database connections.
func (mg *Migrator) Close() error {
	srcErr, dbErr := mg.m.Close()
	if srcErr != nil {
		return fmt.Errorf("close migration source: %w", srcErr)
	}
	if dbErr != nil {
		return fmt.Errorf("close migration database: %w", dbErr)
	}
	return nil
}
