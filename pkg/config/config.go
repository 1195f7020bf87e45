package config

import "time"

// Config is the root configuration structure for mapcheck.
type Config struct {
	// Rules configures where rule declarations are loaded from.
	Rules RulesConfig `yaml:"rules" envPrefix:"RULES_"`

	// CI enables GitHub Actions annotations and step summaries.
	// Default: false
	CI bool `yaml:"ci" env:"CI"`

	// History configures persistent storage of run results.
	History HistoryConfig `yaml:"history" envPrefix:"HISTORY_"`

	// Watch configures the watch command.
	Watch WatchConfig `yaml:"watch" envPrefix:"WATCH_"`

	// Telemetry configures logging, metrics and tracing.
	Telemetry TelemetryConfig `yaml:"telemetry" envPrefix:"TELEMETRY_"`
}

// RulesConfig configures the rule declaration directory.
type RulesConfig struct {
	// Dir is the directory holding the declaration files.
	// Default: "map_rules"
	Dir string `yaml:"dir" env:"DIR"`

	// Exclude lists file name prefixes to skip.
	Exclude []string `yaml:"exclude" env:"EXCLUDE" envSeparator:","`

	// Extensions lists accepted declaration file extensions.
	// Default: [".yaml"]
	Extensions []string `yaml:"extensions" env:"EXTENSIONS" envSeparator:","`

	// MaxFileSize is the largest declaration file accepted, in bytes.
	// Default: 1048576 (1MB)
	MaxFileSize int64 `yaml:"max_file_size" env:"MAX_FILE_SIZE"`

	// Git loads the declarations from a Git repository instead of Dir.
	Git GitConfig `yaml:"git" envPrefix:"GIT_"`
}

// GitConfig configures Git-based rule sets.
type GitConfig struct {
	// Enabled determines if the rule set is cloned from Repository.
	// Default: false
	Enabled bool `yaml:"enabled" env:"ENABLED"`

	// Repository URL (HTTPS or SSH).
	Repository string `yaml:"repository" env:"REPOSITORY"`

	// Branch to check out.
	// Default: "main"
	Branch string `yaml:"branch" env:"BRANCH"`

	// Path is the declaration directory inside the repository.
	// Default: "" (repository root)
	Path string `yaml:"path" env:"PATH"`

	// LocalPath is where the repository is cloned.
	// Default: "" (a temporary directory)
	LocalPath string `yaml:"local_path" env:"LOCAL_PATH"`

	// Depth for shallow clones (0 = full clone).
	// Default: 1
	Depth int `yaml:"depth" env:"DEPTH"`

	// Timeout for clone and pull operations.
	// Default: 60s
	Timeout time.Duration `yaml:"timeout" env:"TIMEOUT"`

	// PollInterval is how often watch mode pulls the repository.
	// Default: 60s
	PollInterval time.Duration `yaml:"poll_interval" env:"POLL_INTERVAL"`

	// Auth configures Git authentication.
	Auth GitAuthConfig `yaml:"auth" envPrefix:"AUTH_"`
}

// GitAuthConfig configures Git authentication.
type GitAuthConfig struct {
	// Type: "token", "ssh" or "none".
	// Default: "none"
	Type string `yaml:"type" env:"TYPE"`

	// Token for HTTPS authentication. Required when Type is "token".
	Token string `yaml:"token" env:"TOKEN"`

	// SSHKeyPath for SSH authentication. Required when Type is "ssh".
	SSHKeyPath string `yaml:"ssh_key_path" env:"SSH_KEY_PATH"`

	// SSHKeyPassphrase for encrypted SSH keys.
	SSHKeyPassphrase string `yaml:"ssh_key_passphrase" env:"SSH_KEY_PASSPHRASE"`
}

// HistoryConfig configures run history storage.
type HistoryConfig struct {
	// Enabled controls whether runs are recorded.
	// Default: false
	Enabled bool `yaml:"enabled" env:"ENABLED"`

	// Backend is "memory", "sqlite" or "postgres".
	// Default: "sqlite"
	Backend string `yaml:"backend" env:"BACKEND"`

	SQLite    SQLiteConfig    `yaml:"sqlite" envPrefix:"SQLITE_"`
	Postgres  PostgresConfig  `yaml:"postgres" envPrefix:"POSTGRES_"`
	Retention RetentionConfig `yaml:"retention" envPrefix:"RETENTION_"`
}

// SQLiteConfig configures the SQLite history backend.
type SQLiteConfig struct {
	// Path to the database file.
	// Default: "data/history.db"
	Path string `yaml:"path" env:"PATH"`

	// Driver is "sqlite3" (cgo, mattn/go-sqlite3) or "sqlite" (pure Go,
	// modernc.org/sqlite).
	// Default: "sqlite3"
	Driver string `yaml:"driver" env:"DRIVER"`

	// BusyTimeout is how long a write waits for a locked database.
	// Default: 5s
	BusyTimeout time.Duration `yaml:"busy_timeout" env:"BUSY_TIMEOUT"`
}

// PostgresConfig configures the PostgreSQL history backend.
// URL takes precedence over the individual connection fields.
type PostgresConfig struct {
	URL      string `yaml:"url" env:"URL"`
	Host     string `yaml:"host" env:"HOST"`
	Port     int    `yaml:"port" env:"PORT"`
	Database string `yaml:"database" env:"DATABASE"`
	User     string `yaml:"user" env:"USER"`
	Password string `yaml:"password" env:"PASSWORD"`

	// SSLMode: "disable", "require", "verify-ca" or "verify-full".
	// Default: "require"
	SSLMode string `yaml:"ssl_mode" env:"SSL_MODE"`
}

// RetentionConfig configures history pruning.
type RetentionConfig struct {
	// Days to keep runs (0 = keep forever).
	// Default: 90
	Days int `yaml:"days" env:"DAYS"`

	// MaxRecords keeps at most this many runs (0 = unlimited).
	// Default: 0
	MaxRecords int64 `yaml:"max_records" env:"MAX_RECORDS"`

	// Schedule is the cron expression for pruning in watch mode.
	// Default: "0 3 * * *"
	Schedule string `yaml:"schedule" env:"SCHEDULE"`
}

// WatchConfig configures the watch command.
type WatchConfig struct {
	// Debounce is the quiet period after a change before re-running.
	// Default: 100ms
	Debounce time.Duration `yaml:"debounce" env:"DEBOUNCE"`

	// Listen is the status server address ("" disables the server).
	Listen string `yaml:"listen" env:"LISTEN"`

	// ShutdownTimeout bounds the status server shutdown.
	// Default: 10s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SHUTDOWN_TIMEOUT"`
}

// TelemetryConfig contains configuration for observability.
type TelemetryConfig struct {
	Logging LoggingConfig `yaml:"logging" envPrefix:"LOGGING_"`
	Metrics MetricsConfig `yaml:"metrics" envPrefix:"METRICS_"`
	Tracing TracingConfig `yaml:"tracing" envPrefix:"TRACING_"`
}

// LoggingConfig configures structured logging.
type LoggingConfig struct {
	// Level: "debug", "info", "warn" or "error".
	// Default: "info"
	Level string `yaml:"level" env:"LEVEL"`

	// Format: "json", "text" or "console".
	// Default: "text"
	Format string `yaml:"format" env:"FORMAT"`

	// AddSource includes file:line in log records.
	AddSource bool `yaml:"add_source" env:"ADD_SOURCE"`
}

// MetricsConfig configures Prometheus metrics.
type MetricsConfig struct {
	// Namespace prefixes every metric name.
	// Default: "mapcheck"
	Namespace string `yaml:"namespace" env:"NAMESPACE"`

	// TextfilePath, when set, receives the metrics after each run in the
	// node_exporter textfile format.
	TextfilePath string `yaml:"textfile_path" env:"TEXTFILE_PATH"`
}

// TracingConfig configures OpenTelemetry tracing.
type TracingConfig struct {
	// Enabled turns on span export.
	// Default: false
	Enabled bool `yaml:"enabled" env:"ENABLED"`

	// Endpoint is the OTLP/gRPC collector address.
	// Default: "localhost:4317"
	Endpoint string `yaml:"endpoint" env:"ENDPOINT"`

	// ServiceName is reported as service.name.
	// Default: "mapcheck"
	ServiceName string `yaml:"service_name" env:"SERVICE_NAME"`

	// SampleRatio is the fraction of runs traced, 0.0 to 1.0.
	// Default: 1.0
	SampleRatio float64 `yaml:"sample_ratio" env:"SAMPLE_RATIO"`

	// Insecure disables TLS to the collector.
	Insecure bool `yaml:"insecure" env:"INSECURE"`

	// Timeout bounds each export.
	// Default: 10s
	Timeout time.Duration `yaml:"timeout" env:"TIMEOUT"`
}
