package config

import "time"

// Default values for configuration fields.
const (
	// Rules defaults
	DefaultRulesDir        = "map_rules"
	DefaultRulesMaxFile    = int64(1024 * 1024)
	DefaultGitBranch       = "main"
	DefaultGitDepth        = 1
	DefaultGitTimeout      = 60 * time.Second
	DefaultGitPollInterval = 60 * time.Second
	DefaultGitAuthType     = "none"
	DefaultHistoryBackend  = "sqlite"
	DefaultSQLitePath      = "data/history.db"
	DefaultSQLiteDriver    = "sqlite3"
	DefaultSQLiteBusy      = 5 * time.Second
	DefaultPostgresPort    = 5432
	DefaultPostgresSSLMode = "require"

	// Retention defaults
	DefaultRetentionDays     = 90
	DefaultRetentionSchedule = "0 3 * * *"

	// Watch defaults
	DefaultWatchDebounce        = 100 * time.Millisecond
	DefaultWatchShutdownTimeout = 10 * time.Second

	// Telemetry defaults
	DefaultLoggingLevel       = "info"
	DefaultLoggingFormat      = "text"
	DefaultMetricsNamespace   = "mapcheck"
	DefaultTracingEndpoint    = "localhost:4317"
	DefaultTracingServiceName = "mapcheck"
	DefaultTracingSampleRatio = 1.0
	DefaultTracingTimeout     = 10 * time.Second
)

// DefaultRulesExtensions are the accepted declaration file extensions.
var DefaultRulesExtensions = []string{".yaml"}

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults sets defaults for any fields that have zero values.
// It is idempotent.
func ApplyDefaults(cfg *Config) {
	applyRulesDefaults(&cfg.Rules)
	applyHistoryDefaults(&cfg.History)

	if cfg.Watch.Debounce == 0 {
		cfg.Watch.Debounce = DefaultWatchDebounce
	}
	if cfg.Watch.ShutdownTimeout == 0 {
		cfg.Watch.ShutdownTimeout = DefaultWatchShutdownTimeout
	}

	if cfg.Telemetry.Logging.Level == "" {
		cfg.Telemetry.Logging.Level = DefaultLoggingLevel
	}
	if cfg.Telemetry.Logging.Format == "" {
		cfg.Telemetry.Logging.Format = DefaultLoggingFormat
	}
	if cfg.Telemetry.Metrics.Namespace == "" {
		cfg.Telemetry.Metrics.Namespace = DefaultMetricsNamespace
	}

	tr := &cfg.Telemetry.Tracing
	if tr.Endpoint == "" {
		tr.Endpoint = DefaultTracingEndpoint
	}
	if tr.ServiceName == "" {
		tr.ServiceName = DefaultTracingServiceName
	}
	if tr.SampleRatio == 0 {
		tr.SampleRatio = DefaultTracingSampleRatio
	}
	if tr.Timeout == 0 {
		tr.Timeout = DefaultTracingTimeout
	}
}

func applyRulesDefaults(cfg *RulesConfig) {
	if cfg.Dir == "" {
		cfg.Dir = DefaultRulesDir
	}
	if len(cfg.Extensions) == 0 {
		cfg.Extensions = append([]string(nil), DefaultRulesExtensions...)
	}
	if cfg.MaxFileSize == 0 {
		cfg.MaxFileSize = DefaultRulesMaxFile
	}
	if cfg.Git.Branch == "" {
		cfg.Git.Branch = DefaultGitBranch
	}
	if cfg.Git.Depth == 0 {
		cfg.Git.Depth = DefaultGitDepth
	}
	if cfg.Git.Timeout == 0 {
		cfg.Git.Timeout = DefaultGitTimeout
	}
	if cfg.Git.PollInterval == 0 {
		cfg.Git.PollInterval = DefaultGitPollInterval
	}
	if cfg.Git.Auth.Type == "" {
		cfg.Git.Auth.Type = DefaultGitAuthType
	}
}

func applyHistoryDefaults(cfg *HistoryConfig) {
	if cfg.Backend == "" {
		cfg.Backend = DefaultHistoryBackend
	}
	if cfg.SQLite.Path == "" {
		cfg.SQLite.Path = DefaultSQLitePath
	}
	if cfg.SQLite.Driver == "" {
		cfg.SQLite.Driver = DefaultSQLiteDriver
	}
	if cfg.SQLite.BusyTimeout == 0 {
		cfg.SQLite.BusyTimeout = DefaultSQLiteBusy
	}
	if cfg.Postgres.Port == 0 {
		cfg.Postgres.Port = DefaultPostgresPort
	}
	if cfg.Postgres.SSLMode == "" {
		cfg.Postgres.SSLMode = DefaultPostgresSSLMode
	}
	if cfg.Retention.Days == 0 {
		cfg.Retention.Days = DefaultRetentionDays
	}
	if cfg.Retention.Schedule == "" {
		cfg.Retention.Schedule = DefaultRetentionSchedule
	}
}
