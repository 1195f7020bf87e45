package config

import (
	"fmt"
	"net"
	"strings"

	"github.com/robfig/cron/v3"
)

// FieldError represents a validation error for a specific configuration field.
type FieldError struct {
	// Field is the dotted path to the configuration field (e.g., "rules.dir").
	Field string

	// Message is a human-readable error message.
	Message string
}

// Error returns the error message for this field error.
func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError represents one or more validation errors in a configuration.
type ValidationError struct {
	// Errors contains all validation errors found in the configuration.
	Errors []FieldError
}

// Error returns a formatted string containing all validation errors.
func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "configuration validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration validation failed: %s", e.Errors[0].Error())
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("configuration validation failed with %d errors:\n", len(e.Errors)))
	for _, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  - %s\n", err.Error()))
	}
	return sb.String()
}

// Validate validates the entire configuration and returns a ValidationError
// listing every problem found. It returns nil if the configuration is valid.
func Validate(cfg *Config) error {
	var errs []FieldError

	errs = append(errs, validateRules(&cfg.Rules)...)
	errs = append(errs, validateHistory(&cfg.History)...)
	errs = append(errs, validateWatch(&cfg.Watch)...)
	errs = append(errs, validateTelemetry(&cfg.Telemetry)...)

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}
	return nil
}

func validateRules(cfg *RulesConfig) []FieldError {
	var errs []FieldError

	if cfg.Dir == "" && !cfg.Git.Enabled {
		errs = append(errs, FieldError{Field: "rules.dir", Message: "field is required"})
	}
	for i, ext := range cfg.Extensions {
		if !strings.HasPrefix(ext, ".") || len(ext) < 2 {
			errs = append(errs, FieldError{
				Field:   fmt.Sprintf("rules.extensions[%d]", i),
				Message: fmt.Sprintf("extension %q must start with a dot", ext),
			})
		}
	}
	if cfg.MaxFileSize <= 0 {
		errs = append(errs, FieldError{Field: "rules.max_file_size", Message: "must be positive"})
	}

	if cfg.Git.Enabled {
		errs = append(errs, validateGit(&cfg.Git)...)
	}
	return errs
}

func validateGit(cfg *GitConfig) []FieldError {
	var errs []FieldError

	if cfg.Repository == "" {
		errs = append(errs, FieldError{Field: "rules.git.repository", Message: "field is required when git is enabled"})
	}
	if cfg.Depth < 0 {
		errs = append(errs, FieldError{Field: "rules.git.depth", Message: "must not be negative"})
	}
	if cfg.Timeout <= 0 {
		errs = append(errs, FieldError{Field: "rules.git.timeout", Message: "must be positive"})
	}
	if cfg.PollInterval < 0 {
		errs = append(errs, FieldError{Field: "rules.git.poll_interval", Message: "must not be negative"})
	}

	switch cfg.Auth.Type {
	case "none":
	case "token":
		if cfg.Auth.Token == "" {
			errs = append(errs, FieldError{Field: "rules.git.auth.token", Message: "field is required for token authentication"})
		}
	case "ssh":
		if cfg.Auth.SSHKeyPath == "" {
			errs = append(errs, FieldError{Field: "rules.git.auth.ssh_key_path", Message: "field is required for ssh authentication"})
		}
	default:
		errs = append(errs, FieldError{
			Field:   "rules.git.auth.type",
			Message: fmt.Sprintf("invalid auth type %q (must be none, token or ssh)", cfg.Auth.Type),
		})
	}
	return errs
}

func validateHistory(cfg *HistoryConfig) []FieldError {
	var errs []FieldError

	switch cfg.Backend {
	case "memory":
	case "sqlite":
		if cfg.SQLite.Path == "" {
			errs = append(errs, FieldError{Field: "history.sqlite.path", Message: "field is required"})
		}
		if cfg.SQLite.Driver != "sqlite3" && cfg.SQLite.Driver != "sqlite" {
			errs = append(errs, FieldError{
				Field:   "history.sqlite.driver",
				Message: fmt.Sprintf("invalid driver %q (must be sqlite3 or sqlite)", cfg.SQLite.Driver),
			})
		}
		if cfg.SQLite.BusyTimeout < 0 {
			errs = append(errs, FieldError{Field: "history.sqlite.busy_timeout", Message: "must not be negative"})
		}
	case "postgres":
		pg := cfg.Postgres
		if pg.URL == "" {
			if pg.Host == "" {
				errs = append(errs, FieldError{Field: "history.postgres.host", Message: "field is required when url is not set"})
			}
			if pg.Database == "" {
				errs = append(errs, FieldError{Field: "history.postgres.database", Message: "field is required when url is not set"})
			}
		}
		if pg.Port < 1 || pg.Port > 65535 {
			errs = append(errs, FieldError{Field: "history.postgres.port", Message: "must be between 1 and 65535"})
		}
		switch pg.SSLMode {
		case "disable", "require", "verify-ca", "verify-full":
		default:
			errs = append(errs, FieldError{Field: "history.postgres.ssl_mode", Message: fmt.Sprintf("invalid ssl mode %q", pg.SSLMode)})
		}
	default:
		errs = append(errs, FieldError{
			Field:   "history.backend",
			Message: fmt.Sprintf("invalid backend %q (must be memory, sqlite or postgres)", cfg.Backend),
		})
	}

	if cfg.Retention.Days < 0 {
		errs = append(errs, FieldError{Field: "history.retention.days", Message: "must not be negative"})
	}
	if cfg.Retention.MaxRecords < 0 {
		errs = append(errs, FieldError{Field: "history.retention.max_records", Message: "must not be negative"})
	}
	if _, err := cron.ParseStandard(cfg.Retention.Schedule); err != nil {
		errs = append(errs, FieldError{Field: "history.retention.schedule", Message: fmt.Sprintf("invalid cron expression: %v", err)})
	}
	return errs
}

func validateWatch(cfg *WatchConfig) []FieldError {
	var errs []FieldError

	if cfg.Debounce <= 0 {
		errs = append(errs, FieldError{Field: "watch.debounce", Message: "must be positive"})
	}
	if cfg.ShutdownTimeout <= 0 {
		errs = append(errs, FieldError{Field: "watch.shutdown_timeout", Message: "must be positive"})
	}
	if cfg.Listen != "" {
		if _, _, err := net.SplitHostPort(cfg.Listen); err != nil {
			errs = append(errs, FieldError{Field: "watch.listen", Message: fmt.Sprintf("invalid address: %v", err)})
		}
	}
	return errs
}

func validateTelemetry(cfg *TelemetryConfig) []FieldError {
	var errs []FieldError

	switch strings.ToLower(cfg.Logging.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.level",
			Message: fmt.Sprintf("invalid level %q (must be debug, info, warn or error)", cfg.Logging.Level),
		})
	}
	switch strings.ToLower(cfg.Logging.Format) {
	case "json", "text", "console":
	default:
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.format",
			Message: fmt.Sprintf("invalid format %q (must be json, text or console)", cfg.Logging.Format),
		})
	}

	if cfg.Metrics.Namespace == "" {
		errs = append(errs, FieldError{Field: "telemetry.metrics.namespace", Message: "field is required"})
	}

	if cfg.Tracing.Enabled {
		if cfg.Tracing.Endpoint == "" {
			errs = append(errs, FieldError{Field: "telemetry.tracing.endpoint", Message: "field is required when tracing is enabled"})
		}
		if cfg.Tracing.SampleRatio < 0 || cfg.Tracing.SampleRatio > 1 {
			errs = append(errs, FieldError{Field: "telemetry.tracing.sample_ratio", Message: "must be between 0.0 and 1.0"})
		}
	}
	return errs
}
