// Package config provides configuration management for mapcheck.
//
// Configuration is read from an optional YAML file, completed with
// defaults, overridden from the environment and validated.
//
// # Configuration Loading
//
//	cfg, err := config.LoadConfigWithEnvOverrides("mapcheck.yaml")
//
// An empty path skips the file and starts from defaults.
//
// # Environment Variable Overrides
//
// Environment variables follow the naming convention MAPCHECK_SECTION_FIELD:
//
//   - MAPCHECK_RULES_DIR overrides rules.dir
//   - MAPCHECK_RULES_EXCLUDE overrides rules.exclude (comma separated)
//   - MAPCHECK_HISTORY_ENABLED overrides history.enabled
//   - MAPCHECK_TELEMETRY_LOGGING_LEVEL overrides telemetry.logging.level
//
// # Configuration Precedence
//
//  1. Default values (defaults.go)
//  2. Values from the YAML file
//  3. Environment variable overrides
//  4. Command line flags (applied by the caller)
//
// # Example Configuration
//
//	rules:
//	  dir: "map_rules"
//	  exclude: ["90-"]
//
//	history:
//	  enabled: true
//	  backend: "sqlite"
//	  sqlite:
//	    path: "data/history.db"
//
//	telemetry:
//	  logging:
//	    level: "info"
//	    format: "text"
package config
