package main

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile   string
	rulesDir  string
	logLevel  string
	logFormat string
)

var rootCmd = &cobra.Command{
	Use:   "mapcheck",
	Short: "mapcheck - rule-based validation for game map files",
	Long: `mapcheck validates map files against an ordered set of rules declared in
YAML files.

Every rule names a built-in check (module and class), its parameters, a
severity policy and the rules it depends on:

  rules:
    - name: size
      module: filesize
      class_name: MaxFileSize
      type: require
      params:
        max_bytes: 2097152
    - name: version
      module: datafile
      class_name: Version
      type: fail
      depends_on: [size]

Policies:
  require  a violation or error aborts the run and fails the command
  fail     a violation or error is reported, the run continues
  skip     a violation or error is noted, the run continues

Configuration is read from --config (default ./mapcheck.yaml when present)
and MAPCHECK_* environment variables. Flags override both.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path (default ./mapcheck.yaml if present)")
	rootCmd.PersistentFlags().StringVarP(&rulesDir, "rules", "r", "", "rule declaration directory (overrides rules.dir)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format: text, json, console")
}
