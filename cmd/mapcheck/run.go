package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"maps-workflow/mapcheck/pkg/cli"
	"maps-workflow/mapcheck/pkg/report"
)

var runFlags struct {
	mapPath     string
	skip        string
	ci          bool
	format      string
	metricsFile string
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Validate a map against the rule set",
	Long: `Validate a map against every rule declared in the rules directory.

Rules run one at a time in declaration order. A failing rule with the
"require" policy stops the run and the command exits with status 1.
Failing "fail" and "skip" rules are reported but the run continues.

Examples:
  # Validate a map with the rules in ./map_rules
  mapcheck run --map maps/ctf_dust.map

  # Leave out the declaration files starting with 90- or 91-
  mapcheck run --map maps/ctf_dust.map --skip 90-,91-

  # Inside a GitHub Actions job ($INPUT_MAP names the map)
  mapcheck run --ci

  # Print the run summary as JSON
  mapcheck run --map maps/ctf_dust.map --format json`,
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runFlags.mapPath, "map", "m", "", "map file to validate (default $INPUT_MAP)")
	runCmd.Flags().StringVar(&runFlags.skip, "skip", "", "comma separated declaration file prefixes to leave out")
	runCmd.Flags().BoolVar(&runFlags.ci, "ci", false, "emit GitHub Actions workflow commands")
	runCmd.Flags().StringVarP(&runFlags.format, "format", "f", "text", "summary format (text, json, yaml)")
	runCmd.Flags().StringVar(&runFlags.metricsFile, "metrics-file", "", "write metrics in textfile format to this path")
}

func runCheck(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseFormat(runFlags.format)
	if err != nil {
		return cli.Exit(cli.ExitUsage, err)
	}
	mapPath, err := resolveMapPath(runFlags.mapPath)
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if runFlags.ci {
		cfg.CI = true
	}
	if runFlags.metricsFile != "" {
		cfg.Telemetry.Metrics.TextfilePath = runFlags.metricsFile
	}

	logger, err := setupLogger(cfg)
	if err != nil {
		return err
	}

	ctx := commandContext(cmd)

	dir, _, err := openRuleSource(ctx, cfg, logger)
	if err != nil {
		return err
	}
	entries, err := loadEntries(cfg, dir, excludePrefixes(cfg, splitSkip(runFlags.skip)))
	if err != nil {
		return err
	}

	r, err := newRunner(cfg, logger)
	if err != nil {
		return cli.Exit(cli.ExitUsage, err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := r.Close(shutdownCtx); err != nil {
			logger.Warn("Shutdown incomplete", "error", err)
		}
	}()

	if cfg.CI {
		r.addReporter(report.NewGitHubReporter(cmd.OutOrStdout()))
	}

	result, err := r.Run(ctx, mapPath, entries)
	if err != nil {
		return cli.Exit(cli.ExitUsage, fmt.Errorf("failed to read map: %w", err))
	}

	if err := cli.NewFormatter(format).FormatTo(cmd.OutOrStdout(), report.NewSummary(result)); err != nil {
		return cli.NewCommandError("run", err)
	}

	if !result.Success() {
		logger.Error("❌ Workflow failed due to required rule failure.", "rule", result.AbortedBy)
		return cli.Exit(cli.ExitFailure, nil)
	}
	logger.Info("✅ Workflow completed successfully.")
	return nil
}

// splitSkip turns "a,b" into its non-empty, trimmed parts.
func splitSkip(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
