package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"maps-workflow/mapcheck/pkg/cli"
	"maps-workflow/mapcheck/pkg/engine"
	"maps-workflow/mapcheck/pkg/rules/builtin"
)

var lintFlags struct {
	strict bool
	format string
}

var lintCmd = &cobra.Command{
	Use:   "lint",
	Short: "Check the rule set without a map",
	Long: `Check the rule declarations for problems without validating a map.

Errors:
  - declarations with missing or invalid fields
  - modules or classes that do not exist

Warnings:
  - rule names declared more than once
  - dependencies on names that are never declared
  - dependencies on the rule itself or on a rule declared later

Examples:
  # Lint ./map_rules
  mapcheck lint

  # Lint another directory and fail on warnings too
  mapcheck lint --rules ../rules --strict

  # JSON output for CI/CD
  mapcheck lint --format json`,
	RunE: lintRules,
}

func init() {
	rootCmd.AddCommand(lintCmd)

	lintCmd.Flags().BoolVar(&lintFlags.strict, "strict", false, "treat warnings as errors")
	lintCmd.Flags().StringVarP(&lintFlags.format, "format", "f", "text", "output format: text, json, yaml")
}

// LintReport is the output of the lint command.
type LintReport struct {
	Rules    int              `json:"rules" yaml:"rules"`
	Errors   int              `json:"errors" yaml:"errors"`
	Warnings int              `json:"warnings" yaml:"warnings"`
	Findings []engine.Finding `json:"findings" yaml:"findings"`
}

func newLintReport(rules int, findings []engine.Finding) *LintReport {
	r := &LintReport{Rules: rules, Findings: findings}
	if r.Findings == nil {
		r.Findings = []engine.Finding{}
	}
	for _, f := range findings {
		if f.Severity == engine.SeverityError {
			r.Errors++
		} else {
			r.Warnings++
		}
	}
	return r
}

// Failed reports whether the report should fail the command.
func (r *LintReport) Failed(strict bool) bool {
	return r.Errors > 0 || (strict && r.Warnings > 0)
}

func (r *LintReport) WriteText(w io.Writer) error {
	for _, f := range r.Findings {
		if _, err := fmt.Fprintln(w, f.String()); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "%d rules, %d errors, %d warnings\n", r.Rules, r.Errors, r.Warnings)
	return err
}

func lintRules(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseFormat(lintFlags.format)
	if err != nil {
		return cli.Exit(cli.ExitUsage, err)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, err := setupLogger(cfg)
	if err != nil {
		return err
	}

	dir, _, err := openRuleSource(commandContext(cmd), cfg, logger)
	if err != nil {
		return err
	}
	entries, err := loadEntries(cfg, dir, cfg.Rules.Exclude)
	if err != nil {
		return err
	}

	rep := newLintReport(len(entries), engine.Lint(builtin.NewRegistry(), entries))
	if err := cli.NewFormatter(format).FormatTo(cmd.OutOrStdout(), rep); err != nil {
		return cli.NewCommandError("lint", err)
	}

	if rep.Failed(lintFlags.strict) {
		return cli.Exit(cli.ExitFailure, nil)
	}
	return nil
}
