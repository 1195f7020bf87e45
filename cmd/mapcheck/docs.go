package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"maps-workflow/mapcheck/pkg/cli"
	"maps-workflow/mapcheck/pkg/engine"
	"maps-workflow/mapcheck/pkg/rules/builtin"
)

var docsFlags struct {
	format string
	output string
}

var docsCmd = &cobra.Command{
	Use:   "docs",
	Short: "Describe every rule in the rule set",
	Long: `Build every declared rule without a map and print its name,
description, explanation and whether it is required.

Declarations that are invalid or do not resolve are left out and logged
as warnings. No rule is evaluated.

Examples:
  # Print the rule documentation as JSON
  mapcheck docs

  # Write it to a file for the website
  mapcheck docs --output rules.json

  # Human readable listing
  mapcheck docs --format text`,
	RunE: runDocs,
}

func init() {
	rootCmd.AddCommand(docsCmd)

	docsCmd.Flags().StringVarP(&docsFlags.format, "format", "f", "json", "output format (text, json, yaml)")
	docsCmd.Flags().StringVarP(&docsFlags.output, "output", "o", "", "write to file instead of stdout")
}

// ruleDocs renders the documentation list as text.
type ruleDocs []engine.RuleDoc

func (d ruleDocs) WriteText(w io.Writer) error {
	for _, doc := range d {
		marker := " "
		if doc.Required {
			marker = "*"
		}
		if _, err := fmt.Fprintf(w, "%s %s\n", marker, doc.Name); err != nil {
			return err
		}
		if doc.Description != "" {
			fmt.Fprintf(w, "    %s\n", doc.Description)
		}
		if doc.Explanation != "" {
			fmt.Fprintf(w, "    %s\n", doc.Explanation)
		}
	}
	return nil
}

func runDocs(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseFormat(docsFlags.format)
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

	docs, omitted := engine.Document(builtin.NewRegistry(), entries)
	for _, o := range omitted {
		logger.Warn("Rule left out of documentation", "rule", o.Name, "source", o.Source.String(), "error", o.Err)
	}

	out := cmd.OutOrStdout()
	if docsFlags.output != "" {
		f, err := os.Create(docsFlags.output)
		if err != nil {
			return cli.NewCommandError("docs", err)
		}
		defer f.Close()
		out = f
	}

	// An empty list is printed as [] rather than null.
	if docs == nil {
		docs = []engine.RuleDoc{}
	}
	if err := cli.NewFormatter(format).FormatTo(out, ruleDocs(docs)); err != nil {
		return cli.NewCommandError("docs", err)
	}
	return nil
}
