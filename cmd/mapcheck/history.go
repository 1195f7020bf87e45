package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"maps-workflow/mapcheck/pkg/cli"
	"maps-workflow/mapcheck/pkg/config"
	"maps-workflow/mapcheck/pkg/history"
	"maps-workflow/mapcheck/pkg/history/export"
	"maps-workflow/mapcheck/pkg/history/retention"
	"maps-workflow/mapcheck/pkg/history/storage"
)

var historyFlags struct {
	limit      int
	offset     int
	mapPath    string
	outcome    string
	since      time.Duration
	format     string
	days       int
	maxRecords int64
}

var exportFlags struct {
	mapPath string
	outcome string
	since   time.Duration
	limit   int
	format  string
	output  string
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect and maintain stored runs",
	Long: `Inspect and maintain the run history.

Runs are recorded when history.enabled is true. The backend is selected
by history.backend (memory, sqlite or postgres).`,
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored runs, newest first",
	Long: `List stored runs, newest first.

Examples:
  # The last 20 runs
  mapcheck history list --limit 20

  # Aborted runs of one map during the last day
  mapcheck history list --map maps/ctf_dust.map --outcome aborted --since 24h

  # JSON output
  mapcheck history list --format json`,
	RunE: listHistory,
}

var historyPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete runs outside the retention policy",
	Long: `Delete runs that are older than the retention period or exceed the
record limit. Flags override history.retention.

Examples:
  # Apply the configured policy
  mapcheck history prune

  # Keep one week and at most 500 runs
  mapcheck history prune --days 7 --max-records 500`,
	RunE: pruneHistory,
}

var historyExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export stored runs as CSV or JSON",
	Long: `Export stored runs with their rule records. CSV output has one row
per rule record; JSON output is an array of runs.

Examples:
  # Every run as CSV
  mapcheck history export --format csv --output runs.csv

  # Aborted runs of the last week as JSON
  mapcheck history export --format json --outcome aborted --since 168h`,
	RunE: exportHistory,
}

var historyMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the PostgreSQL schema migrations",
	Long: `Apply every pending schema migration to the PostgreSQL history
database and print the resulting schema version.`,
	RunE: migrateHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.AddCommand(historyListCmd, historyPruneCmd, historyExportCmd, historyMigrateCmd)

	historyListCmd.Flags().IntVar(&historyFlags.limit, "limit", history.DefaultLimit, "max results")
	historyListCmd.Flags().IntVar(&historyFlags.offset, "offset", 0, "pagination offset")
	historyListCmd.Flags().StringVarP(&historyFlags.mapPath, "map", "m", "", "filter by map path")
	historyListCmd.Flags().StringVar(&historyFlags.outcome, "outcome", "", "filter by outcome (completed, aborted)")
	historyListCmd.Flags().DurationVar(&historyFlags.since, "since", 0, "only runs started within this duration")
	historyListCmd.Flags().StringVarP(&historyFlags.format, "format", "f", "text", "output format: text, json, yaml")

	historyExportCmd.Flags().StringVarP(&exportFlags.mapPath, "map", "m", "", "filter by map path")
	historyExportCmd.Flags().StringVar(&exportFlags.outcome, "outcome", "", "filter by outcome (completed, aborted)")
	historyExportCmd.Flags().DurationVar(&exportFlags.since, "since", 0, "only runs started within this duration")
	historyExportCmd.Flags().IntVar(&exportFlags.limit, "limit", 0, "max runs (0 = all)")
	historyExportCmd.Flags().StringVarP(&exportFlags.format, "format", "f", "csv", "export format: csv, json")
	historyExportCmd.Flags().StringVarP(&exportFlags.output, "output", "o", "", "output file (default: stdout)")

	historyPruneCmd.Flags().IntVar(&historyFlags.days, "days", 0, "retention period in days (overrides config)")
	historyPruneCmd.Flags().Int64Var(&historyFlags.maxRecords, "max-records", 0, "max stored runs (overrides config)")
}

// openHistory loads the configuration and opens the history store.
func openHistory() (*config.Config, history.Store, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	if _, err := setupLogger(cfg); err != nil {
		return nil, nil, err
	}
	if !cfg.History.Enabled {
		return nil, nil, cli.Exit(cli.ExitUsage, cli.NewConfigError("history.enabled", "history is disabled"))
	}
	store, err := storage.Open(cfg.History)
	if err != nil {
		return nil, nil, cli.Exit(cli.ExitUsage, err)
	}
	return cfg, store, nil
}

// runList renders stored runs as a table.
type runList []*history.Run

func (l runList) WriteText(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "STARTED\tRUN ID\tMAP\tOUTCOME\tPASSED\tDURATION")
	for _, run := range l {
		outcome := run.Outcome
		if run.AbortedBy != "" {
			outcome = fmt.Sprintf("%s (%s)", run.Outcome, run.AbortedBy)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d/%d\t%s\n",
			run.StartedAt.Local().Format(time.DateTime),
			run.ID,
			run.MapPath,
			outcome,
			run.Passed(), len(run.Rules),
			run.Duration.Round(time.Millisecond),
		)
	}
	return tw.Flush()
}

func listHistory(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseFormat(historyFlags.format)
	if err != nil {
		return cli.Exit(cli.ExitUsage, err)
	}

	query := &history.Query{
		MapPath: historyFlags.mapPath,
		Outcome: historyFlags.outcome,
		Limit:   historyFlags.limit,
		Offset:  historyFlags.offset,
	}
	if historyFlags.since > 0 {
		since := time.Now().Add(-historyFlags.since)
		query.Since = &since
	}
	if err := query.Validate(); err != nil {
		return cli.Exit(cli.ExitUsage, err)
	}

	_, store, err := openHistory()
	if err != nil {
		return err
	}
	defer store.Close()

	runs, err := store.List(commandContext(cmd), query)
	if err != nil {
		return cli.NewCommandError("history list", err)
	}
	if runs == nil {
		runs = []*history.Run{}
	}
	return cli.NewFormatter(format).FormatTo(cmd.OutOrStdout(), runList(runs))
}

func exportHistory(cmd *cobra.Command, args []string) error {
	exporter, err := export.New(exportFlags.format)
	if err != nil {
		return cli.Exit(cli.ExitUsage, cli.NewConfigError("format", err.Error()))
	}

	query := history.Query{
		MapPath: exportFlags.mapPath,
		Outcome: exportFlags.outcome,
	}
	if exportFlags.since > 0 {
		since := time.Now().Add(-exportFlags.since)
		query.Since = &since
	}
	if err := query.Validate(); err != nil {
		return cli.Exit(cli.ExitUsage, err)
	}
	if exportFlags.limit < 0 {
		return cli.Exit(cli.ExitUsage, cli.NewConfigError("limit", "must not be negative"))
	}
	query.Limit = exportFlags.limit

	_, store, err := openHistory()
	if err != nil {
		return err
	}
	defer store.Close()

	out := cmd.OutOrStdout()
	if exportFlags.output != "" {
		f, err := os.Create(exportFlags.output)
		if err != nil {
			return cli.NewCommandError("history export", err)
		}
		defer f.Close()
		out = f
	}

	ctx, cancel := context.WithCancel(commandContext(cmd))
	defer cancel()

	runs, errs := export.Stream(ctx, store, query, history.DefaultLimit)
	if err := exporter.ExportStream(ctx, runs, out); err != nil {
		return cli.NewCommandError("history export", err)
	}
	if err := <-errs; err != nil {
		return cli.NewCommandError("history export", err)
	}
	return nil
}

func pruneHistory(cmd *cobra.Command, args []string) error {
	cfg, store, err := openHistory()
	if err != nil {
		return err
	}
	defer store.Close()

	rc := retention.ConfigFrom(cfg.History.Retention)
	if historyFlags.days > 0 {
		rc.RetentionDays = historyFlags.days
	}
	if historyFlags.maxRecords > 0 {
		rc.MaxRecords = historyFlags.maxRecords
	}

	deleted, err := retention.NewPruner(store, rc).Prune(commandContext(cmd))
	if err != nil {
		return cli.NewCommandError("history prune", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d runs\n", deleted)
	return nil
}

func migrateHistory(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if _, err := setupLogger(cfg); err != nil {
		return err
	}
	if cfg.History.Backend != storage.BackendPostgres {
		return cli.Exit(cli.ExitUsage, cli.NewConfigError("history.backend",
			fmt.Sprintf("migrations apply to %q only, got %q", storage.BackendPostgres, cfg.History.Backend)))
	}

	mg, err := storage.NewMigrator(storage.PostgresConfigFrom(cfg.History.Postgres).DSN())
	if err != nil {
		return cli.NewCommandError("history migrate", err)
	}
	defer mg.Close()

	if err := mg.Up(); err != nil {
		return cli.NewCommandError("history migrate", err)
	}
	version, dirty, err := mg.Version()
	if err != nil {
		return cli.NewCommandError("history migrate", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Schema version %d (dirty: %t)\n", version, dirty)
	return nil
}
