package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"maps-workflow/mapcheck/pkg/history"
)

// CSVExporter exports runs to CSV, one row per rule record.
type CSVExporter struct {
	// IncludeHeader includes a header row with column names.
	IncludeHeader bool
}

// NewCSVExporter creates a new CSV exporter.
func NewCSVExporter(includeHeader bool) *CSVExporter {
	return &CSVExporter{IncludeHeader: includeHeader}
}

// Export writes runs to w. A run without rule records gets one row with
// empty rule columns.
func (e *CSVExporter) Export(ctx context.Context, runs []*history.Run, w io.Writer) error {
	ch := make(chan *history.Run, len(runs))
	for _, run := range runs {
		ch <- run
	}
	close(ch)
	return e.ExportStream(ctx, ch, w)
}

// ExportStream writes runs from the channel until it is closed.
func (e *CSVExporter) ExportStream(ctx context.Context, runs <-chan *history.Run, w io.Writer) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	if e.IncludeHeader {
		if err := writer.Write(header); err != nil {
			return history.NewExportError("csv", 0, err)
		}
	}

	count := 0
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case run, ok := <-runs:
			if !ok {
				writer.Flush()
				if err := writer.Error(); err != nil {
					return history.NewExportError("csv", count, err)
				}
				return nil
			}

			for _, row := range runRows(run) {
				if err := writer.Write(row); err != nil {
					return history.NewExportError("csv", count, err)
				}
			}
			count++

			if count%100 == 0 {
				writer.Flush()
				if err := writer.Error(); err != nil {
					return history.NewExportError("csv", count, err)
				}
			}
		}
	}
}

var header = []string{
	"run_id", "started_at", "map_path", "map_checksum", "outcome", "aborted_by", "run_duration_ms",
	"rule", "state", "policy", "violations", "error", "rule_elapsed_ms",
}

func runRows(run *history.Run) [][]string {
	base := []string{
		run.ID,
		run.StartedAt.UTC().Format(time.RFC3339Nano),
		run.MapPath,
		run.MapChecksum,
		run.Outcome,
		run.AbortedBy,
		fmt.Sprintf("%d", run.Duration.Milliseconds()),
	}

	if len(run.Rules) == 0 {
		return [][]string{append(base, "", "", "", "", "", "")}
	}

	rows := make([][]string, 0, len(run.Rules))
	for _, rule := range run.Rules {
		row := make([]string, 0, len(header))
		row = append(row, base...)
		row = append(row,
			rule.Name,
			rule.State,
			rule.Policy,
			strings.Join(rule.Violations, "\n"),
			rule.Error,
			fmt.Sprintf("%.3f", float64(rule.Elapsed.Microseconds())/1000),
		)
		rows = append(rows, row)
	}
	return rows
}
