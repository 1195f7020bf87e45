// Package export writes stored runs in interchange formats.
//
// # Formats
//
//   - JSON: an array of runs with their rule records, optionally indented
//   - CSV: one row per rule record, with the run's columns repeated
//
// The CSV layout suits spreadsheets and ad hoc analysis of which rules fail
// most often:
//
//	exporter := export.NewCSVExporter(true)
//	f, _ := os.Create("runs.csv")
//	defer f.Close()
//	if err := exporter.Export(ctx, runs, f); err != nil {
//	    log.Fatal(err)
//	}
//
// ExportStream consumes a channel instead of a slice so large histories
// can be written page by page.
//
// Failures are returned as *history.ExportError.
package export
