package export

import (
	"context"
	"encoding/json"
	"io"

	"maps-workflow/mapcheck/pkg/history"
)

// JSONExporter exports runs as a JSON array.
type JSONExporter struct {
	// Pretty enables indentation.
	Pretty bool
}

// NewJSONExporter creates a new JSON exporter.
func NewJSONExporter(pretty bool) *JSONExporter {
	return &JSONExporter{Pretty: pretty}
}

// Export writes runs to w. An empty slice is written as [].
func (e *JSONExporter) Export(ctx context.Context, runs []*history.Run, w io.Writer) error {
	if runs == nil {
		runs = []*history.Run{}
	}

	var data []byte
	var err error
	if e.Pretty {
		data, err = json.MarshalIndent(runs, "", "  ")
	} else {
		data, err = json.Marshal(runs)
	}
	if err != nil {
		return history.NewExportError("json", len(runs), err)
	}

	if _, err := w.Write(append(data, '\n')); err != nil {
		return history.NewExportError("json", len(runs), err)
	}
	return nil
}

// ExportStream writes runs from the channel as one JSON array without
// holding them all in memory.
func (e *JSONExporter) ExportStream(ctx context.Context, runs <-chan *history.Run, w io.Writer) error {
	if _, err := io.WriteString(w, "["); err != nil {
		return history.NewExportError("json", 0, err)
	}

	count := 0
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case run, ok := <-runs:
			if !ok {
				closing := "]\n"
				if e.Pretty && count > 0 {
					closing = "\n]\n"
				}
				if _, err := io.WriteString(w, closing); err != nil {
					return history.NewExportError("json", count, err)
				}
				return nil
			}

			sep := ","
			if count == 0 {
				sep = ""
			}
			if e.Pretty {
				sep += "\n  "
			}
			if _, err := io.WriteString(w, sep); err != nil {
				return history.NewExportError("json", count, err)
			}

			data, err := e.serialize(run)
			if err != nil {
				return history.NewExportError("json", count, err)
			}
			if _, err := w.Write(data); err != nil {
				return history.NewExportError("json", count, err)
			}
			count++
		}
	}
}

func (e *JSONExporter) serialize(run *history.Run) ([]byte, error) {
	if e.Pretty {
		return json.MarshalIndent(run, "  ", "  ")
	}
	return json.Marshal(run)
}
