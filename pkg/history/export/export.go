package export

import (
	"context"
	"fmt"
	"io"

	"maps-workflow/mapcheck/pkg/history"
)

// Exporter writes runs to w.
type Exporter interface {
	Export(ctx context.Context, runs []*history.Run, w io.Writer) error
	ExportStream(ctx context.Context, runs <-chan *history.Run, w io.Writer) error
}

// New returns the exporter for format ("csv" or "json").
func New(format string) (Exporter, error) {
	switch format {
	case "csv":
		return NewCSVExporter(true), nil
	case "json":
		return NewJSONExporter(true), nil
	default:
		return nil, fmt.Errorf("unsupported export format %q (must be csv or json)", format)
	}
}

// Stream pages through the runs matching query and sends them on the
// returned channel, newest first unless the query says otherwise. The
// error channel receives at most one error and is closed with the runs
// channel.
func Stream(ctx context.Context, store history.Store, query history.Query, pageSize int) (<-chan *history.Run, <-chan error) {
	runs := make(chan *history.Run)
	errs := make(chan error, 1)

	if pageSize <= 0 {
		pageSize = history.DefaultLimit
	}

	go func() {
		defer close(runs)
		defer close(errs)

		remaining := query.Limit
		q := query
		for {
			q.Limit = pageSize
			if remaining > 0 && remaining < pageSize {
				q.Limit = remaining
			}

			page, err := store.List(ctx, &q)
			if err != nil {
				errs <- err
				return
			}
			for _, run := range page {
				select {
				case runs <- run:
				case <-ctx.Done():
					errs <- ctx.Err()
					return
				}
			}

			if remaining > 0 {
				remaining -= len(page)
				if remaining <= 0 {
					return
				}
			}
			if len(page) < q.Limit {
				return
			}
			q.Offset += len(page)
		}
	}()

	return runs, errs
}
