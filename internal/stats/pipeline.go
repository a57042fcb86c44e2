package stats

import (
	"context"

	"github.com/rusenback/ssreport/internal/logfile"
)

// Run decodes src record by record and dispatches each one before
// reading the next. It returns nil when the stream ends cleanly.
func Run(ctx context.Context, src logfile.RecordSource, d *Dispatcher) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		res := src.Next()
		switch res.Kind {
		case logfile.ResultEnd:
			return nil
		case logfile.ResultError:
			return res.Err
		}

		if err := d.Dispatch(res.Record); err != nil {
			return err
		}
	}
}
