// Package csv implements a streaming CSV row source. It never buffers the
// whole file, tolerates real-world quoting damage via lazy mode, and
// soft-fails malformed rows so one bad line does not abort a load.
package csv

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"landingzone/internal/parser"
)

// utf8BOM is stripped from the first cell of the first row if present.
const utf8BOM = "\uFEFF"

// Options configures the CSV reader. Zero values give sensible defaults.
type Options struct {
	// HasHeader skips the first row. Data row numbering still counts it.
	HasHeader bool

	// Comma is the field delimiter; ',' when zero.
	Comma rune

	// LazyQuotes relaxes quote handling for damaged exports.
	LazyQuotes bool

	// TrimSpace trims leading/trailing ASCII whitespace from each cell.
	TrimSpace bool
}

// Stream reads CSV rows from src and sends them to out. Malformed rows are
// reported via onErr and skipped. Variable field counts are allowed; the
// ingester fits rows to the target table width.
func Stream(opt Options) parser.StreamFunc {
	return func(ctx context.Context, src io.Reader, out chan<- parser.RawRow, onErr func(line int, err error)) error {
		cr := csv.NewReader(src)
		cr.ReuseRecord = true
		cr.FieldsPerRecord = -1
		cr.LazyQuotes = opt.LazyQuotes
		if opt.Comma != 0 {
			cr.Comma = opt.Comma
		}

		line := 0
		if opt.HasHeader {
			line++
			if _, err := cr.Read(); err != nil {
				if err == io.EOF {
					return nil
				}
				return fmt.Errorf("read csv header: %w", err)
			}
		}

		for {
			rec, err := cr.Read()
			line++
			if err == io.EOF {
				return nil
			}
			if err != nil {
				if onErr != nil {
					onErr(line, err)
				}
				continue
			}

			cells := make([]string, len(rec))
			for i, v := range rec {
				if line == 1 && i == 0 {
					v = strings.TrimPrefix(v, utf8BOM)
				}
				if opt.TrimSpace {
					v = strings.TrimSpace(v)
				}
				cells[i] = v
			}

			select {
			case out <- parser.RawRow{Line: line, Cells: cells}:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
}
