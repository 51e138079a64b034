// Package parser defines the row stream contract shared by the concrete file
// parsers (CSV, XLSX). Parsers emit raw string cells; cleaning and width
// fitting happen downstream in the ingester.
package parser

import (
	"context"
	"io"
)

// RawRow is one data row read from a source file. Line is the 1-based line
// (or sheet row) number including the header, for user-facing diagnostics.
type RawRow struct {
	Line  int
	Cells []string
}

// StreamFunc reads rows from src and sends them to out until EOF or ctx
// cancellation. Recoverable per-row failures are reported through onErr and
// skipped; only unrecoverable failures return an error. Implementations must
// not close out.
type StreamFunc func(ctx context.Context, src io.Reader, out chan<- RawRow, onErr func(line int, err error)) error
