// Package xlsx implements a spreadsheet row source backed by excelize.
// Only the first sheet is read; spreadsheet drops route through the same
// folder-to-table pipeline as CSV files.
package xlsx

import (
	"context"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"landingzone/internal/parser"
)

// Options configures the XLSX reader.
type Options struct {
	// HasHeader skips the first sheet row. Row numbering still counts it.
	HasHeader bool
}

// Stream reads rows from the first sheet of an XLSX document. excelize needs
// random access, so the source is fully read into memory before parsing;
// spreadsheet drops are expected to be far smaller than CSV extracts.
func Stream(opt Options) parser.StreamFunc {
	return func(ctx context.Context, src io.Reader, out chan<- parser.RawRow, onErr func(line int, err error)) error {
		f, err := excelize.OpenReader(src)
		if err != nil {
			return fmt.Errorf("open xlsx: %w", err)
		}
		defer f.Close()

		sheet := f.GetSheetName(0)
		if sheet == "" {
			return fmt.Errorf("xlsx: workbook has no sheets")
		}

		rows, err := f.Rows(sheet)
		if err != nil {
			return fmt.Errorf("xlsx: open sheet %q: %w", sheet, err)
		}
		defer rows.Close()

		line := 0
		for rows.Next() {
			line++
			cells, err := rows.Columns()
			if err != nil {
				if onErr != nil {
					onErr(line, err)
				}
				continue
			}
			if opt.HasHeader && line == 1 {
				continue
			}

			select {
			case out <- parser.RawRow{Line: line, Cells: cells}:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		return rows.Error()
	}
}
