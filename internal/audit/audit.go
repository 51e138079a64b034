// Package audit writes and reads the per-file processing log. One row is
// appended per file attempt, whatever the outcome, so the log is the
// authoritative record of what was loaded, partially loaded, or rejected.
package audit

import (
	"context"
	"fmt"
	"time"

	"landingzone/internal/schema"
	"landingzone/internal/storage"
)

// Status classifies the outcome of one file-processing attempt.
type Status string

const (
	// StatusSuccess: every data row landed.
	StatusSuccess Status = "Success"
	// StatusPartialSuccess: clean rows landed, dirty rows were rejected.
	StatusPartialSuccess Status = "PartialSuccess"
	// StatusFailed: nothing landed (unreadable file, no route, load error).
	StatusFailed Status = "Failed"
)

// StatusFor derives the status from row counts. A file with zero data rows
// counts as Success: there was nothing to reject.
func StatusFor(cleanRows, dirtyRows int) Status {
	switch {
	case dirtyRows == 0:
		return StatusSuccess
	case cleanRows > 0:
		return StatusPartialSuccess
	default:
		return StatusFailed
	}
}

// Entry is one processing-log row.
type Entry struct {
	LogID        int64
	FileName     string
	FolderPath   string
	TargetTable  string
	OriginalRows int
	CleanRows    int
	DirtyRows    int
	Status       Status
	ProcessedAt  time.Time
}

// Log appends to and reads from the ProcessingLog table.
type Log struct {
	repo storage.Repository
}

// NewLog returns a Log backed by repo.
func NewLog(repo storage.Repository) *Log {
	return &Log{repo: repo}
}

// Append inserts one log row. ProcessedAt is left to the column default so
// the database clock, not the process clock, timestamps the attempt.
func (l *Log) Append(ctx context.Context, e Entry) error {
	q := fmt.Sprintf(
		"INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s) VALUES (?, ?, ?, ?, ?, ?, ?)",
		l.repo.QuoteIdent(schema.TableProcessingLog),
		l.repo.QuoteIdent("FileName"),
		l.repo.QuoteIdent("FolderPath"),
		l.repo.QuoteIdent("TargetTable"),
		l.repo.QuoteIdent("OriginalRows"),
		l.repo.QuoteIdent("CleanRows"),
		l.repo.QuoteIdent("DirtyRows"),
		l.repo.QuoteIdent("Status"),
	)
	err := l.repo.Exec(ctx, q,
		e.FileName, e.FolderPath, e.TargetTable,
		e.OriginalRows, e.CleanRows, e.DirtyRows,
		string(e.Status),
	)
	if err != nil {
		return fmt.Errorf("append processing log for %s: %w", e.FileName, err)
	}
	return nil
}

// Recent returns up to limit log rows, newest first.
func (l *Log) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 50
	}
	q := fmt.Sprintf(
		"SELECT %s, %s, %s, %s, %s, %s, %s, %s, %s FROM %s ORDER BY %s DESC",
		l.repo.QuoteIdent("LogID"),
		l.repo.QuoteIdent("FileName"),
		l.repo.QuoteIdent("FolderPath"),
		l.repo.QuoteIdent("TargetTable"),
		l.repo.QuoteIdent("OriginalRows"),
		l.repo.QuoteIdent("CleanRows"),
		l.repo.QuoteIdent("DirtyRows"),
		l.repo.QuoteIdent("Status"),
		l.repo.QuoteIdent("ProcessedAt"),
		l.repo.QuoteIdent(schema.TableProcessingLog),
		l.repo.QuoteIdent("LogID"),
	)
	rows, err := l.repo.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("read processing log: %w", err)
	}
	if len(rows) > limit {
		rows = rows[:limit]
	}

	out := make([]Entry, 0, len(rows))
	for _, row := range rows {
		if len(row) < 9 {
			return nil, fmt.Errorf("read processing log: short row, got %d columns", len(row))
		}
		e := Entry{
			LogID:       storage.AsInt64(row[0]),
			FileName:    storage.AsString(row[1]),
			FolderPath:  storage.AsString(row[2]),
			TargetTable: storage.AsString(row[3]),
			Status:      Status(storage.AsString(row[7])),
		}
		e.OriginalRows = int(storage.AsInt64(row[4]))
		e.CleanRows = int(storage.AsInt64(row[5]))
		e.DirtyRows = int(storage.AsInt64(row[6]))
		e.ProcessedAt = storage.AsTime(row[8])
		out = append(out, e)
	}
	return out, nil
}
