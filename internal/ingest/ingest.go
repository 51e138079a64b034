// Package ingest executes the per-file landing pipeline: resolve the folder
// route, stream rows from the source file, clean them, fit them to the target
// table width, bulk-load the clean rows, and append exactly one processing-log
// entry recording the outcome.
//
// Concurrency model:
//
//	Reader (CSV/XLSX; 1)
//	     → N Cleaners (repair or reject, width-fit, positional rows)
//	     → Loader (bulk insert in batches)
//
// Back-pressure is enforced via bounded channels. Dirty rows are counted and
// reported but never landed; a fatal load error cancels upstream work.
package ingest

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"landingzone/internal/audit"
	"landingzone/internal/cleaner"
	"landingzone/internal/metrics"
	"landingzone/internal/parser"
	csvparser "landingzone/internal/parser/csv"
	xlsxparser "landingzone/internal/parser/xlsx"
	"landingzone/internal/routing"
	"landingzone/internal/schema"
	"landingzone/internal/storage"
)

// Options configures a run. Zero values get sensible defaults.
type Options struct {
	// Job names the run in logs and metrics.
	Job string

	CleanWorkers  int
	BatchSize     int
	ChannelBuffer int

	CSV  csvparser.Options
	XLSX xlsxparser.Options
}

func (o Options) withDefaults() Options {
	if o.Job == "" {
		o.Job = "landingzone"
	}
	if o.CleanWorkers <= 0 {
		o.CleanWorkers = 4
	}
	if o.BatchSize <= 0 {
		o.BatchSize = 1000
	}
	if o.ChannelBuffer <= 0 {
		o.ChannelBuffer = 4096
	}
	return o
}

// Result summarizes one processed file.
type Result struct {
	RunID       string
	FileName    string
	FolderPath  string
	TargetTable string

	OriginalRows int
	CleanRows    int
	DirtyRows    int
	ParseErrors  int
	Inserted     int64

	Status  audit.Status
	Elapsed time.Duration
}

// Function variables used to introduce test seams.
var (
	openFileFn = func(path string) (*os.File, error) { return os.Open(path) }

	streamCSVFn  = csvparser.Stream
	streamXLSXFn = xlsxparser.Stream
)

// Ingester processes source files into landing tables.
type Ingester struct {
	repo   storage.Repository
	routes *routing.Resolver
	auditL *audit.Log
	clean  cleaner.Cleaner
	opt    Options
}

// New returns an Ingester. The cleaner truncates values to the landing column
// length so inserts never fail on length.
func New(repo storage.Repository, routes *routing.Resolver, auditLog *audit.Log, opt Options) *Ingester {
	return &Ingester{
		repo:   repo,
		routes: routes,
		auditL: auditLog,
		clean:  cleaner.Cleaner{MaxLen: schema.MaxValueLen},
		opt:    opt.withDefaults(),
	}
}

// ProcessFile runs the full pipeline for one file. folder is the
// FolderConfig key ("" for the root folder). Dirty rows do not make the
// call fail; only routing, read, and load errors do. One processing-log
// entry is appended whatever the outcome.
func (g *Ingester) ProcessFile(ctx context.Context, folder, path string) (Result, error) {
	start := time.Now()
	res := Result{
		RunID:      uuid.NewString(),
		FileName:   filepath.Base(path),
		FolderPath: folder,
		Status:     audit.StatusFailed,
	}

	route, err := g.routes.Resolve(folder)
	if err != nil {
		return g.finish(ctx, res, start, fmt.Errorf("resolve route: %w", err))
	}
	res.TargetTable = route.TargetTable

	columns, ok := schema.InsertColumns(route.TargetTable)
	if !ok {
		return g.finish(ctx, res, start,
			fmt.Errorf("route %q points at unknown landing table %q", folder, route.TargetTable))
	}
	width, _ := schema.ValueColumns(route.TargetTable)

	src, err := openFileFn(path)
	if err != nil {
		return g.finish(ctx, res, start, fmt.Errorf("open source: %w", err))
	}
	defer src.Close()

	stream, err := g.streamFor(path)
	if err != nil {
		return g.finish(ctx, res, start, err)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		mu       sync.Mutex
		report   = cleaner.NewFileReport()
		parseAgg = newErrAgg(3)
		inserted int64
	)

	rawCh := make(chan parser.RawRow, g.opt.ChannelBuffer)
	rowCh := make(chan []any, g.opt.ChannelBuffer)

	eg, ctx := errgroup.WithContext(ctx)

	// Reader: stream rows from the source file.
	eg.Go(func() error {
		defer close(rawCh)
		onParseErr := func(line int, err error) {
			parseAgg.add(fmt.Sprintf("line=%d: %v", line, err))
		}
		if err := stream(ctx, src, rawCh, onParseErr); err != nil {
			return fmt.Errorf("read %s: %w", res.FileName, err)
		}
		return nil
	})

	// Cleaners: repair or reject, then width-fit into positional rows.
	var wgClean sync.WaitGroup
	wgClean.Add(g.opt.CleanWorkers)
	for i := 0; i < g.opt.CleanWorkers; i++ {
		go func() {
			defer wgClean.Done()
			for raw := range rawCh {
				cells, issues := g.clean.CleanRow(raw.Cells)

				mu.Lock()
				if issues != nil {
					report.AddDirty(raw.Line, raw.Cells, issues)
					mu.Unlock()
					continue
				}
				report.AddClean()
				mu.Unlock()

				// Fit to table width: extra cells are dropped, missing cells
				// land as NULL. Row layout is SourceFile, Col1..ColN.
				row := make([]any, len(columns))
				row[0] = res.FileName
				for i := 0; i < width && i < len(cells); i++ {
					row[i+1] = cells[i]
				}

				select {
				case rowCh <- row:
				case <-ctx.Done():
					return
				}
			}
		}()
	}
	go func() {
		wgClean.Wait()
		close(rowCh)
	}()

	// Loader: batch and bulk-insert clean rows.
	eg.Go(func() error {
		n, err := storage.LoadBatches(ctx, columns, rowCh, g.opt.BatchSize,
			func(ctx context.Context, columns []string, rows [][]any) (int64, error) {
				return g.repo.CopyFrom(ctx, route.TargetTable, columns, rows)
			})
		inserted = n
		if err != nil {
			return fmt.Errorf("load %s into %s: %w", res.FileName, route.TargetTable, err)
		}
		return nil
	})

	runErr := eg.Wait()

	// Unparseable lines are rows we could not land; count them as dirty.
	res.ParseErrors = parseAgg.count
	res.OriginalRows = report.OriginalRows + parseAgg.count
	res.CleanRows = report.CleanRows
	res.DirtyRows = report.DirtyRows + parseAgg.count
	res.Inserted = inserted

	if runErr != nil {
		return g.finish(ctx, res, start, runErr)
	}
	res.Status = audit.StatusFor(res.CleanRows, res.DirtyRows)

	g.logDirtySummary(res, report, parseAgg)
	return g.finish(ctx, res, start, nil)
}

// finish appends the processing-log entry, records metrics, and emits the
// run summary line. The incoming error, if any, is returned unchanged.
func (g *Ingester) finish(ctx context.Context, res Result, start time.Time, runErr error) (Result, error) {
	res.Elapsed = time.Since(start)
	if runErr != nil {
		res.Status = audit.StatusFailed
	}

	entry := audit.Entry{
		FileName:     res.FileName,
		FolderPath:   res.FolderPath,
		TargetTable:  res.TargetTable,
		OriginalRows: res.OriginalRows,
		CleanRows:    res.CleanRows,
		DirtyRows:    res.DirtyRows,
		Status:       res.Status,
	}
	// The audit row must land even when the run context was canceled.
	if err := g.auditL.Append(context.WithoutCancel(ctx), entry); err != nil {
		log.Printf("run=%s: %v", res.RunID, err)
		if runErr == nil {
			runErr = err
		}
	}

	metrics.RecordFile(g.opt.Job, strings.ToLower(string(res.Status)), res.Elapsed)
	metrics.RecordRows(g.opt.Job, "original", int64(res.OriginalRows))
	metrics.RecordRows(g.opt.Job, "clean", int64(res.CleanRows))
	metrics.RecordRows(g.opt.Job, "dirty", int64(res.DirtyRows))
	metrics.RecordRows(g.opt.Job, "parse_errors", int64(res.ParseErrors))
	metrics.RecordRows(g.opt.Job, "inserted", res.Inserted)

	log.Printf(
		"run=%s file=%s folder=%q table=%s original=%d clean=%d dirty=%d inserted=%d status=%s elapsed=%s",
		res.RunID, res.FileName, res.FolderPath, res.TargetTable,
		res.OriginalRows, res.CleanRows, res.DirtyRows, res.Inserted,
		res.Status, res.Elapsed.Truncate(time.Millisecond),
	)
	if runErr != nil {
		log.Printf("run=%s file=%s failed: %v", res.RunID, res.FileName, runErr)
	}
	return res, runErr
}

// logDirtySummary prints aggregated parse errors and a sample of rejected
// rows. Only the first few messages are shown; counts cover everything.
func (g *Ingester) logDirtySummary(res Result, report *cleaner.FileReport, parseAgg *errAgg) {
	if parseAgg.count > 0 {
		log.Printf("run=%s parse errors: %d (showing first %d)", res.RunID, parseAgg.count, len(parseAgg.first))
		for i, s := range parseAgg.first {
			log.Printf("  #%03d: %s", i+1, s)
		}
	}
	if !report.HasDirtyRows() {
		return
	}
	log.Printf("run=%s dirty rows: %d (showing first %d)", res.RunID, report.DirtyRows, min(len(report.DirtyDetails), 3))
	for i, d := range report.DirtyDetails {
		if i >= 3 {
			break
		}
		for _, p := range d.Problems {
			kinds := make([]string, 0, len(p.Issues))
			for _, is := range p.Issues {
				kinds = append(kinds, string(is.Kind))
			}
			log.Printf("  row=%d col=%d issues=%s", d.RowNumber, p.Column, strings.Join(kinds, ","))
		}
	}
}

// streamFor selects a parser by file extension.
func (g *Ingester) streamFor(path string) (parser.StreamFunc, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".csv", ".txt":
		return streamCSVFn(g.opt.CSV), nil
	case ".xlsx":
		return streamXLSXFn(g.opt.XLSX), nil
	default:
		return nil, fmt.Errorf("unsupported file extension %q", ext)
	}
}

// errAgg aggregates error messages: full count, first N retained.
type errAgg struct {
	mu      sync.Mutex
	limit   int
	count   int
	first   []string
	buckets map[string]int
}

func newErrAgg(limit int) *errAgg {
	return &errAgg{limit: limit, buckets: make(map[string]int)}
}

func (a *errAgg) add(msg string) {
	a.mu.Lock()
	a.buckets[msg]++
	if a.count < a.limit {
		a.first = append(a.first, msg)
	}
	a.count++
	a.mu.Unlock()
}
