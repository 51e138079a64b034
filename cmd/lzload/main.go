// Command lzload runs the landing-zone loader. It scans a drop directory,
// routes each file through FolderConfig, cleans and bulk-loads the rows, and
// appends one ProcessingLog entry per file. With -watch it keeps running and
// reacts to newly dropped files.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"landingzone/internal/audit"
	"landingzone/internal/config"
	"landingzone/internal/ingest"
	"landingzone/internal/metrics"
	"landingzone/internal/metrics/prompush"
	csvparser "landingzone/internal/parser/csv"
	xlsxparser "landingzone/internal/parser/xlsx"
	"landingzone/internal/routing"
	"landingzone/internal/schema"
	"landingzone/internal/storage"
	"landingzone/internal/watcher"
	"landingzone/internal/webui"

	// register all backends with the storage factory.
	_ "landingzone/internal/storage/all"
)

func main() {
	var (
		cfgPath        string
		validate       bool
		watch          bool
		httpAddr       string
		metricsBackend string
		pushgatewayURL string
	)
	flag.StringVar(&cfgPath, "config", "", "job config JSON path (env LZ_* also applies)")
	flag.BoolVar(&validate, "validate", false, "validate the configuration and exit")
	flag.BoolVar(&watch, "watch", false, "keep running and process files as they appear")
	flag.StringVar(&httpAddr, "http", "", "listen address for the read-only API (overrides config)")
	flag.StringVar(&metricsBackend, "metrics-backend", "", "metrics backend (prompush, none; overrides config)")
	flag.StringVar(&pushgatewayURL, "pushgateway-url", "", "Pushgateway base URL (overrides config)")
	verbose := flag.Bool("v", false, "enable verbose logs")
	flag.Parse()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		fatalf("%v", err)
	}
	if watch {
		cfg.Ingest.Watch = true
	}
	if httpAddr != "" {
		cfg.HTTP.Addr = httpAddr
	}
	if metricsBackend != "" {
		cfg.Metrics.Backend = metricsBackend
	}
	if pushgatewayURL != "" {
		cfg.Metrics.PushgatewayURL = pushgatewayURL
	}

	issues := config.Validate(cfg)
	for _, iss := range issues {
		fmt.Fprintf(os.Stderr, "%s: %s: %s\n", iss.Severity, iss.Path, iss.Message)
	}
	if config.HasErrors(issues) {
		fatalf("configuration is invalid")
	}
	if validate {
		log.Printf("configuration is valid")
		return
	}

	initMetrics(cfg, *verbose)
	defer func() {
		if err := metrics.Flush(); err != nil {
			log.Printf("metrics: flush error: %v", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repo, err := storage.New(ctx, storage.Config{
		Kind:   cfg.Storage.Kind,
		DSN:    cfg.Storage.DSN,
		Schema: cfg.Storage.Schema,
	})
	if err != nil {
		fatalf("open storage: %v", err)
	}
	defer repo.Close()

	if err := storage.EnsureTables(ctx, cfg.Storage.Kind, repo, schema.Tables()); err != nil {
		fatalf("create tables: %v", err)
	}
	if err := routing.Seed(ctx, repo); err != nil {
		fatalf("seed folder routes: %v", err)
	}

	routes := routing.NewResolver(repo)
	if err := routes.Reload(ctx); err != nil {
		fatalf("%v", err)
	}
	if *verbose {
		for _, rt := range routes.Routes() {
			log.Printf("route folder=%q table=%s active=%t", rt.FolderPath, rt.TargetTable, rt.Active)
		}
	}

	auditLog := audit.NewLog(repo)

	po := cfg.Ingest.ParserOptions
	ing := ingest.New(repo, routes, auditLog, ingest.Options{
		Job:           cfg.Job,
		CleanWorkers:  cfg.Runtime.CleanWorkers,
		BatchSize:     cfg.Runtime.BatchSize,
		ChannelBuffer: cfg.Runtime.ChannelBuffer,
		CSV: csvparser.Options{
			HasHeader:  po.Bool("has_header", true),
			Comma:      po.Rune("comma", ','),
			LazyQuotes: po.Bool("lazy_quotes", false),
			TrimSpace:  po.Bool("trim_space", true),
		},
		XLSX: xlsxparser.Options{
			HasHeader: po.Bool("has_header", true),
		},
	})
	w := watcher.New(cfg.Ingest.Root, ing, cfg.Runtime.ScanWorkers)

	if cfg.HTTP.Addr != "" {
		srv := &http.Server{
			Addr:    cfg.HTTP.Addr,
			Handler: webui.NewServer(auditLog, routes).Handler(),
		}
		go func() {
			log.Printf("http: listening on %s", cfg.HTTP.Addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Printf("http: %v", err)
			}
		}()
		defer func() {
			shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			srv.Shutdown(shutCtx)
		}()
	}

	start := time.Now()
	if err := w.Scan(ctx); err != nil {
		log.Fatalf("%v", err)
	}
	if cfg.Ingest.Watch {
		if err := w.Watch(ctx); err != nil {
			log.Fatalf("%v", err)
		}
	}
	if *verbose {
		log.Printf("completed in %s", time.Since(start).Truncate(time.Millisecond))
	}
}

// initMetrics installs the configured metrics backend; the nop backend
// remains on any failure.
func initMetrics(cfg config.Config, verbose bool) {
	switch cfg.Metrics.Backend {
	case "prompush":
		job := cfg.Job
		if job == "" {
			job = "landingzone"
		}
		b, err := prompush.NewBackend(job, cfg.Metrics.PushgatewayURL)
		if err != nil {
			log.Printf("metrics: failed to init prompush backend: %v; using nop", err)
			return
		}
		log.Printf("metrics: backend=prompush url=%s job=%s", cfg.Metrics.PushgatewayURL, job)
		metrics.SetBackend(b)

	case "", "none":
		if verbose {
			log.Printf("metrics: disabled (backend=%q)", cfg.Metrics.Backend)
		}

	default:
		log.Printf("metrics: unknown backend %q; metrics disabled", cfg.Metrics.Backend)
	}
}

func fatalf(format string, a ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", a...)
	os.Exit(1)
}
