// Command lzschema creates the landing-zone tables and seeds the initial
// folder routes. It is idempotent: existing tables are left alone and a
// non-empty FolderConfig is not re-seeded, so it is safe to run on every
// deployment.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"landingzone/internal/config"
	"landingzone/internal/routing"
	"landingzone/internal/schema"
	"landingzone/internal/storage"

	// register all backends with the storage factory.
	_ "landingzone/internal/storage/all"
)

func main() {
	var (
		cfgPath  string
		validate bool
	)
	flag.StringVar(&cfgPath, "config", "", "job config JSON path (env LZ_* also applies)")
	flag.BoolVar(&validate, "validate", false, "validate the configuration and exit")
	flag.Parse()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		fatalf("%v", err)
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

	ctx := context.Background()

	repo, err := storage.New(ctx, storage.Config{
		Kind:   cfg.Storage.Kind,
		DSN:    cfg.Storage.DSN,
		Schema: cfg.Storage.Schema,
	})
	if err != nil {
		fatalf("open storage: %v", err)
	}
	defer repo.Close()

	tables := schema.Tables()
	if err := storage.EnsureTables(ctx, cfg.Storage.Kind, repo, tables); err != nil {
		fatalf("create tables: %v", err)
	}
	for _, t := range tables {
		log.Printf("ensured table %s", t.Name)
	}

	if err := routing.Seed(ctx, repo); err != nil {
		fatalf("seed folder routes: %v", err)
	}
	log.Printf("schema ready: backend=%s tables=%d", cfg.Storage.Kind, len(tables))
}

func fatalf(format string, a ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", a...)
	os.Exit(1)
}
