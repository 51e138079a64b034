package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestOptionsTypedAccess(t *testing.T) {
	o := Options{
		"name":    "drop",
		"enabled": true,
		"count":   float64(7), // JSON numbers decode as float64
		"comma":   ";",
	}

	if got := o.String("name", "x"); got != "drop" {
		t.Errorf("String = %q", got)
	}
	if got := o.String("missing", "fallback"); got != "fallback" {
		t.Errorf("String default = %q", got)
	}
	if got := o.String("count", "fallback"); got != "fallback" {
		t.Errorf("String on non-string = %q", got)
	}
	if !o.Bool("enabled", false) {
		t.Error("Bool = false")
	}
	if o.Bool("missing", false) {
		t.Error("Bool default ignored")
	}
	if got := o.Int("count", 0); got != 7 {
		t.Errorf("Int = %d", got)
	}
	if got := o.Int("name", 3); got != 3 {
		t.Errorf("Int on non-number = %d", got)
	}
	if got := o.Rune("comma", ','); got != ';' {
		t.Errorf("Rune = %q", got)
	}
	if got := o.Rune("missing", ','); got != ',' {
		t.Errorf("Rune default = %q", got)
	}
}

func TestOptionsNullDecodesToEmptyMap(t *testing.T) {
	var g Ingest
	if err := json.Unmarshal([]byte(`{"root":"/drop","parser_options":null}`), &g); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if g.ParserOptions == nil {
		t.Fatal("ParserOptions must decode to a non-nil map")
	}
	if got := g.ParserOptions.Bool("has_header", true); !got {
		t.Error("defaults must work on empty options")
	}
}

func validConfig() Config {
	return Config{
		Job: "nightly",
		Storage: Storage{
			Kind: "postgres",
			DSN:  "postgresql://u@localhost/db",
		},
		Ingest: Ingest{
			Root:          "/drop",
			ParserOptions: Options{},
		},
	}
}

func TestValidateOK(t *testing.T) {
	issues := Validate(validConfig())
	if HasErrors(issues) {
		t.Fatalf("unexpected errors: %+v", issues)
	}
}

func hasIssue(issues []Issue, sev IssueSeverity, path string) bool {
	for _, i := range issues {
		if i.Severity == sev && i.Path == path {
			return true
		}
	}
	return false
}

func TestValidateErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		path   string
	}{
		{"missing storage kind", func(c *Config) { c.Storage.Kind = "" }, "storage.kind"},
		{"missing dsn", func(c *Config) { c.Storage.DSN = "" }, "storage.dsn"},
		{"missing root", func(c *Config) { c.Ingest.Root = "" }, "ingest.root"},
		{"multichar comma", func(c *Config) { c.Ingest.ParserOptions = Options{"comma": "ab"} }, "ingest.parser_options.comma"},
		{"negative batch", func(c *Config) { c.Runtime.BatchSize = -1 }, "runtime.batch_size"},
		{"negative workers", func(c *Config) { c.Runtime.CleanWorkers = -1 }, "runtime.clean_workers"},
		{"prompush without url", func(c *Config) { c.Metrics.Backend = "prompush" }, "metrics.pushgateway_url"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validConfig()
			tt.mutate(&c)
			issues := Validate(c)
			if !hasIssue(issues, SeverityError, tt.path) {
				t.Fatalf("expected error at %s, got %+v", tt.path, issues)
			}
		})
	}
}

func TestValidateWarnings(t *testing.T) {
	c := validConfig()
	c.Job = ""
	c.Storage.Kind = "oracle"
	c.Metrics.Backend = "statsd"

	issues := Validate(c)
	if HasErrors(issues) {
		t.Fatalf("warnings must not be errors: %+v", issues)
	}
	for _, path := range []string{"job", "storage.kind", "metrics.backend"} {
		if !hasIssue(issues, SeverityWarning, path) {
			t.Errorf("expected warning at %s", path)
		}
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "job.json")
	raw := `{
		"job": "nightly",
		"storage": {"kind": "sqlite", "dsn": ":memory:"},
		"ingest": {"root": "/drop", "watch": true, "parser_options": {"has_header": false}},
		"runtime": {"clean_workers": 8, "batch_size": 500}
	}`
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Job != "nightly" || cfg.Storage.Kind != "sqlite" {
		t.Errorf("cfg = %+v", cfg)
	}
	if !cfg.Ingest.Watch || cfg.Runtime.CleanWorkers != 8 || cfg.Runtime.BatchSize != 500 {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.Ingest.ParserOptions.Bool("has_header", true) {
		t.Error("has_header should be false from file")
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "job.json")
	raw := `{"job": "nightly", "storage": {"kind": "sqlite", "dsn": ":memory:"}, "ingest": {"root": "/drop"}}`
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("LZ_STORAGE_DSN", "postgresql://u@db/landing")
	t.Setenv("LZ_STORAGE_KIND", "postgres")
	t.Setenv("LZ_RUNTIME_BATCH_SIZE", "250")
	t.Setenv("LZ_INGEST_WATCH", "true")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Storage.Kind != "postgres" || cfg.Storage.DSN != "postgresql://u@db/landing" {
		t.Errorf("env override failed: %+v", cfg.Storage)
	}
	if cfg.Runtime.BatchSize != 250 {
		t.Errorf("batch_size = %d, want 250", cfg.Runtime.BatchSize)
	}
	if !cfg.Ingest.Watch {
		t.Error("watch should be true from env")
	}
}

func TestLoadNoFileEnvOnly(t *testing.T) {
	t.Setenv("LZ_STORAGE_KIND", "sqlite")
	t.Setenv("LZ_STORAGE_DSN", ":memory:")
	t.Setenv("LZ_INGEST_ROOT", "/drop")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Storage.Kind != "sqlite" || cfg.Ingest.Root != "/drop" {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.Ingest.ParserOptions == nil {
		t.Error("ParserOptions must be non-nil")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.json")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
