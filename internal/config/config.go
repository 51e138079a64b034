// Package config defines the canonical, JSON-serializable configuration model
// for the landing-zone loader. Field names in Go mirror the JSON structure
// used in job files (configs/*.json); environment variables (LZ_* via the
// loader) override individual values 12-factor style.
//
// Example (trimmed):
//
//	{
//	  "job":     "nightly-drop",
//	  "storage": { "kind": "postgres", "dsn": "postgresql://...", "schema": "public" },
//	  "ingest":  { "root": "/data/drop", "parser_options": { "has_header": true } },
//	  "runtime": { "clean_workers": 4, "batch_size": 1000 }
//	}
package config

import "encoding/json"

// Config is the top-level object decoded from a job file.
type Config struct {
	// Job names the run; it labels metrics and log lines.
	Job string `json:"job"`

	Storage Storage       `json:"storage"`
	Ingest  Ingest        `json:"ingest"`
	Runtime RuntimeConfig `json:"runtime"`
	HTTP    HTTP          `json:"http"`
	Metrics Metrics       `json:"metrics"`
}

// Storage selects and configures the database backend.
type Storage struct {
	// Kind selects the backend implementation: postgres, sqlite, mssql, mysql.
	Kind string `json:"kind"`

	// DSN is the backend connection string, passed through verbatim.
	DSN string `json:"dsn"`

	// Schema optionally qualifies table names (e.g. "public", "dbo").
	Schema string `json:"schema"`
}

// Ingest configures the drop directory and parser behavior.
type Ingest struct {
	// Root is the drop directory scanned (or watched) for source files.
	Root string `json:"root"`

	// Watch keeps the process running and reacts to new files instead of
	// exiting after one scan.
	Watch bool `json:"watch"`

	// ParserOptions is a free-form map interpreted by the file parsers.
	// Typical keys: has_header (bool), comma (string), lazy_quotes (bool),
	// trim_space (bool).
	ParserOptions Options `json:"parser_options"`
}

// RuntimeConfig controls concurrency, batching, and channel buffer sizes.
type RuntimeConfig struct {
	CleanWorkers  int `json:"clean_workers"`
	ScanWorkers   int `json:"scan_workers"`
	BatchSize     int `json:"batch_size"`
	ChannelBuffer int `json:"channel_buffer"`
}

// HTTP configures the optional read-only API.
type HTTP struct {
	// Addr is the listen address (e.g. ":8080"). Empty disables the server.
	Addr string `json:"addr"`
}

// Metrics configures the optional metrics backend.
type Metrics struct {
	// Backend selects the implementation: "" or "none" disables metrics,
	// "prompush" pushes to a Prometheus Pushgateway.
	Backend string `json:"backend"`

	// PushgatewayURL is the base URL of the Pushgateway (prompush backend).
	PushgatewayURL string `json:"pushgateway_url"`
}

// Options is a small helper to fetch typed values from arbitrary JSON maps.
// It performs only minimal type coercion and returns provided defaults when a
// key is absent or of an unexpected type.
type Options map[string]any

// String returns the string value for key or def if key is missing or not a string.
func (o Options) String(key, def string) string {
	if v, ok := o[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return def
}

// Bool returns the bool value for key or def if key is missing or not a bool.
func (o Options) Bool(key string, def bool) bool {
	if v, ok := o[key]; ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	return def
}

// Int returns the int value for key or def. JSON numbers decode as float64,
// so this method accepts float64 and casts to int.
func (o Options) Int(key string, def int) int {
	if v, ok := o[key]; ok {
		switch n := v.(type) {
		case float64:
			return int(n)
		case int:
			return n
		}
	}
	return def
}

// Rune returns the first rune of a string value for key, or def if key is
// missing or empty. Useful for single-character settings such as a CSV
// delimiter.
func (o Options) Rune(key string, def rune) rune {
	if v, ok := o[key]; ok {
		if s, ok := v.(string); ok && len(s) > 0 {
			return []rune(s)[0]
		}
	}
	return def
}

// UnmarshalJSON implements json.Unmarshaler so that a missing or null options
// object decodes to a non-nil, empty Options map. This removes the need to
// nil-check Options values at call sites.
func (o *Options) UnmarshalJSON(b []byte) error {
	var tmp map[string]any
	if len(b) == 0 || string(b) == "null" {
		*o = Options{}
		return nil
	}
	if err := json.Unmarshal(b, &tmp); err != nil {
		return err
	}
	*o = Options(tmp)
	return nil
}
