package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Load reads a job file and applies environment overrides. The file is JSON;
// environment variables use the LZ_ prefix with underscores for nesting
// (LZ_STORAGE_DSN overrides storage.dsn). A missing file with a full set of
// environment variables is a valid deployment, so path may be empty.
func Load(path string) (Config, error) {
	var cfg Config

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := json.Unmarshal(raw, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if cfg.Ingest.ParserOptions == nil {
		cfg.Ingest.ParserOptions = Options{}
	}

	v := viper.New()
	v.SetEnvPrefix("LZ")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for _, key := range []string{
		"job",
		"storage.kind", "storage.dsn", "storage.schema",
		"ingest.root", "ingest.watch",
		"runtime.clean_workers", "runtime.scan_workers",
		"runtime.batch_size", "runtime.channel_buffer",
		"http.addr",
		"metrics.backend", "metrics.pushgateway_url",
	} {
		if err := v.BindEnv(key); err != nil {
			return cfg, fmt.Errorf("bind env %s: %w", key, err)
		}
	}

	if v.IsSet("job") {
		cfg.Job = v.GetString("job")
	}
	if v.IsSet("storage.kind") {
		cfg.Storage.Kind = v.GetString("storage.kind")
	}
	if v.IsSet("storage.dsn") {
		cfg.Storage.DSN = v.GetString("storage.dsn")
	}
	if v.IsSet("storage.schema") {
		cfg.Storage.Schema = v.GetString("storage.schema")
	}
	if v.IsSet("ingest.root") {
		cfg.Ingest.Root = v.GetString("ingest.root")
	}
	if v.IsSet("ingest.watch") {
		cfg.Ingest.Watch = v.GetBool("ingest.watch")
	}
	if v.IsSet("runtime.clean_workers") {
		cfg.Runtime.CleanWorkers = v.GetInt("runtime.clean_workers")
	}
	if v.IsSet("runtime.scan_workers") {
		cfg.Runtime.ScanWorkers = v.GetInt("runtime.scan_workers")
	}
	if v.IsSet("runtime.batch_size") {
		cfg.Runtime.BatchSize = v.GetInt("runtime.batch_size")
	}
	if v.IsSet("runtime.channel_buffer") {
		cfg.Runtime.ChannelBuffer = v.GetInt("runtime.channel_buffer")
	}
	if v.IsSet("http.addr") {
		cfg.HTTP.Addr = v.GetString("http.addr")
	}
	if v.IsSet("metrics.backend") {
		cfg.Metrics.Backend = v.GetString("metrics.backend")
	}
	if v.IsSet("metrics.pushgateway_url") {
		cfg.Metrics.PushgatewayURL = v.GetString("metrics.pushgateway_url")
	}

	return cfg, nil
}
