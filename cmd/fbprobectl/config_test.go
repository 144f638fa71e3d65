package main

import (
	"os"
	"path/filepath"
	"testing"

	"example.com/fbprobe/internal/scan"
)

func TestLoadConfigAndOptions(t *testing.T) {
	yamlText := `
mode: sampled
maxPages: 1000
chunkSize: 40
sampleTarget: 250
policy:
  pageSize: 8192
  maxRecordsPerPage: 25
logs:
  directory: /tmp/fbprobe-logs
  maxSizeMB: 10
`
	path := filepath.Join(t.TempDir(), "probe.yaml")
	if err := os.WriteFile(path, []byte(yamlText), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := loadConfig(path)
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.Logs.Directory != "/tmp/fbprobe-logs" || cfg.Logs.MaxSizeMB != 10 {
		t.Fatalf("log config = %+v", cfg.Logs)
	}

	opts, err := cfg.options()
	if err != nil {
		t.Fatalf("options: %v", err)
	}
	if opts.Mode != scan.ModeSampled {
		t.Fatalf("mode = %v, want sampled", opts.Mode)
	}
	if opts.MaxPages != 1000 || opts.ChunkSize != 40 || opts.SampleTarget != 250 {
		t.Fatalf("options = %+v", opts)
	}
	if opts.Policy.PageSize != 8192 {
		t.Fatalf("page size = %d, want yaml override 8192", opts.Policy.PageSize)
	}
	if opts.Policy.MaxRecordsPerPage != 25 {
		t.Fatalf("record cap = %d, want yaml override 25", opts.Policy.MaxRecordsPerPage)
	}
	// Unset thresholds fall back to the defaults.
	if opts.Policy.SegmentMinCount != 5 {
		t.Fatalf("segment threshold = %d, want default 5", opts.Policy.SegmentMinCount)
	}
}

func TestOptionsRejectsUnknownMode(t *testing.T) {
	cfg := config{Mode: "turbo"}
	if _, err := cfg.options(); err == nil {
		t.Fatal("unknown mode must fail")
	}
}

func TestOptionsDefaults(t *testing.T) {
	opts, err := config{}.options()
	if err != nil {
		t.Fatalf("options: %v", err)
	}
	if opts.Mode != scan.ModeFull {
		t.Fatalf("default mode = %v, want full", opts.Mode)
	}
	if opts.Policy.PageSize != 4096 {
		t.Fatalf("default page size = %d, want 4096", opts.Policy.PageSize)
	}
}
