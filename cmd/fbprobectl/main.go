package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"

	"golang.org/x/sync/errgroup"
	"gopkg.in/natefinch/lumberjack.v2"
	"gopkg.in/yaml.v3"

	"example.com/fbprobe/internal/common"
	"example.com/fbprobe/internal/fdb"
	"example.com/fbprobe/internal/scan"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		return
	}
	switch os.Args[1] {
	case "scan":
		scanCmd(os.Args[2:])
	case "hexdump":
		hexdumpCmd(os.Args[2:])
	case "batch":
		batchCmd(os.Args[2:])
	default:
		usage()
	}
}

func usage() {
	fmt.Printf(`fbprobectl %s (built %s) <command> [options]

Commands:
  scan     --in <file> [--config <probe.yaml>] [--mode full|sampled] [--max-pages <n>] [--chunk <n>] [--page-size <n>] [--sample <n>] [--out <report.txt>] [--pdf <report.pdf>] [--log-out <scan.log>] [--diagnostics <failures.jsonl>]
  hexdump  --in <file> --offset <n> [--length <n>] [--width <n>]
  batch    --in <dir> --out-dir <dir> [--mode full|sampled] [--concurrency <n>]
`, version, buildDate)
}

type logConfig struct {
	Directory  string `yaml:"directory"`
	MaxSizeMB  int    `yaml:"maxSizeMB"`
	MaxAgeDays int    `yaml:"maxAgeDays"`
	MaxBackups int    `yaml:"maxBackups"`
	Compress   bool   `yaml:"compress"`
}

type config struct {
	Mode         string     `yaml:"mode"`
	MaxPages     int        `yaml:"maxPages"`
	ChunkSize    int        `yaml:"chunkSize"`
	SampleTarget int        `yaml:"sampleTarget"`
	SampleHead   int        `yaml:"sampleHead"`
	Policy       fdb.Policy `yaml:"policy"`
	Logs         logConfig  `yaml:"logs"`
}

func loadConfig(path string) (config, error) {
	var cfg config
	f, err := os.Open(path)
	if err != nil {
		return cfg, err
	}
	defer f.Close()
	dec := yaml.NewDecoder(f)
	if err := dec.Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

func (c config) options() (scan.Options, error) {
	mode, err := scan.ParseMode(c.Mode)
	if err != nil {
		return scan.Options{}, err
	}
	opts := scan.Options{
		Mode:         mode,
		MaxPages:     c.MaxPages,
		ChunkSize:    c.ChunkSize,
		SampleTarget: c.SampleTarget,
		SampleHead:   c.SampleHead,
		Policy:       c.Policy,
	}
	opts.Policy.ApplyDefaults()
	return opts, nil
}

func setupLogs(lc logConfig) {
	if lc.Directory == "" {
		return
	}
	if err := os.MkdirAll(lc.Directory, 0755); err != nil {
		common.Fatalf("create log directory: %v", err)
	}
	rotating := &lumberjack.Logger{
		Filename:   filepath.Join(lc.Directory, "fbprobe.log"),
		MaxSize:    lc.MaxSizeMB,
		MaxAge:     lc.MaxAgeDays,
		MaxBackups: lc.MaxBackups,
		Compress:   lc.Compress,
	}
	common.SetLogOutput(io.MultiWriter(os.Stderr, rotating))
}

func scanCmd(args []string) {
	fs := flag.NewFlagSet("scan", flag.ExitOnError)
	in := fs.String("in", "", "database file to analyze")
	configPath := fs.String("config", "", "yaml config with scan options and policy")
	mode := fs.String("mode", "", "full or sampled")
	maxPages := fs.Int("max-pages", -1, "page cap, 0 = unlimited")
	chunk := fs.Int("chunk", 0, "pages per chunk")
	pageSize := fs.Int("page-size", 0, "page size in bytes")
	sample := fs.Int("sample", 0, "target page count in sampled mode")
	out := fs.String("out", "", "write the text report here instead of stdout")
	pdfOut := fs.String("pdf", "", "also write a PDF report")
	logOut := fs.String("log-out", "", "write the operation log here")
	diagOut := fs.String("diagnostics", "", "write page failures as JSON lines")
	fs.Parse(args)

	if *in == "" {
		common.Fatalf("scan: --in is required")
	}

	var cfg config
	if *configPath != "" {
		loaded, err := loadConfig(*configPath)
		if err != nil {
			common.Fatalf("scan: %v", err)
		}
		cfg = loaded
	}
	if *mode != "" {
		cfg.Mode = *mode
	}
	if *maxPages >= 0 {
		cfg.MaxPages = *maxPages
	}
	if *chunk > 0 {
		cfg.ChunkSize = *chunk
	}
	if *sample > 0 {
		cfg.SampleTarget = *sample
	}
	if *pageSize > 0 {
		cfg.Policy.PageSize = *pageSize
	}
	setupLogs(cfg.Logs)

	opts, err := cfg.options()
	if err != nil {
		common.Fatalf("scan: %v", err)
	}

	session, err := scan.NewSession(*in, opts)
	if err != nil {
		common.Fatalf("scan: %v", err)
	}
	defer session.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := session.Analyze(ctx); err != nil {
		common.Fatalf("scan: %v", err)
	}

	rep := session.GenerateReport()
	if *out != "" {
		if err := os.WriteFile(*out, []byte(rep), 0644); err != nil {
			common.Fatalf("write report: %v", err)
		}
	} else {
		fmt.Print(rep)
	}
	if *logOut != "" {
		text := strings.Join(session.Log(), "\n") + "\n"
		if err := os.WriteFile(*logOut, []byte(text), 0644); err != nil {
			common.Fatalf("write log: %v", err)
		}
	}
	if *diagOut != "" {
		if err := writeFailuresJSONL(*diagOut, session.Failures()); err != nil {
			common.Fatalf("write diagnostics: %v", err)
		}
	}
	if *pdfOut != "" {
		digest, _, err := common.Sha256OfFile(*in)
		if err != nil {
			common.Fatalf("hash input: %v", err)
		}
		if err := session.SaveReportPDF(digest, *pdfOut); err != nil {
			common.Fatalf("write pdf: %v", err)
		}
	}
}

func writeFailuresJSONL(path string, failures []scan.PageFailure) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	for _, failure := range failures {
		if err := enc.Encode(failure); err != nil {
			return err
		}
	}
	return nil
}

func hexdumpCmd(args []string) {
	fs := flag.NewFlagSet("hexdump", flag.ExitOnError)
	in := fs.String("in", "", "file to inspect")
	offset := fs.Int64("offset", 0, "starting offset")
	length := fs.Int("length", 256, "bytes to dump")
	width := fs.Int("width", fdb.DefaultBytesPerLine, "bytes per line")
	pageSize := fs.Int("page-size", 0, "page size in bytes")
	fs.Parse(args)

	if *in == "" {
		common.Fatalf("hexdump: --in is required")
	}
	reader, err := fdb.OpenPageReader(*in, *pageSize)
	if err != nil {
		common.Fatalf("hexdump: %v", err)
	}
	defer reader.Close()

	buf, err := reader.ReadBytes(*offset, *length)
	if err != nil {
		common.Fatalf("hexdump: %v", err)
	}
	fmt.Print(fdb.HexDump(buf, *offset, len(buf), *width))
}

func batchCmd(args []string) {
	fs := flag.NewFlagSet("batch", flag.ExitOnError)
	in := fs.String("in", "", "directory of database files")
	outDir := fs.String("out-dir", "", "directory for reports")
	mode := fs.String("mode", "sampled", "full or sampled")
	concurrency := fs.Int("concurrency", runtime.NumCPU(), "files analyzed in parallel")
	configPath := fs.String("config", "", "yaml config with scan options and policy")
	fs.Parse(args)

	if *in == "" || *outDir == "" {
		common.Fatalf("batch: --in and --out-dir are required")
	}
	var cfg config
	if *configPath != "" {
		loaded, err := loadConfig(*configPath)
		if err != nil {
			common.Fatalf("batch: %v", err)
		}
		cfg = loaded
	}
	cfg.Mode = *mode
	opts, err := cfg.options()
	if err != nil {
		common.Fatalf("batch: %v", err)
	}
	if err := os.MkdirAll(*outDir, 0755); err != nil {
		common.Fatalf("batch: %v", err)
	}

	entries, err := os.ReadDir(*in)
	if err != nil {
		common.Fatalf("batch: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(*concurrency)

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		path := filepath.Join(*in, entry.Name())
		reportPath := filepath.Join(*outDir, entry.Name()+".report.txt")
		g.Go(func() error {
			// Each file gets its own session; the scan inside stays strictly
			// sequential.
			return analyzeOne(ctx, path, reportPath, opts)
		})
	}
	if err := g.Wait(); err != nil {
		common.Fatalf("batch: %v", err)
	}
}

func analyzeOne(ctx context.Context, path, reportPath string, opts scan.Options) error {
	session, err := scan.NewSession(path, opts)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	defer session.Close()
	if err := session.Analyze(ctx); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return os.WriteFile(reportPath, []byte(session.GenerateReport()), 0644)
}
