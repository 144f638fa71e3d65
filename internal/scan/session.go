package scan

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/google/uuid"

	"example.com/fbprobe/internal/common"
	"example.com/fbprobe/internal/fdb"
	"example.com/fbprobe/internal/metadata"
	"example.com/fbprobe/internal/report"
	"example.com/fbprobe/internal/structure"
)

// Mode selects between exhaustive and strided page iteration.
type Mode int

const (
	ModeFull Mode = iota
	ModeSampled
)

func (m Mode) String() string {
	if m == ModeSampled {
		return "sampled"
	}
	return "full"
}

func ParseMode(s string) (Mode, error) {
	switch s {
	case "full", "":
		return ModeFull, nil
	case "sampled":
		return ModeSampled, nil
	default:
		return ModeFull, fmt.Errorf("unknown scan mode %q", s)
	}
}

const (
	DefaultChunkSize    = 20
	MinChunkSize        = 10
	DefaultSampleTarget = 500
	DefaultSampleHead   = 20
)

// Options configure one scan session. Zero values mean defaults; MaxPages 0
// means unlimited.
type Options struct {
	Mode         Mode       `yaml:"-"`
	MaxPages     int        `yaml:"maxPages"`
	ChunkSize    int        `yaml:"chunkSize"`
	SampleTarget int        `yaml:"sampleTarget"`
	SampleHead   int        `yaml:"sampleHead"`
	Policy       fdb.Policy `yaml:"policy"`
}

func (o *Options) normalize() {
	o.Policy.ApplyDefaults()
	if o.ChunkSize == 0 {
		o.ChunkSize = DefaultChunkSize
	}
	if o.ChunkSize < MinChunkSize {
		o.ChunkSize = MinChunkSize
	}
	if o.SampleTarget <= 0 {
		o.SampleTarget = DefaultSampleTarget
	}
	if o.SampleHead <= 0 {
		o.SampleHead = DefaultSampleHead
	}
}

// PageFailure records one page that could not be analyzed. The scan skips
// the page and continues; the failure stays available machine-readable
// alongside the free-text log.
type PageFailure struct {
	PageNumber int    `json:"pageNumber"`
	Offset     int64  `json:"offset"`
	Reason     string `json:"reason"`
}

// Session owns one scan of one file: the open handle, the page list (pruned
// of buffers), the record list, the metadata store, and the log. It is
// created at scan start, fully populated by scan end, and read-only after
// Analyze returns. Sessions are not reentrant and must not be shared while
// a scan is running.
type Session struct {
	ID   uuid.UUID
	path string
	opts Options

	reader     *fdb.PageReader
	classifier *fdb.Classifier
	extractor  *fdb.Extractor
	analyzer   *structure.Analyzer

	pages    []fdb.Page
	records  []fdb.Record
	cohorts  []structure.Cohort
	meta     *metadata.Store
	failures []PageFailure
	log      []string
	done     bool
}

// NewSession opens the file once; the handle stays owned by the session
// until Close. A missing or unreadable file fails here, before any page is
// scanned.
func NewSession(path string, opts Options) (*Session, error) {
	opts.normalize()
	reader, err := fdb.OpenPageReader(path, opts.Policy.PageSize)
	if err != nil {
		return nil, err
	}
	return &Session{
		ID:         uuid.New(),
		path:       path,
		opts:       opts,
		reader:     reader,
		classifier: fdb.NewClassifier(opts.Policy),
		extractor:  fdb.NewExtractor(opts.Policy),
		analyzer:   structure.NewAnalyzer(opts.Policy),
		meta:       metadata.NewStore(),
	}, nil
}

func (s *Session) Close() error {
	return s.reader.Close()
}

// Analyze runs the whole pipeline: chunked page iteration, classification,
// record extraction, then structure analysis over the accumulated records.
// Per-page failures are collected and skipped; an error escaping the
// pipeline is logged and returned to the caller. Cancellation is honored at
// chunk boundaries.
func (s *Session) Analyze(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("analysis panic: %v", r)
		}
		if err != nil {
			s.logf("analysis failed: %v", err)
		}
	}()
	if s.done {
		return fmt.Errorf("session %s already analyzed", s.ID)
	}

	pageCount := s.reader.PageCount()
	s.logf("session %s: %s, %d bytes, %d pages of %d bytes, %s mode",
		s.ID, s.path, s.reader.Size(), pageCount, s.reader.PageSize(), s.opts.Mode)

	s.meta.Put("FilePath", metadata.StringValue(s.path))
	s.meta.Put("FileSize", metadata.IntValue(s.reader.Size()))
	s.meta.Put("PageSize", metadata.IntValue(int64(s.reader.PageSize())))
	s.meta.Put("TotalPages", metadata.IntValue(int64(pageCount)))
	s.meta.Put("ScanMode", metadata.StringValue(s.opts.Mode.String()))

	numbers := s.selectPages(pageCount)
	progress := common.NewProgress(len(numbers))
	for start := 0; start < len(numbers); start += s.opts.ChunkSize {
		if cerr := ctx.Err(); cerr != nil {
			return fmt.Errorf("scan canceled: %w", cerr)
		}
		end := start + s.opts.ChunkSize
		if end > len(numbers) {
			end = len(numbers)
		}
		for _, number := range numbers[start:end] {
			s.scanPage(number)
			if pct, due := progress.Step(1); due {
				s.logf("progress %d%%", pct)
			}
		}
		// Chunk boundary: processed buffers are already released, the hint
		// lets the runtime reclaim them before the next chunk.
		runtime.GC()
	}

	s.cohorts = s.analyzer.Analyze(s.records)
	for _, c := range s.cohorts {
		if c.Fields == nil {
			s.logf("cohort size %d: %d records, below cohort minimum", c.Size, c.Count)
			continue
		}
		s.meta.Put(fmt.Sprintf("RecordStructure_%d", c.Size), metadata.FieldsValue(c.Fields))
		s.logf("cohort size %d: %d records, %d fields", c.Size, c.Count, len(c.Fields))
		for _, sample := range c.Sample {
			s.logf("  sample %s", sample)
		}
	}

	s.logf("scan complete: %d pages, %d records, %d failures (%s)",
		len(s.pages), len(s.records), len(s.failures), progress.Summary())
	s.done = true
	return nil
}

// scanPage reads, classifies and mines one page. Any failure is recorded
// and the page is skipped; an unexpected panic while decoding is contained
// at the same granularity.
func (s *Session) scanPage(number int) {
	offset := int64(number) * int64(s.reader.PageSize())
	defer func() {
		if r := recover(); r != nil {
			s.fail(number, offset, fmt.Sprintf("page analysis panic: %v", r))
		}
	}()

	buf, err := s.reader.ReadPage(offset)
	if err != nil {
		s.fail(number, offset, err.Error())
		return
	}
	page := fdb.Page{
		Number: number,
		Offset: offset,
		Marker: buf[0],
		Type:   s.classifier.Classify(buf),
		Buffer: buf,
	}
	switch page.Type {
	case fdb.PageHeader:
		metadata.CollectHeaderFacts(s.meta, &page, buf, s.opts.Policy)
		page.TakeBuffer()
	case fdb.PageData:
		s.records = append(s.records, s.extractor.Extract(&page)...)
	default:
		page.TakeBuffer()
	}
	s.pages = append(s.pages, page)
}

func (s *Session) fail(number int, offset int64, reason string) {
	s.failures = append(s.failures, PageFailure{PageNumber: number, Offset: offset, Reason: reason})
	s.logf("page %d @ 0x%08X skipped: %s", number, offset, reason)
}

// selectPages picks the page numbers to visit. Full mode walks everything
// up to the optional cap. Sampling always includes the first SampleHead
// pages, then strides the remainder evenly to reach SampleTarget.
func (s *Session) selectPages(pageCount int) []int {
	limit := pageCount
	if s.opts.MaxPages > 0 && s.opts.MaxPages < limit {
		limit = s.opts.MaxPages
	}
	if s.opts.Mode == ModeFull || pageCount <= s.opts.SampleTarget {
		numbers := make([]int, 0, limit)
		for i := 0; i < limit; i++ {
			numbers = append(numbers, i)
		}
		return numbers
	}

	head := s.opts.SampleHead
	if head > pageCount {
		head = pageCount
	}
	target := s.opts.SampleTarget
	numbers := make([]int, 0, target)
	for i := 0; i < head; i++ {
		numbers = append(numbers, i)
	}
	// A target at or below the head leaves nothing to stride over: the
	// head pages are the whole sample.
	if target > head {
		stride := (pageCount - head) / (target - head)
		if stride < 1 {
			stride = 1
		}
		for i := head; i < pageCount && len(numbers) < target; i += stride {
			numbers = append(numbers, i)
		}
	}
	if s.opts.MaxPages > 0 && len(numbers) > s.opts.MaxPages {
		numbers = numbers[:s.opts.MaxPages]
	}
	return numbers
}

func (s *Session) logf(format string, args ...interface{}) {
	line := time.Now().Format("15:04:05.000") + " " + fmt.Sprintf(format, args...)
	s.log = append(s.log, line)
	common.Logf(format, args...)
}

func (s *Session) Pages() []fdb.Page           { return s.pages }
func (s *Session) Records() []fdb.Record       { return s.records }
func (s *Session) Cohorts() []structure.Cohort { return s.cohorts }
func (s *Session) Metadata() *metadata.Store   { return s.meta }
func (s *Session) Failures() []PageFailure     { return s.failures }

// Log returns a copy of the operation log lines.
func (s *Session) Log() []string {
	out := make([]string, len(s.log))
	copy(out, s.log)
	return out
}

// ReadBytes exposes raw file access for on-demand hex inspection.
func (s *Session) ReadBytes(offset int64, length int) ([]byte, error) {
	return s.reader.ReadBytes(offset, length)
}

func (s *Session) reportData() report.Data {
	failures := make([]report.Failure, 0, len(s.failures))
	for _, f := range s.failures {
		failures = append(failures, report.Failure{PageNumber: f.PageNumber, Offset: f.Offset, Reason: f.Reason})
	}
	return report.Data{
		SessionID: s.ID.String(),
		Path:      s.path,
		FileSize:  s.reader.Size(),
		PageSize:  s.reader.PageSize(),
		PageCount: s.reader.PageCount(),
		Scanned:   len(s.pages),
		Mode:      s.opts.Mode.String(),
		Pages:     s.pages,
		Records:   s.records,
		Cohorts:   s.cohorts,
		Meta:      s.meta,
		Failures:  failures,
	}
}

// GenerateReport renders the plain-text diagnostic report.
func (s *Session) GenerateReport() string {
	return report.Render(s.reportData())
}

// SaveReportPDF writes the PDF rendering, stamping the given file digest.
func (s *Session) SaveReportPDF(digest, out string) error {
	return report.SavePDF(s.reportData(), digest, out)
}
