package fdb

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const DefaultPageSize = 4096

// Header signature convention: a page starts with a one-byte type marker,
// a flags byte, and the fixed checksum constant 12345 stored little-endian
// at offsets 2..3. Valid marker values are 1..10.
const (
	sigFlags        byte   = 0x00
	sigChecksum     uint16 = 12345
	maxHeaderMarker byte   = 10
)

// Policy groups every heuristic tunable in one place. The defaults are the
// behavioral contract: detection is deliberately recall-biased (a single
// repeating pattern is treated as evidence of a table), and changing any
// threshold changes what the analyzer reports. Zero fields are replaced by
// their defaults when loaded from yaml.
type Policy struct {
	PageSize int `yaml:"pageSize"`

	// Repeating-pattern heuristic: candidate record sizes and the minimum
	// number of repeating 2-byte windows that marks a page as Data.
	PatternMinSize    int `yaml:"patternMinSize"`
	PatternMaxSize    int `yaml:"patternMaxSize"`
	PatternStep       int `yaml:"patternStep"`
	PatternMinMatches int `yaml:"patternMinMatches"`

	// Structured-segment heuristic over fixed windows: a window counts as
	// structured when its leading 8 bytes show enough zeros, printable
	// ASCII, or ascending byte comparisons.
	SegmentWindow       int `yaml:"segmentWindow"`
	SegmentZeroMin      int `yaml:"segmentZeroMin"`
	SegmentPrintableMin int `yaml:"segmentPrintableMin"`
	SegmentAscendingMin int `yaml:"segmentAscendingMin"`
	SegmentMinCount     int `yaml:"segmentMinCount"`

	// Index heuristic: ascending 32-bit comparisons required inside one
	// 16-byte aligned window.
	IndexAscendingMin int `yaml:"indexAscendingMin"`

	// Record extraction.
	ExtractMinSize      int `yaml:"extractMinSize"`
	ExtractMaxSize      int `yaml:"extractMaxSize"`
	ExtractStep         int `yaml:"extractStep"`
	ExtractMinRemainder int `yaml:"extractMinRemainder"`
	MaxRecordsPerPage   int `yaml:"maxRecordsPerPage"`

	// Structure analysis over record cohorts.
	MinCohort         int     `yaml:"minCohort"`
	StringRatio       float64 `yaml:"stringRatio"`
	DigitRatio        float64 `yaml:"digitRatio"`
	ZeroRatio         float64 `yaml:"zeroRatio"`
	BoundaryZeroRatio float64 `yaml:"boundaryZeroRatio"`

	// Header-page fact extraction.
	MaxHeaderStrings   int    `yaml:"maxHeaderStrings"`
	MinHeaderStringLen int    `yaml:"minHeaderStringLen"`
	HeaderStringWindow int    `yaml:"headerStringWindow"`
	TableCountMax      uint32 `yaml:"tableCountMax"`
}

func DefaultPolicy() Policy {
	return Policy{
		PageSize:            DefaultPageSize,
		PatternMinSize:      8,
		PatternMaxSize:      1024,
		PatternStep:         2,
		PatternMinMatches:   1,
		SegmentWindow:       16,
		SegmentZeroMin:      2,
		SegmentPrintableMin: 3,
		SegmentAscendingMin: 3,
		SegmentMinCount:     5,
		IndexAscendingMin:   2,
		ExtractMinSize:      16,
		ExtractMaxSize:      1024,
		ExtractStep:         4,
		ExtractMinRemainder: 4,
		MaxRecordsPerPage:   50,
		MinCohort:           5,
		StringRatio:         0.7,
		DigitRatio:          0.5,
		ZeroRatio:           0.5,
		BoundaryZeroRatio:   0.7,
		MaxHeaderStrings:    10,
		MinHeaderStringLen:  3,
		HeaderStringWindow:  1024,
		TableCountMax:       1000,
	}
}

// ApplyDefaults fills zero-valued fields with the defaults so a partial yaml
// override only has to name the thresholds it changes.
func (p *Policy) ApplyDefaults() {
	def := DefaultPolicy()
	if p.PageSize <= 0 {
		p.PageSize = def.PageSize
	}
	if p.PatternMinSize <= 0 {
		p.PatternMinSize = def.PatternMinSize
	}
	if p.PatternMaxSize <= 0 {
		p.PatternMaxSize = def.PatternMaxSize
	}
	if p.PatternStep <= 0 {
		p.PatternStep = def.PatternStep
	}
	if p.PatternMinMatches <= 0 {
		p.PatternMinMatches = def.PatternMinMatches
	}
	if p.SegmentWindow <= 0 {
		p.SegmentWindow = def.SegmentWindow
	}
	if p.SegmentZeroMin <= 0 {
		p.SegmentZeroMin = def.SegmentZeroMin
	}
	if p.SegmentPrintableMin <= 0 {
		p.SegmentPrintableMin = def.SegmentPrintableMin
	}
	if p.SegmentAscendingMin <= 0 {
		p.SegmentAscendingMin = def.SegmentAscendingMin
	}
	if p.SegmentMinCount <= 0 {
		p.SegmentMinCount = def.SegmentMinCount
	}
	if p.IndexAscendingMin <= 0 {
		p.IndexAscendingMin = def.IndexAscendingMin
	}
	if p.ExtractMinSize <= 0 {
		p.ExtractMinSize = def.ExtractMinSize
	}
	if p.ExtractMaxSize <= 0 {
		p.ExtractMaxSize = def.ExtractMaxSize
	}
	if p.ExtractStep <= 0 {
		p.ExtractStep = def.ExtractStep
	}
	if p.ExtractMinRemainder <= 0 {
		p.ExtractMinRemainder = def.ExtractMinRemainder
	}
	if p.MaxRecordsPerPage <= 0 {
		p.MaxRecordsPerPage = def.MaxRecordsPerPage
	}
	if p.MinCohort <= 0 {
		p.MinCohort = def.MinCohort
	}
	if p.StringRatio <= 0 {
		p.StringRatio = def.StringRatio
	}
	if p.DigitRatio <= 0 {
		p.DigitRatio = def.DigitRatio
	}
	if p.ZeroRatio <= 0 {
		p.ZeroRatio = def.ZeroRatio
	}
	if p.BoundaryZeroRatio <= 0 {
		p.BoundaryZeroRatio = def.BoundaryZeroRatio
	}
	if p.MaxHeaderStrings <= 0 {
		p.MaxHeaderStrings = def.MaxHeaderStrings
	}
	if p.MinHeaderStringLen <= 0 {
		p.MinHeaderStringLen = def.MinHeaderStringLen
	}
	if p.HeaderStringWindow <= 0 {
		p.HeaderStringWindow = def.HeaderStringWindow
	}
	if p.TableCountMax == 0 {
		p.TableCountMax = def.TableCountMax
	}
}

// LoadPolicy reads a yaml policy file and backfills defaults.
func LoadPolicy(path string) (Policy, error) {
	var p Policy
	f, err := os.Open(path)
	if err != nil {
		return p, err
	}
	defer f.Close()
	dec := yaml.NewDecoder(f)
	if err := dec.Decode(&p); err != nil {
		return p, fmt.Errorf("parse policy %s: %w", path, err)
	}
	p.ApplyDefaults()
	return p, nil
}
