package report

import (
	"fmt"
	"sort"
	"strings"

	"example.com/fbprobe/internal/fdb"
	"example.com/fbprobe/internal/metadata"
	"example.com/fbprobe/internal/structure"
)

const (
	maxSamplePages = 10
	maxRecordSizes = 10
)

// Failure is one page that could not be analyzed; the scan skipped it and
// kept going.
type Failure struct {
	PageNumber int
	Offset     int64
	Reason     string
}

// Data is everything a finished scan session hands to the renderers.
type Data struct {
	SessionID string
	Path      string
	FileSize  int64
	PageSize  int
	PageCount int
	Scanned   int
	Mode      string
	Pages     []fdb.Page
	Records   []fdb.Record
	Cohorts   []structure.Cohort
	Meta      *metadata.Store
	Failures  []Failure
}

// Render produces the plain-text diagnostic report: scan summary, page-type
// histogram with sample pages, record-size histogram, inferred structures,
// and the full metadata dump. Persisting the text is the caller's business.
func Render(d Data) string {
	var b strings.Builder

	b.WriteString("fbprobe structural scan\n")
	b.WriteString("=======================\n")
	fmt.Fprintf(&b, "Session:     %s\n", d.SessionID)
	fmt.Fprintf(&b, "File:        %s\n", d.Path)
	fmt.Fprintf(&b, "Size:        %d bytes\n", d.FileSize)
	fmt.Fprintf(&b, "Page size:   %d bytes\n", d.PageSize)
	fmt.Fprintf(&b, "Total pages: %d\n", d.PageCount)
	fmt.Fprintf(&b, "Scanned:     %d (%s mode)\n", d.Scanned, d.Mode)
	fmt.Fprintf(&b, "Records:     %d\n", len(d.Records))
	fmt.Fprintf(&b, "Failures:    %d\n", len(d.Failures))

	writePageTypes(&b, d.Pages)
	writeRecordSizes(&b, d.Records)
	writeStructures(&b, d.Cohorts)
	writeMetadata(&b, d.Meta)
	writeFailures(&b, d.Failures)

	return b.String()
}

func writePageTypes(b *strings.Builder, pages []fdb.Page) {
	b.WriteString("\nPage types\n----------\n")
	order := []fdb.PageType{
		fdb.PageHeader, fdb.PageData, fdb.PageIndex,
		fdb.PageBlob, fdb.PageFree, fdb.PageUnknown,
	}
	for _, pt := range order {
		var samples []string
		count := 0
		for _, p := range pages {
			if p.Type != pt {
				continue
			}
			count++
			if len(samples) < maxSamplePages {
				samples = append(samples, fmt.Sprintf("%d", p.Number))
			}
		}
		if count == 0 {
			continue
		}
		fmt.Fprintf(b, "%-8s %6d  pages %s", pt, count, strings.Join(samples, ", "))
		if count > maxSamplePages {
			fmt.Fprintf(b, " (first %d)", maxSamplePages)
		}
		b.WriteByte('\n')
	}
}

func writeRecordSizes(b *strings.Builder, records []fdb.Record) {
	b.WriteString("\nRecord sizes\n------------\n")
	if len(records) == 0 {
		b.WriteString("none\n")
		return
	}
	counts := make(map[int]int)
	for _, r := range records {
		counts[r.Size]++
	}
	type sizeCount struct {
		size  int
		count int
	}
	all := make([]sizeCount, 0, len(counts))
	for size, count := range counts {
		all = append(all, sizeCount{size, count})
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].count != all[j].count {
			return all[i].count > all[j].count
		}
		return all[i].size < all[j].size
	})
	if len(all) > maxRecordSizes {
		all = all[:maxRecordSizes]
	}
	for _, sc := range all {
		fmt.Fprintf(b, "%5d bytes  x%d\n", sc.size, sc.count)
	}
}

func writeStructures(b *strings.Builder, cohorts []structure.Cohort) {
	b.WriteString("\nRecord structure\n----------------\n")
	if len(cohorts) == 0 {
		b.WriteString("none\n")
		return
	}
	for _, c := range cohorts {
		if c.Fields == nil {
			fmt.Fprintf(b, "size %d: %d records, below cohort minimum\n", c.Size, c.Count)
			continue
		}
		fmt.Fprintf(b, "size %d (%d records):\n", c.Size, c.Count)
		for _, f := range c.Fields {
			fmt.Fprintf(b, "  @%-4d %-8s size %d\n", f.Offset, f.Type, f.Size)
		}
		for _, s := range c.Sample {
			fmt.Fprintf(b, "  sample %s\n", s)
		}
	}
}

func writeMetadata(b *strings.Builder, meta *metadata.Store) {
	b.WriteString("\nMetadata\n--------\n")
	if meta == nil || meta.Len() == 0 {
		b.WriteString("none\n")
		return
	}
	for _, key := range meta.Keys() {
		v, _ := meta.Get(key)
		fmt.Fprintf(b, "%s = %s\n", key, v)
	}
}

func writeFailures(b *strings.Builder, failures []Failure) {
	if len(failures) == 0 {
		return
	}
	b.WriteString("\nFailures\n--------\n")
	for _, f := range failures {
		fmt.Fprintf(b, "page %d @ 0x%08X: %s\n", f.PageNumber, f.Offset, f.Reason)
	}
}
