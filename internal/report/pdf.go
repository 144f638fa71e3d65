package report

import (
	"bytes"
	"fmt"
	"sort"
	"strconv"

	"github.com/jung-kurt/gofpdf"

	"example.com/fbprobe/internal/fdb"
)

// SavePDF renders the scan report into a PDF document. The sha256 digest of
// the scanned file, when present, is stamped as a QR code so a printed
// report can be matched back to its input.
func SavePDF(d Data, digest, out string) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Structural Scan Report", false)
	pdf.SetAuthor("fbprobectl", false)
	pdf.SetCreator("fbprobectl", false)
	pdf.SetMargins(15, 20, 15)
	pdf.SetAutoPageBreak(true, 20)
	pdf.AddPage()

	addPDFTitle(pdf, "Structural Scan Report")
	addSummarySection(pdf, d)
	addPageTypeSection(pdf, d.Pages)
	addRecordSizeSection(pdf, d.Records)
	addMetadataSection(pdf, d)
	if digest != "" {
		addDigestQR(pdf, digest)
	}

	if pdf.Err() {
		return pdf.Error()
	}
	return pdf.OutputFileAndClose(out)
}

func addPDFTitle(pdf *gofpdf.Fpdf, title string) {
	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, title)
	pdf.Ln(12)
}

func addSummarySection(pdf *gofpdf.Fpdf, d Data) {
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, "Summary")
	pdf.Ln(8)

	pdf.SetFont("Helvetica", "", 11)
	items := []struct {
		label string
		value string
	}{
		{label: "Session", value: d.SessionID},
		{label: "File", value: d.Path},
		{label: "Size", value: fmt.Sprintf("%d bytes", d.FileSize)},
		{label: "Page size", value: fmt.Sprintf("%d bytes", d.PageSize)},
		{label: "Total pages", value: strconv.Itoa(d.PageCount)},
		{label: "Scanned", value: fmt.Sprintf("%d (%s mode)", d.Scanned, d.Mode)},
		{label: "Records", value: strconv.Itoa(len(d.Records))},
		{label: "Failures", value: strconv.Itoa(len(d.Failures))},
	}
	for _, item := range items {
		pdf.CellFormat(40, 6, item.label, "", 0, "L", false, 0, "")
		pdf.CellFormat(0, 6, item.value, "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)
}

func addPageTypeSection(pdf *gofpdf.Fpdf, pages []fdb.Page) {
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, "Page Types")
	pdf.Ln(9)

	counts := make(map[fdb.PageType]int)
	for _, p := range pages {
		counts[p.Type]++
	}
	headers := []string{"Type", "Count"}
	widths := []float64{60, 40}
	addTableHeader(pdf, headers, widths)

	pdf.SetFont("Helvetica", "", 10)
	order := []fdb.PageType{
		fdb.PageHeader, fdb.PageData, fdb.PageIndex,
		fdb.PageBlob, fdb.PageFree, fdb.PageUnknown,
	}
	for _, pt := range order {
		if counts[pt] == 0 {
			continue
		}
		pdf.CellFormat(widths[0], 6, pt.String(), "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[1], 6, strconv.Itoa(counts[pt]), "1", 1, "R", false, 0, "")
	}
	pdf.Ln(4)
}

func addRecordSizeSection(pdf *gofpdf.Fpdf, records []fdb.Record) {
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, "Record Sizes")
	pdf.Ln(9)

	counts := make(map[int]int)
	for _, r := range records {
		counts[r.Size]++
	}
	sizes := make([]int, 0, len(counts))
	for size := range counts {
		sizes = append(sizes, size)
	}
	sort.Slice(sizes, func(i, j int) bool {
		if counts[sizes[i]] != counts[sizes[j]] {
			return counts[sizes[i]] > counts[sizes[j]]
		}
		return sizes[i] < sizes[j]
	})
	if len(sizes) > maxRecordSizes {
		sizes = sizes[:maxRecordSizes]
	}

	headers := []string{"Size (bytes)", "Records"}
	widths := []float64{60, 40}
	addTableHeader(pdf, headers, widths)

	pdf.SetFont("Helvetica", "", 10)
	for _, size := range sizes {
		pdf.CellFormat(widths[0], 6, strconv.Itoa(size), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[1], 6, strconv.Itoa(counts[size]), "1", 1, "R", false, 0, "")
	}
	pdf.Ln(4)
}

func addMetadataSection(pdf *gofpdf.Fpdf, d Data) {
	if d.Meta == nil || d.Meta.Len() == 0 {
		return
	}
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, "Metadata")
	pdf.Ln(9)

	pdf.SetFont("Helvetica", "", 9)
	for _, key := range d.Meta.Keys() {
		v, _ := d.Meta.Get(key)
		pdf.MultiCell(0, 5, fmt.Sprintf("%s = %s", key, v), "", "L", false)
	}
	pdf.Ln(4)
}

func addTableHeader(pdf *gofpdf.Fpdf, headers []string, widths []float64) {
	pdf.SetFillColor(240, 240, 240)
	pdf.SetFont("Helvetica", "B", 10)
	for i, h := range headers {
		pdf.CellFormat(widths[i], 7, h, "1", 0, "L", true, 0, "")
	}
	pdf.Ln(-1)
}

func addDigestQR(pdf *gofpdf.Fpdf, digest string) {
	png, err := DigestQR(digest, 128)
	if err != nil {
		return
	}
	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("digest-qr", opts, bytes.NewReader(png))
	pdf.ImageOptions("digest-qr", 15, pdf.GetY(), 30, 30, false, opts, 0, "")
	pdf.SetY(pdf.GetY() + 32)
	pdf.SetFont("Helvetica", "", 8)
	pdf.MultiCell(0, 4, "sha256 "+digest, "", "L", false)
}
