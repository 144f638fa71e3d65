package structure

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"example.com/fbprobe/internal/fdb"
)

// Ten records of size 20: byte 0 is a constant 0xFF marker, bytes 1..3 vary
// per record, the rest is zero. Structure analysis must report a field at
// offset 0 and a new boundary at offset 1.
func TestInferFieldsConstantThenVarying(t *testing.T) {
	rows := make([][]byte, 10)
	for i := range rows {
		row := make([]byte, 20)
		row[0] = 0xFF
		row[1] = byte(0x80 + i)
		row[2] = byte(0x81 + i*3)
		row[3] = byte(0x82 + i*7)
		rows[i] = row
	}
	a := NewAnalyzer(fdb.DefaultPolicy())
	fields := a.InferFields(rows, 20)
	if len(fields) < 2 {
		t.Fatalf("inferred %d fields, want at least 2", len(fields))
	}
	if fields[0].Offset != 0 {
		t.Fatalf("first field offset = %d, want 0", fields[0].Offset)
	}
	if fields[1].Offset != 1 {
		t.Fatalf("second field offset = %d, want boundary at 1", fields[1].Offset)
	}
	if fields[0].Size != 1 {
		t.Fatalf("first field size = %d, want 1", fields[0].Size)
	}

	// Sizes are derived: each field spans to the next boundary and the last
	// one reaches the record end.
	total := 0
	for _, f := range fields {
		total += f.Size
	}
	if total != 20 {
		t.Fatalf("field sizes sum to %d, want 20", total)
	}
}

func TestInferFieldsTypeTags(t *testing.T) {
	rows := make([][]byte, 8)
	for i := range rows {
		row := make([]byte, 12)
		copy(row[0:4], []byte{'n', 'a', 'm', 'e'})
		copy(row[4:8], []byte{'0' + byte(i), '1', '2', '3'})
		row[8] = byte(0x8F + i)
		row[9] = 0xC0
		row[10] = 0xC1
		row[11] = 0xC2
		rows[i] = row
	}
	a := NewAnalyzer(fdb.DefaultPolicy())
	fields := a.InferFields(rows, 12)
	if fields[0].Type != fdb.FieldString {
		t.Fatalf("field at 0 tagged %v, want String", fields[0].Type)
	}
	var at8 *fdb.Field
	for i := range fields {
		if fields[i].Offset == 8 {
			at8 = &fields[i]
		}
	}
	if at8 == nil {
		t.Fatal("no field boundary at offset 8")
	}
	if at8.Type != fdb.FieldBinary {
		t.Fatalf("field at 8 tagged %v, want Binary", at8.Type)
	}
}

func TestAnalyzeCohortMinimum(t *testing.T) {
	var records []fdb.Record
	for i := 0; i < 4; i++ {
		records = append(records, fdb.Record{Size: 24, Data: make([]byte, 24)})
	}
	for i := 0; i < 6; i++ {
		data := make([]byte, 32)
		data[0] = 0xEE
		data[1] = byte(0x90 + i)
		records = append(records, fdb.Record{Size: 32, Data: data})
	}

	a := NewAnalyzer(fdb.DefaultPolicy())
	cohorts := a.Analyze(records)
	if len(cohorts) != 2 {
		t.Fatalf("got %d cohorts, want 2", len(cohorts))
	}

	small := cohorts[0]
	if small.Size != 24 || small.Count != 4 {
		t.Fatalf("small cohort = {%d, %d}, want {24, 4}", small.Size, small.Count)
	}
	if small.Fields != nil {
		t.Fatal("cohort below minimum must not be decomposed")
	}

	large := cohorts[1]
	if large.Size != 32 || large.Count != 6 {
		t.Fatalf("large cohort = {%d, %d}, want {32, 6}", large.Size, large.Count)
	}
	if len(large.Fields) == 0 {
		t.Fatal("cohort above minimum must be decomposed")
	}
	if len(large.Sample) != len(large.Fields) {
		t.Fatalf("sample has %d entries for %d fields", len(large.Sample), len(large.Fields))
	}
}

func TestAnalyzeDeterministic(t *testing.T) {
	var records []fdb.Record
	for i := 0; i < 12; i++ {
		data := make([]byte, 16)
		for j := range data {
			data[j] = byte(i*13 + j*7)
		}
		records = append(records, fdb.Record{Size: 16, Data: data})
	}
	a := NewAnalyzer(fdb.DefaultPolicy())
	first := a.Analyze(records)
	second := a.Analyze(records)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("analysis not deterministic (-first +second):\n%s", diff)
	}
}
