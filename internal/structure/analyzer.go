package structure

import (
	"sort"

	"example.com/fbprobe/internal/fdb"
)

// Cohort is the structural result for all extracted records sharing one
// size. Cohorts smaller than the policy minimum are reported but not
// decomposed: Fields and Sample stay nil.
type Cohort struct {
	Size   int
	Count  int
	Fields []fdb.Field
	Sample []string
}

// Analyzer infers field boundaries and per-field types from per-byte-position
// statistics across a cohort. It runs once, after the whole scan.
type Analyzer struct {
	policy fdb.Policy
}

func NewAnalyzer(p fdb.Policy) *Analyzer {
	return &Analyzer{policy: p}
}

// Analyze groups records by size and decomposes every cohort that has at
// least MinCohort members. Results are ordered by record size.
func (a *Analyzer) Analyze(records []fdb.Record) []Cohort {
	bySize := make(map[int][][]byte)
	for _, rec := range records {
		bySize[rec.Size] = append(bySize[rec.Size], rec.Data)
	}
	sizes := make([]int, 0, len(bySize))
	for size := range bySize {
		sizes = append(sizes, size)
	}
	sort.Ints(sizes)

	cohorts := make([]Cohort, 0, len(sizes))
	for _, size := range sizes {
		rows := bySize[size]
		cohort := Cohort{Size: size, Count: len(rows)}
		if len(rows) >= a.policy.MinCohort {
			cohort.Fields = a.InferFields(rows, size)
			cohort.Sample = DecodeSample(cohort.Fields, rows[0])
		}
		cohorts = append(cohorts, cohort)
	}
	return cohorts
}

// InferFields walks every byte position of the cohort, tags it by value
// statistics, and declares field boundaries. Position 0 is always a
// boundary; a later position starts a field when the previous position was
// constant across the cohort while this one varies, or when this position
// is zero in most records. Field sizes are derived as the gap to the next
// boundary.
func (a *Analyzer) InferFields(rows [][]byte, size int) []fdb.Field {
	if len(rows) == 0 || size <= 0 {
		return nil
	}
	types := make([]fdb.FieldType, size)
	distinct := make([]int, size)
	zeroRatio := make([]float64, size)

	for p := 0; p < size; p++ {
		var seen [256]bool
		zeros, digits, printable, n := 0, 0, 0, 0
		for _, row := range rows {
			if p >= len(row) {
				continue
			}
			b := row[p]
			n++
			if !seen[b] {
				seen[b] = true
				distinct[p]++
			}
			if b == 0 {
				zeros++
			}
			if b >= '0' && b <= '9' {
				digits++
			}
			if b >= 0x20 && b <= 0x7E {
				printable++
			}
		}
		if n == 0 {
			types[p] = fdb.FieldBinary
			continue
		}
		zeroRatio[p] = float64(zeros) / float64(n)
		switch {
		case float64(printable)/float64(n) > a.policy.StringRatio:
			types[p] = fdb.FieldString
		case float64(digits)/float64(n) > a.policy.DigitRatio || zeroRatio[p] > a.policy.ZeroRatio:
			types[p] = fdb.FieldInteger
		default:
			types[p] = fdb.FieldBinary
		}
	}

	var fields []fdb.Field
	for p := 0; p < size; p++ {
		boundary := p == 0 ||
			(distinct[p-1] == 1 && distinct[p] > 1) ||
			zeroRatio[p] > a.policy.BoundaryZeroRatio
		if boundary {
			fields = append(fields, fdb.Field{Offset: p, Type: types[p]})
		}
	}
	for i := range fields {
		if i+1 < len(fields) {
			fields[i].Size = fields[i+1].Offset - fields[i].Offset
		} else {
			fields[i].Size = size - fields[i].Offset
		}
	}
	return fields
}
