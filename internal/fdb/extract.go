package fdb

// Extractor carves candidate records out of pages classified as Data.
type Extractor struct {
	policy Policy
}

func NewExtractor(p Policy) *Extractor {
	return &Extractor{policy: p}
}

// Extract takes ownership of the page's buffer, detects the most likely
// record stride, and copies out up to MaxRecordsPerPage records. The buffer
// is released whether or not anything was extracted. A position is accepted
// as a record start whenever at least ExtractMinRemainder bytes remain; no
// deeper validation happens, trading false positives for simplicity.
func (e *Extractor) Extract(page *Page) []Record {
	buf := page.TakeBuffer()
	if len(buf) == 0 {
		return nil
	}
	stride, _ := e.BestStride(buf)
	var records []Record
	for off := 0; off < len(buf); off += stride {
		remain := len(buf) - off
		if remain < e.policy.ExtractMinRemainder {
			break
		}
		n := stride
		if remain < n {
			n = remain
		}
		data := make([]byte, n)
		copy(data, buf[off:off+n])
		records = append(records, Record{
			PageOffset:   page.Offset,
			RecordOffset: off,
			Size:         n,
			Data:         data,
		})
		if len(records) >= e.policy.MaxRecordsPerPage {
			break
		}
	}
	return records
}

// BestStride scores every candidate record size by its repeating-pattern
// count and returns the winner. When nothing scores, the smallest candidate
// is kept at confidence 0 and extraction proceeds anyway; the per-page
// record cap bounds the damage.
func (e *Extractor) BestStride(buf []byte) (size, confidence int) {
	size = e.policy.ExtractMinSize
	for s := e.policy.ExtractMinSize; s <= e.policy.ExtractMaxSize; s += e.policy.ExtractStep {
		if score := patternScore(buf, s); score > confidence {
			confidence = score
			size = s
		}
	}
	return size, confidence
}
