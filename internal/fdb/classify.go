package fdb

import "encoding/binary"

// Classifier assigns a page type from raw bytes. Classify is a pure function
// of the buffer and the policy: identical input always yields the identical
// type, and a type is never revised afterwards.
type Classifier struct {
	policy Policy
}

func NewClassifier(p Policy) *Classifier {
	return &Classifier{policy: p}
}

// Classify checks, in order: the header signature, the repeating-pattern
// heuristic, the structured-segment score, and the ascending-index
// heuristic. The signature always wins, regardless of what the other
// heuristics would say about the same bytes.
func (c *Classifier) Classify(buf []byte) PageType {
	if isHeaderPage(buf) {
		return PageHeader
	}
	if c.hasRepeatingPattern(buf) || c.structuredSegments(buf) >= c.policy.SegmentMinCount {
		return PageData
	}
	if c.hasAscendingRun(buf) {
		return PageIndex
	}
	return PageUnknown
}

func isHeaderPage(buf []byte) bool {
	if len(buf) < 4 {
		return false
	}
	if buf[0] > maxHeaderMarker || buf[1] != sigFlags {
		return false
	}
	return binary.LittleEndian.Uint16(buf[2:4]) == sigChecksum
}

// hasRepeatingPattern probes candidate record sizes and reports whether any
// of them shows at least PatternMinMatches repeating 2-byte windows. One
// match is enough: even a single repetition may indicate a table, so false
// positives are the accepted cost.
func (c *Classifier) hasRepeatingPattern(buf []byte) bool {
	for size := c.policy.PatternMinSize; size <= c.policy.PatternMaxSize; size += c.policy.PatternStep {
		if patternScore(buf, size) >= c.policy.PatternMinMatches {
			return true
		}
	}
	return false
}

// patternScore counts non-overlapping windows of the given size whose
// leading 2 bytes reappear at the same position one stride later. All-zero
// 2-byte windows are skipped so blank space cannot match itself.
func patternScore(buf []byte, size int) int {
	if size <= 0 {
		return 0
	}
	matches := 0
	for k := 0; k+size+2 <= len(buf); k += size {
		if buf[k] == 0 && buf[k+1] == 0 {
			continue
		}
		if buf[k] == buf[k+size] && buf[k+1] == buf[k+size+1] {
			matches++
		}
	}
	return matches
}

// structuredSegments counts fixed windows whose leading 8 bytes look
// organized: dense zeros, dense printable ASCII, or mostly ascending
// values. An all-zero page scores the maximum here, which keeps it
// classified as Data rather than Free; that aggressiveness is intentional.
func (c *Classifier) structuredSegments(buf []byte) int {
	w := c.policy.SegmentWindow
	count := 0
	for k := 0; k+w <= len(buf); k += w {
		seg := buf[k : k+8]
		zeros, printable, ascending := 0, 0, 0
		for i := 0; i < 8; i++ {
			if seg[i] == 0 {
				zeros++
			}
			if seg[i] >= 0x20 && seg[i] <= 0x7E {
				printable++
			}
			if i < 7 && seg[i+1] > seg[i] {
				ascending++
			}
		}
		if zeros >= c.policy.SegmentZeroMin ||
			printable >= c.policy.SegmentPrintableMin ||
			ascending >= c.policy.SegmentAscendingMin {
			count++
		}
	}
	return count
}

// hasAscendingRun scans 4-byte-aligned 16-byte windows for runs of
// increasing 32-bit values, the shape of a key pointer array.
func (c *Classifier) hasAscendingRun(buf []byte) bool {
	for k := 0; k+16 <= len(buf); k += 4 {
		ascending := 0
		for i := 0; i < 3; i++ {
			a := binary.LittleEndian.Uint32(buf[k+i*4:])
			b := binary.LittleEndian.Uint32(buf[k+(i+1)*4:])
			if b > a {
				ascending++
			}
		}
		if ascending >= c.policy.IndexAscendingMin {
			return true
		}
	}
	return false
}
