package metadata

import (
	"encoding/binary"
	"fmt"

	"example.com/fbprobe/internal/fdb"
)

// Candidate header offsets that tend to hold the relation count in
// Firebird-style files. Values outside (0, TableCountMax) are noise.
var tableCountOffsets = []int{0x20, 0x24, 0x28, 0x2C}

const (
	markerDatabaseHeader = 1
	markerPageInventory  = 2
)

// CollectHeaderFacts decodes what a header page's marker suggests it holds
// and records the findings. Malformed bytes at any single offset are
// skipped silently; a short page never fails the scan.
func CollectHeaderFacts(store *Store, page *fdb.Page, buf []byte, policy fdb.Policy) {
	switch page.Marker {
	case markerDatabaseHeader:
		collectTableCounts(store, buf, policy)
	case markerPageInventory:
		collectHeaderStrings(store, page.Number, buf, policy)
	default:
		store.AddInt(fmt.Sprintf("PageMarkerCount_%d", page.Marker), 1)
	}
}

func collectTableCounts(store *Store, buf []byte, policy fdb.Policy) {
	for _, off := range tableCountOffsets {
		if off+4 > len(buf) {
			continue
		}
		v := binary.LittleEndian.Uint32(buf[off : off+4])
		if v > 0 && v < policy.TableCountMax {
			store.Put(fmt.Sprintf("PossibleTableCount_0x%X", off), IntValue(int64(v)))
		}
	}
}

// collectHeaderStrings retains up to MaxHeaderStrings printable runs of at
// least MinHeaderStringLen characters found inside the first
// HeaderStringWindow bytes. Anything beyond the window is never considered.
func collectHeaderStrings(store *Store, pageNumber int, buf []byte, policy fdb.Policy) {
	window := policy.HeaderStringWindow
	if window > len(buf) {
		window = len(buf)
	}
	key := fmt.Sprintf("HeaderStrings_Page%d", pageNumber)
	found := 0
	start := -1
	flush := func(end int) {
		if start < 0 {
			return
		}
		if end-start >= policy.MinHeaderStringLen && found < policy.MaxHeaderStrings {
			store.AppendString(key, string(buf[start:end]), policy.MaxHeaderStrings)
			found++
		}
		start = -1
	}
	for i := 0; i < window; i++ {
		if buf[i] >= 0x20 && buf[i] <= 0x7E {
			if start < 0 {
				start = i
			}
			continue
		}
		flush(i)
		if found >= policy.MaxHeaderStrings {
			return
		}
	}
	flush(window)
}
