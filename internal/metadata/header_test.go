package metadata

import (
	"encoding/binary"
	"fmt"
	"testing"

	"example.com/fbprobe/internal/fdb"
)

func TestCollectTableCountCandidates(t *testing.T) {
	buf := make([]byte, 4096)
	binary.LittleEndian.PutUint32(buf[0x20:], 12)   // plausible
	binary.LittleEndian.PutUint32(buf[0x24:], 0)    // zero is noise
	binary.LittleEndian.PutUint32(buf[0x28:], 5000) // above the cap
	binary.LittleEndian.PutUint32(buf[0x2C:], 999)  // just inside

	store := NewStore()
	page := &fdb.Page{Number: 0, Marker: 1, Type: fdb.PageHeader}
	CollectHeaderFacts(store, page, buf, fdb.DefaultPolicy())

	if v, ok := store.Get("PossibleTableCount_0x20"); !ok || v.Int != 12 {
		t.Fatalf("candidate at 0x20 = %v, %v; want 12", v, ok)
	}
	if _, ok := store.Get("PossibleTableCount_0x24"); ok {
		t.Fatal("zero value must not become a candidate")
	}
	if _, ok := store.Get("PossibleTableCount_0x28"); ok {
		t.Fatal("value above cap must not become a candidate")
	}
	if v, ok := store.Get("PossibleTableCount_0x2C"); !ok || v.Int != 999 {
		t.Fatalf("candidate at 0x2C = %v, %v; want 999", v, ok)
	}
}

func TestCollectTableCountsShortPage(t *testing.T) {
	store := NewStore()
	page := &fdb.Page{Number: 0, Marker: 1, Type: fdb.PageHeader}
	// Too short for any candidate offset; must not panic or record facts.
	CollectHeaderFacts(store, page, make([]byte, 0x10), fdb.DefaultPolicy())
	if store.Len() != 0 {
		t.Fatalf("short page produced %d facts, want 0", store.Len())
	}
}

func TestHeaderStringCapAndWindow(t *testing.T) {
	buf := make([]byte, 4096)
	// 50 distinct printable runs inside the first 1024 bytes, separated by
	// zero bytes.
	for i := 0; i < 50; i++ {
		copy(buf[i*20:], fmt.Sprintf("RUN%02d", i))
	}
	// A run beyond the 1024-byte window must never be returned.
	copy(buf[2000:], "BEYOND")

	store := NewStore()
	page := &fdb.Page{Number: 3, Marker: 2, Type: fdb.PageHeader}
	CollectHeaderFacts(store, page, buf, fdb.DefaultPolicy())

	v, ok := store.Get("HeaderStrings_Page3")
	if !ok {
		t.Fatal("no header strings recorded")
	}
	if len(v.Strings) != 10 {
		t.Fatalf("kept %d strings, want 10", len(v.Strings))
	}
	for _, s := range v.Strings {
		if s == "BEYOND" {
			t.Fatal("string beyond the window must not be returned")
		}
	}
	if v.Strings[0] != "RUN00" {
		t.Fatalf("first string = %q, want RUN00", v.Strings[0])
	}
}

func TestShortRunsIgnored(t *testing.T) {
	buf := make([]byte, 4096)
	copy(buf[0:], "ab")     // below minimum length
	copy(buf[10:], "okay")  // long enough
	store := NewStore()
	page := &fdb.Page{Number: 1, Marker: 2, Type: fdb.PageHeader}
	CollectHeaderFacts(store, page, buf, fdb.DefaultPolicy())
	v, _ := store.Get("HeaderStrings_Page1")
	if len(v.Strings) != 1 || v.Strings[0] != "okay" {
		t.Fatalf("strings = %v, want [okay]", v.Strings)
	}
}

func TestOtherMarkersAreTallied(t *testing.T) {
	store := NewStore()
	policy := fdb.DefaultPolicy()
	for i := 0; i < 3; i++ {
		page := &fdb.Page{Number: i, Marker: 5, Type: fdb.PageHeader}
		CollectHeaderFacts(store, page, make([]byte, 64), policy)
	}
	v, ok := store.Get("PageMarkerCount_5")
	if !ok || v.Int != 3 {
		t.Fatalf("marker tally = %v, %v; want 3", v, ok)
	}
}
