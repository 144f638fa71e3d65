package metadata

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"example.com/fbprobe/internal/fdb"
)

func TestPutFirstDiscoveryWins(t *testing.T) {
	s := NewStore()
	s.Put("FileSize", IntValue(100))
	s.Put("FileSize", IntValue(999))
	v, ok := s.Get("FileSize")
	if !ok || v.Int != 100 {
		t.Fatalf("got %v, want first value 100", v)
	}
	if s.Len() != 1 {
		t.Fatalf("Len = %d, want 1", s.Len())
	}
}

func TestAddIntTallies(t *testing.T) {
	s := NewStore()
	s.AddInt("PageMarkerCount_5", 1)
	s.AddInt("PageMarkerCount_5", 1)
	s.AddInt("PageMarkerCount_5", 1)
	v, _ := s.Get("PageMarkerCount_5")
	if v.Int != 3 {
		t.Fatalf("tally = %d, want 3", v.Int)
	}
}

func TestAppendStringCap(t *testing.T) {
	s := NewStore()
	for i := 0; i < 20; i++ {
		s.AppendString("HeaderStrings_Page1", "str", 10)
	}
	v, _ := s.Get("HeaderStrings_Page1")
	if len(v.Strings) != 10 {
		t.Fatalf("kept %d strings, want 10", len(v.Strings))
	}
}

func TestKeysInsertionOrder(t *testing.T) {
	s := NewStore()
	s.Put("b", IntValue(1))
	s.Put("a", IntValue(2))
	s.Put("c", StringValue("x"))
	want := []string{"b", "a", "c"}
	if diff := cmp.Diff(want, s.Keys()); diff != "" {
		t.Fatalf("key order (-want +got):\n%s", diff)
	}
}

func TestValueString(t *testing.T) {
	tests := []struct {
		name string
		v    Value
		want string
	}{
		{name: "int", v: IntValue(42), want: "42"},
		{name: "string", v: StringValue("hello"), want: "hello"},
		{name: "strings", v: StringsValue([]string{"a", "b"}), want: "a, b"},
		{
			name: "fields",
			v: FieldsValue([]fdb.Field{
				{Offset: 0, Size: 4, Type: fdb.FieldInteger},
				{Offset: 4, Size: 8, Type: fdb.FieldString},
			}),
			want: "@0 Integer[4] | @4 String[8]",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.v.String(); got != tc.want {
				t.Fatalf("String = %q, want %q", got, tc.want)
			}
		})
	}
}
