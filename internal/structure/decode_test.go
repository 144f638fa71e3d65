package structure

import (
	"encoding/binary"
	"testing"

	"example.com/fbprobe/internal/fdb"
)

func TestDecodeValue(t *testing.T) {
	i32 := make([]byte, 4)
	binary.LittleEndian.PutUint32(i32, 0xFFFFFFFE) // -2

	i16 := []byte{0x39, 0x30} // 12345

	f64 := make([]byte, 8)
	binary.LittleEndian.PutUint64(f64, 0x3FF8000000000000) // 1.5

	// 2020-01-01 12:00:00: Modified Julian Day 58849 plus 43200 seconds in
	// ten-thousandths.
	ts := make([]byte, 8)
	binary.LittleEndian.PutUint32(ts[0:], 58849)
	binary.LittleEndian.PutUint32(ts[4:], 43200*10000)

	tests := []struct {
		name  string
		field fdb.Field
		data  []byte
		want  string
	}{
		{name: "int32", field: fdb.Field{Offset: 0, Size: 4, Type: fdb.FieldInteger}, data: i32, want: "-2"},
		{name: "int16", field: fdb.Field{Offset: 0, Size: 2, Type: fdb.FieldInteger}, data: i16, want: "12345"},
		{name: "byte", field: fdb.Field{Offset: 0, Size: 1, Type: fdb.FieldInteger}, data: []byte{0x07}, want: "7"},
		{name: "float64", field: fdb.Field{Offset: 0, Size: 8, Type: fdb.FieldFloat}, data: f64, want: "1.5"},
		{name: "timestamp", field: fdb.Field{Offset: 0, Size: 8, Type: fdb.FieldDateTime}, data: ts, want: "2020-01-01 12:00:00"},
		{name: "date only", field: fdb.Field{Offset: 0, Size: 4, Type: fdb.FieldDateTime}, data: ts[:4], want: "2020-01-01"},
		{name: "string trims trailing zeros", field: fdb.Field{Offset: 0, Size: 8, Type: fdb.FieldString}, data: []byte{'a', 'b', 'c', 0x01, 0x00, 0x00, 0x00, 0x00}, want: "abc."},
		{name: "boolean true", field: fdb.Field{Offset: 0, Size: 1, Type: fdb.FieldBoolean}, data: []byte{0x01}, want: "true"},
		{name: "boolean false", field: fdb.Field{Offset: 0, Size: 1, Type: fdb.FieldBoolean}, data: []byte{0x00}, want: "false"},
		{name: "binary hex", field: fdb.Field{Offset: 0, Size: 3, Type: fdb.FieldBinary}, data: []byte{0xDE, 0xAD, 0xBE}, want: "deadbe"},
		{name: "offset inside record", field: fdb.Field{Offset: 2, Size: 2, Type: fdb.FieldInteger}, data: []byte{0x00, 0x00, 0x39, 0x30}, want: "12345"},
		{name: "offset past record", field: fdb.Field{Offset: 9, Size: 2, Type: fdb.FieldInteger}, data: []byte{0x00}, want: ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := DecodeValue(tc.field, tc.data); got != tc.want {
				t.Fatalf("DecodeValue = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestDecodeBinaryPreviewCap(t *testing.T) {
	data := make([]byte, 40)
	got := DecodeValue(fdb.Field{Offset: 0, Size: 40, Type: fdb.FieldBinary}, data)
	want := "00000000000000000000000000000000.."
	if got != want {
		t.Fatalf("preview = %q, want %q", got, want)
	}
}
