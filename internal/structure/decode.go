package structure

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"math"
	"strings"
	"time"

	"example.com/fbprobe/internal/fdb"
)

// Dates count days from 17 November 1858, Modified Julian Day zero; times
// count ten-thousandths of a second since midnight.
var mjdEpoch = time.Date(1858, time.November, 17, 0, 0, 0, 0, time.UTC)

const maxBinaryPreview = 16

// DecodeValue renders one field of a record for inspection, choosing the
// decoder by the field's type tag. Values are little-endian.
func DecodeValue(f fdb.Field, record []byte) string {
	if f.Offset < 0 || f.Offset >= len(record) {
		return ""
	}
	end := f.Offset + f.Size
	if end > len(record) {
		end = len(record)
	}
	data := record[f.Offset:end]

	switch f.Type {
	case fdb.FieldInteger:
		switch {
		case len(data) >= 8:
			return fmt.Sprintf("%d", int64(binary.LittleEndian.Uint64(data)))
		case len(data) >= 4:
			return fmt.Sprintf("%d", int32(binary.LittleEndian.Uint32(data)))
		case len(data) >= 2:
			return fmt.Sprintf("%d", int16(binary.LittleEndian.Uint16(data)))
		default:
			return fmt.Sprintf("%d", data[0])
		}
	case fdb.FieldFloat:
		switch {
		case len(data) >= 8:
			return fmt.Sprintf("%g", math.Float64frombits(binary.LittleEndian.Uint64(data)))
		case len(data) >= 4:
			return fmt.Sprintf("%g", math.Float32frombits(binary.LittleEndian.Uint32(data)))
		default:
			return hex.EncodeToString(data)
		}
	case fdb.FieldDateTime:
		return decodeTimestamp(data)
	case fdb.FieldBoolean:
		if data[0] != 0 {
			return "true"
		}
		return "false"
	case fdb.FieldString:
		return decodeString(data)
	default:
		if len(data) > maxBinaryPreview {
			return hex.EncodeToString(data[:maxBinaryPreview]) + ".."
		}
		return hex.EncodeToString(data)
	}
}

func decodeTimestamp(data []byte) string {
	if len(data) < 4 {
		return hex.EncodeToString(data)
	}
	days := int32(binary.LittleEndian.Uint32(data))
	date := mjdEpoch.AddDate(0, 0, int(days))
	if len(data) < 8 {
		return date.Format("2006-01-02")
	}
	frac := int32(binary.LittleEndian.Uint32(data[4:]))
	ts := date.Add(time.Duration(frac) * 100 * time.Microsecond)
	return ts.Format("2006-01-02 15:04:05")
}

func decodeString(data []byte) string {
	trimmed := data
	for len(trimmed) > 0 && trimmed[len(trimmed)-1] == 0 {
		trimmed = trimmed[:len(trimmed)-1]
	}
	var b strings.Builder
	for _, c := range trimmed {
		if c >= 0x20 && c <= 0x7E {
			b.WriteByte(c)
		} else {
			b.WriteByte('.')
		}
	}
	return b.String()
}

// DecodeSample renders every field of one record, typically the first of a
// cohort, for the scan log.
func DecodeSample(fields []fdb.Field, record []byte) []string {
	if len(fields) == 0 {
		return nil
	}
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		out = append(out, fmt.Sprintf("@%d %s[%d] = %s", f.Offset, f.Type, f.Size, DecodeValue(f, record)))
	}
	return out
}
