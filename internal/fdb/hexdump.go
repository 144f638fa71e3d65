package fdb

import (
	"fmt"
	"strings"
)

const DefaultBytesPerLine = 16

// HexDump renders buf in the fixed layout consumed by report and log
// readers: an 8-hex-digit offset, two spaces, the hex byte values separated
// by single spaces with one extra space after the 8th byte, a two-space
// gutter, then the ASCII rendering with '.' for anything outside 0x20..0x7E.
// The layout is a compatibility contract; do not restyle it.
func HexDump(buf []byte, startOffset int64, length, bytesPerLine int) string {
	if bytesPerLine <= 0 {
		bytesPerLine = DefaultBytesPerLine
	}
	if length <= 0 || length > len(buf) {
		length = len(buf)
	}
	var b strings.Builder
	for line := 0; line < length; line += bytesPerLine {
		fmt.Fprintf(&b, "%08X  ", startOffset+int64(line))
		for j := 0; j < bytesPerLine; j++ {
			if j > 0 {
				b.WriteByte(' ')
			}
			if j == 8 && bytesPerLine > 8 {
				b.WriteByte(' ')
			}
			if i := line + j; i < length {
				fmt.Fprintf(&b, "%02X", buf[i])
			} else {
				b.WriteString("  ")
			}
		}
		b.WriteString("  ")
		for j := 0; j < bytesPerLine; j++ {
			i := line + j
			if i >= length {
				break
			}
			if buf[i] >= 0x20 && buf[i] <= 0x7E {
				b.WriteByte(buf[i])
			} else {
				b.WriteByte('.')
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}
