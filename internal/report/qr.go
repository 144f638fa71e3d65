package report

import (
	"encoding/hex"
	"fmt"
	"strings"

	qrcode "github.com/skip2/go-qrcode"
)

// DigestQR creates a QR code PNG encoding the scanned file's hex digest.
// The digest must be valid hex; a malformed one is rejected rather than
// silently cleaned up, so a report can never carry a QR that does not match
// its input file.
func DigestQR(digest string, size int) ([]byte, error) {
	normalized := strings.ToLower(strings.TrimSpace(digest))
	if normalized == "" {
		return nil, fmt.Errorf("digest is empty")
	}
	if _, err := hex.DecodeString(normalized); err != nil {
		return nil, fmt.Errorf("digest is not hex: %w", err)
	}
	if size <= 0 {
		size = 128
	}
	return qrcode.Encode("sha256:"+normalized, qrcode.Medium, size)
}
