package crypto

import (
	"encoding/base64"
	"fmt"
)

// B64 returns standard base64 encoding without newlines.
func B64(b []byte) string { return base64.StdEncoding.EncodeToString(b) }

// DecodeKey parses a base64 text key into its 32 raw bytes.
func DecodeKey(s string) ([KeySize]byte, error) {
	var out [KeySize]byte
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return out, fmt.Errorf("decode key: %w", err)
	}
	if len(b) != KeySize {
		return out, fmt.Errorf("decode key: want %d bytes, got %d", KeySize, len(b))
	}
	copy(out[:], b)
	return out, nil
}
