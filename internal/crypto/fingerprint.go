package crypto

import (
	"crypto/sha256"
	"encoding/hex"
)

// Fingerprint returns a short hex fingerprint of a public key.
//
// It hashes with SHA-256 and truncates to 10 bytes (20 hex chars).
func Fingerprint(pub []byte) string {
	sum := sha256.Sum256(pub)
	return hex.EncodeToString(sum[:10])
}

// FingerprintText fingerprints a base64 text public key. Keys that do not
// decode are fingerprinted over their text form.
func FingerprintText(publicKey string) string {
	k, err := DecodeKey(publicKey)
	if err != nil {
		return Fingerprint([]byte(publicKey))
	}
	return Fingerprint(k[:])
}
