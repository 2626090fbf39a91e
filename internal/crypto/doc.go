// Package crypto exposes the minimal primitives used by saxiib.
//
// Contents
//
//   - X25519 key pair generation in NaCl box form (GenerateKeyPair)
//   - Recovering the public half from a stored secret (PublicFromSecret)
//   - Base64 text encoding of keys (B64, DecodeKey)
//   - Short public-key fingerprints for display/logging (Fingerprint)
//
// # Notes
//
// Keys are text-encoded as standard base64 of the 32 raw bytes so they can be
// placed directly into a contact card.
package crypto
