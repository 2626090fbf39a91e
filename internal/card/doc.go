// Package card converts contact cards to and from the text carried in a QR
// code, renders that text as a PNG, and runs a scan session that turns
// recognised codes into directory entries.
//
// The wire form is a compact JSON object:
//
//	{"id":"user_1712345678901_k3j9x0a1b","name":"User_user_171","publicKey":"<base64>"}
//
// Decoding is tolerant of extra fields but requires all three of id, name
// and publicKey to be non-empty strings.
package card
