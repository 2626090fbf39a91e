// Package identity creates, loads and edits the local user's identity.
//
// The identity is created lazily on first use: a fresh X25519 key pair, an id
// derived from the creation time plus random suffix, and a default display
// name. It is persisted under the "identity" key and cached for the life of
// the service, so repeated calls return the same record.
package identity
