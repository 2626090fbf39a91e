// Package contacts keeps the local directory of known peers.
//
// The directory is loaded once at start and mirrored in memory; every
// mutation persists the whole set under the "contacts" key before the
// in-memory view changes.
package contacts
