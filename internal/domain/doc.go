// Package domain defines the data models and contracts shared across saxiib.
// It holds plain types (profile, contacts, messages, frames) and interfaces
// (storage, peer network, services) plus the error taxonomy.
package domain
