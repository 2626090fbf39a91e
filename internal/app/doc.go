// Package app wires application dependencies for the CLI.
//
// It loads Config (config.yaml under the home directory, overridden by
// flags), builds the storage backend, the identity, contact and message
// services and, on demand, the relay connection and session manager,
// exposing them via the Wire struct for commands to use.
package app
