// Package store provides the local key-value persistence behind saxiib's
// identity, contacts and message history.
//
// Every backend implements domain.KV and stores whole values per key:
//   - FileKV writes one file per key with atomic temp-file renames
//   - BadgerKV keeps all keys in an embedded Badger database
//   - MemoryKV holds values in process memory, for tests and throwaway runs
//   - SealedKV wraps another backend and encrypts selected keys under a
//     passphrase (scrypt + ChaCha20-Poly1305 envelope)
//
// Backend failures are reported as *domain.StorageError. All methods are
// concurrency-safe.
package store
