package interfaces

import "context"

// KV is the local key-value storage the stores persist through. Values are
// opaque bytes written and read as a whole.
type KV interface {
	// Get returns the value for key and whether it exists.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Close() error
}
