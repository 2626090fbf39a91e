package store

import (
	"context"
	"errors"
	"fmt"

	"saxiib/internal/domain"
)

// Backend names accepted by Open.
const (
	BackendFile   = "file"
	BackendBadger = "badger"
	BackendMemory = "memory"
)

// ErrInvalidKey is returned for keys that are empty or not a plain name.
var ErrInvalidKey = errors.New("invalid storage key")

// Open returns the backend named kind rooted at dir.
func Open(kind, dir string, opts ...BadgerOption) (domain.KV, error) {
	switch kind {
	case "", BackendFile:
		return NewFileKV(dir)
	case BackendBadger:
		return OpenBadgerKV(dir, opts...)
	case BackendMemory:
		return NewMemoryKV(), nil
	}
	return nil, fmt.Errorf("unknown store backend %q", kind)
}

// validKey accepts lower-case names made of [a-z0-9._-] not starting with a dot.
func validKey(key string) bool {
	if key == "" || key[0] == '.' {
		return false
	}
	for _, r := range key {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '.', r == '_', r == '-':
		default:
			return false
		}
	}
	return true
}

func storageErr(op, key string, err error) error {
	if err == nil {
		return nil
	}
	return &domain.StorageError{Op: op, Key: key, Err: err}
}

func checkKey(op, key string) error {
	if !validKey(key) {
		return storageErr(op, key, ErrInvalidKey)
	}
	return nil
}

func checkCtx(ctx context.Context, op, key string) error {
	return storageErr(op, key, ctx.Err())
}
