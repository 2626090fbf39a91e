package store

import (
	"context"
	"os"
	"path/filepath"
	"sync"

	"saxiib/internal/domain"
)

const fileSuffix = ".json"

// FileKV stores each key as its own file under dir.
type FileKV struct {
	dir string
	mu  sync.Mutex
}

// NewFileKV returns a FileKV rooted at dir, creating the directory if needed.
func NewFileKV(dir string) (*FileKV, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, storageErr("open", dir, err)
	}
	return &FileKV{dir: dir}, nil
}

func (s *FileKV) path(key string) string { return filepath.Join(s.dir, key+fileSuffix) }

// Get reads the value stored under key.
func (s *FileKV) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if err := checkKey("get", key); err != nil {
		return nil, false, err
	}
	if err := checkCtx(ctx, "get", key); err != nil {
		return nil, false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := readFile(s.path(key))
	if err != nil {
		return nil, false, storageErr("get", key, err)
	}
	if b == nil {
		return nil, false, nil
	}
	return b, true, nil
}

// Set replaces the value stored under key.
func (s *FileKV) Set(ctx context.Context, key string, value []byte) error {
	if err := checkKey("set", key); err != nil {
		return err
	}
	if err := checkCtx(ctx, "set", key); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	return storageErr("set", key, writeFile(s.path(key), value, 0o600))
}

// Close is a no-op; files are closed after every write.
func (s *FileKV) Close() error { return nil }

var _ domain.KV = (*FileKV)(nil)
