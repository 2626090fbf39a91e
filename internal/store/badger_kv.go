package store

import (
	"context"
	"errors"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/sirupsen/logrus"

	"saxiib/internal/domain"
)

// BadgerOption tunes the embedded database.
type BadgerOption func(*badger.Options)

// WithBadgerLogger routes Badger's internal logs through log.
func WithBadgerLogger(log *logrus.Entry) BadgerOption {
	return func(o *badger.Options) { *o = o.WithLogger(log) }
}

// InMemoryBadger keeps the database off disk.
func InMemoryBadger() BadgerOption {
	return func(o *badger.Options) { *o = o.WithInMemory(true).WithDir("").WithValueDir("") }
}

// BadgerKV stores all keys in one Badger database.
type BadgerKV struct {
	db *badger.DB
}

// OpenBadgerKV opens or creates the database in dir.
func OpenBadgerKV(dir string, opts ...BadgerOption) (*BadgerKV, error) {
	o := badger.DefaultOptions(dir).WithLogger(nil).WithSyncWrites(true)
	for _, opt := range opts {
		opt(&o)
	}
	db, err := badger.Open(o)
	if err != nil {
		return nil, storageErr("open", dir, err)
	}
	return &BadgerKV{db: db}, nil
}

func (s *BadgerKV) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if err := checkKey("get", key); err != nil {
		return nil, false, err
	}
	if err := checkCtx(ctx, "get", key); err != nil {
		return nil, false, err
	}
	var (
		val   []byte
		found bool
	)
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		found = true
		val, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		return nil, false, storageErr("get", key, err)
	}
	return val, found, nil
}

func (s *BadgerKV) Set(ctx context.Context, key string, value []byte) error {
	if err := checkKey("set", key); err != nil {
		return err
	}
	if err := checkCtx(ctx, "set", key); err != nil {
		return err
	}
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), value)
	})
	return storageErr("set", key, err)
}

func (s *BadgerKV) Close() error { return s.db.Close() }

var _ domain.KV = (*BadgerKV)(nil)
