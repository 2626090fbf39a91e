package store

import (
	"context"

	"saxiib/internal/domain"
)

// SealedKV encrypts the values of selected keys before handing them to the
// wrapped backend. Other keys pass through unchanged.
type SealedKV struct {
	inner      domain.KV
	passphrase string
	sealed     map[string]bool
	n, r, p    int
}

// SealedOption tunes a SealedKV.
type SealedOption func(*SealedKV)

// WithScryptParams overrides the key-derivation cost for newly sealed values.
func WithScryptParams(n, r, p int) SealedOption {
	return func(s *SealedKV) { s.n, s.r, s.p = n, r, p }
}

// NewSealedKV wraps inner and seals the values stored under keys.
func NewSealedKV(inner domain.KV, passphrase string, keys []string, opts ...SealedOption) *SealedKV {
	s := &SealedKV{inner: inner, passphrase: passphrase, sealed: make(map[string]bool, len(keys))}
	s.n, s.r, s.p = scryptParamsDefault()
	for _, k := range keys {
		s.sealed[k] = true
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *SealedKV) Get(ctx context.Context, key string) ([]byte, bool, error) {
	b, ok, err := s.inner.Get(ctx, key)
	if err != nil || !ok || !s.sealed[key] {
		return b, ok, err
	}
	pt, err := decrypt(s.passphrase, b)
	if err != nil {
		return nil, false, storageErr("open", key, err)
	}
	return pt, true, nil
}

func (s *SealedKV) Set(ctx context.Context, key string, value []byte) error {
	if !s.sealed[key] {
		return s.inner.Set(ctx, key, value)
	}
	ct, err := encrypt(s.passphrase, value, s.n, s.r, s.p)
	if err != nil {
		return storageErr("seal", key, err)
	}
	return s.inner.Set(ctx, key, ct)
}

func (s *SealedKV) Close() error { return s.inner.Close() }

var _ domain.KV = (*SealedKV)(nil)
