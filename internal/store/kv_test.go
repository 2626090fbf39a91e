package store_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"saxiib/internal/domain"
	"saxiib/internal/store"
)

func backends(t *testing.T) map[string]func(dir string) domain.KV {
	t.Helper()
	return map[string]func(dir string) domain.KV{
		"file": func(dir string) domain.KV {
			kv, err := store.NewFileKV(dir)
			require.NoError(t, err)
			return kv
		},
		"badger": func(dir string) domain.KV {
			kv, err := store.OpenBadgerKV(dir)
			require.NoError(t, err)
			return kv
		},
	}
}

func TestKV_SetGet_PersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()

			kv := open(dir)
			_, ok, err := kv.Get(ctx, "contacts")
			require.NoError(t, err)
			assert.False(t, ok)

			require.NoError(t, kv.Set(ctx, "contacts", []byte(`[1]`)))
			require.NoError(t, kv.Set(ctx, "contacts", []byte(`[1,2]`)))
			require.NoError(t, kv.Close())

			kv = open(dir)
			defer kv.Close()
			got, ok, err := kv.Get(ctx, "contacts")
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, `[1,2]`, string(got))
		})
	}
}

func TestKV_RejectsPathLikeKeys(t *testing.T) {
	kv, err := store.NewFileKV(t.TempDir())
	require.NoError(t, err)

	for _, key := range []string{"", "../escape", ".hidden", "a/b", "Upper"} {
		err := kv.Set(context.Background(), key, []byte("x"))
		var se *domain.StorageError
		require.ErrorAs(t, err, &se, key)
		assert.ErrorIs(t, err, store.ErrInvalidKey)
	}
}

func TestFileKV_WritesOneFilePerKey(t *testing.T) {
	dir := t.TempDir()
	kv, err := store.NewFileKV(dir)
	require.NoError(t, err)

	require.NoError(t, kv.Set(context.Background(), "messages", []byte(`[]`)))

	info, err := os.Stat(filepath.Join(dir, "messages.json"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	leftovers, err := filepath.Glob(filepath.Join(dir, "*.tmp-*"))
	require.NoError(t, err)
	assert.Empty(t, leftovers)
}

func TestMemoryKV_CopiesValues(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemoryKV()

	v := []byte("abc")
	require.NoError(t, kv.Set(ctx, "k", v))
	v[0] = 'z'

	got, ok, err := kv.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "abc", string(got))

	require.NoError(t, kv.Close())
	_, _, err = kv.Get(ctx, "k")
	assert.Error(t, err)
}

func TestSealedKV_EncryptsSelectedKeys(t *testing.T) {
	ctx := context.Background()
	inner := store.NewMemoryKV()
	kv := store.NewSealedKV(inner, "correct horse", []string{"identity"}, store.WithScryptParams(1<<10, 8, 1))

	require.NoError(t, kv.Set(ctx, "identity", []byte(`{"id":"me"}`)))
	require.NoError(t, kv.Set(ctx, "contacts", []byte(`[]`)))

	raw, ok, err := inner.Get(ctx, "identity")
	require.NoError(t, err)
	require.True(t, ok)
	assert.NotContains(t, string(raw), `"me"`)

	raw, _, err = inner.Get(ctx, "contacts")
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(raw))

	got, ok, err := kv.Get(ctx, "identity")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, `{"id":"me"}`, string(got))
}

func TestSealedKV_WrongPassphrase(t *testing.T) {
	ctx := context.Background()
	inner := store.NewMemoryKV()
	good := store.NewSealedKV(inner, "right", []string{"identity"}, store.WithScryptParams(1<<10, 8, 1))
	require.NoError(t, good.Set(ctx, "identity", []byte("secret")))

	bad := store.NewSealedKV(inner, "wrong", []string{"identity"})
	_, _, err := bad.Get(ctx, "identity")
	require.Error(t, err)
	assert.True(t, errors.Is(err, store.ErrWrongPassphrase))
}

func TestOpen_UnknownBackend(t *testing.T) {
	_, err := store.Open("floppy", t.TempDir())
	assert.Error(t, err)
}
