package contacts_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"saxiib/internal/domain"
	"saxiib/internal/services/contacts"
	"saxiib/internal/store"
)

type brokenKV struct{ domain.KV }

func (brokenKV) Set(context.Context, string, []byte) error {
	return &domain.StorageError{Op: "set", Key: contacts.StorageKey, Err: errors.New("disk full")}
}

func load(t *testing.T, kv domain.KV) *contacts.Directory {
	t.Helper()
	d := contacts.New(kv)
	require.NoError(t, d.Load(context.Background()))
	return d
}

func TestDirectory_UpsertIsIdempotent(t *testing.T) {
	ctx := context.Background()
	d := load(t, store.NewMemoryKV())

	c := domain.Contact{ID: "peer1", DisplayName: "Bea", PublicKey: "k1"}
	require.NoError(t, d.Upsert(ctx, c))
	once := d.List()
	require.NoError(t, d.Upsert(ctx, c))
	assert.Equal(t, once, d.List())
	assert.Len(t, d.List(), 1)
}

func TestDirectory_UpsertOverwritesFields(t *testing.T) {
	ctx := context.Background()
	mock := clock.NewMock()
	mock.Set(time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC))
	d := contacts.New(store.NewMemoryKV(), contacts.WithClock(mock))

	require.NoError(t, d.Upsert(ctx, domain.Contact{ID: "peer1", DisplayName: "Bea", PublicKey: "k1"}))
	mock.Add(time.Hour)
	require.NoError(t, d.Upsert(ctx, domain.Contact{ID: "peer1", DisplayName: "Beatrix", PublicKey: "k2"}))

	got, ok := d.Get("peer1")
	require.True(t, ok)
	assert.Equal(t, "Beatrix", got.DisplayName)
	assert.Equal(t, "k2", got.PublicKey)
	assert.Equal(t, time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC), got.AddedAt)
}

func TestDirectory_ListOrder(t *testing.T) {
	ctx := context.Background()
	d := load(t, store.NewMemoryKV())

	for _, c := range []domain.Contact{
		{ID: "c", DisplayName: "bob"},
		{ID: "a", DisplayName: "Zed"},
		{ID: "b", DisplayName: "Bob"},
	} {
		require.NoError(t, d.Upsert(ctx, c))
	}
	var ids []domain.PeerID
	for _, c := range d.List() {
		ids = append(ids, c.ID)
	}
	assert.Equal(t, []domain.PeerID{"b", "c", "a"}, ids)
}

func TestDirectory_DeleteSurvivesReload(t *testing.T) {
	ctx := context.Background()
	kv, err := store.NewFileKV(t.TempDir())
	require.NoError(t, err)

	d := load(t, kv)
	require.NoError(t, d.Upsert(ctx, domain.Contact{ID: "peer1", DisplayName: "Bea", PublicKey: "k"}))
	require.NoError(t, d.Upsert(ctx, domain.Contact{ID: "peer2", DisplayName: "Cal", PublicKey: "k"}))
	require.NoError(t, d.Delete(ctx, "peer1"))

	for _, c := range d.List() {
		assert.NotEqual(t, domain.PeerID("peer1"), c.ID)
	}

	reloaded := load(t, kv)
	list := reloaded.List()
	require.Len(t, list, 1)
	assert.Equal(t, domain.PeerID("peer2"), list[0].ID)

	require.NoError(t, reloaded.Delete(ctx, "unknown"))
}

func TestDirectory_FailedWriteKeepsView(t *testing.T) {
	ctx := context.Background()
	inner := store.NewMemoryKV()
	d := load(t, inner)
	require.NoError(t, d.Upsert(ctx, domain.Contact{ID: "peer1", DisplayName: "Bea"}))

	broken := contacts.New(brokenKV{inner})
	require.NoError(t, broken.Load(ctx))

	err := broken.Upsert(ctx, domain.Contact{ID: "peer2", DisplayName: "Cal"})
	var se *domain.StorageError
	require.ErrorAs(t, err, &se)
	_, ok := broken.Get("peer2")
	assert.False(t, ok)

	require.Error(t, broken.Delete(ctx, "peer1"))
	_, ok = broken.Get("peer1")
	assert.True(t, ok)
}

func TestDirectory_LoadToleratesDuplicates(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemoryKV()
	require.NoError(t, kv.Set(ctx, contacts.StorageKey, []byte(
		`[{"id":"p","name":"old","publicKey":"k"},{"id":"p","name":"new","publicKey":"k"}]`)))

	d := load(t, kv)
	got, ok := d.Get("p")
	require.True(t, ok)
	assert.Equal(t, "new", got.DisplayName)
}

func TestDirectory_RejectsEmptyID(t *testing.T) {
	d := load(t, store.NewMemoryKV())
	assert.ErrorIs(t, d.Upsert(context.Background(), domain.Contact{DisplayName: "x"}), contacts.ErrInvalidContact)
}
