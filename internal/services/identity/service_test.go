package identity_test

import (
	"context"
	"encoding/json"
	"errors"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"saxiib/internal/card"
	"saxiib/internal/crypto"
	"saxiib/internal/domain"
	"saxiib/internal/services/identity"
	"saxiib/internal/store"
)

var idPattern = regexp.MustCompile(`^user_\d+_[0-9a-z]{9}$`)

type failingKV struct{ domain.KV }

func (failingKV) Set(context.Context, string, []byte) error {
	return &domain.StorageError{Op: "set", Key: identity.StorageKey, Err: errors.New("read-only")}
}

func newMockClock() *clock.Mock {
	c := clock.NewMock()
	c.Set(time.UnixMilli(1712345678901))
	return c
}

func TestGetOrCreateIdentity_IsStable(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemoryKV()
	svc := identity.New(kv, identity.WithClock(newMockClock()))

	first, err := svc.GetOrCreateIdentity(ctx)
	require.NoError(t, err)
	second, err := svc.GetOrCreateIdentity(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	assert.Regexp(t, idPattern, string(first.ID))
	assert.Contains(t, string(first.ID), "1712345678901")
	assert.Equal(t, "User_user_171", first.DisplayName)
	require.NoError(t, crypto.CheckKeyPair(first.PublicKey, first.SecretKey))

	// a fresh service over the same storage sees the same identity
	reloaded, err := identity.New(kv).GetOrCreateIdentity(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, reloaded)
}

func TestGetOrCreateIdentity_CardMatchesProfile(t *testing.T) {
	id, err := identity.New(store.NewMemoryKV()).GetOrCreateIdentity(context.Background())
	require.NoError(t, err)

	c, err := card.Decode(id.Card)
	require.NoError(t, err)
	assert.Equal(t, id.ContactCard(), c.Card())
}

func TestUpdateDisplayName(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemoryKV()
	svc := identity.New(kv)

	_, ok, err := svc.UpdateDisplayName(ctx, "Ada")
	require.NoError(t, err)
	assert.False(t, ok, "no identity yet")
	_, found, err := kv.Get(ctx, identity.StorageKey)
	require.NoError(t, err)
	assert.False(t, found)

	orig, err := svc.GetOrCreateIdentity(ctx)
	require.NoError(t, err)

	renamed, ok, err := svc.UpdateDisplayName(ctx, "  Ada  ")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Ada", renamed.DisplayName)
	assert.Equal(t, orig.ID, renamed.ID)
	assert.Equal(t, orig.PublicKey, renamed.PublicKey)

	c, err := card.Decode(renamed.Card)
	require.NoError(t, err)
	assert.Equal(t, "Ada", c.DisplayName)

	reloaded, ok, err := identity.New(kv).Identity(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, renamed, reloaded)

	_, _, err = svc.UpdateDisplayName(ctx, " ")
	assert.ErrorIs(t, err, identity.ErrEmptyDisplayName)
}

func TestGetOrCreateIdentity_StorageFailure(t *testing.T) {
	svc := identity.New(failingKV{store.NewMemoryKV()})

	_, err := svc.GetOrCreateIdentity(context.Background())
	var se *domain.StorageError
	assert.ErrorAs(t, err, &se)
}

func TestFingerprint(t *testing.T) {
	ctx := context.Background()
	svc := identity.New(store.NewMemoryKV())

	fp, err := svc.Fingerprint(ctx)
	require.NoError(t, err)
	id, err := svc.GetOrCreateIdentity(ctx)
	require.NoError(t, err)
	assert.Equal(t, crypto.FingerprintText(id.PublicKey), fp.String())
}

func TestGetOrCreateIdentity_ConcurrentCallersShareOne(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemoryKV()
	svc := identity.New(kv)

	const callers = 32
	ids := make([]domain.Identity, callers)
	errs := make([]error, callers)
	var wg sync.WaitGroup
	for i := range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ids[i], errs[i] = svc.GetOrCreateIdentity(ctx)
		}()
	}
	wg.Wait()

	for i := range callers {
		require.NoError(t, errs[i])
		assert.Equal(t, ids[0], ids[i])
	}
	stored, err := identity.New(kv).GetOrCreateIdentity(ctx)
	require.NoError(t, err)
	assert.Equal(t, ids[0], stored)
}

func TestIdentity_RejectsMismatchedKeys(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemoryKV()
	id, err := identity.New(kv).GetOrCreateIdentity(ctx)
	require.NoError(t, err)

	other, err := identity.New(store.NewMemoryKV()).GetOrCreateIdentity(ctx)
	require.NoError(t, err)
	id.SecretKey = other.SecretKey
	b, err := json.Marshal(id)
	require.NoError(t, err)
	require.NoError(t, kv.Set(ctx, identity.StorageKey, b))

	_, _, err = identity.New(kv).Identity(ctx)
	var se *domain.StorageError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, identity.StorageKey, se.Key)
}
