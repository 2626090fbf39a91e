package session_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"saxiib/internal/domain"
	"saxiib/internal/relay"
	"saxiib/internal/services/contacts"
	"saxiib/internal/services/message"
	"saxiib/internal/services/session"
	"saxiib/internal/store"
)

type peer struct {
	mgr      *session.Manager
	log      *message.Log
	contacts *contacts.Directory
	notes    *recordingNotifier
}

func join(t *testing.T, hub *relay.MemoryHub, id domain.PeerID) *peer {
	t.Helper()
	kv := store.NewMemoryKV()
	p := &peer{log: message.New(kv), contacts: contacts.New(kv), notes: &recordingNotifier{}}
	p.mgr = session.New(hub.Join(id), p.log, session.WithContacts(p.contacts), session.WithNotifier(p.notes))
	t.Cleanup(func() { _ = p.mgr.Close() })
	return p
}

func TestTwoPeersOverMemoryHub(t *testing.T) {
	ctx := context.Background()
	hub := relay.NewMemoryHub()
	alice := join(t, hub, "alice")
	bob := join(t, hub, "bob")
	require.NoError(t, bob.contacts.Upsert(ctx, domain.Contact{ID: "alice", DisplayName: "Alice", PublicKey: "k"}))

	_, err := alice.mgr.Send(ctx, "hello bob", "bob")
	require.NoError(t, err)
	_, err = alice.mgr.SendMedia(ctx, pngHeader, domain.KindImage, "bob")
	require.NoError(t, err)
	require.NoError(t, alice.mgr.Flush(flushCtx(t), "bob"))

	require.Eventually(t, func() bool { return len(bob.log.ListFor("alice")) == 2 }, wait, tick)
	got := bob.log.ListFor("alice")
	assert.Equal(t, "hello bob", got[0].Content)
	assert.Equal(t, domain.KindImage, got[1].Kind)
	require.Eventually(t, func() bool { return len(bob.notes.snapshot()) == 2 }, wait, tick)
	assert.Equal(t, "Alice", bob.notes.snapshot()[0].name)

	// bob answers over the connection alice opened
	_, err = bob.mgr.Send(ctx, "hi alice", "alice")
	require.NoError(t, err)
	require.NoError(t, bob.mgr.Flush(flushCtx(t), "alice"))
	require.Eventually(t, func() bool { return len(alice.log.ListFor("bob")) == 3 }, wait, tick)

	assert.Equal(t, 1, hub.Dials("bob"))
	assert.Equal(t, 0, hub.Dials("alice"))
}

func TestUnreachablePeerStaysLogged(t *testing.T) {
	ctx := context.Background()
	hub := relay.NewMemoryHub()
	alice := join(t, hub, "alice")

	msg, err := alice.mgr.Send(ctx, "anyone there?", "offline")
	require.NoError(t, err)

	err = alice.mgr.Flush(flushCtx(t), "offline")
	assert.ErrorIs(t, err, domain.ErrPeerUnavailable)
	assert.Equal(t, []domain.Message{msg}, alice.log.ListFor("offline"))
}
